/*
handlers.go - HTTP API handlers for the weekly transaction ledger

PURPOSE:
  Exposes the ledger engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the mutation service.

ENDPOINTS:
  GET    /api/transactions                 List transactions (paged)
  POST   /api/transactions                 Create transaction
  GET    /api/transactions/weekly-report   Weekly summary
  GET    /api/transactions/{id}            Get one transaction
  PUT    /api/transactions/{id}            Replace transaction
  DELETE /api/transactions/{id}            Delete transaction
  GET    /api/health                       Liveness check (no auth)

ERROR HANDLING:
  Domain errors map onto HTTP status codes:
  - 400: validation failures, unparseable dates
  - 401: missing/invalid credential
  - 403: cross-principal access
  - 404: transaction absent
  - 409: concurrent write lost
  - 504: store timeout
  - 500: everything else

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cashlytics/ledger-engine/ledger"
)

// Default and maximum page sizes for transaction listing.
const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *ledger.Service
	Log     *zap.Logger

	// Now supplies "today" for report requests without a reference date.
	// Injected so handlers stay deterministic under test.
	Now func() ledger.Date
}

// NewHandler creates a handler around the mutation service.
func NewHandler(service *ledger.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Service: service,
		Log:     log,
		Now:     func() ledger.Date { return ledger.Today(time.Local) },
	}
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// ListTransactions returns the principal's transactions, most recent first.
// GET /api/transactions?limit=&offset=
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated", nil)
		return
	}

	limit := queryInt(r, "limit", defaultListLimit)
	if limit < 1 || limit > maxListLimit {
		limit = defaultListLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	txs, err := h.Service.List(r.Context(), principal, limit, offset)
	if err != nil {
		h.writeDomainError(w, "Failed to list transactions", err)
		return
	}

	dtos := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		dtos = append(dtos, toTransactionDTO(tx))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTransaction records a new transaction.
// POST /api/transactions
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated", nil)
		return
	}

	fields, err := h.decodeFields(r)
	if err != nil {
		h.writeDomainError(w, "Invalid request body", err)
		return
	}

	tx, err := h.Service.Create(r.Context(), principal, fields)
	if err != nil {
		h.writeDomainError(w, "Failed to create transaction", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

// GetTransaction returns a single transaction by id.
// GET /api/transactions/{id}
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated", nil)
		return
	}

	id := ledger.TransactionID(chi.URLParam(r, "id"))
	tx, err := h.Service.Get(r.Context(), principal, id)
	if err != nil {
		h.writeDomainError(w, "Failed to get transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

// UpdateTransaction replaces all mutable fields of a transaction.
// PUT /api/transactions/{id}
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated", nil)
		return
	}

	fields, err := h.decodeFields(r)
	if err != nil {
		h.writeDomainError(w, "Invalid request body", err)
		return
	}

	id := ledger.TransactionID(chi.URLParam(r, "id"))
	tx, err := h.Service.Update(r.Context(), principal, id, fields)
	if err != nil {
		h.writeDomainError(w, "Failed to update transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

// DeleteTransaction removes a transaction.
// DELETE /api/transactions/{id}
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated", nil)
		return
	}

	id := ledger.TransactionID(chi.URLParam(r, "id"))
	if err := h.Service.Delete(r.Context(), principal, id); err != nil {
		h.writeDomainError(w, "Failed to delete transaction", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// REPORT HANDLER
// =============================================================================

// WeeklyReport returns the Monday-to-Sunday summary for the week containing
// reference_date (today when omitted).
// GET /api/transactions/weekly-report?reference_date=YYYY-MM-DD
func (h *Handler) WeeklyReport(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated", nil)
		return
	}

	ref := h.Now()
	if raw := r.URL.Query().Get("reference_date"); raw != "" {
		parsed, err := ledger.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid reference_date (use YYYY-MM-DD)", err)
			return
		}
		ref = parsed
	}

	report, err := h.Service.WeeklyReport(r.Context(), principal, ref)
	if err != nil {
		h.writeDomainError(w, "Failed to build weekly report", err)
		return
	}
	writeJSON(w, http.StatusOK, toWeeklyReportDTO(report))
}

// Health is the unauthenticated liveness endpoint.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) decodeFields(r *http.Request) (ledger.Fields, error) {
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Malformed input is the caller's to correct, never a server fault.
		return ledger.Fields{}, &ledger.ValidationError{
			Fields: []ledger.FieldViolation{{Field: "body", Reason: "malformed JSON"}},
		}
	}

	date, err := ledger.ParseDate(req.Date)
	if err != nil {
		return ledger.Fields{}, err
	}

	return ledger.Fields{
		Amount:      req.Amount,
		Kind:        ledger.Kind(req.Kind),
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
	}, nil
}

// writeDomainError maps engine errors onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  message,
			Fields: verr.Fields,
		})
	case errors.Is(err, ledger.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, "Transaction not found", nil)
	case errors.Is(err, ledger.ErrForbidden):
		writeError(w, http.StatusForbidden, "Forbidden", nil)
	case errors.Is(err, ledger.ErrConflict):
		writeError(w, http.StatusConflict, "Concurrent modification, refetch and retry", nil)
	case errors.Is(err, ledger.ErrTimeout):
		writeError(w, http.StatusGatewayTimeout, "Store unavailable, retry later", nil)
	default:
		h.Log.Error("request failed", zap.String("message", message), zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
