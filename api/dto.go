/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

ROUNDING:
  Monetary values are carried as decimals internally and rounded to 2
  decimal places only here, at the presentation boundary.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cashlytics/ledger-engine/ledger"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// TransactionDTO represents a transaction in API responses.
type TransactionDTO struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Kind        string  `json:"kind"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Date        string  `json:"date"`
	CreatedAt   string  `json:"created_at"`
}

// TransactionRequest is the body for create and update. Both operations take
// the full field set; updates replace, never merge.
type TransactionRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Date        string          `json:"date"`
}

// DailyBreakdownDTO is one day of the weekly report.
type DailyBreakdownDTO struct {
	Date    string  `json:"date"`
	Credits float64 `json:"credits"`
	Debits  float64 `json:"debits"`
}

// WeeklyReportDTO is the full weekly summary. DailyBreakdown always holds
// exactly 7 entries, Monday through Sunday.
type WeeklyReportDTO struct {
	StartDate      string              `json:"start_date"`
	EndDate        string              `json:"end_date"`
	DailyBreakdown []DailyBreakdownDTO `json:"daily_breakdown"`
	TotalCredits   float64             `json:"total_credits"`
	TotalDebits    float64             `json:"total_debits"`
	NetBalance     float64             `json:"net_balance"`
}

// ErrorResponse is the JSON shape of every error.
type ErrorResponse struct {
	Error   string                  `json:"error"`
	Details string                  `json:"details,omitempty"`
	Fields  []ledger.FieldViolation `json:"fields,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toTransactionDTO(tx ledger.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:          string(tx.ID),
		Amount:      roundMoney(tx.Amount),
		Kind:        string(tx.Kind),
		Category:    tx.Category,
		Description: tx.Description,
		Date:        tx.Date.String(),
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
	}
}

func toWeeklyReportDTO(r *ledger.WeeklyReport) WeeklyReportDTO {
	daily := make([]DailyBreakdownDTO, len(r.Daily))
	for i, d := range r.Daily {
		daily[i] = DailyBreakdownDTO{
			Date:    d.Date.String(),
			Credits: roundMoney(d.Credits),
			Debits:  roundMoney(d.Debits),
		}
	}
	return WeeklyReportDTO{
		StartDate:      r.Window.Start.String(),
		EndDate:        r.Window.End.String(),
		DailyBreakdown: daily,
		TotalCredits:   roundMoney(r.TotalCredits),
		TotalDebits:    roundMoney(r.TotalDebits),
		NetBalance:     roundMoney(r.NetBalance),
	}
}

// roundMoney rounds to 2 decimal places for presentation.
func roundMoney(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
