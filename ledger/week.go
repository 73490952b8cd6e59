package ledger

// =============================================================================
// WEEK WINDOW - The 7-day Monday-to-Sunday reporting boundary
// =============================================================================

// WeekWindow is a fixed Monday-Sunday date range, always exactly 7 days
// inclusive. It is derived from a reference date, never persisted.
type WeekWindow struct {
	Start Date // always a Monday
	End   Date // always Start + 6 days, a Sunday
}

// ResolveWeek maps a reference date to the window containing it: Start is the
// Monday on or before ref, End is Start + 6 days. Pure and deterministic; the
// same ref always yields the same window, including when the window spans a
// month or year boundary (a Wednesday in early January may resolve to a window
// starting in the previous December).
//
// The resolver has no memory of a "current" window. Navigation is window
// arithmetic held by the caller: previous week = ResolveWeek(Start - 7 days),
// next week = ResolveWeek(Start + 7 days), reset = ResolveWeek(today).
func ResolveWeek(ref Date) WeekWindow {
	// time.Weekday counts from Sunday; shift so Monday is offset 0.
	offset := (int(ref.Weekday()) + 6) % 7
	start := ref.AddDays(-offset)
	return WeekWindow{Start: start, End: start.AddDays(6)}
}

// ResolveWeekString parses ref as YYYY-MM-DD and resolves its window.
// Fails with ErrInvalidDate for unparseable input.
func ResolveWeekString(ref string) (WeekWindow, error) {
	d, err := ParseDate(ref)
	if err != nil {
		return WeekWindow{}, err
	}
	return ResolveWeek(d), nil
}

// Contains reports whether d falls within [Start, End] inclusive.
func (w WeekWindow) Contains(d Date) bool {
	return d.AfterOrEqual(w.Start) && d.BeforeOrEqual(w.End)
}

// DayOffset returns the 0-based offset of d from Start (0 = Monday), or -1
// when d is outside the window.
func (w WeekWindow) DayOffset(d Date) int {
	if !w.Contains(d) {
		return -1
	}
	return DaysBetween(w.Start, d)
}

// Days returns the window's seven dates in order, Monday through Sunday.
func (w WeekWindow) Days() [7]Date {
	var days [7]Date
	for i := range days {
		days[i] = w.Start.AddDays(i)
	}
	return days
}

// Prev returns the window immediately before this one.
func (w WeekWindow) Prev() WeekWindow { return ResolveWeek(w.Start.AddDays(-7)) }

// Next returns the window immediately after this one.
func (w WeekWindow) Next() WeekWindow { return ResolveWeek(w.Start.AddDays(7)) }

func (w WeekWindow) String() string {
	return "[" + w.Start.String() + ", " + w.End.String() + "]"
}
