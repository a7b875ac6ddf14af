package assignment

import (
	"time"

	"cep360-payroll/internal/shared/dateutil"
)

// Window is an inclusive range of calendar dates.
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) Days() int {
	return dateutil.InclusiveDays(w.From, w.To)
}

// ResolveWindow intersects an assignment tenure with the campaign end and the
// salary period. A nil assigned date counts from periodStart; the end falls
// back from released date to campaign end to periodEnd. ok is false when the
// intersection is empty.
func ResolveWindow(
	assigned, released, campaignEnd *time.Time,
	periodStart, periodEnd time.Time,
) (Window, bool) {
	periodStart = dateutil.Normalize(periodStart)
	periodEnd = dateutil.Normalize(periodEnd)

	from := periodStart
	if assigned != nil && !assigned.IsZero() {
		from = dateutil.Max(dateutil.Normalize(*assigned), periodStart)
	}

	to := periodEnd
	switch {
	case released != nil && !released.IsZero():
		to = dateutil.Normalize(*released)
	case campaignEnd != nil && !campaignEnd.IsZero():
		to = dateutil.Normalize(*campaignEnd)
	}
	to = dateutil.Min(to, periodEnd)

	if from.After(to) {
		return Window{}, false
	}
	return Window{From: from, To: to}, true
}

// Window returns the effective window of this assignment for a period.
func (a Assignment) Window(campaignEnd *time.Time, periodStart, periodEnd time.Time) (Window, bool) {
	return ResolveWindow(a.AssignedDate, a.ReleasedDate, campaignEnd, periodStart, periodEnd)
}
