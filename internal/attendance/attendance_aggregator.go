package attendance

import (
	"context"
	"time"

	"cep360-payroll/internal/shared/dateutil"

	"github.com/google/uuid"
)

// Summary classifies every date of an inclusive range.
// TotalDays == PresentDays + AbsentDays == number of dates in the range.
type Summary struct {
	TotalDays    int
	PresentDays  int
	AbsentDays   int
	PresentDates []time.Time
	AbsentDates  []time.Time
}

// IsAutoPresentDay reports whether a date counts as present without any
// attendance event. Staff are paid for Saturdays and Sundays but do not log
// in on them.
func IsAutoPresentDay(date time.Time) bool {
	return dateutil.IsWeekend(date)
}

// Aggregate classifies each date in [from, to]. A weekday is present only
// when it appears in logged. from after to yields an empty Summary.
func Aggregate(from, to time.Time, logged []time.Time) Summary {
	seen := make(map[time.Time]struct{}, len(logged))
	for _, d := range logged {
		seen[dateutil.Normalize(d)] = struct{}{}
	}

	s := Summary{
		PresentDates: []time.Time{},
		AbsentDates:  []time.Time{},
	}
	dateutil.Each(from, to, func(day time.Time) {
		s.TotalDays++

		_, hasEvent := seen[day]
		if IsAutoPresentDay(day) || hasEvent {
			s.PresentDays++
			s.PresentDates = append(s.PresentDates, day)
			return
		}
		s.AbsentDays++
		s.AbsentDates = append(s.AbsentDates, day)
	})
	return s
}

// Aggregator binds Aggregate to the attendance log.
type Aggregator struct {
	repo Repository
}

func NewAggregator(repo Repository) *Aggregator {
	return &Aggregator{repo: repo}
}

func (a *Aggregator) Summarize(ctx context.Context, employeeID uuid.UUID, from, to time.Time) (Summary, error) {
	from, to = dateutil.Normalize(from), dateutil.Normalize(to)
	if from.After(to) {
		return Aggregate(from, to, nil), nil
	}

	logged, err := a.repo.FindLoggedDates(ctx, employeeID, from, to)
	if err != nil {
		return Summary{}, err
	}
	return Aggregate(from, to, logged), nil
}
