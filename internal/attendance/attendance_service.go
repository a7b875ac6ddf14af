package attendance

import (
	"context"
	"time"

	attendanceerrors "cep360-payroll/internal/attendance/errors"
	"cep360-payroll/internal/shared/contextutil"
	"cep360-payroll/internal/shared/dateutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxSummaryDays = 366

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	Summary(ctx context.Context, req SummaryRequest) (SummaryResponse, error)
	CheckIn(ctx context.Context, employeeID string) (EventResponse, error)
}

type service struct {
	repo       Repository
	aggregator *Aggregator
	now        func() time.Time
	logger     *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{
		repo:       repo,
		aggregator: NewAggregator(repo),
		now:        time.Now,
		logger:     l,
	}
}

func (s *service) Summary(ctx context.Context, req SummaryRequest) (SummaryResponse, error) {
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return SummaryResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}
	from, err := dateutil.Parse(req.From)
	if err != nil {
		return SummaryResponse{}, attendanceerrors.ErrInvalidDate
	}
	to, err := dateutil.Parse(req.To)
	if err != nil {
		return SummaryResponse{}, attendanceerrors.ErrInvalidDate
	}
	if from.After(to) {
		return SummaryResponse{}, attendanceerrors.ErrInvalidDateRange
	}
	if dateutil.InclusiveDays(from, to) > maxSummaryDays {
		return SummaryResponse{}, attendanceerrors.ErrRangeTooLong
	}

	summary, err := s.aggregator.Summarize(ctx, employeeID, from, to)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("summarize attendance failed",
			zap.String("employee_id", req.EmployeeID),
			zap.Error(err),
		)
		return SummaryResponse{}, err
	}

	return SummaryResponse{
		EmployeeID:   employeeID.String(),
		From:         dateutil.Format(from),
		To:           dateutil.Format(to),
		TotalDays:    summary.TotalDays,
		PresentDays:  summary.PresentDays,
		AbsentDays:   summary.AbsentDays,
		PresentDates: formatDates(summary.PresentDates),
		AbsentDates:  formatDates(summary.AbsentDates),
	}, nil
}

func (s *service) CheckIn(ctx context.Context, employeeID string) (EventResponse, error) {
	id, err := uuid.Parse(employeeID)
	if err != nil {
		return EventResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}

	now := s.now().UTC()
	event := &AttendanceEvent{
		ID:             uuid.New(),
		EmployeeID:     id,
		AttendanceDate: dateutil.Normalize(now),
		LoggedAt:       now,
		Source:         "LOGIN",
	}
	if err := s.repo.Append(ctx, event); err != nil {
		return EventResponse{}, err
	}

	return EventResponse{
		ID:             event.ID.String(),
		EmployeeID:     event.EmployeeID.String(),
		AttendanceDate: dateutil.Format(event.AttendanceDate),
		LoggedAt:       event.LoggedAt.Format(time.RFC3339),
		Source:         event.Source,
	}, nil
}

func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = dateutil.Format(d)
	}
	return out
}
