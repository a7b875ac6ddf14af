package attendance

import (
	"context"
	"testing"
	"time"

	attendanceerrors "cep360-payroll/internal/attendance/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestService_Summary(t *testing.T) {
	employeeID := uuid.New()
	repo := &fakeRepo{
		findLoggedDatesFn: func(context.Context, uuid.UUID, time.Time, time.Time) ([]time.Time, error) {
			return []time.Time{june(10), june(11), june(12), june(13), june(17), june(18)}, nil
		},
	}
	svc := NewService(repo)

	t.Run("success", func(t *testing.T) {
		resp, err := svc.Summary(context.Background(), SummaryRequest{
			EmployeeID: employeeID.String(),
			From:       "2024-06-10",
			To:         "2024-06-25",
		})
		assert.NoError(t, err)
		assert.Equal(t, 16, resp.TotalDays)
		assert.Equal(t, 10, resp.PresentDays)
		assert.Equal(t, 6, resp.AbsentDays)
		assert.Equal(t, "2024-06-14", resp.AbsentDates[0])
	})

	tests := []struct {
		name    string
		req     SummaryRequest
		wantErr error
	}{
		{"bad employee", SummaryRequest{EmployeeID: "x", From: "2024-06-01", To: "2024-06-02"}, attendanceerrors.ErrInvalidEmployeeID},
		{"bad from", SummaryRequest{EmployeeID: employeeID.String(), From: "01/06/2024", To: "2024-06-02"}, attendanceerrors.ErrInvalidDate},
		{"reversed", SummaryRequest{EmployeeID: employeeID.String(), From: "2024-06-30", To: "2024-06-01"}, attendanceerrors.ErrInvalidDateRange},
		{"too long", SummaryRequest{EmployeeID: employeeID.String(), From: "2023-01-01", To: "2024-06-01"}, attendanceerrors.ErrRangeTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Summary(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_CheckIn(t *testing.T) {
	employeeID := uuid.New()
	var saved *AttendanceEvent
	repo := &fakeRepo{
		appendFn: func(_ context.Context, e *AttendanceEvent) error {
			saved = e
			return nil
		},
	}

	svc := NewService(repo).(*service)
	svc.now = func() time.Time { return time.Date(2024, 6, 10, 22, 15, 0, 0, time.UTC) }

	resp, err := svc.CheckIn(context.Background(), employeeID.String())
	assert.NoError(t, err)
	assert.Equal(t, "2024-06-10", resp.AttendanceDate)
	assert.Equal(t, employeeID, saved.EmployeeID)
	assert.Equal(t, june(10), saved.AttendanceDate)

	_, err = svc.CheckIn(context.Background(), "")
	assert.ErrorIs(t, err, attendanceerrors.ErrInvalidEmployeeID)
}
