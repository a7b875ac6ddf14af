package invoice_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cep360-payroll/internal/campaign"
	"cep360-payroll/internal/document"
	"cep360-payroll/internal/employee"
	"cep360-payroll/internal/events"
	"cep360-payroll/internal/invoice"
	invoiceerrors "cep360-payroll/internal/invoice/errors"
	"cep360-payroll/internal/messaging/kafka"
	"cep360-payroll/internal/shared/apperror"
	"cep360-payroll/internal/shared/contextutil"
	"cep360-payroll/internal/shared/dateutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type invoiceServiceDeps struct {
	sqlMock   sqlmock.Sqlmock
	service   invoice.Service
	repo      *memRepository
	publisher *fakePublisher
	outbox    *fakeOutboxRepository
}

func setupInvoiceServiceTest(t *testing.T, withOutbox bool) *invoiceServiceDeps {
	t.Helper()
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := newMemRepository()
	publisher := &fakePublisher{}
	outbox := &fakeOutboxRepository{}

	var queue kafka.OutboxRepository
	if withOutbox {
		queue = outbox
	}
	svc := invoice.NewService(db, repo, nil, publisher, queue, "Finance Team", zap.NewNop())

	return &invoiceServiceDeps{sqlMock: sqlMock, service: svc, repo: repo, publisher: publisher, outbox: outbox}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

// seedDraft stores a June 2024 draft for a 30000/month agent.
func (d *invoiceServiceDeps) seedDraft() invoice.Invoice {
	emp := employee.Employee{ID: uuid.New(), FullName: "Asha Verma", Email: "asha@example.com", Role: employee.RoleAgent, MonthlyRate: 30000}
	c := campaign.Campaign{ID: uuid.New(), Name: "Outbound Sales", Status: campaign.StatusActive}
	d.repo.employees[emp.ID] = emp
	d.repo.campaigns[c.ID] = c

	created := time.Date(2024, time.June, 26, 23, 0, 0, 0, time.UTC)
	inv := invoice.Invoice{
		ID:                      uuid.New(),
		EmployeeID:              emp.ID,
		CampaignID:              c.ID,
		MonthLabel:              "June 2024",
		PeriodStart:             dateutil.Date(2024, time.June, 1),
		PeriodEnd:               dateutil.Date(2024, time.June, 30),
		StartDate:               dateutil.Date(2024, time.June, 1),
		EndDate:                 dateutil.Date(2024, time.June, 30),
		DaysWorked:              30,
		TotalDaysInWindow:       30,
		TotalDaysGenerated:      30,
		DaysAvailableToGenerate: 0,
		CompensationRate:        30000,
		ComputedSalary:          30000,
		Status:                  invoice.StatusDraft,
		CreatedAt:               created,
		UpdatedAt:               created,
	}
	d.repo.rows[inv.ID] = inv
	return inv
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func validEdit() invoice.UpdateInvoiceRequest {
	return invoice.UpdateInvoiceRequest{
		Incentive:        500,
		DaysWorked:       intPtr(20),
		DaysAbsent:       0,
		StartDate:        "2024-06-01",
		EndDate:          "2024-06-20",
		CompensationRate: int64Ptr(30000),
	}
}

func TestInvoiceService_UpdateAndPublish(t *testing.T) {
	deps := setupInvoiceServiceTest(t, true)
	inv := deps.seedDraft()
	editor := uuid.New()
	ctx := contextutil.WithUserID(context.Background(), editor.String())

	expectTx(t, deps.sqlMock, true)
	expectTx(t, deps.sqlMock, true)

	res, err := deps.service.UpdateAndPublish(ctx, inv.ID.String(), validEdit())
	require.NoError(t, err)

	assert.Equal(t, int64(20500), res.ComputedTotal)
	require.NotNil(t, res.DocumentURL)
	assert.Contains(t, *res.DocumentURL, "payslips/"+inv.ID.String())
	assert.Equal(t, invoice.StatusGenerated, res.Invoice.Status)
	assert.True(t, res.Invoice.Document.Status)
	assert.Equal(t, 10, res.Invoice.DaysAvailableToGenerate)

	stored := deps.repo.rows[inv.ID]
	assert.Equal(t, int64(20500), stored.ComputedSalary)
	assert.Equal(t, invoice.StatusGenerated, stored.Status)
	assert.Equal(t, &editor, stored.ModifiedBy)
	assert.True(t, stored.Document.Status)
	require.NotNil(t, stored.Document.Key)

	require.Len(t, deps.publisher.published, 1)
	slip := deps.publisher.published[0]
	assert.Equal(t, "Asha Verma", slip.EmployeeName)
	assert.Equal(t, "Outbound Sales", slip.CampaignName)
	assert.Equal(t, int64(20000), slip.Gross)
	assert.Equal(t, int64(20500), slip.Total)
	assert.Equal(t, "Finance Team", slip.Signatory)

	assert.Empty(t, deps.outbox.events)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestInvoiceService_UpdateAndPublish_DocumentFailureKeepsEdit(t *testing.T) {
	deps := setupInvoiceServiceTest(t, true)
	inv := deps.seedDraft()
	ctx := context.Background()

	expectTx(t, deps.sqlMock, true)
	deps.publisher.err = document.ErrRenderFailed

	res, err := deps.service.UpdateAndPublish(ctx, inv.ID.String(), validEdit())
	require.Error(t, err)
	assert.ErrorIs(t, err, invoiceerrors.ErrDocumentRenderFailed)

	assert.Equal(t, inv.ID.String(), res.Invoice.ID)
	assert.Equal(t, int64(20500), res.ComputedTotal)
	assert.Equal(t, int64(20500), res.Invoice.ComputedSalary)
	assert.False(t, res.Invoice.Document.Status)
	assert.Nil(t, res.DocumentURL)

	stored := deps.repo.rows[inv.ID]
	assert.Equal(t, int64(20500), stored.ComputedSalary)
	assert.Equal(t, invoice.StatusEdited, stored.Status)
	assert.False(t, stored.Document.Status)

	require.Len(t, deps.outbox.events, 1)
	event := deps.outbox.events[0]
	assert.Equal(t, events.InvoiceDocumentRequestedTopic, event.Topic)
	assert.Equal(t, inv.ID.String(), event.AggregateID)
	var payload events.InvoiceDocumentRequestedEvent
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, events.ReasonPublishFailed, payload.Reason)

	// retry once the renderer recovers
	deps.publisher.err = nil
	expectTx(t, deps.sqlMock, true)

	retry, err := deps.service.GenerateDocument(ctx, inv.ID.String())
	require.NoError(t, err)
	assert.True(t, retry.Invoice.Document.Status)
	require.NotNil(t, retry.DocumentURL)
	assert.Equal(t, int64(20500), retry.ComputedTotal)
	assert.True(t, deps.repo.rows[inv.ID].Document.Status)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestInvoiceService_UpdateAndPublish_PublishFailureStatus(t *testing.T) {
	deps := setupInvoiceServiceTest(t, false)
	inv := deps.seedDraft()

	expectTx(t, deps.sqlMock, true)
	deps.publisher.err = errors.Join(document.ErrPublishFailed, errors.New("s3 unavailable"))

	_, err := deps.service.UpdateAndPublish(context.Background(), inv.ID.String(), validEdit())
	assert.ErrorIs(t, err, invoiceerrors.ErrDocumentPublishFailed)
	assert.Equal(t, 502, apperror.ToHTTP(err).Status)
}

func TestInvoiceService_UpdateAndPublish_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *invoice.UpdateInvoiceRequest)
		wantErr error
	}{
		{"reversed dates", func(r *invoice.UpdateInvoiceRequest) { r.StartDate, r.EndDate = "2024-06-20", "2024-06-01" }, invoiceerrors.ErrInvalidDateRange},
		{"bad date", func(r *invoice.UpdateInvoiceRequest) { r.StartDate = "01-06-2024" }, invoiceerrors.ErrInvalidDateFormat},
		{"negative incentive", func(r *invoice.UpdateInvoiceRequest) { r.Incentive = -1 }, invoiceerrors.ErrNegativeAdjustment},
		{"zero rate", func(r *invoice.UpdateInvoiceRequest) { r.CompensationRate = int64Ptr(0) }, invoiceerrors.ErrInvalidRate},
		{"days exceed window", func(r *invoice.UpdateInvoiceRequest) { r.DaysAbsent = 1 }, invoiceerrors.ErrInvalidDayCounts},
		{"negative days", func(r *invoice.UpdateInvoiceRequest) { r.DaysWorked = intPtr(-1) }, invoiceerrors.ErrInvalidDayCounts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := setupInvoiceServiceTest(t, true)
			inv := deps.seedDraft()
			req := validEdit()
			tt.mutate(&req)

			_, err := deps.service.UpdateAndPublish(context.Background(), inv.ID.String(), req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, invoice.StatusDraft, deps.repo.rows[inv.ID].Status)
			assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		})
	}
}

func TestInvoiceService_UpdateAndPublish_MissingFields(t *testing.T) {
	deps := setupInvoiceServiceTest(t, true)
	inv := deps.seedDraft()
	req := validEdit()
	req.DaysWorked = nil

	_, err := deps.service.UpdateAndPublish(context.Background(), inv.ID.String(), req)
	assert.Equal(t, 400, apperror.ToHTTP(err).Status)
}

func TestInvoiceService_UpdateAndPublish_DatesOutsidePeriod(t *testing.T) {
	deps := setupInvoiceServiceTest(t, true)
	inv := deps.seedDraft()
	req := validEdit()
	req.StartDate, req.EndDate = "2024-05-28", "2024-06-10"

	expectTx(t, deps.sqlMock, false)

	_, err := deps.service.UpdateAndPublish(context.Background(), inv.ID.String(), req)
	assert.ErrorIs(t, err, invoiceerrors.ErrDatesOutsidePeriod)
	assert.Empty(t, deps.publisher.published)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestInvoiceService_UpdateAndPublish_NotFound(t *testing.T) {
	deps := setupInvoiceServiceTest(t, true)
	expectTx(t, deps.sqlMock, false)

	_, err := deps.service.UpdateAndPublish(context.Background(), uuid.NewString(), validEdit())
	assert.ErrorIs(t, err, invoiceerrors.ErrInvoiceNotFound)

	_, err = deps.service.UpdateAndPublish(context.Background(), "not-a-uuid", validEdit())
	assert.ErrorIs(t, err, invoiceerrors.ErrInvalidInvoiceID)
}

func TestInvoiceService_GenerateDocument_ReplacesPreviousArtifact(t *testing.T) {
	deps := setupInvoiceServiceTest(t, true)
	inv := deps.seedDraft()
	ctx := context.Background()

	expectTx(t, deps.sqlMock, true)
	first, err := deps.service.GenerateDocument(ctx, inv.ID.String())
	require.NoError(t, err)
	firstKey := *deps.repo.rows[inv.ID].Document.Key

	expectTx(t, deps.sqlMock, true)
	second, err := deps.service.GenerateDocument(ctx, inv.ID.String())
	require.NoError(t, err)

	assert.NotEqual(t, *first.DocumentURL, *second.DocumentURL)
	assert.Equal(t, []string{firstKey}, deps.publisher.discarded)
	assert.Equal(t, *second.DocumentURL, *deps.repo.rows[inv.ID].Document.URL)
}

func TestInvoiceService_GenerateDocument_InvoiceChangedWhileRendering(t *testing.T) {
	deps := setupInvoiceServiceTest(t, true)
	inv := deps.seedDraft()
	deps.repo.findForUpdateHook = func(row *invoice.Invoice) {
		row.UpdatedAt = row.UpdatedAt.Add(time.Second)
	}

	expectTx(t, deps.sqlMock, false)

	_, err := deps.service.GenerateDocument(context.Background(), inv.ID.String())
	assert.ErrorIs(t, err, invoiceerrors.ErrInvoiceChanged)

	require.Len(t, deps.publisher.discarded, 1, "unrecorded artifact is removed")
	assert.False(t, deps.repo.rows[inv.ID].Document.Status)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestInvoiceService_GenerateDocument_RecordFailureDiscardsArtifact(t *testing.T) {
	deps := setupInvoiceServiceTest(t, true)
	inv := deps.seedDraft()
	deps.repo.updateErr = errors.New("deadlock detected")

	expectTx(t, deps.sqlMock, false)

	_, err := deps.service.GenerateDocument(context.Background(), inv.ID.String())
	require.Error(t, err)
	assert.Len(t, deps.publisher.discarded, 1)
	assert.Empty(t, deps.outbox.events, "only edits queue a retry")
}

func TestInvoiceService_RequestDocument(t *testing.T) {
	t.Run("queues event", func(t *testing.T) {
		deps := setupInvoiceServiceTest(t, true)
		inv := deps.seedDraft()
		actor := uuid.New()
		ctx := contextutil.WithRequestID(contextutil.WithUserID(context.Background(), actor.String()), "req-1")

		expectTx(t, deps.sqlMock, true)

		require.NoError(t, deps.service.RequestDocument(ctx, inv.ID.String()))
		require.Len(t, deps.outbox.events, 1)
		event := deps.outbox.events[0]
		assert.Equal(t, "req-1", event.RequestID)
		assert.Equal(t, events.InvoiceDocumentRequestedType, event.EventType)

		var payload events.InvoiceDocumentRequestedEvent
		require.NoError(t, json.Unmarshal(event.Payload, &payload))
		assert.Equal(t, actor.String(), payload.RequestedBy)
		assert.Equal(t, events.ReasonRequested, payload.Reason)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("unknown invoice", func(t *testing.T) {
		deps := setupInvoiceServiceTest(t, true)
		err := deps.service.RequestDocument(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, invoiceerrors.ErrInvoiceNotFound)
	})

	t.Run("queue disabled", func(t *testing.T) {
		deps := setupInvoiceServiceTest(t, false)
		inv := deps.seedDraft()
		err := deps.service.RequestDocument(context.Background(), inv.ID.String())
		assert.ErrorIs(t, err, invoiceerrors.ErrDocumentQueueUnavailable)
	})
}

func TestInvoiceService_Delete(t *testing.T) {
	t.Run("draft", func(t *testing.T) {
		deps := setupInvoiceServiceTest(t, true)
		inv := deps.seedDraft()
		expectTx(t, deps.sqlMock, true)

		require.NoError(t, deps.service.Delete(context.Background(), inv.ID.String()))
		assert.Empty(t, deps.repo.rows)
	})

	t.Run("with document", func(t *testing.T) {
		deps := setupInvoiceServiceTest(t, true)
		inv := deps.seedDraft()
		row := deps.repo.rows[inv.ID]
		row.Document.Status = true
		deps.repo.rows[inv.ID] = row
		expectTx(t, deps.sqlMock, false)

		err := deps.service.Delete(context.Background(), inv.ID.String())
		assert.ErrorIs(t, err, invoiceerrors.ErrDeleteWithDocument)
		assert.Len(t, deps.repo.rows, 1)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestInvoiceService_GetAll_Filter(t *testing.T) {
	deps := setupInvoiceServiceTest(t, true)
	inv := deps.seedDraft()

	rows, total, err := deps.service.GetAll(context.Background(), invoice.GetInvoicesFilterRequest{
		EmployeeID: inv.EmployeeID.String(),
		Month:      "  june   2024 ",
		Status:     "draft",
		Page:       3,
		PageSize:   500,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Asha Verma", rows[0].EmployeeName)

	f := deps.repo.lastFilter
	assert.Equal(t, "June 2024", *f.MonthLabel)
	assert.Equal(t, invoice.StatusDraft, *f.Status)
	assert.Equal(t, 100, f.Limit)
	assert.Equal(t, 200, f.Offset)

	_, _, err = deps.service.GetAll(context.Background(), invoice.GetInvoicesFilterRequest{Status: "paid"})
	assert.Equal(t, 400, apperror.ToHTTP(err).Status)

	_, _, err = deps.service.GetAll(context.Background(), invoice.GetInvoicesFilterRequest{CampaignID: "x"})
	assert.ErrorIs(t, err, invoiceerrors.ErrInvalidCampaignID)
}

func TestInvoiceService_GetAgentInvoicesByMonth(t *testing.T) {
	deps := setupInvoiceServiceTest(t, true)
	inv := deps.seedDraft()

	rows, err := deps.service.GetAgentInvoicesByMonth(context.Background(), inv.EmployeeID.String(), "june 2024")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, inv.ID.String(), rows[0].ID)

	rows, err = deps.service.GetAgentInvoicesByMonth(context.Background(), inv.EmployeeID.String(), "July 2024")
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = deps.service.GetAgentInvoicesByMonth(context.Background(), inv.EmployeeID.String(), "Juneish")
	assert.ErrorIs(t, err, invoiceerrors.ErrInvalidMonth)
}

func TestInvoiceService_GetByID_ListsProgramManagers(t *testing.T) {
	deps := setupInvoiceServiceTest(t, false)
	inv := deps.seedDraft()
	pm := uuid.New()
	c := deps.repo.campaigns[inv.CampaignID]
	c.ProgramManagers = []campaign.CampaignProgramManager{{CampaignID: c.ID, UserID: pm}}
	deps.repo.campaigns[c.ID] = c

	resp, err := deps.service.GetByID(context.Background(), inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Outbound Sales", resp.CampaignName)
	assert.Equal(t, []string{pm.String()}, resp.ProgramManagerIDs)
}

func TestNormalizeMonthLabel(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "June 2024", want: "June 2024"},
		{in: "june 2024", want: "June 2024"},
		{in: "  JUNE\t2024 ", want: "June 2024"},
		{in: "2024-06", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := invoice.NormalizeMonthLabel(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, invoiceerrors.ErrInvalidMonth)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
