package invoice

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"cep360-payroll/internal/document"
	"cep360-payroll/internal/events"
	invoiceerrors "cep360-payroll/internal/invoice/errors"
	"cep360-payroll/internal/messaging/kafka"
	"cep360-payroll/internal/shared/apperror"
	"cep360-payroll/internal/shared/contextutil"
	"cep360-payroll/internal/shared/dateutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// DocumentPublisher is satisfied by *document.Publisher.
type DocumentPublisher interface {
	Publish(ctx context.Context, slip document.Payslip) (document.Artifact, error)
	Discard(ctx context.Context, key string) error
}

//go:generate mockgen -source=invoice_service.go -destination=mock/invoice_service_mock.go -package=mock
type Service interface {
	GenerateInvoices(ctx context.Context, req GenerateInvoicesRequest) (GenerateInvoicesResult, error)
	UpdateAndPublish(ctx context.Context, id string, req UpdateInvoiceRequest) (UpdateInvoiceResult, error)
	GenerateDocument(ctx context.Context, id string) (UpdateInvoiceResult, error)
	RequestDocument(ctx context.Context, id string) error
	GetAll(ctx context.Context, req GetInvoicesFilterRequest) ([]InvoiceResponse, int64, error)
	GetAgentInvoicesByMonth(ctx context.Context, agentID, month string) ([]InvoiceResponse, error)
	GetByID(ctx context.Context, id string) (InvoiceResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db        *sql.DB
	repo      Repository
	generator *Generator
	publisher DocumentPublisher
	outbox    kafka.OutboxRepository
	signatory string
	now       func() time.Time
	logger    *zap.Logger
}

// NewService wires the invoice use cases. outbox may be nil, which disables
// queued document generation.
func NewService(
	db *sql.DB,
	repo Repository,
	generator *Generator,
	publisher DocumentPublisher,
	outbox kafka.OutboxRepository,
	signatory string,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("invoice.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("invoice.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		generator: generator,
		publisher: publisher,
		outbox:    outbox,
		signatory: signatory,
		now:       time.Now,
		logger:    l,
	}
}

func (s *service) GenerateInvoices(ctx context.Context, req GenerateInvoicesRequest) (GenerateInvoicesResult, error) {
	return s.generator.GenerateInvoices(ctx, req)
}

// UpdateAndPublish commits the edited numbers first and only then renders
// and publishes the document. A document failure returns the committed
// invoice together with the error.
func (s *service) UpdateAndPublish(ctx context.Context, id string, req UpdateInvoiceRequest) (UpdateInvoiceResult, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return UpdateInvoiceResult{}, invoiceerrors.ErrInvalidInvoiceID
	}

	adj, err := parseAdjustment(req)
	if err != nil {
		return UpdateInvoiceResult{}, err
	}
	adj.EditedBy = contextutil.GetActorID(ctx)

	log := contextutil.GetLogger(ctx, s.logger).With(zap.String("invoice_id", id))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UpdateInvoiceResult{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	current, err := qtx.FindByIDForUpdate(ctx, invoiceID)
	if err != nil {
		return UpdateInvoiceResult{}, err
	}
	if adj.StartDate.Before(current.PeriodStart) || adj.EndDate.After(current.PeriodEnd) {
		return UpdateInvoiceResult{}, invoiceerrors.ErrDatesOutsidePeriod
	}

	calc := Calculate(adj.CalculationInput(current.TotalDaysInWindow))
	updated := ApplyAdjustment(*current, calc, adj)
	updated.UpdatedAt = s.now().UTC()

	if err := qtx.Update(ctx, &updated); err != nil {
		return UpdateInvoiceResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return UpdateInvoiceResult{}, err
	}

	log.Info("invoice updated",
		zap.Int64("computed_salary", updated.ComputedSalary),
		zap.Int("days_worked", updated.DaysWorked),
	)

	result, err := s.generateDocument(ctx, invoiceID)
	if err != nil {
		if isDocumentFailure(err) {
			s.queueDocument(ctx, invoiceID, events.ReasonPublishFailed)
		}
		if result.Invoice.ID == "" {
			result.Invoice = mapToResponse(updated)
		}
		result.ComputedTotal = calc.Final
		return result, err
	}

	result.ComputedTotal = calc.Final
	return result, nil
}

// GenerateDocument renders and publishes the current state of an invoice.
func (s *service) GenerateDocument(ctx context.Context, id string) (UpdateInvoiceResult, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return UpdateInvoiceResult{}, invoiceerrors.ErrInvalidInvoiceID
	}
	return s.generateDocument(ctx, invoiceID)
}

func (s *service) generateDocument(ctx context.Context, invoiceID uuid.UUID) (UpdateInvoiceResult, error) {
	log := contextutil.GetLogger(ctx, s.logger).With(zap.String("invoice_id", invoiceID.String()))

	inv, err := s.repo.FindByID(ctx, invoiceID)
	if err != nil {
		return UpdateInvoiceResult{}, err
	}

	generatedAt := s.now().UTC()
	artifact, err := s.publisher.Publish(ctx, buildPayslip(*inv, generatedAt, s.signatory))
	if err != nil {
		log.Error("invoice document failed", zap.Error(err))
		return resultFor(*inv), mapDocumentError(err)
	}

	previousKey, err := s.recordDocument(ctx, *inv, artifact, generatedAt)
	if err != nil {
		if discardErr := s.publisher.Discard(context.WithoutCancel(ctx), artifact.Key); discardErr != nil {
			log.Error("discard unrecorded document failed", zap.String("key", artifact.Key), zap.Error(discardErr))
		}
		return resultFor(*inv), err
	}

	if previousKey != "" && previousKey != artifact.Key {
		if err := s.publisher.Discard(context.WithoutCancel(ctx), previousKey); err != nil {
			log.Warn("discard previous document failed", zap.String("key", previousKey), zap.Error(err))
		}
	}

	inv.Document = Document{
		Status:      true,
		URL:         &artifact.URL,
		Key:         &artifact.Key,
		GeneratedAt: &generatedAt,
		GeneratedBy: contextutil.GetActorID(ctx),
	}
	inv.Status = StatusGenerated

	log.Info("invoice document generated", zap.String("key", artifact.Key))
	return resultFor(*inv), nil
}

// recordDocument stores the artifact link and returns the key it replaced.
// The invoice must not have changed since it was rendered.
func (s *service) recordDocument(ctx context.Context, rendered Invoice, artifact document.Artifact, generatedAt time.Time) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	current, err := qtx.FindByIDForUpdate(ctx, rendered.ID)
	if err != nil {
		return "", err
	}
	if !current.UpdatedAt.Equal(rendered.UpdatedAt) {
		return "", invoiceerrors.ErrInvoiceChanged
	}

	previousKey := ""
	if current.Document.Key != nil {
		previousKey = *current.Document.Key
	}

	current.Document = Document{
		Status:      true,
		URL:         &artifact.URL,
		Key:         &artifact.Key,
		GeneratedAt: &generatedAt,
		GeneratedBy: contextutil.GetActorID(ctx),
	}
	current.Status = StatusGenerated

	if err := qtx.Update(ctx, current); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return previousKey, nil
}

func (s *service) RequestDocument(ctx context.Context, id string) error {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return invoiceerrors.ErrInvalidInvoiceID
	}
	if s.outbox == nil {
		return invoiceerrors.ErrDocumentQueueUnavailable
	}

	if _, err := s.repo.FindByID(ctx, invoiceID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.enqueue(ctx, s.outbox.WithTx(tx), invoiceID, events.ReasonRequested); err != nil {
		return err
	}

	return tx.Commit()
}

// queueDocument schedules an asynchronous retry. Failures are only logged
// since the caller already reports the document failure.
func (s *service) queueDocument(ctx context.Context, invoiceID uuid.UUID, reason string) {
	if s.outbox == nil {
		return
	}
	if err := s.enqueue(context.WithoutCancel(ctx), s.outbox, invoiceID, reason); err != nil {
		contextutil.GetLogger(ctx, s.logger).Warn("queue document retry failed",
			zap.String("invoice_id", invoiceID.String()),
			zap.Error(err),
		)
	}
}

func (s *service) enqueue(ctx context.Context, outbox kafka.OutboxRepository, invoiceID uuid.UUID, reason string) error {
	requestedBy := ""
	if actor := contextutil.GetActorID(ctx); actor != nil {
		requestedBy = actor.String()
	}

	event, err := kafka.NewOutboxEvent(
		contextutil.GetRequestID(ctx),
		"invoice",
		invoiceID.String(),
		events.InvoiceDocumentRequestedType,
		events.InvoiceDocumentRequestedTopic,
		events.InvoiceDocumentRequestedEvent{
			EventType:   events.InvoiceDocumentRequestedType,
			InvoiceID:   invoiceID.String(),
			RequestedBy: requestedBy,
			Reason:      reason,
			OccurredAt:  s.now().UTC(),
		},
	)
	if err != nil {
		return err
	}
	return outbox.Create(ctx, event)
}

func (s *service) GetAll(ctx context.Context, req GetInvoicesFilterRequest) ([]InvoiceResponse, int64, error) {
	filter, err := parseFilter(req)
	if err != nil {
		return nil, 0, err
	}

	rows, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return mapToListResponse(rows), total, nil
}

func (s *service) GetAgentInvoicesByMonth(ctx context.Context, agentID, month string) ([]InvoiceResponse, error) {
	id, err := uuid.Parse(agentID)
	if err != nil {
		return nil, invoiceerrors.ErrInvalidEmployeeID
	}
	label, err := NormalizeMonthLabel(month)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.FindByEmployeeAndMonth(ctx, id, label)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByID(ctx context.Context, id string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, invoiceerrors.ErrInvalidInvoiceID
	}

	inv, err := s.repo.FindByID(ctx, invoiceID)
	if err != nil {
		return InvoiceResponse{}, err
	}
	return mapToResponse(*inv), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return invoiceerrors.ErrInvalidInvoiceID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	inv, err := qtx.FindByIDForUpdate(ctx, invoiceID)
	if err != nil {
		return err
	}
	if inv.Document.Status {
		return invoiceerrors.ErrDeleteWithDocument
	}

	if err := qtx.Delete(ctx, invoiceID); err != nil {
		return err
	}

	return tx.Commit()
}

func parseAdjustment(req UpdateInvoiceRequest) (Adjustment, error) {
	if req.DaysWorked == nil {
		return Adjustment{}, apperror.RequiredField("days_worked")
	}
	if req.CompensationRate == nil {
		return Adjustment{}, apperror.RequiredField("compensation_rate")
	}
	if strings.TrimSpace(req.StartDate) == "" {
		return Adjustment{}, apperror.RequiredField("start_date")
	}
	if strings.TrimSpace(req.EndDate) == "" {
		return Adjustment{}, apperror.RequiredField("end_date")
	}

	start, err := dateutil.Parse(strings.TrimSpace(req.StartDate))
	if err != nil {
		return Adjustment{}, invoiceerrors.ErrInvalidDateFormat
	}
	end, err := dateutil.Parse(strings.TrimSpace(req.EndDate))
	if err != nil {
		return Adjustment{}, invoiceerrors.ErrInvalidDateFormat
	}
	if start.After(end) {
		return Adjustment{}, invoiceerrors.ErrInvalidDateRange
	}
	if req.Incentive < 0 || req.Arrears < 0 || req.ExtraPay < 0 {
		return Adjustment{}, invoiceerrors.ErrNegativeAdjustment
	}
	if *req.CompensationRate <= 0 {
		return Adjustment{}, invoiceerrors.ErrInvalidRate
	}
	if *req.DaysWorked < 0 || req.DaysAbsent < 0 ||
		*req.DaysWorked+req.DaysAbsent > dateutil.InclusiveDays(start, end) {
		return Adjustment{}, invoiceerrors.ErrInvalidDayCounts
	}

	return Adjustment{
		StartDate:        start,
		EndDate:          end,
		DaysWorked:       *req.DaysWorked,
		DaysAbsent:       req.DaysAbsent,
		Incentive:        req.Incentive,
		Arrears:          req.Arrears,
		ExtraPay:         req.ExtraPay,
		CompensationRate: *req.CompensationRate,
	}, nil
}

func parseFilter(req GetInvoicesFilterRequest) (Filter, error) {
	var f Filter

	if req.EmployeeID != "" {
		id, err := uuid.Parse(req.EmployeeID)
		if err != nil {
			return Filter{}, invoiceerrors.ErrInvalidEmployeeID
		}
		f.EmployeeID = &id
	}
	if req.CampaignID != "" {
		id, err := uuid.Parse(req.CampaignID)
		if err != nil {
			return Filter{}, invoiceerrors.ErrInvalidCampaignID
		}
		f.CampaignID = &id
	}
	if req.ProgramManagerID != "" {
		id, err := uuid.Parse(req.ProgramManagerID)
		if err != nil {
			return Filter{}, invoiceerrors.ErrInvalidProgramManagerID
		}
		f.ProgramManagerID = &id
	}
	if strings.TrimSpace(req.Month) != "" {
		label, err := NormalizeMonthLabel(req.Month)
		if err != nil {
			return Filter{}, err
		}
		f.MonthLabel = &label
	}
	if req.Status != "" {
		status := strings.ToUpper(strings.TrimSpace(req.Status))
		switch status {
		case StatusDraft, StatusEdited, StatusGenerated:
			f.Status = &status
		default:
			return Filter{}, apperror.InvalidField("status")
		}
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	f.Limit = size
	f.Offset = (page - 1) * size

	return f, nil
}

var spaces = regexp.MustCompile(`\s+`)

// NormalizeMonthLabel accepts any casing and spacing of a label such as
// "june 2024" and returns the stored form "June 2024".
func NormalizeMonthLabel(month string) (string, error) {
	label := spaces.ReplaceAllString(strings.TrimSpace(month), " ")
	label = cases.Title(language.English).String(label)

	t, err := time.Parse(dateutil.MonthLabelLayout, label)
	if err != nil {
		return "", invoiceerrors.ErrInvalidMonth
	}
	return dateutil.MonthLabel(t), nil
}

func isDocumentFailure(err error) bool {
	return errors.Is(err, invoiceerrors.ErrDocumentRenderFailed) ||
		errors.Is(err, invoiceerrors.ErrDocumentPublishFailed)
}

func mapDocumentError(err error) error {
	if errors.Is(err, document.ErrRenderFailed) {
		return apperror.WithCause(invoiceerrors.ErrDocumentRenderFailed, err)
	}
	return apperror.WithCause(invoiceerrors.ErrDocumentPublishFailed, err)
}

func buildPayslip(inv Invoice, generatedAt time.Time, signatory string) document.Payslip {
	calc := Calculate(CalculationInput{
		CompensationRate:  inv.CompensationRate,
		DaysWorked:        inv.DaysWorked,
		DaysAbsent:        inv.DaysAbsent,
		TotalDaysInWindow: inv.TotalDaysInWindow,
	})

	slip := document.Payslip{
		InvoiceID:               inv.ID,
		EmployeeID:              inv.EmployeeID,
		MonthLabel:              inv.MonthLabel,
		StartDate:               inv.StartDate,
		EndDate:                 inv.EndDate,
		CompensationRate:        inv.CompensationRate,
		Gross:                   calc.Gross,
		Incentive:               inv.Incentive,
		Arrears:                 inv.Arrears,
		ExtraPay:                inv.ExtraPay,
		Total:                   inv.ComputedSalary,
		DaysWorked:              inv.DaysWorked,
		DaysAbsent:              inv.DaysAbsent,
		TotalDaysInWindow:       inv.TotalDaysInWindow,
		DaysAvailableToGenerate: inv.DaysAvailableToGenerate,
		GeneratedAt:             generatedAt,
		Signatory:               signatory,
	}
	if inv.Employee != nil {
		slip.EmployeeName = inv.Employee.FullName
		slip.EmployeeEmail = inv.Employee.Email
	}
	if inv.Campaign != nil {
		slip.CampaignName = inv.Campaign.Name
	}
	return slip
}

func resultFor(inv Invoice) UpdateInvoiceResult {
	return UpdateInvoiceResult{
		Invoice:       mapToResponse(inv),
		ComputedTotal: inv.ComputedSalary,
		DocumentURL:   inv.Document.URL,
	}
}

func mapToResponse(inv Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:                      inv.ID.String(),
		EmployeeID:              inv.EmployeeID.String(),
		CampaignID:              inv.CampaignID.String(),
		MonthLabel:              inv.MonthLabel,
		PeriodStart:             dateutil.Format(inv.PeriodStart),
		PeriodEnd:               dateutil.Format(inv.PeriodEnd),
		StartDate:               dateutil.Format(inv.StartDate),
		EndDate:                 dateutil.Format(inv.EndDate),
		DaysWorked:              inv.DaysWorked,
		DaysAbsent:              inv.DaysAbsent,
		TotalDaysInWindow:       inv.TotalDaysInWindow,
		TotalDaysGenerated:      inv.TotalDaysGenerated,
		DaysAvailableToGenerate: inv.DaysAvailableToGenerate,
		Incentive:               inv.Incentive,
		Arrears:                 inv.Arrears,
		ExtraPay:                inv.ExtraPay,
		CompensationRate:        inv.CompensationRate,
		ComputedSalary:          inv.ComputedSalary,
		Status:                  inv.Status,
		GeneratedBy:             uuidString(inv.GeneratedBy),
		ModifiedBy:              uuidString(inv.ModifiedBy),
		Document: DocumentResponse{
			Status:      inv.Document.Status,
			URL:         inv.Document.URL,
			GeneratedBy: uuidString(inv.Document.GeneratedBy),
		},
		CreatedAt: inv.CreatedAt.Format(time.RFC3339),
		UpdatedAt: inv.UpdatedAt.Format(time.RFC3339),
	}

	if inv.Document.GeneratedAt != nil {
		v := inv.Document.GeneratedAt.Format(time.RFC3339)
		resp.Document.GeneratedAt = &v
	}
	if inv.Employee != nil {
		resp.EmployeeName = inv.Employee.FullName
		resp.EmployeeEmail = inv.Employee.Email
	}
	if inv.Campaign != nil {
		resp.CampaignName = inv.Campaign.Name
		for _, pm := range inv.Campaign.ProgramManagers {
			resp.ProgramManagerIDs = append(resp.ProgramManagerIDs, pm.UserID.String())
		}
	}

	return resp
}

func mapToListResponse(invoices []Invoice) []InvoiceResponse {
	resp := make([]InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		resp[i] = mapToResponse(inv)
	}
	return resp
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	v := id.String()
	return &v
}
