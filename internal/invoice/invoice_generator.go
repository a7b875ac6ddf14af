package invoice

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"cep360-payroll/internal/assignment"
	"cep360-payroll/internal/attendance"
	"cep360-payroll/internal/campaign"
	"cep360-payroll/internal/employee"
	invoiceerrors "cep360-payroll/internal/invoice/errors"
	"cep360-payroll/internal/shared/contextutil"
	"cep360-payroll/internal/shared/dateutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// AttendanceSummarizer is satisfied by *attendance.Aggregator.
type AttendanceSummarizer interface {
	Summarize(ctx context.Context, employeeID uuid.UUID, from, to time.Time) (attendance.Summary, error)
}

type GeneratorConfig struct {
	Concurrency int
	ChunkSize   int
}

// Generator runs the draft invoice batch for a salary period.
type Generator struct {
	repo        Repository
	campaigns   campaign.Repository
	assignments assignment.Repository
	employees   employee.Repository
	attendance  AttendanceSummarizer
	cfg         GeneratorConfig
	sf          singleflight.Group
	now         func() time.Time
	logger      *zap.Logger
}

func NewGenerator(
	repo Repository,
	campaigns campaign.Repository,
	assignments assignment.Repository,
	employees employee.Repository,
	attendance AttendanceSummarizer,
	cfg GeneratorConfig,
	logger ...*zap.Logger,
) *Generator {
	l := zap.L().Named("invoice.generator")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("invoice.generator")
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.ChunkSize < 1 {
		cfg.ChunkSize = 200
	}
	return &Generator{
		repo:        repo,
		campaigns:   campaigns,
		assignments: assignments,
		employees:   employees,
		attendance:  attendance,
		cfg:         cfg,
		now:         time.Now,
		logger:      l,
	}
}

// ParsePeriod validates a salary period given as YYYY-MM-DD strings.
func ParsePeriod(start, end string) (time.Time, time.Time, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return time.Time{}, time.Time{}, invoiceerrors.ErrInvalidPeriod
	}
	periodStart, err := dateutil.Parse(strings.TrimSpace(start))
	if err != nil {
		return time.Time{}, time.Time{}, invoiceerrors.ErrInvalidDateFormat
	}
	periodEnd, err := dateutil.Parse(strings.TrimSpace(end))
	if err != nil {
		return time.Time{}, time.Time{}, invoiceerrors.ErrInvalidDateFormat
	}
	if periodStart.After(periodEnd) {
		return time.Time{}, time.Time{}, invoiceerrors.ErrInvalidDateRange
	}
	return periodStart, periodEnd, nil
}

// GenerateInvoices creates one draft invoice per assignment overlapping the
// period. Existing invoices are never touched, so repeated runs only add
// what is missing. Concurrent calls for the same period share one run.
func (g *Generator) GenerateInvoices(ctx context.Context, req GenerateInvoicesRequest) (GenerateInvoicesResult, error) {
	periodStart, periodEnd, err := ParsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return GenerateInvoicesResult{}, err
	}

	key := dateutil.Format(periodStart) + "/" + dateutil.Format(periodEnd)
	// The shared run must outlive whichever caller started it.
	runCtx := context.WithoutCancel(ctx)
	ch := g.sf.DoChan(key, func() (any, error) {
		return g.generate(runCtx, periodStart, periodEnd)
	})

	select {
	case <-ctx.Done():
		return GenerateInvoicesResult{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return GenerateInvoicesResult{}, res.Err
		}
		if res.Shared {
			contextutil.GetLogger(ctx, g.logger).Info("invoice generation coalesced with a running batch", zap.String("period", key))
		}
		return res.Val.(GenerateInvoicesResult), nil
	}
}

type outcome int

const (
	outcomeStaged outcome = iota
	outcomeNoOverlap
	outcomeSkipped
)

type stagedDraft struct {
	outcome outcome
	invoice Invoice
}

func (g *Generator) generate(ctx context.Context, periodStart, periodEnd time.Time) (GenerateInvoicesResult, error) {
	log := contextutil.GetLogger(ctx, g.logger).With(
		zap.String("period_start", dateutil.Format(periodStart)),
		zap.String("period_end", dateutil.Format(periodEnd)),
	)
	result := GenerateInvoicesResult{
		PeriodStart: dateutil.Format(periodStart),
		PeriodEnd:   dateutil.Format(periodEnd),
	}

	campaigns, err := g.campaigns.FindActive(ctx)
	if err != nil {
		return result, err
	}
	campaignByID := make(map[uuid.UUID]campaign.Campaign, len(campaigns))
	campaignIDs := make([]uuid.UUID, 0, len(campaigns))
	for _, c := range campaigns {
		campaignByID[c.ID] = c
		campaignIDs = append(campaignIDs, c.ID)
	}

	assignments, err := g.assignments.FindByCampaignIDs(ctx, campaignIDs)
	if err != nil {
		return result, err
	}
	result.Attempted = len(assignments)

	employeeIDs := make([]uuid.UUID, 0, len(assignments))
	seenEmployee := make(map[uuid.UUID]struct{}, len(assignments))
	for _, a := range assignments {
		if _, ok := seenEmployee[a.AgentID]; !ok {
			seenEmployee[a.AgentID] = struct{}{}
			employeeIDs = append(employeeIDs, a.AgentID)
		}
	}
	employees, err := g.employees.FindByIDs(ctx, employeeIDs)
	if err != nil {
		return result, err
	}

	actor := contextutil.GetActorID(ctx)
	now := g.now().UTC()
	totalDays := dateutil.InclusiveDays(periodStart, periodEnd)
	// A salary period is named after the month it closes in, so back to back
	// periods never share a label.
	monthLabel := dateutil.MonthLabel(periodEnd)

	drafts := make([]stagedDraft, len(assignments))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Concurrency)

	for i, a := range assignments {
		i, a := i, a
		eg.Go(func() error {
			c, ok := campaignByID[a.CampaignID]
			if !ok {
				drafts[i].outcome = outcomeSkipped
				log.Warn("assignment campaign missing, skipped", zap.String("assignment_id", a.ID.String()))
				return nil
			}

			window, ok := a.Window(c.EndDate, periodStart, periodEnd)
			if !ok {
				drafts[i].outcome = outcomeNoOverlap
				return nil
			}

			emp, ok := employees[a.AgentID]
			if !ok {
				drafts[i].outcome = outcomeSkipped
				log.Warn("assignment agent missing, skipped",
					zap.String("assignment_id", a.ID.String()),
					zap.String("agent_id", a.AgentID.String()),
				)
				return nil
			}

			summary, err := g.attendance.Summarize(egCtx, emp.ID, window.From, window.To)
			if err != nil {
				return err
			}

			calc := Calculate(CalculationInput{
				CompensationRate:  emp.MonthlyRate,
				DaysWorked:        summary.PresentDays,
				DaysAbsent:        summary.AbsentDays,
				TotalDaysInWindow: totalDays,
			})

			drafts[i] = stagedDraft{
				outcome: outcomeStaged,
				invoice: Invoice{
					ID:                      uuid.New(),
					EmployeeID:              emp.ID,
					CampaignID:              c.ID,
					MonthLabel:              monthLabel,
					PeriodStart:             periodStart,
					PeriodEnd:               periodEnd,
					StartDate:               window.From,
					EndDate:                 window.To,
					DaysWorked:              summary.PresentDays,
					DaysAbsent:              summary.AbsentDays,
					TotalDaysInWindow:       totalDays,
					TotalDaysGenerated:      calc.TotalDaysGenerated,
					DaysAvailableToGenerate: calc.DaysAvailableToGenerate,
					CompensationRate:        emp.MonthlyRate,
					ComputedSalary:          calc.Final,
					Status:                  StatusDraft,
					GeneratedBy:             actor,
					CreatedAt:               now,
					UpdatedAt:               now,
				},
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		log.Error("invoice batch aborted", zap.Error(err))
		return result, err
	}

	staged := make([]Invoice, 0, len(drafts))
	labels := map[string]struct{}{}
	for _, d := range drafts {
		switch d.outcome {
		case outcomeNoOverlap:
			result.NoOverlap++
		case outcomeSkipped:
			result.Skipped++
		default:
			staged = append(staged, d.invoice)
			labels[d.invoice.MonthLabel] = struct{}{}
		}
	}
	sortDrafts(staged)

	monthLabels := make([]string, 0, len(labels))
	for l := range labels {
		monthLabels = append(monthLabels, l)
	}
	sort.Strings(monthLabels)

	existing, err := g.repo.FindExistingKeys(ctx, monthLabels)
	if err != nil {
		return result, err
	}
	guard := NewDuplicateGuard(existing)

	fresh := make([]Invoice, 0, len(staged))
	for _, inv := range staged {
		if !guard.Claim(inv.Key()) {
			result.Duplicates++
			continue
		}
		fresh = append(fresh, inv)
	}

	for start := 0; start < len(fresh); start += g.cfg.ChunkSize {
		end := min(start+g.cfg.ChunkSize, len(fresh))
		g.insertChunk(ctx, fresh[start:end], &result, log)
	}

	log.Info("invoice batch finished",
		zap.Int("attempted", result.Attempted),
		zap.Int("inserted", result.Inserted),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("skipped", result.Skipped),
		zap.Int("no_overlap", result.NoOverlap),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// insertChunk writes a chunk in one statement and falls back to row by row
// inserts when the statement fails, so one bad row cannot sink the chunk.
func (g *Generator) insertChunk(ctx context.Context, chunk []Invoice, result *GenerateInvoicesResult, log *zap.Logger) {
	n, err := g.repo.InsertManyIfAbsent(ctx, chunk)
	if err == nil {
		result.Inserted += int(n)
		result.Duplicates += len(chunk) - int(n)
		return
	}

	log.Warn("bulk invoice insert failed, retrying per row", zap.Int("rows", len(chunk)), zap.Error(err))
	for i := range chunk {
		inserted, err := g.repo.InsertIfAbsent(ctx, &chunk[i])
		switch {
		case err == nil && inserted:
			result.Inserted++
		case err == nil, errors.Is(err, invoiceerrors.ErrDuplicateInvoice):
			result.Duplicates++
		default:
			result.Failed++
			log.Error("insert invoice failed",
				zap.String("employee_id", chunk[i].EmployeeID.String()),
				zap.String("campaign_id", chunk[i].CampaignID.String()),
				zap.String("month", chunk[i].MonthLabel),
				zap.Error(err),
			)
		}
	}
}

func sortDrafts(invoices []Invoice) {
	sort.SliceStable(invoices, func(i, j int) bool {
		a, b := invoices[i], invoices[j]
		if c := bytes.Compare(a.EmployeeID[:], b.EmployeeID[:]); c != 0 {
			return c < 0
		}
		if c := bytes.Compare(a.CampaignID[:], b.CampaignID[:]); c != 0 {
			return c < 0
		}
		return a.StartDate.Before(b.StartDate)
	})
}
