package invoice_test

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"cep360-payroll/internal/assignment"
	"cep360-payroll/internal/attendance"
	"cep360-payroll/internal/campaign"
	"cep360-payroll/internal/document"
	"cep360-payroll/internal/employee"
	employeeerrors "cep360-payroll/internal/employee/errors"
	"cep360-payroll/internal/invoice"
	invoiceerrors "cep360-payroll/internal/invoice/errors"
	"cep360-payroll/internal/messaging/kafka"

	"github.com/google/uuid"
)

// memRepository enforces the invoice identity like the unique index does.
type memRepository struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]invoice.Invoice
	employees map[uuid.UUID]employee.Employee
	campaigns map[uuid.UUID]campaign.Campaign

	insertManyErr     error
	insertRowErr      func(inv invoice.Invoice) error
	findExistingErr   error
	updateErr         error
	findForUpdateHook func(inv *invoice.Invoice)
	lastFilter        invoice.Filter
	bulkCalls         int
}

func newMemRepository() *memRepository {
	return &memRepository{
		rows:      map[uuid.UUID]invoice.Invoice{},
		employees: map[uuid.UUID]employee.Employee{},
		campaigns: map[uuid.UUID]campaign.Campaign{},
	}
}

func (r *memRepository) WithTx(*sql.Tx) invoice.Repository { return r }

func (r *memRepository) exists(k invoice.Key) bool {
	for _, row := range r.rows {
		if row.Key() == k {
			return true
		}
	}
	return false
}

func (r *memRepository) FindExistingKeys(_ context.Context, labels []string) ([]invoice.Key, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findExistingErr != nil {
		return nil, r.findExistingErr
	}
	want := map[string]bool{}
	for _, l := range labels {
		want[l] = true
	}
	keys := []invoice.Key{}
	for _, row := range r.rows {
		if want[row.MonthLabel] {
			keys = append(keys, row.Key())
		}
	}
	return keys, nil
}

func (r *memRepository) InsertManyIfAbsent(_ context.Context, invoices []invoice.Invoice) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bulkCalls++
	if r.insertManyErr != nil {
		return 0, r.insertManyErr
	}
	var n int64
	for _, inv := range invoices {
		if r.exists(inv.Key()) {
			continue
		}
		r.rows[inv.ID] = inv
		n++
	}
	return n, nil
}

func (r *memRepository) InsertIfAbsent(_ context.Context, inv *invoice.Invoice) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertRowErr != nil {
		if err := r.insertRowErr(*inv); err != nil {
			return false, err
		}
	}
	if r.exists(inv.Key()) {
		return false, nil
	}
	r.rows[inv.ID] = *inv
	return true, nil
}

func (r *memRepository) load(id uuid.UUID) (*invoice.Invoice, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, invoiceerrors.ErrInvoiceNotFound
	}
	if e, ok := r.employees[row.EmployeeID]; ok {
		row.Employee = &e
	}
	if c, ok := r.campaigns[row.CampaignID]; ok {
		row.Campaign = &c
	}
	return &row, nil
}

func (r *memRepository) FindByID(_ context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(id)
}

func (r *memRepository) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, err := r.load(id)
	if err != nil {
		return nil, err
	}
	row.Employee, row.Campaign = nil, nil
	if r.findForUpdateHook != nil {
		r.findForUpdateHook(row)
	}
	return row, nil
}

func (r *memRepository) FindAll(_ context.Context, filter invoice.Filter) ([]invoice.Invoice, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter
	var out []invoice.Invoice
	for _, row := range r.rows {
		if filter.EmployeeID != nil && row.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.MonthLabel != nil && row.MonthLabel != *filter.MonthLabel {
			continue
		}
		full, _ := r.load(row.ID)
		out = append(out, *full)
	}
	return out, int64(len(out)), nil
}

func (r *memRepository) FindByEmployeeAndMonth(_ context.Context, employeeID uuid.UUID, label string) ([]invoice.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []invoice.Invoice
	for _, row := range r.rows {
		if row.EmployeeID == employeeID && row.MonthLabel == label {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r *memRepository) Update(_ context.Context, inv *invoice.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.rows[inv.ID]; !ok {
		return invoiceerrors.ErrInvoiceNotFound
	}
	row := *inv
	row.Employee, row.Campaign = nil, nil
	r.rows[inv.ID] = row
	return nil
}

func (r *memRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return invoiceerrors.ErrInvoiceNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memRepository) all() []invoice.Invoice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]invoice.Invoice, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row)
	}
	return out
}

type fakeCampaignRepository struct {
	active []campaign.Campaign
	err    error
}

func (f *fakeCampaignRepository) FindActive(context.Context) ([]campaign.Campaign, error) {
	return f.active, f.err
}

func (f *fakeCampaignRepository) FindByIDs(context.Context, []uuid.UUID) ([]campaign.Campaign, error) {
	return f.active, f.err
}

func (f *fakeCampaignRepository) FindIDsByProgramManager(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

type fakeAssignmentRepository struct {
	rows []assignment.Assignment
	err  error
}

func (f *fakeAssignmentRepository) FindByCampaignIDs(_ context.Context, ids []uuid.UUID) ([]assignment.Assignment, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := map[uuid.UUID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []assignment.Assignment
	for _, a := range f.rows {
		if want[a.CampaignID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepository) FindAgentsByCampaignIDs(context.Context, []uuid.UUID) ([]assignment.AgentRow, error) {
	return nil, nil
}

type fakeEmployeeRepository struct {
	byID map[uuid.UUID]employee.Employee
	err  error
}

func (f *fakeEmployeeRepository) FindByID(_ context.Context, id uuid.UUID) (*employee.Employee, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, employeeerrors.ErrEmployeeNotFound
	}
	return &e, nil
}

func (f *fakeEmployeeRepository) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]employee.Employee, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := map[uuid.UUID]employee.Employee{}
	for _, id := range ids {
		if e, ok := f.byID[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

// fakeAttendance answers from logged dates through the real classifier.
// When gate is set every call signals entered and then waits for gate to close.
type fakeAttendance struct {
	logged  map[uuid.UUID][]time.Time
	err     error
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeAttendance) Summarize(ctx context.Context, employeeID uuid.UUID, from, to time.Time) (attendance.Summary, error) {
	if f.gate != nil {
		select {
		case f.entered <- struct{}{}:
		default:
		}
		select {
		case <-f.gate:
		case <-ctx.Done():
			return attendance.Summary{}, ctx.Err()
		}
	}
	if f.err != nil {
		return attendance.Summary{}, f.err
	}
	return attendance.Aggregate(from, to, f.logged[employeeID]), nil
}

type fakePublisher struct {
	mu        sync.Mutex
	err       error
	published []document.Payslip
	discarded []string
	seq       int
}

func (p *fakePublisher) Publish(_ context.Context, slip document.Payslip) (document.Artifact, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return document.Artifact{}, p.err
	}
	p.seq++
	p.published = append(p.published, slip)
	key := document.ObjectKey(slip.InvoiceID, time.Unix(0, int64(p.seq)))
	return document.Artifact{Key: key, URL: "https://cdn.example.com/" + key}, nil
}

func (p *fakePublisher) Discard(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.discarded = append(p.discarded, key)
	return nil
}

type fakeOutboxRepository struct {
	events []kafka.OutboxEvent
	err    error
}

func (f *fakeOutboxRepository) WithTx(*sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(_ context.Context, event kafka.OutboxEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(context.Context, int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(context.Context, string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(context.Context, string, string) error { return nil }

