package invoice

import (
	"context"
	"database/sql"

	invoiceerrors "cep360-payroll/internal/invoice/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=invoice_repo.go -destination=mock/invoice_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindExistingKeys(ctx context.Context, monthLabels []string) ([]Key, error)
	InsertManyIfAbsent(ctx context.Context, invoices []Invoice) (int64, error)
	InsertIfAbsent(ctx context.Context, invoice *Invoice) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindAll(ctx context.Context, filter Filter) ([]Invoice, int64, error)
	FindByEmployeeAndMonth(ctx context.Context, employeeID uuid.UUID, monthLabel string) ([]Invoice, error)
	Update(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

// conn routes statements through the bound transaction when there is one.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func onIdentityConflictDoNothing() clause.OnConflict {
	return clause.OnConflict{
		Columns: []clause.Column{
			{Name: "employee_id"},
			{Name: "campaign_id"},
			{Name: "month_label"},
		},
		DoNothing: true,
	}
}

func (r *repository) FindExistingKeys(ctx context.Context, monthLabels []string) ([]Key, error) {
	if len(monthLabels) == 0 {
		return []Key{}, nil
	}

	var keys []Key
	err := r.conn(ctx).
		Model(&Invoice{}).
		Select("employee_id, campaign_id, month_label").
		Where("month_label IN ?", monthLabels).
		Scan(&keys).Error
	return keys, err
}

// InsertManyIfAbsent returns the number of rows actually written; rows that
// hit the identity constraint are skipped silently.
func (r *repository) InsertManyIfAbsent(ctx context.Context, invoices []Invoice) (int64, error) {
	if len(invoices) == 0 {
		return 0, nil
	}

	res := r.conn(ctx).
		Omit(clause.Associations).
		Clauses(onIdentityConflictDoNothing()).
		Create(&invoices)
	return res.RowsAffected, mapRepositoryError(res.Error)
}

func (r *repository) InsertIfAbsent(ctx context.Context, invoice *Invoice) (bool, error) {
	res := r.conn(ctx).
		Omit(clause.Associations).
		Clauses(onIdentityConflictDoNothing()).
		Create(invoice)
	if res.Error != nil {
		return false, mapRepositoryError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	var inv Invoice
	err := r.conn(ctx).
		Preload("Employee").
		Preload("Campaign.ProgramManagers").
		First(&inv, "id = ?", id).Error
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return &inv, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	var inv Invoice
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&inv, "id = ?", id).Error
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return &inv, nil
}

func (r *repository) FindAll(ctx context.Context, filter Filter) ([]Invoice, int64, error) {
	q := r.conn(ctx).Model(&Invoice{})

	if filter.EmployeeID != nil {
		q = q.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.CampaignID != nil {
		q = q.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.ProgramManagerID != nil {
		q = q.Where("campaign_id IN (?)",
			r.db.Table("campaign_program_managers").
				Select("campaign_id").
				Where("user_id = ?", *filter.ProgramManagerID),
		)
	}
	if filter.MonthLabel != nil {
		q = q.Where("month_label = ?", *filter.MonthLabel)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []Invoice
	q = q.Preload("Employee").Preload("Campaign").Order("created_at DESC, id ASC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) FindByEmployeeAndMonth(ctx context.Context, employeeID uuid.UUID, monthLabel string) ([]Invoice, error) {
	var rows []Invoice
	err := r.conn(ctx).
		Preload("Employee").
		Preload("Campaign").
		Where("employee_id = ? AND month_label = ?", employeeID, monthLabel).
		Order("start_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, invoice *Invoice) error {
	res := r.conn(ctx).
		Model(invoice).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(invoice)
	if res.Error != nil {
		return mapRepositoryError(res.Error)
	}
	if res.RowsAffected == 0 {
		return invoiceerrors.ErrInvoiceNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.conn(ctx).Where("id = ?", id).Delete(&Invoice{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return invoiceerrors.ErrInvoiceNotFound
	}
	return nil
}
