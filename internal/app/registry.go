package app

import (
	"context"
	"database/sql"
	"fmt"

	"cep360-payroll/internal/assignment"
	"cep360-payroll/internal/attendance"
	"cep360-payroll/internal/campaign"
	"cep360-payroll/internal/config"
	"cep360-payroll/internal/document"
	"cep360-payroll/internal/employee"
	"cep360-payroll/internal/invoice"
	"cep360-payroll/internal/messaging/kafka"
	"cep360-payroll/internal/rbac"
	"cep360-payroll/internal/rbac/infra"
	"cep360-payroll/internal/shared/connection"
	"cep360-payroll/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const connectRetries = 5

type infrastructure struct {
	gormDB *gorm.DB
	db     *sql.DB
	rdb    *redis.Client
}

func connectDatabase(cfg *config.Config) (*infrastructure, error) {
	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database, connectRetries)
	if err != nil {
		return nil, err
	}
	db, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	return &infrastructure{gormDB: gormDB, db: db}, nil
}

func (i *infrastructure) Close() {
	if i.rdb != nil {
		_ = i.rdb.Close()
	}
	if i.db != nil {
		_ = i.db.Close()
	}
}

func newBlobStore(ctx context.Context, cfg config.StorageConfig) (storage.BlobStore, error) {
	switch cfg.Driver {
	case config.StorageDriverS3:
		return storage.NewS3StoreFromEnv(ctx, cfg.S3Bucket, cfg.S3Region, cfg.CDNBaseURL)
	case config.StorageDriverLocal:
		return storage.NewLocalStore(cfg.Dir, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

type repositories struct {
	campaigns   campaign.Repository
	assignments assignment.Repository
	employees   employee.Repository
	attendance  attendance.Repository
	invoices    invoice.Repository
	outbox      kafka.OutboxRepository
}

func newRepositories(deps *infrastructure) repositories {
	return repositories{
		campaigns:   campaign.NewRepository(deps.gormDB),
		assignments: assignment.NewRepository(deps.gormDB),
		employees:   employee.NewRepository(deps.gormDB),
		attendance:  attendance.NewRepository(deps.gormDB),
		invoices:    invoice.NewRepository(deps.gormDB),
		outbox:      kafka.NewOutboxRepository(deps.db),
	}
}

// newInvoiceService builds the batch generator and the document pipeline.
// Queued document generation is only offered when a broker is configured.
func newInvoiceService(
	ctx context.Context,
	cfg *config.Config,
	deps *infrastructure,
	repos repositories,
	logger *zap.Logger,
) (invoice.Service, storage.BlobStore, error) {
	store, err := newBlobStore(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, err
	}

	generator := invoice.NewGenerator(
		repos.invoices,
		repos.campaigns,
		repos.assignments,
		repos.employees,
		attendance.NewAggregator(repos.attendance),
		invoice.GeneratorConfig{
			Concurrency: cfg.Payroll.Concurrency,
			ChunkSize:   cfg.Payroll.InsertChunk,
		},
		logger,
	)
	publisher := document.NewPublisher(document.NewPDFRenderer(), store, logger)

	var outbox kafka.OutboxRepository
	if cfg.Kafka.Broker != "" {
		outbox = repos.outbox
	}

	svc := invoice.NewService(deps.db, repos.invoices, generator, publisher, outbox, cfg.Payroll.Signatory, logger)
	return svc, store, nil
}

func registerModules(
	ctx context.Context,
	router *gin.Engine,
	cfg *config.Config,
	deps *infrastructure,
	logger *zap.Logger,
) error {
	// --- Repositories ---
	repos := newRepositories(deps)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(infra.RoleModel)
	if err != nil {
		return err
	}
	rbacService, err := rbac.NewService(enforcer, rbac.DefaultPolicies, rbac.RoleInheritance, logger)
	if err != nil {
		return err
	}

	// --- Services ---
	invoiceService, store, err := newInvoiceService(ctx, cfg, deps, repos, logger)
	if err != nil {
		return err
	}
	assignmentService := assignment.NewService(repos.assignments, repos.campaigns, deps.rdb, logger)
	attendanceService := attendance.NewService(repos.attendance, logger)

	// --- Handlers ---
	invoiceHandler := invoice.NewHandler(invoiceService, deps.rdb, logger)
	assignmentHandler := assignment.NewHandler(assignmentService, logger)
	attendanceHandler := attendance.NewHandler(attendanceService)
	rbacHandler := rbac.NewHandler(rbacService)

	if local, ok := store.(*storage.LocalStore); ok {
		router.Static("/files", local.BasePath())
	}

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		invoice.RegisterRoutes(api, invoiceHandler, rbacService, cfg.JWT.Secret, logger, deps.rdb)
		assignment.RegisterRoutes(api, assignmentHandler, rbacService, cfg.JWT.Secret, logger)
		attendance.RegisterRoutes(api, attendanceHandler, rbacService, cfg.JWT.Secret, logger)
		rbac.RegisterRoutes(api, rbacHandler, cfg.JWT.Secret)
	}

	return nil
}
