package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shahmeerabdul/GIKomplain/internal/config"
	"github.com/shahmeerabdul/GIKomplain/internal/models"
	"github.com/sony/gobreaker"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	// ErrNotFound is returned when a lookup by key matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate key")
	// ErrUnavailable is returned by Redis-backed features when Redis is not configured.
	ErrUnavailable = errors.New("redis not configured")
	// ErrTerminal is returned when a transition hits a complaint that reached
	// a terminal status after it was read.
	ErrTerminal = errors.New("complaint is in a terminal status")
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

type DepartmentStore interface {
	ListDepartments(ctx context.Context) ([]models.Department, error)
	GetDepartmentByID(ctx context.Context, id string) (*models.Department, error)
	EnsureDepartment(ctx context.Context, name string) (*models.Department, error)
}

// ComplaintFilter narrows ListComplaints. Zero value lists everything,
// newest first.
type ComplaintFilter struct {
	DepartmentID *string
	Statuses     []models.Status
	OldestFirst  bool
}

type ComplaintStore interface {
	// CreateComplaint inserts c, its attachments and entry in one transaction.
	CreateComplaint(ctx context.Context, c *models.Complaint, entry *models.AuditLog) error
	GetComplaint(ctx context.Context, id string) (*models.Complaint, error)
	ListComplaintsByComplainant(ctx context.Context, userID string) ([]models.Complaint, error)
	ListComplaints(ctx context.Context, f ComplaintFilter) ([]models.Complaint, error)
	// ApplyTransition writes the lifecycle fields of c and appends entry in
	// one transaction. Last write wins, except that a complaint already in a
	// terminal status is left untouched and ErrTerminal is returned.
	ApplyTransition(ctx context.Context, c *models.Complaint, entry *models.AuditLog) error
	ListAuditLogs(ctx context.Context, complaintID string) ([]models.AuditLog, error)
}

type CommentStore interface {
	// CreateComment inserts cm and loads its Author.
	CreateComment(ctx context.Context, cm *models.Comment) error
	ListComments(ctx context.Context, complaintID string) ([]models.Comment, error)
}

// CountRow is one group of a grouped count.
type CountRow struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// ResolutionSample is one resolved complaint with its department and the
// time of its first resolution.
type ResolutionSample struct {
	DepartmentID   string
	DepartmentName string
	SubmittedAt    time.Time
	ResolvedAt     time.Time
}

type ReportStore interface {
	CountComplaintsByCategory(ctx context.Context) ([]CountRow, error)
	CountComplaintsByStatus(ctx context.Context) ([]CountRow, error)
	ResolutionSamples(ctx context.Context) ([]ResolutionSample, error)
}

// Storage is everything the service persists.
type Storage interface {
	UserStore
	DepartmentStore
	ComplaintStore
	CommentStore
	ReportStore
	Ping(ctx context.Context) error
}

// Service implements Storage on PostgreSQL through GORM, and the Redis-backed
// token deny-list, cache and event channel.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	cb    *gobreaker.CircuitBreaker
	log   zerolog.Logger
}

var _ Storage = (*Service)(nil)

// NewStorageService Constructor. rdb may be nil.
func NewStorageService(db *gorm.DB, rdb *redis.Client, log zerolog.Logger) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		cb:    config.NewCircuitBreaker("Redis", log),
		log:   log,
	}
}

// OpenPostgres connects GORM to dsn. Driver errors are translated so that
// unique violations surface as gorm.ErrDuplicatedKey.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Department{},
		&models.User{},
		&models.Complaint{},
		&models.Attachment{},
		&models.Comment{},
		&models.AuditLog{},
	)
}

// Ping checks PostgreSQL and, when configured, Redis.
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if s.Redis != nil {
		if err := s.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// translate maps GORM errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
