package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	rows "github.com/gartstein/staffing/internal/staffing/db/models"
	e "github.com/gartstein/staffing/internal/staffing/errors"
	"github.com/gartstein/staffing/internal/staffing/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	// DBName is the database name for postgres and the file path (or ":memory:") for sqlite.
	DBName  string
	SSLMode string
}

func NewRepository(cfg *Config) (*Repository, error) {
	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// every sqlite connection to ":memory:" is a separate database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(rows.All()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: db}, nil
}

// Connect opens the repository, retrying with exponential backoff up to maxRetries
// times. Configuration errors are not retried.
func Connect(ctx context.Context, cfg *Config, maxRetries uint64, logger *zap.Logger) (*Repository, error) {
	var repo *Repository
	operation := func() error {
		var err error
		repo, err = NewRepository(cfg)
		if errors.Is(err, e.ErrInvalidInput) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		logger.Warn("database not ready, retrying",
			zap.Error(err),
			zap.String("driver", cfg.Driver),
			zap.Duration("next_attempt_in", next),
		)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		return nil, err
	}
	return repo, nil
}

func openDialector(cfg *Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(sqliteDSN(cfg.DBName)), nil
	default:
		return nil, fmt.Errorf("%w: unsupported database driver %q", e.ErrInvalidInput, cfg.Driver)
	}
}

// sqliteDSN turns on foreign key enforcement, which sqlite leaves off per connection.
func sqliteDSN(name string) string {
	sep := "?"
	if strings.Contains(name, "?") {
		sep = "&"
	}
	return name + sep + "_foreign_keys=on"
}

// employeeWriteError reports a missing department as ErrNotFound.
func employeeWriteError(err error, departmentID uuid.UUID) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: department %s", e.ErrNotFound, departmentID)
	}
	return err
}

func (r *Repository) CreateDepartment(ctx context.Context, department *models.Department) error {
	row := departmentToRow(department)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	department.CreatedAt = row.CreatedAt
	department.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *Repository) GetDepartment(ctx context.Context, id uuid.UUID) (*models.Department, error) {
	var row rows.Department
	result := r.db.WithContext(ctx).First(&row, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return departmentFromRow(&row), nil
}

func (r *Repository) ListDepartmentsByStatus(ctx context.Context, status models.Status) ([]models.Department, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}
	var rs []rows.Department
	result := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("name").
		Find(&rs)
	if result.Error != nil {
		return nil, result.Error
	}
	return departmentsFromRows(rs), nil
}

// UpdateDepartment writes name, acronym and status, but only if the stored row
// still has the expected status. ErrNotFound otherwise.
func (r *Repository) UpdateDepartment(ctx context.Context, department *models.Department, expected models.Status) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&rows.Department{}).
		Where("id = ? AND status = ?", department.ID, string(expected)).
		Updates(map[string]interface{}{
			"name":       department.Name,
			"acronym":    department.Acronym,
			"status":     string(department.Status),
			"updated_at": now,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	department.UpdatedAt = now
	return nil
}

func (r *Repository) CountEmployees(ctx context.Context, departmentID uuid.UUID, status models.Status) (int64, error) {
	if err := status.Validate(); err != nil {
		return 0, err
	}
	var count int64
	result := r.db.WithContext(ctx).Model(&rows.Employee{}).
		Where("department_id = ? AND status = ?", departmentID, string(status)).
		Count(&count)
	return count, result.Error
}

func (r *Repository) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	row := employeeToRow(employee)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return employeeWriteError(err, employee.DepartmentID)
	}
	employee.CreatedAt = row.CreatedAt
	employee.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *Repository) GetEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	var row rows.Employee
	result := r.db.WithContext(ctx).First(&row, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return employeeFromRow(&row), nil
}

func (r *Repository) ListEmployeesByStatus(ctx context.Context, status models.Status) ([]models.Employee, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}
	var rs []rows.Employee
	result := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("name").
		Find(&rs)
	if result.Error != nil {
		return nil, result.Error
	}
	return employeesFromRows(rs), nil
}

func (r *Repository) ListEmployeesByDepartmentAndStatus(ctx context.Context, departmentID uuid.UUID, status models.Status) ([]models.Employee, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}
	var rs []rows.Employee
	result := r.db.WithContext(ctx).
		Where("department_id = ? AND status = ?", departmentID, string(status)).
		Order("name").
		Find(&rs)
	if result.Error != nil {
		return nil, result.Error
	}
	return employeesFromRows(rs), nil
}

// UpdateEmployee writes name, document, department and status, but only if the
// stored row still has the expected status. ErrNotFound otherwise.
func (r *Repository) UpdateEmployee(ctx context.Context, employee *models.Employee, expected models.Status) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&rows.Employee{}).
		Where("id = ? AND status = ?", employee.ID, string(expected)).
		Updates(map[string]interface{}{
			"name":          employee.Name,
			"document":      employee.Document,
			"department_id": employee.DepartmentID,
			"status":        string(employee.Status),
			"updated_at":    now,
		})

	if result.Error != nil {
		return employeeWriteError(result.Error, employee.DepartmentID)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	employee.UpdatedAt = now
	return nil
}

func (r *Repository) Exec(ctx context.Context, query string, params ...interface{}) error {
	result := r.db.WithContext(ctx).Exec(query, params...)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// Ping checks that the underlying connection is alive.
func (r *Repository) Ping(ctx context.Context) error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
