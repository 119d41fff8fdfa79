package db

import (
	"context"
	"testing"

	e "github.com/gartstein/staffing/internal/staffing/errors"
	"github.com/gartstein/staffing/internal/staffing/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	gormlogger "gorm.io/gorm/logger"
)

// SetupTestDB initializes an in-memory SQLite database for testing.
func SetupTestDB(t *testing.T) *Repository {
	repo, err := NewRepository(&Config{Driver: DriverSQLite, DBName: ":memory:"})
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func createDepartment(t *testing.T, repo *Repository, name, acronym string) *models.Department {
	d, err := models.NewDepartment(name, acronym)
	require.NoError(t, err)
	require.NoError(t, repo.CreateDepartment(context.Background(), d), "CreateDepartment should succeed")
	return d
}

func createEmployee(t *testing.T, repo *Repository, departmentID uuid.UUID, name, document string) *models.Employee {
	em, err := models.NewEmployee(departmentID, name, document)
	require.NoError(t, err)
	require.NoError(t, repo.CreateEmployee(context.Background(), em), "CreateEmployee should succeed")
	return em
}

// TestCreateDepartment tests the creation of a department record.
func TestCreateDepartment(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	d := createDepartment(t, repo, "Finance", "FIN")
	assert.False(t, d.CreatedAt.IsZero(), "CreatedAt should be filled in by the store")

	retrieved, err := repo.GetDepartment(ctx, d.ID)
	require.NoError(t, err, "GetDepartment should retrieve the created department")
	assert.Equal(t, "Finance", retrieved.Name)
	assert.Equal(t, "FIN", retrieved.Acronym)
	assert.Equal(t, models.StatusActive, retrieved.Status)
}

// TestGetDepartmentNotFound verifies error handling when the department does not exist.
func TestGetDepartmentNotFound(t *testing.T) {
	repo := SetupTestDB(t)

	_, err := repo.GetDepartment(context.Background(), uuid.New())
	assert.ErrorIs(t, err, e.ErrNotFound, "GetDepartment should return ErrNotFound for unknown id")
}

// TestListDepartmentsByStatus checks status scoping of department listings.
func TestListDepartmentsByStatus(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	createDepartment(t, repo, "Finance", "FIN")
	hr := createDepartment(t, repo, "Human Resources", "HR")

	require.NoError(t, hr.Deactivate(0))
	require.NoError(t, repo.UpdateDepartment(ctx, hr, models.StatusActive))

	active, err := repo.ListDepartmentsByStatus(ctx, models.StatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Finance", active[0].Name)

	inactive, err := repo.ListDepartmentsByStatus(ctx, models.StatusInactive)
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, hr.ID, inactive[0].ID)
}

// TestUpdateDepartment checks that an update only applies to the expected status.
func TestUpdateDepartment(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	d := createDepartment(t, repo, "Finance", "FIN")
	require.NoError(t, d.Update("Accounting", "ACC"))

	err := repo.UpdateDepartment(ctx, d, models.StatusActive)
	assert.NoError(t, err, "UpdateDepartment should not return an error")

	updated, err := repo.GetDepartment(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Accounting", updated.Name)
	assert.Equal(t, "ACC", updated.Acronym)

	err = repo.UpdateDepartment(ctx, d, models.StatusInactive)
	assert.ErrorIs(t, err, e.ErrNotFound, "status mismatch should be reported as not found")
}

// TestUpdateDepartmentNotFound tests updating a non-existing department.
func TestUpdateDepartmentNotFound(t *testing.T) {
	repo := SetupTestDB(t)

	d := &models.Department{ID: uuid.New(), Name: "Ghost", Acronym: "GH", Status: models.StatusActive}
	err := repo.UpdateDepartment(context.Background(), d, models.StatusActive)
	assert.ErrorIs(t, err, e.ErrNotFound)
}

// TestEmployeesByDepartmentAndStatus covers employee listings and counts.
func TestEmployeesByDepartmentAndStatus(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	finance := createDepartment(t, repo, "Finance", "FIN")
	hr := createDepartment(t, repo, "Human Resources", "HR")

	bob := createEmployee(t, repo, finance.ID, "Bob", "123")
	createEmployee(t, repo, finance.ID, "Ana Souza", "456")
	createEmployee(t, repo, hr.ID, "Carla", "789")

	require.NoError(t, bob.Deactivate())
	require.NoError(t, repo.UpdateEmployee(ctx, bob, models.StatusActive))

	count, err := repo.CountEmployees(ctx, finance.ID, models.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	financeActive, err := repo.ListEmployeesByDepartmentAndStatus(ctx, finance.ID, models.StatusActive)
	require.NoError(t, err)
	require.Len(t, financeActive, 1)
	assert.Equal(t, "Ana Souza", financeActive[0].Name)

	allActive, err := repo.ListEmployeesByStatus(ctx, models.StatusActive)
	require.NoError(t, err)
	assert.Len(t, allActive, 2)

	inactive, err := repo.ListEmployeesByStatus(ctx, models.StatusInactive)
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, bob.ID, inactive[0].ID)
}

// TestUpdateEmployee checks reassignment and the conditional status guard.
func TestUpdateEmployee(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	finance := createDepartment(t, repo, "Finance", "FIN")
	hr := createDepartment(t, repo, "Human Resources", "HR")
	bob := createEmployee(t, repo, finance.ID, "Bob", "123")

	require.NoError(t, bob.Update("Robert", "321", hr.ID))
	require.NoError(t, repo.UpdateEmployee(ctx, bob, models.StatusActive))

	stored, err := repo.GetEmployee(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "Robert", stored.Name)
	assert.Equal(t, "321", stored.Document)
	assert.Equal(t, hr.ID, stored.DepartmentID)
	assert.Equal(t, models.StatusActive, stored.Status)

	err = repo.UpdateEmployee(ctx, bob, models.StatusInactive)
	assert.ErrorIs(t, err, e.ErrNotFound)
}

// TestGetEmployeeNotFound verifies error handling when the employee does not exist.
func TestGetEmployeeNotFound(t *testing.T) {
	repo := SetupTestDB(t)

	_, err := repo.GetEmployee(context.Background(), uuid.New())
	assert.ErrorIs(t, err, e.ErrNotFound)
}

// TestConnect checks retry wrapping around NewRepository.
func TestConnect(t *testing.T) {
	logger := zaptest.NewLogger(t)

	repo, err := Connect(context.Background(), &Config{Driver: DriverSQLite, DBName: ":memory:"}, 3, logger)
	require.NoError(t, err)
	assert.NoError(t, repo.Ping(context.Background()))
	assert.NoError(t, repo.Close())

	_, err = Connect(context.Background(), &Config{Driver: "oracle"}, 3, logger)
	assert.ErrorIs(t, err, e.ErrInvalidInput, "unsupported driver should fail without retrying")
}

// TestExec ensures raw statements run against the store.
func TestExec(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	createDepartment(t, repo, "Finance", "FIN")
	require.NoError(t, repo.Exec(ctx, "DELETE FROM departments"))

	list, err := repo.ListDepartmentsByStatus(ctx, models.StatusActive)
	require.NoError(t, err)
	assert.Empty(t, list)
}

// TestListRejectsUnknownStatus makes sure a bogus status never reaches the query.
func TestListRejectsUnknownStatus(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	_, err := repo.ListDepartmentsByStatus(ctx, models.Status("Deleted"))
	assert.ErrorIs(t, err, e.ErrInvalidInput)

	_, err = repo.CountEmployees(ctx, uuid.New(), models.Status(""))
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}

// TestEmployeeDepartmentForeignKey checks that employees must reference an
// existing department and go away with it.
func TestEmployeeDepartmentForeignKey(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	orphan, err := models.NewEmployee(uuid.New(), "Bob", "123")
	require.NoError(t, err)
	err = repo.CreateEmployee(ctx, orphan)
	assert.ErrorIs(t, err, e.ErrNotFound, "CreateEmployee should reject an unknown department")

	d := createDepartment(t, repo, "Finance", "FIN")
	em := createEmployee(t, repo, d.ID, "Ana", "456")

	em.DepartmentID = uuid.New()
	err = repo.UpdateEmployee(ctx, em, models.StatusActive)
	assert.ErrorIs(t, err, e.ErrNotFound, "UpdateEmployee should reject an unknown department")

	require.NoError(t, repo.Exec(ctx, "DELETE FROM departments WHERE id = ?", d.ID))
	_, err = repo.GetEmployee(ctx, em.ID)
	assert.ErrorIs(t, err, e.ErrNotFound, "employees should be deleted with their department")
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, ":memory:?_foreign_keys=on", sqliteDSN(":memory:"))
	assert.Equal(t, "file.db?cache=shared&_foreign_keys=on", sqliteDSN("file.db?cache=shared"))
}

// TestRepositoryLoggerSilenced keeps gorm from printing outside the zap pipeline.
func TestRepositoryLoggerSilenced(t *testing.T) {
	repo := SetupTestDB(t)
	assert.Equal(t, gormlogger.Default.LogMode(gormlogger.Silent), repo.db.Logger)
	assert.True(t, repo.db.TranslateError)
}
