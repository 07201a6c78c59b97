package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SAP-F-2025/question-import-service/internal/models"
	"github.com/SAP-F-2025/question-import-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupImportJobTest(t *testing.T) (repositories.ImportJobRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewImportJobPostgreSQL(db), mock
}

func TestImportJobPostgreSQL_Create(t *testing.T) {
	repo, mock := setupImportJobTest(t)

	mock.ExpectExec(`INSERT INTO "import_jobs"`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	now := time.Now()
	err := repo.Create(context.Background(), &models.ImportJob{
		ID:        "6f1c2a9e-1f6b-4a53-9c1e-1d7a3f0b8e21",
		UserID:    "instructor-1",
		FileName:  "questions.csv",
		FileType:  "csv",
		FileSize:  1024,
		Status:    models.ImportProcessing,
		StartedAt: &now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportJobPostgreSQL_Update(t *testing.T) {
	repo, mock := setupImportJobTest(t)

	mock.ExpectExec(`UPDATE "import_jobs" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), &models.ImportJob{
		ID:           "job-1",
		UserID:       "instructor-1",
		Status:       models.ImportCompleted,
		SuccessCount: 5,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportJobPostgreSQL_UpdateMissing(t *testing.T) {
	repo, mock := setupImportJobTest(t)

	mock.ExpectExec(`UPDATE "import_jobs" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.ImportJob{ID: "missing", Status: models.ImportFailed})
	assert.True(t, repositories.IsNotFoundError(err))
}

func TestImportJobPostgreSQL_GetByID(t *testing.T) {
	repo, mock := setupImportJobTest(t)

	rows := sqlmock.NewRows([]string{"id", "user_id", "file_name", "file_type", "status", "success_count", "failure_count"}).
		AddRow("job-1", "instructor-1", "questions.csv", "csv", "completed", 24, 1)
	mock.ExpectQuery(`SELECT \* FROM "import_jobs" WHERE id = \$1`).WillReturnRows(rows)

	job, err := repo.GetByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "questions.csv", job.FileName)
	assert.Equal(t, models.ImportCompleted, job.Status)
	assert.Equal(t, 24, job.SuccessCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportJobPostgreSQL_GetByIDNotFound(t *testing.T) {
	repo, mock := setupImportJobTest(t)

	mock.ExpectQuery(`SELECT \* FROM "import_jobs" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "nope")
	assert.True(t, repositories.IsNotFoundError(err))
}

func TestImportJobPostgreSQL_ListByUser(t *testing.T) {
	repo, mock := setupImportJobTest(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "import_jobs" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT \* FROM "import_jobs" WHERE user_id = \$1 ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status"}).
			AddRow("job-2", "instructor-1", "completed").
			AddRow("job-1", "instructor-1", "failed"))

	jobs, total, err := repo.ListByUser(context.Background(), "instructor-1", repositories.ImportJobFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, jobs, 2)
	assert.Equal(t, "job-2", jobs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
