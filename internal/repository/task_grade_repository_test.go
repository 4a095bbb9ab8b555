package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-hub-api/internal/models"
)

func newTaskGradeRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTaskGradeRepositoryInsertRunsStatusSyncInTx(t *testing.T) {
	db, mock, cleanup := newTaskGradeRepoMock(t)
	defer cleanup()

	repo := NewTaskGradeRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO task_grades")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET status = 'graded'")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	grade := &models.TaskGrade{
		TaskID:    "task-1",
		StudentID: "stu-1",
		GraderID:  "admin-1",
		Points:    8,
		MaxPoints: 10,
	}
	require.NoError(t, repo.InsertAndSyncStatus(context.Background(), grade))
	require.NotEmpty(t, grade.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskGradeRepositoryInsertDuplicateRollsBack(t *testing.T) {
	db, mock, cleanup := newTaskGradeRepoMock(t)
	defer cleanup()

	repo := NewTaskGradeRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO task_grades")).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.InsertAndSyncStatus(context.Background(), &models.TaskGrade{
		TaskID:    "task-1",
		StudentID: "stu-1",
		GraderID:  "admin-1",
		Points:    8,
		MaxPoints: 10,
	})
	require.ErrorIs(t, err, ErrDuplicateGrade)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskGradeRepositoryInsertRollsBackWhenSyncFails(t *testing.T) {
	db, mock, cleanup := newTaskGradeRepoMock(t)
	defer cleanup()

	repo := NewTaskGradeRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO task_grades")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET status = 'graded'")).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	err := repo.InsertAndSyncStatus(context.Background(), &models.TaskGrade{
		TaskID:    "task-1",
		StudentID: "stu-1",
		GraderID:  "admin-1",
		Points:    8,
		MaxPoints: 10,
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskGradeRepositoryUpdateReusesStatusSync(t *testing.T) {
	db, mock, cleanup := newTaskGradeRepoMock(t)
	defer cleanup()

	repo := NewTaskGradeRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE task_grades SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET status = 'graded'")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateAndSyncStatus(context.Background(), &models.TaskGrade{
		ID:        "grade-1",
		TaskID:    "task-1",
		StudentID: "stu-1",
		GraderID:  "admin-2",
		Points:    9,
		MaxPoints: 10,
	}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskGradeRepositoryGetByTaskAndStudent(t *testing.T) {
	db, mock, cleanup := newTaskGradeRepoMock(t)
	defer cleanup()

	repo := NewTaskGradeRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "task_id", "student_id", "grader_id", "points", "max_points", "feedback", "graded_at", "updated_at"}).
		AddRow("grade-1", "task-1", "stu-1", "admin-1", 8, 10, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, task_id, student_id")).
		WithArgs("task-1", "stu-1").
		WillReturnRows(rows)

	grade, err := repo.GetByTaskAndStudent(context.Background(), "task-1", "stu-1")
	require.NoError(t, err)
	require.Equal(t, 8, grade.Points)
	require.NoError(t, mock.ExpectationsWereMet())
}
