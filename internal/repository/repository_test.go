package repository

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/Dan9191/investment-advisor/internal/models"
)

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db), mock
}

var userColumns = []string{"id", "username", "email", "password_hash", "created_at", "updated_at"}

func TestCreateUser(t *testing.T) {
	repo, mock := newMock(t)
	user := &models.User{Username: "asha", Email: "asha@example.com", PasswordHash: "hash"}

	mock.ExpectQuery("INSERT INTO advisor.users").
		WithArgs(user.Username, user.Email, user.PasswordHash).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(5), "2024-01-01T00:00:00Z", "2024-01-01T00:00:00Z"))

	if err := repo.CreateUser(user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.ID != 5 {
		t.Errorf("ID = %d, want 5", user.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("INSERT INTO advisor.users").
		WithArgs("asha", "asha@example.com", "hash").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.CreateUser(&models.User{Username: "asha", Email: "asha@example.com", PasswordHash: "hash"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestCreateUserOtherError(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("INSERT INTO advisor.users").
		WillReturnError(&pq.Error{Code: "23502", Message: "null value in column"})

	err := repo.CreateUser(&models.User{Username: "asha", Email: "asha@example.com", PasswordHash: "hash"})
	if err == nil || errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected a wrapped insert error, got %v", err)
	}
}

func TestFindUserByEmail(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("SELECT id, username, email, password_hash").
		WithArgs("asha@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(int64(5), "asha", "asha@example.com", "hash", "2024-01-01", "2024-01-01"))

	user, err := repo.FindUserByEmail("asha@example.com")
	if err != nil {
		t.Fatalf("FindUserByEmail: %v", err)
	}
	if user.ID != 5 || user.PasswordHash != "hash" {
		t.Errorf("unexpected user %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestFindUserByIDNotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("SELECT id, username, email, password_hash").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.FindUserByID(9)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSavePlan(t *testing.T) {
	repo, mock := newMock(t)
	plan := &models.Plan{
		ID:        "plan-1",
		Risk:      models.RiskLow,
		Source:    models.SourceFallback,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO advisor.plans")).
		WithArgs(plan.ID, int64(5), "Low", "fallback", sqlmock.AnyArg(), plan.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.SavePlan(5, plan); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestFindPlansByUser(t *testing.T) {
	repo, mock := newMock(t)
	created := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, risk, source, payload, created_at").
		WithArgs(int64(5), 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "risk", "source", "payload", "created_at"}).
			AddRow("plan-2", "High", "advice", []byte(`{"id":"plan-2"}`), created).
			AddRow("plan-1", "Low", "fallback", []byte(`{"id":"plan-1"}`), created.Add(-time.Hour)))

	plans, err := repo.FindPlansByUser(5, 10)
	if err != nil {
		t.Fatalf("FindPlansByUser: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("got %d plans, want 2", len(plans))
	}
	if plans[0].Risk != models.RiskHigh || plans[0].Source != models.SourceAdvice {
		t.Errorf("unexpected first plan %+v", plans[0])
	}
	if string(plans[1].Plan) != `{"id":"plan-1"}` {
		t.Errorf("payload = %s", plans[1].Plan)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
