package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jonesrussell/stackpipe/internal/database"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	return sqlx.NewDb(mockDB, "postgres"), mock
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAuthorRepository_GetOrCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewAuthorRepository(db)

	mock.ExpectQuery("INSERT INTO author").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"author_id"}).AddRow(int64(7)))

	id, err := repo.GetOrCreate(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if id != 7 {
		t.Errorf("GetOrCreate() = %d, want 7", id)
	}

	expectationsMet(t, mock)
}

func TestAuthorRepository_GetOrCreate_ExistingRowSameID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewAuthorRepository(db)

	// Both callers racing on the same new username observe the same id.
	for range 2 {
		mock.ExpectQuery("INSERT INTO author").
			WithArgs("bob").
			WillReturnRows(sqlmock.NewRows([]string{"author_id"}).AddRow(int64(3)))
	}

	first, err := repo.GetOrCreate(context.Background(), "bob")
	if err != nil {
		t.Fatalf("first GetOrCreate() error = %v", err)
	}
	second, err := repo.GetOrCreate(context.Background(), "bob")
	if err != nil {
		t.Fatalf("second GetOrCreate() error = %v", err)
	}

	if first != second {
		t.Errorf("ids diverged: %d vs %d", first, second)
	}

	expectationsMet(t, mock)
}

func TestTagRepository_GetOrCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewTagRepository(db)

	mock.ExpectQuery("INSERT INTO tag").
		WithArgs("history").
		WillReturnRows(sqlmock.NewRows([]string{"tag_id"}).AddRow(int64(1)))

	id, err := repo.GetOrCreate(context.Background(), "history")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if id != 1 {
		t.Errorf("GetOrCreate() = %d, want 1", id)
	}

	expectationsMet(t, mock)
}

func TestTagRepository_LinkQuestion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewTagRepository(db)

	mock.ExpectExec("INSERT INTO question_tag_assignment").
		WithArgs(int64(101), pq.Array([]int64{1, 2})).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.LinkQuestion(context.Background(), 101, []int64{1, 2})
	if err != nil {
		t.Fatalf("LinkQuestion() error = %v", err)
	}

	expectationsMet(t, mock)
}

func TestTagRepository_LinkQuestion_NoTagsNoStatement(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewTagRepository(db)

	if err := repo.LinkQuestion(context.Background(), 101, nil); err != nil {
		t.Fatalf("LinkQuestion() error = %v", err)
	}

	expectationsMet(t, mock)
}

func TestQuestionRepository_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewQuestionRepository(db)

	asked := time.Date(2024, 3, 1, 16, 45, 12, 0, time.UTC)

	mock.ExpectExec("INSERT INTO question").
		WithArgs(int64(101), int64(7), "Why?", 5, 42, asked).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.Upsert(context.Background(), database.UpsertQuestionParams{
		ExternalID: 101,
		AuthorID:   7,
		Title:      "Why?",
		Votes:      5,
		Views:      42,
		AskedAt:    &asked,
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if id != 101 {
		t.Errorf("Upsert() = %d, want the external id 101", id)
	}

	expectationsMet(t, mock)
}

func TestQuestionRepository_Upsert_NilTimestamp(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewQuestionRepository(db)

	mock.ExpectExec("INSERT INTO question").
		WithArgs(int64(102), int64(7), "No clock", 0, 0, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if _, err := repo.Upsert(context.Background(), database.UpsertQuestionParams{
		ExternalID: 102,
		AuthorID:   7,
		Title:      "No clock",
	}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	expectationsMet(t, mock)
}

func TestAnswerRepository_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewAnswerRepository(db)

	mock.ExpectExec("INSERT INTO answer").
		WithArgs(int64(201), int64(101), int64(8), "Because.", 2, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.Upsert(context.Background(), database.UpsertAnswerParams{
		ExternalID: 201,
		QuestionID: 101,
		AuthorID:   8,
		Body:       "Because.",
		Votes:      2,
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if id != 201 {
		t.Errorf("Upsert() = %d, want the external id 201", id)
	}

	expectationsMet(t, mock)
}
