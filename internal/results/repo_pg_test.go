package results

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	res := OCRResult{
		ID:            "res-1",
		DocumentID:    "doc-1",
		OriginalText:  "x^2",
		CorrectedText: "x squared",
		LaTeXCode:     `\documentclass{article}\begin{document}$x^{2}$\end{document}`,
		Confidence:    87.5,
		CreatedAt:     time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO ocr_results").
		WithArgs(
			res.ID,
			res.DocumentID,
			res.OriginalText,
			res.CorrectedText,
			res.LaTeXCode,
			res.Confidence,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), res); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByDocumentIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT id, document_id").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetByDocumentID(context.Background(), "doc-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
