package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reimburse/internal/model"
	"reimburse/internal/repository"
)

var invoiceRowColumns = []string{
	"id", "original_filename", "file_type", "storage_path", "size", "content_type",
	"status", "category", "amount", "attachments", "notes", "created_at", "updated_at",
}

func pendingRow(rows *sqlmock.Rows, id string, at time.Time) *sqlmock.Rows {
	return rows.AddRow(id, "a.pdf", "pdf", "invoices/"+id+".pdf", 10, "application/pdf",
		"pending", nil, nil, nil, nil, at, at)
}

func TestInvoicePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewInvoicePostgres(db)
	now := time.Now().UTC()
	inv := &model.Invoice{
		ID:               "inv-1",
		OriginalFilename: "a.pdf",
		FileType:         "pdf",
		StoragePath:      "invoices/inv-1.pdf",
		Size:             10,
		ContentType:      "application/pdf",
		Status:           model.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	mock.ExpectQuery("INSERT INTO invoices").
		WithArgs(inv.ID, inv.OriginalFilename, inv.FileType, inv.StoragePath, inv.Size, inv.ContentType, "pending", now, now).
		WillReturnRows(pendingRow(sqlmock.NewRows(invoiceRowColumns), "inv-1", now))

	got, err := repo.Create(context.Background(), inv)

	require.NoError(t, err)
	assert.Equal(t, "inv-1", got.ID)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Nil(t, got.Category)
	assert.Nil(t, got.Amount)
	assert.Nil(t, got.Attachments)
	assert.Nil(t, got.Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoicePostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewInvoicePostgres(db)
	ctx := context.Background()

	t.Run("completed row", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(invoiceRowColumns).
			AddRow("inv-1", "a.pdf", "pdf", "invoices/inv-1.pdf", 10, "application/pdf",
				"completed", "交通", "50.00", []byte(`["行程单","详情"]`), "taxi", now, now)
		mock.ExpectQuery("SELECT (.+) FROM invoices WHERE id = ?").
			WithArgs("inv-1").
			WillReturnRows(rows)

		inv, err := repo.FindByID(ctx, "inv-1")

		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, inv.Status)
		assert.Equal(t, model.CategoryTransport, *inv.Category)
		assert.True(t, decimal.RequireFromString("50").Equal(*inv.Amount))
		assert.Equal(t, []string{"行程单", "详情"}, inv.Attachments)
		assert.Equal(t, "taxi", *inv.Notes)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM invoices WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		inv, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, inv)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoicePostgres_FindByIDForUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewInvoicePostgres(db)
	mock.ExpectQuery("SELECT (.+) FROM invoices WHERE id = \\$1 FOR UPDATE").
		WithArgs("inv-1").
		WillReturnRows(pendingRow(sqlmock.NewRows(invoiceRowColumns), "inv-1", time.Now()))

	inv, err := repo.FindByIDForUpdate(context.Background(), "inv-1")

	require.NoError(t, err)
	assert.Equal(t, "inv-1", inv.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoicePostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewInvoicePostgres(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("unfiltered newest first", func(t *testing.T) {
		rows := sqlmock.NewRows(invoiceRowColumns)
		pendingRow(rows, "b", now)
		pendingRow(rows, "a", now.Add(-time.Hour))
		mock.ExpectQuery("SELECT (.+) FROM invoices ORDER BY created_at DESC, id DESC").
			WillReturnRows(rows)

		items, err := repo.List(ctx, repository.ListFilter{})

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "b", items[0].ID)
	})

	t.Run("status filter ascending", func(t *testing.T) {
		status := model.StatusCompleted
		mock.ExpectQuery("SELECT (.+) FROM invoices WHERE status = \\$1 ORDER BY created_at ASC, id ASC").
			WithArgs("completed").
			WillReturnRows(sqlmock.NewRows(invoiceRowColumns))

		items, err := repo.List(ctx, repository.ListFilter{Status: &status, Ascending: true})

		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM invoices").WillReturnError(errors.New("db down"))

		_, err := repo.List(ctx, repository.ListFilter{})

		assert.EqualError(t, err, "db down")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoicePostgres_UpdateAnnotation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewInvoicePostgres(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("complete writes every field", func(t *testing.T) {
		cat := model.CategoryMeals
		amt := decimal.RequireFromString("123.45")
		notes := `lunch, "team"`
		rows := sqlmock.NewRows(invoiceRowColumns).
			AddRow("inv-1", "a.pdf", "pdf", "p", 10, "application/pdf",
				"completed", "餐费", "123.45", []byte(`["receipt"]`), notes, now, now)

		mock.ExpectQuery("UPDATE invoices SET status = \\$2, category = \\$3, amount = \\$4, attachments = \\$5, notes = \\$6").
			WithArgs("inv-1", "completed", "餐费", "123.45", `["receipt"]`, notes).
			WillReturnRows(rows)

		inv, err := repo.UpdateAnnotation(ctx, "inv-1", model.Annotation{
			Status:      model.StatusCompleted,
			Category:    &cat,
			Amount:      &amt,
			Attachments: []string{"receipt"},
			Notes:       &notes,
		})

		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, inv.Status)
		assert.Equal(t, notes, *inv.Notes)
	})

	t.Run("reset writes nulls", func(t *testing.T) {
		mock.ExpectQuery("UPDATE invoices").
			WithArgs("inv-1", "pending", nil, nil, nil, nil).
			WillReturnRows(pendingRow(sqlmock.NewRows(invoiceRowColumns), "inv-1", now))

		inv, err := repo.UpdateAnnotation(ctx, "inv-1", model.PendingAnnotation())

		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, inv.Status)
		assert.Nil(t, inv.Amount)
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectQuery("UPDATE invoices").WillReturnError(sql.ErrNoRows)

		_, err := repo.UpdateAnnotation(ctx, "missing", model.PendingAnnotation())

		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoicePostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewInvoicePostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM invoices WHERE id = ?").
		WithArgs("inv-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(ctx, "inv-1"))

	mock.ExpectExec("DELETE FROM invoices WHERE id = ?").
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, "gone"), sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}
