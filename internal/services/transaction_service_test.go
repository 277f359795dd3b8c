package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/finbooks/finbooks/internal/database/testutil"
	"github.com/finbooks/finbooks/internal/models"
)

func mustTransactionFixture(t *testing.T) (*TransactionService, *models.Company, *gorm.DB) {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	companies, err := NewCompanyService(db)
	require.NoError(t, err)
	company := mustCreateCompany(t, companies, "Mover")

	transactions, err := NewTransactionService(db)
	require.NoError(t, err)
	return transactions, company, db
}

func seedTransactions(t *testing.T, svc *TransactionService, companyID string, n int) {
	t.Helper()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		_, err := svc.Create(context.Background(), CreateTransactionInput{
			CompanyID:  companyID,
			Direction:  models.TransactionIn,
			Amount:     decimal.NewFromInt(int64(i + 1)),
			OccurredAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}
}

func TestTransactionCursorPagination(t *testing.T) {
	svc, company, _ := mustTransactionFixture(t)
	seedTransactions(t, svc, company.ID, 5)

	first, err := svc.List(context.Background(), ListTransactionsOptions{
		CompanyID: company.ID,
		Limit:     2,
	})
	require.NoError(t, err)
	require.Len(t, first.Transactions, 2)
	require.True(t, first.HasMore)
	require.NotEmpty(t, first.NextCursor)
	require.True(t, first.Transactions[0].OccurredAt.After(first.Transactions[1].OccurredAt),
		"pages are newest first")

	second, err := svc.List(context.Background(), ListTransactionsOptions{
		CompanyID: company.ID,
		Limit:     2,
		Cursor:    first.NextCursor,
	})
	require.NoError(t, err)
	require.Len(t, second.Transactions, 2)
	require.True(t, second.HasMore)
	require.True(t, second.Transactions[0].OccurredAt.Before(first.Transactions[1].OccurredAt))

	third, err := svc.List(context.Background(), ListTransactionsOptions{
		CompanyID: company.ID,
		Limit:     2,
		Cursor:    second.NextCursor,
	})
	require.NoError(t, err)
	require.Len(t, third.Transactions, 1)
	require.False(t, third.HasMore)
	require.Empty(t, third.NextCursor)
}

func TestTransactionListRejectsBadCursor(t *testing.T) {
	svc, company, _ := mustTransactionFixture(t)

	_, err := svc.List(context.Background(), ListTransactionsOptions{
		CompanyID: company.ID,
		Cursor:    "not-base64!",
	})
	require.ErrorIs(t, err, ErrInvalidCursor)
}

func TestTransactionLinkAndUnlinkEntry(t *testing.T) {
	svc, company, db := mustTransactionFixture(t)
	seedTransactions(t, svc, company.ID, 1)

	page, err := svc.List(context.Background(), ListTransactionsOptions{CompanyID: company.ID})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 1)
	txID := page.Transactions[0].ID

	entry := models.Entry{
		CompanyID:     company.ID,
		Date:          time.Now().UTC(),
		DebitAccount:  "bank",
		CreditAccount: "revenue",
		Amount:        decimal.NewFromInt(100),
	}
	require.NoError(t, db.Create(&entry).Error)

	linked, err := svc.Link(context.Background(), txID, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, linked.EntryID)
	require.Equal(t, entry.ID, *linked.EntryID)

	// Linking validates both sides.
	_, err = svc.Link(context.Background(), txID, "33333333-3333-3333-3333-333333333333")
	require.ErrorIs(t, err, ErrEntryNotFound)
	_, err = svc.Link(context.Background(), "44444444-4444-4444-4444-444444444444", entry.ID)
	require.ErrorIs(t, err, ErrTransactionNotFound)

	unlinked, err := svc.Unlink(context.Background(), txID)
	require.NoError(t, err)
	require.Nil(t, unlinked.EntryID)

	got, err := svc.Get(context.Background(), txID)
	require.NoError(t, err)
	require.Nil(t, got.EntryID)
}

func TestTransactionCreateValidatesReferences(t *testing.T) {
	svc, company, _ := mustTransactionFixture(t)

	missingWallet := "55555555-5555-5555-5555-555555555555"
	_, err := svc.Create(context.Background(), CreateTransactionInput{
		CompanyID: company.ID,
		WalletID:  &missingWallet,
		Direction: models.TransactionIn,
		Amount:    decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, ErrWalletNotFound)

	_, err = svc.Create(context.Background(), CreateTransactionInput{
		CompanyID: company.ID,
		Direction: "sideways",
		Amount:    decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, ErrValidation)
}
