package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/finbooks/internal/database/testutil"
	"github.com/finbooks/finbooks/internal/models"
	"github.com/finbooks/finbooks/internal/services"
)

func mustTransactionHandler(t *testing.T) (*TransactionHandler, string) {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	companies, err := services.NewCompanyService(db)
	require.NoError(t, err)
	company, err := companies.Create(context.Background(), services.CreateCompanyInput{
		Name:        "Ledger Co",
		OwnerUserID: "owner-1",
	})
	require.NoError(t, err)

	transactions, err := services.NewTransactionService(db)
	require.NoError(t, err)

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := transactions.Create(context.Background(), services.CreateTransactionInput{
			CompanyID:  company.ID,
			Direction:  models.TransactionIn,
			Amount:     decimal.NewFromInt(int64(i + 1)),
			OccurredAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	return NewTransactionHandler(transactions), company.ID
}

func TestTransactionListCarriesCursorMeta(t *testing.T) {
	handler, companyID := mustTransactionHandler(t)

	c, recorder := getContext(t, "owner-1", "company_id="+companyID+"&limit=2")
	handler.List(c)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var listed []models.Transaction
	decodeData(t, recorder, &listed)
	require.Len(t, listed, 2)

	payload := decodeResponse(t, recorder)
	require.NotNil(t, payload.Meta)
	require.NotEmpty(t, payload.Meta.NextCursor)
	require.NotNil(t, payload.Meta.HasMore)
	require.True(t, *payload.Meta.HasMore)
	require.Nil(t, payload.Meta.Total, "cursor pages never report an offset total")

	// Following the cursor drains the remaining page.
	c2, recorder2 := getContext(t, "owner-1",
		"company_id="+companyID+"&limit=2&cursor="+payload.Meta.NextCursor)
	handler.List(c2)
	require.Equal(t, http.StatusOK, recorder2.Code)

	var rest []models.Transaction
	decodeData(t, recorder2, &rest)
	require.Len(t, rest, 1)

	tail := decodeResponse(t, recorder2)
	require.NotNil(t, tail.Meta)
	require.Empty(t, tail.Meta.NextCursor)
	require.False(t, *tail.Meta.HasMore)
}

func TestTransactionListRejectsMalformedCursor(t *testing.T) {
	handler, companyID := mustTransactionHandler(t)

	c, recorder := getContext(t, "owner-1", "company_id="+companyID+"&cursor=%21%21")
	handler.List(c)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}
