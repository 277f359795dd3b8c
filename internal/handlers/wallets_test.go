package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/finbooks/internal/chain"
	"github.com/finbooks/finbooks/internal/database/testutil"
	"github.com/finbooks/finbooks/internal/models"
	"github.com/finbooks/finbooks/internal/services"
)

func mustWalletHandler(t *testing.T) (*WalletHandler, *models.Wallet) {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	companies, err := services.NewCompanyService(db)
	require.NoError(t, err)
	company, err := companies.Create(context.Background(), services.CreateCompanyInput{
		Name:        "Treasury Co",
		OwnerUserID: "owner-1",
	})
	require.NoError(t, err)

	wallets, err := services.NewWalletService(db)
	require.NoError(t, err)
	wallet, err := wallets.Create(context.Background(), services.CreateWalletInput{
		CompanyID: company.ID,
		Name:      "Main",
		Chain:     models.ChainEthereum,
		Address:   "0xabc",
	})
	require.NoError(t, err)

	// No API key configured: imports must answer 503, not 500.
	importer, err := chain.NewImporter(db, chain.NewExplorerClient(chain.ExplorerConfig{}))
	require.NoError(t, err)

	snapshots, err := services.NewSnapshotService(db, mustMemStore(t))
	require.NoError(t, err)

	return NewWalletHandler(wallets, importer, snapshots), wallet
}

func TestWalletImportUnconfiguredAnswers503(t *testing.T) {
	handler, wallet := mustWalletHandler(t)

	c, recorder := jsonContext(t, "owner-1", nil)
	c.Params = gin.Params{gin.Param{Key: "id", Value: wallet.ID}}
	handler.Import(c)
	require.Equal(t, http.StatusServiceUnavailable, recorder.Code, recorder.Body.String())

	payload := decodeResponse(t, recorder)
	require.False(t, payload.Success)
}

func TestWalletImportUnknownWalletAnswers404(t *testing.T) {
	handler, _ := mustWalletHandler(t)

	c, recorder := jsonContext(t, "owner-1", nil)
	c.Params = gin.Params{gin.Param{Key: "id", Value: "22222222-2222-2222-2222-222222222222"}}
	handler.Import(c)
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestWalletCreateRejectsDuplicateAddress(t *testing.T) {
	handler, wallet := mustWalletHandler(t)

	c, recorder := jsonContext(t, "owner-1", gin.H{
		"company_id": wallet.CompanyID,
		"name":       "Duplicate",
		"chain":      string(models.ChainEthereum),
		"address":    wallet.Address,
	})
	handler.Create(c)
	require.Equal(t, http.StatusConflict, recorder.Code, recorder.Body.String())
}
