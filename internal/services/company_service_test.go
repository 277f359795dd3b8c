package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/finbooks/finbooks/internal/database/testutil"
	"github.com/finbooks/finbooks/internal/models"
)

func mustCompanyService(t *testing.T) (*CompanyService, *gorm.DB) {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewCompanyService(db)
	require.NoError(t, err)
	return svc, db
}

func mustCreateCompany(t *testing.T, svc *CompanyService, name string) *models.Company {
	t.Helper()
	company, err := svc.Create(context.Background(), CreateCompanyInput{
		Name:        name,
		OwnerUserID: "owner-1",
		Industry:    "Consulting",
	})
	require.NoError(t, err)
	return company
}

func TestCompanyCreateAndGetRoundTrip(t *testing.T) {
	svc, _ := mustCompanyService(t)

	created, err := svc.Create(context.Background(), CreateCompanyInput{
		Name:         "Acme GmbH",
		LegalName:    "Acme Gesellschaft mbH",
		Email:        "billing@acme.test",
		Phone:        "+49 30 1234567",
		PaymentTerms: "net_14",
		BaseCurrency: "usd",
		OwnerUserID:  "owner-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Acme GmbH", got.Name)
	require.Equal(t, "Acme Gesellschaft mbH", got.LegalName)
	require.Equal(t, "billing@acme.test", got.Email)
	require.Equal(t, "net_14", got.PaymentTerms)
	require.Equal(t, "USD", got.BaseCurrency)
	require.Equal(t, models.CompanyStatusActive, got.Status)
}

func TestCompanyCreateValidation(t *testing.T) {
	svc, _ := mustCompanyService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateCompanyInput{OwnerUserID: "owner-1"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateCompanyInput{Name: "X", OwnerUserID: "owner-1", Phone: "not-a-phone"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateCompanyInput{Name: "X", OwnerUserID: "owner-1", PaymentTerms: "net_31"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateCompanyInput{Name: "X", OwnerUserID: "owner-1", LogoURL: "ftp://nope"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCompanyGetNotFound(t *testing.T) {
	svc, _ := mustCompanyService(t)

	_, err := svc.Get(context.Background(), "11111111-1111-1111-1111-111111111111")
	require.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestCompanyUpdatePartialMerge(t *testing.T) {
	svc, _ := mustCompanyService(t)
	company := mustCreateCompany(t, svc, "Before")

	newName := "After"
	status := "passive"
	updated, err := svc.Update(context.Background(), company.ID, UpdateCompanyInput{
		Name:   &newName,
		Status: &status,
	})
	require.NoError(t, err)
	require.Equal(t, "After", updated.Name)
	require.Equal(t, models.CompanyStatusPassive, updated.Status)
	require.Equal(t, "consulting", updated.Industry, "untouched fields survive the merge")
}

func TestCompanyDeleteRejectedWithDependents(t *testing.T) {
	svc, db := mustCompanyService(t)
	company := mustCreateCompany(t, svc, "Has Clients")

	require.NoError(t, db.Create(&models.Client{CompanyID: company.ID, Name: "C1"}).Error)

	err := svc.Delete(context.Background(), company.ID)
	require.ErrorIs(t, err, ErrCompanyHasRecords)

	_, err = svc.Get(context.Background(), company.ID)
	require.NoError(t, err, "rejected delete leaves the company in place")
}

func TestCompanyListFiltersAndPages(t *testing.T) {
	svc, _ := mustCompanyService(t)
	mustCreateCompany(t, svc, "Alpha")
	mustCreateCompany(t, svc, "Beta")
	mustCreateCompany(t, svc, "Gamma")

	companies, total, err := svc.List(context.Background(), ListCompaniesOptions{
		OwnerUserID: "owner-1",
		Page:        Page{Offset: 0, Limit: 2},
	})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, companies, 2)

	companies, total, err = svc.List(context.Background(), ListCompaniesOptions{Search: "bet"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Beta", companies[0].Name)
}

func TestCompanyStatistics(t *testing.T) {
	svc, db := mustCompanyService(t)
	mustCreateCompany(t, svc, "One")
	mustCreateCompany(t, svc, "Two")

	passive := mustCreateCompany(t, svc, "Sleepy")
	status := "passive"
	_, err := svc.Update(context.Background(), passive.ID, UpdateCompanyInput{Status: &status})
	require.NoError(t, err)

	stats, err := svc.Statistics(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.TotalActive)
	require.Equal(t, int64(1), stats.TotalPassive)
	require.Equal(t, int64(3), stats.ByIndustry["consulting"])
	require.Equal(t, int64(3), stats.NewThisMonth)

	var count int64
	require.NoError(t, db.Model(&models.Company{}).Count(&count).Error)
	require.Equal(t, int64(3), count)
}
