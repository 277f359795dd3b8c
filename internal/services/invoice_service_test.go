package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/finbooks/internal/database/testutil"
	"github.com/finbooks/finbooks/internal/models"
)

type invoiceFixture struct {
	invoices *InvoiceService
	company  *models.Company
	client   *models.Client
	now      time.Time
}

func mustInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	companies, err := NewCompanyService(db)
	require.NoError(t, err)
	company := mustCreateCompany(t, companies, "Issuer")

	clients, err := NewClientService(db)
	require.NoError(t, err)
	client, err := clients.Create(context.Background(), CreateClientInput{
		CompanyID: company.ID,
		Name:      "Payer",
	})
	require.NoError(t, err)

	now := time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC)
	invoices, err := NewInvoiceService(db)
	require.NoError(t, err)
	invoices.WithClock(func() time.Time { return now })

	return &invoiceFixture{invoices: invoices, company: company, client: client, now: now}
}

func (f *invoiceFixture) draft(t *testing.T, dueDate time.Time) *models.Invoice {
	t.Helper()
	invoice, err := f.invoices.Create(context.Background(), CreateInvoiceInput{
		CompanyID: f.company.ID,
		ClientID:  f.client.ID,
		Number:    "INV-" + dueDate.Format("20060102"),
		DueDate:   dueDate,
		TaxRate:   decimal.NewFromInt(20),
		Items: []InvoiceItemInput{
			{Description: "Consulting", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(100)},
			{Description: "Travel", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(49.5)},
		},
	})
	require.NoError(t, err)
	return invoice
}

func TestInvoiceCreateDerivesTotals(t *testing.T) {
	f := mustInvoiceFixture(t)
	invoice := f.draft(t, f.now.AddDate(0, 1, 0))

	require.Equal(t, models.InvoiceStatusDraft, invoice.Status)
	require.Len(t, invoice.Items, 2)
	require.True(t, invoice.Subtotal.Equal(decimal.NewFromFloat(1049.5)), "subtotal %s", invoice.Subtotal)
	require.True(t, invoice.TaxTotal.Equal(decimal.NewFromFloat(209.9)), "tax %s", invoice.TaxTotal)
	require.True(t, invoice.Total.Equal(decimal.NewFromFloat(1259.4)), "total %s", invoice.Total)
	require.True(t, invoice.Items[0].Amount.Equal(decimal.NewFromInt(1000)))
}

func TestInvoiceCreateRequiresItems(t *testing.T) {
	f := mustInvoiceFixture(t)

	_, err := f.invoices.Create(context.Background(), CreateInvoiceInput{
		CompanyID: f.company.ID,
		ClientID:  f.client.ID,
		Number:    "INV-EMPTY",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestInvoiceSendTransitionsDraftToSent(t *testing.T) {
	f := mustInvoiceFixture(t)
	invoice := f.draft(t, f.now.AddDate(0, 1, 0))

	sent, err := f.invoices.Send(context.Background(), invoice.ID)
	require.NoError(t, err)
	require.Equal(t, models.InvoiceStatusSent, sent.Status)
	require.NotNil(t, sent.SentAt)
}

func TestInvoiceSendPastDueLandsOnOverdue(t *testing.T) {
	f := mustInvoiceFixture(t)
	invoice := f.draft(t, f.now.AddDate(0, 0, -3))

	sent, err := f.invoices.Send(context.Background(), invoice.ID)
	require.NoError(t, err)
	require.Equal(t, models.InvoiceStatusOverdue, sent.Status,
		"a draft sent past its due date is stored as overdue, not sent")
	require.NotNil(t, sent.SentAt)
}

func TestInvoiceSendRejectsNonDraft(t *testing.T) {
	f := mustInvoiceFixture(t)
	invoice := f.draft(t, f.now.AddDate(0, 1, 0))

	_, err := f.invoices.Send(context.Background(), invoice.ID)
	require.NoError(t, err)

	_, err = f.invoices.Send(context.Background(), invoice.ID)
	require.ErrorIs(t, err, ErrInvoiceNotDraft)

	got, err := f.invoices.Get(context.Background(), invoice.ID)
	require.NoError(t, err)
	require.Equal(t, models.InvoiceStatusSent, got.Status, "rejected send leaves the status unchanged")
}

func TestInvoiceSetStatusStampsPaidAt(t *testing.T) {
	f := mustInvoiceFixture(t)
	invoice := f.draft(t, f.now.AddDate(0, 1, 0))

	paid, err := f.invoices.SetStatus(context.Background(), invoice.ID, models.InvoiceStatusPaid)
	require.NoError(t, err)
	require.Equal(t, models.InvoiceStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	_, err = f.invoices.SetStatus(context.Background(), invoice.ID, "shredded")
	require.ErrorIs(t, err, ErrInvalidInvoiceStatus)
}

func TestInvoiceTotalsAggregates(t *testing.T) {
	f := mustInvoiceFixture(t)
	first := f.draft(t, f.now.AddDate(0, 1, 0))
	second := f.draft(t, f.now.AddDate(0, 2, 0))

	_, err := f.invoices.Send(context.Background(), first.ID)
	require.NoError(t, err)
	_, err = f.invoices.SetStatus(context.Background(), second.ID, models.InvoiceStatusPaid)
	require.NoError(t, err)

	totals, err := f.invoices.Totals(context.Background(), ListInvoicesOptions{CompanyID: f.company.ID})
	require.NoError(t, err)
	require.Equal(t, int64(2), totals.Count)
	require.True(t, totals.Outstanding.Equal(decimal.NewFromFloat(1259.4)), "outstanding %s", totals.Outstanding)
	require.True(t, totals.Paid.Equal(decimal.NewFromFloat(1259.4)), "paid %s", totals.Paid)
}

func TestInvoiceDeleteRemovesItems(t *testing.T) {
	f := mustInvoiceFixture(t)
	invoice := f.draft(t, f.now.AddDate(0, 1, 0))

	require.NoError(t, f.invoices.Delete(context.Background(), invoice.ID))

	_, err := f.invoices.Get(context.Background(), invoice.ID)
	require.ErrorIs(t, err, ErrInvoiceNotFound)
}
