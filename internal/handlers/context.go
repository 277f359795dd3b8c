package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/finbooks/finbooks/internal/chain"
	"github.com/finbooks/finbooks/internal/middleware"
	"github.com/finbooks/finbooks/internal/rates"
	"github.com/finbooks/finbooks/internal/services"
	apperrors "github.com/finbooks/finbooks/pkg/errors"
	"github.com/finbooks/finbooks/pkg/logger"
	"github.com/finbooks/finbooks/pkg/response"
	"github.com/finbooks/finbooks/pkg/validator"
)

func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.CtxUserIDKey)
}

// bindJSON decodes and validates a request body, answering 400 itself when
// the payload is malformed or fails struct validation.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.ValidationError(c, "Invalid request body", []string{err.Error()})
		return false
	}

	if err := validator.ValidateStruct(dest); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.ValidationError(c, "Validation failed", verrs.Fields())
			return false
		}
		response.ValidationError(c, "Validation failed", []string{err.Error()})
		return false
	}
	return true
}

var notFoundErrors = []error{
	services.ErrCompanyNotFound,
	services.ErrClientNotFound,
	services.ErrProductNotFound,
	services.ErrInvoiceNotFound,
	services.ErrPaymentMethodNotFound,
	services.ErrBankAccountNotFound,
	services.ErrWalletNotFound,
	services.ErrTransactionNotFound,
	services.ErrEntryNotFound,
	services.ErrJournalEntryNotFound,
	services.ErrRateNotFound,
	services.ErrUserNotFound,
}

var conflictErrors = []error{
	services.ErrCompanyHasRecords,
	services.ErrClientHasInvoices,
	services.ErrProductInUse,
	services.ErrInvoiceNotDraft,
	services.ErrEntryLinked,
	services.ErrWalletExists,
	services.ErrEmailTaken,
}

// handleServiceError translates service sentinels to HTTP error responses.
// Anything unmapped becomes a logged 500 with a generic body.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return

	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidCursor),
		errors.Is(err, services.ErrInvalidInvoiceStatus):
		response.Error(c, apperrors.NewBadRequest(err.Error()))

	case errors.Is(err, services.ErrInvalidLogin):
		response.Error(c, apperrors.ErrInvalidCredentials)

	case errors.Is(err, chain.ErrUnconfigured):
		response.Error(c, apperrors.ErrIntegrationUnconfigured)

	case errors.Is(err, chain.ErrRateLimited), errors.Is(err, rates.ErrRateLimited):
		response.Error(c, apperrors.ErrUpstreamRateLimited)

	case matchesAny(err, notFoundErrors):
		response.Error(c, apperrors.New("NOT_FOUND", err.Error(), http.StatusNotFound))

	case matchesAny(err, conflictErrors):
		response.Error(c, apperrors.NewConflict(err.Error()))

	default:
		logger.WithModule("http").Error("unhandled service error", zap.Error(err))
		response.Error(c, apperrors.ErrInternalServer)
	}
}

func matchesAny(err error, sentinels []error) bool {
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
