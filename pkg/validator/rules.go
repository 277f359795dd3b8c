package validator

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field-level rules used by company, client and vendor forms.

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\s\-().]{5,19}$`)
	logoPattern  = regexp.MustCompile(`^(https?://|data:image/)`)
)

// Payment terms accepted on company and client records.
var paymentTerms = map[string]struct{}{
	"due_on_receipt": {},
	"net_7":          {},
	"net_14":         {},
	"net_30":         {},
	"net_60":         {},
	"net_90":         {},
}

// IsValidPhone reports whether the value looks like an international phone number.
func IsValidPhone(value string) bool {
	return phonePattern.MatchString(strings.TrimSpace(value))
}

// IsValidPaymentTerms reports whether the value is a supported payment-terms code.
func IsValidPaymentTerms(value string) bool {
	_, ok := paymentTerms[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// IsValidLogo accepts http(s) URLs and inline data-image strings.
func IsValidLogo(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	if !logoPattern.MatchString(value) {
		return false
	}
	if strings.HasPrefix(value, "data:image/") {
		return strings.Contains(value, ";base64,")
	}
	u, err := url.Parse(value)
	return err == nil && u.Host != ""
}

// PaymentTermsList returns the supported payment-terms codes for error messages.
func PaymentTermsList() []string {
	terms := make([]string, 0, len(paymentTerms))
	for term := range paymentTerms {
		terms = append(terms, term)
	}
	return terms
}

func registerDomainRules(v *validator.Validate) {
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("payment_terms", func(fl validator.FieldLevel) bool {
		return IsValidPaymentTerms(fl.Field().String())
	})
	_ = v.RegisterValidation("logo", func(fl validator.FieldLevel) bool {
		return IsValidLogo(fl.Field().String())
	})
}
