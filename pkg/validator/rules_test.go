package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidPhone(t *testing.T) {
	valid := []string{
		"+49 30 901820",
		"+1 (555) 123-4567",
		"0301234567",
		" +90 212 000 0000 ",
	}
	for _, number := range valid {
		require.True(t, IsValidPhone(number), "expected %q to be valid", number)
	}

	invalid := []string{
		"",
		"call me",
		"+",
		"12345",
		"+49 30 901820 9018 2090 1820 90",
	}
	for _, number := range invalid {
		require.False(t, IsValidPhone(number), "expected %q to be invalid", number)
	}
}

func TestIsValidPaymentTerms(t *testing.T) {
	require.True(t, IsValidPaymentTerms("net_30"))
	require.True(t, IsValidPaymentTerms(" NET_7 "), "terms are case-insensitive")
	require.True(t, IsValidPaymentTerms("due_on_receipt"))

	require.False(t, IsValidPaymentTerms("net_45"))
	require.False(t, IsValidPaymentTerms(""))

	require.Len(t, PaymentTermsList(), 6)
}

func TestIsValidLogo(t *testing.T) {
	require.True(t, IsValidLogo("https://cdn.example.com/logo.png"))
	require.True(t, IsValidLogo("http://example.com/l.svg"))
	require.True(t, IsValidLogo("data:image/png;base64,iVBORw0KGgo="))

	require.False(t, IsValidLogo(""))
	require.False(t, IsValidLogo("ftp://example.com/logo.png"))
	require.False(t, IsValidLogo("data:image/png,not-base64"))
	require.False(t, IsValidLogo("https://"))
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	type form struct {
		Phone string `json:"phone" validate:"required,phone"`
		Logo  string `json:"logo_url" validate:"omitempty,logo"`
	}

	err := ValidateStruct(form{Phone: "nope", Logo: "also nope"})
	require.Error(t, err)

	verrs, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.ElementsMatch(t, []string{"phone", "logo_url"}, verrs.Fields())
	require.Contains(t, verrs.Error(), "phone failed on phone")
}

func TestValidateStructPassesCleanInput(t *testing.T) {
	type form struct {
		Phone string `json:"phone" validate:"required,phone"`
		Terms string `json:"payment_terms" validate:"omitempty,payment_terms"`
	}

	require.NoError(t, ValidateStruct(form{Phone: "+49 30 901820", Terms: "net_14"}))
}
