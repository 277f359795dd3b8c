package services

import (
	"context"
	"errors"
	"strings"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// ErrValidation marks input errors that callers should surface as 400s.
// Services wrap it so handlers can distinguish bad input from real failures.
var ErrValidation = errors.New("validation failed")

func ensuredContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// Page describes offset pagination parameters.
type Page struct {
	Offset int
	Limit  int
}

// Normalise clamps the page to sane bounds.
func (p Page) Normalise() Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	return p
}

// Sort describes an optional sort field and direction pair.
type Sort struct {
	Field     string
	Direction string
}

// OrderClause resolves the sort against the allowed column set, falling back
// to def for unknown fields. Direction defaults to ascending.
func (s Sort) OrderClause(allowed map[string]string, def string) string {
	column, ok := allowed[strings.ToLower(strings.TrimSpace(s.Field))]
	if !ok {
		return def
	}

	direction := "ASC"
	if strings.EqualFold(strings.TrimSpace(s.Direction), "desc") {
		direction = "DESC"
	}
	return column + " " + direction
}

func normalizeCurrency(code, fallback string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return fallback
	}
	return code
}
