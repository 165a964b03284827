package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email string   `json:"email" validate:"required,email"`
	Date  string   `json:"earningsDate" validate:"required,isodate"`
	Price *float64 `json:"closePrice" validate:"required,gte=0"`
	Role  string   `json:"role" validate:"omitempty,oneof=admin worker"`
}

func TestFieldErrors(t *testing.T) {
	v := New()
	price := -1.0

	err := v.Struct(sample{Email: "nope", Date: "10/01/2024", Price: &price, Role: "owner"})
	got := FieldErrors(err)

	assert.ElementsMatch(t, []FieldError{
		{Field: "email", Message: "must be a valid email address"},
		{Field: "earningsDate", Message: "must be a date (YYYY-MM-DD or ISO 8601)"},
		{Field: "closePrice", Message: "must be greater than or equal to 0"},
		{Field: "role", Message: "must be one of [admin worker]"},
	}, got)
}

func TestFieldErrors_Valid(t *testing.T) {
	v := New()
	price := 150.0
	assert.NoError(t, v.Struct(sample{Email: "a@b.co", Date: "2024-01-10", Price: &price}))
	assert.Nil(t, FieldErrors(errors.New("plain error")))
}

func TestFieldErrors_MissingRequired(t *testing.T) {
	got := FieldErrors(New().Struct(sample{}))
	assert.ElementsMatch(t, []FieldError{
		{Field: "email", Message: "is required"},
		{Field: "earningsDate", Message: "is required"},
		{Field: "closePrice", Message: "is required"},
	}, got)
}
