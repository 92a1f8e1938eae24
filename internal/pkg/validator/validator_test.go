package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name   string  `json:"name" validate:"required,max=10"`
	Email  string  `json:"email" validate:"required,email"`
	Kind   string  `json:"donation_type" validate:"required,donation_type"`
	Status *string `json:"status,omitempty" validate:"omitempty,donation_status"`
}

func TestValidate(t *testing.T) {
	ok := sample{Name: "Food Bank", Email: "a@b.org", Kind: "food"}
	assert.NoError(t, Validate(ok))

	err := Validate(sample{Name: "this name is too long", Email: "nope", Kind: "cars"})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "name must be at most 10 characters")
		assert.Contains(t, err.Error(), "email must be a valid email")
		assert.Contains(t, err.Error(), "donation_type must be one of")
	}

	bad := "lost"
	err = Validate(sample{Name: "x", Email: "a@b.org", Kind: "toys", Status: &bad})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "status must be one of")
	}

	err = Validate(sample{})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "name is required")
	}
}
