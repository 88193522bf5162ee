package api

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type locationRequest struct {
	Latitude  float64 `validate:"latitude"`
	Longitude float64 `validate:"longitude"`
	Kind      string  `validate:"required,oneof=TEXT IMAGE FILE"`
}

func TestValidatorReportsFieldErrors(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(&locationRequest{Latitude: 41.3, Longitude: 69.2, Kind: "TEXT"}))

	err := v.Validate(&locationRequest{Latitude: 91, Longitude: 69.2, Kind: "VIDEO"})
	var fieldErrs validator.ValidationErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)
	assert.Equal(t, "Latitude", fieldErrs[0].Field())
}
