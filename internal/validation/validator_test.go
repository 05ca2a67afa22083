package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playperu/eventmap/internal/eventmap"
)

type sample struct {
	Name   string   `json:"name" validate:"required"`
	Style  string   `json:"style" validate:"mapstyle"`
	Tags   []string `json:"tags" validate:"min=1"`
	Radius float64  `json:"radius" validate:"gte=0"`
	Email  string   `json:"email" validate:"omitempty,email"`
}

func TestValidateStructPasses(t *testing.T) {
	err := ValidateStruct(sample{Name: "x", Style: "grid-city", Tags: []string{"a"}})
	assert.NoError(t, err)
}

func TestValidateStructCollectsFields(t *testing.T) {
	err := ValidateStruct(sample{Style: "hexagon", Radius: -1, Email: "nope"})
	require.Error(t, err)

	var verr *RequestValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, errors.Is(err, eventmap.ErrValidation))

	byField := map[string]FieldError{}
	for _, f := range verr.Fields {
		byField[f.Field] = f
	}
	assert.Equal(t, "name is required", byField["name"].Message)
	assert.Equal(t, "mapstyle", byField["style"].Tag)
	assert.Equal(t, "tags must be at least 1 items", byField["tags"].Message)
	assert.Equal(t, "radius must be greater than or equal to 0", byField["radius"].Message)
	assert.Equal(t, "email must be a valid email address", byField["email"].Message)
	assert.Len(t, verr.Fields, 5)
}

func TestValidatorIsShared(t *testing.T) {
	assert.Same(t, Validator(), Validator())
}
