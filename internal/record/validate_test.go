package record

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInput(t *testing.T) {
	v := MustNewValidator()

	tests := []struct {
		name   string
		in     Input
		reason Reason
	}{
		{"valid", Input{Name: "Ada", Email: "ada@x.io"}, ""},
		{"valid with organization", Input{Name: "Ada", Email: "ada@x.io", Organization: "Analytical Engines"}, ""},
		{"missing name", Input{Email: "ada@x.io"}, ReasonRequired},
		{"missing email", Input{Name: "Ada"}, ReasonRequired},
		{"missing both", Input{}, ReasonRequired},
		{"no at sign", Input{Name: "Ada", Email: "ada.x.io"}, ReasonInvalidEmail},
		{"no dot after at", Input{Name: "Ada", Email: "ada@xio"}, ReasonInvalidEmail},
		{"nothing before at", Input{Name: "Ada", Email: "@x.io"}, ReasonInvalidEmail},
		{"unanchored match", Input{Name: "Ada", Email: "my mail ada@x.io"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateInput(tt.in)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.reason, ve.Reason)
		})
	}
}

func TestValidateInput_Fields(t *testing.T) {
	v := MustNewValidator()

	err := v.ValidateInput(Input{Name: "Ada", Email: "nope"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "email")
	assert.NotContains(t, ve.Fields, "name")
	assert.Equal(t, "Please enter a valid email", ve.Error())
}

func TestValidatePatch(t *testing.T) {
	v := MustNewValidator()

	assert.NoError(t, v.ValidatePatch(Patch{}))
	assert.NoError(t, v.ValidatePatch(Patch{Organization: ptr("")}))
	assert.NoError(t, v.ValidatePatch(Patch{Name: ptr("Grace"), Email: ptr("grace@navy.mil")}))

	err := v.ValidatePatch(Patch{Name: ptr("")})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ReasonRequired, ve.Reason)
	assert.Equal(t, "Name and email are required", ve.Message())

	err = v.ValidatePatch(Patch{Email: ptr("grace")})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ReasonInvalidEmail, ve.Reason)
}

func TestIsValidationError(t *testing.T) {
	v := MustNewValidator()
	err := v.ValidateInput(Input{})

	assert.True(t, IsValidationError(err))
	assert.True(t, IsValidationError(fmt.Errorf("add user: %w", err)))
	assert.False(t, IsValidationError(errors.New("other")))
}
