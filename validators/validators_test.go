package validators

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=50"`
	Email   string `json:"email" validate:"required,email"`
	Website string `json:"website" validate:"omitempty,url"`
	Privacy string `json:"privacy" validate:"omitempty,oneof=public private"`
	Age     int    `json:"age" validate:"omitempty,min=13"`
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(&sampleRequest{Name: "Alice", Email: "alice@example.com"}))
	assert.Error(t, v.Validate(&sampleRequest{Email: "alice@example.com"}))
}

func TestViolationsUseJSONFieldNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&sampleRequest{})
	require.Error(t, err)

	fields := make(map[string]string)
	for _, fe := range Violations(err) {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "is required", fields["email"])
}

func TestViolationMessages(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&sampleRequest{
		Name:    "A",
		Email:   "not-an-email",
		Website: "not a url",
		Privacy: "secret",
		Age:     7,
	})
	require.Error(t, err)

	violations := Violations(err)
	require.Len(t, violations, 5)

	fields := make(map[string]string, len(violations))
	for _, fe := range violations {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "must be at least 2 characters", fields["name"])
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be a valid URL", fields["website"])
	assert.Equal(t, "must be one of: public, private", fields["privacy"])
	assert.Equal(t, "must be at least 13", fields["age"])
}

func TestViolationsNonValidatorError(t *testing.T) {
	violations := Violations(errors.New("bind failed"))

	require.Len(t, violations, 1)
	assert.Empty(t, violations[0].Field)
	assert.Equal(t, "invalid request", violations[0].Message)
}
