package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("11111111-2222-3333-4444-555555555555"))
	assert.NoError(t, ValidateID("A1B2C3D4-0000-0000-0000-000000000000"))
	assert.Error(t, ValidateID(""))
	assert.Error(t, ValidateID("not-a-uuid"))
	assert.Error(t, ValidateID("11111111-2222-3333-4444-55555555555'; DROP TABLE"))
}

func TestValidateSeverity(t *testing.T) {
	assert.NoError(t, ValidateSeverity(""))
	assert.NoError(t, ValidateSeverity("critical"))
	assert.NoError(t, ValidateSeverity("HIGH"))
	assert.Error(t, ValidateSeverity("urgent"))
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 20, ValidateLimit(-5))
	assert.Equal(t, 50, ValidateLimit(50))
	assert.Equal(t, 100, ValidateLimit(500))
}

func TestValidateSkip(t *testing.T) {
	assert.Equal(t, 0, ValidateSkip(-1))
	assert.Equal(t, 40, ValidateSkip(40))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello \x00"))
	assert.Equal(t, "a\tb", SanitizeString("a\tb\x07"))
}

func TestValidateState(t *testing.T) {
	assert.NoError(t, ValidateState(""))
	assert.NoError(t, ValidateState("abc_123-XYZ"))
	assert.Error(t, ValidateState("has space"))
	assert.Error(t, ValidateState("semi;colon"))
}
