package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidMessageBody_Boundary(t *testing.T) {
	assert.False(t, IsValidMessageBody(strings.Repeat("a", 19)))
	assert.True(t, IsValidMessageBody(strings.Repeat("a", 20)))
}

func TestIsValidMessageBody_CountsCharactersNotBytes(t *testing.T) {
	// 19 two-byte runes: 38 bytes but only 19 characters
	assert.False(t, IsValidMessageBody(strings.Repeat("é", 19)))
	assert.True(t, IsValidMessageBody(strings.Repeat("é", 20)))
}

func TestIsValidPassword(t *testing.T) {
	assert.True(t, IsValidPassword("Str0ng!pass"))
	assert.False(t, IsValidPassword("short1!"))
	assert.False(t, IsValidPassword("nodigits!!"))
	assert.False(t, IsValidPassword("nospecial1"))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("ada@example.com"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("spaces in@example.com"))
}
