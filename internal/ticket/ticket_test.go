package ticket

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken(t *testing.T) {
	token, err := NewToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), token)

	other, err := NewToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestNewCode(t *testing.T) {
	codeFormat := regexp.MustCompile(`^EVT-[0-9A-Z]{6}$`)
	for i := 0; i < 50; i++ {
		code, err := NewCode()
		require.NoError(t, err)
		assert.Regexp(t, codeFormat, code)
	}
}
