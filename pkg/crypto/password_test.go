package crypto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_AndCheck(t *testing.T) {
	hash, err := HashPassword("s3cret-password", 4)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.True(t, CheckPassword("s3cret-password", hash))
	assert.False(t, CheckPassword("wrong-password", hash))
}

func TestHashPassword_ZeroCostUsesDefault(t *testing.T) {
	orig := bcryptGenerateFromPassword
	defer func() { bcryptGenerateFromPassword = orig }()

	var gotCost int
	bcryptGenerateFromPassword = func(password []byte, cost int) ([]byte, error) {
		gotCost = cost
		return orig(password, 4)
	}

	_, err := HashPassword("pw", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, gotCost)
}

func TestHashPassword_Error(t *testing.T) {
	orig := bcryptGenerateFromPassword
	defer func() { bcryptGenerateFromPassword = orig }()
	bcryptGenerateFromPassword = func(password []byte, cost int) ([]byte, error) {
		return nil, errors.New("boom")
	}

	_, err := HashPassword("pw", 4)
	require.Error(t, err)
}

func TestGenerateOpaqueToken(t *testing.T) {
	tok1, err := GenerateOpaqueToken()
	require.NoError(t, err)
	tok2, err := GenerateOpaqueToken()
	require.NoError(t, err)

	assert.Len(t, tok1, OpaqueTokenBytes*2)
	assert.NotEqual(t, tok1, tok2)
}

func TestGenerateOpaqueToken_Error(t *testing.T) {
	orig := randomRead
	defer func() { randomRead = orig }()
	randomRead = func(b []byte) (int, error) { return 0, errors.New("entropy exhausted") }

	_, err := GenerateOpaqueToken()
	require.Error(t, err)
}

func TestHashToken_Deterministic(t *testing.T) {
	h1 := HashToken("abc")
	h2 := HashToken("abc")
	h3 := HashToken("abd")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
	assert.NotContains(t, h1, "abc")
}

func TestTokensEqual(t *testing.T) {
	assert.True(t, TokensEqual("same", "same"))
	assert.False(t, TokensEqual("same", "other"))
}
