package apisettings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	plaintext, hash, prefix := GenerateKey()

	assert.True(t, strings.HasPrefix(plaintext, "eqt_"))
	assert.Equal(t, plaintext[:KeyPrefixLen], prefix)
	assert.Equal(t, HashKey(plaintext), hash)
	assert.NotContains(t, hash, plaintext[4:], "hash must not leak key material")
	require.Len(t, hash, 64, "hex sha-256")
}

func TestGenerateKeyUnique(t *testing.T) {
	a, _, _ := GenerateKey()
	b, _, _ := GenerateKey()
	assert.NotEqual(t, a, b)
}

func TestHashKeyDeterministic(t *testing.T) {
	assert.Equal(t, HashKey("eqt_abc"), HashKey("eqt_abc"))
	assert.NotEqual(t, HashKey("eqt_abc"), HashKey("eqt_abd"))
}
