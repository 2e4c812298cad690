package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileKeystore(t *testing.T) *Keystore {
	t.Helper()
	ks, err := NewFileKeystore(t.TempDir(), "test-password")
	require.NoError(t, err)
	return ks
}

func TestKeystoreTokenRoundTrip(t *testing.T) {
	t.Setenv(TokenEnvVar, "")
	ks := newFileKeystore(t)

	require.NoError(t, ks.SaveToken("http://127.0.0.1:5050/", "tok-1"))
	got, err := ks.Token("HTTP://127.0.0.1:5050")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got)

	require.NoError(t, ks.DeleteToken("http://127.0.0.1:5050"))
	_, err = ks.Token("http://127.0.0.1:5050")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestKeystoreMissingToken(t *testing.T) {
	t.Setenv(TokenEnvVar, "")
	ks := newFileKeystore(t)
	_, err := ks.Token("http://nowhere")
	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.NoError(t, ks.DeleteToken("http://nowhere"))
}

func TestKeystoreEnvOverride(t *testing.T) {
	t.Setenv(TokenEnvVar, "  from-env ")
	ks := &Keystore{ring: nil}
	got, err := ks.Token("http://any")
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)
}

func TestKeystoreNilRing(t *testing.T) {
	t.Setenv(TokenEnvVar, "")
	ks := &Keystore{}
	_, err := ks.Token("http://any")
	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.Error(t, ks.SaveToken("http://any", "x"))
	assert.NoError(t, ks.DeleteToken("http://any"))
}
