package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestTokenStoreKeyring(t *testing.T) {
	keyring.MockInit()
	store := NewTokenStoreAt(filepath.Join(t.TempDir(), "tokens.yaml"))

	require.NoError(t, store.Set("prod", "oauth-token-value"))
	token, err := store.Get("prod")
	require.NoError(t, err)
	require.Equal(t, "oauth-token-value", token)

	require.NoError(t, store.Delete("prod"))
	_, err = store.Get("prod")
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenStoreFileFallback(t *testing.T) {
	keyring.MockInitWithError(keyring.ErrUnsupportedPlatform)
	path := filepath.Join(t.TempDir(), "tokens.yaml")
	store := NewTokenStoreAt(path)

	require.NoError(t, store.Set("dev", "fallback-token"))

	// A fresh store against the same file still finds the token.
	token, err := NewTokenStoreAt(path).Get("dev")
	require.NoError(t, err)
	require.Equal(t, "fallback-token", token)

	require.NoError(t, store.Delete("dev"))
	_, err = store.Get("dev")
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenStoreMissingContext(t *testing.T) {
	keyring.MockInit()
	store := NewTokenStoreAt(filepath.Join(t.TempDir(), "tokens.yaml"))

	_, err := store.Get("nope")
	require.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, store.Delete("nope"))
}
