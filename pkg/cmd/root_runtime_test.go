package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/trackerops/tracker-audit/pkg/config"
)

func TestRuntimeStateResolveContextName(t *testing.T) {
	rt := &runtimeState{contextOverride: "override"}
	require.Equal(t, "override", rt.ResolveContextName())

	rt = &runtimeState{cfg: &config.Config{CurrentContext: "ctx"}}
	require.Equal(t, "ctx", rt.ResolveContextName())

	rt = &runtimeState{}
	require.Empty(t, rt.ResolveContextName())
}

func TestRuntimeStateOutputFormat(t *testing.T) {
	rt := &runtimeState{outputFormat: "json"}
	require.Equal(t, "json", rt.OutputFormat())

	rt = &runtimeState{cfg: &config.Config{Settings: config.Settings{OutputFormat: "yaml"}}}
	require.Equal(t, "yaml", rt.OutputFormat())

	rt = &runtimeState{}
	require.Equal(t, "table", rt.OutputFormat())
}

func TestResolveContextErrors(t *testing.T) {
	rt := &runtimeState{}
	_, err := rt.ResolveContext()
	require.Error(t, err)

	rt = &runtimeState{cfg: &config.Config{}}
	_, err = rt.ResolveContext()
	require.ErrorContains(t, err, "no context configured")
}

func TestResolveContextBypassWithOverrides(t *testing.T) {
	rt := &runtimeState{orgOverride: "12345", tokenOverride: "secret"}
	ctx, err := rt.ResolveContext()
	require.NoError(t, err)
	require.Nil(t, ctx)
}

func TestResolveToken(t *testing.T) {
	keyring.MockInit()
	store := config.NewTokenStoreAt(filepath.Join(t.TempDir(), "tokens.yaml"))

	rt := &runtimeState{tokenOverride: "from-flag", tokens: store}
	token, err := rt.resolveToken("prod")
	require.NoError(t, err)
	require.Equal(t, "from-flag", token)

	require.NoError(t, store.Set("prod", "from-store"))
	rt = &runtimeState{tokens: store}
	token, err = rt.resolveToken("prod")
	require.NoError(t, err)
	require.Equal(t, "from-store", token)

	rt = &runtimeState{tokens: store}
	_, err = rt.resolveToken("missing")
	require.ErrorContains(t, err, "set-token")
}

func TestBuildClientResolvesContextSettings(t *testing.T) {
	keyring.MockInit()
	store := config.NewTokenStoreAt(filepath.Join(t.TempDir(), "tokens.yaml"))
	require.NoError(t, store.Set("prod", "stored-token"))

	rt := &runtimeState{
		cfg: &config.Config{
			Version:        config.VersionV1,
			CurrentContext: "prod",
			Contexts: []config.Context{
				{Name: "prod", OrgID: "12345", OrgType: "cloud", Rate: 2},
			},
		},
		tokens: store,
	}

	client, err := rt.buildClient(newQuietLogger(false))
	require.NoError(t, err)
	require.NotNil(t, client)
}

func TestBuildClientRequiresOrg(t *testing.T) {
	rt := &runtimeState{cfg: &config.Config{
		Version:        config.VersionV1,
		CurrentContext: "empty",
		Contexts:       []config.Context{{Name: "empty", OrgID: ""}},
	}}
	_, err := rt.buildClient(newQuietLogger(false))
	require.Error(t, err)
}
