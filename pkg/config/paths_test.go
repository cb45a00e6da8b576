package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigPathEnvOverride(t *testing.T) {
	custom := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv("TRACKER_AUDIT_CONFIG", custom)
	require.Equal(t, custom, DefaultConfigPath())
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("TRACKER_AUDIT_CONFIG", "")
	require.Contains(t, DefaultConfigPath(), "trackeraudit")
	require.True(t, filepath.IsAbs(DefaultTokenPath()))
	require.Contains(t, DefaultLogDir(), "logs")
}
