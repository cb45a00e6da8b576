package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.CurrentContext = "prod"
	cfg.Contexts = []Context{
		{
			Name:    "prod",
			OrgID:   "12345",
			OrgType: "standard",
			Rate:    5,
		},
	}
	cfg.Mail = &Mail{
		Host: "smtp.example.com",
		Port: 587,
		From: "audit@example.com",
	}

	require.NoError(t, Save(path, &cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.CurrentContext, loaded.CurrentContext)
	require.Len(t, loaded.Contexts, 1)
	require.Equal(t, "12345", loaded.Contexts[0].OrgID)
	require.Equal(t, "standard", loaded.Contexts[0].OrgType)
	require.NotNil(t, loaded.Mail)
	require.Equal(t, 587, loaded.Mail.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.True(t, os.IsNotExist(err))
}

func TestLoadFillsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("contexts:\n  - name: dev\n    org-id: \"1\"\n"), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, VersionV1, loaded.Version)
}

func TestSetContextReplaces(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetContext(Context{Name: "dev", OrgID: "1"})
	cfg.SetContext(Context{Name: "prod", OrgID: "2"})
	cfg.SetContext(Context{Name: "dev", OrgID: "9", OrgType: "cloud"})

	require.Len(t, cfg.Contexts, 2)
	ctx, err := cfg.FindContext("dev")
	require.NoError(t, err)
	require.Equal(t, "9", ctx.OrgID)
	require.Equal(t, "cloud", ctx.OrgType)
}

func TestCurrentContextOrDefault(t *testing.T) {
	cfg := DefaultConfig()
	require.Empty(t, cfg.CurrentContextOrDefault())

	cfg.Contexts = []Context{{Name: "first", OrgID: "1"}, {Name: "second", OrgID: "2"}}
	require.Equal(t, "first", cfg.CurrentContextOrDefault())

	cfg.CurrentContext = "second"
	require.Equal(t, "second", cfg.CurrentContextOrDefault())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name: "empty context name",
			mutate: func(c *Config) {
				c.Contexts = append(c.Contexts, Context{OrgID: "1"})
			},
			wantErr: "context name cannot be empty",
		},
		{
			name: "missing org id",
			mutate: func(c *Config) {
				c.Contexts = append(c.Contexts, Context{Name: "dev"})
			},
			wantErr: "org-id is required",
		},
		{
			name: "bad org type",
			mutate: func(c *Config) {
				c.Contexts = append(c.Contexts, Context{Name: "dev", OrgID: "1", OrgType: "enterprise"})
			},
			wantErr: "org-type must be standard or cloud",
		},
		{
			name: "mail without host",
			mutate: func(c *Config) {
				c.Mail = &Mail{Port: 587, From: "a@b.c"}
			},
			wantErr: "mail host is required",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}
