package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trackerops/tracker-audit/pkg/config"
)

type Config struct {
	ConfigPath   string
	OutputWriter io.Writer
	TokenStore   *config.TokenStore
	Context      context.Context
}

type runtimeState struct {
	configPath       string
	cfg              *config.Config
	contextOverride  string
	outputFormat     string
	endpointOverride string
	orgOverride      string
	orgTypeOverride  string
	tokenOverride    string
	verbose          bool
	writer           io.Writer
	tokens           *config.TokenStore
}

type runtimeKey struct{}

func DefaultConfig() Config {
	return Config{
		ConfigPath:   config.DefaultConfigPath(),
		OutputWriter: os.Stdout,
		TokenStore:   config.NewTokenStore(),
		Context:      context.Background(),
	}
}

func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{
		configPath: cfg.ConfigPath,
		writer:     cfg.OutputWriter,
		tokens:     cfg.TokenStore,
	}

	root := &cobra.Command{
		Use:   "trackeraudit",
		Short: "Audit issue tracker access configuration",
		Long: "trackeraudit is a read-only auditor for a cloud issue tracker's access\n" +
			"control setup. It walks every queue and reports which users and groups\n" +
			"hold which permissions, and which queues it was not allowed to inspect.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.writer == nil {
				rt.writer = os.Stdout
			}
			if rt.tokens == nil {
				rt.tokens = config.NewTokenStore()
			}
			if rt.configPath == "" {
				rt.configPath = config.DefaultConfigPath()
			}
			if rt.contextOverride == "" {
				rt.contextOverride = os.Getenv("TRACKER_AUDIT_CONTEXT")
			}
			if rt.outputFormat == "" {
				rt.outputFormat = os.Getenv("TRACKER_AUDIT_OUTPUT")
			}
			if rt.endpointOverride == "" {
				rt.endpointOverride = os.Getenv("TRACKER_AUDIT_ENDPOINT")
			}
			if rt.orgOverride == "" {
				rt.orgOverride = os.Getenv("TRACKER_AUDIT_ORG_ID")
			}
			if rt.orgTypeOverride == "" {
				rt.orgTypeOverride = os.Getenv("TRACKER_AUDIT_ORG_TYPE")
			}
			if rt.tokenOverride == "" {
				rt.tokenOverride = os.Getenv("TRACKER_AUDIT_TOKEN")
			}
			if !rt.verbose {
				rt.verbose = strings.EqualFold(os.Getenv("TRACKER_AUDIT_VERBOSE"), "true")
			}

			// Commands that work without a config file.
			if cmd.Name() == "init" && cmd.Parent() != nil && cmd.Parent().Name() == "config" {
				return nil
			}
			if cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}
			// Org and token on the command line are enough to run without a
			// config file.
			if rt.orgOverride != "" && rt.tokenOverride != "" {
				rt.cfg = &config.Config{Version: config.VersionV1}
				return nil
			}

			loaded, err := config.Load(rt.configPath)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("no config at %s, run 'trackeraudit config init' first (or set --org-id and --token)", rt.configPath)
				}
				return err
			}
			if err := loaded.Validate(); err != nil {
				return fmt.Errorf("invalid config %s: %w", rt.configPath, err)
			}
			rt.cfg = loaded
			return nil
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", rt.configPath, "Path to config file")
	root.PersistentFlags().StringVarP(&rt.contextOverride, "context", "c", "", "Context name override")
	root.PersistentFlags().StringVarP(&rt.outputFormat, "output", "o", "", "Output format: table, json, yaml, wide")
	root.PersistentFlags().StringVar(&rt.endpointOverride, "endpoint", "", "API endpoint override")
	root.PersistentFlags().StringVar(&rt.orgOverride, "org-id", "", "Organization ID override (bypass config)")
	root.PersistentFlags().StringVar(&rt.orgTypeOverride, "org-type", "", "Organization type: standard or cloud")
	root.PersistentFlags().StringVar(&rt.tokenOverride, "token", "", "OAuth token override")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Enable debug logging")

	baseCtx := cfg.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	root.SetContext(context.WithValue(baseCtx, runtimeKey{}, rt))

	root.AddCommand(
		NewConfigCommand(),
		NewAuditCommand(),
		NewQueuesCommand(),
		NewGroupsCommand(),
		NewCompletionCommand(),
		NewVersionCommand(),
	)

	return root
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

func (rt *runtimeState) ResolveContextName() string {
	if rt.contextOverride != "" {
		return rt.contextOverride
	}
	if rt.cfg != nil {
		return rt.cfg.CurrentContextOrDefault()
	}
	return ""
}

func (rt *runtimeState) OutputFormat() string {
	if rt.outputFormat != "" {
		return rt.outputFormat
	}
	if rt.cfg != nil && rt.cfg.Settings.OutputFormat != "" {
		return rt.cfg.Settings.OutputFormat
	}
	return "table"
}

func (rt *runtimeState) Writer() io.Writer {
	if rt.writer != nil {
		return rt.writer
	}
	return os.Stdout
}

func (rt *runtimeState) EnsureConfigLoaded() error {
	if rt.cfg != nil {
		return nil
	}
	cfg, err := config.Load(rt.configPath)
	if err != nil {
		return err
	}
	rt.cfg = cfg
	return nil
}

// ResolveContext returns the active context, or nil when org and token
// overrides make a config context unnecessary.
func (rt *runtimeState) ResolveContext() (*config.Context, error) {
	if rt.orgOverride != "" && rt.tokenOverride != "" {
		return nil, nil
	}
	if rt.cfg == nil {
		return nil, errors.New("config not loaded")
	}
	name := rt.ResolveContextName()
	if name == "" {
		return nil, errors.New("no context configured, run 'trackeraudit config init' or pass --context")
	}
	return rt.cfg.FindContext(name)
}

// resolveToken prefers the flag/env override and falls back to the token
// store under the context name.
func (rt *runtimeState) resolveToken(contextName string) (string, error) {
	if rt.tokenOverride != "" {
		return rt.tokenOverride, nil
	}
	token, err := rt.tokens.Get(contextName)
	if err != nil {
		if errors.Is(err, config.ErrTokenNotFound) {
			return "", fmt.Errorf("no token for context %s, run 'trackeraudit config set-token' first", contextName)
		}
		return "", err
	}
	return token, nil
}

func (rt *runtimeState) configPathValue() string {
	if rt.configPath == "" {
		return config.DefaultConfigPath()
	}
	return rt.configPath
}

func (rt *runtimeState) logDir() string {
	if rt.cfg != nil && rt.cfg.Settings.LogDir != "" {
		return rt.cfg.Settings.LogDir
	}
	return config.DefaultLogDir()
}
