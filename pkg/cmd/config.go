package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trackerops/tracker-audit/pkg/config"
	"github.com/trackerops/tracker-audit/pkg/output"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage trackeraudit configuration",
	}

	cmd.AddCommand(
		newConfigInitCommand(),
		newConfigViewCommand(),
		newConfigContextsCommand(),
		newConfigCurrentContextCommand(),
		newConfigSetContextCommand(),
		newConfigUseContextCommand(),
		newConfigSetValueCommand(),
		newConfigAddContextCommand(),
		newConfigDeleteContextCommand(),
		newConfigSetTokenCommand(),
		newConfigDeleteTokenCommand(),
	)

	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		contextName string
		orgID       string
		orgType     string
		endpoint    string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a trackeraudit config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			path := rt.configPathValue()
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config already exists: %s", path)
				}
			}
			if contextName == "" {
				contextName = "default"
			}
			cfg := config.DefaultConfig()
			cfg.CurrentContext = contextName
			cfg.Contexts = []config.Context{{
				Name:     contextName,
				Endpoint: endpoint,
				OrgID:    orgID,
				OrgType:  orgType,
			}}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(path, &cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Initialized config at %s\n", path)
			_, _ = fmt.Fprintf(rt.Writer(), "Store a token with 'trackeraudit config set-token'\n")
			return nil
		},
	}

	cmd.Flags().StringVar(&contextName, "context", "default", "Context name")
	cmd.Flags().StringVar(&orgID, "org-id", "", "Organization ID")
	cmd.Flags().StringVar(&orgType, "org-type", "standard", "Organization type: standard or cloud")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "API endpoint (empty for production)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config")

	_ = cmd.MarkFlagRequired("org-id")
	return cmd
}

func newConfigViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the current configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			return output.WriteObject(rt.Writer(), output.FormatYAML, rt.cfg)
		},
	}
}

func newConfigContextsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get-contexts",
		Short: "List configured contexts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			current := rt.cfg.CurrentContext
			for _, ctx := range rt.cfg.Contexts {
				marker := " "
				if ctx.Name == current {
					marker = "*"
				}
				orgType := ctx.OrgType
				if orgType == "" {
					orgType = "standard"
				}
				_, _ = fmt.Fprintf(rt.Writer(), "%s %s\t%s\t%s\n", marker, ctx.Name, ctx.OrgID, orgType)
			}
			return nil
		},
	}
}

func newConfigCurrentContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "current-context",
		Short: "Show the current context",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(rt.Writer(), rt.cfg.CurrentContext)
			return nil
		},
	}
}

func newConfigSetContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-context NAME",
		Short: "Set the default context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			name := args[0]
			if _, err := rt.cfg.FindContext(name); err != nil {
				return err
			}
			rt.cfg.CurrentContext = name
			if err := config.Save(rt.configPathValue(), rt.cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "%s\n", name)
			return nil
		},
	}
}

func newConfigUseContextCommand() *cobra.Command {
	cmd := newConfigSetContextCommand()
	cmd.Use = "use-context NAME"
	cmd.Aliases = []string{"use"}
	cmd.Short = "Alias for set-context"
	return cmd
}

func newConfigSetValueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			key := args[0]
			value := args[1]
			switch key {
			case "settings.output-format":
				if _, err := output.ParseFormat(value); err != nil {
					return err
				}
				rt.cfg.Settings.OutputFormat = value
			case "settings.scope":
				rt.cfg.Settings.Scope = value
			case "settings.color":
				rt.cfg.Settings.Color = value
			case "settings.log-dir":
				rt.cfg.Settings.LogDir = value
			default:
				return fmt.Errorf("unsupported key: %s", key)
			}
			if err := rt.cfg.Validate(); err != nil {
				return err
			}
			return config.Save(rt.configPathValue(), rt.cfg)
		},
	}
}

func newConfigAddContextCommand() *cobra.Command {
	var (
		orgID    string
		orgType  string
		endpoint string
		rate     float64
	)
	cmd := &cobra.Command{
		Use:   "add-context NAME",
		Short: "Add a new context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			name := args[0]
			if _, err := rt.cfg.FindContext(name); err == nil {
				return fmt.Errorf("context already exists: %s", name)
			}
			rt.cfg.SetContext(config.Context{
				Name:     name,
				Endpoint: endpoint,
				OrgID:    orgID,
				OrgType:  orgType,
				Rate:     rate,
			})
			if err := rt.cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(rt.configPathValue(), rt.cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Added context %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&orgID, "org-id", "", "Organization ID")
	cmd.Flags().StringVar(&orgType, "org-type", "standard", "Organization type: standard or cloud")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "API endpoint (empty for production)")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Requests per second (0 for default)")
	_ = cmd.MarkFlagRequired("org-id")
	return cmd
}

func newConfigDeleteContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-context NAME",
		Short: "Delete a context and its stored token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			name := args[0]
			contexts := rt.cfg.Contexts
			filtered := contexts[:0]
			found := false
			for _, ctx := range contexts {
				if ctx.Name == name {
					found = true
					continue
				}
				filtered = append(filtered, ctx)
			}
			if !found {
				return fmt.Errorf("context not found: %s", name)
			}
			rt.cfg.Contexts = filtered
			if rt.cfg.CurrentContext == name {
				rt.cfg.CurrentContext = ""
			}
			if err := config.Save(rt.configPathValue(), rt.cfg); err != nil {
				return err
			}
			if err := rt.tokens.Delete(name); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Deleted context %s\n", name)
			return nil
		},
	}
}

func newConfigSetTokenCommand() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "set-token",
		Short: "Store the OAuth token for the active context",
		Long: "Stores the OAuth token in the system keyring (or a restricted file\n" +
			"when no keyring is available). Reads the token from stdin when the\n" +
			"--token flag is not given, so it stays out of the shell history.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			name := rt.ResolveContextName()
			if name == "" {
				return fmt.Errorf("no context configured")
			}
			if _, err := rt.cfg.FindContext(name); err != nil {
				return err
			}
			if token == "" {
				_, _ = fmt.Fprint(rt.Writer(), "Token: ")
				reader := bufio.NewReader(cmd.InOrStdin())
				line, err := reader.ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read token: %w", err)
				}
				token = strings.TrimSpace(line)
			}
			if token == "" {
				return fmt.Errorf("token cannot be empty")
			}
			if err := rt.tokens.Set(name, token); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Token stored for context %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Token value (omit to read from stdin)")
	return cmd
}

func newConfigDeleteTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-token",
		Short: "Remove the stored token for the active context",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			name := rt.ResolveContextName()
			if name == "" {
				return fmt.Errorf("no context configured")
			}
			if err := rt.tokens.Delete(name); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Token removed for context %s\n", name)
			return nil
		},
	}
}
