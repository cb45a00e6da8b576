package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trackerops/tracker-audit/pkg/audit"
	"github.com/trackerops/tracker-audit/pkg/export"
	"github.com/trackerops/tracker-audit/pkg/mail"
	"github.com/trackerops/tracker-audit/pkg/output"
)

func NewAuditCommand() *cobra.Command {
	var (
		scopeFlag  string
		exportPath string
		emailTo    []string
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run a full access audit",
		Long: "Walks every queue in the organization and reports which subjects hold\n" +
			"which permissions. Interrupting the run with Ctrl-C still produces a\n" +
			"report from the queues audited so far.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}

			scope, err := resolveScope(rt, scopeFlag)
			if err != nil {
				return err
			}
			format, err := output.ParseFormat(rt.OutputFormat())
			if err != nil {
				return err
			}

			logger, logPath, cleanup := newRunLogger(rt.verbose, rt.logDir())
			defer cleanup()
			if logPath != "" {
				logger.Infow("logging to file", "path", logPath)
			}

			client, err := rt.buildClient(logger)
			if err != nil {
				return err
			}
			auditor := audit.New(client, logger)
			showProgress := !noProgress && (format == output.FormatTable || format == output.FormatWide)
			if showProgress {
				auditor.OnProgress(func(current, total int, queueKey string) {
					fmt.Fprintf(os.Stderr, "\r[%d/%d] %-32s", current, total, queueKey)
				})
			}

			result, runErr := auditor.Run(cmd.Context(), scope)
			if showProgress {
				fmt.Fprintln(os.Stderr)
			}

			if err := writeResult(rt.Writer(), format, result); err != nil {
				return err
			}
			if exportPath != "" || len(emailTo) > 0 {
				wb, err := export.NewWorkbook(result)
				if err != nil {
					return err
				}
				if exportPath != "" {
					if err := wb.SaveAs(exportPath); err != nil {
						return err
					}
					fmt.Fprintf(rt.Writer(), "Report written to %s\n", exportPath)
				}
				if len(emailTo) > 0 {
					if err := rt.emailReport(emailTo, result, wb, logger); err != nil {
						return err
					}
					fmt.Fprintf(rt.Writer(), "Report mailed to %d recipient(s)\n", len(emailTo))
				}
			}

			if runErr != nil {
				if errors.Is(runErr, context.Canceled) {
					return fmt.Errorf("audit interrupted, partial results reported")
				}
				return fmt.Errorf("audit incomplete: %w", runErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&scopeFlag, "scope", "s", "", "Audit scope: all_users_group, groups, users, both")
	cmd.Flags().StringVar(&exportPath, "export", "", "Write an Excel report to this path")
	cmd.Flags().StringSliceVar(&emailTo, "email-to", nil, "Mail the report to these addresses (requires mail config)")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable per-queue progress output")

	return cmd
}

func resolveScope(rt *runtimeState, flagValue string) (audit.Scope, error) {
	value := flagValue
	if value == "" && rt.cfg != nil {
		value = rt.cfg.Settings.Scope
	}
	if value == "" {
		value = string(audit.ScopeAllUsersGroup)
	}
	return audit.ParseScope(value)
}

func writeResult(w io.Writer, format output.Format, result *audit.Result) error {
	switch format {
	case output.FormatJSON, output.FormatYAML:
		return output.WriteObject(w, format, result)
	}

	output.WriteRunSummary(w, result)
	if len(result.Grants) > 0 {
		fmt.Fprintln(w)
		output.WriteGrantTable(w, result.Grants)
	}
	if len(result.Issues) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Queues that could not be inspected:")
		output.WriteIssueTable(w, result.Issues)
	}
	fmt.Fprintln(w)
	output.WriteStatistics(w, result.Statistics)
	return nil
}

func (rt *runtimeState) emailReport(recipients []string, result *audit.Result, wb *export.Workbook, logger *zap.SugaredLogger) error {
	if rt.cfg == nil || rt.cfg.Mail == nil {
		return errors.New("mail is not configured, add a mail section to the config")
	}
	mailCfg := rt.cfg.Mail

	password := ""
	if mailCfg.PasswordEnv != "" {
		password = os.Getenv(mailCfg.PasswordEnv)
	}

	orgID := rt.orgOverride
	if ctx, err := rt.ResolveContext(); err == nil && ctx != nil && orgID == "" {
		orgID = ctx.OrgID
	}

	body, err := mail.RenderReport(mail.ReportMailParams{
		OrgID:       orgID,
		RunID:       result.RunID,
		Scope:       string(result.Scope),
		Finished:    time.Now().Format(time.RFC1123),
		Duration:    result.Duration.Round(time.Second).String(),
		QueueCount:  len(result.Queues),
		GrantCount:  len(result.Grants),
		IssueCount:  len(result.Issues),
		Interrupted: result.Interrupted,
	})
	if err != nil {
		return err
	}

	sender := mail.NewSender(mail.Options{
		Host:     mailCfg.Host,
		Port:     mailCfg.Port,
		From:     mailCfg.From,
		User:     mailCfg.User,
		Password: password,
	}, logger)

	filename := fmt.Sprintf("tracker-audit-%s.xlsx", time.Now().Format("2006-01-02"))
	return sender.Send(mail.Message{
		To:      recipients,
		Subject: fmt.Sprintf("Tracker access audit %s", time.Now().Format("2006-01-02")),
		Body:    body,
		Attachments: []mail.Attachment{{
			Filename: filename,
			WriteTo:  func(w io.Writer) error { return wb.File().Write(w) },
		}},
	})
}
