package cmd

import (
	"github.com/spf13/cobra"

	"github.com/trackerops/tracker-audit/pkg/output"
)

func NewGroupsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List groups in the organization",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			format, err := output.ParseFormat(rt.OutputFormat())
			if err != nil {
				return err
			}
			client, err := rt.buildClient(newQuietLogger(rt.verbose))
			if err != nil {
				return err
			}

			groups, err := client.Groups().List(cmd.Context())
			if err != nil {
				return err
			}

			switch format {
			case output.FormatTable, output.FormatWide:
				output.WriteGroupTable(rt.Writer(), groups)
				return nil
			default:
				return output.WriteObject(rt.Writer(), format, groups)
			}
		},
	}
}
