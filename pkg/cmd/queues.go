package cmd

import (
	"github.com/spf13/cobra"

	"github.com/trackerops/tracker-audit/pkg/audit"
	"github.com/trackerops/tracker-audit/pkg/output"
)

func NewQueuesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "queues",
		Short: "List queues in the organization",
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

			queues, err := client.Queues().List(cmd.Context())
			if err != nil {
				return err
			}
			infos := make([]audit.QueueInfo, 0, len(queues))
			for _, q := range queues {
				infos = append(infos, audit.NewQueueInfo(q))
			}

			switch format {
			case output.FormatWide:
				output.WriteQueueTableWide(rt.Writer(), infos)
				return nil
			case output.FormatTable:
				output.WriteQueueTable(rt.Writer(), infos)
				return nil
			default:
				return output.WriteObject(rt.Writer(), format, infos)
			}
		},
	}
}
