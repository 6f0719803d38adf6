package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"fitosanitario/internal/alert"

	"github.com/spf13/cobra"
)

func (c *cli) alertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List and close phytosanitary alerts",
	}

	var critical bool
	var kind string
	list := &cobra.Command{
		Use:   "list",
		Short: "List open alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.wire()
			if err != nil {
				return err
			}
			var alerts []alert.Alert
			if critical {
				alerts, err = a.alerts.Critical(cmd.Context())
			} else {
				alerts, err = a.alerts.Active(cmd.Context())
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIPO\tSEVERIDAD\tENTIDAD\tCREADA\tDESCRIPCION")
			for _, al := range alerts {
				if kind != "" && al.Type != kind {
					continue
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
					al.ID, al.Type, al.Severity, al.EntityID, al.CreatedAt.Format(time.RFC3339), al.Description)
			}
			return w.Flush()
		},
	}
	list.Flags().BoolVar(&critical, "critical", false, "only CRITICA alerts")
	list.Flags().StringVar(&kind, "type", "", "only alerts of this type (PLAGA, INSPECCION, RESULTADO_TECNICO)")

	closeCmd := &cobra.Command{
		Use:   "close <id>",
		Short: "Close an open alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid alert id %q: %w", args[0], err)
			}
			a, err := c.wire()
			if err != nil {
				return err
			}
			if err := a.alerts.Close(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "alert %d closed\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, closeCmd)
	return cmd
}
