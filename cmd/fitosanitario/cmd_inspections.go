package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"fitosanitario/internal/domain"

	"github.com/spf13/cobra"
)

func (c *cli) inspectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspections",
		Short: "Query inspections and run the infestation calculators",
	}

	var status string
	var plotID int64
	list := &cobra.Command{
		Use:   "list",
		Short: "List inspections, optionally by --status or --plot",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.wire()
			if err != nil {
				return err
			}
			svc := a.services.Inspections
			var rows []domain.Inspection
			switch {
			case status != "":
				rows, err = svc.ListByStatus(cmd.Context(), status)
			case plotID != 0:
				rows, err = svc.ListByPlot(cmd.Context(), plotID)
			default:
				rows, err = svc.List(cmd.Context())
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tLOTE\tFECHA\tESTADO\tAFECTADAS\tMUESTREADAS\tINDICE")
			for _, i := range rows {
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%d\t%d\t%.2f\n",
					i.ID, i.PlotID, i.Date.Format("2006-01-02"), i.Status, i.AffectedPlants, i.SampledPlants, i.Index)
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&status, "status", "", "PENDIENTE, EN_PROCESO, COMPLETADA or CANCELADA")
	list.Flags().Int64Var(&plotID, "plot", 0, "plot id (id_lote)")

	statusCmd := &cobra.Command{
		Use:   "status <id> <estado>",
		Short: "Move an inspection to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid inspection id %q: %w", args[0], err)
			}
			a, err := c.wire()
			if err != nil {
				return err
			}
			if err := a.services.Inspections.ChangeStatus(cmd.Context(), id, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inspection %d: %s\n", id, args[1])
			return nil
		},
	}

	var affected, sampled int
	severity := &cobra.Command{
		Use:   "severity",
		Short: "Infestation index and severity for plant counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.wire()
			if err != nil {
				return err
			}
			svc := a.services.Inspections
			index, err := svc.InfestationIndex(affected, sampled)
			if err != nil {
				return err
			}
			level, err := svc.EvaluateSeverity(index)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indice: %.2f%%\nseveridad: %s\n", index, level)
			return nil
		},
	}
	severity.Flags().IntVar(&affected, "affected", 0, "affected plants")
	severity.Flags().IntVar(&sampled, "sampled", 0, "sampled plants")

	cmd.AddCommand(list, statusCmd, severity)
	return cmd
}
