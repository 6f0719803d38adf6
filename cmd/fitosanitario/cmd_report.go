package main

import (
	"fmt"

	"fitosanitario/internal/report"

	"github.com/spf13/cobra"
)

func (c *cli) reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate CSV or XLSX reports",
	}

	var plotID int64
	var out string
	var xlsx bool

	inspections := &cobra.Command{
		Use:   "inspections",
		Short: "Inspection report for one plot",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.wire()
			if err != nil {
				return err
			}
			path, err := a.reports.InspectionReport(cmd.Context(), plotID, outDir(a, out), format(xlsx))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	inspections.Flags().Int64Var(&plotID, "plot", 0, "plot id (id_lote)")
	_ = inspections.MarkFlagRequired("plot")

	crops := &cobra.Command{
		Use:   "crops",
		Short: "Crop report with plot areas",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.wire()
			if err != nil {
				return err
			}
			path, err := a.reports.CropReport(cmd.Context(), outDir(a, out), format(xlsx))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	for _, sub := range []*cobra.Command{inspections, crops} {
		sub.Flags().StringVar(&out, "out", "", "destination directory (default reports.output_dir)")
		sub.Flags().BoolVar(&xlsx, "xlsx", false, "write an XLSX workbook instead of CSV")
		cmd.AddCommand(sub)
	}
	return cmd
}

func outDir(a *app, flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.Reports.OutputDir
}

func format(xlsx bool) report.Format {
	if xlsx {
		return report.FormatXLSX
	}
	return report.FormatCSV
}
