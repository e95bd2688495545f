package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"mastdash/internal"
	"mastdash/internal/pipeline"
	"mastdash/internal/util"
	"mastdash/internal/watcher"
)

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load both sheets and print what was derived",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.proc.Load(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("mast rows=%d dash rows=%d trim entries=%d\n", summary.MastRows, summary.DashRows, summary.TrimEntries)
			fmt.Printf("classes=%s sizes=%s\n", joinInts(summary.Classes), joinInts(summary.Sizes))
			fmt.Printf("valve torque=%s actuator torque=%s\n", fmtOpt(summary.Torques.Valve), fmtOpt(summary.Torques.Actuator))
			return nil
		},
	}
}

func newQueryCmd() *cobra.Command {
	var (
		class, size int
		vt, at      float64
		format, out string
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Compute the capability matrix for a class and size",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.proc.Load(cmd.Context()); err != nil {
				return err
			}

			q := pipeline.Query{Class: class, Size: size}
			if cmd.Flags().Changed("vt") {
				q.ValveTorque = util.FloatPtr(vt)
			}
			if cmd.Flags().Changed("at") {
				q.ActuatorTorque = util.FloatPtr(at)
			}

			res, runID, err := a.proc.Run(q)
			if err != nil {
				return err
			}
			if !res.OK() {
				return fmt.Errorf("%s", res.Reason())
			}
			if runID > 0 {
				fmt.Fprintf(os.Stderr, "run %d: trim %s (row %d)\n", runID, util.FormatFixed2(res.Trim), res.TrimRow+1)
			}
			return emit(format, out, res.Rows, pipeline.MetaFor(res, a.cfg.FOSValveMin, a.cfg.FOSActuatorMin), a.cfg.OutputDir)
		},
	}
	cmd.Flags().IntVar(&class, "class", 0, "Pressure class (150, 300 or 600)")
	cmd.Flags().IntVar(&size, "size", 0, "Valve size")
	cmd.Flags().Float64Var(&vt, "vt", 0, "Override the sheet valve torque (Nm)")
	cmd.Flags().Float64Var(&at, "at", 0, "Override the sheet actuator torque (Nm)")
	cmd.Flags().StringVar(&format, "format", pipeline.FormatTable, "table, json, csv, xlsx or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path (default: stdout for table/json/csv, OUTPUT_DIR otherwise)")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		runID       int
		format, out string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Re-export the rows of a recorded run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if runID == 0 {
				return fmt.Errorf("--run-id is required")
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			db, err := a.openDB()
			if err != nil {
				return err
			}

			run, err := db.MustRun(runID)
			if err != nil {
				return err
			}
			rows, err := db.GetRunRows(runID)
			if err != nil {
				return err
			}
			meta := pipeline.ExportMeta{
				Class:          run.Class,
				Size:           run.Size,
				ValveTorque:    run.ValveTorque,
				ActuatorTorque: run.ActuatorTorque,
				GeneratedAt:    time.Now(),
				FOSValveMin:    a.cfg.FOSValveMin,
				FOSActuatorMin: a.cfg.FOSActuatorMin,
			}
			return emit(format, out, rows, meta, a.cfg.OutputDir)
		},
	}
	cmd.Flags().IntVar(&runID, "run-id", 0, "Run id as listed by the history command")
	cmd.Flags().StringVar(&format, "format", pipeline.FormatXLSX, "xlsx, csv, pdf, json or table")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path (default: OUTPUT_DIR/<generated name>)")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			db, err := a.openDB()
			if err != nil {
				return err
			}

			runs, err := db.ListRuns(limit)
			if err != nil {
				return err
			}
			renderRuns(runs)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to show")
	return cmd
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload and report on an interval (WATCH_* settings)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			return watcher.NewService(a.proc, a.cfg, a.log).Run(cmd.Context())
		},
	}
}

// emit writes rows to stdout for the stream formats without --out, otherwise to a file.
func emit(format, out string, rows []internal.CapabilityRow, meta pipeline.ExportMeta, outputDir string) error {
	format = strings.ToLower(format)
	streamable := format == pipeline.FormatTable || format == pipeline.FormatJSON || format == pipeline.FormatCSV
	if out == "" && streamable {
		return pipeline.WriteRows(format, rows, os.Stdout)
	}
	if out == "" {
		out = filepath.Join(outputDir, pipeline.DefaultFilename(format, meta.GeneratedAt))
	}
	if err := pipeline.Export(format, rows, meta, out); err != nil {
		return err
	}
	fmt.Printf("exported %d rows to %s\n", len(rows), out)
	return nil
}

func renderRuns(runs []internal.RunRecord) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Created", "Class", "Size", "Trim", "Status", "Rows", "Reason"})
	table.SetAutoFormatHeaders(false)
	for _, r := range runs {
		table.Append([]string{
			fmt.Sprint(r.ID), r.CreatedAt, fmt.Sprint(r.Class), fmt.Sprint(r.Size),
			fmtOpt(r.Trim), r.Status, fmt.Sprint(r.RowCount), r.Reason,
		})
	}
	table.Render()
}

func fmtOpt(v *float64) string {
	if v == nil {
		return "-"
	}
	return util.FormatFixed2(v)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}
