package main

import (
	"github.com/hxl1990/scanner/internal/engine"
	"github.com/hxl1990/scanner/internal/logging"
	"github.com/hxl1990/scanner/internal/trace"
	"github.com/hxl1990/scanner/internal/traceviz"

	"github.com/spf13/cobra"
)

var (
	exportIn  string
	exportOut string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Decode a profiler trace and write a trace-event document for chrome://tracing",
	RunE: func(cmd *cobra.Command, args []string) error {
		dump, err := trace.DecodeFile(exportIn)
		if err != nil {
			return err
		}
		if err := traceviz.Write(exportOut, dump); err != nil {
			return err
		}
		logging.GetLogger().Info("trace document written",
			logging.StringField("in", exportIn),
			logging.StringField("out", exportOut),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportIn, "in", engine.DefaultTraceFile, "Profiler trace file to decode")
	exportCmd.Flags().StringVar(&exportOut, "out", "profile.trace", "Output path for the trace-event document")

	rootCmd.AddCommand(exportCmd)
}
