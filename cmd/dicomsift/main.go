package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrsinham/dicomsift/internal/logging"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the state shared by every command: global flags and the logger built from them.
type app struct {
	verbose bool
	quiet   bool
	logFile string

	logger   *slog.Logger
	closeLog func() error
}

func newRootCmd() *cobra.Command {
	a := &app{logger: logging.Discard(), closeLog: func() error { return nil }}

	root := &cobra.Command{
		Use:           "dicomsift",
		Short:         "Index DICOM series and copy them into a new tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var w io.Writer = cmd.ErrOrStderr()
			if a.quiet {
				w = io.Discard
			}
			logger, closeFn, err := logging.New(logging.Options{
				Verbose: a.verbose,
				LogFile: a.logFile,
				W:       w,
			})
			if err != nil {
				return err
			}
			a.logger = logger
			a.closeLog = closeFn
			logger.Debug("command started", "command", cmd.Name())
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.closeLog()
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Suppress progress and informational output")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "Append log records to this file")

	root.AddCommand(
		newScanCmd(a),
		newCopyCmd(a),
		newPreviewCmd(a),
		newBrowseCmd(a),
		newSampleCmd(a),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dicomsift %s\n", version)
		},
	}
}

// printer writes user-facing output. Everything but errors is dropped in quiet mode.
type printer struct {
	w     io.Writer
	quiet bool
}

func (a *app) printer(cmd *cobra.Command) printer {
	return printer{w: cmd.OutOrStdout(), quiet: a.quiet}
}

func (p printer) banner() {
	p.println("dicomsift")
	p.println("=========")
	p.println()
}

func (p printer) printf(format string, args ...any) {
	if !p.quiet {
		fmt.Fprintf(p.w, format, args...)
	}
}

func (p printer) println(args ...any) {
	if !p.quiet {
		fmt.Fprintln(p.w, args...)
	}
}

func (p printer) success(format string, args ...any) {
	p.printf("\n✓ "+format+"\n", args...)
}
