package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrsinham/dicomsift/internal/preview"
)

type previewOptions struct {
	output   string
	series   string
	index    int
	terminal bool
	width    int
}

func newPreviewCmd(a *app) *cobra.Command {
	opts := previewOptions{index: -1}

	cmd := &cobra.Command{
		Use:   "preview <file | root>",
		Short: "Render a 256x256 grayscale preview",
		Long: "Renders the first frame of a DICOM file. With a folder and --series, renders the\n" +
			"middle file of that series, or the file at --index.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPreview(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "preview.png", "PNG file to write")
	cmd.Flags().StringVar(&opts.series, "series", "", "Series UID to preview when the argument is a folder")
	cmd.Flags().IntVar(&opts.index, "index", -1, "File index within the series (default: middle file)")
	cmd.Flags().BoolVar(&opts.terminal, "terminal", false, "Draw the preview in the terminal instead of writing a PNG")
	cmd.Flags().IntVar(&opts.width, "width", 48, "Terminal preview width in columns")
	return cmd
}

func (a *app) runPreview(cmd *cobra.Command, target string, opts previewOptions) error {
	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	path := target
	if info.IsDir() {
		if opts.series == "" {
			return fmt.Errorf("%s is a folder: choose a series with --series", target)
		}
		table, err := a.index(cmd, target, "")
		if err != nil {
			return err
		}
		rec, ok := table.Get(opts.series)
		if !ok {
			return fmt.Errorf("series %s not found under %s", opts.series, target)
		}
		i := preview.MiddleIndex(len(rec.Files))
		if opts.index >= 0 {
			i = preview.Step(opts.index, 0, len(rec.Files))
		}
		path = rec.Files[i]
	}

	img, err := preview.Render(path)
	if err != nil {
		a.logger.Warn("preview failed", "path", path, "error", err)
	}

	if opts.terminal {
		fmt.Fprintln(cmd.OutOrStdout(), preview.Terminal(img, opts.width))
		return nil
	}
	if err := preview.SavePNG(opts.output, img); err != nil {
		return err
	}
	a.printer(cmd).printf("✓ Preview of %s written to %s\n", path, opts.output)
	return nil
}
