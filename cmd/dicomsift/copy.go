package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrsinham/dicomsift/internal/config"
	"github.com/mrsinham/dicomsift/internal/copier"
	"github.com/mrsinham/dicomsift/internal/series"
)

type copyOptions struct {
	plan     config.Plan
	planFile string
	savePlan string
}

func newCopyCmd(a *app) *cobra.Command {
	var opts copyOptions

	cmd := &cobra.Command{
		Use:   "copy [root]",
		Short: "Copy selected series into a destination tree",
		Long: "Copies every file of the selected series to <dest>/<relative dir>/<series folder>/<file>.\n" +
			"The series folder is the description (original), a single custom name (custom), or\n" +
			"the description behind a prefix (prefixed). Without --dest nothing is copied.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.plan.Root = args[0]
			}
			return a.runCopy(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.plan.Leaf, "leaf", "", "Index only this folder under the root")
	f.StringSliceVar(&opts.plan.Series, "series", nil, "Series UID to copy (repeatable)")
	f.StringVar(&opts.plan.Query, "query", "", "Copy every series whose label contains this text")
	f.BoolVar(&opts.plan.All, "all", false, "Copy every series")
	f.StringVar(&opts.plan.Naming, "naming", "", "Folder naming: original, custom or prefixed (default original)")
	f.StringVar(&opts.plan.CustomName, "custom", "", "Folder name for --naming custom")
	f.StringVar(&opts.plan.Prefix, "prefix", "", "Prefix for --naming prefixed")
	f.StringVar(&opts.plan.Destination, "dest", "", "Destination folder")
	f.IntVar(&opts.plan.Workers, "workers", 0, "Parallel file copies (default 1)")
	f.StringVar(&opts.planFile, "plan", "", "Load the copy request from a YAML or TOML plan")
	f.StringVar(&opts.savePlan, "save-plan", "", "Save the copy request to a YAML or TOML plan")
	return cmd
}

func (a *app) runCopy(cmd *cobra.Command, opts copyOptions) error {
	plan := opts.plan
	if opts.planFile != "" {
		loaded, err := config.Load(opts.planFile)
		if err != nil {
			return fmt.Errorf("load plan: %w", err)
		}
		plan.Merge(loaded)
		a.logger.Debug("plan loaded", "path", opts.planFile)
	}
	if plan.Root == "" {
		return fmt.Errorf("no source root: pass it as argument or in --plan")
	}

	p := a.printer(cmd)
	p.banner()

	table, err := a.index(cmd, plan.Root, plan.Leaf)
	if err != nil {
		return err
	}

	uids := selectSeries(table, &plan)
	req, err := plan.Request(uids)
	if err != nil {
		return err
	}

	c := a.counter(cmd.ErrOrStderr(), "Copying")
	res, err := copier.Copy(table, req, c.update)
	if errors.Is(err, copier.ErrNoDestination) {
		p.println("No destination chosen; nothing copied.")
		return nil
	}
	if err != nil {
		return err
	}

	if opts.savePlan != "" {
		if err := config.Save(opts.savePlan, &plan); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not save plan: %v\n", err)
		} else {
			p.printf("Plan saved to %s\n", opts.savePlan)
		}
	}

	for _, f := range res.Failed {
		a.logger.Warn("copy failed", "source", f.Source, "destination", f.Destination, "error", f.Err)
	}
	a.logger.Info("copy finished", "planned", res.Planned, "copied", res.Copied, "failed", len(res.Failed))

	if err := res.Err(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), errStyle.Render(fmt.Sprintf("%d of %d files failed to copy", len(res.Failed), res.Planned)))
		return err
	}
	p.success("Copied %d files from %d series", res.Copied, len(uids))
	p.printf("  Destination: %s\n", req.Destination)
	return nil
}

// selectSeries resolves the plan's selection: explicit UIDs, else --all, else --query.
func selectSeries(table *series.Table, plan *config.Plan) []string {
	switch {
	case len(plan.Series) > 0:
		return plan.Series
	case plan.All:
		return table.UIDs()
	case plan.Query != "":
		return series.Filter(table, plan.Query)
	default:
		return nil
	}
}
