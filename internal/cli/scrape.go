package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/ff-events/internal/notifier"
	"github.com/pfrederiksen/ff-events/internal/refresh"
)

type scrapeOptions struct {
	format   string
	sort     string
	dryRun   bool
	htmlFile string
}

func newScrapeCmd() *cobra.Command {
	opts := &scrapeOptions{}
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run the pipeline once and replace the stored snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrape(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&opts.sort, "sort", "time", "Display order: time, currency or title")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the events and announcement without storing or publishing")
	cmd.Flags().StringVar(&opts.htmlFile, "html", "", "Extract from a saved calendar page instead of a live browser")

	return cmd
}

func runScrape(cmd *cobra.Command, opts *scrapeOptions) error {
	format, err := parseFormat(opts.format)
	if err != nil {
		return err
	}
	order, err := parseSortOrder(opts.sort)
	if err != nil {
		return err
	}

	// Logs go to stderr so stdout stays machine readable
	a, err := newApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	sc, err := a.newScraper(opts.htmlFile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.dryRun {
		result, err := sc.Run(ctx)
		if err != nil {
			return fmt.Errorf("scraping calendar: %w", err)
		}
		output := &OutputResult{
			RunID:       result.RunID,
			LastUpdated: result.StartedAt,
			Events:      sortedEvents(result.Events, order),
			EventCount:  len(result.Events),
		}
		if err := WriteOutput(out, output, format, flagVerbose); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		if format == FormatText {
			fmt.Fprintln(out)
			return notifier.NewDryRunNotifier(out).Notify(ctx, result.Events)
		}
		return nil
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	n, err := a.newNotifier()
	if err != nil {
		return err
	}

	svc := refresh.NewService(sc, store, n, nil)
	snap, err := svc.Refresh(ctx, refresh.TriggerCLI)
	if err != nil {
		return err
	}

	output := &OutputResult{
		LastUpdated: snap.UpdatedAt,
		Events:      sortedEvents(snap.Events, order),
		EventCount:  snap.Len(),
		Stored:      true,
	}
	if err := WriteOutput(out, output, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
