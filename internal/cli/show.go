package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/ff-events/internal/filter"
	"github.com/pfrederiksen/ff-events/internal/storage"
)

type showOptions struct {
	format     string
	sort       string
	upcoming   bool
	currencies []string
	keywords   []string
}

func newShowCmd() *cobra.Command {
	opts := &showOptions{}
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShow(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&opts.sort, "sort", "time", "Display order: time, currency or title")
	cmd.Flags().BoolVar(&opts.upcoming, "upcoming", false, "Only show events that have not happened yet")
	cmd.Flags().StringSliceVar(&opts.currencies, "currency", nil, "Only show these currencies (repeatable or comma separated)")
	cmd.Flags().StringSliceVar(&opts.keywords, "search", nil, "Only show events whose title contains one of these keywords")

	return cmd
}

func runShow(cmd *cobra.Command, opts *showOptions) error {
	format, err := parseFormat(opts.format)
	if err != nil {
		return err
	}
	order, err := parseSortOrder(opts.sort)
	if err != nil {
		return err
	}

	a, err := newApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	snap, err := store.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no snapshot stored yet, run 'ffcal scrape' first")
	}
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	events := snap.Events
	if opts.upcoming {
		events = snap.Upcoming(time.Now())
	}
	f := filter.NewFilter()
	f.Currencies = opts.currencies
	f.Keywords = opts.keywords
	events = f.Apply(events)
	if flagVerbose && !f.IsEmpty() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Filters: %s\n", f.String())
	}

	result := &OutputResult{
		LastUpdated: snap.UpdatedAt,
		Events:      sortedEvents(events, order),
		EventCount:  len(events),
		Stored:      true,
	}
	if err := WriteOutput(cmd.OutOrStdout(), result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
