package notifier

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pfrederiksen/ff-events/internal/event"
)

// DryRunNotifier prints what would be announced without publishing anything
type DryRunNotifier struct {
	out io.Writer
}

// NewDryRunNotifier creates a new dry-run notifier writing to w, or stdout when w is nil
func NewDryRunNotifier(w io.Writer) *DryRunNotifier {
	if w == nil {
		w = os.Stdout
	}
	return &DryRunNotifier{out: w}
}

// Notify prints the digest tweet and the size of the publish batch
func (n *DryRunNotifier) Notify(_ context.Context, events []*event.Event) error {
	if len(events) == 0 {
		fmt.Fprintln(n.out, "Nothing to announce.")
		return nil
	}
	fmt.Fprintln(n.out, "--- Digest ---")
	fmt.Fprintln(n.out, formatDigest(events))
	fmt.Fprintf(n.out, "--- Would publish %d events ---\n", len(events))
	return nil
}
