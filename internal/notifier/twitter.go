package notifier

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
	"github.com/pfrederiksen/ff-events/internal/event"
)

const maxTweetLen = 280

type statusUpdater interface {
	Update(status string, params *twitter.StatusUpdateParams) (*twitter.Tweet, *http.Response, error)
}

// TwitterNotifier posts a weekly digest of the snapshot
type TwitterNotifier struct {
	statuses statusUpdater
}

// NewTwitterNotifier creates a new Twitter notifier using environment variables
// Required environment variables:
// - TWITTER_API_KEY
// - TWITTER_API_SECRET
// - TWITTER_ACCESS_TOKEN
// - TWITTER_ACCESS_SECRET
func NewTwitterNotifier() (*TwitterNotifier, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials in environment variables")
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	client := twitter.NewClient(httpClient)

	return &TwitterNotifier{statuses: client.Statuses}, nil
}

// Notify posts one digest tweet. Empty snapshots are not announced.
func (n *TwitterNotifier) Notify(ctx context.Context, events []*event.Event) error {
	if len(events) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := n.statuses.Update(formatDigest(events), nil); err != nil {
		return fmt.Errorf("failed to post digest tweet: %w", err)
	}
	return nil
}

// formatDigest summarizes a snapshot in at most 280 characters. Lengths are
// counted in runes, not bytes.
func formatDigest(events []*event.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "High impact events this week: %d\n", len(events))
	used := utf8.RuneCountInString(b.String())

	tags := "\n#forex #economy"
	for i, evt := range events {
		line := fmt.Sprintf("%s %s %s\n", evt.TimeUTC.UTC().Format("Mon 15:04Z"), evt.Currency, evt.Title)
		rest := len(events) - i - 1
		more := ""
		if rest > 0 {
			more = fmt.Sprintf("+%d more\n", rest)
		}
		lineLen := utf8.RuneCountInString(line)
		if used+lineLen+utf8.RuneCountInString(more)+utf8.RuneCountInString(tags) > maxTweetLen {
			fmt.Fprintf(&b, "+%d more\n", len(events)-i)
			break
		}
		b.WriteString(line)
		used += lineLen
	}
	b.WriteString(tags)

	tweet := []rune(b.String())
	if len(tweet) > maxTweetLen {
		return string(tweet[:maxTweetLen-3]) + "..."
	}
	return string(tweet)
}
