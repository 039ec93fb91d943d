// Package notify posts a short change notification to a Slack incoming
// webhook when one is configured. Notification is best-effort: failures are
// logged and never fail the run.
package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/slack-go/slack"

	"github.com/luipir/geodiff-action/internal/report"
)

// SlackNotifier posts diff summaries to an incoming webhook URL.
type SlackNotifier struct {
	webhookURL string
}

func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL}
}

// Notify posts a summary message when the result contains changes. Runs
// with no changes are not announced.
func (n *SlackNotifier) Notify(ctx context.Context, result *report.DiffResult) {
	if n.webhookURL == "" || !result.HasChanges {
		return
	}

	msg := &slack.WebhookMessage{Text: buildMessage(result)}
	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		log.Printf("Warning: failed to post Slack notification: %v", err)
		return
	}
	log.Println("Posted change notification to Slack")
}

func buildMessage(result *report.DiffResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, ":world_map: Geospatial dataset changed: `%s`\n", result.Base.Path)
	fmt.Fprintf(&b, "%d changes (%d inserts, %d updates, %d deletes)",
		result.Summary.TotalChanges,
		result.Summary.Inserts,
		result.Summary.Updates,
		result.Summary.Deletes)

	tables := result.SortedTables()
	if len(tables) > 0 {
		fmt.Fprintf(&b, " across %s", strings.Join(tables, ", "))
	}
	return b.String()
}
