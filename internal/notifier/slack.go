package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobby/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// maxListed caps how many NEW listings one summary message spells out.
const maxListed = 20

// SlackNotifier sends run summaries to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts each run's summary to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify sends one Block Kit message summarizing the run. Runs with nothing
// NEW and nothing GONE send nothing.
func (s *SlackNotifier) Notify(result model.Result) error {
	newCount, goneCount := result.Count(model.LabelNew), result.Count(model.LabelGone)
	if newCount == 0 && goneCount == 0 {
		return nil
	}

	if err := s.send(buildPayload(result)); err != nil {
		return err
	}
	s.logger.Info("slack summary sent", "new", newCount, "gone", goneCount)
	return nil
}

func (s *SlackNotifier) send(payload slackPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
		time.Sleep(time.Duration(secs) * time.Second)

		resp2, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", resp2.StatusCode)
		}
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendTestMessage sends a one-listing summary to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	flag := true
	return n.Notify(model.Result{Rows: []model.Row{{
		Label: model.LabelNew,
		Record: model.Record{
			UID:          "test.notification.1",
			Title:        "Test Notification: Integration Verified",
			Company:      "Jobby",
			Location:     "Everywhere",
			AllowsRemote: &flag,
		},
	}}})
}

func buildPayload(result model.Result) slackPayload {
	newRows := result.Filter(model.LabelNew)

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: fmt.Sprintf("🚀 %d new listings", len(newRows))},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*New:*\n" + strconv.Itoa(len(newRows))},
				{Type: "mrkdwn", Text: "*Still open:*\n" + strconv.Itoa(result.Count(model.LabelOld))},
				{Type: "mrkdwn", Text: "*Gone:*\n" + strconv.Itoa(result.Count(model.LabelGone))},
			},
		},
	}

	if len(newRows) > 0 {
		var sb strings.Builder
		for i, row := range newRows {
			if i == maxListed {
				fmt.Fprintf(&sb, "_…and %d more_", len(newRows)-maxListed)
				break
			}
			sb.WriteString(listingLine(row.Record))
			sb.WriteString("\n")
		}
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: strings.TrimRight(sb.String(), "\n")},
		})
	}

	blocks = append(blocks, slackBlock{Type: "divider"})
	return slackPayload{Blocks: blocks}
}

func listingLine(r model.Record) string {
	line := "• *" + r.Company + "*: " + r.Title
	if r.Location != "" {
		line += " (" + r.Location + ")"
	}
	if r.AllowsRemote != nil && *r.AllowsRemote {
		line += " 🌎"
	}
	return line
}
