package notifier

import (
	"log/slog"

	"github.com/amishk599/jobby/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes listing changes to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each change via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs every NEW and GONE row, then a one-line summary.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(result model.Result) error {
	for _, row := range result.Rows {
		var msg string
		switch row.Label {
		case model.LabelNew:
			msg = "new listing"
		case model.LabelGone:
			msg = "listing gone"
		default:
			continue
		}
		r := row.Record
		n.logger.Info(msg, "uid", r.UID, "company", r.Company, "title", r.Title, "location", r.Location)
	}

	n.logger.Info("run summary",
		"new", result.Count(model.LabelNew),
		"old", result.Count(model.LabelOld),
		"gone", result.Count(model.LabelGone),
	)
	return nil
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(model.Result) error { return nil }
