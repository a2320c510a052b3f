package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"media-manager/internal/logging"
	"media-manager/internal/metrics"
	"media-manager/internal/startup"
)

// Subject is used for every missing-media message.
const Subject = "Missing Media Files Detected"

// Notifier sends an alert listing missing media paths. The boolean reports
// whether a message was actually delivered.
type Notifier interface {
	Notify(ctx context.Context, missing []string) (bool, error)
}

// Message is a composed alert.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// ComposeMessage builds the alert body for missing. Paths are sorted.
func ComposeMessage(missing []string) Message {
	sorted := append([]string(nil), missing...)
	sort.Strings(sorted)

	var b strings.Builder
	fmt.Fprintf(&b, "The following %d media files are missing:\n\n", len(sorted))
	b.WriteString(strings.Join(sorted, "\n"))

	return Message{Subject: Subject, Body: b.String()}
}

// New returns the notifier described by the email settings: a LogNotifier
// addressed to the configured receiver when notifications are enabled, and
// Disabled otherwise.
func New(cfg startup.EmailConfig) Notifier {
	if !cfg.Enabled || !cfg.IsValid() {
		return Disabled{}
	}
	return &LogNotifier{
		From: formatAddress(cfg.SenderName, cfg.SenderEmail),
		To:   cfg.ReceiverEmail,
	}
}

func formatAddress(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// LogNotifier writes the composed message to the log.
type LogNotifier struct {
	From string
	To   string

	// Sent holds every message delivered, newest last.
	Sent []Message
}

// Notify logs the alert. An empty missing list sends nothing.
func (n *LogNotifier) Notify(ctx context.Context, missing []string) (bool, error) {
	if len(missing) == 0 {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		return false, err
	}

	msg := ComposeMessage(missing)
	msg.From = n.From
	msg.To = n.To

	logging.Info("Notification to %s: %s", msg.To, msg.Subject)
	for _, line := range strings.Split(msg.Body, "\n") {
		logging.Info("  %s", line)
	}

	n.Sent = append(n.Sent, msg)
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	return true, nil
}

// Disabled drops every alert.
type Disabled struct{}

// Notify records the skipped notification and reports nothing sent.
func (Disabled) Notify(_ context.Context, missing []string) (bool, error) {
	if len(missing) > 0 {
		logging.Debug("Notifications disabled; %d missing files not sent", len(missing))
		metrics.NotificationsTotal.WithLabelValues("disabled").Inc()
	}
	return false, nil
}
