package notification

import (
	"context"
	"log/slog"
)

// Notification kinds emitted by the transfer and funding flows.
const (
	KindTransferDebit  = "transfer_debit"
	KindTransferCredit = "transfer_credit"
	KindFundingSettled = "funding_settled"
)

// Message describes a notification payload addressed to a user's email.
type Message struct {
	Kind    string
	To      string
	Subject string
	Body    string
}

// Notifier delivers notifications to downstream systems. Delivery is best
// effort: a failed send never affects a committed transaction.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes notifications to the
// structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		"kind", message.Kind,
		"to", message.To,
		"subject", message.Subject,
		"body", message.Body,
	)
	return nil
}
