package pubsub

import (
	"context"

	"github.com/quantpulse/signal-monitor/internal/models"
	"github.com/quantpulse/signal-monitor/pkg/logger"
)

// NotifierConfig holds stream/channel names for notification dispatch
type NotifierConfig struct {
	Stream  string // stream for durable consumers, empty disables
	Channel string // pub/sub channel for live listeners, empty disables
}

// DefaultNotifierConfig returns default dispatch targets
func DefaultNotifierConfig() NotifierConfig {
	return NotifierConfig{
		Stream:  "signal-alerts",
		Channel: "signal-alerts",
	}
}

// notification is the wire shape published per dispatch. The alert is nil
// when the firing rule requested a notification without creating an alert.
type notification struct {
	Alert  *models.SignalAlert  `json:"alert,omitempty"`
	Change *models.SignalChange `json:"change"`
}

// StreamNotifier implements the engine's Notifier port over Redis
type StreamNotifier struct {
	config NotifierConfig
	client Client
}

// NewStreamNotifier creates a Redis-backed notifier
func NewStreamNotifier(config NotifierConfig, client Client) *StreamNotifier {
	return &StreamNotifier{
		config: config,
		client: client,
	}
}

// Notify publishes the change (and alert, when present) to the configured
// stream and channel
func (n *StreamNotifier) Notify(ctx context.Context, alert *models.SignalAlert, change *models.SignalChange) error {
	msg := notification{Alert: alert, Change: change}

	if n.config.Stream != "" {
		if err := n.client.PublishToStream(ctx, n.config.Stream, "notification", msg); err != nil {
			return err
		}
	}

	if n.config.Channel != "" {
		if err := n.client.Publish(ctx, n.config.Channel, msg); err != nil {
			return err
		}
	}

	logger.Debug("Notification dispatched",
		logger.String("symbol", change.Symbol),
		logger.String("change_type", string(change.ChangeType)),
	)
	return nil
}
