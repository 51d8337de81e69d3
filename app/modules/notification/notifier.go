package notification

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Topics for league outcome notifications. Delivery to end users is a
// downstream concern; this module only creates the outcome records on the
// bus.
const (
	TopicSeasonStarted    = "league.season.started"
	TopicWeekProcessed    = "league.week.processed"
	TopicMemberTransition = "league.member.transition"
)

// MemberTransitionPayload notifies one participant of their week-end result.
type MemberTransitionPayload struct {
	UserID  string `json:"user_id"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SeasonStartedPayload announces a freshly started week.
type SeasonStartedPayload struct {
	WeekID      int64  `json:"week_id"`
	StartDate   string `json:"start_date"`
	Distributed int    `json:"distributed"`
	BotsAdded   int    `json:"bots_added"`
}

// WeekProcessedPayload summarizes a completed week.
type WeekProcessedPayload struct {
	WeekID    int64 `json:"week_id"`
	Promoted  int   `json:"promoted"`
	Relegated int   `json:"relegated"`
	Stayed    int   `json:"stayed"`
}

// Notifier publishes fire-and-forget outcome events. Publish failures are
// logged and swallowed; season processing never fails because a notification
// could not be created.
type Notifier struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// NewNotifier creates a new Notifier.
func NewNotifier(publisher message.Publisher, logger *slog.Logger) *Notifier {
	return &Notifier{
		publisher: publisher,
		logger:    logger,
	}
}

// Publish marshals the payload and publishes it on the topic.
func (n *Notifier) Publish(ctx context.Context, topic string, payload any) {
	if n == nil || n.publisher == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		n.logger.ErrorContext(ctx, "Failed to marshal notification payload",
			"topic", topic,
			"error", err,
		)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := n.publisher.Publish(topic, msg); err != nil {
		n.logger.ErrorContext(ctx, "Failed to publish notification",
			"topic", topic,
			"error", err,
		)
	}
}
