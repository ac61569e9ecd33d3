// Package event publishes cart change notifications to Kafka.
package event

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/EcommerceGo/clientstate/internal/domain"
	"github.com/utafrali/EcommerceGo/clientstate/internal/selector"
	"github.com/utafrali/EcommerceGo/clientstate/internal/store"
	pkgkafka "github.com/utafrali/EcommerceGo/clientstate/pkg/kafka"
)

// Topic and envelope constants for cart events.
const (
	EventCartUpdated    = "cart.updated"
	SourceClientState   = "clientstate-service"
	DefaultPublishLimit = 5 * time.Second
)

// TopicCartUpdated is the topic cart snapshots are published to.
var TopicCartUpdated = pkgkafka.Topic("cart", "updated")

// Publisher sends an event to a topic. *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// CartUpdatedData is the payload of a cart.updated event.
type CartUpdatedData struct {
	SessionID  string            `json:"session_id"`
	Op         string            `json:"op"`
	Items      []domain.LineItem `json:"items"`
	TotalItems int               `json:"total_items"`
	TotalPrice float64           `json:"total_price"`
}

// CartNotifier turns committed cart snapshots into cart.updated events.
// Publishing happens off the mutating goroutine and never blocks or fails a
// cart mutation.
type CartNotifier struct {
	publisher Publisher
	logger    *slog.Logger
	timeout   time.Duration

	wg sync.WaitGroup
}

// NewCartNotifier creates a notifier. A timeout of zero uses DefaultPublishLimit.
func NewCartNotifier(publisher Publisher, logger *slog.Logger, timeout time.Duration) *CartNotifier {
	if timeout <= 0 {
		timeout = DefaultPublishLimit
	}
	return &CartNotifier{publisher: publisher, logger: logger, timeout: timeout}
}

// Listener returns a store listener publishing snapshots for sessionID.
func (n *CartNotifier) Listener(sessionID string) store.Listener[domain.LineItem] {
	return func(snap store.Snapshot[domain.LineItem]) {
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			n.publish(sessionID, snap)
		}()
	}
}

// Wait blocks until every in-flight publish has returned.
func (n *CartNotifier) Wait() {
	n.wg.Wait()
}

func (n *CartNotifier) publish(sessionID string, snap store.Snapshot[domain.LineItem]) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	data := CartUpdatedData{
		SessionID:  sessionID,
		Op:         snap.Op,
		Items:      snap.Items,
		TotalItems: selector.TotalItems(snap.Items),
		TotalPrice: selector.TotalPrice(snap.Items),
	}
	ev, err := pkgkafka.NewEvent(EventCartUpdated, sessionID, SourceClientState, data,
		pkgkafka.WithVersion(snap.Version),
		pkgkafka.WithMetadata("op", snap.Op),
	)
	if err != nil {
		n.logger.Error("failed to build cart.updated event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := n.publisher.Publish(ctx, TopicCartUpdated, ev); err != nil {
		n.logger.Warn("failed to publish cart.updated event",
			slog.String("session_id", sessionID),
			slog.Uint64("version", snap.Version),
			slog.String("error", err.Error()),
		)
	}
}
