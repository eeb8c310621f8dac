// Package federation orchestrates everything that crosses a single
// region's boundary: region lifecycle, Central Nexus district seeding,
// the inter-region travel saga, and treaty/diplomacy enforcement.
package federation

import (
	"context"

	"github.com/sectorwars2102/gameserver/internal/domain"
)

// Publisher delivers a domain event to the event fabric. Durable events
// must be persisted by the implementation before Publish returns, per the
// event-fabric delivery contract; a Publisher that can't reach the fabric
// returns an apperrors.Unavailable so the caller can decide whether to
// fail the originating mutation.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// NoopPublisher discards every event, used where a caller (tests, or a
// component staged ahead of the event fabric) has no fabric to publish to.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.Event) error { return nil }
