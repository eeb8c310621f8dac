package trading

import (
	"context"
	"time"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/internal/domain"
	"github.com/sectorwars2102/gameserver/internal/domain/faction"
)

// Publisher emits domain events produced by a completed trade.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// NoopPublisher discards every event; used in tests and wherever the event
// fabric isn't wired yet.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.Event) error { return nil }

// Service orchestrates a trade across a player's credits, a ship's cargo
// manifest, and a station's inventory. Every mutation is recomputed
// against the current inventory and reputation at call time; nothing is
// cached across calls.
type Service struct {
	stations  *database.StationRepository
	ships     *database.ShipRepository
	players   *database.PlayerRepository
	sectors   *database.SectorRepository
	regions   *database.RegionRepository
	factions  *database.FactionRepository
	publisher Publisher
}

func NewService(stations *database.StationRepository, ships *database.ShipRepository, players *database.PlayerRepository, sectors *database.SectorRepository, regions *database.RegionRepository, factions *database.FactionRepository, publisher Publisher) *Service {
	return &Service{stations: stations, ships: ships, players: players, sectors: sectors, regions: regions, factions: factions, publisher: publisher}
}

// Trade is the result of a completed buy or sell: the per-unit price
// actually charged, after every factor, and the total credits moved.
type Trade struct {
	UnitPrice int64
	Total     int64
}

// context loaded once per trade: the station's owning region (for
// specialization) and the player's reputation tier with the station's
// owning faction.
func (s *Service) loadPricingContext(ctx context.Context, stationSectorID, stationOwnerID, playerID string) (specialization string, tier faction.Tier, err error) {
	sec, err := s.sectors.Get(ctx, stationSectorID)
	if err != nil {
		return "", "", err
	}
	reg, err := s.regions.Get(ctx, sec.RegionID)
	if err != nil {
		return "", "", err
	}
	tier = faction.TierNeutral
	if stationOwnerID != "" {
		rep, err := s.factions.Get(ctx, playerID, stationOwnerID)
		if err == nil {
			tier = rep.Tier()
		} else if apperrors.As(err) == nil || apperrors.As(err).Code != apperrors.CodeResourceNotFound {
			return "", "", err
		}
	}
	return reg.EconomicSpecialization, tier, nil
}

// Buy moves quantity of commodity from a station's inventory into a
// ship's cargo manifest, debiting the player's credits at the price
// quoted from the station's current inventory. Cargo-capacity and
// credit-insufficiency failures leave every aggregate unchanged.
func (s *Service) Buy(ctx context.Context, playerID, shipID, stationID, commodity string, quantity int64) (*Trade, error) {
	st, err := s.stations.Get(ctx, stationID)
	if err != nil {
		return nil, err
	}
	m, ok := st.Quote(commodity)
	if !ok {
		return nil, apperrors.NotFound("market commodity")
	}
	specialization, tier, err := s.loadPricingContext(ctx, st.SectorID, st.OwnerID, playerID)
	if err != nil {
		return nil, err
	}

	pl, err := s.players.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	sh, err := s.ships.Get(ctx, shipID)
	if err != nil {
		return nil, err
	}

	unitPrice := Quote(m, specialization, commodity, tier, true)
	total := unitPrice * quantity
	if pl.Credits < total {
		return nil, apperrors.InsufficientCredits(total, pl.Credits)
	}

	now := time.Now().UTC()
	if err := sh.LoadCargo(commodity, quantity, now); err != nil {
		return nil, apperrors.ValidationError("quantity", err.Error())
	}
	if _, err := st.Buy(commodity, quantity, unitPrice, now); err != nil {
		return nil, apperrors.Conflict(err.Error())
	}
	pl.AdjustCredits(-total)

	if err := s.ships.Update(ctx, sh); err != nil {
		return nil, err
	}
	if err := s.stations.Update(ctx, st); err != nil {
		return nil, err
	}
	if err := s.players.Update(ctx, pl); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.NewEvent("TradeExecuted", map[string]any{
		"player_id": playerID, "station_id": stationID, "commodity": commodity,
		"quantity": quantity, "side": "buy", "unit_price": unitPrice,
	}, "player:"+playerID, "sector:"+st.SectorID))
	return &Trade{UnitPrice: unitPrice, Total: total}, nil
}

// Sell moves quantity of commodity from a ship's cargo manifest into a
// station's inventory, crediting the player's credits at the price quoted
// from the station's current inventory. Capacity and insufficient-cargo
// failures leave every aggregate unchanged.
func (s *Service) Sell(ctx context.Context, playerID, shipID, stationID, commodity string, quantity int64) (*Trade, error) {
	st, err := s.stations.Get(ctx, stationID)
	if err != nil {
		return nil, err
	}
	m, ok := st.Quote(commodity)
	if !ok {
		return nil, apperrors.NotFound("market commodity")
	}
	specialization, tier, err := s.loadPricingContext(ctx, st.SectorID, st.OwnerID, playerID)
	if err != nil {
		return nil, err
	}

	pl, err := s.players.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	sh, err := s.ships.Get(ctx, shipID)
	if err != nil {
		return nil, err
	}

	unitPrice := Quote(m, specialization, commodity, tier, false)

	now := time.Now().UTC()
	if err := sh.UnloadCargo(commodity, quantity, now); err != nil {
		return nil, apperrors.ValidationError("quantity", err.Error())
	}
	payout, err := st.Sell(commodity, quantity, unitPrice, now)
	if err != nil {
		return nil, apperrors.Conflict(err.Error())
	}
	pl.AdjustCredits(payout)

	if err := s.ships.Update(ctx, sh); err != nil {
		return nil, err
	}
	if err := s.stations.Update(ctx, st); err != nil {
		return nil, err
	}
	if err := s.players.Update(ctx, pl); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.NewEvent("TradeExecuted", map[string]any{
		"player_id": playerID, "station_id": stationID, "commodity": commodity,
		"quantity": quantity, "side": "sell", "unit_price": unitPrice,
	}, "player:"+playerID, "sector:"+st.SectorID))
	return &Trade{UnitPrice: unitPrice, Total: payout}, nil
}

func (s *Service) publish(ctx context.Context, e domain.Event) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, e)
}
