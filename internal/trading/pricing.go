// Package trading computes station buy/sell prices and orchestrates the
// trade mutation across a player's credits and cargo, a ship's manifest,
// and a station's inventory. There is no persisted price: every quote is
// recomputed from the station's base price, its current inventory versus
// declared capacity, the querying player's reputation with the station's
// owning faction, and the region's economic specialization.
package trading

import (
	"github.com/sectorwars2102/gameserver/internal/domain/faction"
	"github.com/sectorwars2102/gameserver/internal/domain/station"
)

// specializationBonus maps a region's economic specialization to the
// commodities it discounts on buy and premiums on sell. Commodities absent
// from a specialization's table trade at the neutral factor of 1.
var specializationBonus = map[string]map[string]float64{
	"agricultural": {"food": 0.8, "organics": 0.85},
	"industrial":   {"ore": 0.8, "machinery": 0.85},
	"technological": {"electronics": 0.8, "components": 0.85},
	"military":     {"ordnance": 0.8, "fuel": 0.9},
	"free-trade":   {},
}

// buyReputationFactor scales down with warmer reputation tiers: an allied
// trader pays less, a hostile one pays a premium.
var buyReputationFactor = map[faction.Tier]float64{
	faction.TierHostile:    1.3,
	faction.TierUnfriendly: 1.15,
	faction.TierNeutral:    1.0,
	faction.TierFriendly:   0.9,
	faction.TierAllied:     0.8,
	faction.TierExalted:    0.7,
}

// SpecializationFactor returns the commodity's buy-side specialization
// factor for a region's economic specialization. Defaults to 1 when the
// specialization has no opinion on the commodity.
func SpecializationFactor(regionSpecialization, commodity string) float64 {
	table, ok := specializationBonus[regionSpecialization]
	if !ok {
		return 1
	}
	if factor, ok := table[commodity]; ok {
		return factor
	}
	return 1
}

// ReputationFactor returns the buy-side reputation factor for a tier;
// the sell-side factor is its mirror image around 1 so that the same
// standing that earns a discount on purchases also earns a premium on
// sales.
func ReputationFactor(tier faction.Tier, buying bool) float64 {
	factor, ok := buyReputationFactor[tier]
	if !ok {
		factor = 1
	}
	if buying {
		return factor
	}
	return 2 - factor
}

// SupplyFactor is a smooth function of a commodity's current inventory
// against its declared capacity: scarce stock raises the buy price (up to
// 1.5x when empty) and a near-full warehouse depresses the sell payout
// (down to 0.5x when at capacity).
func SupplyFactor(m station.Market, buying bool) float64 {
	level := 0.0
	if m.Capacity > 0 {
		level = float64(m.Quantity) / float64(m.Capacity)
	}
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	if buying {
		return 1 + (1-level)*0.5
	}
	return 1 - level*0.5
}

// Quote computes the all-in per-unit price for a trade: base price times
// specialization, reputation, and supply factors, floored at 1 credit.
func Quote(m station.Market, regionSpecialization, commodity string, tier faction.Tier, buying bool) int64 {
	price := float64(m.BasePrice) *
		SpecializationFactor(regionSpecialization, commodity) *
		ReputationFactor(tier, buying) *
		SupplyFactor(m, buying)
	unit := int64(price)
	if unit < 1 {
		unit = 1
	}
	return unit
}
