// Package station models fixed installations within a sector that offer
// services to visiting ships.
package station

import (
	"fmt"
	"time"
)

// Service is a single bit in a station's capability bitset. Capability
// discovery always tests a bit, never a station "class" type-switch.
type Service uint32

const (
	ServiceTrading Service = 1 << iota
	ServiceRepair
	ServiceRefuel
	ServiceInsurance
	ServiceShipyard
	ServiceMilitary
	ServiceDiplomatic
	ServiceBank
)

// Station is a fixed installation within a sector.
type Station struct {
	ID         string
	SectorID   string
	Name       string
	OwnerID    string // player or faction id; empty if neutral/NPC
	Services   Service
	Inventory  map[string]Market // commodity -> market state
	Defenses   int
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Market is one commodity's tradeable state at a station. There is no
// persisted price: the trading engine recomputes it per query from
// BasePrice, Quantity, and Capacity, plus the querying player's
// reputation and the region's trade-bonus table.
type Market struct {
	BasePrice int64
	Capacity  int64
	Quantity  int64
}

// New constructs a station with the given service bitset.
func New(id, sectorID, name string, services Service, now time.Time) *Station {
	return &Station{
		ID:        id,
		SectorID:  sectorID,
		Name:      name,
		Services:  services,
		Inventory: map[string]Market{},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Offers reports whether the station exposes the given service.
func (s *Station) Offers(svc Service) bool {
	return s.Services&svc != 0
}

// Quote returns the current market state for a commodity, or false if the
// station does not trade it.
func (s *Station) Quote(commodity string) (Market, bool) {
	m, ok := s.Inventory[commodity]
	return m, ok
}

// Buy reduces station inventory by quantity and returns the total cost at
// the given per-unit price (computed by the caller's pricing query against
// the pre-trade inventory), failing if the station lacks trading
// capability or sufficient stock.
func (s *Station) Buy(commodity string, quantity, unitPrice int64, now time.Time) (cost int64, err error) {
	if !s.Offers(ServiceTrading) {
		return 0, fmt.Errorf("station %s does not offer trading", s.ID)
	}
	m, ok := s.Inventory[commodity]
	if !ok || m.Quantity < quantity {
		return 0, fmt.Errorf("station %s has insufficient %s stock", s.ID, commodity)
	}
	m.Quantity -= quantity
	s.Inventory[commodity] = m
	s.UpdatedAt = now
	return unitPrice * quantity, nil
}

// Sell increases station inventory by quantity and returns the total
// payout at the given per-unit price. A sale that would take inventory
// past the commodity's declared capacity is rejected.
func (s *Station) Sell(commodity string, quantity, unitPrice int64, now time.Time) (payout int64, err error) {
	if !s.Offers(ServiceTrading) {
		return 0, fmt.Errorf("station %s does not offer trading", s.ID)
	}
	m, ok := s.Inventory[commodity]
	if !ok {
		return 0, fmt.Errorf("station %s does not trade %s", s.ID, commodity)
	}
	if m.Quantity+quantity > m.Capacity {
		return 0, fmt.Errorf("station %s lacks capacity for %d more %s", s.ID, quantity, commodity)
	}
	m.Quantity += quantity
	s.Inventory[commodity] = m
	s.UpdatedAt = now
	return unitPrice * quantity, nil
}
