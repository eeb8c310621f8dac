// Package simulation implements the deterministic generators and engines
// that turn a region's spec into its galaxy topology, and that advance
// colonies, markets, and combat each tick.
package simulation

import (
	"math/rand"

	"github.com/sectorwars2102/gameserver/internal/domain/sector"
)

// Constraints bounds a sub-range of sectors generated under one set of
// rules. The Nexus's ten districts each generate their own sector range
// under district-specific constraints; a normal region generates its
// whole sector count under one constraint set.
type Constraints struct {
	SecurityMin, SecurityMax     int
	DevelopmentMin, DevelopmentMax int
	TrafficMin, TrafficMax       int
	DistrictTag                  string
	TypeWeights                  map[sector.Type]int // relative weight, nil = uniform over all types
}

// DefaultConstraints spans the full [1,10] security range with no
// district tag and a uniform type distribution.
func DefaultConstraints() Constraints {
	return Constraints{
		SecurityMin: 1, SecurityMax: 10,
		DevelopmentMin: 0, DevelopmentMax: 10,
		TrafficMin: 0, TrafficMax: 10,
	}
}

var allSectorTypes = []sector.Type{
	sector.TypeNormal, sector.TypeNebula, sector.TypeAsteroid,
	sector.TypeIce, sector.TypeRadiation, sector.TypeVoid,
}

// Generator produces a region's sector/warp-link topology deterministically
// from a seed: the same (seed, regionID, count, constraints) always yields
// the same galaxy, so region archival/re-provisioning and tests can rely on
// reproducible output.
type Generator struct {
	idFunc func() string
}

// NewGenerator builds a generator that mints sector/link ids with idFunc
// (normally uuid.New().String, swapped for a deterministic sequence in
// tests).
func NewGenerator(idFunc func() string) *Generator {
	return &Generator{idFunc: idFunc}
}

// Range generates count contiguous sectors starting at startIndex under a
// single constraint set, used both for whole-region generation and for one
// Nexus district's sub-range.
func (g *Generator) Range(regionID string, startIndex, count int, c Constraints, seed int64) []*sector.Sector {
	rng := rand.New(rand.NewSource(seed))
	out := make([]*sector.Sector, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, &sector.Sector{
			ID:               g.idFunc(),
			RegionID:         regionID,
			Index:            startIndex + i,
			Type:             pickType(rng, c.TypeWeights),
			HazardLevel:      rng.Intn(11),
			RadiationLevel:   rng.Intn(11),
			SecurityLevel:    spread(rng, c.SecurityMin, c.SecurityMax),
			DevelopmentLevel: spread(rng, c.DevelopmentMin, c.DevelopmentMax),
			TrafficLevel:     spread(rng, c.TrafficMin, c.TrafficMax),
			DistrictTag:      c.DistrictTag,
			Version:          1,
		})
	}
	return out
}

// Links builds a connected warp graph over sectors: a ring (guaranteeing
// connectivity) plus a scattering of random chords, never exceeding
// sector.MaxWarpLinksPerSector outgoing links per sector.
func (g *Generator) Links(regionID string, sectors []*sector.Sector, seed int64) []*sector.WarpLink {
	rng := rand.New(rand.NewSource(seed + 1))
	degree := make(map[string]int, len(sectors))
	var links []*sector.WarpLink

	addLink := func(from, to *sector.Sector) {
		if degree[from.ID] >= sector.MaxWarpLinksPerSector {
			return
		}
		links = append(links, &sector.WarpLink{
			ID:            g.idFunc(),
			RegionID:      regionID,
			FromSectorID:  from.ID,
			ToSectorID:    to.ID,
			Bidirectional: true,
			TravelCost:    1 + rng.Intn(5),
		})
		degree[from.ID]++
		degree[to.ID]++
	}

	for i, s := range sectors {
		next := sectors[(i+1)%len(sectors)]
		addLink(s, next)
	}

	chordAttempts := len(sectors) / 2
	for i := 0; i < chordAttempts; i++ {
		a := sectors[rng.Intn(len(sectors))]
		b := sectors[rng.Intn(len(sectors))]
		if a.ID == b.ID {
			continue
		}
		addLink(a, b)
	}
	return links
}

func spread(rng *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + rng.Intn(max-min+1)
}

func pickType(rng *rand.Rand, weights map[sector.Type]int) sector.Type {
	if len(weights) == 0 {
		return allSectorTypes[rng.Intn(len(allSectorTypes))]
	}
	total := 0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return sector.TypeNormal
	}
	pick := rng.Intn(total)
	for _, t := range allSectorTypes {
		w, ok := weights[t]
		if !ok {
			continue
		}
		if pick < w {
			return t
		}
		pick -= w
	}
	return sector.TypeNormal
}
