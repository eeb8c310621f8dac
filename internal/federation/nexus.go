package federation

import "github.com/sectorwars2102/gameserver/internal/simulation"

// District is one of the Central Nexus's ten fixed quarters: a contiguous
// sector-index range generated under its own security/development/traffic
// constraints rather than a separate generator.
type District struct {
	Tag         string
	SectorCount int
	Constraints simulation.Constraints
}

// NexusDistricts is the fixed seeding table for the Central Nexus region,
// realized at provision time as ten contiguous sector-index ranges.
var NexusDistricts = []District{
	{Tag: "commerce-central", SectorCount: 500, Constraints: secCon(7, 9, 8, 10, 8, 10)},
	{Tag: "diplomatic-quarter", SectorCount: 300, Constraints: secCon(8, 10, 7, 9, 4, 7)},
	{Tag: "industrial-zone", SectorCount: 600, Constraints: secCon(4, 7, 6, 9, 6, 9)},
	{Tag: "residential-district", SectorCount: 800, Constraints: secCon(5, 8, 5, 8, 3, 6)},
	{Tag: "transit-hub", SectorCount: 400, Constraints: secCon(6, 8, 7, 10, 8, 10)},
	{Tag: "high-security-zone", SectorCount: 200, Constraints: secCon(9, 10, 8, 10, 1, 3)},
	{Tag: "cultural-center", SectorCount: 350, Constraints: secCon(6, 8, 6, 9, 5, 8)},
	{Tag: "research-campus", SectorCount: 450, Constraints: secCon(7, 9, 8, 10, 3, 6)},
	{Tag: "free-trade-zone", SectorCount: 600, Constraints: secCon(3, 6, 5, 8, 7, 10)},
	{Tag: "gateway-plaza", SectorCount: 800, Constraints: secCon(6, 8, 6, 8, 8, 10)},
}

func secCon(secMin, secMax, devMin, devMax, trafMin, trafMax int) simulation.Constraints {
	return simulation.Constraints{
		SecurityMin: secMin, SecurityMax: secMax,
		DevelopmentMin: devMin, DevelopmentMax: devMax,
		TrafficMin: trafMin, TrafficMax: trafMax,
	}
}

// NexusSectorCount is the total sector count every district range sums to,
// which the Nexus region's Spec.SectorCount must match.
func NexusSectorCount() int {
	total := 0
	for _, d := range NexusDistricts {
		total += d.SectorCount
	}
	return total
}
