package advisory

import (
	"fmt"

	"github.com/sectorwars2102/gameserver/internal/domain/sector"
)

// heuristicMarketPrediction projects one step past a chronological price
// series: the overall average, nudged by the trend between the series'
// first and second halves. Deterministic, no model call involved.
func heuristicMarketPrediction(commodity string, prices []int64) Response {
	projected := movingAverageProjection(prices)
	return Response{
		Kind:    KindMarketPrediction,
		Summary: fmt.Sprintf("projected %s price: %d", commodity, projected),
		Data: map[string]string{
			"commodity":       commodity,
			"projected_price": fmt.Sprintf("%d", projected),
		},
		Source:   "heuristic",
		Degraded: true,
	}
}

func movingAverageProjection(prices []int64) int64 {
	if len(prices) == 0 {
		return 0
	}
	var sum int64
	for _, p := range prices {
		sum += p
	}
	avg := sum / int64(len(prices))
	if len(prices) < 2 {
		return avg
	}
	mid := len(prices) / 2
	var firstSum, secondSum int64
	for _, p := range prices[:mid] {
		firstSum += p
	}
	for _, p := range prices[mid:] {
		secondSum += p
	}
	firstAvg := firstSum / int64(mid)
	secondAvg := secondSum / int64(len(prices)-mid)
	return avg + (secondAvg - firstAvg)
}

// heuristicRouteOptimization falls back to the fewest-hop path through
// the region's warp graph, ignoring toll/hazard weighting a model might
// otherwise account for.
func heuristicRouteOptimization(graph *sector.Graph, from, to string) Response {
	path := graph.ShortestPath(from, to)
	resp := Response{
		Kind:     KindRouteOptimization,
		Source:   "heuristic",
		Degraded: true,
	}
	if path == nil {
		resp.Summary = fmt.Sprintf("no route from %s to %s", from, to)
		resp.Data = map[string]string{"from": from, "to": to, "hops": "0"}
		return resp
	}
	resp.Summary = fmt.Sprintf("shortest path %s -> %s: %d hop(s)", from, to, len(path)-1)
	resp.Data = map[string]string{
		"from": from,
		"to":   to,
		"hops": fmt.Sprintf("%d", len(path)-1),
		"path": fmt.Sprintf("%v", path),
	}
	return resp
}

// heuristicBehaviorProfile classifies a player's recent action mix by the
// single most frequent action, the cheapest signal available without a
// model call.
func heuristicBehaviorProfile(playerID string, actions []string) Response {
	counts := make(map[string]int, len(actions))
	for _, a := range actions {
		counts[a]++
	}
	var dominant string
	var dominantCount int
	for _, a := range actions {
		if counts[a] > dominantCount {
			dominant, dominantCount = a, counts[a]
		}
	}
	return Response{
		Kind:    KindBehaviorProfile,
		Summary: fmt.Sprintf("player %s dominant action: %s", playerID, dominant),
		Data: map[string]string{
			"player_id":      playerID,
			"dominant_action": dominant,
		},
		Source:   "heuristic",
		Degraded: true,
	}
}
