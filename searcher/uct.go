package searcher

import "math"

// uct scores a visited child: its prior times the mean value plus the
// exploration term. Unvisited children score +Inf.
func uct(probability, total float64, visits, parentVisits int) float64 {
	if visits <= 0 { // Prioritize unexplored nodes
		return math.Inf(1)
	}
	n := float64(visits)
	exploitation := total / n
	exploration := CExploration * math.Sqrt(math.Log(float64(parentVisits))/n)
	return probability * (exploitation + exploration)
}
