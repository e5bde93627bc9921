package service

// Rank thresholds based on total accumulated points. Ranks never demote.
const (
	PointsLegend   = 5000 // Family Legend
	PointsChampion = 2000
	PointsStar     = 750
	PointsHelper   = 200
	PointsSprout   = 0 // Newcomer
)

type rank struct {
	name      string
	threshold int
}

var ranks = []rank{
	{"Legend", PointsLegend},
	{"Champion", PointsChampion},
	{"Star", PointsStar},
	{"Helper", PointsHelper},
	{"Sprout", PointsSprout},
}

// RankFor returns the rank name, the next rank name ("Max Level" at the
// top) and the progress percentage toward it. Negative totals stay Sprout.
func RankFor(points int) (string, string, float64) {
	if points < 0 {
		points = 0
	}

	for i, r := range ranks {
		if points >= r.threshold {
			if i == 0 {
				return r.name, "Max Level", 100
			}
			next := ranks[i-1]
			return r.name, next.name, float64(points) / float64(next.threshold) * 100
		}
	}

	return "Sprout", "Helper", 0
}
