package loyalty

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// PointsPerEuro is how many points one whole euro of order total earns.
const PointsPerEuro = 1

type threshold struct {
	tier      Tier
	minPoints int64
}

// ascending by minPoints
var thresholds = []threshold{
	{TierBronze, 0},
	{TierSilver, 500},
	{TierGold, 1500},
	{TierPlatinum, 5000},
}

// Progress describes where a points balance sits on the tier ladder.
type Progress struct {
	Points       int64 `json:"points"`
	Tier         Tier  `json:"tier"`
	NextTier     Tier  `json:"next_tier,omitempty"`
	PointsToNext int64 `json:"points_to_next"`
}

// TierFor returns the highest tier whose threshold points reaches.
func TierFor(points int64) Tier {
	tier := TierBronze
	for _, t := range thresholds {
		if points >= t.minPoints {
			tier = t.tier
		}
	}
	return tier
}

func ProgressFor(points int64) Progress {
	p := Progress{Points: points, Tier: TierFor(points)}
	for _, t := range thresholds {
		if points < t.minPoints {
			p.NextTier = t.tier
			p.PointsToNext = t.minPoints - points
			break
		}
	}
	return p
}

// PointsForTotal converts an order total in cents to earned points.
// Partial euros earn nothing.
func PointsForTotal(totalMinorUnits int64) int64 {
	if totalMinorUnits <= 0 {
		return 0
	}
	return (totalMinorUnits / 100) * PointsPerEuro
}
