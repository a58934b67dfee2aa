package auction

// bidTier maps a bid band to its raise increment: below Upto the active
// increment is Inc. The table is ascending and the last band is unbounded.
type bidTier struct {
	Upto int
	Inc  int
}

var bidTiers = []bidTier{
	{Upto: 400, Inc: 20},
	{Upto: 1000, Inc: 50},
	{Upto: 2000, Inc: 100},
}

const topTierIncrement = 200

// ActiveIncrement returns the raise step for the given current bid. It is a
// pure function of the bid amount; the same value drives the raise control
// and the cap-proximity warning thresholds.
func ActiveIncrement(currentBid int) int {
	for _, tier := range bidTiers {
		if currentBid < tier.Upto {
			return tier.Inc
		}
	}
	return topTierIncrement
}
