package karma

import "math"

// Rank is a named tier over a half-open karma interval [Min, Max). Color is
// display metadata only.
type Rank struct {
	Min   int64
	Max   int64
	Label string
	Color string
}

// Ordered, non-overlapping bands partitioning all karma totals. This is the
// medical-title scheme; anything below the first band's floor (negative
// totals included) resolves to the lowest rank.
var rankBands = []Rank{
	{Min: 0, Max: 50, Label: "Intern", Color: "gray"},
	{Min: 50, Max: 150, Label: "Resident", Color: "blue"},
	{Min: 150, Max: 300, Label: "Fellow", Color: "green"},
	{Min: 300, Max: 500, Label: "Attending", Color: "purple"},
	{Min: 500, Max: 1000, Label: "Senior Doctor", Color: "orange"},
	{Min: 1000, Max: math.MaxInt64, Label: "Chief of Medicine", Color: "red"},
}

// RankFor maps a karma total to its band. Total and deterministic: exactly
// one rank for every int64, with boundary values resolving to the higher
// band.
func RankFor(total int64) Rank {
	for i, band := range rankBands {
		// top band is unbounded above
		if i == len(rankBands)-1 && total >= band.Min {
			return band
		}
		if total >= band.Min && total < band.Max {
			return band
		}
	}
	// below the lowest floor
	return rankBands[0]
}

// Ranks returns the full band table, lowest first.
func Ranks() []Rank {
	out := make([]Rank, len(rankBands))
	copy(out, rankBands)
	return out
}
