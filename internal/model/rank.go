package model

// RankTier is the static display and boost metadata for a rank ordinal.
type RankTier struct {
	Index       uint8
	Name        string
	Icon        string
	Class       string
	BoostBasisP int64
}

// RankTiers is indexed by rank ordinal 0 (none) through 5.
var RankTiers = [...]RankTier{
	{Index: 0, Name: "No Rank", Icon: "fas fa-ban", Class: "", BoostBasisP: 0},
	{Index: 1, Name: "Bronze", Icon: "fas fa-medal", Class: "bronze", BoostBasisP: 10},
	{Index: 2, Name: "Silver", Icon: "fas fa-medal", Class: "silver", BoostBasisP: 20},
	{Index: 3, Name: "Gold", Icon: "fas fa-crown", Class: "gold", BoostBasisP: 30},
	{Index: 4, Name: "Platinum", Icon: "fas fa-gem", Class: "platinum", BoostBasisP: 50},
	{Index: 5, Name: "Diamond", Icon: "fas fa-star", Class: "diamond", BoostBasisP: 100},
}

// MaxRank is the highest rank ordinal.
const MaxRank = uint8(len(RankTiers) - 1)

// RankByIndex returns the tier for an ordinal; out of range ordinals map to "No Rank".
func RankByIndex(rank uint8) RankTier {
	if int(rank) >= len(RankTiers) {
		return RankTiers[0]
	}
	return RankTiers[rank]
}
