package domain

// Tier represents a ranked skill bracket
type Tier string

const (
	TierUnranked    Tier = "UNRANKED"
	TierIron        Tier = "IRON"
	TierBronze      Tier = "BRONZE"
	TierSilver      Tier = "SILVER"
	TierGold        Tier = "GOLD"
	TierPlatinum    Tier = "PLATINUM"
	TierEmerald     Tier = "EMERALD"
	TierDiamond     Tier = "DIAMOND"
	TierMaster      Tier = "MASTER"
	TierGrandmaster Tier = "GRANDMASTER"
	TierChallenger  Tier = "CHALLENGER"
)

// AllTiers contains all valid tiers in ascending order, UNRANKED below all
var AllTiers = []Tier{
	TierUnranked,
	TierIron, TierBronze, TierSilver, TierGold,
	TierPlatinum, TierEmerald, TierDiamond,
	TierMaster, TierGrandmaster, TierChallenger,
}

var tierOrdinal = func() map[Tier]int {
	m := make(map[Tier]int, len(AllTiers))
	for i, t := range AllTiers {
		m[t] = i
	}
	return m
}()

// IsValid checks if a tier is valid
func (t Tier) IsValid() bool {
	_, ok := tierOrdinal[t]
	return ok
}

// String returns the string representation of the tier
func (t Tier) String() string {
	return string(t)
}

// Ordinal returns the position of the tier in the fixed ordering.
// Unknown tiers sort below UNRANKED.
func (t Tier) Ordinal() int {
	if ord, ok := tierOrdinal[t]; ok {
		return ord
	}
	return -1
}

// AtLeast reports whether t is equal to or above other in the fixed ordering
func (t Tier) AtLeast(other Tier) bool {
	return t.Ordinal() >= other.Ordinal()
}

// MaxTier returns the higher of two tiers
func MaxTier(a, b Tier) Tier {
	if b.Ordinal() > a.Ordinal() {
		return b
	}
	return a
}

// Queue identifies a ranked queue
type Queue string

const (
	QueueRankedSolo Queue = "RANKED_SOLO_5x5"
	QueueRankedFlex Queue = "RANKED_FLEX_SR"
	QueueRankedTFT  Queue = "RANKED_TFT"
)
