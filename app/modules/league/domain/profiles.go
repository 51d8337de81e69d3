package leaguedomain

import (
	"math/rand"
)

// BehaviorProfile is the archetype persisted on a synthetic competitor. It
// controls the daily point range and the chance of sitting a day out, so a
// bot behaves consistently across the whole week.
type BehaviorProfile string

const (
	ProfileGrinder  BehaviorProfile = "grinder"
	ProfileCasual   BehaviorProfile = "casual"
	ProfileSprinter BehaviorProfile = "sprinter"
	ProfileLurker   BehaviorProfile = "lurker"
)

// profileSpec defines the behavior of one archetype.
type profileSpec struct {
	dailyMin   int
	dailyMax   int
	skipChance float64
	weight     float64
}

var profileSpecs = map[BehaviorProfile]profileSpec{
	ProfileGrinder:  {dailyMin: 8, dailyMax: 25, skipChance: 0.10, weight: 0.20},
	ProfileCasual:   {dailyMin: 2, dailyMax: 10, skipChance: 0.35, weight: 0.30},
	ProfileSprinter: {dailyMin: 0, dailyMax: 18, skipChance: 0.25, weight: 0.35},
	ProfileLurker:   {dailyMin: 0, dailyMax: 5, skipChance: 0.60, weight: 0.15},
}

// profileOrder fixes the cumulative-weight walk so PickProfile is
// deterministic for a seeded source.
var profileOrder = []BehaviorProfile{ProfileGrinder, ProfileCasual, ProfileSprinter, ProfileLurker}

// IsValid reports whether p names a known archetype.
func (p BehaviorProfile) IsValid() bool {
	_, ok := profileSpecs[p]
	return ok
}

// normalize maps unknown or legacy profile values to the casual archetype.
func (p BehaviorProfile) normalize() BehaviorProfile {
	if p.IsValid() {
		return p
	}
	return ProfileCasual
}

// PickProfile draws one archetype using the fixed selection weights.
func PickProfile(r *rand.Rand) BehaviorProfile {
	roll := r.Float64()
	cumulative := 0.0
	for _, p := range profileOrder {
		cumulative += profileSpecs[p].weight
		if roll < cumulative {
			return p
		}
	}
	return profileOrder[len(profileOrder)-1]
}

// InitialPoints samples a starting point total from the profile's daily
// range.
func (p BehaviorProfile) InitialPoints(r *rand.Rand) int {
	spec := profileSpecs[p.normalize()]
	return spec.dailyMin + r.Intn(spec.dailyMax-spec.dailyMin+1)
}

// DailyDelta samples one day of activity. It returns zero and false when the
// bot skips the day; otherwise it returns a delta uniformly drawn from the
// profile's range (zero is a legal draw) and true.
func (p BehaviorProfile) DailyDelta(r *rand.Rand) (int, bool) {
	spec := profileSpecs[p.normalize()]
	if r.Float64() < spec.skipChance {
		return 0, false
	}
	return spec.dailyMin + r.Intn(spec.dailyMax-spec.dailyMin+1), true
}
