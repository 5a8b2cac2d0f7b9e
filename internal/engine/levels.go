package engine

import "sync"

// StrengthProfile controls how deep the selector searches and how often it
// deliberately plays a random move instead of the searched one.
type StrengthProfile struct {
	Level       int
	SearchDepth int
	BlunderRate float64
}

// DefaultLevel is substituted when a caller passes a level outside 1-10.
const DefaultLevel = 5

var profileMu sync.RWMutex

var strengthProfiles = map[int]StrengthProfile{
	1:  {Level: 1, SearchDepth: 1, BlunderRate: 0.60},
	2:  {Level: 2, SearchDepth: 1, BlunderRate: 0.40},
	3:  {Level: 3, SearchDepth: 1, BlunderRate: 0.20},
	4:  {Level: 4, SearchDepth: 2, BlunderRate: 0.20},
	5:  {Level: 5, SearchDepth: 2, BlunderRate: 0.10},
	6:  {Level: 6, SearchDepth: 3, BlunderRate: 0.10},
	7:  {Level: 7, SearchDepth: 3, BlunderRate: 0.05},
	8:  {Level: 8, SearchDepth: 3, BlunderRate: 0.00},
	9:  {Level: 9, SearchDepth: 4, BlunderRate: 0.05},
	10: {Level: 10, SearchDepth: 4, BlunderRate: 0.00},
}

// ProfileFor returns the profile for the given level, falling back to
// DefaultLevel when the level is not in the table.
func ProfileFor(level int) StrengthProfile {
	profileMu.RLock()
	defer profileMu.RUnlock()
	if p, ok := strengthProfiles[level]; ok {
		return p
	}
	return strengthProfiles[DefaultLevel]
}
