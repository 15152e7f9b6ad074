package models

// SportConfig is the flat per-sport parameter table. The algorithms are
// sport-agnostic; everything sport-specific lives here and is looked up by
// sport key.
type SportConfig struct {
	Name                string
	Positions           []string
	MinEntryFeeCents    int64
	Keyword             string
	LineupSalary        int
	TrainSalaryCap      int
	TopRemainingPlayers int
}

const (
	defaultLineupSalary   = 50000
	defaultTrainSalaryCap = 40000
	defaultTopRemaining   = 10
)

var sportConfigs = map[string]SportConfig{
	"NFL": {
		Name:             "NFL",
		Positions:        []string{"QB", "RB", "RB", "WR", "WR", "WR", "TE", "FLEX", "DST"},
		MinEntryFeeCents: 2500,
	},
	"NFLShowdown": {
		Name:             "NFLShowdown",
		Positions:        []string{"CPT", "FLEX"},
		MinEntryFeeCents: 2500,
	},
	"NBA": {
		Name:             "NBA",
		Positions:        []string{"PG", "SG", "SF", "PF", "C", "G", "F", "UTIL"},
		MinEntryFeeCents: 2500,
	},
	"CFB": {
		Name:             "CFB",
		Positions:        []string{"QB", "RB", "RB", "WR", "WR", "WR", "FLEX", "S-FLEX"},
		MinEntryFeeCents: 500,
	},
	"GOLF": {
		Name:             "GOLF",
		Positions:        []string{"G"},
		MinEntryFeeCents: 1000,
	},
	"MLB": {
		Name:             "MLB",
		Positions:        []string{"P", "C", "1B", "2B", "3B", "SS", "OF"},
		MinEntryFeeCents: 2500,
	},
	"NHL": {
		Name:             "NHL",
		Positions:        []string{"C", "W", "D", "G", "UTIL"},
		MinEntryFeeCents: 2500,
	},
	"NAS": {
		Name:             "NAS",
		Positions:        []string{"D"},
		MinEntryFeeCents: 2500,
	},
	"TEN": {
		Name:             "TEN",
		Positions:        []string{"P"},
		MinEntryFeeCents: 2500,
	},
	"MMA": {
		Name:             "MMA",
		Positions:        []string{"F"},
		MinEntryFeeCents: 2500,
	},
}

// SportByName looks up a sport's parameter set. The bool is false for sports
// the tracker does not know about.
func SportByName(name string) (SportConfig, bool) {
	cfg, ok := sportConfigs[name]
	if !ok {
		return SportConfig{}, false
	}
	if cfg.LineupSalary == 0 {
		cfg.LineupSalary = defaultLineupSalary
	}
	if cfg.TrainSalaryCap == 0 {
		cfg.TrainSalaryCap = defaultTrainSalaryCap
	}
	if cfg.TopRemainingPlayers == 0 {
		cfg.TopRemainingPlayers = defaultTopRemaining
	}
	return cfg, true
}

// SupportedSports returns the known sport keys.
func SupportedSports() []string {
	names := make([]string, 0, len(sportConfigs))
	for name := range sportConfigs {
		names = append(names, name)
	}
	return names
}
