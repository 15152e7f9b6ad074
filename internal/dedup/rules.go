package dedup

import (
	"regexp"
	"strconv"
)

// Scoring-detail tokens that represent bonus scoring events.
var (
	golfTokenRE = regexp.MustCompile(`(?:^|[^\w])(\d+)\s*(EAG\b|BOFR\b|BIR3\+)`)
	nbaDDblRE   = regexp.MustCompile(`\bDDbl\b`)
	nbaTDblRE   = regexp.MustCompile(`\bTDbl\b`)
)

// ParseBonusCounts extracts bonus event counts from a player's scoring detail
// string. GOLF counts are cumulative ("2 EAG"); NBA double/triple-doubles are
// binary flags. Unsupported sports yield no counts.
func ParseBonusCounts(sport, stats string) map[string]int {
	switch sport {
	case "GOLF":
		return parseGolfCounts(stats)
	case "NBA":
		return parseNBACounts(stats)
	default:
		return nil
	}
}

func parseGolfCounts(stats string) map[string]int {
	matches := golfTokenRE.FindAllStringSubmatch(stats, -1)
	if len(matches) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, m := range matches {
		count, err := strconv.Atoi(m[1])
		if err != nil || count <= 0 {
			continue
		}
		token := m[2]
		if count > counts[token] {
			counts[token] = count
		}
	}
	if len(counts) == 0 {
		return nil
	}
	return counts
}

func parseNBACounts(stats string) map[string]int {
	counts := make(map[string]int)
	if nbaDDblRE.MatchString(stats) {
		counts["DDbl"] = 1
	}
	if nbaTDblRE.MatchString(stats) {
		counts["TDbl"] = 1
	}
	if len(counts) == 0 {
		return nil
	}
	return counts
}
