package metrics

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/jstittsworth/dfs-live-tracker/internal/models"
)

const trainTopN = 5

// TrainCluster is a group of entries riding the same remaining lineup. A
// train requires at least two members; singleton signatures are never
// emitted.
type TrainCluster struct {
	ClusterKey string   `json:"cluster_key"`
	Signature  string   `json:"lineup_signature"`
	EntryCount int      `json:"entry_count"`
	BestRank   *int     `json:"best_rank"`
	BestPoints *float64 `json:"best_points"`
	AvgPMR     *float64 `json:"avg_pmr"`
	EntryKeys  []string `json:"entry_keys"`
}

// Trains carries the full ranked cluster set for downstream recomputation
// plus the pre-sliced publishing surface.
type Trains struct {
	RecommendedTopN int            `json:"recommended_top_n"`
	Clusters        []TrainCluster `json:"ranked_clusters"`
	TopClusters     []TrainCluster `json:"top_clusters"`
}

// ComputeTrains groups entries whose remaining-lineup signatures match.
// Only entries that have committed most of their salary are train candidates;
// an entry with more than salaryCap remaining is still drafting around.
// Returns nil when no entry carries a lineup at all.
func ComputeTrains(m *models.Model, salaryCap int) *Trains {
	hasLineups := false
	bySignature := make(map[string][]models.Entry)
	for _, e := range m.Entries {
		if len(e.Lineup) == 0 {
			continue
		}
		hasLineups = true
		if e.SalaryRemaining > salaryCap {
			continue
		}
		sig := lineupSignature(&e)
		if sig == "" {
			continue
		}
		bySignature[sig] = append(bySignature[sig], e)
	}
	if !hasLineups {
		return nil
	}

	clusters := make([]TrainCluster, 0, len(bySignature))
	for sig, members := range bySignature {
		if len(members) < 2 {
			continue
		}
		clusters = append(clusters, buildCluster(sig, members))
	}

	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].EntryCount != clusters[j].EntryCount {
			return clusters[i].EntryCount > clusters[j].EntryCount
		}
		ri, rj := rankOrInf(clusters[i].BestRank), rankOrInf(clusters[j].BestRank)
		if ri != rj {
			return ri < rj
		}
		return clusters[i].ClusterKey < clusters[j].ClusterKey
	})

	top := clusters
	if len(top) > trainTopN {
		top = top[:trainTopN]
	}
	return &Trains{
		RecommendedTopN: trainTopN,
		Clusters:        clusters,
		TopClusters:     top,
	}
}

// lineupSignature is the canonical cluster identity: the entry's remaining
// players sorted by name and joined with "|".
func lineupSignature(e *models.Entry) string {
	names := e.RemainingPlayers()
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}

// ClusterKeyFromSignature derives the short stable cluster id.
func ClusterKeyFromSignature(signature string) string {
	sum := sha1.Sum([]byte(signature))
	return hex.EncodeToString(sum[:])[:12]
}

func buildCluster(sig string, members []models.Entry) TrainCluster {
	cluster := TrainCluster{
		ClusterKey: ClusterKeyFromSignature(sig),
		Signature:  sig,
		EntryCount: len(members),
	}

	keys := make([]string, 0, len(members))
	var pmrSum float64
	pmrCount := 0
	for _, e := range members {
		keys = append(keys, e.EntryKey)
		if e.Rank != nil && (cluster.BestRank == nil || *e.Rank < *cluster.BestRank) {
			r := *e.Rank
			cluster.BestRank = &r
			// BestPoints always describes the best-rank member, even when
			// that member's points are unknown.
			cluster.BestPoints = nil
			if e.Points != nil {
				p := *e.Points
				cluster.BestPoints = &p
			}
		}
		if e.PMR != nil {
			pmrSum += *e.PMR
			pmrCount++
		}
	}
	sort.Strings(keys)
	cluster.EntryKeys = keys
	if pmrCount > 0 {
		avg := pmrSum / float64(pmrCount)
		cluster.AvgPMR = &avg
	}
	return cluster
}

func rankOrInf(rank *int) int {
	if rank == nil {
		return int(^uint(0) >> 1)
	}
	return *rank
}
