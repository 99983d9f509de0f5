package stats

import "math"

// RarityLevels converts per-song play counts into normalized rarity
// scores. It is the single normalization routine shared by the global and
// scoped passes.
//
// Candidates are songs with count > 0; everything else gets no entry (the
// caller persists NULL, which is distinct from 0). Each candidate count is
// mapped through ln(count+1), which compresses the long tail of frequently
// played songs, then min-max normalized across the candidate population
// and scaled to 100 with ceil. When every candidate
// shares the same count (including a single candidate) there is no
// variance and all of them score 100.
//
// The candidate sitting exactly at the minimum ceilings to 0, so scores
// span [0,100]: 0 means "played, least common in scope".
func RarityLevels(counts map[string]int) map[string]int {
	logs := make(map[string]float64, len(counts))
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for id, count := range counts {
		if count <= 0 {
			continue
		}
		v := math.Log(float64(count) + 1)
		logs[id] = v
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	levels := make(map[string]int, len(logs))
	if len(logs) == 0 {
		return levels
	}
	if hi == lo {
		for id := range logs {
			levels[id] = 100
		}
		return levels
	}

	span := hi - lo
	for id, v := range logs {
		levels[id] = int(math.Ceil((v - lo) / span * 100))
	}
	return levels
}
