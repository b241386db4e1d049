// Package mapdetect identifies the map and difficulty a combat took place
// on from the NPCs that appeared in it, in three escalating stages: a
// single-entity existence check, a death-count fingerprint, and (to choose
// between otherwise-identical difficulties) a median hull-damage
// fingerprint. Grounded on the reference detector's three-stage algorithm.
package mapdetect

import (
	"sort"
	"strings"

	"github.com/STOCD/OSCR/logline"
)

// CritterMeta accumulates, per NPC entity name, what the death-count and
// hull-damage detection stages need to know.
type CritterMeta struct {
	Count                int
	Deaths               int
	TotalHullDamageTaken []float64
}

// DetectLine performs a shallow, single-line map detection by checking
// whether the line's target entity alone identifies a map.
func DetectLine(targetID string) (mapName, difficulty string) {
	entity, ok := logline.EntityName(targetID)
	if !ok {
		return "Combat", ""
	}
	if entry, ok := existenceTable[entity]; ok {
		return entry.Map, entry.Difficulty
	}
	return "Combat", ""
}

// hiveSpaceMap is the map whose combats end at the Borg Queen kill line.
const hiveSpaceMap = "Hive Space"

// IsHiveSpace reports whether a detected map name is the Hive Space queue,
// which carries the Borg-Queen combat-termination rule.
func IsHiveSpace(mapName string) bool { return mapName == hiveSpaceMap }

// DetectDifficulty refines a map's difficulty using accumulated critter
// metadata, first by death counts then, to pick among still-tied
// difficulties, by median hull damage taken. It returns the previous
// difficulty unchanged if neither stage can refine it further.
func DetectDifficulty(mapName, difficulty string, critterMeta map[string]CritterMeta) string {
	if mapName == "" || mapName == "Combat" {
		return difficulty
	}

	deathEntries, ok := deathCountsByMap[mapName]
	if !ok {
		return difficulty
	}
	matched := ""
	for _, d := range deathEntries {
		if checkDifficultyDeaths(d.requirements, critterMeta) {
			matched = d.difficulty
		}
	}
	if matched == "" {
		return difficulty
	}
	difficulty = matched

	hullEntries, ok := hullCountsByMap[mapName]
	if !ok {
		return difficulty
	}
	hullMatched := ""
	for _, d := range hullEntries {
		if checkDifficultyHull(d.requirements, critterMeta) {
			hullMatched = d.difficulty
		}
	}
	if hullMatched == "" {
		return difficulty
	}
	return hullMatched
}

func checkDifficultyDeaths(reqs []deathRequirement, meta map[string]CritterMeta) bool {
	for _, req := range reqs {
		m, ok := meta[req.entity]
		if !ok {
			return false
		}
		if req.count > 0 {
			if m.Deaths != req.count {
				return false
			}
		} else if m.Deaths == 0 {
			return false
		}
	}
	return true
}

// checkDifficultyHull requires the median hull damage taken by each
// fingerprint entity to exceed the threshold reduced by a 20% variance
// allowance, matching the reference detector's lower-bound-only check.
func checkDifficultyHull(reqs []hullRequirement, meta map[string]CritterMeta) bool {
	const variance = 0.20
	for _, req := range reqs {
		m, ok := meta[req.entity]
		if !ok {
			return false
		}
		med := median(m.TotalHullDamageTaken)
		low := req.threshold * (1 - variance)
		if !(low < med) {
			return false
		}
	}
	return true
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// BuildCritterMeta aggregates, from a combat's chronological lines, the
// per-NPC-entity {count, deaths, hull_damage_taken[]} metadata DetectDifficulty
// needs (spec §4.4 phase 2a). Only lines targeting an NPC ("C[...]" id)
// contribute.
func BuildCritterMeta(lines []logline.Line) map[string]CritterMeta {
	accum := map[string]*CritterMeta{}
	for _, l := range lines {
		name, ok := logline.EntityName(l.TargetID)
		if !ok {
			continue
		}
		m, exists := accum[name]
		if !exists {
			m = &CritterMeta{}
			accum[name] = m
		}
		m.Count++
		if l.Type != logline.DamageTypeShield {
			mag := l.Magnitude
			if mag < 0 {
				mag = -mag
			}
			m.TotalHullDamageTaken = append(m.TotalHullDamageTaken, mag)
		}
		if strings.Contains(l.Flags, "Kill") {
			m.Deaths++
		}
	}
	out := make(map[string]CritterMeta, len(accum))
	for k, v := range accum {
		out[k] = *v
	}
	return out
}

// DetectBuild classifies a player's build from the abilities seen in their
// events, returning the label of the last matching ability in detection
// order (later entries in the table intentionally override earlier ones).
func DetectBuild(events []string) string {
	build := ""
	for _, entry := range buildDetectionAbilities {
		for _, event := range events {
			if strings.Contains(event, entry.ability) {
				build = entry.build
				break
			}
		}
	}
	return build
}
