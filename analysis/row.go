// Package analysis implements the per-combat Analyzer: it walks a combat's
// log lines once and builds the four hierarchical statistic trees (damage
// dealt, damage taken, healing given, healing received), each shaped
// actor -> pet group -> pet -> ability -> target (or the mirrored incoming
// path target -> source actor -> source ability). The accumulation and
// roll-up arithmetic is grounded on the reference parser's tree builder.
package analysis

import "time"

// DamageRow is the payload of every node in a damage tree. Leaf nodes
// (ability-target pairs) accumulate directly from log lines; internal
// nodes (abilities, pets, pet groups, actors) are filled in by rolling up
// their children's already-finalized rows.
type DamageRow struct {
	Name, Handle, ID string

	CombatStart, CombatEnd time.Time
	CombatTime             float64 // seconds, shared down from the owning actor

	TotalDamage       float64
	TotalShieldDamage float64
	TotalHullDamage   float64
	TotalBaseDamage   float64
	MaxOneHit         float64

	TotalAttacks  int
	ShieldAttacks int
	HullAttacks   int
	Misses        int
	CritNum       int
	FlankNum      int
	Kills         int

	// Derived once the tree is finalized.
	DPS, ShieldDPS, HullDPS, BaseDPS float64
	Debuff, CritChance               float64
	Accuracy, FlankRate              float64

	// Build is set only on player actor rows (children of the Player header): a guessed playstyle
	// label (DEW/Kinetic/EPG/...) from the abilities the actor used during
	// the combat, per mapdetect.DetectBuild.
	Build string

	GraphData []float64
}

// HealRow is the payload of every node in a heal tree, mirroring DamageRow
// for healing-specific accumulators.
type HealRow struct {
	Name, Handle, ID string

	CombatStart, CombatEnd time.Time
	CombatTime             float64

	TotalHeal       float64
	ShieldHeal      float64
	HullHeal        float64
	MaxOneHeal      float64
	HealTicks       int
	ShieldHealTicks int
	HullHealTicks   int
	CriticalHeals   int

	HPS, ShieldHPS, HullHPS float64
	CritChance              float64

	GraphData []float64
}

func addGraphPoint(data []float64, idx int, magnitude float64) []float64 {
	if idx >= len(data) {
		grown := make([]float64, idx+1)
		copy(grown, data)
		data = grown
	}
	data[idx] += magnitude
	return data
}

// finalizeDamageLeaf derives DPS/debuff/crit-chance/accuracy/flank-rate from
// a leaf's own accumulated totals.
func finalizeDamageLeaf(r *DamageRow, combatTime float64) {
	r.CombatTime = combatTime
	if combatTime > 0 {
		r.DPS = r.TotalDamage / combatTime
		r.ShieldDPS = r.TotalShieldDamage / combatTime
		r.HullDPS = r.TotalHullDamage / combatTime
		r.BaseDPS = r.TotalBaseDamage / combatTime
	}
	if r.TotalBaseDamage > 0 {
		r.Debuff = (r.TotalDamage / r.TotalBaseDamage) - 1
	}
	successful := r.HullAttacks - r.Misses
	if successful > 0 {
		r.CritChance = float64(r.CritNum) / float64(successful)
		r.FlankRate = float64(r.FlankNum) / float64(successful)
	}
	if r.HullAttacks > 0 {
		r.Accuracy = float64(successful) / float64(r.HullAttacks)
	}
}

// rollupDamage sums children's absolute totals into parent, takes the max
// of MaxOneHit, and re-derives ratios from the rolled-up absolutes rather
// than averaging the children's own ratios.
func rollupDamage(parent *DamageRow, children []DamageRow) {
	if len(children) == 0 {
		return
	}
	parent.CombatTime = children[0].CombatTime
	for _, c := range children {
		parent.TotalDamage += c.TotalDamage
		parent.TotalShieldDamage += c.TotalShieldDamage
		parent.TotalHullDamage += c.TotalHullDamage
		parent.TotalBaseDamage += c.TotalBaseDamage
		parent.TotalAttacks += c.TotalAttacks
		parent.ShieldAttacks += c.ShieldAttacks
		parent.HullAttacks += c.HullAttacks
		parent.Misses += c.Misses
		parent.CritNum += c.CritNum
		parent.FlankNum += c.FlankNum
		parent.Kills += c.Kills
		if c.MaxOneHit > parent.MaxOneHit {
			parent.MaxOneHit = c.MaxOneHit
		}
		parent.GraphData = sumGraphs(parent.GraphData, c.GraphData)
	}
	finalizeDamageLeaf(parent, parent.CombatTime)
}

func finalizeHealLeaf(r *HealRow, combatTime float64) {
	r.CombatTime = combatTime
	if combatTime > 0 {
		r.HPS = r.TotalHeal / combatTime
		r.ShieldHPS = r.ShieldHeal / combatTime
		r.HullHPS = r.HullHeal / combatTime
	}
	if r.HullHealTicks > 0 {
		r.CritChance = float64(r.CriticalHeals) / float64(r.HullHealTicks)
	}
}

func rollupHeal(parent *HealRow, children []HealRow) {
	if len(children) == 0 {
		return
	}
	parent.CombatTime = children[0].CombatTime
	for _, c := range children {
		parent.TotalHeal += c.TotalHeal
		parent.ShieldHeal += c.ShieldHeal
		parent.HullHeal += c.HullHeal
		parent.HealTicks += c.HealTicks
		parent.ShieldHealTicks += c.ShieldHealTicks
		parent.HullHealTicks += c.HullHealTicks
		parent.CriticalHeals += c.CriticalHeals
		if c.MaxOneHeal > parent.MaxOneHeal {
			parent.MaxOneHeal = c.MaxOneHeal
		}
		parent.GraphData = sumGraphs(parent.GraphData, c.GraphData)
	}
	finalizeHealLeaf(parent, parent.CombatTime)
}

func sumGraphs(a, b []float64) []float64 {
	if len(b) > len(a) {
		grown := make([]float64, len(b))
		copy(grown, a)
		a = grown
	}
	for i, v := range b {
		a[i] += v
	}
	return a
}
