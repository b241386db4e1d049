package analysis

import (
	"sort"

	"github.com/STOCD/OSCR/logline"
)

// OverviewTableRow is the flattened per-player summary spec §3 describes:
// the four per-player rows (outgoing/incoming damage, outgoing/incoming
// heal) plus combat-wide shares and a per-bucket damage series for
// rendering a player's DPS graph.
type OverviewTableRow struct {
	Name, Handle, ID string
	Build            string

	DamageOut DamageRow
	DamageIn  DamageRow
	HealOut   HealRow
	HealIn    HealRow

	// DamageShare is this player's fraction of the combat's total outgoing
	// damage; TakenDamageShare and HealShare mirror it for incoming damage
	// and outgoing healing. AttacksInShare is this player's fraction of all
	// attacks made against any player, misses included.
	DamageShare      float64
	TakenDamageShare float64
	AttacksInShare   float64
	HealShare        float64

	DPS            float64
	Debuff         float64
	CritChance     float64
	HealCritChance float64

	// DamagePerBucket and BucketTimestamps are parallel slices driving a
	// player's per-second (or per-graph-resolution) DPS graph.
	DamagePerBucket  []float64
	BucketTimestamps []float64
}

// BuildOverview flattens a Result's four trees into one row per player,
// folding in the graphResolution-bucketed damage series captured during the
// analysis pass (spec §4.6 step 7).
func BuildOverview(r *Result, graphSeries map[string][]float64, graphResolution float64) []OverviewTableRow {
	type playerAgg struct {
		dmgOut  DamageRow
		dmgIn   DamageRow
		healOut HealRow
		healIn  HealRow
	}
	players := map[string]*playerAgg{}
	ensure := func(id string) *playerAgg {
		p, ok := players[id]
		if !ok {
			p = &playerAgg{}
			players[id] = p
		}
		return p
	}

	var totalDamage, totalTakenDamage, totalAttacksIn, totalHeal float64

	for _, idx := range r.DamageOut.Children(actorRoot(r.DamageOut, true)) {
		row := r.DamageOut.Data(idx)
		ensure(row.ID).dmgOut = row
		totalDamage += row.TotalDamage
	}
	for _, idx := range r.DamageIn.Children(actorRoot(r.DamageIn, true)) {
		row := r.DamageIn.Data(idx)
		ensure(row.ID).dmgIn = row
		totalTakenDamage += row.TotalDamage
		totalAttacksIn += float64(row.TotalAttacks)
	}
	for _, idx := range r.HealOut.Children(actorRoot(r.HealOut, true)) {
		row := r.HealOut.Data(idx)
		ensure(row.ID).healOut = row
		totalHeal += row.TotalHeal
	}
	for _, idx := range r.HealIn.Children(actorRoot(r.HealIn, true)) {
		row := r.HealIn.Data(idx)
		ensure(row.ID).healIn = row
	}

	rows := make([]OverviewTableRow, 0, len(players))
	for id, p := range players {
		handle := logline.Handle(id)
		out := OverviewTableRow{
			Name:           p.dmgOut.Name,
			Handle:         handle,
			ID:             id,
			Build:          p.dmgOut.Build,
			DamageOut:      p.dmgOut,
			DamageIn:       p.dmgIn,
			HealOut:        p.healOut,
			HealIn:         p.healIn,
			DPS:            p.dmgOut.DPS,
			Debuff:         p.dmgOut.Debuff,
			CritChance:     p.dmgOut.CritChance,
			HealCritChance: p.healOut.CritChance,
		}
		if totalDamage > 0 {
			out.DamageShare = p.dmgOut.TotalDamage / totalDamage
		}
		if totalTakenDamage > 0 {
			out.TakenDamageShare = p.dmgIn.TotalDamage / totalTakenDamage
		}
		if totalAttacksIn > 0 {
			out.AttacksInShare = float64(p.dmgIn.TotalAttacks) / totalAttacksIn
		}
		if totalHeal > 0 {
			out.HealShare = p.healOut.TotalHeal / totalHeal
		}
		if series, ok := graphSeries[handle]; ok {
			out.DamagePerBucket = series
			out.BucketTimestamps = make([]float64, len(series))
			for i := range series {
				out.BucketTimestamps[i] = float64(i) * graphResolution
			}
		}
		rows = append(rows, out)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DamageOut.TotalDamage != rows[j].DamageOut.TotalDamage {
			return rows[i].DamageOut.TotalDamage > rows[j].DamageOut.TotalDamage
		}
		return rows[i].Handle < rows[j].Handle
	})
	return rows
}
