package analysis

import (
	"strings"
	"time"

	"github.com/STOCD/OSCR/combatsplit"
	"github.com/STOCD/OSCR/logline"
	"github.com/STOCD/OSCR/mapdetect"
	"github.com/STOCD/OSCR/oscrerr"
	"github.com/STOCD/OSCR/tree"
)

// Every tree has two fixed children under its root separating player actors
// from NPC actors.
const (
	playerHeaderKey = "Player"
	npcHeaderKey    = "NPC"
)

// Result holds the four trees produced by analyzing one combat.
type Result struct {
	DamageOut *tree.Model[DamageRow]
	DamageIn  *tree.Model[DamageRow]
	HealOut   *tree.Model[HealRow]
	HealIn    *tree.Model[HealRow]

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Overview is the flattened per-player summary table (spec §3's
	// OverviewTableRow), one row per player who appears as an actor in any
	// of the four trees.
	Overview []OverviewTableRow
}

// Options configures a single Analyze pass.
type Options struct {
	// GraphResolution is the bucket width, in seconds, of the per-player
	// overview graph series. The per-node GraphData buffers always bucket by
	// whole seconds regardless of this value. Zero means the default 0.2.
	GraphResolution float64
	// HealPredicate overrides the heal-vs-damage classification; nil applies
	// the authoritative rule (negative HitPoints magnitude, or a negative
	// Shield magnitude with non-negative base).
	HealPredicate func(logline.Line) bool
	// HiveSpace marks the combat as a Hive-space queue run, where the kill
	// of the Borg Queen Octahedron ends the combat and all later lines are
	// dropped.
	HiveSpace bool
}

// Flags reports the boolean flags carried by a log line's flag field.
type Flags struct {
	Critical bool
	Miss     bool
	Flank    bool
	Kill     bool
}

// GetFlags parses the comma/pipe-agnostic flag string into booleans,
// matching the reference parser's substring checks.
func GetFlags(flagStr string) Flags {
	return Flags{
		Critical: strings.Contains(flagStr, "Critical"),
		Miss:     strings.Contains(flagStr, "Miss"),
		Flank:    strings.Contains(flagStr, "Flank"),
		Kill:     strings.Contains(flagStr, "Kill"),
	}
}

// isHeal is the authoritative heal-vs-damage predicate: a negative
// HitPoints magnitude, or a negative Shield magnitude paired with a
// non-negative base (magnitude2), which the reference parser uses to
// distinguish shield healing from shield damage. Options.HealPredicate
// can override this per spec §9's Open Question decision.
func isHeal(l logline.Line) bool {
	if l.Type == logline.DamageTypeHitPoints && l.Magnitude < 0 {
		return true
	}
	if l.Type == logline.DamageTypeShield && l.Magnitude < 0 && l.Magnitude2 >= 0 {
		return true
	}
	return false
}

type actorInterval struct {
	start, end time.Time
}

func newDamageTree() *tree.Model[DamageRow] {
	m := tree.New[DamageRow]()
	m.GetOrInsert(m.Root(), playerHeaderKey, func() DamageRow { return DamageRow{Name: playerHeaderKey} })
	m.GetOrInsert(m.Root(), npcHeaderKey, func() DamageRow { return DamageRow{Name: npcHeaderKey} })
	return m
}

func newHealTree() *tree.Model[HealRow] {
	m := tree.New[HealRow]()
	m.GetOrInsert(m.Root(), playerHeaderKey, func() HealRow { return HealRow{Name: playerHeaderKey} })
	m.GetOrInsert(m.Root(), npcHeaderKey, func() HealRow { return HealRow{Name: npcHeaderKey} })
	return m
}

// actorRoot returns the Player or NPC header node the actors of a tree hang
// from.
func actorRoot[T any](m *tree.Model[T], player bool) int {
	key := npcHeaderKey
	if player {
		key = playerHeaderKey
	}
	idx, _ := m.GetOrInsert(m.Root(), key, nil)
	return idx
}

// Analyze builds the four statistic trees for a single combat. An error from
// the tree layer fails the whole combat, wrapped with the offending line
// text; individual lines are never silently skipped.
func Analyze(combat combatsplit.Combat, opts Options) (*Result, error) {
	dmgOut := newDamageTree()
	dmgIn := newDamageTree()
	healOut := newHealTree()
	healIn := newHealTree()

	if len(combat.Lines) == 0 {
		return &Result{DamageOut: dmgOut, DamageIn: dmgIn, HealOut: healOut, HealIn: healIn}, nil
	}
	graphResolution := opts.GraphResolution
	if graphResolution <= 0 {
		graphResolution = 0.2
	}
	healPredicate := opts.HealPredicate
	if healPredicate == nil {
		healPredicate = isHeal
	}

	combatStart := combat.Lines[0].Timestamp
	endTime := combat.EndTime
	durations := map[string]*actorInterval{}
	overviewSeries := map[string][]float64{}
	actorEvents := map[string][]string{}

	for _, line := range combat.Lines {
		playerAttacks := logline.IsPlayerID(line.OwnerID)
		flags := GetFlags(line.Flags)
		relativeSecond := int(line.Timestamp.Sub(combatStart).Seconds())
		if relativeSecond < 0 {
			relativeSecond = 0
		}

		if healPredicate(line) {
			targetIdx, err := getOutgoingHealRow(healOut, line)
			if err != nil {
				return nil, &oscrerr.AnalyzerFailure{Line: logline.Format(line), Err: err}
			}
			sourceIdx, err := getIncomingHealRow(healIn, line)
			if err != nil {
				return nil, &oscrerr.AnalyzerFailure{Line: logline.Format(line), Err: err}
			}
			magnitude := absFloat(line.Magnitude)
			isShield := line.Type == logline.DamageTypeShield

			applyHeal(healOut, targetIdx, magnitude, isShield, flags.Critical, relativeSecond)
			applyHeal(healIn, sourceIdx, magnitude, isShield, flags.Critical, relativeSecond)
			continue
		}

		targetIdx, err := getOutgoingDamageRow(dmgOut, line)
		if err != nil {
			return nil, &oscrerr.AnalyzerFailure{Line: logline.Format(line), Err: err}
		}
		sourceIdx, err := getIncomingDamageRow(dmgIn, line)
		if err != nil {
			return nil, &oscrerr.AnalyzerFailure{Line: logline.Format(line), Err: err}
		}

		targetRow := dmgOut.Data(targetIdx)
		if targetRow.Name != "*" && line.OwnerID != line.TargetID {
			trackDuration(durations, line.OwnerID, line.Timestamp)
			if !logline.IsPlayerID(line.SourceID) {
				trackDuration(durations, line.SourceID, line.Timestamp)
			}
		}

		magnitude := absFloat(line.Magnitude)
		magnitude2 := absFloat(line.Magnitude2)
		isShield := line.Type == logline.DamageTypeShield

		applyDamage(dmgOut, targetIdx, magnitude, magnitude2, isShield, flags, relativeSecond)
		applyDamage(dmgIn, sourceIdx, magnitude, magnitude2, isShield, flags, relativeSecond)

		if playerAttacks {
			bucket := int(line.Timestamp.Sub(combatStart).Seconds() / graphResolution)
			if bucket < 0 {
				bucket = 0
			}
			handle := logline.Handle(line.OwnerID)
			overviewSeries[handle] = addGraphPoint(overviewSeries[handle], bucket, magnitude)
			actorEvents[line.OwnerID] = append(actorEvents[line.OwnerID], line.EventName)
		}

		if opts.HiveSpace && flags.Kill && isBorgQueenKillLine(line) {
			endTime = line.Timestamp
			break
		}
	}

	combatDuration := endTime.Sub(combatStart)
	if combatDuration <= 0 {
		combatDuration = time.Second
	}
	combatSeconds := combatDuration.Seconds()

	durationByActor := map[string]float64{}
	for id, iv := range durations {
		durationByActor[id] = iv.end.Sub(iv.start).Seconds()
	}

	playerRoot := actorRoot(dmgOut, true)
	for _, actor := range dmgOut.Children(playerRoot) {
		row := dmgOut.Data(actor)
		row.Build = mapdetect.DetectBuild(actorEvents[row.ID])
		dmgOut.SetData(actor, row)
	}

	mergeSinglePetLines(dmgOut)

	completeDamageTree(dmgOut, durationByActor, combatSeconds)
	completeDamageTree(dmgIn, durationByActor, combatSeconds)
	completeHealTree(healOut, durationByActor, combatSeconds)
	completeHealTree(healIn, durationByActor, combatSeconds)

	result := &Result{
		DamageOut: dmgOut,
		DamageIn:  dmgIn,
		HealOut:   healOut,
		HealIn:    healIn,
		StartTime: combatStart,
		EndTime:   endTime,
		Duration:  combatDuration,
	}
	result.Overview = BuildOverview(result, overviewSeries, graphResolution)
	return result, nil
}

func isBorgQueenKillLine(l logline.Line) bool {
	const queen = "Borg Queen Octahedron"
	if l.TargetName == queen {
		return true
	}
	return l.TargetID == "*" && (l.OwnerName == queen || l.SourceName == queen)
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func trackDuration(m map[string]*actorInterval, id string, ts time.Time) {
	iv, ok := m[id]
	if !ok {
		m[id] = &actorInterval{start: ts, end: ts}
		return
	}
	iv.end = ts
}

// getOutgoingDamageRow walks/builds actor -> pet group -> pet -> ability ->
// target under the Player or NPC header and returns the leaf node index that
// line.Magnitude accumulates into.
func getOutgoingDamageRow(m *tree.Model[DamageRow], line logline.Line) (int, error) {
	root := actorRoot(m, logline.IsPlayerID(line.OwnerID))
	actor, _ := m.GetOrInsert(root, line.OwnerID, func() DamageRow {
		return DamageRow{Name: line.OwnerName, Handle: logline.Handle(line.OwnerID), ID: line.OwnerID, CombatStart: line.Timestamp}
	})
	touchDamageActor(m, actor, line.Timestamp)
	attacker := actor

	if line.SourceName != "" {
		// Pets are indexed model-wide: a pet already known under one group
		// is reused rather than re-parented, and no group is created for it
		// (a pet with two entity names means the logfile is bugged).
		petKey := "pet:" + line.OwnerID + "|" + line.SourceID
		if pet, ok := m.Lookup(petKey); ok {
			attacker = pet
		} else {
			groupKey := "pg:" + line.OwnerID + "|" + line.SourceName
			group, _, err := m.GetOrInsertIndexed(attacker, groupKey, func() DamageRow {
				return DamageRow{Name: line.SourceName}
			})
			if err != nil {
				return 0, err
			}
			pet, _, err := m.GetOrInsertIndexed(group, petKey, func() DamageRow {
				return DamageRow{Name: line.SourceName + logline.Handle(line.SourceID), ID: line.SourceID}
			})
			if err != nil {
				return 0, err
			}
			attacker = pet
		}
	}

	ability, _ := m.GetOrInsert(attacker, line.EventName, func() DamageRow {
		return DamageRow{Name: line.EventName}
	})
	target, _ := m.GetOrInsert(ability, line.TargetID, func() DamageRow {
		return DamageRow{Name: line.TargetName, Handle: logline.Handle(line.TargetID), ID: line.TargetID}
	})
	return target, nil
}

// getIncomingDamageRow walks/builds target -> source actor -> source
// ability and returns the leaf node index.
func getIncomingDamageRow(m *tree.Model[DamageRow], line logline.Line) (int, error) {
	root := actorRoot(m, logline.IsPlayerID(line.TargetID))
	target, _ := m.GetOrInsert(root, line.TargetID, func() DamageRow {
		return DamageRow{Name: line.TargetName, Handle: logline.Handle(line.TargetID), ID: line.TargetID, CombatStart: line.Timestamp}
	})
	touchDamageActor(m, target, line.Timestamp)

	sourceID, sourceName := line.SourceID, line.SourceName
	if sourceName == "" {
		sourceID, sourceName = line.OwnerID, line.OwnerName
	}
	source, _ := m.GetOrInsert(target, sourceID, func() DamageRow {
		return DamageRow{Name: sourceName, Handle: logline.Handle(sourceID), ID: sourceID}
	})

	sourceAbilityKey := sourceID + line.EventID
	ability, _ := m.GetOrInsert(source, sourceAbilityKey, func() DamageRow {
		return DamageRow{Name: line.EventName}
	})
	return ability, nil
}

func getOutgoingHealRow(m *tree.Model[HealRow], line logline.Line) (int, error) {
	root := actorRoot(m, logline.IsPlayerID(line.OwnerID))
	actor, _ := m.GetOrInsert(root, line.OwnerID, func() HealRow {
		return HealRow{Name: line.OwnerName, Handle: logline.Handle(line.OwnerID), ID: line.OwnerID, CombatStart: line.Timestamp}
	})
	touchHealActor(m, actor, line.Timestamp)
	attacker := actor
	if line.SourceName != "" {
		petKey := "pet:" + line.OwnerID + "|" + line.SourceID
		if pet, ok := m.Lookup(petKey); ok {
			attacker = pet
		} else {
			groupKey := "pg:" + line.OwnerID + "|" + line.SourceName
			group, _, err := m.GetOrInsertIndexed(attacker, groupKey, func() HealRow {
				return HealRow{Name: line.SourceName}
			})
			if err != nil {
				return 0, err
			}
			pet, _, err := m.GetOrInsertIndexed(group, petKey, func() HealRow {
				return HealRow{Name: line.SourceName + logline.Handle(line.SourceID), ID: line.SourceID}
			})
			if err != nil {
				return 0, err
			}
			attacker = pet
		}
	}
	ability, _ := m.GetOrInsert(attacker, line.EventName, func() HealRow {
		return HealRow{Name: line.EventName}
	})
	target, _ := m.GetOrInsert(ability, line.TargetID, func() HealRow {
		return HealRow{Name: line.TargetName, Handle: logline.Handle(line.TargetID), ID: line.TargetID}
	})
	return target, nil
}

func getIncomingHealRow(m *tree.Model[HealRow], line logline.Line) (int, error) {
	root := actorRoot(m, logline.IsPlayerID(line.TargetID))
	target, _ := m.GetOrInsert(root, line.TargetID, func() HealRow {
		return HealRow{Name: line.TargetName, Handle: logline.Handle(line.TargetID), ID: line.TargetID, CombatStart: line.Timestamp}
	})
	touchHealActor(m, target, line.Timestamp)
	sourceID, sourceName := line.SourceID, line.SourceName
	if sourceName == "" {
		sourceID, sourceName = line.OwnerID, line.OwnerName
	}
	source, _ := m.GetOrInsert(target, sourceID, func() HealRow {
		return HealRow{Name: sourceName, Handle: logline.Handle(sourceID), ID: sourceID}
	})
	ability, _ := m.GetOrInsert(source, sourceID+line.EventID, func() HealRow {
		return HealRow{Name: line.EventName}
	})
	return ability, nil
}

// touchDamageActor advances an actor row's combat_end to the current line,
// as every line an actor appears on extends their presence in the combat.
func touchDamageActor(m *tree.Model[DamageRow], actor int, ts time.Time) {
	row := m.Data(actor)
	row.CombatEnd = ts
	m.SetData(actor, row)
}

func touchHealActor(m *tree.Model[HealRow], actor int, ts time.Time) {
	row := m.Data(actor)
	row.CombatEnd = ts
	m.SetData(actor, row)
}

func applyDamage(m *tree.Model[DamageRow], idx int, magnitude, magnitude2 float64, isShield bool, flags Flags, relativeSecond int) {
	r := m.Data(idx)
	r.TotalDamage += magnitude
	r.TotalAttacks++
	if isShield {
		r.TotalShieldDamage += magnitude
		r.ShieldAttacks++
	} else {
		r.TotalHullDamage += magnitude
		r.HullAttacks++
		r.TotalBaseDamage += magnitude2
	}
	if magnitude > r.MaxOneHit {
		r.MaxOneHit = magnitude
	}
	if flags.Miss {
		r.Misses++
	}
	if flags.Flank {
		r.FlankNum++
	}
	if flags.Critical {
		r.CritNum++
	}
	if flags.Kill {
		r.Kills++
	}
	r.GraphData = addGraphPoint(r.GraphData, relativeSecond, magnitude)
	m.SetData(idx, r)
}

func applyHeal(m *tree.Model[HealRow], idx int, magnitude float64, isShield, critical bool, relativeSecond int) {
	r := m.Data(idx)
	r.TotalHeal += magnitude
	r.HealTicks++
	if critical {
		r.CriticalHeals++
	}
	if isShield {
		r.ShieldHeal += magnitude
		r.ShieldHealTicks++
	} else {
		r.HullHeal += magnitude
		r.HullHealTicks++
	}
	if magnitude > r.MaxOneHeal {
		r.MaxOneHeal = magnitude
	}
	r.GraphData = addGraphPoint(r.GraphData, relativeSecond, magnitude)
	m.SetData(idx, r)
}

func completeDamageTree(m *tree.Model[DamageRow], durationByActor map[string]float64, totalDuration float64) {
	for _, header := range m.Children(m.Root()) {
		for _, actor := range m.Children(header) {
			row := m.Data(actor)
			combatTime, ok := durationByActor[row.ID]
			if !ok || combatTime <= 0 {
				combatTime = totalDuration
			}
			row.CombatTime = combatTime
			m.SetData(actor, row)
			completeDamageSubtree(m, actor, combatTime)
		}
		headerRow := m.Data(header)
		childRows := make([]DamageRow, 0, len(m.Children(header)))
		for _, actor := range m.Children(header) {
			childRows = append(childRows, m.Data(actor))
		}
		rollupDamage(&headerRow, childRows)
		m.SetData(header, headerRow)
	}
}

func completeDamageSubtree(m *tree.Model[DamageRow], idx int, combatTime float64) {
	children := m.Children(idx)
	if len(children) == 0 {
		row := m.Data(idx)
		finalizeDamageLeaf(&row, combatTime)
		m.SetData(idx, row)
		return
	}
	for _, c := range children {
		completeDamageSubtree(m, c, combatTime)
	}
	childRows := make([]DamageRow, len(children))
	for i, c := range children {
		childRows[i] = m.Data(c)
	}
	row := m.Data(idx)
	rollupDamage(&row, childRows)
	m.SetData(idx, row)
}

func completeHealTree(m *tree.Model[HealRow], durationByActor map[string]float64, totalDuration float64) {
	for _, header := range m.Children(m.Root()) {
		for _, actor := range m.Children(header) {
			row := m.Data(actor)
			combatTime, ok := durationByActor[row.ID]
			if !ok || combatTime <= 0 {
				combatTime = totalDuration
			}
			row.CombatTime = combatTime
			m.SetData(actor, row)
			completeHealSubtree(m, actor, combatTime)
		}
		headerRow := m.Data(header)
		childRows := make([]HealRow, 0, len(m.Children(header)))
		for _, actor := range m.Children(header) {
			childRows = append(childRows, m.Data(actor))
		}
		rollupHeal(&headerRow, childRows)
		m.SetData(header, headerRow)
	}
}

func completeHealSubtree(m *tree.Model[HealRow], idx int, combatTime float64) {
	children := m.Children(idx)
	if len(children) == 0 {
		row := m.Data(idx)
		finalizeHealLeaf(&row, combatTime)
		m.SetData(idx, row)
		return
	}
	for _, c := range children {
		completeHealSubtree(m, c, combatTime)
	}
	childRows := make([]HealRow, len(children))
	for i, c := range children {
		childRows[i] = m.Data(c)
	}
	row := m.Data(idx)
	rollupHeal(&row, childRows)
	m.SetData(idx, row)
}
