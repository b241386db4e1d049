// Package liveparser implements the forward-streaming "tail -f" variant of
// the analyzer (spec §4.7): it polls a live combat log for new lines at
// 500ms, incrementally updates a per-player handle accumulator, and once a
// second computes and reports snapshot metrics (DPS, HPS, local debuff,
// local attacks-in share). Grounded on the reference's liveparser.py
// polling loop and per-second snapshot timer.
package liveparser

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/STOCD/OSCR/logline"
)

// PlayerState accumulates one player's live totals between snapshots.
// The three *Buffer fields are cleared by the snapshot timer every second
// (spec §4.7); Damage/Heal/Kills/Deaths persist for the whole engagement.
type PlayerState struct {
	Damage float64
	Heal   float64

	DamageBuffer     float64
	BaseDamageBuffer float64
	AttacksInBuffer  float64

	CombatStart time.Time
	CombatEnd   time.Time
	HasCombat   bool

	Kills  int
	Deaths int
}

// Snapshot is one player's metrics as reported by the 1Hz snapshot timer.
type Snapshot struct {
	DPS            float64
	HPS            float64
	Debuff         float64
	AttacksInShare float64
	Kills          int
	Deaths         int
}

// Parser tails a combat log file and reports per-player Snapshots once a
// second via the supplied callback.
type Parser struct {
	path          string
	inactivityGap time.Duration
	onSnapshot    func(map[string]Snapshot)

	mu      sync.Mutex
	players map[string]*PlayerState
	// resetPending is set once inactivityGap elapses with no new line; the
	// accumulator is cleared when the next line arrives, not before, so the
	// final snapshot of an engagement stays visible while the log is idle.
	resetPending bool

	active chan struct{}
	done   chan struct{}
}

// New creates a Parser for the log at path. onSnapshot is invoked from the
// parser's own goroutine once a second while running; it must not block.
func New(path string, inactivityGap time.Duration, onSnapshot func(map[string]Snapshot)) *Parser {
	return &Parser{
		path:          path,
		inactivityGap: inactivityGap,
		onSnapshot:    onSnapshot,
		players:       map[string]*PlayerState{},
	}
}

// Run opens the log, seeks to its current end, and polls for new lines
// every 500ms while re-arming a cooperative 1Hz snapshot task, until ctx is
// canceled. It blocks until shutdown completes.
func (p *Parser) Run(ctx context.Context) error {
	tail, err := openTail(p.path)
	if err != nil {
		return err
	}
	defer tail.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.active = make(chan struct{})
	p.done = make(chan struct{})
	defer close(p.done)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.snapshotLoop(ctx)
	}()

	pollTicker := time.NewTicker(500 * time.Millisecond)
	defer pollTicker.Stop()

	var inactiveSince time.Time
	haveInactiveStart := false

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil
		case <-pollTicker.C:
			lines, err := tail.ReadNewLines()
			if err != nil {
				wg.Wait()
				return err
			}
			if len(lines) == 0 {
				if !haveInactiveStart {
					inactiveSince = time.Now()
					haveInactiveStart = true
				} else if time.Since(inactiveSince) >= p.inactivityGap {
					p.markReset()
				}
				continue
			}
			haveInactiveStart = false
			for _, raw := range lines {
				p.ingest(raw)
			}
		}
	}
}

// snapshotLoop re-arms itself every second, computing and delivering
// metrics, matching spec §9's "cooperative task that re-arms after each
// run and is cancelled at shutdown".
func (p *Parser) snapshotLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.emitSnapshot()
		}
	}
}

func (p *Parser) markReset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetPending = true
}

func (p *Parser) ingest(raw string) {
	line, err := logline.Parse(raw)
	if err != nil {
		return
	}
	playerAttacks := logline.IsPlayerID(line.OwnerID)
	playerAttacked := logline.IsPlayerID(line.TargetID) && line.SourceName == ""
	if !playerAttacks && !playerAttacked {
		return
	}

	isShield := line.Type == logline.DamageTypeShield
	isHeal := (line.Type == logline.DamageTypeHitPoints && line.Magnitude < 0) ||
		(isShield && line.Magnitude < 0 && line.Magnitude2 >= 0)
	isKill := strings.Contains(line.Flags, "Kill")
	magnitude := absFloat(line.Magnitude)
	magnitude2 := absFloat(line.Magnitude2)

	attackerHandle := logline.Handle(line.OwnerID)
	targetHandle := logline.Handle(line.TargetID)
	if attackerHandle == "" && targetHandle == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.resetPending {
		p.players = map[string]*PlayerState{}
		p.resetPending = false
	}

	if playerAttacks {
		ps := p.ensure(attackerHandle)
		selfOrArea := line.TargetID == "*"
		if !isHeal && !selfOrArea {
			if !ps.HasCombat {
				ps.CombatStart = line.Timestamp
				ps.HasCombat = true
			}
			ps.CombatEnd = line.Timestamp
		}
		if isHeal {
			ps.Heal += magnitude
		} else {
			ps.Damage += magnitude
			ps.DamageBuffer += magnitude
			ps.BaseDamageBuffer += magnitude2
			if isKill {
				ps.Kills++
			}
		}
	}
	if playerAttacked {
		ps := p.ensure(targetHandle)
		ps.AttacksInBuffer++
		if isKill {
			ps.Deaths++
		}
	}
}

func (p *Parser) ensure(handle string) *PlayerState {
	ps, ok := p.players[handle]
	if !ok {
		ps = &PlayerState{}
		p.players[handle] = ps
	}
	return ps
}

func (p *Parser) emitSnapshot() {
	p.mu.Lock()
	totalAttacksIn := 0.0
	for _, ps := range p.players {
		totalAttacksIn += ps.AttacksInBuffer
	}

	out := make(map[string]Snapshot, len(p.players))
	for handle, ps := range p.players {
		var combatTime float64
		if ps.HasCombat {
			combatTime = ps.CombatEnd.Sub(ps.CombatStart).Seconds()
		}
		snap := Snapshot{Kills: ps.Kills, Deaths: ps.Deaths}
		if combatTime > 0 {
			snap.DPS = ps.Damage / combatTime
			snap.HPS = ps.Heal / combatTime
		}
		if ps.BaseDamageBuffer > 0 {
			snap.Debuff = ps.DamageBuffer/ps.BaseDamageBuffer - 1
		}
		if totalAttacksIn > 0 {
			snap.AttacksInShare = ps.AttacksInBuffer / totalAttacksIn
		}
		out[handle] = snap

		ps.DamageBuffer = 0
		ps.BaseDamageBuffer = 0
		ps.AttacksInBuffer = 0
	}
	p.mu.Unlock()

	if p.onSnapshot != nil {
		p.onSnapshot(out)
	}
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
