package liveparser

import (
	"testing"
	"time"

	"github.com/STOCD/OSCR/logline"
)

func playerLine(owner, target string, eventName string, dtype logline.DamageType, flags string, mag, mag2 float64, ts time.Time) string {
	return logline.Format(logline.Line{
		Timestamp:  ts,
		OwnerName:  "Jane",
		OwnerID:    owner,
		SourceName: "",
		SourceID:   owner,
		TargetName: "Borg",
		TargetID:   target,
		EventName:  eventName,
		EventID:    "Ability",
		Type:       dtype,
		Flags:      flags,
		Magnitude:  mag,
		Magnitude2: mag2,
	})
}

func TestIngestAccumulatesDamageAndKills(t *testing.T) {
	p := New("unused", time.Minute, nil)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	owner := "P[1@1 Jane@jane]"
	npc := "C[2 Borg]"

	p.ingest(playerLine(owner, npc, "Cannon", logline.DamageTypeHitPoints, "", 100, 100, base))
	p.ingest(playerLine(owner, npc, "Cannon", logline.DamageTypeHitPoints, "Kill", 200, 200, base.Add(time.Second)))

	ps := p.players[logline.Handle(owner)]
	if ps == nil {
		t.Fatal("expected a player state to be created")
	}
	if ps.Damage != 300 {
		t.Errorf("Damage = %v, want 300", ps.Damage)
	}
	if ps.Kills != 1 {
		t.Errorf("Kills = %d, want 1", ps.Kills)
	}
	if !ps.HasCombat {
		t.Fatal("expected combat window to be tracked")
	}
	if ps.CombatEnd.Sub(ps.CombatStart) != time.Second {
		t.Errorf("combat window = %v, want 1s", ps.CombatEnd.Sub(ps.CombatStart))
	}
}

func TestIngestTracksHealsSeparatelyFromDamage(t *testing.T) {
	p := New("unused", time.Minute, nil)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	owner := "P[1@1 Jane@jane]"

	p.ingest(playerLine(owner, "*", "Hull Heal", logline.DamageTypeHitPoints, "", -50, -50, base))

	ps := p.players[logline.Handle(owner)]
	if ps.Heal != 50 {
		t.Errorf("Heal = %v, want 50", ps.Heal)
	}
	if ps.Damage != 0 {
		t.Errorf("Damage = %v, want 0 for a heal tick", ps.Damage)
	}
}

func TestEmitSnapshotComputesRatesAndResetsBuffers(t *testing.T) {
	p := New("unused", time.Minute, nil)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	owner := "P[1@1 Jane@jane]"
	npc := "C[2 Borg]"

	p.ingest(playerLine(owner, npc, "Cannon", logline.DamageTypeHitPoints, "", 100, 50, base))
	p.ingest(playerLine(owner, npc, "Cannon", logline.DamageTypeHitPoints, "", 100, 50, base.Add(2*time.Second)))

	var got map[string]Snapshot
	p.onSnapshot = func(s map[string]Snapshot) { got = s }
	p.emitSnapshot()

	handle := logline.Handle(owner)
	snap, ok := got[handle]
	if !ok {
		t.Fatalf("expected a snapshot for %q, got %v", handle, got)
	}
	if snap.DPS <= 0 {
		t.Errorf("DPS = %v, want > 0", snap.DPS)
	}
	if snap.Debuff <= 0 {
		t.Errorf("Debuff = %v, want > 0 since magnitude exceeds base magnitude2", snap.Debuff)
	}

	ps := p.players[handle]
	if ps.DamageBuffer != 0 || ps.BaseDamageBuffer != 0 {
		t.Errorf("expected per-second buffers cleared after emitSnapshot, got %+v", ps)
	}
}

func TestPendingResetClearsOnNextLine(t *testing.T) {
	p := New("unused", time.Minute, nil)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	owner := "P[1@1 Jane@jane]"
	npc := "C[2 Borg]"

	p.ingest(playerLine(owner, npc, "Cannon", logline.DamageTypeHitPoints, "", 100, 100, base))
	if len(p.players) == 0 {
		t.Fatal("setup: expected at least one player tracked")
	}

	// The inactivity gap elapses: state must survive until the next line.
	p.markReset()
	if len(p.players) == 0 {
		t.Fatal("expected accumulator to remain visible while the log is idle")
	}

	p.ingest(playerLine(owner, npc, "Cannon", logline.DamageTypeHitPoints, "", 40, 40, base.Add(time.Hour)))
	ps := p.players[logline.Handle(owner)]
	if ps == nil {
		t.Fatal("expected the new engagement to be tracked")
	}
	if ps.Damage != 40 {
		t.Errorf("Damage = %v, want 40 (fresh engagement after reset)", ps.Damage)
	}
}
