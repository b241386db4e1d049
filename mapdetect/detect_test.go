package mapdetect

import (
	"testing"

	"github.com/STOCD/OSCR/logline"
)

func TestDetectLineExistence(t *testing.T) {
	m, d := DetectLine("C[2 Space_Borg_Dreadnought_Hive_Intro]")
	if m != "Hive Space" || d != "Any" {
		t.Errorf("DetectLine = %q, %q, want Hive Space, Any", m, d)
	}
}

func TestDetectLineUnknown(t *testing.T) {
	m, d := DetectLine("C[2 Some Random Thing]")
	if m != "Combat" || d != "" {
		t.Errorf("DetectLine = %q, %q, want Combat, \"\"", m, d)
	}
}

func TestDetectDifficultySingleDifficultyDeathMatch(t *testing.T) {
	meta := map[string]CritterMeta{
		"Space_Borg_Cruiser_Wolf359": {Deaths: 3},
	}
	got := DetectDifficulty("Battle of Wolf 359", "Any", meta)
	if got != "Elite" {
		t.Errorf("DetectDifficulty = %q, want Elite", got)
	}
}

func TestDetectDifficultyNoMatchKeepsPrevious(t *testing.T) {
	meta := map[string]CritterMeta{}
	got := DetectDifficulty("Battle of Wolf 359", "Any", meta)
	if got != "Any" {
		t.Errorf("DetectDifficulty = %q, want unchanged Any", got)
	}
}

func TestDetectDifficultyHullRefinesHiveSpace(t *testing.T) {
	meta := map[string]CritterMeta{
		"Mission_Space_Borg_Queen_Diamond":                 {Deaths: 1},
		"Mission_Space_Borg_Battleship_Queen_2_0f_2":       {Deaths: 1},
		"Mission_Space_Borg_Battleship_Queen_1_0f_2":       {Deaths: 1},
		"Space_Borg_Cruiser_Hive_Intro1":                   {TotalHullDamageTaken: []float64{2200000}},
		"Space_Borg_Cruiser_Hive_Intro2":                   {TotalHullDamageTaken: []float64{2200000}},
		"Space_Borg_Battleship_Hive_Intro":                 {TotalHullDamageTaken: []float64{2800000}},
		"Space_Borg_Dreadnought_Hive_Intro":                {TotalHullDamageTaken: []float64{8100000}},
	}
	got := DetectDifficulty("Hive Space", "Any", meta)
	if got != "Elite" {
		t.Errorf("DetectDifficulty = %q, want Elite", got)
	}
}

func TestBuildCritterMetaAggregatesAcrossLines(t *testing.T) {
	npc := "C[2 Space_Borg_Cruiser_Hive_Intro1]"
	lines := []logline.Line{
		{TargetID: npc, Type: logline.DamageTypeHitPoints, Magnitude: -1000, Flags: ""},
		{TargetID: npc, Type: logline.DamageTypeShield, Magnitude: -500, Flags: ""},
		{TargetID: npc, Type: logline.DamageTypeHitPoints, Magnitude: -2000, Flags: "Kill"},
		{TargetID: "P[1@1 Jane@jane]", Type: logline.DamageTypeHitPoints, Magnitude: -50},
	}
	meta := BuildCritterMeta(lines)
	m, ok := meta["Space_Borg_Cruiser_Hive_Intro1"]
	if !ok {
		t.Fatalf("expected metadata for the NPC entity, got %v", meta)
	}
	if m.Count != 3 {
		t.Errorf("Count = %d, want 3", m.Count)
	}
	if m.Deaths != 1 {
		t.Errorf("Deaths = %d, want 1", m.Deaths)
	}
	// Shield lines are excluded from hull damage, so only two samples.
	if len(m.TotalHullDamageTaken) != 2 {
		t.Errorf("TotalHullDamageTaken = %v, want 2 samples", m.TotalHullDamageTaken)
	}
	if _, ok := meta["Jane"]; ok {
		t.Errorf("player targets must not contribute critter metadata")
	}
}

func TestBuildCritterMetaEmpty(t *testing.T) {
	if got := BuildCritterMeta(nil); len(got) != 0 {
		t.Errorf("BuildCritterMeta(nil) = %v, want empty", got)
	}
}

func TestDetectBuildLastMatchWins(t *testing.T) {
	events := []string{"Rapid Fire II activated", "Rapid Fire III activated"}
	got := DetectBuild(events)
	if got != "Cannons: Rapid Fire" {
		t.Errorf("DetectBuild = %q, want Cannons: Rapid Fire", got)
	}
}
