package config

import "testing"

func TestDefaults(t *testing.T) {
	s := Default()
	if s.CombatsToParse != 10 || s.CombatMinLines != 20 || s.SecondsBetweenCombats != 100 {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if !s.IsExcludedEvent("Autodesc.Combatevent.Falling") {
		t.Fatal("expected fall damage to be excluded by default")
	}
}

func TestOptionsApplyInOrder(t *testing.T) {
	s, err := New(
		WithCombatsToParse(3),
		WithCombatMinLines(5),
		WithExcludedEventIDs("A", "B"),
	)
	if err != nil {
		t.Fatal(err)
	}
	if s.CombatsToParse != 3 || s.CombatMinLines != 5 {
		t.Fatalf("options not applied: %+v", s)
	}
	if s.IsExcludedEvent("Autodesc.Combatevent.Falling") {
		t.Fatal("expected excluded event list to be fully overridden")
	}
	if !s.IsExcludedEvent("A") || !s.IsExcludedEvent("B") {
		t.Fatal("expected override list to be used")
	}
}

func TestInactivityGapDuration(t *testing.T) {
	s := Default()
	if got := s.InactivityGap().Seconds(); got != 100 {
		t.Errorf("InactivityGap() = %v seconds, want 100", got)
	}
}
