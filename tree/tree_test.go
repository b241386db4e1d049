package tree

import (
	"errors"
	"testing"

	"github.com/STOCD/OSCR/oscrerr"
)

type stat struct {
	name string
	sum  float64
	max  float64
}

func TestGetOrInsertIdempotent(t *testing.T) {
	m := New[stat]()
	a1, created := m.GetOrInsert(m.Root(), "alice", func() stat { return stat{name: "alice"} })
	if !created {
		t.Fatal("expected first insert to create a node")
	}
	a2, created := m.GetOrInsert(m.Root(), "alice", func() stat { return stat{name: "should not be used"} })
	if created {
		t.Fatal("expected second insert of the same key to be a no-op")
	}
	if a1 != a2 {
		t.Fatalf("expected same index for repeated key, got %d and %d", a1, a2)
	}
	if len(m.Children(m.Root())) != 1 {
		t.Fatalf("expected exactly one child, got %d", len(m.Children(m.Root())))
	}
}

func TestGetOrInsertIndexedLookup(t *testing.T) {
	m := New[stat]()
	group, _ := m.GetOrInsert(m.Root(), "mines", func() stat { return stat{name: "mines"} })
	pet, created, err := m.GetOrInsertIndexed(group, "pet:42", func() stat { return stat{name: "mine 42"} })
	if err != nil || !created {
		t.Fatalf("GetOrInsertIndexed: created=%v err=%v", created, err)
	}
	got, ok := m.Lookup("pet:42")
	if !ok || got != pet {
		t.Fatalf("Lookup = %d, %v, want %d, true", got, ok, pet)
	}
	again, created, err := m.GetOrInsertIndexed(group, "pet:42", nil)
	if err != nil || created || again != pet {
		t.Fatalf("re-insert under same parent must be idempotent: %d, %v, %v", again, created, err)
	}
}

func TestGetOrInsertIndexedRejectsDifferentParent(t *testing.T) {
	m := New[stat]()
	g1, _ := m.GetOrInsert(m.Root(), "mines", func() stat { return stat{} })
	g2, _ := m.GetOrInsert(m.Root(), "drones", func() stat { return stat{} })
	if _, _, err := m.GetOrInsertIndexed(g1, "pet:42", func() stat { return stat{} }); err != nil {
		t.Fatal(err)
	}
	_, _, err := m.GetOrInsertIndexed(g2, "pet:42", func() stat { return stat{} })
	var dup *oscrerr.DuplicateIdForDifferentParent
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateIdForDifferentParent, got %v", err)
	}
	if dup.ID != "pet:42" {
		t.Errorf("error ID = %q, want pet:42", dup.ID)
	}
}

func TestRollupSumAndMax(t *testing.T) {
	m := New[stat]()
	player, _ := m.GetOrInsert(m.Root(), "player", func() stat { return stat{name: "player"} })
	ability1, _ := m.GetOrInsert(player, "beam", func() stat { return stat{name: "beam"} })
	ability2, _ := m.GetOrInsert(player, "torp", func() stat { return stat{name: "torp"} })
	m.SetData(ability1, stat{name: "beam", sum: 100, max: 40})
	m.SetData(ability2, stat{name: "torp", sum: 250, max: 250})

	m.Rollup(func(idx int, children []int) {
		if len(children) == 0 {
			return
		}
		d := m.Data(idx)
		for _, c := range children {
			cd := m.Data(c)
			d.sum += cd.sum
			if cd.max > d.max {
				d.max = cd.max
			}
		}
		m.SetData(idx, d)
	})

	got := m.Data(player)
	if got.sum != 350 {
		t.Errorf("sum = %v, want 350", got.sum)
	}
	if got.max != 250 {
		t.Errorf("max = %v, want 250", got.max)
	}
}

func TestWalkPreOrder(t *testing.T) {
	m := New[stat]()
	p, _ := m.GetOrInsert(m.Root(), "p", func() stat { return stat{} })
	m.GetOrInsert(p, "c1", func() stat { return stat{} })
	m.GetOrInsert(p, "c2", func() stat { return stat{} })

	var order []string
	m.Walk(func(idx int) {
		order = append(order, m.Key(idx))
	})
	want := []string{"", "p", "c1", "c2"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}
