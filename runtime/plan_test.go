package runtime

import (
	"testing"

	"github.com/justapithecus/readsim/abundance"
	"github.com/justapithecus/readsim/types"
)

func testInputs() *Inputs {
	return &Inputs{
		Genomes: []*types.Reference{
			{ID: "gB", Seq: make([]byte, 1000)},
			{ID: "gA", Seq: make([]byte, 2000)},
			{ID: "gC", Seq: make([]byte, 500)},
		},
		Abundance: abundance.Table{"gA": 0.5, "gB": 0.5},
	}
}

func TestBuildPlan_Abundance(t *testing.T) {
	plan := BuildPlan(testInputs(), PlanConfig{TotalReads: 100, ReadLength: 100})

	if len(plan.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(plan.Entries))
	}
	// Genome file order, not id order.
	if plan.Entries[0].Genome != "gB" || plan.Entries[1].Genome != "gA" {
		t.Errorf("order = %s,%s, want gB,gA", plan.Entries[0].Genome, plan.Entries[1].Genome)
	}
	for _, e := range plan.Entries {
		if e.Pairs != 25 {
			t.Errorf("%s pairs = %d, want 25", e.Genome, e.Pairs)
		}
	}
	if plan.Entries[0].Coverage != 5.0 {
		t.Errorf("gB coverage = %g, want 5", plan.Entries[0].Coverage)
	}
	if plan.Entries[1].Coverage != 2.5 {
		t.Errorf("gA coverage = %g, want 2.5", plan.Entries[1].Coverage)
	}
	if plan.TotalPairs != 50 {
		t.Errorf("total pairs = %d, want 50", plan.TotalPairs)
	}
}

func TestBuildPlan_Coverage(t *testing.T) {
	in := testInputs()
	in.Abundance["gC"] = 0
	plan := BuildPlan(in, PlanConfig{Coverage: 10, ReadLength: 100})

	want := map[string]int{"gB": 50, "gA": 100, "gC": 0}
	if len(plan.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(plan.Entries))
	}
	for _, e := range plan.Entries {
		if e.Pairs != want[e.Genome] {
			t.Errorf("%s pairs = %d, want %d", e.Genome, e.Pairs, want[e.Genome])
		}
	}
	if plan.TotalPairs != 150 {
		t.Errorf("total pairs = %d, want 150", plan.TotalPairs)
	}
}
