package allocation

import (
	"strings"
	"testing"
	"time"
)

func date(s string) *time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestRank_FEFOOrdering(t *testing.T) {
	candidates := []CandidateBatch{
		{ID: "A", Quantity: 10, ExpiryDate: date("2025-03-01")},
		{ID: "B", Quantity: 10, ExpiryDate: date("2025-01-01")},
		{ID: "C", Quantity: 10, ExpiryDate: nil},
	}

	ranked := Rank(candidates, nil)
	if len(ranked) != 3 {
		t.Fatalf("Expected 3 ranked batches, got %d", len(ranked))
	}

	expected := []string{"B", "A", "C"}
	for i, want := range expected {
		if ranked[i].ID != want {
			t.Errorf("Position %d: expected batch %s, got %s", i, want, ranked[i].ID)
		}
	}
}

func TestRank_ReservedForTaskSortsFirst(t *testing.T) {
	candidates := []CandidateBatch{
		{ID: "EARLY", Quantity: 10, ExpiryDate: date("2025-01-01")},
		{ID: "HELD", Quantity: 10, ExpiryDate: date("2025-06-01")},
	}
	reserved := map[string]float64{"HELD": 5}

	ranked := Rank(candidates, reserved)
	if ranked[0].ID != "HELD" {
		t.Errorf("Expected already-reserved batch first, got %s", ranked[0].ID)
	}
}

func TestRank_ZeroEffectiveExcludedUnlessReserved(t *testing.T) {
	candidates := []CandidateBatch{
		{ID: "EXHAUSTED", Quantity: 10, ReservedByOthers: 15},
		{ID: "OPEN", Quantity: 10},
	}

	ranked := Rank(candidates, nil)
	if len(ranked) != 1 || ranked[0].ID != "OPEN" {
		t.Fatalf("Expected only OPEN to survive ranking, got %v", ranked)
	}

	// The same exhausted batch stays visible when this task already holds it.
	ranked = Rank(candidates, map[string]float64{"EXHAUSTED": 3})
	if len(ranked) != 2 {
		t.Fatalf("Expected exhausted reserved batch to remain visible, got %v", ranked)
	}
	if ranked[0].ID != "EXHAUSTED" {
		t.Errorf("Expected reserved batch first, got %s", ranked[0].ID)
	}
}

func TestEffectiveQuantity_Floor(t *testing.T) {
	c := CandidateBatch{ID: "B1", Quantity: 10, ReservedByOthers: 15}
	if got := c.EffectiveQuantity(); got != 0 {
		t.Errorf("Expected effective quantity 0, got %v", got)
	}
}

func TestValidateSelection(t *testing.T) {
	candidates := []CandidateBatch{
		{ID: "B1", Quantity: 10, ReservedByOthers: 4},
	}

	testCases := []struct {
		name      string
		selected  Selection
		expectErr string
	}{
		{"within range", Selection{"B1": 6}, ""},
		{"zero is allowed", Selection{"B1": 0}, ""},
		{"at effective boundary", Selection{"B1": 6}, ""},
		{"exceeds effective", Selection{"B1": 7}, "exceeds effective quantity"},
		{"negative", Selection{"B1": -1}, "cannot be negative"},
		{"unknown batch", Selection{"B9": 1}, "unknown batch"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSelection(tc.selected, candidates)
			if tc.expectErr == "" {
				if err != nil {
					t.Fatalf("Expected valid selection, got error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error for %s, got none", tc.name)
			}
			if !strings.Contains(err.Error(), tc.expectErr) {
				t.Errorf("Expected error containing %q, got %q", tc.expectErr, err.Error())
			}
		})
	}
}

func TestClampSelection(t *testing.T) {
	candidates := []CandidateBatch{
		{ID: "B1", Quantity: 10, ReservedByOthers: 4},
		{ID: "B2", Quantity: 5},
	}

	clamped := ClampSelection(Selection{"B1": 9, "B2": -2, "B9": 1}, candidates)
	if got := clamped["B1"]; got != 6 {
		t.Errorf("Expected B1 clamped to 6, got %v", got)
	}
	if got := clamped["B2"]; got != 0 {
		t.Errorf("Expected B2 clamped to 0, got %v", got)
	}
	if _, ok := clamped["B9"]; ok {
		t.Error("Expected unknown batch to be dropped")
	}
}

func TestPreviewSelection(t *testing.T) {
	p := PreviewSelection(Selection{"B1": 30, "B2": 15}, 50)
	if p.Complete {
		t.Error("Expected short selection to report incomplete")
	}
	if p.Shortfall != 5 {
		t.Errorf("Expected shortfall 5, got %v", p.Shortfall)
	}

	p = PreviewSelection(Selection{"B1": 30, "B2": 20}, 50)
	if !p.Complete {
		t.Error("Expected covering selection to report complete")
	}
	if p.Shortfall != 0 {
		t.Errorf("Expected no shortfall, got %v", p.Shortfall)
	}
}
