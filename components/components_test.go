package components

import "testing"

func TestHealthDamageKillsOnce(t *testing.T) {
	h := Health{Value: 10, Max: 100, Alive: true}

	if killed := h.Damage(5); killed {
		t.Fatal("first bite should not kill")
	}
	if killed := h.Damage(5); !killed {
		t.Fatal("second bite should kill")
	}
	if h.Alive || h.Value != 0 {
		t.Errorf("after kill: alive=%v value=%v, want false and 0", h.Alive, h.Value)
	}
	if killed := h.Damage(5); killed {
		t.Error("dead sheep reported a second kill")
	}
	if h.Value != 0 {
		t.Errorf("dead sheep took damage, value=%v", h.Value)
	}
}

func TestHealthRatio(t *testing.T) {
	h := Health{Value: 25, Max: 100, Alive: true}
	if got := h.Ratio(); got != 0.25 {
		t.Errorf("Ratio() = %v, want 0.25", got)
	}
	zero := Health{}
	if got := zero.Ratio(); got != 0 {
		t.Errorf("Ratio() with zero max = %v, want 0", got)
	}
}
