package output

import "testing"

func TestStatusStyle(t *testing.T) {
	SetNoColor(false)

	// Each band should map to a distinct style; unknown falls back to muted.
	green := StatusStyle("GREEN")
	red := StatusStyle("RED")
	if green.Render("x") == red.Render("x") && !IsNoColor() {
		t.Error("expected GREEN and RED to render differently")
	}
	unknown := StatusStyle("PURPLE")
	if unknown.GetForeground() != StyleMuted.GetForeground() {
		t.Error("expected unknown status to use the muted style")
	}
}

func TestTrendGlyph(t *testing.T) {
	tests := []struct {
		indicator string
		want      string
	}{
		{"IMPROVED", "↑"},
		{"DEGRADED", "↓"},
		{"UNCHANGED", "→"},
		{"", "→"},
	}

	for _, tc := range tests {
		if got := TrendGlyph(tc.indicator); got != tc.want {
			t.Errorf("TrendGlyph(%q) = %q, want %q", tc.indicator, got, tc.want)
		}
	}
}

func TestImpactStyle(t *testing.T) {
	if ImpactStyle(-15).GetForeground() != StyleError.GetForeground() {
		t.Error("expected penalties to use the error style")
	}
	if ImpactStyle(5).GetForeground() != StyleSuccess.GetForeground() {
		t.Error("expected credits to use the success style")
	}
}
