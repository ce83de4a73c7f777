package theme

import "testing"

func TestToggleCycles(t *testing.T) {
	s := New(Light, false)

	want := []Mode{Dark, Auto, Light, Dark}
	for i, w := range want {
		if got := s.Toggle(); got != w {
			t.Fatalf("toggle #%d: expected %s, got %s", i+1, w, got)
		}
	}
}

func TestIsDark(t *testing.T) {
	tests := []struct {
		mode     Mode
		hostDark bool
		want     bool
	}{
		{Light, false, false},
		{Light, true, false},
		{Dark, false, true},
		{Dark, true, true},
		{Auto, false, false},
		{Auto, true, true},
	}
	for _, tc := range tests {
		s := New(tc.mode, tc.hostDark)
		if got := s.IsDark(); got != tc.want {
			t.Fatalf("mode=%s hostDark=%v: expected %v, got %v", tc.mode, tc.hostDark, tc.want, got)
		}
	}
}

func TestAutoFollowsHostSignal(t *testing.T) {
	s := New("", false)
	if s.Mode() != Auto {
		t.Fatalf("expected default mode auto, got %s", s.Mode())
	}
	if s.Palette().Background != LightPalette.Background {
		t.Fatalf("expected light palette with light host")
	}

	s.SetHostDark(true)
	if s.Palette().Background != DarkPalette.Background {
		t.Fatalf("expected dark palette after host switched to dark")
	}

	s.SetMode(Light)
	if s.IsDark() {
		t.Fatalf("explicit light must ignore the host signal")
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": Auto, "LIGHT": Light, " dark ": Dark, "Auto": Auto} {
		got, err := ParseMode(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %s, got %s", in, want, got)
		}
	}
	if _, err := ParseMode("sepia"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestPaletteTokens(t *testing.T) {
	if LightPalette.Primary != DarkPalette.Primary {
		t.Fatalf("brand color should not change with appearance")
	}
	if DarkPalette.Text != "#F1F5F9" || LightPalette.Text != "#1F2937" {
		t.Fatalf("unexpected text tokens: light=%s dark=%s", LightPalette.Text, DarkPalette.Text)
	}
	if LightPalette.Spacing.MD != 16 || DarkPalette.Radius.XL != 24 {
		t.Fatalf("unexpected scales: %+v %+v", LightPalette.Spacing, DarkPalette.Radius)
	}
	if LightPalette.Spacing.Cells(LightPalette.Spacing.LG) != 3 {
		t.Fatalf("expected lg spacing to be 3 cells")
	}
}
