package localeflow

import "testing"

func TestNormalizeLocale(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sv", "sv"},
		{"sv-SE", "sv_SE"},
		{"SV_SE", "sv_SE"},
		{"pt_BR", "pt_BR"},
		{"EN", "en"},
	}
	for _, tt := range tests {
		if got := NormalizeLocale(tt.in); got != tt.want {
			t.Errorf("NormalizeLocale(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBaseLocale(t *testing.T) {
	if got := BaseLocale("pt_BR"); got != "pt" {
		t.Errorf("expected pt, got %s", got)
	}
	if got := BaseLocale("sv"); got != "sv" {
		t.Errorf("expected sv, got %s", got)
	}
}

func TestLocaleName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sv", "Swedish"},
		{"pt_BR", "Portuguese (Brazil)"},
		{"pt_XX", "Portuguese"}, // unknown region falls back to base
		{"xx", "xx"},            // unknown locale falls back to the code
	}
	for _, tt := range tests {
		if got := LocaleName(tt.in); got != tt.want {
			t.Errorf("LocaleName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultPriority(t *testing.T) {
	if got := DefaultPriority("sv"); got != PriorityHigh {
		t.Errorf("expected sv to be high priority, got %d", got)
	}
	if got := DefaultPriority("sv_SE"); got != PriorityHigh {
		t.Errorf("expected sv_SE to inherit base priority, got %d", got)
	}
	if got := DefaultPriority("ja"); got != PriorityNormal {
		t.Errorf("expected ja to be normal priority, got %d", got)
	}
}

func TestDirection(t *testing.T) {
	if Direction("ar") != "rtl" || !IsRTL("ar_SA") {
		t.Error("expected Arabic to be RTL")
	}
	if Direction("sv") != "ltr" || IsRTL("sv") {
		t.Error("expected Swedish to be LTR")
	}
}

func TestSameLanguage(t *testing.T) {
	if !SameLanguage("pt", "pt_BR") {
		t.Error("expected pt and pt_BR to match")
	}
	if SameLanguage("sv", "da") {
		t.Error("expected sv and da to differ")
	}
}
