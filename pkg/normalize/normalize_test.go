package normalize

import "testing"

func TestDate_Formats(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"iso", "2025-12-10", "2025-12-10"},
		{"italian slash", "10/12/2025", "2025-12-10"},
		{"italian dash", "10-12-2025", "2025-12-10"},
		{"iso slash", "2025/12/10", "2025-12-10"},
		{"padded", "  10/12/2025  ", "2025-12-10"},
		{"unparsed passthrough", "next tuesday", "next tuesday"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Date(tt.in); got != tt.want {
				t.Errorf("Date(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDate_Idempotent(t *testing.T) {
	inputs := []string{"10/12/2025", "2025-12-10", "10-12-2025", "garbage"}
	for _, in := range inputs {
		once := Date(in)
		if twice := Date(once); twice != once {
			t.Errorf("Date not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestDate_EquivalentForms(t *testing.T) {
	if Date("10/12/2025") != Date("2025-12-10") {
		t.Errorf("equivalent dates normalized differently: %q vs %q",
			Date("10/12/2025"), Date("2025-12-10"))
	}
	if Date("10/12/2025") != "2025-12-10" {
		t.Errorf("canonical form = %q, want 2025-12-10", Date("10/12/2025"))
	}
}

func TestSheetDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"day serial", "45636", "2024-12-10"},
		{"serial zero epoch", "0", "1899-12-30"},
		{"textual date", "10/12/2025", "2025-12-10"},
		{"iso untouched", "2025-12-10", "2025-12-10"},
		{"non numeric passthrough", "soon", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SheetDate(tt.in); got != tt.want {
				t.Errorf("SheetDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Rossi ", "rossi"},
		{"ROSSI", "rossi"},
		{"", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := Name(tt.in); got != tt.want {
			t.Errorf("Name(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
