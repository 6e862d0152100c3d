package service

import "testing"

func TestNormalizeClassCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"X", "10"},
		{"10", "10"},
		{"Kelas X", "10"},
		{"kelas 10", "10"},
		{"XII TKJ 2", "12 tkj 2"},
		{"12 TKJ 2", "12 tkj 2"},
		{"  XI  RPL 1 ", "11 rpl 1"},
		{"VII", "7"},
		{"custom-class", "custom-class"},
	}

	for _, tc := range cases {
		if got := NormalizeClassCode(tc.in); got != tc.want {
			t.Errorf("NormalizeClassCode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSameClass(t *testing.T) {
	if !SameClass("X", "10") {
		t.Error("X and 10 should be the same class")
	}
	if !SameClass("Kelas XII TKJ 2", "12 tkj 2") {
		t.Error("Kelas XII TKJ 2 and 12 tkj 2 should be the same class")
	}
	if SameClass("10", "11") {
		t.Error("10 and 11 must not match")
	}
	if SameClass("X TKJ 1", "X TKJ 2") {
		t.Error("different parallel classes must not match")
	}
}
