package service

import "strings"

// romanGrades maps roman grade-level notation to its arabic canonical form.
// Indonesian schools mix both freely ("X TKJ 2", "10 TKJ 2", "Kelas X").
var romanGrades = map[string]string{
	"vii":  "7",
	"viii": "8",
	"ix":   "9",
	"x":    "10",
	"xi":   "11",
	"xii":  "12",
}

// NormalizeClassCode reduces a class notation to a canonical form so that
// equivalent spellings compare equal: "X" ≡ "10" ≡ "kelas x", and
// "XII TKJ 2" ≡ "12 tkj 2". Unknown tokens pass through lowercased.
func NormalizeClassCode(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	fields := strings.Fields(s)

	if len(fields) > 0 && fields[0] == "kelas" {
		fields = fields[1:]
	}
	for i, f := range fields {
		if arabic, ok := romanGrades[f]; ok {
			fields[i] = arabic
		}
	}
	return strings.Join(fields, " ")
}

// SameClass reports whether two class notations refer to the same class.
func SameClass(a, b string) bool {
	return NormalizeClassCode(a) == NormalizeClassCode(b)
}
