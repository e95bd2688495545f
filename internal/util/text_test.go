package util

import (
	"testing"

	"mastdash/internal"
)

func TestNormalizeLabel(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "already normal", input: "ALLOY 20", want: "ALLOY 20"},
		{name: "case and padding", input: "  alloy 20 ", want: "ALLOY 20"},
		{name: "inner runs", input: "ASTM  A479\tSS304L /\nSS316L", want: "ASTM A479 SS304L / SS316L"},
		{name: "no-break space", input: "Monel\u00a0400", want: "MONEL 400"},
		{name: "empty", input: "", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeLabel(tc.input)
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
			if again := NormalizeLabel(got); again != got {
				t.Fatalf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestTextEquals(t *testing.T) {
	if !TextEquals(internal.TextCell(" Valve Torque "), internal.TextCell("Valve Torque")) {
		t.Fatal("trimmed text should match")
	}
	if TextEquals(internal.TextCell("valve torque"), internal.TextCell("Valve Torque")) {
		t.Fatal("match must be case-sensitive")
	}
	if !TextEquals(internal.NumberCell(12), internal.TextCell("12")) {
		t.Fatal("number should compare by its string form")
	}
	if TextEquals(internal.Cell{}, internal.Cell{}) {
		t.Fatal("empty cells never match")
	}
	if LabelEquals(internal.Cell{}, "") {
		t.Fatal("empty cell must not match an empty label")
	}
}
