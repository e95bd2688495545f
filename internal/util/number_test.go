package util

import (
	"testing"

	"mastdash/internal"
)

func TestParseCell(t *testing.T) {
	cases := []struct {
		name  string
		input string
		kind  internal.CellKind
		num   float64
	}{
		{name: "blank", input: "", kind: internal.CellEmpty},
		{name: "spaces stay text", input: "   ", kind: internal.CellText},
		{name: "integer", input: "2150", kind: internal.CellNumber, num: 2150},
		{name: "padded decimal", input: " 12.5 ", kind: internal.CellNumber, num: 12.5},
		{name: "leading dot", input: ".5", kind: internal.CellNumber, num: 0.5},
		{name: "negative exponent", input: "-1e3", kind: internal.CellNumber, num: -1000},
		{name: "grouped thousands", input: "1,234", kind: internal.CellText},
		{name: "label", input: "Trim 12", kind: internal.CellText},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseCell(tc.input)
			if got.Kind != tc.kind {
				t.Fatalf("kind=%v want %v", got.Kind, tc.kind)
			}
			if tc.kind == internal.CellNumber && got.Number != tc.num {
				t.Fatalf("got %v want %v", got.Number, tc.num)
			}
		})
	}
}

func TestCellNumber(t *testing.T) {
	if v := CellNumber(internal.NumberCell(8)); v == nil || *v != 8 {
		t.Fatalf("number cell: %v", v)
	}
	if v := CellNumber(internal.TextCell(" 95 ")); v == nil || *v != 95 {
		t.Fatalf("numeric text: %v", v)
	}
	if v := CellNumber(internal.TextCell("n/a")); v != nil {
		t.Fatalf("text should be absent, got %v", *v)
	}
	if v := CellNumber(internal.TextCell("Infinity")); v != nil {
		t.Fatalf("non-finite should be absent, got %v", *v)
	}
	if v := CellNumber(internal.Cell{}); v != nil {
		t.Fatalf("empty should be absent, got %v", *v)
	}
}

func TestRoundHalfUp(t *testing.T) {
	cases := map[float64]float64{2.5: 3, -2.5: -2, 150.4: 150, 11.6: 12}
	for in, want := range cases {
		if got := RoundHalfUp(in); got != want {
			t.Fatalf("RoundHalfUp(%v)=%v want %v", in, got, want)
		}
	}
}
