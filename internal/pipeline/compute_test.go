package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mastdash/internal"
)

func TestMinOfPresent(t *testing.T) {
	got := minOfPresent(f(10), nil, f(8))
	require.NotNil(t, got)
	assert.Equal(t, 8.0, *got)

	assert.Nil(t, minOfPresent(nil, nil, nil))

	got = minOfPresent(f(-1), f(3))
	require.NotNil(t, got)
	assert.Equal(t, -1.0, *got)
}

func TestSafeDivide(t *testing.T) {
	got := safeDivide(f(8), f(4))
	require.NotNil(t, got)
	assert.Equal(t, 2.0, *got)

	assert.Nil(t, safeDivide(f(8), f(0)))
	assert.Nil(t, safeDivide(f(8), f(-4)))
	assert.Nil(t, safeDivide(nil, f(4)))
	assert.Nil(t, safeDivide(f(8), nil))
}

func TestVerifyPolicies(t *testing.T) {
	cases := []struct {
		name   string
		policy VerifyPolicy
		row    internal.CapabilityRow
		valve  *float64
		want   bool
	}{
		{"operator governs", VerifyOperatorIsMin, internal.CapabilityRow{Operator: f(8), MinOfAll: f(8)}, nil, true},
		{"operator above min", VerifyOperatorIsMin, internal.CapabilityRow{Operator: f(9), MinOfAll: f(8)}, nil, false},
		{"operator absent", VerifyOperatorIsMin, internal.CapabilityRow{MinOfAll: f(8)}, nil, false},
		{"all absent", VerifyOperatorIsMin, internal.CapabilityRow{}, f(1), false},
		{"min covers valve", VerifyMinCoversValve, internal.CapabilityRow{Operator: f(9), MinOfAll: f(8)}, f(8), true},
		{"min below valve", VerifyMinCoversValve, internal.CapabilityRow{Operator: f(8), MinOfAll: f(8)}, f(9), false},
		{"no valve torque", VerifyMinCoversValve, internal.CapabilityRow{MinOfAll: f(8)}, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, verify(tc.policy, tc.row, tc.valve))
		})
	}
}

func TestParseVerifyPolicy(t *testing.T) {
	p, err := ParseVerifyPolicy("")
	require.NoError(t, err)
	assert.Equal(t, VerifyOperatorIsMin, p)

	p, err = ParseVerifyPolicy(" Valve_Torque ")
	require.NoError(t, err)
	assert.Equal(t, VerifyMinCoversValve, p)
	assert.Equal(t, "valve_torque", p.String())

	_, err = ParseVerifyPolicy("both")
	assert.Error(t, err)
}

func TestComputeRowsFollowsMaterialOrder(t *testing.T) {
	g := grid(
		row("", "Ball to Stem", "", "Circular", "Operator Side"),
		row("", "Monel 400", "alloy 20", "Monel 400", "MONEL 400"),
		row("Trim 3", 10, "x", "", 8),
	)
	cols := BlockColumns{
		BallToStem: MaterialColumns(g, internal.Block{Start: 1, End: 2}),
		Sealing:    MaterialColumns(g, internal.Block{Start: 3, End: 3}),
		Operator:   MaterialColumns(g, internal.Block{Start: 4, End: 4}),
	}
	rows := ComputeRows(g, 2, cols, Torques{Valve: f(4), Actuator: f(0)}, VerifyOperatorIsMin)
	require.Len(t, rows, len(internal.Materials))

	for i, r := range rows {
		assert.Equal(t, internal.Materials[i], r.Material)
	}

	var monel, alloy internal.CapabilityRow
	for _, r := range rows {
		switch r.Material {
		case "Monel 400":
			monel = r
		case "Alloy 20":
			alloy = r
		}
	}

	want := internal.CapabilityRow{
		Material:     "Monel 400",
		BallToStem:   f(10),
		Operator:     f(8),
		MinOfAll:     f(8),
		Verification: true,
		FOSValve:     f(2),
	}
	assert.Empty(t, diffRows([]internal.CapabilityRow{want}, []internal.CapabilityRow{monel}))

	assert.Nil(t, alloy.BallToStem, "text values are absent")
	assert.Nil(t, alloy.MinOfAll)
	assert.False(t, alloy.Verification)
	assert.Nil(t, alloy.FOSValve)
}
