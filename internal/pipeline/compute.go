package pipeline

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"mastdash/internal"
	"mastdash/internal/util"
)

// VerifyPolicy decides what the Verification column asserts.
type VerifyPolicy int

const (
	// VerifyOperatorIsMin is true when the operator-side capacity is the limiting value.
	VerifyOperatorIsMin VerifyPolicy = iota
	// VerifyMinCoversValve is true when the limiting capacity still covers the valve torque.
	VerifyMinCoversValve
)

func ParseVerifyPolicy(s string) (VerifyPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "operator":
		return VerifyOperatorIsMin, nil
	case "valve_torque":
		return VerifyMinCoversValve, nil
	default:
		return 0, fmt.Errorf("unknown verify policy %q (want operator or valve_torque)", s)
	}
}

func (p VerifyPolicy) String() string {
	if p == VerifyMinCoversValve {
		return "valve_torque"
	}
	return "operator"
}

// Torques are the valve and actuator reference values; either may be absent.
type Torques struct {
	Valve    *float64 `json:"valveTorque"`
	Actuator *float64 `json:"actuatorTorque"`
}

// BlockColumns holds the material column map of each capability block.
type BlockColumns struct {
	BallToStem internal.MaterialColumnMap
	Sealing    internal.MaterialColumnMap
	Operator   internal.MaterialColumnMap
}

// ComputeRows builds one capability row per material, in material order, from the MAST
// row at trimRow.
func ComputeRows(grid internal.Grid, trimRow int, cols BlockColumns, torques Torques, policy VerifyPolicy) []internal.CapabilityRow {
	row := grid.Row(trimRow)
	out := make([]internal.CapabilityRow, 0, len(internal.Materials))
	for _, material := range internal.Materials {
		out = append(out, computeRow(material, row, cols, torques, policy))
	}
	return out
}

func computeRow(material string, row internal.Row, cols BlockColumns, torques Torques, policy VerifyPolicy) internal.CapabilityRow {
	key := NormalizeMaterial(material)
	r := internal.CapabilityRow{
		Material:   material,
		BallToStem: valueAt(row, cols.BallToStem, key),
		Sealing:    valueAt(row, cols.Sealing, key),
		Operator:   valueAt(row, cols.Operator, key),
	}
	r.MinOfAll = minOfPresent(r.BallToStem, r.Sealing, r.Operator)
	r.Verification = verify(policy, r, torques.Valve)
	r.FOSValve = safeDivide(r.MinOfAll, torques.Valve)
	r.FOSActuator = safeDivide(r.MinOfAll, torques.Actuator)
	return r
}

func valueAt(row internal.Row, cols internal.MaterialColumnMap, key string) *float64 {
	c, ok := cols[key]
	if !ok || c < 0 || c >= len(row) {
		return nil
	}
	return util.CellNumber(row[c])
}

func minOfPresent(values ...*float64) *float64 {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			present = append(present, *v)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return util.FloatPtr(floats.Min(present))
}

func safeDivide(num, den *float64) *float64 {
	if num == nil || den == nil || *den <= 0 {
		return nil
	}
	return util.FloatPtr(*num / *den)
}

func verify(policy VerifyPolicy, r internal.CapabilityRow, valve *float64) bool {
	if r.MinOfAll == nil {
		return false
	}
	switch policy {
	case VerifyMinCoversValve:
		return valve != nil && *r.MinOfAll >= *valve
	default:
		return r.Operator != nil && *r.Operator == *r.MinOfAll
	}
}
