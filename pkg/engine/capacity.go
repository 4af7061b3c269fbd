package engine

import (
	"math"

	"github.com/pipewright/pipewright/pkg/graph"
)

// DefaultPressureDrop is the design pressure drop used when a project does
// not override it, in inches of water column.
const DefaultPressureDrop = 0.5

// sizeSpec holds the two empirical constants fitted per nominal diameter.
// The pair is calibrated so that flow (in kBTU/h) and drop-per-foot relate
// by drop/ft = coeff * flow^exp, matching the shape of standard
// longest-length sizing tables rather than first-principles physics.
type sizeSpec struct {
	coeff float64
	exp   float64
}

var sizingTable = map[graph.PipeSize]sizeSpec{
	graph.SizeHalf:          {coeff: 1.54e-5, exp: 1.82},
	graph.SizeThreeQuarter:  {coeff: 3.93e-6, exp: 1.82},
	graph.SizeOne:           {coeff: 1.27e-6, exp: 1.82},
	graph.SizeOneAndQuarter: {coeff: 3.39e-7, exp: 1.82},
	graph.SizeOneAndHalf:    {coeff: 1.65e-7, exp: 1.82},
	graph.SizeTwo:           {coeff: 5.02e-8, exp: 1.82},
}

// Capacity returns the maximum flow in BTU/h a segment of the given size
// and length can carry without exceeding the design pressure drop.
//
// The closed form inverts the fitted power law and rounds down to the
// nearest 1000 BTU/h. Rounding is always conservative: a segment is never
// credited with more capacity than the table would allow.
//
// A non-positive length yields 0: a degenerate segment has no meaningful
// drop-per-foot, so it is treated as unusable rather than as an error.
func Capacity(size graph.PipeSize, length float64, designPressureDrop float64) int64 {
	if length <= 0 {
		return 0
	}
	spec, ok := sizingTable[size]
	if !ok {
		return 0
	}

	dropPerFoot := designPressureDrop / length
	flowK := math.Pow(dropPerFoot/spec.coeff, 1/spec.exp)
	if flowK < 0 || math.IsNaN(flowK) || math.IsInf(flowK, 0) {
		return 0
	}
	return int64(math.Floor(flowK)) * 1000
}
