package reports

import (
	"io"

	"github.com/pipewright/pipewright/pkg/engine"
	"github.com/pipewright/pipewright/pkg/graph"
)

// Generator produces a report over a layout snapshot and its verdicts.
type Generator interface {
	Generate(g *graph.Graph, verdicts map[string]engine.Verdict) (io.Reader, error)
}

// MaterialsLine is one row of the bill of materials: every segment of one
// nominal size rolled up.
type MaterialsLine struct {
	Size        graph.PipeSize `json:"size"`
	Segments    int            `json:"segments"`
	TotalLength float64        `json:"total_length"`
}

// OverloadLine describes one overloaded segment for the validation
// summary, worst first.
type OverloadLine struct {
	EdgeID   string  `json:"edge_id"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	Flow     int64   `json:"flow"`
	Capacity int64   `json:"capacity"`
	Ratio    float64 `json:"ratio"` // flow / capacity; +Inf when capacity is 0
}
