package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/pipewright/pipewright/pkg/engine"
	"github.com/pipewright/pipewright/pkg/graph"
)

// ValidationReport summarizes overloaded segments, worst offenders first.
type ValidationReport struct{}

// NewValidationReport creates a validation summary generator.
func NewValidationReport() *ValidationReport {
	return &ValidationReport{}
}

// Lines returns every overloaded segment sorted by overload ratio,
// descending. Segments within capacity are excluded.
func (r *ValidationReport) Lines(g *graph.Graph, verdicts map[string]engine.Verdict) []OverloadLine {
	var lines []OverloadLine
	for id, v := range verdicts {
		if v.IsValid {
			continue
		}
		e, ok := g.Edges[id]
		if !ok {
			continue
		}
		ratio := math.Inf(1)
		if v.Capacity > 0 {
			ratio = float64(v.Flow) / float64(v.Capacity)
		}
		line := OverloadLine{
			EdgeID:   id,
			Flow:     v.Flow,
			Capacity: v.Capacity,
			Ratio:    ratio,
		}
		if n, ok := g.Nodes[e.From]; ok {
			line.From = n.Name
		}
		if n, ok := g.Nodes[e.To]; ok {
			line.To = n.Name
		}
		lines = append(lines, line)
	}

	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Ratio != lines[j].Ratio {
			return lines[i].Ratio > lines[j].Ratio
		}
		return lines[i].EdgeID < lines[j].EdgeID
	})
	return lines
}

// Generate writes the overload summary as CSV.
func (r *ValidationReport) Generate(g *graph.Graph, verdicts map[string]engine.Verdict) (io.Reader, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	headers := []string{"edge_id", "from", "to", "flow_btuh", "capacity_btuh", "overload_ratio"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	for _, line := range r.Lines(g, verdicts) {
		ratio := "inf"
		if !math.IsInf(line.Ratio, 1) {
			ratio = strconv.FormatFloat(line.Ratio, 'f', 3, 64)
		}
		record := []string{
			line.EdgeID,
			line.From,
			line.To,
			strconv.FormatInt(line.Flow, 10),
			strconv.FormatInt(line.Capacity, 10),
			ratio,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf, nil
}
