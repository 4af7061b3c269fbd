package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pipewright/pipewright/pkg/engine"
	"github.com/pipewright/pipewright/pkg/graph"
)

// MaterialsReport generates a CSV bill of materials: segment counts and
// total run length per nominal size.
type MaterialsReport struct{}

// NewMaterialsReport creates a materials report generator.
func NewMaterialsReport() *MaterialsReport {
	return &MaterialsReport{}
}

// Lines rolls the edge set up into one line per pipe size, in the sizing
// table's ascending order. Sizes with no segments are omitted.
func (r *MaterialsReport) Lines(g *graph.Graph) []MaterialsLine {
	bySize := map[graph.PipeSize]*MaterialsLine{}
	for _, e := range g.Edges {
		line, ok := bySize[e.Size]
		if !ok {
			line = &MaterialsLine{Size: e.Size}
			bySize[e.Size] = line
		}
		line.Segments++
		line.TotalLength += e.Length
	}

	var lines []MaterialsLine
	for _, size := range graph.PipeSizes() {
		if line, ok := bySize[size]; ok {
			lines = append(lines, *line)
		}
	}
	return lines
}

// Generate writes the bill of materials as CSV.
func (r *MaterialsReport) Generate(g *graph.Graph, verdicts map[string]engine.Verdict) (io.Reader, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	headers := []string{"size", "segments", "total_length_ft"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	for _, line := range r.Lines(g) {
		record := []string{
			string(line.Size),
			strconv.Itoa(line.Segments),
			strconv.FormatFloat(line.TotalLength, 'f', -1, 64),
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
