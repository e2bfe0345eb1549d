// Package extract pulls embedded visualization specifications out of
// AI-generated narrative text, replacing each with an order-indexed
// placeholder the report assembler later substitutes with rendered markup.
package extract

import (
	"fmt"
	"strings"
)

// Kind is the closed set of visualization types the renderer understands.
type Kind string

const (
	KindGauge             Kind = "gauge"
	KindBarChart          Kind = "bar_chart"
	KindHorizontalBar     Kind = "horizontal_bar"
	KindComparisonMatrix  Kind = "comparison_matrix"
	KindScoreTiles        Kind = "score_tiles"
	KindTimeline          Kind = "timeline"
	KindRiskMatrix        Kind = "risk_matrix"
	KindHeatmap           Kind = "heatmap"
	KindRadarChart        Kind = "radar_chart"
	KindPriorityTable     Kind = "priority_table"
	KindProgressIndicator Kind = "progress_indicator"
	KindTrendSparkline    Kind = "trend_sparkline"
	KindKPICard           Kind = "kpi_card"
)

// Kinds lists every valid kind. Dispatch tables over visualization kinds are
// tested for exhaustiveness against this list.
var Kinds = []Kind{
	KindGauge,
	KindBarChart,
	KindHorizontalBar,
	KindComparisonMatrix,
	KindScoreTiles,
	KindTimeline,
	KindRiskMatrix,
	KindHeatmap,
	KindRadarChart,
	KindPriorityTable,
	KindProgressIndicator,
	KindTrendSparkline,
	KindKPICard,
}

var kindSet = func() map[Kind]struct{} {
	m := make(map[Kind]struct{}, len(Kinds))
	for _, k := range Kinds {
		m[k] = struct{}{}
	}
	return m
}()

// Valid reports whether k belongs to the closed kind set.
func (k Kind) Valid() bool {
	_, ok := kindSet[k]
	return ok
}

// DataPoint is one datum of a visualization. Label and Value carry the
// common case; the optional fields serve specific kinds (targets for gauges,
// colors for tiles, notes for timelines).
type DataPoint struct {
	Label  string   `json:"label"`
	Value  float64  `json:"value"`
	Target *float64 `json:"target,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Color  string   `json:"color,omitempty"`
	Note   string   `json:"note,omitempty"`
}

// VisualizationSpec is a parsed visualization block. Never mutated after
// creation; rendering is an external concern.
type VisualizationSpec struct {
	Kind  Kind        `json:"kind"`
	Title string      `json:"title"`
	Data  []DataPoint `json:"data"`
}

// Validate enforces the spec shape: a known kind and a non-empty data list.
func (s VisualizationSpec) Validate() error {
	var errs []string
	if !s.Kind.Valid() {
		errs = append(errs, fmt.Sprintf("unknown kind %q", s.Kind))
	}
	if len(s.Data) == 0 {
		errs = append(errs, "data must contain at least one point")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid visualization spec: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Placeholder returns the order-indexed sentinel inserted where spec i was
// extracted. The report assembler replaces it with rendered markup.
func Placeholder(i int) string {
	return fmt.Sprintf("<!-- visualization:%d -->", i)
}
