// Package query contains read operations (CQRS - Queries) against a sport's
// depth chart.
package query

import (
	"context"

	"github.com/depthchart-hub/depth-chart-hub/internal/domain/depthchart"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET FULL CHART QUERY
// Returns every slot of the sport's depth chart.
// ══════════════════════════════════════════════════════════════════════════════

// GetFullChartQuery has no parameters; it exists to keep the handler shape
// uniform with the other queries.
type GetFullChartQuery struct{}

// SlotDTO is one position of the chart in rank order.
type SlotDTO struct {
	Position  string `json:"position"`
	PlayerIDs []int  `json:"player_ids"`
}

// ChartDTO is the transport-friendly chart snapshot.
type ChartDTO struct {
	Sport string    `json:"sport"`
	Slots []SlotDTO `json:"slots"`
}

// GetFullChartHandler handles GetFullChartQuery.
type GetFullChartHandler struct {
	engine *depthchart.Engine
}

// NewGetFullChartHandler creates a new GetFullChartHandler.
func NewGetFullChartHandler(engine *depthchart.Engine) *GetFullChartHandler {
	return &GetFullChartHandler{engine: engine}
}

// Handle returns a snapshot of the chart. Mutating it does not affect the
// engine.
func (h *GetFullChartHandler) Handle(ctx context.Context, q GetFullChartQuery) (depthchart.Chart, error) {
	return h.engine.FullChart(), nil
}

// ToDTO converts a chart snapshot. Empty positions are kept so consumers see
// the whole taxonomy.
func ToDTO(sport string, chart depthchart.Chart) ChartDTO {
	dto := ChartDTO{Sport: sport, Slots: make([]SlotDTO, 0, len(chart.Positions))}
	for _, tag := range chart.Positions {
		dto.Slots = append(dto.Slots, SlotDTO{
			Position:  tag.String(),
			PlayerIDs: intIDs(chart.Slot(tag)),
		})
	}
	return dto
}

func intIDs(slot depthchart.Slot) []int {
	ids := make([]int, len(slot))
	for i, e := range slot {
		ids[i] = int(e.PlayerID)
	}
	return ids
}
