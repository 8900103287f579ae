package query

import (
	"context"

	"github.com/depthchart-hub/depth-chart-hub/internal/domain/depthchart"
	"github.com/depthchart-hub/depth-chart-hub/internal/domain/position"
	"github.com/depthchart-hub/depth-chart-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PLAYERS UNDER QUERY
// Lists the backups ranked below a player at one position.
// ══════════════════════════════════════════════════════════════════════════════

// GetPlayersUnderQuery contains the query parameters.
type GetPlayersUnderQuery struct {
	Name     string
	Position string
}

// Validate checks the query parameters.
func (q GetPlayersUnderQuery) Validate() error {
	if q.Name == "" {
		return shared.Detail(shared.ErrMissingField, "get_under: name is required")
	}
	if q.Position == "" {
		return shared.Detail(shared.ErrMissingField, "get_under: position is required")
	}
	return nil
}

// PlayersUnderResult contains the entries below the player.
type PlayersUnderResult struct {
	Position position.Tag
	Entries  []depthchart.Entry
}

// GetPlayersUnderHandler handles GetPlayersUnderQuery.
type GetPlayersUnderHandler struct {
	engine *depthchart.Engine
}

// NewGetPlayersUnderHandler creates a new GetPlayersUnderHandler.
func NewGetPlayersUnderHandler(engine *depthchart.Engine) *GetPlayersUnderHandler {
	return &GetPlayersUnderHandler{engine: engine}
}

// Handle executes the query. An unknown player yields an empty result, not an
// error; only the position is validated.
func (h *GetPlayersUnderHandler) Handle(ctx context.Context, q GetPlayersUnderQuery) (*PlayersUnderResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	tag, err := h.engine.Taxonomy().Parse(q.Position)
	if err != nil {
		return nil, err
	}

	return &PlayersUnderResult{
		Position: tag,
		Entries:  h.engine.PlayersUnder(q.Name, tag),
	}, nil
}
