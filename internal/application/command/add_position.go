package command

import (
	"context"
	"strings"

	"github.com/depthchart-hub/depth-chart-hub/internal/domain/depthchart"
	"github.com/depthchart-hub/depth-chart-hub/internal/domain/player"
	"github.com/depthchart-hub/depth-chart-hub/internal/domain/position"
	"github.com/depthchart-hub/depth-chart-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD POSITION COMMAND
// Places a player on a position's depth chart, creating the player if needed.
// Re-adding a player already in the slot moves it instead of duplicating it.
// ══════════════════════════════════════════════════════════════════════════════

// AddPositionCommand contains the data to place a player at a position.
type AddPositionCommand struct {
	Name string

	// Position is the raw position text; it is parsed against the taxonomy.
	Position string

	// Depth is the requested rank. Nil or out of range appends.
	Depth *int
}

// Validate validates the command.
func (c AddPositionCommand) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return shared.Detail(shared.ErrMissingField, "add: name is required")
	}
	if c.Position == "" {
		return shared.Detail(shared.ErrMissingField, "add: position is required")
	}
	return nil
}

// AddPositionResult contains the result of placing a player.
type AddPositionResult struct {
	Player   player.Player
	Position position.Tag

	// Rank is the index the player ended up at.
	Rank int
}

// AddPositionHandler handles the AddPositionCommand.
type AddPositionHandler struct {
	engine *depthchart.Engine
}

// NewAddPositionHandler creates a new AddPositionHandler.
func NewAddPositionHandler(engine *depthchart.Engine) *AddPositionHandler {
	return &AddPositionHandler{engine: engine}
}

// Handle executes the add position command.
func (h *AddPositionHandler) Handle(ctx context.Context, cmd AddPositionCommand) (*AddPositionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	// Players are created on first reference, so "add" never hits the
	// unknown-player path of the engine through this handler.
	p := h.engine.Registry().AddOrGet(cmd.Name)

	tag, err := h.engine.Taxonomy().Parse(cmd.Position)
	if err != nil {
		return nil, err
	}

	if err := h.engine.AddPosition(p.ID, tag, cmd.Depth); err != nil {
		return nil, err
	}

	return &AddPositionResult{
		Player:   p,
		Position: tag,
		Rank:     h.engine.Slot(tag).IndexOf(p.ID),
	}, nil
}
