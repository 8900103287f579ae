package command

import (
	"context"

	"github.com/depthchart-hub/depth-chart-hub/internal/domain/depthchart"
	"github.com/depthchart-hub/depth-chart-hub/internal/domain/position"
	"github.com/depthchart-hub/depth-chart-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REMOVE POSITION COMMAND
// Takes a player off a position's depth chart. Removing someone who is not
// there is not an error.
// ══════════════════════════════════════════════════════════════════════════════

// RemovePositionCommand contains the data to remove a player from a position.
type RemovePositionCommand struct {
	Name     string
	Position string
}

// Validate validates the command.
func (c RemovePositionCommand) Validate() error {
	if c.Name == "" {
		return shared.Detail(shared.ErrMissingField, "remove: name is required")
	}
	if c.Position == "" {
		return shared.Detail(shared.ErrMissingField, "remove: position is required")
	}
	return nil
}

// RemovePositionResult contains the result of a removal.
type RemovePositionResult struct {
	Position position.Tag

	// Removed is false when the player was not in the slot.
	Removed bool
}

// RemovePositionHandler handles the RemovePositionCommand.
type RemovePositionHandler struct {
	engine *depthchart.Engine
}

// NewRemovePositionHandler creates a new RemovePositionHandler.
func NewRemovePositionHandler(engine *depthchart.Engine) *RemovePositionHandler {
	return &RemovePositionHandler{engine: engine}
}

// Handle executes the remove position command.
func (h *RemovePositionHandler) Handle(ctx context.Context, cmd RemovePositionCommand) (*RemovePositionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	tag, err := h.engine.Taxonomy().Parse(cmd.Position)
	if err != nil {
		return nil, err
	}

	before := len(h.engine.Slot(tag))
	h.engine.RemovePosition(cmd.Name, tag)

	return &RemovePositionResult{
		Position: tag,
		Removed:  len(h.engine.Slot(tag)) < before,
	}, nil
}
