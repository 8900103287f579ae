// Package command contains write operations (CQRS - Commands) against a
// sport's depth chart.
package command

import (
	"context"
	"strings"

	"github.com/depthchart-hub/depth-chart-hub/internal/domain/depthchart"
	"github.com/depthchart-hub/depth-chart-hub/internal/domain/player"
	"github.com/depthchart-hub/depth-chart-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD PLAYER COMMAND
// Registers a player by name, or resolves the existing one.
// ══════════════════════════════════════════════════════════════════════════════

// AddPlayerCommand contains the data to register a player.
type AddPlayerCommand struct {
	// Name is matched case-insensitively against known players.
	Name string

	// PlayerID is advisory: ids are always assigned by the registry and a
	// value that disagrees with the assigned id is ignored.
	PlayerID *int
}

// Validate validates the command.
func (c AddPlayerCommand) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return shared.Detail(shared.ErrMissingField, "add_player: name is required")
	}
	return nil
}

// AddPlayerResult contains the result of registering a player.
type AddPlayerResult struct {
	Player player.Player

	// Created is false when the name was already registered.
	Created bool
}

// AddPlayerHandler handles the AddPlayerCommand.
type AddPlayerHandler struct {
	engine *depthchart.Engine
}

// NewAddPlayerHandler creates a new AddPlayerHandler.
func NewAddPlayerHandler(engine *depthchart.Engine) *AddPlayerHandler {
	return &AddPlayerHandler{engine: engine}
}

// Handle executes the add player command.
func (h *AddPlayerHandler) Handle(ctx context.Context, cmd AddPlayerCommand) (*AddPlayerResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	reg := h.engine.Registry()
	before := reg.Len()
	p := reg.AddOrGet(cmd.Name)

	return &AddPlayerResult{
		Player:  p,
		Created: reg.Len() > before,
	}, nil
}
