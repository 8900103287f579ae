package interpreter

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/depthchart-hub/depth-chart-hub/internal/domain/depthchart"
	"github.com/depthchart-hub/depth-chart-hub/internal/domain/player"
	"github.com/depthchart-hub/depth-chart-hub/internal/domain/position"
)

// errorPrefix starts every diagnostic line written to the sink.
const errorPrefix = "Error processing message: "

// FormatChart renders a chart as "Depth Chart:\n" followed by one
// "<tag>: [<id>, <id>]" line per non-empty position, in taxonomy order.
func FormatChart(chart depthchart.Chart) string {
	lines := make([]string, 0, len(chart.Positions))
	for _, tag := range chart.NonEmpty() {
		lines = append(lines, tag.String()+": ["+joinIDs(chart.Slot(tag).PlayerIDs(), ", ")+"]")
	}
	return "Depth Chart:\n" + strings.Join(lines, "\n")
}

// FormatPlayersUnder renders the backups below a player. The id list is a
// JSON array, e.g. "[2,3]" or "[]".
func FormatPlayersUnder(name string, tag position.Tag, entries []depthchart.Entry) string {
	ids := make([]int, len(entries))
	for i, e := range entries {
		ids[i] = int(e.PlayerID)
	}
	// Marshalling a []int cannot fail.
	encoded, _ := json.Marshal(ids)
	return "\nPlayers Under " + name + " with position '" + tag.String() + "':\n" + string(encoded)
}

// FormatError renders the single diagnostic line for a failed payload.
func FormatError(err error) string {
	return errorPrefix + err.Error()
}

func formatAddedPlayer(name string, id player.ID) string {
	return "Added Player " + name + " with Id: " + strconv.Itoa(int(id))
}

func formatAddedPosition(name, pos string, depth *int) string {
	d := ""
	if depth != nil {
		d = strconv.Itoa(*depth)
	}
	return "Added Player " + name + " with position '" + pos + "' to depth: " + d
}

func formatRemovedPosition(name, pos string) string {
	return "Removed Player " + name + " with position '" + pos + "'"
}

func joinIDs(ids []player.ID, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, sep)
}
