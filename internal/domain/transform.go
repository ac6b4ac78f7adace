package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/jismesh-etl/internal/meshcode"
)

// ParseRawEvent deserializes a RawEvent's value and decodes its mesh code.
func ParseRawEvent(raw RawEvent) (CellEvent, error) {
	var rec MeshRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return CellEvent{}, fmt.Errorf("parse raw event: %w", err)
	}

	code := strings.TrimSpace(string(rec.KeyCode))
	cell, err := meshcode.DecodeCell(code)
	if err != nil {
		return CellEvent{}, fmt.Errorf("decode mesh code: %w", err)
	}

	return CellEvent{
		ID:       generateID(cell),
		Code:     cell.Code,
		Level:    int(cell.Level),
		Center:   cell.Center(),
		BBox:     cell.BBox(),
		Polygon:  cell.BBox().Ring(),
		Values:   rec.Values,
		SourceAt: raw.Timestamp,

		RawPayload: raw.Value,
	}, nil
}

// EnrichCellEvent attaches the enclosing cell at target and stamps
// ProcessedAt. A zero target, or one at or below the event's own level, leaves
// Parent empty.
func EnrichCellEvent(event CellEvent, target meshcode.Level) CellEvent {
	event.Parent = deriveParent(event.Code, event.Level, target)
	event.ProcessedAt = clock.Now()
	return event
}

func deriveParent(code string, level int, target meshcode.Level) string {
	if !target.Valid() || int(target) >= level {
		return ""
	}
	parent, err := meshcode.Truncate(code, target)
	if err != nil {
		return ""
	}
	return parent
}

// generateID produces a deterministic ID from the cell code.
func generateID(cell meshcode.Cell) string {
	hash := sha256.Sum256([]byte(cell.Code))
	return fmt.Sprintf("L%d-%s", cell.Level, hex.EncodeToString(hash[:8]))
}

// SerializeCellEvent marshals an event into an OutputEvent keyed by mesh code.
func SerializeCellEvent(event CellEvent) (OutputEvent, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize cell event: %w", err)
	}
	headers := map[string]string{
		"level":        strconv.Itoa(event.Level),
		"processed_at": event.ProcessedAt.Format(time.RFC3339),
	}
	if event.Parent != "" {
		headers["parent"] = event.Parent
	}
	return OutputEvent{
		Key:     []byte(event.Code),
		Value:   data,
		Headers: headers,
	}, nil
}
