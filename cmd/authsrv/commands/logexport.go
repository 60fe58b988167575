package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iyes-games/mpauth/pkg/log"
)

// RunExport writes the events matching filter as JSON lines or CSV.
func RunExport(path, format string, filter log.Filter, w io.Writer) error {
	switch format {
	case "jsonl":
		enc := json.NewEncoder(w)
		return eachEvent(path, filter, func(event log.Event) error {
			if err := enc.Encode(event); err != nil {
				return fmt.Errorf("failed to encode event: %w", err)
			}
			return nil
		})

	case "csv":
		cw := csv.NewWriter(w)
		header := []string{"timestamp", "connection_id", "role", "direction", "layer", "category", "peer", "type", "result"}
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		err := eachEvent(path, filter, func(event log.Event) error {
			result := ""
			if event.Message != nil {
				result = event.Message.Result
			}
			if event.StateChange != nil {
				result = event.StateChange.NewState
			}
			if event.Error != nil && event.Error.Code != nil {
				result = strconv.Itoa(*event.Error.Code)
			}
			return cw.Write([]string{
				event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
				event.ConnectionID,
				event.LocalRole.String(),
				event.Direction.String(),
				event.Layer.String(),
				event.Category.String(),
				event.PeerName,
				eventType(event),
				result,
			})
		})
		cw.Flush()
		if err != nil {
			return err
		}
		return cw.Error()

	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}
