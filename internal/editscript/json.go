package editscript

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON renders Action as its name ("UPDATE", "INSERT", ...)
// rather than its numeric value, printing a human-readable label for
// anything that ends up in a diagnostic artifact or a cmd/patchtrace
// JSON file.
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts the string form produced by MarshalJSON.
func (a *Action) UnmarshalJSON(bs []byte) error {
	var s string
	if err := json.Unmarshal(bs, &s); err != nil {
		return err
	}
	switch s {
	case "UPDATE":
		*a = UPDATE
	case "INSERT":
		*a = INSERT
	case "MOVE":
		*a = MOVE
	case "DELETE":
		*a = DELETE
	default:
		return fmt.Errorf("editscript: unknown action %q", s)
	}
	return nil
}

// MarshalJSON renders Stage as its name, for the same reason as
// Action.MarshalJSON above.
func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the string form produced by MarshalJSON.
func (s *Stage) UnmarshalJSON(bs []byte) error {
	var str string
	if err := json.Unmarshal(bs, &str); err != nil {
		return err
	}
	switch str {
	case "UPDATE":
		*s = StageUpdate
	case "ALIGN_KEYS":
		*s = StageAlignKeys
	case "ALIGN":
		*s = StageAlign
	case "INSERT":
		*s = StageInsert
	case "MOVE":
		*s = StageMove
	case "DELETE":
		*s = StageDelete
	default:
		return fmt.Errorf("editscript: unknown stage %q", str)
	}
	return nil
}
