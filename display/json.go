package display

import (
	"encoding/json"
)

// MarshalJSON formats v for the terminal. Output is indented so results stay
// readable when piped through less or saved next to the source export.
func MarshalJSON(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
