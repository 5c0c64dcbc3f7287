package bench

import (
	"encoding/json"
	"io"
)

// WriteJSON writes the reports as an indented JSON array.
func WriteJSON(w io.Writer, reports []Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}
