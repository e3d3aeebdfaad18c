package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Identifier is a user reference sent by clients: a UUID string or a numeric
// legacy id, which may arrive as a JSON number.
type Identifier string

// UnmarshalJSON accepts a JSON string or integer.
func (id *Identifier) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = Identifier(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier must be a string or number: %w", err)
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("identifier must be an integer: %s", n)
	}
	*id = Identifier(n.String())
	return nil
}

// String returns the identifier text.
func (id Identifier) String() string {
	return string(id)
}
