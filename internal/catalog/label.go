package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Label is a display value the catalog may write either as a JSON string or a
// number ("8-12", 10, "bodyweight", 22.5). It is always kept as text.
type Label string

func (l *Label) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = Label(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*l = Label(n.String())
		return nil
	}

	return fmt.Errorf("label must be a string or a number, got %s", trimmed)
}

func (l Label) String() string {
	return string(l)
}
