package trackable

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// String renders a Change for logs/debugging as "Property: original ->
// current". Each of Original and Current that holds JSON-shaped bytes
// or a JSON string — the common case for a dynamic property fed from
// pathobserve's gjson/sjson nodes — is pretty-printed rather than
// dumped as a single escaped line.
func (c Change) String() string {
	return fmt.Sprintf("%s: %s -> %s", c.Property, formatJSON(c.Original), formatJSON(c.Current))
}

func asJSON(v any) ([]byte, bool) {
	switch t := v.(type) {
	case []byte:
		return t, gjson.ValidBytes(t)
	case string:
		b := []byte(t)
		return b, gjson.Valid(t)
	default:
		return nil, false
	}
}

func formatJSON(v any) string {
	b, ok := asJSON(v)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	return string(bytes.TrimSpace(pretty.Pretty(b)))
}
