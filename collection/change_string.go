package collection

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// String renders a Change for logs/debugging. When OldItem/NewItem hold
// JSON-shaped bytes or a JSON string, the payload is pretty-printed
// rather than dumped as a single escaped line.
func (c Change[T]) String() string {
	return fmt.Sprintf("%s[%d->%d]: %s -> %s", c.Action, c.OldIndex, c.NewIndex, formatJSON(c.OldItem), formatJSON(c.NewItem))
}

func formatJSON(v any) string {
	b, ok := asJSON(v)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	return string(bytes.TrimSpace(pretty.Pretty(b)))
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
