package model

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// RequestItemField is the key the extraction service uses for a line item's
// descriptive text.
const RequestItemField = "Request Item"

// ExtractedLineItem is one line item returned by the extraction service.
// Only RequestItem is interpreted; the full object is kept in Raw and
// serialized back out unchanged.
type ExtractedLineItem struct {
	RequestItem string
	Raw         json.RawMessage
}

// NewExtractedLineItem builds a line item carrying only its request text.
func NewExtractedLineItem(requestItem string) ExtractedLineItem {
	raw, _ := json.Marshal(map[string]string{RequestItemField: requestItem})
	return ExtractedLineItem{RequestItem: requestItem, Raw: raw}
}

// MarshalJSON writes the original extraction object.
func (e ExtractedLineItem) MarshalJSON() ([]byte, error) {
	if len(e.Raw) == 0 {
		return json.Marshal(map[string]string{RequestItemField: e.RequestItem})
	}
	return e.Raw, nil
}

// UnmarshalJSON keeps the raw object and pulls out the request text.
func (e *ExtractedLineItem) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return eris.Wrap(err, "model: decode extracted line item")
	}
	var item string
	if raw, ok := fields[RequestItemField]; ok {
		if err := json.Unmarshal(raw, &item); err != nil {
			return eris.Wrapf(err, "model: %q is not a string", RequestItemField)
		}
	}
	e.RequestItem = item
	e.Raw = json.RawMessage(bytes.Clone(data))
	return nil
}

// RequestItems returns the request text of each item, in order, duplicates kept.
func RequestItems(items []ExtractedLineItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.RequestItem)
	}
	return out
}
