package model

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// MatchCandidate is a catalog item proposed for a po_item. Candidate order
// within a list is significant and preserved.
type MatchCandidate struct {
	CatalogItemID string  `json:"catalog_item_id"`
	Description   string  `json:"description"`
	Score         float64 `json:"score"`
}

// UnmarshalJSON accepts the field spellings the matching service has used:
// catalog_item_id, id or match for the id, and match as a description fallback.
func (m *MatchCandidate) UnmarshalJSON(data []byte) error {
	var raw struct {
		CatalogItemID json.RawMessage `json:"catalog_item_id"`
		ID            json.RawMessage `json:"id"`
		Match         *string         `json:"match"`
		Description   *string         `json:"description"`
		Score         *float64        `json:"score"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "model: decode match candidate")
	}

	*m = MatchCandidate{}
	switch {
	case len(raw.CatalogItemID) > 0 && string(raw.CatalogItemID) != "null":
		m.CatalogItemID = scalarString(raw.CatalogItemID)
	case len(raw.ID) > 0 && string(raw.ID) != "null":
		m.CatalogItemID = scalarString(raw.ID)
	case raw.Match != nil:
		m.CatalogItemID = *raw.Match
	}
	switch {
	case raw.Description != nil:
		m.Description = *raw.Description
	case raw.Match != nil:
		m.Description = *raw.Match
	}
	if raw.Score != nil {
		m.Score = *raw.Score
	}
	return nil
}

// scalarString renders a JSON string or number as plain text.
func scalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// MatchResultMap maps query text to its ordered candidate list.
type MatchResultMap map[string][]MatchCandidate

// AugmentedEntry is a candidate list joined with the extracted line item it
// was produced for. Details is nil when the matching service returned a key
// that was not among the extracted items.
type AugmentedEntry struct {
	Matches []MatchCandidate   `json:"matches"`
	Details *ExtractedLineItem `json:"details"`
}

// AugmentedResult is keyed by po_item.
type AugmentedResult map[string]AugmentedEntry
