package pipeline

import "github.com/sells-group/po-matcher/internal/model"

// Augment joins matching output with the extracted line items by exact
// po_item text. Every key in matches is kept; extracted items without a
// matching key are dropped. When extraction repeats a request item the last
// occurrence supplies the details.
func Augment(extracted []model.ExtractedLineItem, matches model.MatchResultMap) model.AugmentedResult {
	lookup := make(map[string]model.ExtractedLineItem, len(extracted))
	for _, item := range extracted {
		lookup[item.RequestItem] = item
	}

	out := make(model.AugmentedResult, len(matches))
	for poItem, candidates := range matches {
		if candidates == nil {
			candidates = []model.MatchCandidate{}
		}
		entry := model.AugmentedEntry{Matches: candidates}
		if item, ok := lookup[poItem]; ok {
			entry.Details = &item
		}
		out[poItem] = entry
	}
	return out
}
