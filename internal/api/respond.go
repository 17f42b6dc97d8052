package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/po-matcher/internal/intake"
	"github.com/sells-group/po-matcher/internal/model"
	"github.com/sells-group/po-matcher/internal/pipeline"
	"github.com/sells-group/po-matcher/pkg/extraction"
	"github.com/sells-group/po-matcher/pkg/matching"
	"github.com/sells-group/po-matcher/pkg/upstream"
)

// Wire messages.
const (
	msgInvalidBody     = "Invalid request body"
	msgConfirmed       = "Matches confirmed successfully"
	msgConfirmFailed   = "Failed to confirm matches"
	msgFetchFailed     = "Failed to fetch orders"
	msgStoreFailed     = "Failed to store file"
	msgTooLarge        = "File too large"
	msgExtractFailed   = "Extraction failed"
	msgMatchFailed     = "Matching failed"
	msgInternalFailure = "Internal server error"
)

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// upstreamErrorBody always carries details, even when the upstream body
// was empty.
type upstreamErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeUploadError turns a pipeline failure into its wire form.
func writeUploadError(w http.ResponseWriter, err error) {
	var ie *intake.InputError
	if errors.As(err, &ie) {
		writeError(w, http.StatusBadRequest, ie.Message)
		return
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
		return
	}

	if ue, ok := upstream.As(err); ok {
		label := msgInternalFailure
		switch ue.Service {
		case extraction.ServiceName:
			label = msgExtractFailed
		case matching.ServiceName:
			label = msgMatchFailed
		}
		writeJSON(w, upstreamStatus(ue.StatusCode), upstreamErrorBody{Error: label, Details: ue.Body})
		return
	}

	var se *pipeline.StageError
	if errors.As(err, &se) && se.Stage == pipeline.StageReceived {
		zap.L().Error("api: store upload", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgStoreFailed)
		return
	}

	zap.L().Error("api: upload", zap.Error(err))
	writeError(w, http.StatusInternalServerError, msgInternalFailure)
}

// writeStoreError logs a persistence failure and answers with a generic 500.
func writeStoreError(w http.ResponseWriter, op, msg string, err error) {
	zap.L().Error("api: "+op, zap.Error(err))
	writeError(w, http.StatusInternalServerError, msg)
}

// upstreamStatus relays an upstream error status, mapping anything that is
// not an error status to 502.
func upstreamStatus(code int) int {
	if code < 400 || code > 599 {
		return http.StatusBadGateway
	}
	return code
}

// invalidMatch returns the wire message for the first entry that cannot
// become an order, or "" when every entry is usable.
func invalidMatch(matches []model.ConfirmedMatch) string {
	for i, m := range matches {
		if m.POItem == "" {
			return fmt.Sprintf("Match %d is missing po_item", i)
		}
		if m.CatalogItemID == "" {
			return fmt.Sprintf("Match %d is missing catalog_item_id", i)
		}
	}
	return ""
}
