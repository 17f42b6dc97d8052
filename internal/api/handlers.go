package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/po-matcher/internal/model"
)

const uploadField = "file"

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "OK")
}

// upload streams the "file" part of a multipart request into the pipeline.
// Parts are walked by hand so that a part without a filename parameter
// ("No file part") can be told apart from an empty filename ("No selected
// file").
func (h *handlers) upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	filename, body, closeFn := h.findFilePart(r)
	defer closeFn()

	result, err := h.pipeline.Process(r.Context(), filename, body)
	if err != nil {
		writeUploadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]model.AugmentedResult{"results": result})
}

// findFilePart returns the upload's filename and body, or a nil body when
// the request has no file part.
func (h *handlers) findFilePart(r *http.Request) (string, io.Reader, func()) {
	noop := func() {}

	mr, err := r.MultipartReader()
	if err != nil {
		return "", nil, noop
	}
	for {
		part, err := mr.NextPart()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				zap.L().Debug("api: multipart read stopped", zap.Error(err))
			}
			return "", nil, noop
		}
		if part.FormName() != uploadField || !hasFilenameParam(part.Header.Get("Content-Disposition")) {
			part.Close() //nolint:errcheck
			continue
		}
		return part.FileName(), part, func() { part.Close() } //nolint:errcheck
	}
}

func hasFilenameParam(disposition string) bool {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return false
	}
	_, ok := params["filename"]
	return ok
}

type confirmRequest struct {
	Matches []model.ConfirmedMatch `json:"matches"`
}

func (h *handlers) confirmMatches(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if msg := invalidMatch(req.Matches); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.ConfirmMatches(r.Context(), req.Matches); err != nil {
		writeStoreError(w, "confirm matches", msgConfirmFailed, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msgConfirmed})
}

func (h *handlers) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListOrders(r.Context())
	if err != nil {
		writeStoreError(w, "list orders", msgFetchFailed, err)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}
