// Package intake stores uploaded purchase-order documents for the pipeline.
package intake

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Caller-facing messages for rejected uploads.
const (
	MsgNoFilePart      = "No file part"
	MsgNoSelectedFile  = "No selected file"
	MsgInvalidFilename = "Invalid file name"
)

// InputError is an upload the caller must correct and resubmit.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return "intake: " + e.Message
}

// Handle identifies a stored document.
type Handle struct {
	Filename string // base name as uploaded
	Key      string // storage key
	Location string // path or URL reported by the storage backend
}

// Storage persists uploaded documents. Saving under an existing key
// replaces the previous content.
type Storage interface {
	Save(ctx context.Context, key string, body io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Receiver validates uploads and writes them to a Storage.
type Receiver struct {
	storage Storage
}

// NewReceiver creates a Receiver backed by storage.
func NewReceiver(storage Storage) *Receiver {
	return &Receiver{storage: storage}
}

// Receive stores body under a key derived from filename. A nil body means
// the request carried no file part.
func (r *Receiver) Receive(ctx context.Context, filename string, body io.Reader) (Handle, error) {
	if body == nil {
		return Handle{}, &InputError{Message: MsgNoFilePart}
	}
	if filename == "" {
		return Handle{}, &InputError{Message: MsgNoSelectedFile}
	}

	key, err := KeyFor(filename)
	if err != nil {
		return Handle{}, err
	}

	loc, err := r.storage.Save(ctx, key, body)
	if err != nil {
		return Handle{}, eris.Wrapf(err, "intake: save %s", key)
	}

	zap.L().Debug("intake: stored upload",
		zap.String("filename", filename),
		zap.String("location", loc),
	)
	return Handle{Filename: key, Key: key, Location: loc}, nil
}

// Open returns the stored document for h.
func (r *Receiver) Open(ctx context.Context, h Handle) (io.ReadCloser, error) {
	rc, err := r.storage.Open(ctx, h.Key)
	if err != nil {
		return nil, eris.Wrapf(err, "intake: open %s", h.Key)
	}
	return rc, nil
}

// KeyFor reduces filename to a base name usable as a storage key. Directory
// components are dropped so an upload cannot escape the storage root.
func KeyFor(filename string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	switch name {
	case "", ".", "..", "/":
		return "", &InputError{Message: MsgInvalidFilename}
	}
	return name, nil
}
