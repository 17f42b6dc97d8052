// Package pipeline runs an uploaded purchase order through extraction,
// catalog matching and augmentation.
package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/po-matcher/internal/intake"
	"github.com/sells-group/po-matcher/internal/model"
	"github.com/sells-group/po-matcher/pkg/extraction"
)

// Stage is a step of a single upload's processing.
type Stage string

const (
	StageReceived  Stage = "received"
	StageExtracted Stage = "extracted"
	StageMatched   Stage = "matched"
	StageAugmented Stage = "augmented"
	StageReturned  Stage = "returned"
	StageFailed    Stage = "failed"
)

// Extractor turns a stored document into line items.
type Extractor interface {
	Extract(ctx context.Context, doc extraction.Document) ([]model.ExtractedLineItem, error)
}

// Matcher proposes catalog candidates for a batch of queries.
type Matcher interface {
	MatchBatch(ctx context.Context, queries []string) (model.MatchResultMap, error)
}

// StageError records which step an upload failed in. The cause is kept in
// the chain so typed errors (intake.InputError, upstream.Error) stay
// reachable with errors.As.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return "pipeline: " + string(e.Stage) + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Pipeline processes uploads. It holds no per-request state and is safe for
// concurrent use.
type Pipeline struct {
	receiver  *intake.Receiver
	extractor Extractor
	matcher   Matcher
}

// New creates a Pipeline.
func New(receiver *intake.Receiver, extractor Extractor, matcher Matcher) *Pipeline {
	return &Pipeline{
		receiver:  receiver,
		extractor: extractor,
		matcher:   matcher,
	}
}

// Process stores the upload, extracts its line items, matches them against
// the catalog and returns the joined result. A failure at any step aborts the
// run; nothing partial is returned. The stored file is kept either way.
func (p *Pipeline) Process(ctx context.Context, filename string, body io.Reader) (model.AugmentedResult, error) {
	runID := uuid.New().String()
	log := zap.L().With(zap.String("run_id", runID), zap.String("filename", filename))
	start := time.Now()

	fail := func(stage Stage, err error) (model.AugmentedResult, error) {
		log.Warn("pipeline: upload failed",
			zap.String("stage", string(StageFailed)),
			zap.String("failed_at", string(stage)),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Error(err),
		)
		return nil, &StageError{Stage: stage, Err: err}
	}

	handle, err := p.receiver.Receive(ctx, filename, body)
	if err != nil {
		return fail(StageReceived, err)
	}
	log.Info("pipeline: stage complete", zap.String("stage", string(StageReceived)), zap.String("location", handle.Location))

	items, err := p.extract(ctx, handle)
	if err != nil {
		return fail(StageExtracted, err)
	}
	log.Info("pipeline: stage complete", zap.String("stage", string(StageExtracted)), zap.Int("items", len(items)))

	matches := model.MatchResultMap{}
	if len(items) > 0 {
		matches, err = p.matcher.MatchBatch(ctx, model.RequestItems(items))
		if err != nil {
			return fail(StageMatched, eris.Wrap(err, "pipeline: match"))
		}
	}
	log.Info("pipeline: stage complete", zap.String("stage", string(StageMatched)), zap.Int("queries", len(matches)))

	result := Augment(items, matches)
	log.Info("pipeline: stage complete",
		zap.String("stage", string(StageAugmented)),
		zap.Int("results", len(result)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	log.Debug("pipeline: stage complete", zap.String("stage", string(StageReturned)))
	return result, nil
}

func (p *Pipeline) extract(ctx context.Context, h intake.Handle) ([]model.ExtractedLineItem, error) {
	rc, err := p.receiver.Open(ctx, h)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck

	items, err := p.extractor.Extract(ctx, extraction.Document{
		Filename: h.Filename,
		Body:     rc,
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: extract")
	}
	return items, nil
}
