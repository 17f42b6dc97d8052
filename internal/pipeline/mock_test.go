package pipeline

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/po-matcher/internal/model"
	"github.com/sells-group/po-matcher/pkg/extraction"
)

// --- Extractor Mock ---

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, doc extraction.Document) ([]model.ExtractedLineItem, error) {
	// Drain the body so tests can assert on what was sent.
	var body string
	if doc.Body != nil {
		b, _ := io.ReadAll(doc.Body)
		body = string(b)
	}
	args := m.Called(ctx, doc.Filename, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ExtractedLineItem), args.Error(1)
}

// --- Matcher Mock ---

type mockMatcher struct {
	mock.Mock
}

func (m *mockMatcher) MatchBatch(ctx context.Context, queries []string) (model.MatchResultMap, error) {
	args := m.Called(ctx, queries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.MatchResultMap), args.Error(1)
}
