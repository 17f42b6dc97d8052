package api

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/po-matcher/internal/model"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ConfirmMatches(ctx context.Context, matches []model.ConfirmedMatch) error {
	args := m.Called(ctx, matches)
	return args.Error(0)
}

func (m *mockStore) ListOrders(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}
