package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bnema/eolkeeper/internal/domain"
)

// MockHistoryRecorder is a mock implementation of out.HistoryRecorder
type MockHistoryRecorder struct {
	mock.Mock
}

func (m *MockHistoryRecorder) Record(ctx context.Context, runID string, result domain.DigestResult) error {
	args := m.Called(ctx, runID, result)
	return args.Error(0)
}

// MockHistoryReader is a mock implementation of out.HistoryReader
type MockHistoryReader struct {
	mock.Mock
}

func (m *MockHistoryReader) Failures(ctx context.Context, runID string) ([]domain.DigestResult, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DigestResult), args.Error(1)
}
