package topics

import (
	"context"
	"errors"
	"testing"

	"github.com/paperdesk/paperdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAnalysisReader is a mock implementation of AnalysisReader
type MockAnalysisReader struct {
	mock.Mock
}

func (m *MockAnalysisReader) GetByDocumentID(ctx context.Context, documentID string) (*domain.DocumentAnalysis, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentAnalysis), args.Error(1)
}

func TestExtractor_Signatures(t *testing.T) {
	ctx := context.Background()

	t.Run("maps completed analyses to keyword sets", func(t *testing.T) {
		reader := new(MockAnalysisReader)
		reader.On("GetByDocumentID", mock.Anything, "doc-1").Return(&domain.DocumentAnalysis{
			DocumentID: "doc-1",
			Background: "transformer architectures",
			Content:    "attention mechanisms",
			Status:     domain.AnalysisStatusCompleted,
		}, nil)

		extractor := NewExtractor(reader)
		sigs, err := extractor.Signatures(ctx, []string{"doc-1"})

		require.NoError(t, err)
		require.Len(t, sigs, 1)
		assert.True(t, sigs["doc-1"].Contains("transformer"))
		assert.True(t, sigs["doc-1"].Contains("attention"))
		reader.AssertExpectations(t)
	})

	t.Run("omits missing analyses silently", func(t *testing.T) {
		reader := new(MockAnalysisReader)
		reader.On("GetByDocumentID", mock.Anything, "doc-1").Return(nil, domain.ErrAnalysisNotFound)
		reader.On("GetByDocumentID", mock.Anything, "doc-2").Return(&domain.DocumentAnalysis{
			DocumentID: "doc-2",
			Content:    "protein folding dynamics",
			Status:     domain.AnalysisStatusCompleted,
		}, nil)

		extractor := NewExtractor(reader)
		sigs, err := extractor.Signatures(ctx, []string{"doc-1", "doc-2"})

		require.NoError(t, err)
		assert.Len(t, sigs, 1)
		assert.Contains(t, sigs, "doc-2")
	})

	t.Run("omits analyses that are not completed", func(t *testing.T) {
		reader := new(MockAnalysisReader)
		for id, status := range map[string]domain.AnalysisStatus{
			"doc-1": domain.AnalysisStatusPending,
			"doc-2": domain.AnalysisStatusProcessing,
			"doc-3": domain.AnalysisStatusFailed,
		} {
			reader.On("GetByDocumentID", mock.Anything, id).Return(&domain.DocumentAnalysis{
				DocumentID: id,
				Content:    "some analysis text here",
				Status:     status,
			}, nil)
		}

		extractor := NewExtractor(reader)
		sigs, err := extractor.Signatures(ctx, []string{"doc-1", "doc-2", "doc-3"})

		require.NoError(t, err)
		assert.Empty(t, sigs)
	})

	t.Run("omits completed analyses with no usable keywords", func(t *testing.T) {
		reader := new(MockAnalysisReader)
		reader.On("GetByDocumentID", mock.Anything, "doc-1").Return(&domain.DocumentAnalysis{
			DocumentID: "doc-1",
			Content:    "a an at",
			Status:     domain.AnalysisStatusCompleted,
		}, nil)

		extractor := NewExtractor(reader)
		sigs, err := extractor.Signatures(ctx, []string{"doc-1"})

		require.NoError(t, err)
		assert.Empty(t, sigs)
	})

	t.Run("propagates infrastructure errors", func(t *testing.T) {
		reader := new(MockAnalysisReader)
		reader.On("GetByDocumentID", mock.Anything, "doc-1").Return(nil, errors.New("connection reset"))

		extractor := NewExtractor(reader)
		_, err := extractor.Signatures(ctx, []string{"doc-1"})

		require.Error(t, err)
	})
}
