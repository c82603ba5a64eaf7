package service

import (
	"testing"
	"time"

	"lms_platform/internal/domain/document/model"
	"lms_platform/internal/pkg/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockDocumentRepository is a mock of DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(doc *model.Document) error {
	args := m.Called(doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(id string) (*model.Document, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) GetByLessonAndID(lessonID, id string) (*model.Document, error) {
	args := m.Called(lessonID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) MarkProcessing(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockDocumentRepository) MarkCompleted(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockDocumentRepository) MarkFailed(id string, message string) error {
	args := m.Called(id, message)
	return args.Error(0)
}

// MockEnqueuer is a mock of TaskEnqueuer
type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) AddTask(task worker.DocumentTask) {
	m.Called(task)
}

func testDocument(id, status string, attempts int) *model.Document {
	d := &model.Document{
		LessonID:           "lesson-1",
		Filename:           "slides.pdf",
		ProtectionLevel:    model.ProtectionWatermark,
		ProcessingStatus:   status,
		ProcessingAttempts: attempts,
	}
	d.ID = id
	return d
}

func TestCreateDocument(t *testing.T) {
	t.Run("unprotected document completes without queueing", func(t *testing.T) {
		mockRepo := new(MockDocumentRepository)
		mockQueue := new(MockEnqueuer)
		svc := NewDocumentService(mockRepo, nil, mockQueue, 3)

		mockRepo.On("Create", mock.AnythingOfType("*model.Document")).Return(nil)

		view, err := svc.CreateDocument("user-1", CreateDocumentInput{
			LessonID: "lesson-1", Filename: "notes.pdf", ProtectionLevel: model.ProtectionNone,
		})

		assert.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, view.ProcessingStatus)
		assert.NotNil(t, view.ProcessingCompletedAt)
		assert.False(t, view.CanRetryProcessing)
		mockQueue.AssertNotCalled(t, "AddTask", mock.Anything)
		mockRepo.AssertExpectations(t)
	})

	t.Run("protected document is queued pending", func(t *testing.T) {
		mockRepo := new(MockDocumentRepository)
		mockQueue := new(MockEnqueuer)
		svc := NewDocumentService(mockRepo, nil, mockQueue, 3)

		mockRepo.On("Create", mock.AnythingOfType("*model.Document")).Return(nil)
		mockQueue.On("AddTask", mock.AnythingOfType("worker.DocumentTask")).Return()

		view, err := svc.CreateDocument("user-1", CreateDocumentInput{
			LessonID: "lesson-1", Filename: "slides.pdf", ProtectionLevel: model.ProtectionFull,
		})

		assert.NoError(t, err)
		assert.Equal(t, model.StatusPending, view.ProcessingStatus)
		mockQueue.AssertExpectations(t)
	})

	t.Run("missing level defaults to NONE", func(t *testing.T) {
		mockRepo := new(MockDocumentRepository)
		mockQueue := new(MockEnqueuer)
		svc := NewDocumentService(mockRepo, nil, mockQueue, 3)

		mockRepo.On("Create", mock.AnythingOfType("*model.Document")).Return(nil)

		view, err := svc.CreateDocument("user-1", CreateDocumentInput{
			LessonID: "lesson-1", Filename: "open.pdf",
		})

		assert.NoError(t, err)
		assert.Equal(t, model.ProtectionNone, view.ProtectionLevel)
	})

	t.Run("invalid level rejected", func(t *testing.T) {
		mockRepo := new(MockDocumentRepository)
		mockQueue := new(MockEnqueuer)
		svc := NewDocumentService(mockRepo, nil, mockQueue, 3)

		_, err := svc.CreateDocument("user-1", CreateDocumentInput{
			LessonID: "lesson-1", Filename: "x.pdf", ProtectionLevel: "TOP_SECRET",
		})

		assert.ErrorIs(t, err, ErrInvalidProtection)
	})
}

func TestGetStatus(t *testing.T) {
	t.Run("failed with remaining attempts can retry", func(t *testing.T) {
		mockRepo := new(MockDocumentRepository)
		svc := NewDocumentService(mockRepo, nil, new(MockEnqueuer), 3)

		doc := testDocument("doc-1", model.StatusFailed, 1)
		doc.ProcessingError = "corrupt upload during conversion"
		mockRepo.On("GetByLessonAndID", "lesson-1", "doc-1").Return(doc, nil)

		view, err := svc.GetStatus("lesson-1", "doc-1")

		assert.NoError(t, err)
		assert.Equal(t, model.StatusFailed, view.ProcessingStatus)
		assert.Equal(t, "corrupt upload during conversion", view.ProcessingError)
		assert.True(t, view.CanRetryProcessing)
	})

	t.Run("failed with exhausted attempts cannot retry", func(t *testing.T) {
		mockRepo := new(MockDocumentRepository)
		svc := NewDocumentService(mockRepo, nil, new(MockEnqueuer), 3)

		mockRepo.On("GetByLessonAndID", "lesson-1", "doc-2").
			Return(testDocument("doc-2", model.StatusFailed, 3), nil)

		view, err := svc.GetStatus("lesson-1", "doc-2")

		assert.NoError(t, err)
		assert.False(t, view.CanRetryProcessing)
	})

	t.Run("completed document never advertises retry", func(t *testing.T) {
		mockRepo := new(MockDocumentRepository)
		svc := NewDocumentService(mockRepo, nil, new(MockEnqueuer), 3)

		doc := testDocument("doc-3", model.StatusCompleted, 1)
		now := time.Now()
		doc.ProcessingCompletedAt = &now
		mockRepo.On("GetByLessonAndID", "lesson-1", "doc-3").Return(doc, nil)

		view, err := svc.GetStatus("lesson-1", "doc-3")

		assert.NoError(t, err)
		assert.False(t, view.CanRetryProcessing)
		assert.Equal(t, "doc-3", view.DocumentID)
	})

	t.Run("missing document", func(t *testing.T) {
		mockRepo := new(MockDocumentRepository)
		svc := NewDocumentService(mockRepo, nil, new(MockEnqueuer), 3)

		mockRepo.On("GetByLessonAndID", "lesson-1", "ghost").Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.GetStatus("lesson-1", "ghost")

		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})
}
