package service

import (
	"errors"
	"time"

	"lms_platform/internal/domain/document/model"
	"lms_platform/internal/domain/document/repository"
	"lms_platform/internal/pkg/worker"

	"gorm.io/gorm"
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrInvalidProtection = errors.New("invalid protection level")
)

// StatusView 文档状态的客户端消费形状
type StatusView struct {
	DocumentID            string     `json:"documentId"`
	Filename              string     `json:"filename"`
	ProtectionLevel       string     `json:"protectionLevel"`
	ProcessingStatus      string     `json:"processingStatus"`
	ProcessingError       string     `json:"processingError,omitempty"`
	ProcessingAttempts    int        `json:"processingAttempts"`
	ProcessingStartedAt   *time.Time `json:"processingStartedAt,omitempty"`
	ProcessingCompletedAt *time.Time `json:"processingCompletedAt,omitempty"`
	CanRetryProcessing    bool       `json:"canRetryProcessing"`
}

// CreateDocumentInput 文档登记输入
type CreateDocumentInput struct {
	LessonID        string
	Filename        string
	URL             string
	ProtectionLevel string
}

// TaskEnqueuer 处理任务入队，生产实现是 worker.WorkerPool
type TaskEnqueuer interface {
	AddTask(task worker.DocumentTask)
}

type DocumentService interface {
	CreateDocument(userID string, input CreateDocumentInput) (*StatusView, error)
	GetStatus(lessonID, documentID string) (*StatusView, error)
	Stats() (*repository.DocumentStats, error)
}

type documentService struct {
	repo        repository.DocumentRepository
	stats       repository.DocumentStatsRepository
	queue       TaskEnqueuer
	maxAttempts int
}

func NewDocumentService(repo repository.DocumentRepository, stats repository.DocumentStatsRepository, queue TaskEnqueuer, maxAttempts int) DocumentService {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &documentService{
		repo:        repo,
		stats:       stats,
		queue:       queue,
		maxAttempts: maxAttempts,
	}
}

// CreateDocument 登记文档并进入处理流水线。
// 无保护的文档不需要转换，直接落 COMPLETED，不占工作池。
func (s *documentService) CreateDocument(userID string, input CreateDocumentInput) (*StatusView, error) {
	level := input.ProtectionLevel
	if level == "" {
		level = model.ProtectionNone
	}
	if !model.ValidProtectionLevel(level) {
		return nil, ErrInvalidProtection
	}

	doc := &model.Document{
		LessonID:         input.LessonID,
		UserID:           userID,
		Filename:         input.Filename,
		URL:              input.URL,
		ProtectionLevel:  level,
		ProcessingStatus: model.StatusPending,
	}

	if level == model.ProtectionNone {
		now := time.Now()
		doc.ProcessingStatus = model.StatusCompleted
		doc.ProcessingCompletedAt = &now
	}

	if err := s.repo.Create(doc); err != nil {
		return nil, err
	}

	if doc.ProcessingStatus == model.StatusPending {
		s.queue.AddTask(worker.DocumentTask{DocumentID: doc.ID})
	}
	return s.buildStatusView(doc), nil
}

func (s *documentService) GetStatus(lessonID, documentID string) (*StatusView, error) {
	doc, err := s.repo.GetByLessonAndID(lessonID, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return s.buildStatusView(doc), nil
}

func (s *documentService) Stats() (*repository.DocumentStats, error) {
	return s.stats.GetStats()
}

// buildStatusView canRetry 是展示字段：失败且尝试预算未用尽
func (s *documentService) buildStatusView(doc *model.Document) *StatusView {
	return &StatusView{
		DocumentID:            doc.ID,
		Filename:              doc.Filename,
		ProtectionLevel:       doc.ProtectionLevel,
		ProcessingStatus:      doc.ProcessingStatus,
		ProcessingError:       doc.ProcessingError,
		ProcessingAttempts:    doc.ProcessingAttempts,
		ProcessingStartedAt:   doc.ProcessingStartedAt,
		ProcessingCompletedAt: doc.ProcessingCompletedAt,
		CanRetryProcessing:    doc.ProcessingStatus == model.StatusFailed && doc.ProcessingAttempts < s.maxAttempts,
	}
}
