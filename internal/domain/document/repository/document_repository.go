package repository

import (
	"time"

	"lms_platform/internal/domain/document/model"

	"gorm.io/gorm"
)

type DocumentRepository interface {
	Create(doc *model.Document) error
	GetByID(id string) (*model.Document, error)
	GetByLessonAndID(lessonID, id string) (*model.Document, error)

	MarkProcessing(id string) error
	MarkCompleted(id string) error
	MarkFailed(id string, message string) error
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(doc *model.Document) error {
	return r.db.Create(doc).Error
}

func (r *documentRepository) GetByID(id string) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) GetByLessonAndID(lessonID, id string) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("lesson_id = ? AND id = ?", lessonID, id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// MarkProcessing 进入处理中：记录开始时间并累加尝试次数
func (r *documentRepository) MarkProcessing(id string) error {
	now := time.Now()
	return r.db.Model(&model.Document{}).Where("id = ?", id).Updates(map[string]interface{}{
		"processing_status":     model.StatusProcessing,
		"processing_started_at": &now,
		"processing_error":      "",
		"processing_attempts":   gorm.Expr("processing_attempts + 1"),
	}).Error
}

func (r *documentRepository) MarkCompleted(id string) error {
	now := time.Now()
	return r.db.Model(&model.Document{}).Where("id = ?", id).Updates(map[string]interface{}{
		"processing_status":       model.StatusCompleted,
		"processing_completed_at": &now,
		"processing_error":        "",
	}).Error
}

func (r *documentRepository) MarkFailed(id string, message string) error {
	now := time.Now()
	return r.db.Model(&model.Document{}).Where("id = ?", id).Updates(map[string]interface{}{
		"processing_status":       model.StatusFailed,
		"processing_completed_at": &now,
		"processing_error":        message,
	}).Error
}
