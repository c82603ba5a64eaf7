package model

import (
	"time"

	baseModel "lms_platform/pkg/model"
)

// 保护级别
const (
	ProtectionNone      = "NONE"
	ProtectionWatermark = "WATERMARK"
	ProtectionFull      = "FULL"
)

// 处理状态机：PENDING → PROCESSING → COMPLETED | FAILED。
// 状态只在服务端推进，客户端是被动观察者。
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// ValidProtectionLevel 是否为合法保护级别
func ValidProtectionLevel(level string) bool {
	switch level {
	case ProtectionNone, ProtectionWatermark, ProtectionFull:
		return true
	}
	return false
}

// Document 课程文档及其处理流水线字段
type Document struct {
	baseModel.BaseModel
	LessonID        string `gorm:"index" json:"lessonId"`
	UserID          string `json:"userId"`
	Filename        string `json:"filename"`
	URL             string `json:"url"`
	ProtectionLevel string `gorm:"default:'NONE'" json:"protectionLevel"`

	ProcessingStatus      string     `gorm:"default:'PENDING';index" json:"processingStatus"`
	ProcessingError       string     `json:"processingError"`
	ProcessingAttempts    int        `gorm:"default:0" json:"processingAttempts"`
	ProcessingStartedAt   *time.Time `json:"processingStartedAt"`
	ProcessingCompletedAt *time.Time `json:"processingCompletedAt"`
}

// Terminal 是否已到终态
func (d *Document) Terminal() bool {
	return d.ProcessingStatus == StatusCompleted || d.ProcessingStatus == StatusFailed
}
