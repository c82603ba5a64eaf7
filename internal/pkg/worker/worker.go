package worker

import (
	"fmt"
	"strings"
	"time"

	"lms_platform/internal/domain/document/model"
	"lms_platform/internal/domain/document/repository"
	"lms_platform/pkg/logger"
	"lms_platform/pkg/metrics"

	"go.uber.org/zap"
)

// DocumentTask 待处理的文档保护任务
type DocumentTask struct {
	DocumentID string
	Retry      int // 重试次数
}

// WorkerPool 文档处理工作池：驱动 PENDING → PROCESSING → COMPLETED|FAILED
type WorkerPool struct {
	TaskQueue  chan DocumentTask
	RetryQueue chan DocumentTask // 重试队列
	Repo       repository.DocumentRepository
	WorkerNum  int
	MaxRetry   int // 最大重试次数
}

func NewWorkerPool(repo repository.DocumentRepository, workerNum, bufferSize, maxRetry int) *WorkerPool {
	if workerNum <= 0 {
		workerNum = 4
	}
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if maxRetry <= 0 {
		maxRetry = 3
	}
	return &WorkerPool{
		TaskQueue:  make(chan DocumentTask, bufferSize),
		RetryQueue: make(chan DocumentTask, bufferSize/2),
		Repo:       repo,
		WorkerNum:  workerNum,
		MaxRetry:   maxRetry,
	}
}

func (p *WorkerPool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		go p.worker(i)
	}
	// 启动重试处理协程
	go p.retryWorker()
	logger.Log.Info("document worker pool started", zap.Int("workers", p.WorkerNum))
}

func (p *WorkerPool) worker(id int) {
	for task := range p.TaskQueue {
		if err := p.processTask(task); err != nil {
			logger.Log.Warn("document processing attempt failed",
				zap.Int("worker", id),
				zap.String("document_id", task.DocumentID),
				zap.Int("attempt", task.Retry+1),
				zap.Error(err))

			// 未达最大重试次数则入重试队列，否则标记 FAILED
			if task.Retry < p.MaxRetry-1 {
				task.Retry++
				select {
				case p.RetryQueue <- task:
				default:
					logger.Log.Error("retry queue full, document marked failed",
						zap.String("document_id", task.DocumentID))
					p.fail(task, err)
				}
			} else {
				p.fail(task, err)
			}
		}
	}
}

func (p *WorkerPool) retryWorker() {
	for task := range p.RetryQueue {
		// 延迟重试，避免立即重试
		time.Sleep(time.Duration(task.Retry) * time.Second)

		select {
		case p.TaskQueue <- task:
		default:
			logger.Log.Error("main queue full, document marked failed",
				zap.String("document_id", task.DocumentID))
			p.fail(task, nil)
		}
	}
}

func (p *WorkerPool) processTask(task DocumentTask) error {
	doc, err := p.Repo.GetByID(task.DocumentID)
	if err != nil {
		return err
	}
	if doc.Terminal() {
		return nil
	}

	if err := p.Repo.MarkProcessing(doc.ID); err != nil {
		return err
	}

	if err := applyProtection(doc); err != nil {
		return err
	}

	if err := p.Repo.MarkCompleted(doc.ID); err != nil {
		return err
	}
	metrics.DocumentsProcessedTotal.WithLabelValues(model.StatusCompleted).Inc()
	return nil
}

// applyProtection 开发环境的处理模拟：按保护级别耗时不同；
// 文件名含 corrupt 的文档确定性失败，方便端到端演示失败路径
func applyProtection(doc *model.Document) error {
	if strings.Contains(strings.ToLower(doc.Filename), "corrupt") {
		return fmt.Errorf("corrupt upload during conversion")
	}

	switch doc.ProtectionLevel {
	case model.ProtectionWatermark:
		time.Sleep(2 * time.Second)
	case model.ProtectionFull:
		time.Sleep(5 * time.Second)
	default:
		time.Sleep(500 * time.Millisecond)
	}
	return nil
}

// fail 终态失败：写入错误信息供客户端展示
func (p *WorkerPool) fail(task DocumentTask, cause error) {
	message := "Document processing failed"
	if cause != nil {
		message = cause.Error()
	}
	if err := p.Repo.MarkFailed(task.DocumentID, message); err != nil {
		logger.Log.Error("failed to mark document failed",
			zap.String("document_id", task.DocumentID), zap.Error(err))
		return
	}
	metrics.DocumentsProcessedTotal.WithLabelValues(model.StatusFailed).Inc()
}

// AddTask 任务入队，队列满时直接标记失败而不是阻塞上传请求
func (p *WorkerPool) AddTask(task DocumentTask) {
	select {
	case p.TaskQueue <- task:
	default:
		logger.Log.Error("worker pool queue full, document marked failed",
			zap.String("document_id", task.DocumentID))
		p.fail(task, fmt.Errorf("processing queue is full"))
	}
}
