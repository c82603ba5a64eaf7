// Package docstatus 跟踪课件文档在服务端的处理进度。
// 处理状态完全由服务端驱动，客户端只做只读观察：
// PENDING → PROCESSING → {COMPLETED | FAILED}。
package docstatus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lms_platform/internal/client"
	"lms_platform/pkg/metrics"
)

// Status 文档处理状态
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Terminal 是否为终态 (不再发生迁移)
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ProtectionLevel 文档保护级别，NONE 的文档不需要处理
type ProtectionLevel string

const (
	ProtectionNone      ProtectionLevel = "NONE"
	ProtectionWatermark ProtectionLevel = "WATERMARK"
	ProtectionFull      ProtectionLevel = "FULL"
)

// DocumentStatus 服务端上报的文档处理状态快照
type DocumentStatus struct {
	DocumentID            string          `json:"documentId"`
	Filename              string          `json:"filename"`
	ProtectionLevel       ProtectionLevel `json:"protectionLevel"`
	ProcessingStatus      Status          `json:"processingStatus"`
	ProcessingError       string          `json:"processingError,omitempty"`
	ProcessingAttempts    int             `json:"processingAttempts"`
	ProcessingStartedAt   *time.Time      `json:"processingStartedAt,omitempty"`
	ProcessingCompletedAt *time.Time      `json:"processingCompletedAt,omitempty"`
	CanRetryProcessing    bool            `json:"canRetryProcessing"`
}

// Ref 定位一份文档
type Ref struct {
	LessonID   string
	DocumentID string
}

const (
	defaultInterval    = 10 * time.Second
	defaultMaxAttempts = 30 // 配合 10s 间隔，总计 5 分钟

	failedDefaultMessage = "document processing failed"
	timeoutMessage       = "document processing did not finish within the polling window"
	cancelledMessage     = "status polling cancelled"
)

// ErrPollTimeout 轮询次数用尽仍未见终态
var ErrPollTimeout = errors.New(timeoutMessage)

// ErrPollInProgress 同一个 Watcher 上已有轮询在跑
var ErrPollInProgress = errors.New("a poll loop is already running on this watcher")

// ProcessingFailedError 服务端判定处理失败
type ProcessingFailedError struct {
	Message string
}

func (e *ProcessingFailedError) Error() string { return e.Message }

// Watcher 轮询文档处理状态直至终态。
// 同一实例同时只允许一个轮询循环；每次拉取都会触发状态回调，
// 不对重复状态去重。
type Watcher struct {
	api         *client.Client
	interval    time.Duration
	maxAttempts int
	onStatus    func(*DocumentStatus)

	mu      sync.Mutex
	polling bool
	last    *DocumentStatus
	lastErr string
}

// NewWatcher 创建状态观察器，10 秒间隔 / 30 次上限
func NewWatcher(api *client.Client) *Watcher {
	return &Watcher{
		api:         api,
		interval:    defaultInterval,
		maxAttempts: defaultMaxAttempts,
	}
}

// OnStatus 注册状态回调，每次成功拉取都会触发
func (w *Watcher) OnStatus(fn func(*DocumentStatus)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onStatus = fn
}

// Polling 当前是否有轮询循环在运行
func (w *Watcher) Polling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

// LastStatus 最近一次成功拉取到的状态
func (w *Watcher) LastStatus() *DocumentStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// LastError 最近一次失败的可读描述，成功后清空
func (w *Watcher) LastError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// FetchStatus 拉取一次当前状态
func (w *Watcher) FetchStatus(ctx context.Context, ref Ref) (*DocumentStatus, error) {
	path := fmt.Sprintf("/lessons/%s/documents/%s/status", ref.LessonID, ref.DocumentID)

	var st DocumentStatus
	if err := w.api.GetJSON(ctx, path, &st); err != nil {
		return nil, err
	}

	metrics.StatusPollTicksTotal.WithLabelValues(string(st.ProcessingStatus)).Inc()

	w.mu.Lock()
	w.last = &st
	w.lastErr = ""
	cb := w.onStatus
	w.mu.Unlock()

	if cb != nil {
		cb(&st)
	}
	return &st, nil
}

// PollUntilTerminal 以固定间隔重复拉取状态，直到终态、出错、取消或次数用尽。
// 下一次拉取总是在上一次返回之后才计时，请求不会重叠。
// 任何一次拉取失败都会立刻终止本轮轮询。
func (w *Watcher) PollUntilTerminal(ctx context.Context, ref Ref) (*DocumentStatus, error) {
	w.mu.Lock()
	if w.polling {
		w.mu.Unlock()
		return nil, ErrPollInProgress
	}
	w.polling = true
	w.mu.Unlock()
	defer w.setPolling(false)

	timer := time.NewTimer(w.interval)
	defer timer.Stop()

	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			w.recordError(cancelledMessage)
			return nil, ctx.Err()
		case <-timer.C:
		}

		st, err := w.FetchStatus(ctx, ref)
		if err != nil {
			w.recordError(err.Error())
			return nil, err
		}

		switch st.ProcessingStatus {
		case StatusCompleted:
			return st, nil
		case StatusFailed:
			msg := st.ProcessingError
			if msg == "" {
				msg = failedDefaultMessage
			}
			w.recordError(msg)
			return nil, &ProcessingFailedError{Message: msg}
		}

		timer.Reset(w.interval)
	}

	w.recordError(timeoutMessage)
	return nil, ErrPollTimeout
}

// CheckAndWait 先拉取一次：已是终态则直接返回，否则进入轮询。
// 避免首次结果已确定时还要白等一个轮询周期。
func (w *Watcher) CheckAndWait(ctx context.Context, ref Ref) (*DocumentStatus, error) {
	st, err := w.FetchStatus(ctx, ref)
	if err != nil {
		w.recordError(err.Error())
		return nil, err
	}

	switch st.ProcessingStatus {
	case StatusCompleted:
		return st, nil
	case StatusFailed:
		msg := st.ProcessingError
		if msg == "" {
			msg = failedDefaultMessage
		}
		w.recordError(msg)
		return nil, &ProcessingFailedError{Message: msg}
	}

	return w.PollUntilTerminal(ctx, ref)
}

func (w *Watcher) setPolling(v bool) {
	w.mu.Lock()
	w.polling = v
	w.mu.Unlock()
}

func (w *Watcher) recordError(msg string) {
	w.mu.Lock()
	w.lastErr = msg
	w.mu.Unlock()
}
