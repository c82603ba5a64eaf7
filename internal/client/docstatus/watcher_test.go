package docstatus

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lms_platform/internal/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStatusAPI 按脚本顺序返回状态，超出脚本后重复最后一个
type fakeStatusAPI struct {
	mu       sync.Mutex
	sequence []DocumentStatus
	fetches  int

	latency     time.Duration
	failFrom    int // 从第 N 次请求开始返回 500，0 表示不失败
	inFlight    int32
	maxInFlight int32
}

func (f *fakeStatusAPI) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cur := atomic.AddInt32(&f.inFlight, 1)
		for {
			max := atomic.LoadInt32(&f.maxInFlight)
			if cur <= max || atomic.CompareAndSwapInt32(&f.maxInFlight, max, cur) {
				break
			}
		}
		defer atomic.AddInt32(&f.inFlight, -1)

		if f.latency > 0 {
			time.Sleep(f.latency)
		}

		f.mu.Lock()
		f.fetches++
		n := f.fetches
		idx := n - 1
		if idx >= len(f.sequence) {
			idx = len(f.sequence) - 1
		}
		st := f.sequence[idx]
		f.mu.Unlock()

		if f.failFrom > 0 && n >= f.failFrom {
			http.Error(w, "backend unavailable", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(st)
	}
}

func (f *fakeStatusAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func doc(s Status) DocumentStatus {
	return DocumentStatus{
		DocumentID:       "doc-1",
		Filename:         "slides.pdf",
		ProtectionLevel:  ProtectionWatermark,
		ProcessingStatus: s,
	}
}

func newTestWatcher(t *testing.T, f *fakeStatusAPI) *Watcher {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	api := client.New(srv.URL, client.StaticToken("test-token"), 2*time.Second, 0, nil)
	w := NewWatcher(api)
	w.interval = time.Millisecond
	return w
}

var testRef = Ref{LessonID: "lesson-1", DocumentID: "doc-1"}

func TestCheckAndWait(t *testing.T) {
	t.Run("resolves once status reaches COMPLETED", func(t *testing.T) {
		f := &fakeStatusAPI{sequence: []DocumentStatus{
			doc(StatusPending),
			doc(StatusProcessing),
			doc(StatusProcessing),
			doc(StatusCompleted),
		}}
		w := newTestWatcher(t, f)

		st, err := w.CheckAndWait(context.Background(), testRef)

		require.NoError(t, err)
		require.NotNil(t, st)
		assert.Equal(t, StatusCompleted, st.ProcessingStatus)
		assert.Equal(t, 4, f.count())

		// 终态之后不应再有任何请求
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, 4, f.count())
		assert.False(t, w.Polling())
		assert.Empty(t, w.LastError())
	})

	t.Run("FAILED on first fetch short-circuits without polling", func(t *testing.T) {
		failed := doc(StatusFailed)
		failed.ProcessingError = "corrupt upload during conversion"
		f := &fakeStatusAPI{sequence: []DocumentStatus{failed}}
		w := newTestWatcher(t, f)

		st, err := w.CheckAndWait(context.Background(), testRef)

		assert.Nil(t, st)
		var pf *ProcessingFailedError
		require.True(t, errors.As(err, &pf))
		assert.Equal(t, "corrupt upload during conversion", pf.Message)
		assert.Equal(t, "corrupt upload during conversion", w.LastError())
		assert.Equal(t, 1, f.count())
	})

	t.Run("FAILED without server message uses the default", func(t *testing.T) {
		f := &fakeStatusAPI{sequence: []DocumentStatus{doc(StatusFailed)}}
		w := newTestWatcher(t, f)

		st, err := w.CheckAndWait(context.Background(), testRef)

		assert.Nil(t, st)
		var pf *ProcessingFailedError
		require.True(t, errors.As(err, &pf))
		assert.Equal(t, failedDefaultMessage, pf.Message)
	})

	t.Run("COMPLETED on first fetch never enters the poll loop", func(t *testing.T) {
		f := &fakeStatusAPI{sequence: []DocumentStatus{doc(StatusCompleted)}}
		w := newTestWatcher(t, f)

		st, err := w.CheckAndWait(context.Background(), testRef)

		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, st.ProcessingStatus)
		assert.Equal(t, 1, f.count())
	})
}

func TestPollUntilTerminal(t *testing.T) {
	t.Run("exhausts the attempt budget then times out", func(t *testing.T) {
		f := &fakeStatusAPI{sequence: []DocumentStatus{doc(StatusProcessing)}}
		w := newTestWatcher(t, f)

		st, err := w.PollUntilTerminal(context.Background(), testRef)

		assert.Nil(t, st)
		assert.ErrorIs(t, err, ErrPollTimeout)
		assert.Equal(t, 30, f.count())
		assert.Equal(t, timeoutMessage, w.LastError())
		assert.False(t, w.Polling())
	})

	t.Run("a single fetch error aborts the whole session", func(t *testing.T) {
		f := &fakeStatusAPI{
			sequence: []DocumentStatus{doc(StatusPending)},
			failFrom: 2,
		}
		w := newTestWatcher(t, f)

		st, err := w.CheckAndWait(context.Background(), testRef)

		assert.Nil(t, st)
		assert.True(t, client.IsTransient(err))
		assert.Equal(t, 2, f.count())
		assert.NotEmpty(t, w.LastError())
	})

	t.Run("ticks never overlap even when fetch latency exceeds the interval", func(t *testing.T) {
		f := &fakeStatusAPI{
			sequence: []DocumentStatus{doc(StatusProcessing)},
			latency:  15 * time.Millisecond,
		}
		w := newTestWatcher(t, f)
		w.maxAttempts = 5

		_, err := w.PollUntilTerminal(context.Background(), testRef)

		assert.ErrorIs(t, err, ErrPollTimeout)
		assert.Equal(t, 5, f.count())
		assert.Equal(t, int32(1), atomic.LoadInt32(&f.maxInFlight))
	})

	t.Run("context cancellation stops the loop", func(t *testing.T) {
		f := &fakeStatusAPI{sequence: []DocumentStatus{doc(StatusProcessing)}}
		w := newTestWatcher(t, f)
		w.interval = 5 * time.Millisecond

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(12 * time.Millisecond)
			cancel()
		}()

		st, err := w.PollUntilTerminal(ctx, testRef)

		assert.Nil(t, st)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, cancelledMessage, w.LastError())
		assert.False(t, w.Polling())
	})

	t.Run("a second concurrent loop on the same watcher is rejected", func(t *testing.T) {
		f := &fakeStatusAPI{
			sequence: []DocumentStatus{doc(StatusProcessing)},
			latency:  30 * time.Millisecond,
		}
		w := newTestWatcher(t, f)
		w.maxAttempts = 3

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = w.PollUntilTerminal(context.Background(), testRef)
		}()

		// 等第一个循环占住 watcher
		require.Eventually(t, w.Polling, time.Second, time.Millisecond)

		_, err := w.PollUntilTerminal(context.Background(), testRef)
		assert.ErrorIs(t, err, ErrPollInProgress)
		<-done
	})
}

func TestFetchStatus(t *testing.T) {
	t.Run("status callback fires on every fetch, duplicates included", func(t *testing.T) {
		f := &fakeStatusAPI{sequence: []DocumentStatus{
			doc(StatusProcessing),
			doc(StatusProcessing),
			doc(StatusProcessing),
			doc(StatusCompleted),
		}}
		w := newTestWatcher(t, f)

		var seen []Status
		var mu sync.Mutex
		w.OnStatus(func(st *DocumentStatus) {
			mu.Lock()
			seen = append(seen, st.ProcessingStatus)
			mu.Unlock()
		})

		_, err := w.CheckAndWait(context.Background(), testRef)

		require.NoError(t, err)
		assert.Equal(t, []Status{
			StatusProcessing, StatusProcessing, StatusProcessing, StatusCompleted,
		}, seen)
	})

	t.Run("missing credential fails before any network call", func(t *testing.T) {
		f := &fakeStatusAPI{sequence: []DocumentStatus{doc(StatusPending)}}
		srv := httptest.NewServer(f.handler())
		t.Cleanup(srv.Close)

		api := client.New(srv.URL, client.StaticToken(""), time.Second, 0, nil)
		w := NewWatcher(api)

		_, err := w.FetchStatus(context.Background(), testRef)

		assert.ErrorIs(t, err, client.ErrUnauthorized)
		assert.Equal(t, 0, f.count())
	})

	t.Run("unknown document maps to ErrNotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		t.Cleanup(srv.Close)

		api := client.New(srv.URL, client.StaticToken("test-token"), time.Second, 0, nil)
		w := NewWatcher(api)

		_, err := w.FetchStatus(context.Background(), testRef)
		assert.ErrorIs(t, err, client.ErrNotFound)
	})
}
