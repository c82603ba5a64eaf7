package community

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"lms_platform/internal/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploadServer struct {
	calls    atomic.Int32
	failCall int32 // 第 n 次调用返回 500，0 表示不失败
	rejCall  int32 // 第 n 次调用返回业务错误码
}

func (f *fakeUploadServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := f.calls.Add(1)
		if n == f.failCall {
			http.Error(w, "storage unavailable", http.StatusInternalServerError)
			return
		}

		err := r.ParseMultipartForm(32 << 20)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fh := r.MultipartForm.File["files"]
		if len(fh) != 1 {
			http.Error(w, "expected exactly one file per request", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if n == f.rejCall {
			_, _ = io.WriteString(w, `{"code":500,"message":"unsupported media type","data":null}`)
			return
		}
		name := fh[0].Filename
		_, _ = io.WriteString(w, `{"code":0,"message":"success","data":[{"id":"att-`+name+
			`","type":"IMAGE","url":"https://cdn.example.com/`+name+`","mimeType":"image/png","size":1024}]}`)
	}
}

func newUploadThread(t *testing.T, f *fakeUploadServer) *ThreadState {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	api := client.New(srv.URL, client.StaticToken("test-token"), 2*time.Second, 0, nil)
	return NewThreadState(api, "lesson-1", "", nil)
}

func testFiles(names ...string) []AttachmentFile {
	files := make([]AttachmentFile, 0, len(names))
	for _, n := range names {
		files = append(files, AttachmentFile{
			Filename: n,
			MimeType: "image/png",
			Content:  strings.NewReader("fake png bytes for " + n),
		})
	}
	return files
}

func TestUploadAttachments(t *testing.T) {
	ctx := context.Background()

	t.Run("all succeed, order preserved", func(t *testing.T) {
		f := &fakeUploadServer{}
		ts := newUploadThread(t, f)

		got := ts.UploadAttachments(ctx, testFiles("a.png", "b.png", "c.png"))
		require.Len(t, got, 3)
		assert.Equal(t, "att-a.png", got[0].ID)
		assert.Equal(t, "att-b.png", got[1].ID)
		assert.Equal(t, "att-c.png", got[2].ID)
		assert.Equal(t, int32(3), f.calls.Load())
	})

	t.Run("transport failure drops only that file", func(t *testing.T) {
		f := &fakeUploadServer{failCall: 2}
		ts := newUploadThread(t, f)

		got := ts.UploadAttachments(ctx, testFiles("a.png", "b.png", "c.png"))
		require.Len(t, got, 2)
		assert.Equal(t, "att-a.png", got[0].ID)
		assert.Equal(t, "att-c.png", got[1].ID)
		// 失败不中断序列，剩余文件照常上传
		assert.Equal(t, int32(3), f.calls.Load())
	})

	t.Run("business rejection drops only that file", func(t *testing.T) {
		f := &fakeUploadServer{rejCall: 1}
		ts := newUploadThread(t, f)

		got := ts.UploadAttachments(ctx, testFiles("a.png", "b.png"))
		require.Len(t, got, 1)
		assert.Equal(t, "att-b.png", got[0].ID)
	})

	t.Run("no files means no requests", func(t *testing.T) {
		f := &fakeUploadServer{}
		ts := newUploadThread(t, f)

		assert.Empty(t, ts.UploadAttachments(ctx, nil))
		assert.Equal(t, int32(0), f.calls.Load())
	})
}
