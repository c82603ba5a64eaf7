package community

import (
	"context"
	"io"

	"go.uber.org/zap"
)

// AttachmentFile 待上传的本地文件
type AttachmentFile struct {
	Filename string
	MimeType string
	Content  io.Reader
}

type uploadEnvelope struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Data    []Attachment `json:"data"`
}

// UploadAttachments 逐个顺序上传附件 (不并发，最坏耗时为各次之和)。
// 上传失败的文件直接从结果中丢弃，只记日志，不向调用方逐个报错；
// 返回的描述符列表即最终可进入提交载荷的附件。
func (t *ThreadState) UploadAttachments(ctx context.Context, files []AttachmentFile) []Attachment {
	var uploaded []Attachment
	for _, f := range files {
		var env uploadEnvelope
		if err := t.api.UploadFile(ctx, "/upload", "files", f.Filename, f.Content, &env); err != nil {
			t.log.Warn("attachment upload failed, dropped from submission",
				zap.String("filename", f.Filename), zap.Error(err))
			continue
		}
		if env.Code != 0 || len(env.Data) == 0 {
			t.log.Warn("attachment upload rejected, dropped from submission",
				zap.String("filename", f.Filename), zap.String("message", env.Message))
			continue
		}
		uploaded = append(uploaded, env.Data...)
	}
	return uploaded
}
