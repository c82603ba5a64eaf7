package uploader

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"lms_platform/internal/pkg/config"
	"lms_platform/pkg/logger"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Uploader 附件存储。返回可直接进入帖子载荷的公开 URL。
type Uploader interface {
	UploadFile(file *multipart.FileHeader) (string, error)
}

type AliyunOSSUploader struct {
	client *oss.Client
	bucket *oss.Bucket
	config config.OSSConfig
}

func NewAliyunOSSUploader() (*AliyunOSSUploader, error) {
	cfg := config.GlobalConfig.OSS
	if cfg.Endpoint == "" || cfg.BucketName == "" {
		return nil, fmt.Errorf("oss config is missing")
	}

	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, err
	}

	return &AliyunOSSUploader{
		client: client,
		bucket: bucket,
		config: cfg,
	}, nil
}

func (u *AliyunOSSUploader) UploadFile(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// 对象名：YYYYMMDD/uuid.ext
	ext := filepath.Ext(file.Filename)
	filename := fmt.Sprintf("%s/%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)

	if err := u.bucket.PutObject(filename, src); err != nil {
		return "", err
	}

	// 假设 bucket 公共读或走 CDN，私有桶需要签名 URL
	url := fmt.Sprintf("https://%s.%s/%s", u.config.BucketName, u.config.Endpoint, filename)
	return url, nil
}

// LocalUploader 开发环境落盘实现，文件由 /static 静态路由提供
type LocalUploader struct {
	Dir string
}

func (u *LocalUploader) UploadFile(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	ext := filepath.Ext(file.Filename)
	filename := uuid.New().String() + ext

	if err := os.MkdirAll(u.Dir, 0o755); err != nil {
		return "", err
	}
	dst, err := os.Create(filepath.Join(u.Dir, filename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return "/static/" + filename, nil
}

// GlobalUploader instance
var GlobalUploader Uploader

// InitUploader OSS 凭证缺失时退化为本地落盘，不阻塞启动
func InitUploader() error {
	ossUploader, err := NewAliyunOSSUploader()
	if err != nil {
		logger.Log.Warn("aliyun oss unavailable, using local uploader", zap.Error(err))
		GlobalUploader = &LocalUploader{Dir: "./uploads"}
		return nil
	}
	GlobalUploader = ossUploader
	return nil
}
