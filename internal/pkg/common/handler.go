package common

import (
	"net/http"
	"strings"

	"lms_platform/internal/pkg/config"
	"lms_platform/internal/pkg/middleware"
	"lms_platform/internal/pkg/uploader"
	"lms_platform/pkg/response"
	"lms_platform/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AttachmentInfo 上传成功后返回的附件描述符，
// 客户端把它原样放进发帖载荷
type AttachmentInfo struct {
	ID       string `json:"id"`
	Type     string `json:"type"` // IMAGE, VIDEO, DOCUMENT
	URL      string `json:"url"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

func attachmentType(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "IMAGE"
	case strings.HasPrefix(mimeType, "video/"):
		return "VIDEO"
	default:
		return "DOCUMENT"
	}
}

// UploadFile 上传附件 (支持批量)
// 逐个顺序处理，保持与请求一致的顺序；任一文件失败则整个请求失败，
// 客户端按文件逐次调用时天然得到逐文件的成败
// @Summary 上传附件
// @Tags Common
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files"
// @Success 200 {object} response.Response{data=[]AttachmentInfo}
// @Router /upload [post]
func UploadFile(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid form data")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "No files uploaded")
		return
	}

	if uploader.GlobalUploader == nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Uploader not initialized")
		return
	}

	attachments := make([]AttachmentInfo, 0, len(files))
	for _, file := range files {
		url, err := uploader.GlobalUploader.UploadFile(file)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Upload failed: "+err.Error())
			return
		}
		mimeType := file.Header.Get("Content-Type")
		attachments = append(attachments, AttachmentInfo{
			ID:       uuid.New().String(),
			Type:     attachmentType(mimeType),
			URL:      url,
			MimeType: mimeType,
			Size:     file.Size,
		})
	}

	response.Success(c, attachments)
}

// DevTokenInput 开发 token 输入
type DevTokenInput struct {
	UserID string `json:"userId"`
	Admin  bool   `json:"admin"`
}

// DevToken 签发开发用 JWT，仅 debug 模式开放。
// 客户端/CLI 对着本地服务跑时用它拿凭证。
// @Summary 签发开发 token
// @Tags Common
// @Accept json
// @Param input body DevTokenInput false "用户信息"
// @Success 200 {object} response.Response
// @Router /auth/dev_token [post]
func DevToken(c *gin.Context) {
	if !config.GlobalConfig.App.Debug {
		response.Error(c, http.StatusForbidden, response.ErrNoPermission, "dev token is disabled outside debug mode")
		return
	}

	var input DevTokenInput
	_ = c.ShouldBindJSON(&input)

	userID := input.UserID
	if userID == "" {
		userID = uuid.New().String()
	}
	role := middleware.RoleUser
	if input.Admin {
		role = middleware.RoleAdmin
	}

	token, expireAt, err := utils.GenerateToken(userID, role)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, gin.H{
		"token":    token,
		"userId":   userID,
		"expireAt": expireAt,
	})
}
