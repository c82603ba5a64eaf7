package handler

import (
	"errors"
	"net/http"

	"lms_platform/internal/domain/document/service"
	"lms_platform/pkg/response"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	service service.DocumentService
}

func NewDocumentHandler(s service.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: s}
}

// CreateDocumentInput 文档登记输入
type CreateDocumentInput struct {
	Filename        string `json:"filename" binding:"required"`
	URL             string `json:"url"`
	ProtectionLevel string `json:"protectionLevel" binding:"omitempty,oneof=NONE WATERMARK FULL"`
}

// GetStatus 查询文档处理状态
// 轮询客户端直接消费，响应是裸 StatusView 而不是统一信封
// @Summary 文档处理状态
// @Tags Document
// @Param lessonId path string true "Lesson ID"
// @Param documentId path string true "Document ID"
// @Success 200 {object} service.StatusView
// @Router /lessons/{lessonId}/documents/{documentId}/status [get]
func (h *DocumentHandler) GetStatus(c *gin.Context) {
	view, err := h.service.GetStatus(c.Param("lessonId"), c.Param("documentId"))
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrDocumentNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	c.JSON(http.StatusOK, view)
}

// CreateDocument 登记课程文档并触发保护处理
// @Summary 登记文档
// @Tags Document
// @Accept json
// @Param lessonId path string true "Lesson ID"
// @Param input body CreateDocumentInput true "文档信息"
// @Success 200 {object} service.StatusView
// @Router /lessons/{lessonId}/documents [post]
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	var input CreateDocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID, _ := c.Get("userID")
	uid, _ := userID.(string)

	view, err := h.service.CreateDocument(uid, service.CreateDocumentInput{
		LessonID:        c.Param("lessonId"),
		Filename:        input.Filename,
		URL:             input.URL,
		ProtectionLevel: input.ProtectionLevel,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidProtection) {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, view)
}

// GetStats 文档处理聚合统计
// @Summary 文档处理统计
// @Tags Document
// @Success 200 {object} repository.DocumentStats
// @Router /documents/stats [get]
func (h *DocumentHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, stats)
}
