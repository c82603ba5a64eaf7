package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"lms_platform/internal/domain/community/service"
	"lms_platform/pkg/response"
	"lms_platform/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CommunityHandler 讨论区接口。客户端直接消费这些端点，
// 响应体是裸 JSON 形状而不是统一信封 (形状即契约)。
type CommunityHandler struct {
	service service.CommunityService
}

func NewCommunityHandler(s service.CommunityService) *CommunityHandler {
	return &CommunityHandler{service: s}
}

// CreatePostInput 发帖输入
type CreatePostInput struct {
	LessonID    string          `json:"lessonId" binding:"required"`
	Type        string          `json:"type" binding:"omitempty,oneof=text image video"`
	Content     string          `json:"content" binding:"required"`
	Hashtags    []string        `json:"hashtags"`
	Attachments json.RawMessage `json:"attachments"`
}

// CommentInput 评论/回复输入
type CommentInput struct {
	Content     string          `json:"content" binding:"required"`
	ParentID    string          `json:"parentId"`
	Attachments json.RawMessage `json:"attachments"`
}

// PostReactionInput 帖子反应输入，null 表示移除
type PostReactionInput struct {
	Type *string `json:"type"`
}

// CommentReactionInput 评论反应输入，键名与帖子端点不同 (历史契约)
type CommentReactionInput struct {
	ReactionType *string `json:"reactionType"`
}

// GetFeed 获取帖子流
// @Summary 获取帖子流
// @Tags Community
// @Param lessonId query string false "Lesson ID"
// @Param type query string false "Post type"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} service.FeedPage
// @Router /community/posts [get]
func (h *CommunityHandler) GetFeed(c *gin.Context) {
	var p utils.Pagination
	c.ShouldBindQuery(&p)
	p.GetPageOffset()

	feed, err := h.service.GetFeed(getUserIdFromContext(c),
		c.Query("lessonId"), c.Query("type"), p.Page, p.Limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

// GetComments 获取帖子的评论树
// @Summary 获取评论树
// @Tags Community
// @Param id path string true "Post ID"
// @Success 200 {object} map[string][]service.CommentView
// @Router /community/posts/{id}/comments [get]
func (h *CommunityHandler) GetComments(c *gin.Context) {
	comments, err := h.service.GetPostComments(getUserIdFromContext(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// CreatePost 发布帖子
// @Summary 发布帖子
// @Tags Community
// @Accept json
// @Param input body CreatePostInput true "帖子内容"
// @Success 200 {object} map[string]service.PostView
// @Router /community/posts [post]
func (h *CommunityHandler) CreatePost(c *gin.Context) {
	var input CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	post, err := h.service.CreatePost(getUserIdFromContext(c), service.CreatePostInput{
		LessonID:    input.LessonID,
		Type:        input.Type,
		Content:     input.Content,
		Hashtags:    input.Hashtags,
		Attachments: input.Attachments,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// AddComment 发表评论/回复
// @Summary 发表评论
// @Tags Community
// @Accept json
// @Param id path string true "Post ID"
// @Param input body CommentInput true "评论内容"
// @Success 200 {object} map[string]service.CommentView
// @Router /community/posts/{id}/comments [post]
func (h *CommunityHandler) AddComment(c *gin.Context) {
	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	comment, err := h.service.AddComment(getUserIdFromContext(c),
		c.Param("id"), input.ParentID, input.Content, input.Attachments)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

// ReactToPost 对帖子做出/移除反应
// @Summary 帖子反应
// @Tags Community
// @Accept json
// @Param id path string true "Post ID"
// @Param input body PostReactionInput true "反应类型，null 表示移除"
// @Success 200 {object} service.ReactionSummary
// @Router /community/posts/{id}/reactions [post]
func (h *CommunityHandler) ReactToPost(c *gin.Context) {
	var input PostReactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	summary, err := h.service.React(getUserIdFromContext(c), c.Param("id"), "post", input.Type)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ReactToComment 对评论做出/移除反应
// @Summary 评论反应
// @Tags Community
// @Accept json
// @Param id path string true "Comment ID"
// @Param input body CommentReactionInput true "反应类型，null 表示移除"
// @Success 200 {object} service.ReactionSummary
// @Router /community/comments/{id}/reactions [post]
func (h *CommunityHandler) ReactToComment(c *gin.Context) {
	var input CommentReactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	summary, err := h.service.React(getUserIdFromContext(c), c.Param("id"), "comment", input.ReactionType)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// writeError 业务错误到 HTTP 状态码/错误码的映射
func (h *CommunityHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		response.Error(c, http.StatusNotFound, response.ErrPostNotFound, err.Error())
	case errors.Is(err, service.ErrCommentNotFound):
		response.Error(c, http.StatusNotFound, response.ErrCommentNotFound, err.Error())
	case errors.Is(err, service.ErrParentMismatch):
		response.Error(c, http.StatusBadRequest, response.ErrCommentNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidReaction):
		response.Error(c, http.StatusBadRequest, response.ErrReactionInvalid, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
	}
}

func getUserIdFromContext(c *gin.Context) string {
	val, _ := c.Get("userID")
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}
