package service

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"lms_platform/internal/domain/community/model"
	"lms_platform/internal/domain/community/repository"
	"lms_platform/internal/pkg/push"
	"lms_platform/pkg/logger"
	"lms_platform/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrParentMismatch  = errors.New("parent comment does not belong to this post")
	ErrInvalidReaction = errors.New("invalid reaction kind")
)

// AuthorView 内容作者视图
type AuthorView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReactionSummary 某个目标的反应计数和当前用户的激活反应
type ReactionSummary struct {
	Reactions     map[string]int `json:"reactions"`
	UserReactions []string       `json:"userReactions"`
}

// CommentView 按客户端消费形状组织的评论视图
type CommentView struct {
	ID            string          `json:"id"`
	PostID        string          `json:"postId"`
	ParentID      string          `json:"parentId,omitempty"`
	Content       string          `json:"content"`
	Author        AuthorView      `json:"author"`
	Reactions     map[string]int  `json:"reactions"`
	UserReactions []string        `json:"userReactions"`
	Attachments   json.RawMessage `json:"attachments,omitempty"`
	Replies       []*CommentView  `json:"replies,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// PostView 按客户端消费形状组织的帖子视图
type PostView struct {
	ID            string          `json:"id"`
	LessonID      string          `json:"lessonId"`
	Type          string          `json:"type"`
	Content       string          `json:"content"`
	Author        AuthorView      `json:"author"`
	Hashtags      json.RawMessage `json:"hashtags,omitempty"`
	Reactions     map[string]int  `json:"reactions"`
	UserReactions []string        `json:"userReactions"`
	Attachments   json.RawMessage `json:"attachments,omitempty"`
	CommentCount  int64           `json:"commentCount"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// PageView 分页信封
type PageView struct {
	Page    int  `json:"page"`
	HasNext bool `json:"hasNext"`
}

// FeedPage 帖子流的一页
type FeedPage struct {
	Posts      []*PostView `json:"posts"`
	Pagination PageView    `json:"pagination"`
}

// CreatePostInput 发帖输入
type CreatePostInput struct {
	LessonID    string
	Type        string
	Content     string
	Hashtags    []string
	Attachments json.RawMessage
}

type CommunityService interface {
	GetFeed(userID, lessonID, postType string, page, limit int) (*FeedPage, error)
	GetPostComments(userID, postID string) ([]*CommentView, error)
	CreatePost(userID string, input CreatePostInput) (*PostView, error)
	AddComment(userID, postID, parentID, content string, attachments json.RawMessage) (*CommentView, error)
	React(userID, targetID, targetType string, kind *string) (*ReactionSummary, error)
}

type communityService struct {
	repo repository.CommunityRepository
}

func NewCommunityService(repo repository.CommunityRepository) CommunityService {
	return &communityService{repo: repo}
}

// displayName 开发环境的简易展示名：没有独立的用户资料表
func displayName(userID string) string {
	if len(userID) > 8 {
		return "User_" + userID[:8]
	}
	return "User_" + userID
}

func (s *communityService) GetFeed(userID, lessonID, postType string, page, limit int) (*FeedPage, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	offset := (page - 1) * limit
	posts, total, err := s.repo.GetPosts(lessonID, postType, offset, limit)
	if err != nil {
		return nil, err
	}

	postIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
	}

	counts, err := s.repo.GetReactionCounts(postIDs, model.TargetPost)
	if err != nil {
		return nil, err
	}
	userKinds, err := s.repo.GetUserReactions(userID, postIDs, model.TargetPost)
	if err != nil {
		return nil, err
	}
	commentCounts, err := s.repo.CountCommentsByPostIDs(postIDs)
	if err != nil {
		return nil, err
	}

	views := make([]*PostView, 0, len(posts))
	for i := range posts {
		v := buildPostView(&posts[i], counts[posts[i].ID], userKinds[posts[i].ID])
		v.CommentCount = commentCounts[posts[i].ID]
		views = append(views, v)
	}

	return &FeedPage{
		Posts: views,
		Pagination: PageView{
			Page:    page,
			HasNext: int64(page*limit) < total,
		},
	}, nil
}

func (s *communityService) GetPostComments(userID, postID string) ([]*CommentView, error) {
	if _, err := s.repo.GetPostByID(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	comments, err := s.repo.GetCommentsByPostID(postID)
	if err != nil {
		return nil, err
	}

	commentIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		commentIDs = append(commentIDs, c.ID)
	}
	counts, err := s.repo.GetReactionCounts(commentIDs, model.TargetComment)
	if err != nil {
		return nil, err
	}
	userKinds, err := s.repo.GetUserReactions(userID, commentIDs, model.TargetComment)
	if err != nil {
		return nil, err
	}

	// 两层组装：一级评论为顶层，二级评论按 RootID 挂到所属一级评论下
	// (回复二级评论的仍是二级，展示为同一组)
	byID := make(map[string]*CommentView, len(comments))
	tree := make([]*CommentView, 0)
	for i := range comments {
		c := &comments[i]
		v := buildCommentView(c, counts[c.ID], userKinds[c.ID])
		byID[c.ID] = v
		if c.Level <= 1 {
			tree = append(tree, v)
			continue
		}
		if root, ok := byID[c.RootID]; ok {
			root.Replies = append(root.Replies, v)
		} else {
			// 根评论已删除等异常情况，降级为顶层展示
			tree = append(tree, v)
		}
	}
	return tree, nil
}

func (s *communityService) CreatePost(userID string, input CreatePostInput) (*PostView, error) {
	hashtagsJSON, _ := json.Marshal(input.Hashtags)

	postType := input.Type
	if postType == "" {
		postType = "text"
	}

	post := &model.Post{
		LessonID:    input.LessonID,
		UserID:      userID,
		AuthorName:  displayName(userID),
		Type:        postType,
		Content:     input.Content,
		Hashtags:    hashtagsJSON,
		Attachments: input.Attachments,
	}
	if err := s.repo.CreatePost(post); err != nil {
		return nil, err
	}
	return buildPostView(post, nil, ""), nil
}

func (s *communityService) AddComment(userID, postID, parentID, content string, attachments json.RawMessage) (*CommentView, error) {
	post, err := s.repo.GetPostByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	comment := &model.Comment{
		PostID:      postID,
		UserID:      userID,
		AuthorName:  displayName(userID),
		Content:     content,
		Level:       1,
		Attachments: attachments,
	}

	notifyUserID := post.UserID

	// 处理回复逻辑
	if parentID != "" && parentID != postID {
		parent, err := s.repo.GetCommentByID(parentID)
		if err != nil {
			return nil, ErrCommentNotFound
		}
		if parent.PostID != postID {
			return nil, ErrParentMismatch
		}

		comment.ParentID = parentID
		notifyUserID = parent.UserID

		// 确定 RootID 和 Level
		if parent.Level == 1 {
			comment.RootID = parent.ID
			comment.Level = 2
		} else {
			// 回复二级评论，仍然是二级（限制最多两层）
			comment.RootID = parent.RootID
			comment.Level = 2
		}
	}

	if err := s.repo.CreateComment(comment); err != nil {
		return nil, err
	}

	metrics.CommentsCreatedTotal.WithLabelValues(strconv.Itoa(comment.Level)).Inc()
	s.notifyReply(notifyUserID, userID, postID, comment)

	return buildCommentView(comment, nil, ""), nil
}

// notifyReply 给被回复者推送提醒，尽力而为，失败只记日志
func (s *communityService) notifyReply(targetUserID, fromUserID, postID string, comment *model.Comment) {
	if targetUserID == "" || targetUserID == fromUserID || push.GlobalPushService == nil {
		return
	}
	err := push.GlobalPushService.PushToAccount(targetUserID,
		"New reply", displayName(fromUserID)+" replied to you",
		map[string]string{"postId": postID, "commentId": comment.ID})
	if err != nil {
		logger.Log.Warn("reply push failed",
			zap.String("target_user", targetUserID), zap.Error(err))
	}
}

func (s *communityService) React(userID, targetID, targetType string, kind *string) (*ReactionSummary, error) {
	// 目标必须存在
	var err error
	if targetType == model.TargetPost {
		_, err = s.repo.GetPostByID(targetID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
	} else {
		_, err = s.repo.GetCommentByID(targetID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
	}
	if err != nil {
		return nil, err
	}

	if kind == nil || *kind == "" {
		if err := s.repo.DeleteReaction(userID, targetID, targetType); err != nil {
			return nil, err
		}
		metrics.ReactionsTotal.WithLabelValues(targetType, "none").Inc()
	} else {
		if !model.ValidReactionKind(*kind) {
			return nil, ErrInvalidReaction
		}
		// 同一行承载用户对该目标的唯一反应，换反应即更新
		if err := s.repo.SetReaction(userID, targetID, targetType, *kind); err != nil {
			return nil, err
		}
		metrics.ReactionsTotal.WithLabelValues(targetType, *kind).Inc()
	}

	counts, err := s.repo.GetReactionCounts([]string{targetID}, targetType)
	if err != nil {
		return nil, err
	}
	userKinds, err := s.repo.GetUserReactions(userID, []string{targetID}, targetType)
	if err != nil {
		return nil, err
	}
	return buildReactionSummary(counts[targetID], userKinds[targetID]), nil
}

func buildReactionSummary(counts map[string]int, userKind string) *ReactionSummary {
	if counts == nil {
		counts = map[string]int{}
	}
	userReactions := []string{}
	if userKind != "" {
		userReactions = append(userReactions, userKind)
	}
	return &ReactionSummary{Reactions: counts, UserReactions: userReactions}
}

func buildPostView(p *model.Post, counts map[string]int, userKind string) *PostView {
	summary := buildReactionSummary(counts, userKind)
	return &PostView{
		ID:            p.ID,
		LessonID:      p.LessonID,
		Type:          p.Type,
		Content:       p.Content,
		Author:        AuthorView{ID: p.UserID, Name: p.AuthorName},
		Hashtags:      p.Hashtags,
		Reactions:     summary.Reactions,
		UserReactions: summary.UserReactions,
		Attachments:   p.Attachments,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func buildCommentView(c *model.Comment, counts map[string]int, userKind string) *CommentView {
	summary := buildReactionSummary(counts, userKind)
	return &CommentView{
		ID:            c.ID,
		PostID:        c.PostID,
		ParentID:      c.ParentID,
		Content:       c.Content,
		Author:        AuthorView{ID: c.UserID, Name: c.AuthorName},
		Reactions:     summary.Reactions,
		UserReactions: summary.UserReactions,
		Attachments:   c.Attachments,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
