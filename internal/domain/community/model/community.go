package model

import (
	"encoding/json"

	baseModel "lms_platform/pkg/model"
)

// 反应类型固定集合
const (
	ReactionLove     = "LOVE"
	ReactionLike     = "LIKE"
	ReactionSurprise = "SURPRISE"
	ReactionClap     = "CLAP"
	ReactionSad      = "SAD"
)

// ValidReactionKind 是否为合法反应类型
func ValidReactionKind(kind string) bool {
	switch kind {
	case ReactionLove, ReactionLike, ReactionSurprise, ReactionClap, ReactionSad:
		return true
	}
	return false
}

// 反应目标类型
const (
	TargetPost    = "post"
	TargetComment = "comment"
)

// Post 课程讨论区帖子
type Post struct {
	baseModel.BaseModel
	LessonID   string          `gorm:"index" json:"lessonId"`
	UserID     string          `gorm:"index" json:"userId"`
	AuthorName string          `json:"authorName"`
	Type       string          `gorm:"default:'text'" json:"type"` // text, image, video
	Content    string          `json:"content"`
	Hashtags   json.RawMessage `gorm:"type:jsonb" json:"hashtags"`    // 字符串数组
	Attachments json.RawMessage `gorm:"type:jsonb" json:"attachments"` // 已上传附件描述符数组

	// 关联
	Comments []Comment `json:"comments,omitempty"`
}

// Comment 评论模型，最多两层
type Comment struct {
	baseModel.BaseModel
	PostID     string `gorm:"index" json:"postId"`
	UserID     string `json:"userId"`
	AuthorName string `json:"authorName"`
	Content    string `json:"content"`
	ParentID   string `json:"parentId"`               // 父评论ID (直接父评论)
	RootID     string `gorm:"index" json:"rootId"`    // 根评论ID (一级评论ID，用于优化查询)
	Level      int    `gorm:"default:1" json:"level"` // 评论层级：1=一级评论，2=二级评论

	Attachments json.RawMessage `gorm:"type:jsonb" json:"attachments"`
}

// Reaction 反应记录。每个 (用户, 目标) 至多一行，
// 换反应是对同一行的更新，互斥性由此保证。
type Reaction struct {
	baseModel.BaseModel
	UserID     string `gorm:"uniqueIndex:idx_reaction_user_target" json:"userId"`
	TargetID   string `gorm:"uniqueIndex:idx_reaction_user_target" json:"targetId"`
	TargetType string `gorm:"uniqueIndex:idx_reaction_user_target" json:"targetType"` // post, comment
	Kind       string `json:"kind"`
}
