package repository

import (
	"errors"

	"lms_platform/internal/domain/community/model"

	"gorm.io/gorm"
)

type CommunityRepository interface {
	CreatePost(post *model.Post) error
	GetPostByID(id string) (*model.Post, error)
	GetPosts(lessonID, postType string, offset, limit int) ([]model.Post, int64, error)

	CreateComment(comment *model.Comment) error
	GetCommentByID(id string) (*model.Comment, error)
	GetCommentsByPostID(postID string) ([]model.Comment, error)
	CountCommentsByPostIDs(postIDs []string) (map[string]int64, error)

	SetReaction(userID, targetID, targetType, kind string) error
	DeleteReaction(userID, targetID, targetType string) error
	GetReactionCounts(targetIDs []string, targetType string) (map[string]map[string]int, error)
	GetUserReactions(userID string, targetIDs []string, targetType string) (map[string]string, error)
}

type communityRepository struct {
	db *gorm.DB
}

func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

// --- Post ---

func (r *communityRepository) CreatePost(post *model.Post) error {
	return r.db.Create(post).Error
}

func (r *communityRepository) GetPostByID(id string) (*model.Post, error) {
	var post model.Post
	if err := r.db.Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *communityRepository) GetPosts(lessonID, postType string, offset, limit int) ([]model.Post, int64, error) {
	var posts []model.Post
	var total int64

	query := r.db.Model(&model.Post{})
	if lessonID != "" {
		query = query.Where("lesson_id = ?", lessonID)
	}
	if postType != "" {
		query = query.Where("type = ?", postType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// --- Comment ---

func (r *communityRepository) CreateComment(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

func (r *communityRepository) GetCommentByID(id string) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *communityRepository) GetCommentsByPostID(postID string) ([]model.Comment, error) {
	var comments []model.Comment
	if err := r.db.Where("post_id = ?", postID).Order("created_at asc").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *communityRepository) CountCommentsByPostIDs(postIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		PostID string
		Count  int64
	}
	err := r.db.Model(&model.Comment{}).
		Select("post_id, count(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.PostID] = row.Count
	}
	return result, nil
}

// --- Reaction ---

// SetReaction 每个 (用户, 目标) 至多一行：已有则改 kind，没有则新建
func (r *communityRepository) SetReaction(userID, targetID, targetType, kind string) error {
	var existing model.Reaction
	err := r.db.Where("user_id = ? AND target_id = ? AND target_type = ?",
		userID, targetID, targetType).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.Create(&model.Reaction{
				UserID:     userID,
				TargetID:   targetID,
				TargetType: targetType,
				Kind:       kind,
			}).Error
		}
		return err
	}

	if existing.Kind == kind {
		return nil
	}
	return r.db.Model(&existing).Update("kind", kind).Error
}

func (r *communityRepository) DeleteReaction(userID, targetID, targetType string) error {
	return r.db.Where("user_id = ? AND target_id = ? AND target_type = ?",
		userID, targetID, targetType).Delete(&model.Reaction{}).Error
}

func (r *communityRepository) GetReactionCounts(targetIDs []string, targetType string) (map[string]map[string]int, error) {
	result := make(map[string]map[string]int, len(targetIDs))
	if len(targetIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		TargetID string
		Kind     string
		Count    int
	}
	err := r.db.Model(&model.Reaction{}).
		Select("target_id, kind, count(*) as count").
		Where("target_id IN ? AND target_type = ?", targetIDs, targetType).
		Group("target_id, kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		if result[row.TargetID] == nil {
			result[row.TargetID] = make(map[string]int)
		}
		result[row.TargetID][row.Kind] = row.Count
	}
	return result, nil
}

func (r *communityRepository) GetUserReactions(userID string, targetIDs []string, targetType string) (map[string]string, error) {
	result := make(map[string]string, len(targetIDs))
	if len(targetIDs) == 0 {
		return result, nil
	}

	var rows []model.Reaction
	err := r.db.Where("user_id = ? AND target_id IN ? AND target_type = ?",
		userID, targetIDs, targetType).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.TargetID] = row.Kind
	}
	return result, nil
}
