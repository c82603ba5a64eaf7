package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lms_platform/pkg/cache"
	"lms_platform/pkg/logger"

	"go.uber.org/zap"
)

// 缓存键常量
const (
	FeedCacheKeyPrefix = "community_feed:"
	FeedCacheTTL       = time.Second * 30
)

// CachedCommunityService 带缓存的社区服务：帖子流读多写少，
// 短 TTL + 写失效足够，userReactions 因人而异所以键里带用户
type CachedCommunityService struct {
	inner CommunityService
	cache cache.CacheService
}

func NewCachedCommunityService(inner CommunityService, cache cache.CacheService) CommunityService {
	return &CachedCommunityService{inner: inner, cache: cache}
}

func (s *CachedCommunityService) feedCacheKey(userID, lessonID, postType string, page, limit int) string {
	return fmt.Sprintf("%s%s:%s:%s:%d:%d", FeedCacheKeyPrefix, userID, lessonID, postType, page, limit)
}

// invalidateFeedCache 写操作后清掉所有帖子流缓存页
func (s *CachedCommunityService) invalidateFeedCache() {
	ctx := context.Background()
	if err := s.cache.InvalidatePattern(ctx, FeedCacheKeyPrefix+"*"); err != nil {
		logger.Log.Warn("failed to invalidate feed cache", zap.Error(err))
	}
}

func (s *CachedCommunityService) GetFeed(userID, lessonID, postType string, page, limit int) (*FeedPage, error) {
	ctx := context.Background()
	cacheKey := s.feedCacheKey(userID, lessonID, postType, page, limit)

	var cached FeedPage
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	feed, err := s.inner.GetFeed(userID, lessonID, postType, page, limit)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, feed, FeedCacheTTL); err != nil {
		// 缓存失败不影响业务逻辑，只记录日志
		logger.Log.Warn("failed to cache feed page", zap.String("key", cacheKey), zap.Error(err))
	}
	return feed, nil
}

func (s *CachedCommunityService) GetPostComments(userID, postID string) ([]*CommentView, error) {
	// 评论树读写比不悬殊，且反应计数要求及时，不走缓存
	return s.inner.GetPostComments(userID, postID)
}

func (s *CachedCommunityService) CreatePost(userID string, input CreatePostInput) (*PostView, error) {
	post, err := s.inner.CreatePost(userID, input)
	if err != nil {
		return nil, err
	}
	s.invalidateFeedCache()
	return post, nil
}

func (s *CachedCommunityService) AddComment(userID, postID, parentID, content string, attachments json.RawMessage) (*CommentView, error) {
	comment, err := s.inner.AddComment(userID, postID, parentID, content, attachments)
	if err != nil {
		return nil, err
	}
	// 帖子视图带 commentCount，评论写入也要失效
	s.invalidateFeedCache()
	return comment, nil
}

func (s *CachedCommunityService) React(userID, targetID, targetType string, kind *string) (*ReactionSummary, error) {
	summary, err := s.inner.React(userID, targetID, targetType, kind)
	if err != nil {
		return nil, err
	}
	s.invalidateFeedCache()
	return summary, nil
}
