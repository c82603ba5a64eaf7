package service

import (
	"testing"

	"lms_platform/internal/domain/community/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockCommunityRepository is a mock of CommunityRepository
type MockCommunityRepository struct {
	mock.Mock
}

func (m *MockCommunityRepository) CreatePost(post *model.Post) error {
	args := m.Called(post)
	return args.Error(0)
}

func (m *MockCommunityRepository) GetPostByID(id string) (*model.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockCommunityRepository) GetPosts(lessonID, postType string, offset, limit int) ([]model.Post, int64, error) {
	args := m.Called(lessonID, postType, offset, limit)
	return args.Get(0).([]model.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommunityRepository) CreateComment(comment *model.Comment) error {
	args := m.Called(comment)
	return args.Error(0)
}

func (m *MockCommunityRepository) GetCommentByID(id string) (*model.Comment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommunityRepository) GetCommentsByPostID(postID string) ([]model.Comment, error) {
	args := m.Called(postID)
	return args.Get(0).([]model.Comment), args.Error(1)
}

func (m *MockCommunityRepository) CountCommentsByPostIDs(postIDs []string) (map[string]int64, error) {
	args := m.Called(postIDs)
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockCommunityRepository) SetReaction(userID, targetID, targetType, kind string) error {
	args := m.Called(userID, targetID, targetType, kind)
	return args.Error(0)
}

func (m *MockCommunityRepository) DeleteReaction(userID, targetID, targetType string) error {
	args := m.Called(userID, targetID, targetType)
	return args.Error(0)
}

func (m *MockCommunityRepository) GetReactionCounts(targetIDs []string, targetType string) (map[string]map[string]int, error) {
	args := m.Called(targetIDs, targetType)
	return args.Get(0).(map[string]map[string]int), args.Error(1)
}

func (m *MockCommunityRepository) GetUserReactions(userID string, targetIDs []string, targetType string) (map[string]string, error) {
	args := m.Called(userID, targetIDs, targetType)
	return args.Get(0).(map[string]string), args.Error(1)
}

func testPost(id string) *model.Post {
	p := &model.Post{LessonID: "lesson-1", UserID: "author-1", AuthorName: "User_author-1"}
	p.ID = id
	return p
}

func testComment(id, postID, rootID string, level int) *model.Comment {
	c := &model.Comment{PostID: postID, UserID: "author-2", RootID: rootID, Level: level}
	c.ID = id
	return c
}

func TestAddComment(t *testing.T) {
	t.Run("top level comment gets level 1", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		svc := NewCommunityService(mockRepo)

		var created *model.Comment
		mockRepo.On("GetPostByID", "post-1").Return(testPost("post-1"), nil)
		mockRepo.On("CreateComment", mock.AnythingOfType("*model.Comment")).
			Run(func(args mock.Arguments) { created = args.Get(0).(*model.Comment) }).
			Return(nil)

		view, err := svc.AddComment("user-1", "post-1", "", "hello", nil)

		assert.NoError(t, err)
		assert.NotNil(t, view)
		assert.Equal(t, 1, created.Level)
		assert.Empty(t, created.RootID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("reply to a level 1 comment becomes level 2 rooted at it", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		svc := NewCommunityService(mockRepo)

		var created *model.Comment
		mockRepo.On("GetPostByID", "post-1").Return(testPost("post-1"), nil)
		mockRepo.On("GetCommentByID", "c1").Return(testComment("c1", "post-1", "", 1), nil)
		mockRepo.On("CreateComment", mock.AnythingOfType("*model.Comment")).
			Run(func(args mock.Arguments) { created = args.Get(0).(*model.Comment) }).
			Return(nil)

		_, err := svc.AddComment("user-1", "post-1", "c1", "agreed", nil)

		assert.NoError(t, err)
		assert.Equal(t, 2, created.Level)
		assert.Equal(t, "c1", created.RootID)
		assert.Equal(t, "c1", created.ParentID)
	})

	t.Run("reply to a level 2 comment stays level 2 with the same root", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		svc := NewCommunityService(mockRepo)

		var created *model.Comment
		mockRepo.On("GetPostByID", "post-1").Return(testPost("post-1"), nil)
		mockRepo.On("GetCommentByID", "c2").Return(testComment("c2", "post-1", "c1", 2), nil)
		mockRepo.On("CreateComment", mock.AnythingOfType("*model.Comment")).
			Run(func(args mock.Arguments) { created = args.Get(0).(*model.Comment) }).
			Return(nil)

		_, err := svc.AddComment("user-1", "post-1", "c2", "thanks", nil)

		assert.NoError(t, err)
		assert.Equal(t, 2, created.Level)
		assert.Equal(t, "c1", created.RootID)
		assert.Equal(t, "c2", created.ParentID)
	})

	t.Run("parent from another post is rejected", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		svc := NewCommunityService(mockRepo)

		mockRepo.On("GetPostByID", "post-1").Return(testPost("post-1"), nil)
		mockRepo.On("GetCommentByID", "foreign").Return(testComment("foreign", "post-2", "", 1), nil)

		_, err := svc.AddComment("user-1", "post-1", "foreign", "hi", nil)

		assert.ErrorIs(t, err, ErrParentMismatch)
	})

	t.Run("missing post", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		svc := NewCommunityService(mockRepo)

		mockRepo.On("GetPostByID", "ghost").Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.AddComment("user-1", "ghost", "", "hi", nil)

		assert.ErrorIs(t, err, ErrPostNotFound)
	})
}

func TestReact(t *testing.T) {
	t.Run("setting a reaction upserts the single row", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		svc := NewCommunityService(mockRepo)

		mockRepo.On("GetPostByID", "post-1").Return(testPost("post-1"), nil)
		mockRepo.On("SetReaction", "user-1", "post-1", "post", "LIKE").Return(nil)
		mockRepo.On("GetReactionCounts", []string{"post-1"}, "post").
			Return(map[string]map[string]int{"post-1": {"LIKE": 3}}, nil)
		mockRepo.On("GetUserReactions", "user-1", []string{"post-1"}, "post").
			Return(map[string]string{"post-1": "LIKE"}, nil)

		kind := "LIKE"
		summary, err := svc.React("user-1", "post-1", "post", &kind)

		assert.NoError(t, err)
		assert.Equal(t, 3, summary.Reactions["LIKE"])
		assert.Equal(t, []string{"LIKE"}, summary.UserReactions)
		mockRepo.AssertExpectations(t)
	})

	t.Run("nil kind deletes the row", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		svc := NewCommunityService(mockRepo)

		mockRepo.On("GetPostByID", "post-1").Return(testPost("post-1"), nil)
		mockRepo.On("DeleteReaction", "user-1", "post-1", "post").Return(nil)
		mockRepo.On("GetReactionCounts", []string{"post-1"}, "post").
			Return(map[string]map[string]int{}, nil)
		mockRepo.On("GetUserReactions", "user-1", []string{"post-1"}, "post").
			Return(map[string]string{}, nil)

		summary, err := svc.React("user-1", "post-1", "post", nil)

		assert.NoError(t, err)
		assert.Empty(t, summary.UserReactions)
		assert.NotNil(t, summary.Reactions)
		mockRepo.AssertExpectations(t)
	})

	t.Run("invalid kind is rejected", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		svc := NewCommunityService(mockRepo)

		mockRepo.On("GetPostByID", "post-1").Return(testPost("post-1"), nil)

		kind := "ANGRY"
		_, err := svc.React("user-1", "post-1", "post", &kind)

		assert.ErrorIs(t, err, ErrInvalidReaction)
	})

	t.Run("comment target is looked up as a comment", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		svc := NewCommunityService(mockRepo)

		mockRepo.On("GetCommentByID", "c1").Return(testComment("c1", "post-1", "", 1), nil)
		mockRepo.On("SetReaction", "user-1", "c1", "comment", "CLAP").Return(nil)
		mockRepo.On("GetReactionCounts", []string{"c1"}, "comment").
			Return(map[string]map[string]int{"c1": {"CLAP": 1}}, nil)
		mockRepo.On("GetUserReactions", "user-1", []string{"c1"}, "comment").
			Return(map[string]string{"c1": "CLAP"}, nil)

		kind := "CLAP"
		summary, err := svc.React("user-1", "c1", "comment", &kind)

		assert.NoError(t, err)
		assert.Equal(t, []string{"CLAP"}, summary.UserReactions)
	})
}

func TestGetFeed(t *testing.T) {
	t.Run("hasNext reflects remaining rows", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		svc := NewCommunityService(mockRepo)

		posts := []model.Post{*testPost("p1"), *testPost("p2")}
		mockRepo.On("GetPosts", "lesson-1", "", 0, 2).Return(posts, int64(5), nil)
		mockRepo.On("GetReactionCounts", []string{"p1", "p2"}, "post").
			Return(map[string]map[string]int{"p1": {"LOVE": 2}}, nil)
		mockRepo.On("GetUserReactions", "user-1", []string{"p1", "p2"}, "post").
			Return(map[string]string{"p1": "LOVE"}, nil)
		mockRepo.On("CountCommentsByPostIDs", []string{"p1", "p2"}).
			Return(map[string]int64{"p1": 4}, nil)

		feed, err := svc.GetFeed("user-1", "lesson-1", "", 1, 2)

		assert.NoError(t, err)
		assert.True(t, feed.Pagination.HasNext)
		assert.Equal(t, 1, feed.Pagination.Page)
		assert.Len(t, feed.Posts, 2)
		assert.Equal(t, 2, feed.Posts[0].Reactions["LOVE"])
		assert.Equal(t, []string{"LOVE"}, feed.Posts[0].UserReactions)
		assert.Equal(t, int64(4), feed.Posts[0].CommentCount)
		// 没有反应的帖子也要有非 nil 的空计数
		assert.NotNil(t, feed.Posts[1].Reactions)
		assert.Empty(t, feed.Posts[1].UserReactions)
	})

	t.Run("last page has no next", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		svc := NewCommunityService(mockRepo)

		posts := []model.Post{*testPost("p5")}
		mockRepo.On("GetPosts", "lesson-1", "", 4, 2).Return(posts, int64(5), nil)
		mockRepo.On("GetReactionCounts", []string{"p5"}, "post").
			Return(map[string]map[string]int{}, nil)
		mockRepo.On("GetUserReactions", "user-1", []string{"p5"}, "post").
			Return(map[string]string{}, nil)
		mockRepo.On("CountCommentsByPostIDs", []string{"p5"}).
			Return(map[string]int64{}, nil)

		feed, err := svc.GetFeed("user-1", "lesson-1", "", 3, 2)

		assert.NoError(t, err)
		assert.False(t, feed.Pagination.HasNext)
		assert.Equal(t, 3, feed.Pagination.Page)
	})
}

func TestGetPostComments(t *testing.T) {
	t.Run("level 2 comments are grouped under their root", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		svc := NewCommunityService(mockRepo)

		comments := []model.Comment{
			*testComment("c1", "post-1", "", 1),
			*testComment("c2", "post-1", "c1", 2),
			*testComment("c3", "post-1", "c1", 2), // 回复 c2，根仍是 c1
			*testComment("c4", "post-1", "", 1),
		}
		mockRepo.On("GetPostByID", "post-1").Return(testPost("post-1"), nil)
		mockRepo.On("GetCommentsByPostID", "post-1").Return(comments, nil)
		mockRepo.On("GetReactionCounts", mock.Anything, "comment").
			Return(map[string]map[string]int{}, nil)
		mockRepo.On("GetUserReactions", "user-1", mock.Anything, "comment").
			Return(map[string]string{}, nil)

		tree, err := svc.GetPostComments("user-1", "post-1")

		assert.NoError(t, err)
		assert.Len(t, tree, 2)
		assert.Equal(t, "c1", tree[0].ID)
		assert.Len(t, tree[0].Replies, 2)
		assert.Equal(t, "c4", tree[1].ID)
		assert.Empty(t, tree[1].Replies)
	})
}
