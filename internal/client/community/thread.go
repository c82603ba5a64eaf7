// Package community 维护课程讨论区的客户端状态：
// 分页加载的帖子流、两层嵌套的回复树、以及乐观应用的反应变更。
// 所有修改都通过显式的状态迁移方法进行，异步回调不捕获旧状态。
package community

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"lms_platform/internal/client"

	"go.uber.org/zap"
)

const defaultPageSize = 10

// ErrTargetNotFound 反应/回复目标不在当前线程状态里
var ErrTargetNotFound = errors.New("target not found in thread state")

// ThreadState 一个课程讨论区的完整客户端状态
type ThreadState struct {
	api      *client.Client
	log      *zap.Logger
	lessonID string
	postType string
	pageSize int

	mu          sync.Mutex
	posts       []*Post
	page        int
	hasMore     bool
	placeholder bool
}

// NewThreadState 创建线程状态，postType 为空表示不过滤
func NewThreadState(api *client.Client, lessonID, postType string, log *zap.Logger) *ThreadState {
	if log == nil {
		log = zap.NewNop()
	}
	return &ThreadState{
		api:      api,
		log:      log,
		lessonID: lessonID,
		postType: postType,
		pageSize: defaultPageSize,
	}
}

// Posts 当前帖子列表 (调用方不应修改返回的切片)
func (t *ThreadState) Posts() []*Post {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Post(nil), t.posts...)
}

// HasMore 是否还有后续页可加载
func (t *ThreadState) HasMore() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasMore
}

// Page 最近加载的页码
func (t *ThreadState) Page() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.page
}

// Placeholder 当前展示的是否为本地兜底数据
func (t *ThreadState) Placeholder() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.placeholder
}

// LoadPage 拉取一页帖子。appendMode 为 true 时追加到现有列表，
// 否则整体替换。hasMore 以新信封的 hasNext 为准。
// 首次加载失败时回退到本地占位数据集，界面不至于空白
// (开发/演示用的兜底，不是生产级容错)。
func (t *ThreadState) LoadPage(ctx context.Context, page int, appendMode bool) error {
	path := fmt.Sprintf("/community/posts?lessonId=%s&type=%s&page=%d&limit=%d",
		url.QueryEscape(t.lessonID), url.QueryEscape(t.postType), page, t.pageSize)

	var env feedEnvelope
	if err := t.api.GetJSON(ctx, path, &env); err != nil {
		t.mu.Lock()
		empty := len(t.posts) == 0
		if empty && !appendMode {
			t.posts = placeholderPosts(t.lessonID)
			t.placeholder = true
			t.page = 1
			t.hasMore = false
		}
		t.mu.Unlock()

		if empty && !appendMode {
			t.log.Warn("feed load failed, showing placeholder dataset",
				zap.String("lesson_id", t.lessonID), zap.Error(err))
			return nil
		}
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if appendMode {
		t.posts = append(t.posts, env.Posts...)
	} else {
		t.posts = env.Posts
	}
	t.placeholder = false
	t.page = env.Pagination.Page
	t.hasMore = env.Pagination.HasNext
	return nil
}

// Refresh 显式整页重拉 (用户主动刷新时才走全量)
func (t *ThreadState) Refresh(ctx context.Context) error {
	return t.LoadPage(ctx, 1, false)
}

// LoadComments 拉取某个帖子的完整评论树并挂到帖子上
func (t *ThreadState) LoadComments(ctx context.Context, postID string) error {
	var env commentsEnvelope
	if err := t.api.GetJSON(ctx, "/community/posts/"+url.PathEscape(postID)+"/comments", &env); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.posts {
		if p.ID == postID {
			p.Replies = env.Comments
			return nil
		}
	}
	return ErrTargetNotFound
}

type postReactionRequest struct {
	Type *ReactionKind `json:"type"`
}

type commentReactionRequest struct {
	ReactionType *ReactionKind `json:"reactionType"`
}

// React 对帖子或评论做出反应。kind 为 nil 表示移除；
// 请求的反应与当前激活反应相同时按移除处理 (再点一次取消)。
// 变更先乐观应用到本地，服务端失败后用快照整体回滚。
func (t *ThreadState) React(ctx context.Context, targetID string, kind *ReactionKind) error {
	if kind != nil && !kind.Valid() {
		return fmt.Errorf("invalid reaction kind %q", *kind)
	}

	t.mu.Lock()
	target, isPost := t.findTarget(targetID)
	if target == nil {
		t.mu.Unlock()
		return ErrTargetNotFound
	}
	resolved := target.resolveToggle(kind)
	snap := target.snapshot()
	target.apply(resolved)
	t.mu.Unlock()

	var err error
	if isPost {
		err = t.api.PostJSON(ctx, "/community/posts/"+url.PathEscape(targetID)+"/reactions",
			postReactionRequest{Type: resolved}, nil)
	} else {
		err = t.api.PostJSON(ctx, "/community/comments/"+url.PathEscape(targetID)+"/reactions",
			commentReactionRequest{ReactionType: resolved}, nil)
	}
	if err != nil {
		t.mu.Lock()
		if cur, _ := t.findTarget(targetID); cur != nil {
			cur.restore(snap)
		}
		t.mu.Unlock()
		t.log.Warn("reaction rejected, local state rolled back",
			zap.String("target_id", targetID), zap.Error(err))
		return err
	}
	return nil
}

// findTarget 在帖子和两层回复里定位反应目标，持锁调用
func (t *ThreadState) findTarget(id string) (*ReactionState, bool) {
	for _, p := range t.posts {
		if p.ID == id {
			return &p.ReactionState, true
		}
		for _, c := range p.Replies {
			if c.ID == id {
				return &c.ReactionState, false
			}
			for _, rc := range c.Replies {
				if rc.ID == id {
					return &rc.ReactionState, false
				}
			}
		}
	}
	return nil, false
}

// CommentDraft 待提交的帖子草稿。附件须事先通过 UploadAttachments 上传。
type CommentDraft struct {
	Type        string
	Content     string
	Hashtags    []string
	Attachments []Attachment
}

type newPostRequest struct {
	LessonID    string       `json:"lessonId"`
	Type        string       `json:"type"`
	Content     string       `json:"content"`
	Hashtags    []string     `json:"hashtags,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// SubmitComment 发布顶层帖子。服务端返回的实体是权威数据
// (id、时间戳由服务端分配)，直接头插到本地列表，不做整页重拉。
// 失败时本地状态不变，草稿由调用方保留以便重试。
func (t *ThreadState) SubmitComment(ctx context.Context, draft CommentDraft) (*Post, error) {
	postType := draft.Type
	if postType == "" {
		postType = "text"
	}
	req := newPostRequest{
		LessonID:    t.lessonID,
		Type:        postType,
		Content:     draft.Content,
		Hashtags:    draft.Hashtags,
		Attachments: draft.Attachments,
	}

	var env postEnvelope
	if err := t.api.PostJSON(ctx, "/community/posts", req, &env); err != nil {
		return nil, err
	}

	t.mu.Lock()
	if t.placeholder {
		// 第一条真实内容到达后不再展示占位数据
		t.posts = nil
		t.placeholder = false
	}
	t.posts = append([]*Post{env.Post}, t.posts...)
	t.mu.Unlock()
	return env.Post, nil
}

type newReplyRequest struct {
	Content  string `json:"content"`
	ParentID string `json:"parentId,omitempty"`
}

// SubmitReply 发布回复并把服务端确认的实体挂进对应父节点的
// replies；父节点可能是帖子、一级回复或二级回复。
func (t *ThreadState) SubmitReply(ctx context.Context, postID, parentID, content string) (*Comment, error) {
	req := newReplyRequest{Content: content, ParentID: parentID}

	var env commentEnvelope
	if err := t.api.PostJSON(ctx, "/community/posts/"+url.PathEscape(postID)+"/comments", req, &env); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.spliceReply(postID, parentID, env.Comment); err != nil {
		return nil, err
	}
	return env.Comment, nil
}

// spliceReply 把确认后的回复路由进回复树，持锁调用
func (t *ThreadState) spliceReply(postID, parentID string, reply *Comment) error {
	for _, p := range t.posts {
		if p.ID != postID {
			continue
		}
		if parentID == "" || parentID == postID {
			p.Replies = append(p.Replies, reply)
			return nil
		}
		for _, c := range p.Replies {
			if c.ID == parentID {
				c.Replies = append(c.Replies, reply)
				return nil
			}
			for _, rc := range c.Replies {
				if rc.ID == parentID {
					rc.Replies = append(rc.Replies, reply)
					return nil
				}
			}
		}
		return ErrTargetNotFound
	}
	return ErrTargetNotFound
}
