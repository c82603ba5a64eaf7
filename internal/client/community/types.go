package community

import "time"

// ReactionKind 固定的反应类型集合
type ReactionKind string

const (
	ReactionLove     ReactionKind = "LOVE"
	ReactionLike     ReactionKind = "LIKE"
	ReactionSurprise ReactionKind = "SURPRISE"
	ReactionClap     ReactionKind = "CLAP"
	ReactionSad      ReactionKind = "SAD"
)

// Valid 是否为合法反应类型
func (k ReactionKind) Valid() bool {
	switch k {
	case ReactionLove, ReactionLike, ReactionSurprise, ReactionClap, ReactionSad:
		return true
	}
	return false
}

// AttachmentType 附件媒体类型
type AttachmentType string

const (
	AttachmentImage    AttachmentType = "IMAGE"
	AttachmentVideo    AttachmentType = "VIDEO"
	AttachmentDocument AttachmentType = "DOCUMENT"
)

// Author 内容作者
type Author struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Headline  string `json:"headline,omitempty"`
}

// Attachment 已上传附件的描述符
type Attachment struct {
	ID       string         `json:"id"`
	Type     AttachmentType `json:"type"`
	URL      string         `json:"url"`
	MimeType string         `json:"mimeType"`
	Size     int64          `json:"size"`
}

// ReactionState 反应计数器和当前用户的激活反应。
// 不变量：UserReactions 最多一个元素；计数永不为负。
type ReactionState struct {
	Reactions     map[ReactionKind]int `json:"reactions"`
	UserReactions []ReactionKind       `json:"userReactions"`
}

// resolveToggle 请求的反应与当前激活反应相同时，实际操作变为移除
func (r *ReactionState) resolveToggle(kind *ReactionKind) *ReactionKind {
	if kind == nil {
		return nil
	}
	for _, cur := range r.UserReactions {
		if cur == *kind {
			return nil
		}
	}
	return kind
}

func (r *ReactionState) snapshot() ReactionState {
	cp := ReactionState{
		Reactions:     make(map[ReactionKind]int, len(r.Reactions)),
		UserReactions: append([]ReactionKind(nil), r.UserReactions...),
	}
	for k, v := range r.Reactions {
		cp.Reactions[k] = v
	}
	return cp
}

func (r *ReactionState) restore(s ReactionState) {
	r.Reactions = s.Reactions
	r.UserReactions = s.UserReactions
}

// apply 先把旧反应的计数减一 (下限 0)，再为新反应加一；
// kind 为 nil 表示移除后不再有激活反应。
func (r *ReactionState) apply(kind *ReactionKind) {
	if r.Reactions == nil {
		r.Reactions = make(map[ReactionKind]int)
	}
	for _, cur := range r.UserReactions {
		if r.Reactions[cur] > 0 {
			r.Reactions[cur]--
		}
	}
	if kind == nil {
		r.UserReactions = []ReactionKind{}
		return
	}
	r.Reactions[*kind]++
	r.UserReactions = []ReactionKind{*kind}
}

// Comment 评论/回复，最多渲染两层嵌套
type Comment struct {
	ID       string `json:"id"`
	PostID   string `json:"postId,omitempty"`
	ParentID string `json:"parentId,omitempty"`
	Content  string `json:"content"`
	Author   Author `json:"author"`
	ReactionState
	Attachments []Attachment `json:"attachments,omitempty"`
	Replies     []*Comment   `json:"replies,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Post 课程讨论区的顶层内容
type Post struct {
	ID       string   `json:"id"`
	LessonID string   `json:"lessonId"`
	Type     string   `json:"type"`
	Content  string   `json:"content"`
	Author   Author   `json:"author"`
	Hashtags []string `json:"hashtags,omitempty"`
	ReactionState
	Attachments []Attachment `json:"attachments,omitempty"`
	Replies     []*Comment   `json:"replies,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// PageInfo 服务端分页信封
type PageInfo struct {
	Page    int  `json:"page"`
	HasNext bool `json:"hasNext"`
}

type feedEnvelope struct {
	Posts      []*Post  `json:"posts"`
	Pagination PageInfo `json:"pagination"`
}

type commentsEnvelope struct {
	Comments []*Comment `json:"comments"`
}

type postEnvelope struct {
	Post *Post `json:"post"`
}

type commentEnvelope struct {
	Comment *Comment `json:"comment"`
}
