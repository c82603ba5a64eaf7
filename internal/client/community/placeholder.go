package community

import "time"

// placeholderPosts 首次加载失败时的本地兜底数据，
// 仅保证界面不空白，内容不会提交回服务端。
func placeholderPosts(lessonID string) []*Post {
	now := time.Now()
	return []*Post{
		{
			ID:       "placeholder-1",
			LessonID: lessonID,
			Type:     "text",
			Content:  "Welcome to the lesson discussion. Posts will appear here once the feed is reachable.",
			Author:   Author{ID: "system", Name: "Course Assistant"},
			ReactionState: ReactionState{
				Reactions:     map[ReactionKind]int{},
				UserReactions: []ReactionKind{},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:       "placeholder-2",
			LessonID: lessonID,
			Type:     "text",
			Content:  "Tip: you can attach images, videos and documents to your questions.",
			Author:   Author{ID: "system", Name: "Course Assistant"},
			ReactionState: ReactionState{
				Reactions:     map[ReactionKind]int{},
				UserReactions: []ReactionKind{},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}
