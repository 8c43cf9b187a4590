package content

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rounds-social/rounds/models"
)

// trendingWindow bounds how far back posts are considered for trending.
const trendingWindow = 7 * 24 * time.Hour

type TrendingPost struct {
	Post          models.Post `json:"post"`
	CommentCount  int64       `json:"commentCount"`
	TrendingScore float64     `json:"trendingScore"`
}

// TrendingPosts ranks recent published posts by vote balance and comment
// activity, with a mild age damping so newer discussion floats up.
func (s *Service) TrendingPosts(ctx context.Context, limit int) ([]TrendingPost, error) {
	if limit <= 0 {
		limit = 5
	}
	cutoff := time.Now().Add(-trendingWindow)
	var posts []models.Post
	err := s.DB.WithContext(ctx).
		Where("status = ? AND created_at > ?", "published", cutoff).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("loading recent posts: %w", err)
	}

	out := make([]TrendingPost, 0, len(posts))
	for _, p := range posts {
		var comments int64
		if err := s.DB.WithContext(ctx).
			Model(&models.Comment{}).
			Where("post_id = ?", p.ID).
			Count(&comments).Error; err != nil {
			return nil, fmt.Errorf("counting comments: %w", err)
		}
		ageHours := time.Since(p.CreatedAt).Hours()
		score := (float64(p.Upvotes-p.Downvotes) + 2*float64(comments)) / (1 + ageHours/24)
		out = append(out, TrendingPost{
			Post:          p,
			CommentCount:  comments,
			TrendingScore: score,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TrendingScore > out[j].TrendingScore
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
