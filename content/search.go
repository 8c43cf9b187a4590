package content

import (
	"context"
	"fmt"

	"github.com/rounds-social/rounds/models"
)

const (
	searchPostLimit      = 20
	searchSecondaryLimit = 10
)

type SearchFilters struct {
	// Category narrows the post results; empty matches every category.
	Category string
	// SortBy is "recent" (default) or "popular" (by upvotes).
	SortBy string
}

type SearchResults struct {
	Posts       []models.Post      `json:"posts"`
	Communities []models.Community `json:"communities"`
	Profiles    []models.Profile   `json:"profiles"`
}

// Search runs a substring match across published posts, community names, and
// member display names.
func (s *Service) Search(ctx context.Context, query string, filters SearchFilters) (*SearchResults, error) {
	if query == "" {
		return nil, ErrEmptyContent
	}
	pattern := "%" + query + "%"
	out := &SearchResults{}

	postQ := s.DB.WithContext(ctx).
		Where("status = ?", "published").
		Where("title LIKE ? OR content LIKE ?", pattern, pattern).
		Limit(searchPostLimit)
	if filters.Category != "" {
		postQ = postQ.Where("category = ?", filters.Category)
	}
	if filters.SortBy == "popular" {
		postQ = postQ.Order("upvotes desc")
	} else {
		postQ = postQ.Order("created_at desc")
	}
	if err := postQ.Find(&out.Posts).Error; err != nil {
		return nil, fmt.Errorf("searching posts: %w", err)
	}

	if err := s.DB.WithContext(ctx).
		Where("name LIKE ?", pattern).
		Order("member_count desc").
		Limit(searchSecondaryLimit).
		Find(&out.Communities).Error; err != nil {
		return nil, fmt.Errorf("searching communities: %w", err)
	}

	if err := s.DB.WithContext(ctx).
		Where("display_name LIKE ?", pattern).
		Limit(searchSecondaryLimit).
		Find(&out.Profiles).Error; err != nil {
		return nil, fmt.Errorf("searching profiles: %w", err)
	}
	return out, nil
}
