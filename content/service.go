// Package content implements community content operations: posts, comments,
// votes, and communities. All text submissions pass through the moderation
// gate, and accepted actions credit the karma ledger.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/rounds-social/rounds/karma"
	"github.com/rounds-social/rounds/models"
	"github.com/rounds-social/rounds/moderation"
)

var (
	ErrEmptyContent  = errors.New("content must not be empty")
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyMember = errors.New("already a community member")

	// Moderation outcomes surface as the moderation package's sentinels, so
	// callers can tell a banned account from a fresh violation.
	ErrContentRejected = moderation.ErrRejected
	ErrBanned          = moderation.ErrBanned
)

type Service struct {
	DB        *gorm.DB
	Ledger    *karma.Ledger
	Moderator *moderation.Moderator
	Logger    *slog.Logger
}

func NewService(db *gorm.DB, ledger *karma.Ledger, mod *moderation.Moderator, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := db.AutoMigrate(
		&models.Profile{},
		&models.Post{},
		&models.PostTag{},
		&models.PostVote{},
		&models.Comment{},
		&models.Community{},
		&models.CommunityMember{},
	); err != nil {
		return nil, fmt.Errorf("migrating content tables: %w", err)
	}
	return &Service{
		DB:        db,
		Ledger:    ledger,
		Moderator: mod,
		Logger:    logger.With("system", "content"),
	}, nil
}

type PostInput struct {
	Title       string
	Content     string
	CommunityID uint
	Category    string
	Tags        []string
}

func (s *Service) CreatePost(ctx context.Context, authorID string, in PostInput) (*models.Post, error) {
	if authorID == "" {
		return nil, karma.ErrUnauthenticated
	}
	if in.Title == "" || in.Content == "" {
		return nil, ErrEmptyContent
	}
	if err := s.Moderator.Gate(ctx, authorID, in.Title+" "+in.Content); err != nil {
		return nil, err
	}

	category := in.Category
	if category == "" {
		category = "general"
	}
	post := models.Post{
		AuthorID:    authorID,
		CommunityID: in.CommunityID,
		Title:       in.Title,
		Content:     in.Content,
		Category:    category,
		Status:      "published",
	}
	if err := s.DB.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	for _, tag := range in.Tags {
		pt := models.PostTag{PostID: post.ID, Tag: tag}
		if err := s.DB.WithContext(ctx).Create(&pt).Error; err != nil {
			return nil, fmt.Errorf("creating post tag: %w", err)
		}
	}

	if _, err := s.Ledger.RecordActivity(ctx, authorID, karma.ActivityCreatePost, "Created a post", true); err != nil {
		s.Logger.Error("failed to credit post karma", "userID", authorID, "err", err)
	}
	return &post, nil
}

func (s *Service) CreateComment(ctx context.Context, authorID string, postID uint, content string) (*models.Comment, error) {
	if authorID == "" {
		return nil, karma.ErrUnauthenticated
	}
	if content == "" {
		return nil, ErrEmptyContent
	}

	var post models.Post
	err := s.DB.WithContext(ctx).First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("loading post: %w", err)
	}

	if err := s.Moderator.Gate(ctx, authorID, content); err != nil {
		return nil, err
	}

	comment := models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.DB.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	if _, err := s.Ledger.RecordActivity(ctx, authorID, karma.ActivityCreateComment, "Commented on a post", true); err != nil {
		s.Logger.Error("failed to credit comment karma", "userID", authorID, "err", err)
	}
	if post.AuthorID != authorID {
		if _, err := s.Ledger.RecordActivity(ctx, post.AuthorID, karma.ActivityReceiveComment, "Received a comment", true); err != nil {
			s.Logger.Error("failed to credit received-comment karma", "userID", post.AuthorID, "err", err)
		}
	}
	return &comment, nil
}

// VoteOnPost applies reddit-style vote semantics: voting the same direction
// again removes the vote, voting the other direction switches it, otherwise
// a new vote is created. Karma is credited only for newly created votes.
func (s *Service) VoteOnPost(ctx context.Context, userID string, postID uint, dir models.VoteDir) error {
	if userID == "" {
		return karma.ErrUnauthenticated
	}
	var post models.Post
	err := s.DB.WithContext(ctx).First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	} else if err != nil {
		return fmt.Errorf("loading post: %w", err)
	}

	var existing models.PostVote
	err = s.DB.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&existing).Error
	switch {
	case err == nil && existing.Dir == dir:
		// hard delete, so a later re-vote can reuse the (post, user) slot
		if err := s.DB.WithContext(ctx).Unscoped().Delete(&existing).Error; err != nil {
			return fmt.Errorf("removing vote: %w", err)
		}
		return s.adjustVoteCount(ctx, postID, dir, -1)
	case err == nil:
		if err := s.DB.WithContext(ctx).Model(&existing).Update("dir", dir).Error; err != nil {
			return fmt.Errorf("switching vote: %w", err)
		}
		if err := s.adjustVoteCount(ctx, postID, existing.Dir, -1); err != nil {
			return err
		}
		return s.adjustVoteCount(ctx, postID, dir, 1)
	case errors.Is(err, gorm.ErrRecordNotFound):
		vote := models.PostVote{PostID: postID, UserID: userID, Dir: dir}
		if err := s.DB.WithContext(ctx).Create(&vote).Error; err != nil {
			return fmt.Errorf("creating vote: %w", err)
		}
		if err := s.adjustVoteCount(ctx, postID, dir, 1); err != nil {
			return err
		}
		s.creditVoteKarma(ctx, userID, post.AuthorID, dir)
		return nil
	default:
		return fmt.Errorf("loading existing vote: %w", err)
	}
}

func (s *Service) adjustVoteCount(ctx context.Context, postID uint, dir models.VoteDir, delta int64) error {
	column := "upvotes"
	if dir == models.VoteDirDown {
		column = "downvotes"
	}
	err := s.DB.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		Update(column, gorm.Expr(column+" + ?", delta)).Error
	if err != nil {
		return fmt.Errorf("adjusting %s count: %w", column, err)
	}
	return nil
}

func (s *Service) creditVoteKarma(ctx context.Context, voterID, authorID string, dir models.VoteDir) {
	if dir == models.VoteDirUp {
		if _, err := s.Ledger.RecordActivity(ctx, voterID, karma.ActivityGiveUpvote, "Upvoted a post", false); err != nil {
			s.Logger.Error("failed to credit voter karma", "userID", voterID, "err", err)
		}
		if voterID != authorID {
			if _, err := s.Ledger.RecordActivity(ctx, authorID, karma.ActivityReceiveUpvote, "Post was upvoted", true); err != nil {
				s.Logger.Error("failed to credit author karma", "userID", authorID, "err", err)
			}
		}
		return
	}
	if voterID != authorID {
		if _, err := s.Ledger.RecordActivity(ctx, authorID, karma.ActivityReceiveDownvote, "Post was downvoted", false); err != nil {
			s.Logger.Error("failed to debit author karma", "userID", authorID, "err", err)
		}
	}
}

func (s *Service) CreateCommunity(ctx context.Context, creatorID, name, description string) (*models.Community, error) {
	if creatorID == "" {
		return nil, karma.ErrUnauthenticated
	}
	if name == "" {
		return nil, ErrEmptyContent
	}
	if err := s.Moderator.Gate(ctx, creatorID, name+" "+description); err != nil {
		return nil, err
	}

	community := models.Community{
		Name:        name,
		Description: description,
		CreatorID:   creatorID,
		MemberCount: 1,
	}
	if err := s.DB.WithContext(ctx).Create(&community).Error; err != nil {
		return nil, fmt.Errorf("creating community: %w", err)
	}
	member := models.CommunityMember{CommunityID: community.ID, UserID: creatorID}
	if err := s.DB.WithContext(ctx).Create(&member).Error; err != nil {
		return nil, fmt.Errorf("creating founding membership: %w", err)
	}

	if _, err := s.Ledger.RecordActivity(ctx, creatorID, karma.ActivityCreateCommunity, "Created a community", true); err != nil {
		s.Logger.Error("failed to credit community karma", "userID", creatorID, "err", err)
	}
	return &community, nil
}

func (s *Service) JoinCommunity(ctx context.Context, userID string, communityID uint) error {
	if userID == "" {
		return karma.ErrUnauthenticated
	}
	var community models.Community
	err := s.DB.WithContext(ctx).First(&community, communityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	} else if err != nil {
		return fmt.Errorf("loading community: %w", err)
	}

	var existing models.CommunityMember
	err = s.DB.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&existing).Error
	if err == nil {
		return ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("checking membership: %w", err)
	}

	member := models.CommunityMember{CommunityID: communityID, UserID: userID}
	if err := s.DB.WithContext(ctx).Create(&member).Error; err != nil {
		return fmt.Errorf("creating membership: %w", err)
	}
	if err := s.DB.WithContext(ctx).
		Model(&models.Community{}).
		Where("id = ?", communityID).
		Update("member_count", gorm.Expr("member_count + 1")).Error; err != nil {
		return fmt.Errorf("incrementing member count: %w", err)
	}

	if _, err := s.Ledger.RecordActivity(ctx, userID, karma.ActivityJoinCommunity, "Joined "+community.Name, false); err != nil {
		s.Logger.Error("failed to credit join karma", "userID", userID, "err", err)
	}
	return nil
}

// ListPosts returns published posts newest first, optionally scoped to a
// community, with offset pagination.
func (s *Service) ListPosts(ctx context.Context, communityID uint, page, perPage int) ([]models.Post, error) {
	if perPage <= 0 {
		perPage = 10
	}
	if page < 0 {
		page = 0
	}
	q := s.DB.WithContext(ctx).
		Where("status = ?", "published").
		Order("created_at desc").
		Offset(page * perPage).
		Limit(perPage)
	if communityID != 0 {
		q = q.Where("community_id = ?", communityID)
	}
	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}
