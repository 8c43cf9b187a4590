// Package messaging implements direct and group conversations between
// members. Outbound messages pass through the same moderation gate as
// community content, so a banned account cannot message around a ban.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/rounds-social/rounds/karma"
	"github.com/rounds-social/rounds/models"
	"github.com/rounds-social/rounds/moderation"
)

var (
	ErrEmptyContent   = errors.New("message must not be empty")
	ErrNotFound       = errors.New("conversation not found")
	ErrNotMember      = errors.New("not a conversation member")
	ErrAlreadyMember  = errors.New("already a conversation member")
	ErrBadParticipant = errors.New("invalid conversation participant")
	ErrNotGroup       = errors.New("not a group conversation")
)

type Service struct {
	DB        *gorm.DB
	Moderator *moderation.Moderator
	Logger    *slog.Logger
}

func NewService(db *gorm.DB, mod *moderation.Moderator, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := db.AutoMigrate(
		&models.Conversation{},
		&models.ConversationMember{},
		&models.Message{},
	); err != nil {
		return nil, fmt.Errorf("migrating messaging tables: %w", err)
	}
	return &Service{
		DB:        db,
		Moderator: mod,
		Logger:    logger.With("system", "messaging"),
	}, nil
}

// OpenDirect returns the direct conversation between the two users, creating
// it on first contact. Opening the same pair twice yields the same thread.
func (s *Service) OpenDirect(ctx context.Context, userID, otherID string) (*models.Conversation, error) {
	if userID == "" {
		return nil, karma.ErrUnauthenticated
	}
	if otherID == "" || otherID == userID {
		return nil, ErrBadParticipant
	}

	var convID uint
	err := s.DB.WithContext(ctx).
		Table("conversation_members AS a").
		Select("a.conversation_id").
		Joins("JOIN conversation_members AS b ON a.conversation_id = b.conversation_id").
		Joins("JOIN conversations ON conversations.id = a.conversation_id").
		Where("a.user_id = ? AND b.user_id = ? AND conversations.is_group = ?", userID, otherID, false).
		Limit(1).
		Scan(&convID).Error
	if err != nil {
		return nil, fmt.Errorf("finding direct conversation: %w", err)
	}
	if convID != 0 {
		var conv models.Conversation
		if err := s.DB.WithContext(ctx).First(&conv, convID).Error; err != nil {
			return nil, fmt.Errorf("loading direct conversation: %w", err)
		}
		return &conv, nil
	}

	conv := models.Conversation{IsGroup: false, CreatorID: userID}
	if err := s.DB.WithContext(ctx).Create(&conv).Error; err != nil {
		return nil, fmt.Errorf("creating direct conversation: %w", err)
	}
	for _, uid := range []string{userID, otherID} {
		member := models.ConversationMember{ConversationID: conv.ID, UserID: uid}
		if err := s.DB.WithContext(ctx).Create(&member).Error; err != nil {
			return nil, fmt.Errorf("creating conversation membership: %w", err)
		}
	}
	return &conv, nil
}

// CreateGroup opens a named group chat with the creator plus the given
// members. The group name passes the moderation gate like any other
// user-supplied text.
func (s *Service) CreateGroup(ctx context.Context, creatorID, name string, memberIDs []string) (*models.Conversation, error) {
	if creatorID == "" {
		return nil, karma.ErrUnauthenticated
	}
	if name == "" {
		return nil, ErrEmptyContent
	}
	if err := s.Moderator.Gate(ctx, creatorID, name); err != nil {
		return nil, err
	}

	conv := models.Conversation{Name: name, IsGroup: true, CreatorID: creatorID}
	if err := s.DB.WithContext(ctx).Create(&conv).Error; err != nil {
		return nil, fmt.Errorf("creating group conversation: %w", err)
	}

	seen := map[string]bool{creatorID: true}
	members := []string{creatorID}
	for _, uid := range memberIDs {
		if uid == "" || seen[uid] {
			continue
		}
		seen[uid] = true
		members = append(members, uid)
	}
	for _, uid := range members {
		member := models.ConversationMember{ConversationID: conv.ID, UserID: uid}
		if err := s.DB.WithContext(ctx).Create(&member).Error; err != nil {
			return nil, fmt.Errorf("creating group membership: %w", err)
		}
	}
	return &conv, nil
}

// AddMember adds a user to a group conversation. The caller must already be
// a member.
func (s *Service) AddMember(ctx context.Context, userID string, conversationID uint, newMemberID string) error {
	if userID == "" {
		return karma.ErrUnauthenticated
	}
	if newMemberID == "" {
		return ErrBadParticipant
	}
	conv, err := s.loadConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.IsGroup {
		return ErrNotGroup
	}
	if err := s.requireMember(ctx, conversationID, userID); err != nil {
		return err
	}

	isMember, err := s.isMember(ctx, conversationID, newMemberID)
	if err != nil {
		return err
	}
	if isMember {
		return ErrAlreadyMember
	}
	member := models.ConversationMember{ConversationID: conversationID, UserID: newMemberID}
	if err := s.DB.WithContext(ctx).Create(&member).Error; err != nil {
		return fmt.Errorf("creating group membership: %w", err)
	}
	return nil
}

// RemoveMember removes a user from a group conversation. Members may remove
// themselves; the creator may remove anyone.
func (s *Service) RemoveMember(ctx context.Context, userID string, conversationID uint, memberID string) error {
	if userID == "" {
		return karma.ErrUnauthenticated
	}
	conv, err := s.loadConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.IsGroup {
		return ErrNotGroup
	}
	if userID != memberID && userID != conv.CreatorID {
		return ErrNotMember
	}

	// hard delete, so the user can be re-added later
	res := s.DB.WithContext(ctx).Unscoped().
		Where("conversation_id = ? AND user_id = ?", conversationID, memberID).
		Delete(&models.ConversationMember{})
	if res.Error != nil {
		return fmt.Errorf("removing group membership: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotMember
	}
	return nil
}

// SendMessage appends a message to a conversation the sender belongs to.
// Profane messages are rejected and escalate the sender's offense state the
// same way rejected posts do; they are never stored.
func (s *Service) SendMessage(ctx context.Context, senderID string, conversationID uint, content string) (*models.Message, error) {
	if senderID == "" {
		return nil, karma.ErrUnauthenticated
	}
	if content == "" {
		return nil, ErrEmptyContent
	}
	if _, err := s.loadConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, conversationID, senderID); err != nil {
		return nil, err
	}
	if err := s.Moderator.Gate(ctx, senderID, content); err != nil {
		return nil, err
	}

	msg := models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
	}
	if err := s.DB.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}
	if err := s.DB.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("updated_at", time.Now().UTC()).Error; err != nil {
		return nil, fmt.Errorf("touching conversation: %w", err)
	}
	return &msg, nil
}

// ListMessages returns a conversation's messages oldest first. Only members
// may read a thread.
func (s *Service) ListMessages(ctx context.Context, userID string, conversationID uint) ([]models.Message, error) {
	if userID == "" {
		return nil, karma.ErrUnauthenticated
	}
	if _, err := s.loadConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	var msgs []models.Message
	if err := s.DB.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at asc, id asc").
		Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return msgs, nil
}

// MarkRead stamps every unread message from other senders in the
// conversation as read by this user.
func (s *Service) MarkRead(ctx context.Context, userID string, conversationID uint) error {
	if userID == "" {
		return karma.ErrUnauthenticated
	}
	if err := s.requireMember(ctx, conversationID, userID); err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := s.DB.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, userID).
		Update("read_at", now).Error; err != nil {
		return fmt.Errorf("marking messages read: %w", err)
	}
	return nil
}

// ConversationSummary is one inbox row: the thread, its latest message, and
// how many messages the user has not read yet.
type ConversationSummary struct {
	Conversation models.Conversation `json:"conversation"`
	LastMessage  *models.Message     `json:"lastMessage,omitempty"`
	UnreadCount  int64               `json:"unreadCount"`
}

// ListConversations returns the user's threads, most recently active first.
func (s *Service) ListConversations(ctx context.Context, userID string) ([]ConversationSummary, error) {
	if userID == "" {
		return nil, karma.ErrUnauthenticated
	}
	var memberships []models.ConversationMember
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("listing memberships: %w", err)
	}
	if len(memberships) == 0 {
		return []ConversationSummary{}, nil
	}
	ids := make([]uint, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.ConversationID)
	}

	var convs []models.Conversation
	if err := s.DB.WithContext(ctx).
		Where("id IN ?", ids).
		Order("updated_at desc").
		Find(&convs).Error; err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}

	out := make([]ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summary := ConversationSummary{Conversation: conv}

		var last models.Message
		err := s.DB.WithContext(ctx).
			Where("conversation_id = ?", conv.ID).
			Order("created_at desc, id desc").
			First(&last).Error
		if err == nil {
			summary.LastMessage = &last
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("loading last message: %w", err)
		}

		if err := s.DB.WithContext(ctx).
			Model(&models.Message{}).
			Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conv.ID, userID).
			Count(&summary.UnreadCount).Error; err != nil {
			return nil, fmt.Errorf("counting unread messages: %w", err)
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *Service) loadConversation(ctx context.Context, conversationID uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.DB.WithContext(ctx).First(&conv, conversationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("loading conversation: %w", err)
	}
	return &conv, nil
}

func (s *Service) isMember(ctx context.Context, conversationID uint, userID string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&models.ConversationMember{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking membership: %w", err)
	}
	return count > 0, nil
}

func (s *Service) requireMember(ctx context.Context, conversationID uint, userID string) error {
	isMember, err := s.isMember(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return ErrNotMember
	}
	return nil
}
