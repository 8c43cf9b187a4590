package models

import (
	"time"

	"gorm.io/gorm"
)

type Profile struct {
	gorm.Model
	UserID         string `gorm:"uniqueindex"`
	DisplayName    string
	Specialization string
	Institution    string
	Rank           string
	IsVerified     bool
}

type Post struct {
	gorm.Model
	AuthorID    string `gorm:"index"`
	CommunityID uint   `gorm:"index"`
	Title       string
	Content     string
	Category    string
	Upvotes     int64
	Downvotes   int64
	Status      string
}

type PostTag struct {
	ID     uint `gorm:"primarykey"`
	PostID uint `gorm:"index"`
	Tag    string
}

type Comment struct {
	gorm.Model
	PostID   uint   `gorm:"index"`
	AuthorID string `gorm:"index"`
	Content  string
}

type VoteDir int

const (
	VoteDirUp   = VoteDir(1)
	VoteDirDown = VoteDir(2)
)

func (vd VoteDir) String() string {
	switch vd {
	case VoteDirUp:
		return "up"
	case VoteDirDown:
		return "down"
	default:
		return "<unknown>"
	}
}

type PostVote struct {
	gorm.Model
	PostID uint   `gorm:"index:idx_postvote_voter,unique"`
	UserID string `gorm:"index:idx_postvote_voter,unique"`
	Dir    VoteDir
}

type Community struct {
	gorm.Model
	Name        string `gorm:"uniqueindex"`
	Description string
	CreatorID   string
	MemberCount int64
}

type CommunityMember struct {
	gorm.Model
	CommunityID uint   `gorm:"index:idx_member_community,unique"`
	UserID      string `gorm:"index:idx_member_community,unique"`
}

// Conversation covers both direct threads (IsGroup false, exactly two
// members, empty name) and named group chats.
type Conversation struct {
	gorm.Model
	Name      string
	IsGroup   bool
	CreatorID string `gorm:"index"`
}

type ConversationMember struct {
	gorm.Model
	ConversationID uint   `gorm:"index:idx_conversation_member,unique"`
	UserID         string `gorm:"index:idx_conversation_member,unique"`
}

type Message struct {
	gorm.Model
	ConversationID uint   `gorm:"index"`
	SenderID       string `gorm:"index"`
	Content        string
	ReadAt         *time.Time
}

// Append-only; rows are never updated or deleted once written.
type KarmaActivity struct {
	ID           uint   `gorm:"primarykey"`
	UserID       string `gorm:"index"`
	ActivityType string
	Points       int64
	Description  string
	CreatedAt    time.Time
}

type UserOffense struct {
	gorm.Model
	UserID      string `gorm:"uniqueindex"`
	Count       int64
	LastOffense *time.Time
	IsBanned    bool
}
