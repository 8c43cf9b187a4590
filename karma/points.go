package karma

import "strings"

type ActivityType string

const (
	ActivityCreatePost        = ActivityType("CREATE_POST")
	ActivityCreateComment     = ActivityType("CREATE_COMMENT")
	ActivityReceiveComment    = ActivityType("RECEIVE_COMMENT")
	ActivityGiveUpvote        = ActivityType("GIVE_UPVOTE")
	ActivityReceiveUpvote     = ActivityType("RECEIVE_UPVOTE")
	ActivityReceiveDownvote   = ActivityType("RECEIVE_DOWNVOTE")
	ActivityJoinCommunity     = ActivityType("JOIN_COMMUNITY")
	ActivityCreateCommunity   = ActivityType("CREATE_COMMUNITY")
	ActivityModerationPenalty = ActivityType("MODERATION_PENALTY")
)

// Fixed point values per activity. Signed; downvotes and moderation
// penalties subtract.
var activityPoints = map[ActivityType]int64{
	ActivityCreatePost:        10,
	ActivityCreateComment:     2,
	ActivityReceiveComment:    2,
	ActivityGiveUpvote:        1,
	ActivityReceiveUpvote:     5,
	ActivityReceiveDownvote:   -2,
	ActivityJoinCommunity:     1,
	ActivityCreateCommunity:   15,
	ActivityModerationPenalty: -2,
}

// Points returns the fixed point value for an activity type, and whether the
// type is known.
func Points(at ActivityType) (int64, bool) {
	p, ok := activityPoints[at]
	return p, ok
}

// Category buckets for the karma breakdown. Vote classification is by
// substring, matching every *_UPVOTE / *_DOWNVOTE type.
func isPostActivity(at string) bool {
	return at == string(ActivityCreatePost)
}

func isCommentActivity(at string) bool {
	return at == string(ActivityCreateComment) || at == string(ActivityReceiveComment)
}

func isVoteActivity(at string) bool {
	return strings.Contains(at, "VOTE")
}
