package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rounds-social/rounds/karma"
	"github.com/rounds-social/rounds/models"
	"github.com/rounds-social/rounds/moderation"
	"github.com/rounds-social/rounds/notify"
	"github.com/rounds-social/rounds/util"
)

func testService(t *testing.T) (*Service, *karma.Ledger, *moderation.Moderator) {
	t.Helper()
	db, err := util.SetupDatabase("sqlite://:memory:", 1)
	require.NoError(t, err)

	notifier := notify.NewMemNotifier()
	ledger := karma.NewLedger(karma.NewMemActivityStore(), notifier, nil)
	mod := moderation.NewModerator(ledger, moderation.NewMemOffenseStore(), notifier, nil)
	svc, err := NewService(db, ledger, mod, nil)
	require.NoError(t, err)
	return svc, ledger, mod
}

func TestCreatePostCreditsKarma(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	svc, ledger, _ := testService(t)

	post, err := svc.CreatePost(ctx, "alice", PostInput{
		Title:   "Interesting ECG finding",
		Content: "Sharing a case from clinic today.",
		Tags:    []string{"cardiology"},
	})
	require.NoError(err)
	assert.Equal("published", post.Status)
	assert.Equal("general", post.Category)

	total, err := ledger.Total(ctx, "alice")
	require.NoError(err)
	assert.Equal(int64(10), total)
}

func TestCreatePostValidation(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	svc, _, _ := testService(t)

	_, err := svc.CreatePost(ctx, "", PostInput{Title: "t", Content: "c"})
	assert.ErrorIs(err, karma.ErrUnauthenticated)

	_, err = svc.CreatePost(ctx, "alice", PostInput{Title: "", Content: ""})
	assert.ErrorIs(err, ErrEmptyContent)
}

func TestProfanePostRejected(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	svc, ledger, mod := testService(t)

	_, err := svc.CreatePost(ctx, "alice", PostInput{
		Title:   "venting",
		Content: "this is shit",
	})
	assert.ErrorIs(err, ErrContentRejected)

	// penalty applied, no post row created
	total, err := ledger.Total(ctx, "alice")
	require.NoError(err)
	assert.Equal(int64(-20), total)
	state, err := mod.OffenseStateFor(ctx, "alice")
	require.NoError(err)
	assert.Equal(int64(1), state.Count)

	posts, err := svc.ListPosts(ctx, 0, 0, 10)
	require.NoError(err)
	assert.Empty(posts)
}

func TestBannedAuthorGetsDistinctError(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	svc, _, mod := testService(t)

	// four violations ban the account; each is a plain rejection
	for i := 0; i < moderation.MaxOffenses+1; i++ {
		_, err := svc.CreatePost(ctx, "alice", PostInput{Title: "venting", Content: "merde"})
		assert.ErrorIs(err, ErrContentRejected)
		assert.NotErrorIs(err, ErrBanned)
	}
	banned, err := mod.IsBanned(ctx, "alice")
	require.NoError(err)
	assert.True(banned)

	// once banned, even clean submissions fail with the ban error
	_, err = svc.CreatePost(ctx, "alice", PostInput{Title: "update", Content: "a perfectly clean case report"})
	assert.ErrorIs(err, ErrBanned)
	assert.NotErrorIs(err, ErrContentRejected)

	post, err := svc.CreatePost(ctx, "bob", PostInput{Title: "t", Content: "c"})
	require.NoError(err)
	_, err = svc.CreateComment(ctx, "alice", post.ID, "a perfectly clean comment")
	assert.ErrorIs(err, ErrBanned)
	_, err = svc.CreateCommunity(ctx, "alice", "Oncology", "clean description")
	assert.ErrorIs(err, ErrBanned)

	// the banned short-circuit never advances the offense count
	state, err := mod.OffenseStateFor(ctx, "alice")
	require.NoError(err)
	assert.Equal(int64(moderation.MaxOffenses+1), state.Count)
}

func TestCommentKarmaBothSides(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	svc, ledger, _ := testService(t)

	post, err := svc.CreatePost(ctx, "alice", PostInput{Title: "t", Content: "c"})
	require.NoError(err)

	_, err = svc.CreateComment(ctx, "bob", post.ID, "great case, thanks for sharing")
	require.NoError(err)

	bobTotal, err := ledger.Total(ctx, "bob")
	require.NoError(err)
	assert.Equal(int64(2), bobTotal) // CREATE_COMMENT

	aliceTotal, err := ledger.Total(ctx, "alice")
	require.NoError(err)
	assert.Equal(int64(12), aliceTotal) // CREATE_POST + RECEIVE_COMMENT
}

func TestVoteSemantics(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	svc, ledger, _ := testService(t)

	post, err := svc.CreatePost(ctx, "alice", PostInput{Title: "t", Content: "c"})
	require.NoError(err)

	// new upvote: voter +1, author +5
	require.NoError(svc.VoteOnPost(ctx, "bob", post.ID, models.VoteDirUp))
	var reloaded models.Post
	require.NoError(svc.DB.First(&reloaded, post.ID).Error)
	assert.Equal(int64(1), reloaded.Upvotes)

	bobTotal, err := ledger.Total(ctx, "bob")
	require.NoError(err)
	assert.Equal(int64(1), bobTotal)
	aliceTotal, err := ledger.Total(ctx, "alice")
	require.NoError(err)
	assert.Equal(int64(15), aliceTotal)

	// switching direction moves the tally, no extra karma
	require.NoError(svc.VoteOnPost(ctx, "bob", post.ID, models.VoteDirDown))
	require.NoError(svc.DB.First(&reloaded, post.ID).Error)
	assert.Equal(int64(0), reloaded.Upvotes)
	assert.Equal(int64(1), reloaded.Downvotes)
	bobTotal, err = ledger.Total(ctx, "bob")
	require.NoError(err)
	assert.Equal(int64(1), bobTotal)

	// voting the same direction again removes the vote
	require.NoError(svc.VoteOnPost(ctx, "bob", post.ID, models.VoteDirDown))
	require.NoError(svc.DB.First(&reloaded, post.ID).Error)
	assert.Equal(int64(0), reloaded.Downvotes)
}

func TestCommunityLifecycle(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	svc, ledger, _ := testService(t)

	community, err := svc.CreateCommunity(ctx, "alice", "Cardiology", "All things heart")
	require.NoError(err)
	assert.Equal(int64(1), community.MemberCount)

	aliceTotal, err := ledger.Total(ctx, "alice")
	require.NoError(err)
	assert.Equal(int64(15), aliceTotal) // CREATE_COMMUNITY

	require.NoError(svc.JoinCommunity(ctx, "bob", community.ID))
	bobTotal, err := ledger.Total(ctx, "bob")
	require.NoError(err)
	assert.Equal(int64(1), bobTotal) // JOIN_COMMUNITY

	// joining twice conflicts, no double credit
	err = svc.JoinCommunity(ctx, "bob", community.ID)
	assert.ErrorIs(err, ErrAlreadyMember)
	bobTotal, err = ledger.Total(ctx, "bob")
	require.NoError(err)
	assert.Equal(int64(1), bobTotal)

	var reloaded models.Community
	require.NoError(svc.DB.First(&reloaded, community.ID).Error)
	assert.Equal(int64(2), reloaded.MemberCount)
}

func TestSearch(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	svc, _, _ := testService(t)

	_, err := svc.CreatePost(ctx, "alice", PostInput{
		Title:    "Interesting ECG finding",
		Content:  "Sharing a case from clinic today.",
		Category: "second_opinion",
	})
	require.NoError(err)
	popular, err := svc.CreatePost(ctx, "bob", PostInput{
		Title:   "ECG basics refresher",
		Content: "Back to fundamentals.",
	})
	require.NoError(err)
	require.NoError(svc.VoteOnPost(ctx, "carol", popular.ID, models.VoteDirUp))

	_, err = svc.CreateCommunity(ctx, "alice", "ECG reading club", "weekly strips")
	require.NoError(err)
	require.NoError(svc.DB.Create(&models.Profile{UserID: "dana", DisplayName: "Dana ECG Hart"}).Error)

	results, err := svc.Search(ctx, "ECG", SearchFilters{})
	require.NoError(err)
	assert.Len(results.Posts, 2)
	require.Len(results.Communities, 1)
	assert.Equal("ECG reading club", results.Communities[0].Name)
	require.Len(results.Profiles, 1)
	assert.Equal("dana", results.Profiles[0].UserID)

	// category narrows, popular sorts by upvotes
	results, err = svc.Search(ctx, "ECG", SearchFilters{Category: "second_opinion"})
	require.NoError(err)
	require.Len(results.Posts, 1)
	assert.Equal("Interesting ECG finding", results.Posts[0].Title)

	results, err = svc.Search(ctx, "ECG", SearchFilters{SortBy: "popular"})
	require.NoError(err)
	require.Len(results.Posts, 2)
	assert.Equal(popular.ID, results.Posts[0].ID)

	results, err = svc.Search(ctx, "glioblastoma", SearchFilters{})
	require.NoError(err)
	assert.Empty(results.Posts)
	assert.Empty(results.Communities)
	assert.Empty(results.Profiles)

	_, err = svc.Search(ctx, "", SearchFilters{})
	assert.ErrorIs(err, ErrEmptyContent)
}

func TestTrendingPosts(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	svc, _, _ := testService(t)

	quiet, err := svc.CreatePost(ctx, "alice", PostInput{Title: "quiet", Content: "c"})
	require.NoError(err)
	busy, err := svc.CreatePost(ctx, "alice", PostInput{Title: "busy", Content: "c"})
	require.NoError(err)

	require.NoError(svc.VoteOnPost(ctx, "bob", busy.ID, models.VoteDirUp))
	require.NoError(svc.VoteOnPost(ctx, "carol", busy.ID, models.VoteDirUp))
	_, err = svc.CreateComment(ctx, "bob", busy.ID, "following this thread")
	require.NoError(err)

	trending, err := svc.TrendingPosts(ctx, 5)
	require.NoError(err)
	require.Len(trending, 2)
	assert.Equal(busy.ID, trending[0].Post.ID)
	assert.Equal(quiet.ID, trending[1].Post.ID)
	assert.Greater(trending[0].TrendingScore, trending[1].TrendingScore)
}
