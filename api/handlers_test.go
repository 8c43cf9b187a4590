package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rounds-social/rounds/content"
	"github.com/rounds-social/rounds/karma"
	"github.com/rounds-social/rounds/messaging"
	"github.com/rounds-social/rounds/moderation"
	"github.com/rounds-social/rounds/notify"
	"github.com/rounds-social/rounds/util"
	"github.com/rounds-social/rounds/verify"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := util.SetupDatabase("sqlite://:memory:", 1)
	require.NoError(t, err)

	notifier := notify.NewMemNotifier()
	ledger := karma.NewLedger(karma.NewMemActivityStore(), notifier, nil)
	mod := moderation.NewModerator(ledger, moderation.NewMemOffenseStore(), notifier, nil)
	svc, err := content.NewService(db, ledger, mod, nil)
	require.NoError(t, err)
	msgSvc, err := messaging.NewService(db, mod, nil)
	require.NoError(t, err)
	scorer := verify.NewScorer(verify.NewLicenseClient(), verify.NewNPIClient(), verify.NewDocumentClient("http://localhost:1"), nil)

	srv := httptest.NewServer(NewServer(svc, msgSvc, ledger, mod, scorer, nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, srv *httptest.Server, userID, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest("POST", srv.URL+path, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return res
}

func TestHealthz(t *testing.T) {
	assert := assert.New(t)
	srv := testServer(t)

	res, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(200, res.StatusCode)
}

func TestCreatePostAndReadKarma(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	srv := testServer(t)

	res := postJSON(t, srv, "alice", "/api/posts", map[string]any{
		"title":   "Interesting ECG finding",
		"content": "Sharing a case from clinic today.",
	})
	defer res.Body.Close()
	require.Equal(201, res.StatusCode)

	karmaRes, err := http.Get(srv.URL + "/api/users/alice/karma")
	require.NoError(err)
	defer karmaRes.Body.Close()
	require.Equal(200, karmaRes.StatusCode)

	var body struct {
		TotalKarma int64  `json:"totalKarma"`
		Rank       string `json:"rank"`
	}
	require.NoError(json.NewDecoder(karmaRes.Body).Decode(&body))
	assert.Equal(int64(10), body.TotalKarma)
	assert.Equal("Intern", body.Rank)
}

func TestCreatePostRequiresAuth(t *testing.T) {
	assert := assert.New(t)
	srv := testServer(t)

	res := postJSON(t, srv, "", "/api/posts", map[string]any{
		"title":   "t",
		"content": "c",
	})
	defer res.Body.Close()
	assert.Equal(401, res.StatusCode)
}

func TestModerationRejectionStatus(t *testing.T) {
	assert := assert.New(t)
	srv := testServer(t)

	res := postJSON(t, srv, "alice", "/api/posts", map[string]any{
		"title":   "venting",
		"content": "this is shit",
	})
	defer res.Body.Close()
	assert.Equal(422, res.StatusCode)
}

func TestBannedUserForbidden(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	srv := testServer(t)

	// four violations ban the account; each one is a 422
	for i := 0; i < 4; i++ {
		res := postJSON(t, srv, "alice", "/api/posts", map[string]any{
			"title":   "venting",
			"content": "this is shit",
		})
		require.Equal(422, res.StatusCode)
		res.Body.Close()
	}

	// once banned, even clean content is refused with a distinct status
	res := postJSON(t, srv, "alice", "/api/posts", map[string]any{
		"title":   "update",
		"content": "a perfectly clean case report",
	})
	defer res.Body.Close()
	assert.Equal(403, res.StatusCode)
}

func TestLeaderboardEndpoint(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	srv := testServer(t)

	res := postJSON(t, srv, "alice", "/api/posts", map[string]any{"title": "t", "content": "c"})
	require.Equal(201, res.StatusCode)
	res.Body.Close()
	res = postJSON(t, srv, "bob", "/api/communities", map[string]any{"name": "Cardiology", "description": "d"})
	require.Equal(201, res.StatusCode)
	res.Body.Close()

	lbRes, err := http.Get(srv.URL + "/api/leaderboard")
	require.NoError(err)
	defer lbRes.Body.Close()
	require.Equal(200, lbRes.StatusCode)

	var rows []struct {
		UserID     string `json:"userId"`
		TotalKarma int64  `json:"totalKarma"`
		Rank       string `json:"rank"`
	}
	require.NoError(json.NewDecoder(lbRes.Body).Decode(&rows))
	require.Len(rows, 2)
	assert.Equal("bob", rows[0].UserID) // CREATE_COMMUNITY outscores CREATE_POST
	assert.Equal(int64(15), rows[0].TotalKarma)
	assert.Equal("Intern", rows[0].Rank)
	assert.Equal("alice", rows[1].UserID)
}

func TestSearchEndpoint(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	srv := testServer(t)

	res := postJSON(t, srv, "alice", "/api/posts", map[string]any{
		"title":   "Interesting ECG finding",
		"content": "Sharing a case from clinic today.",
	})
	require.Equal(201, res.StatusCode)
	res.Body.Close()

	searchRes, err := http.Get(srv.URL + "/api/search?q=ECG")
	require.NoError(err)
	defer searchRes.Body.Close()
	require.Equal(200, searchRes.StatusCode)

	var results struct {
		Posts []struct {
			Title string `json:"Title"`
		} `json:"posts"`
	}
	require.NoError(json.NewDecoder(searchRes.Body).Decode(&results))
	require.Len(results.Posts, 1)
	assert.Equal("Interesting ECG finding", results.Posts[0].Title)

	missing, err := http.Get(srv.URL + "/api/search")
	require.NoError(err)
	defer missing.Body.Close()
	assert.Equal(400, missing.StatusCode)
}

func TestMessagingEndpoints(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	srv := testServer(t)

	res := postJSON(t, srv, "alice", "/api/conversations", map[string]any{"participantId": "bob"})
	require.Equal(201, res.StatusCode)
	var conv struct {
		ID uint `json:"ID"`
	}
	require.NoError(json.NewDecoder(res.Body).Decode(&conv))
	res.Body.Close()

	msgRes := postJSON(t, srv, "alice", fmt.Sprintf("/api/conversations/%d/messages", conv.ID), map[string]any{
		"content": "how did the biopsy look?",
	})
	require.Equal(201, msgRes.StatusCode)
	msgRes.Body.Close()

	// the other participant reads the thread
	listReq, err := http.NewRequest("GET", srv.URL+fmt.Sprintf("/api/conversations/%d/messages", conv.ID), nil)
	require.NoError(err)
	listReq.Header.Set("X-User-ID", "bob")
	listRes, err := http.DefaultClient.Do(listReq)
	require.NoError(err)
	defer listRes.Body.Close()
	require.Equal(200, listRes.StatusCode)
	var msgs []struct {
		Content string `json:"Content"`
	}
	require.NoError(json.NewDecoder(listRes.Body).Decode(&msgs))
	require.Len(msgs, 1)
	assert.Equal("how did the biopsy look?", msgs[0].Content)

	// outsiders are forbidden
	outReq, err := http.NewRequest("GET", srv.URL+fmt.Sprintf("/api/conversations/%d/messages", conv.ID), nil)
	require.NoError(err)
	outReq.Header.Set("X-User-ID", "carol")
	outRes, err := http.DefaultClient.Do(outReq)
	require.NoError(err)
	defer outRes.Body.Close()
	assert.Equal(403, outRes.StatusCode)

	// the moderation gate covers messages too
	profane := postJSON(t, srv, "alice", fmt.Sprintf("/api/conversations/%d/messages", conv.ID), map[string]any{
		"content": "this is shit",
	})
	defer profane.Body.Close()
	assert.Equal(422, profane.StatusCode)
}

func TestAdminOffenseReset(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	srv := testServer(t)

	// trip the filter once
	res := postJSON(t, srv, "alice", "/api/posts", map[string]any{
		"title":   "venting",
		"content": "this is shit",
	})
	res.Body.Close()

	offRes, err := http.Get(srv.URL + "/admin/users/alice/offenses")
	require.NoError(err)
	defer offRes.Body.Close()
	var state struct {
		Count    int64 `json:"count"`
		IsBanned bool  `json:"isBanned"`
	}
	require.NoError(json.NewDecoder(offRes.Body).Decode(&state))
	assert.Equal(int64(1), state.Count)

	resetRes := postJSON(t, srv, "admin", "/admin/users/alice/offenses/reset", map[string]any{})
	defer resetRes.Body.Close()
	require.Equal(204, resetRes.StatusCode)

	offRes2, err := http.Get(srv.URL + "/admin/users/alice/offenses")
	require.NoError(err)
	defer offRes2.Body.Close()
	require.NoError(json.NewDecoder(offRes2.Body).Decode(&state))
	assert.Equal(int64(0), state.Count)
	assert.False(state.IsBanned)
}

func TestVoteEndpoint(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	srv := testServer(t)

	res := postJSON(t, srv, "alice", "/api/posts", map[string]any{
		"title":   "t",
		"content": "c",
	})
	defer res.Body.Close()
	require.Equal(201, res.StatusCode)
	var post struct {
		ID uint `json:"ID"`
	}
	require.NoError(json.NewDecoder(res.Body).Decode(&post))

	voteRes := postJSON(t, srv, "bob", fmt.Sprintf("/api/posts/%d/votes", post.ID), map[string]any{
		"direction": "up",
	})
	defer voteRes.Body.Close()
	assert.Equal(204, voteRes.StatusCode)

	badRes := postJSON(t, srv, "bob", fmt.Sprintf("/api/posts/%d/votes", post.ID), map[string]any{
		"direction": "sideways",
	})
	defer badRes.Body.Close()
	assert.Equal(400, badRes.StatusCode)
}
