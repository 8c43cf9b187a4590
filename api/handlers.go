package api

import (
	"errors"
	"io"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rounds-social/rounds/content"
	"github.com/rounds-social/rounds/karma"
	"github.com/rounds-social/rounds/messaging"
	"github.com/rounds-social/rounds/models"
	"github.com/rounds-social/rounds/verify"
)

func userID(c echo.Context) string {
	return c.Request().Header.Get("X-User-ID")
}

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, karma.ErrUnauthenticated):
		return echo.NewHTTPError(401, "authentication required")
	case errors.Is(err, content.ErrBanned):
		return echo.NewHTTPError(403, "account banned")
	case errors.Is(err, content.ErrEmptyContent), errors.Is(err, messaging.ErrEmptyContent):
		return echo.NewHTTPError(400, "content must not be empty")
	case errors.Is(err, messaging.ErrBadParticipant):
		return echo.NewHTTPError(400, "invalid participant")
	case errors.Is(err, messaging.ErrNotGroup):
		return echo.NewHTTPError(400, "not a group conversation")
	case errors.Is(err, content.ErrContentRejected):
		return echo.NewHTTPError(422, "content rejected by moderation")
	case errors.Is(err, messaging.ErrNotMember):
		return echo.NewHTTPError(403, "not a conversation member")
	case errors.Is(err, content.ErrNotFound), errors.Is(err, messaging.ErrNotFound):
		return echo.NewHTTPError(404, "not found")
	case errors.Is(err, content.ErrAlreadyMember), errors.Is(err, messaging.ErrAlreadyMember):
		return echo.NewHTTPError(409, "already a member")
	default:
		return err
	}
}

type createPostBody struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	CommunityID uint     `json:"communityId"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

func (s *Server) handleCreatePost(c echo.Context) error {
	var body createPostBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(400, "invalid request body")
	}
	post, err := s.content.CreatePost(c.Request().Context(), userID(c), content.PostInput{
		Title:       body.Title,
		Content:     body.Content,
		CommunityID: body.CommunityID,
		Category:    body.Category,
		Tags:        body.Tags,
	})
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(201, post)
}

func (s *Server) handleListPosts(c echo.Context) error {
	communityID, _ := strconv.ParseUint(c.QueryParam("community"), 10, 32)
	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("perPage"))
	posts, err := s.content.ListPosts(c.Request().Context(), uint(communityID), page, perPage)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(200, posts)
}

func (s *Server) handleTrendingPosts(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	posts, err := s.content.TrendingPosts(c.Request().Context(), limit)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(200, posts)
}

type voteBody struct {
	Direction string `json:"direction"`
}

func (s *Server) handleVoteOnPost(c echo.Context) error {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(400, "invalid post id")
	}
	var body voteBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(400, "invalid request body")
	}
	var dir models.VoteDir
	switch body.Direction {
	case "up":
		dir = models.VoteDirUp
	case "down":
		dir = models.VoteDirDown
	default:
		return echo.NewHTTPError(400, "direction must be 'up' or 'down'")
	}
	if err := s.content.VoteOnPost(c.Request().Context(), userID(c), uint(postID), dir); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(204)
}

type commentBody struct {
	Content string `json:"content"`
}

func (s *Server) handleCreateComment(c echo.Context) error {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(400, "invalid post id")
	}
	var body commentBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(400, "invalid request body")
	}
	comment, err := s.content.CreateComment(c.Request().Context(), userID(c), uint(postID), body.Content)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(201, comment)
}

type communityBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleCreateCommunity(c echo.Context) error {
	var body communityBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(400, "invalid request body")
	}
	community, err := s.content.CreateCommunity(c.Request().Context(), userID(c), body.Name, body.Description)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(201, community)
}

func (s *Server) handleJoinCommunity(c echo.Context) error {
	communityID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(400, "invalid community id")
	}
	if err := s.content.JoinCommunity(c.Request().Context(), userID(c), uint(communityID)); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(204)
}

type userKarmaResp struct {
	TotalKarma int64           `json:"totalKarma"`
	Rank       string          `json:"rank"`
	RankColor  string          `json:"rankColor"`
	Breakdown  karma.Breakdown `json:"breakdown"`
}

func (s *Server) handleUserKarma(c echo.Context) error {
	ctx := c.Request().Context()
	uid := c.Param("id")
	total, err := s.ledger.Total(ctx, uid)
	if err != nil {
		return mapServiceError(err)
	}
	breakdown, err := s.ledger.BreakdownFor(ctx, uid)
	if err != nil {
		return mapServiceError(err)
	}
	rank := karma.RankFor(total)
	return c.JSON(200, userKarmaResp{
		TotalKarma: total,
		Rank:       rank.Label,
		RankColor:  rank.Color,
		Breakdown:  *breakdown,
	})
}

func (s *Server) handleLeaderboard(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	rows, err := s.ledger.Leaderboard(c.Request().Context(), limit)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(200, rows)
}

func (s *Server) handleSearch(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(400, "q is required")
	}
	results, err := s.content.Search(c.Request().Context(), query, content.SearchFilters{
		Category: c.QueryParam("category"),
		SortBy:   c.QueryParam("sort"),
	})
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(200, results)
}

func (s *Server) handleUserOffenses(c echo.Context) error {
	state, err := s.moderator.OffenseStateFor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(200, state)
}

func (s *Server) handleResetOffenses(c echo.Context) error {
	if err := s.moderator.ResetOffenses(c.Request().Context(), c.Param("id")); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(204)
}

func (s *Server) handleVerifyDoctor(c echo.Context) error {
	req := &verify.Request{
		LicenseNumber: c.FormValue("licenseNumber"),
		NPI:           c.FormValue("npi"),
		State:         c.FormValue("state"),
		Institution:   c.FormValue("institution"),
	}
	if req.LicenseNumber == "" || req.State == "" {
		return echo.NewHTTPError(400, "licenseNumber and state are required")
	}
	fh, err := c.FormFile("document")
	if err != nil {
		return echo.NewHTTPError(400, "credential document is required")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(400, "failed to open uploaded document")
	}
	defer f.Close()
	docBytes, err := io.ReadAll(f)
	if err != nil {
		return echo.NewHTTPError(400, "failed to read uploaded document")
	}
	req.DocumentFilename = fh.Filename
	req.Document = docBytes

	result := s.scorer.VerifyDoctor(c.Request().Context(), req)
	return c.JSON(200, result)
}
