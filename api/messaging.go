package api

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

type openConversationBody struct {
	ParticipantID string `json:"participantId"`
}

func (s *Server) handleOpenConversation(c echo.Context) error {
	var body openConversationBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(400, "invalid request body")
	}
	conv, err := s.messaging.OpenDirect(c.Request().Context(), userID(c), body.ParticipantID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(201, conv)
}

func (s *Server) handleListConversations(c echo.Context) error {
	inbox, err := s.messaging.ListConversations(c.Request().Context(), userID(c))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(200, inbox)
}

func conversationID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(400, "invalid conversation id")
	}
	return uint(id), nil
}

func (s *Server) handleListMessages(c echo.Context) error {
	id, err := conversationID(c)
	if err != nil {
		return err
	}
	msgs, err := s.messaging.ListMessages(c.Request().Context(), userID(c), id)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(200, msgs)
}

type sendMessageBody struct {
	Content string `json:"content"`
}

func (s *Server) handleSendMessage(c echo.Context) error {
	id, err := conversationID(c)
	if err != nil {
		return err
	}
	var body sendMessageBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(400, "invalid request body")
	}
	msg, err := s.messaging.SendMessage(c.Request().Context(), userID(c), id, body.Content)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(201, msg)
}

func (s *Server) handleMarkRead(c echo.Context) error {
	id, err := conversationID(c)
	if err != nil {
		return err
	}
	if err := s.messaging.MarkRead(c.Request().Context(), userID(c), id); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(204)
}

type createGroupBody struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"memberIds"`
}

func (s *Server) handleCreateGroup(c echo.Context) error {
	var body createGroupBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(400, "invalid request body")
	}
	group, err := s.messaging.CreateGroup(c.Request().Context(), userID(c), body.Name, body.MemberIDs)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(201, group)
}

type addMemberBody struct {
	UserID string `json:"userId"`
}

func (s *Server) handleAddGroupMember(c echo.Context) error {
	id, err := conversationID(c)
	if err != nil {
		return err
	}
	var body addMemberBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(400, "invalid request body")
	}
	if err := s.messaging.AddMember(c.Request().Context(), userID(c), id, body.UserID); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(204)
}

func (s *Server) handleRemoveGroupMember(c echo.Context) error {
	id, err := conversationID(c)
	if err != nil {
		return err
	}
	if err := s.messaging.RemoveMember(c.Request().Context(), userID(c), id, c.Param("userId")); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(204)
}
