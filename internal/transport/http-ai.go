package transport

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/chat"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/models"
)

const (
	polishUnavailable = "AI润色服务暂时不可用，请稍后再试"
	tagsUnavailable   = "AI标签生成服务暂时不可用，请稍后再试"
)

func (s *HTTPServer) Chat(c echo.Context) error {
	req := models.ChatReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	history := make([]chat.Turn, len(req.Context))
	for i, turn := range req.Context {
		history[i] = chat.Turn{Type: turn.Type, Content: turn.Content}
	}

	reply, err := s.chat.Chat(c.Request().Context(), req.Message, history)
	if errors.Is(err, chat.ErrEmptyInput) {
		return echo.NewHTTPError(http.StatusBadRequest, "消息不能为空")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.ChatResp{
		Response:  reply,
		Timestamp: s.now(),
	})
}

func (s *HTTPServer) Suggestions(c echo.Context) error {
	req := models.SuggestionsReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	kind, list := s.chat.Suggestions(req.Type)
	return c.JSON(http.StatusOK, models.SuggestionsResp{
		Suggestions: list,
		Type:        kind,
		Timestamp:   s.now(),
	})
}

func (s *HTTPServer) Polish(c echo.Context) error {
	req := models.PolishReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	req.Text = strings.TrimSpace(req.Text)

	out, err := s.chat.Polish(c.Request().Context(), req.Text)
	if errors.Is(err, chat.ErrEmptyInput) {
		return echo.NewHTTPError(http.StatusBadRequest, "文本内容不能为空")
	}
	if err != nil {
		s.logger.Warnw("polish failed", "error", err)
		return c.JSON(http.StatusInternalServerError, models.PolishErrResp{
			Error:        polishUnavailable,
			OriginalText: req.Text,
		})
	}
	return c.JSON(http.StatusOK, models.PolishResp{
		OriginalText: req.Text,
		PolishedText: out,
		Timestamp:    s.now(),
	})
}

func (s *HTTPServer) GenerateTags(c echo.Context) error {
	req := models.GenerateTagsReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	req.Content = strings.TrimSpace(req.Content)

	tags, err := s.chat.GenerateTags(c.Request().Context(), req.Content)
	if errors.Is(err, chat.ErrEmptyInput) {
		return echo.NewHTTPError(http.StatusBadRequest, "内容不能为空")
	}
	if err != nil {
		s.logger.Warnw("tag generation failed", "error", err)
		return c.JSON(http.StatusInternalServerError, models.GenerateTagsErrResp{
			Error:   tagsUnavailable,
			Content: req.Content,
		})
	}
	return c.JSON(http.StatusOK, models.GenerateTagsResp{
		Content:   req.Content,
		Tags:      tags,
		Timestamp: s.now(),
	})
}

func (s *HTTPServer) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResp{
		Status:    "healthy",
		Message:   "AI Native 记事本后端服务运行正常",
		Timestamp: s.now(),
	})
}
