package transport

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/chat"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/models"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/pomodoro"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/service"
)

type errorKind struct {
	target  error
	status  int
	message string
}

var errorKinds = []errorKind{
	{service.ErrNoteNotFound, http.StatusNotFound, "笔记不存在"},
	{service.ErrCategoryNotFound, http.StatusNotFound, "分类不存在"},
	{service.ErrTagNotFound, http.StatusNotFound, "标签不存在"},
	{service.ErrCategoryNameTaken, http.StatusBadRequest, "分类名称已存在"},
	{service.ErrTagNameTaken, http.StatusBadRequest, "标签名称已存在"},
	{service.ErrEmptyTagName, http.StatusBadRequest, "标签名称不能为空"},
	{pomodoro.ErrInvalidSessionType, http.StatusBadRequest, "会话类型无效"},
	{chat.ErrEmptyInput, http.StatusBadRequest, "内容不能为空"},
}

// statusOf maps an error returned by a handler to a status code and user facing message.
func statusOf(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return he.Code, msg
		}
		return he.Code, fmt.Sprint(he.Message)
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.status, k.message
		}
	}
	return http.StatusInternalServerError, err.Error()
}

func (s *HTTPServer) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, msg := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Errorw("request error",
			"method", c.Request().Method,
			"path", c.Path(),
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"error", err,
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, models.ErrorResp{Error: msg})
	}
	if err != nil {
		s.logger.Errorw("write error response", "error", err)
	}
}
