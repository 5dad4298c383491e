package transport

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/models"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/pomodoro"
)

const (
	defaultStatisticsDays = 7
	maxStatisticsDays     = 366
)

type (
	settingsResp struct {
		Settings pomodoro.Settings `json:"settings"`
		Message  string            `json:"message,omitempty"`
	}

	sessionResp struct {
		Session pomodoro.Session `json:"session"`
		Message string           `json:"message"`
	}

	statisticsResp struct {
		Statistics pomodoro.StatisticsReport `json:"statistics"`
	}

	todayResp struct {
		Sessions []pomodoro.Session    `json:"sessions"`
		Summary  pomodoro.TodaySummary `json:"summary"`
	}
)

func (s *HTTPServer) PomodoroSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, settingsResp{Settings: s.pomodoro.Settings()})
}

func (s *HTTPServer) PomodoroUpdateSettings(c echo.Context) error {
	req := pomodoro.SettingsPatch{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	settings, err := s.pomodoro.UpdateSettings(req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settingsResp{Settings: settings, Message: "设置已更新"})
}

func (s *HTTPServer) PomodoroAddSession(c echo.Context) error {
	req := models.SessionReq{}
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Type == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "会话类型不能为空")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	duration := pomodoro.DefaultSessionDuration
	if req.Duration != nil {
		duration = *req.Duration
	}
	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}

	session, err := s.pomodoro.AddSession(req.Type, duration, completed)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResp{Session: session, Message: "会话记录已添加"})
}

// PomodoroStatistics reads ?days=N; a missing or non-integer value means 7.
// At most a year of days can be requested.
func (s *HTTPServer) PomodoroStatistics(c echo.Context) error {
	days := defaultStatisticsDays
	if raw := c.QueryParam("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			days = n
		}
	}
	if days > maxStatisticsDays {
		return echo.NewHTTPError(http.StatusBadRequest, "days 不能超过 "+strconv.Itoa(maxStatisticsDays))
	}
	return c.JSON(http.StatusOK, statisticsResp{Statistics: s.pomodoro.Statistics(days)})
}

func (s *HTTPServer) PomodoroToday(c echo.Context) error {
	sessions, summary := s.pomodoro.Today()
	return c.JSON(http.StatusOK, todayResp{Sessions: sessions, Summary: summary})
}

func (s *HTTPServer) PomodoroReset(c echo.Context) error {
	if err := s.pomodoro.Reset(); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.MessageResp{Message: "数据已重置"})
}
