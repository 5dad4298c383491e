package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/chat"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/config"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/pomodoro"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/service"
)

var Module = fx.Provide(NewHTTPServer)

const censored = "$censored"

var censoredFields = map[string]struct{}{
	"api_key":       {},
	"token":         {},
	"password":      {},
	"authorization": {},
}

type (
	Params struct {
		fx.In

		Config     *config.Config
		Logger     *zap.SugaredLogger
		Notes      *service.Notes
		Categories *service.Categories
		Tags       *service.Tags
		Chat       *chat.Service
		Pomodoro   *pomodoro.Tracker
	}

	CustomValidator struct {
		validator *validator.Validate
	}

	HTTPServer struct {
		echo       *echo.Echo
		logger     *zap.SugaredLogger
		notes      *service.Notes
		categories *service.Categories
		tags       *service.Tags
		chat       *chat.Service
		pomodoro   *pomodoro.Tracker
		now        func() time.Time
	}
)

// New builds the HTTP handler with every route and middleware registered.
func New(p Params) *HTTPServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	instance := HTTPServer{
		echo:       e,
		logger:     p.Logger,
		notes:      p.Notes,
		categories: p.Categories,
		tags:       p.Tags,
		chat:       p.Chat,
		pomodoro:   p.Pomodoro,
		now:        func() time.Time { return time.Now().UTC() },
	}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     p.Config.AllowedOrigins(),
		AllowCredentials: true,
	}))
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:     true,
		LogURI:        true,
		LogStatus:     true,
		LogLatency:    true,
		LogRequestID:  true,
		LogError:      true,
		LogValuesFunc: instance.logRequest,
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyDumpWithConfig(middleware.BodyDumpConfig{
		Skipper: func(echo.Context) bool {
			return !p.Logger.Desugar().Core().Enabled(zapcore.DebugLevel)
		},
		Handler: func(c echo.Context, reqBody, _ []byte) {
			if len(reqBody) == 0 {
				return
			}
			p.Logger.Debugw("request body",
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"body", string(censorBody(reqBody)),
			)
		},
	}))

	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = instance.handleError

	api := e.Group("/api")

	notesG := api.Group("/notes")
	notesG.GET("", instance.NoteList)
	notesG.POST("", instance.NoteCreate)
	notesG.GET("/:id", instance.NoteGet)
	notesG.PUT("/:id", instance.NoteUpdate)
	notesG.DELETE("/:id", instance.NoteDelete)
	notesG.POST("/:id/categories", instance.NoteSetCategories)
	notesG.POST("/:id/tags", instance.NoteSetTags)

	categoryG := api.Group("/categories")
	categoryG.GET("", instance.CategoryList)
	categoryG.POST("", instance.CategoryCreate)
	categoryG.PUT("/:id", instance.CategoryUpdate)
	categoryG.DELETE("/:id", instance.CategoryDelete)
	categoryG.GET("/:id/notes", instance.CategoryNotes)

	tagG := api.Group("/tags")
	tagG.GET("", instance.TagList)
	tagG.POST("", instance.TagCreate)
	tagG.PUT("/:id", instance.TagUpdate)
	tagG.DELETE("/:id", instance.TagDelete)

	aiG := api.Group("/ai")
	aiG.POST("/chat", instance.Chat)
	aiG.POST("/suggestions", instance.Suggestions)
	aiG.POST("/polish", instance.Polish)
	aiG.POST("/generate-tags", instance.GenerateTags)

	pomodoroG := api.Group("/pomodoro")
	pomodoroG.GET("/settings", instance.PomodoroSettings)
	pomodoroG.POST("/settings", instance.PomodoroUpdateSettings)
	pomodoroG.POST("/session", instance.PomodoroAddSession)
	pomodoroG.GET("/statistics", instance.PomodoroStatistics)
	pomodoroG.GET("/today", instance.PomodoroToday)
	pomodoroG.POST("/reset", instance.PomodoroReset)

	api.GET("/health", instance.Health)
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	return &instance
}

func NewHTTPServer(lc fx.Lifecycle, p Params) *HTTPServer {
	instance := New(p)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			listen := p.Config.Host + ":" + p.Config.Port
			go func() {
				if err := instance.echo.Start(listen); err != nil && err != http.ErrServerClosed {
					p.Logger.Fatalw("http server failed", "addr", listen, "error", err)
				}
			}()
			p.Logger.Infow("HTTP server started", "addr", listen)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("Stopping HTTP server.")
			return instance.echo.Shutdown(ctx)
		},
	})

	return instance
}

func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *HTTPServer) logRequest(c echo.Context, v middleware.RequestLoggerValues) error {
	fields := []interface{}{
		"method", v.Method,
		"uri", v.URI,
		"status", v.Status,
		"latency", v.Latency,
		"request_id", v.RequestID,
	}
	if v.Error != nil {
		s.logger.Warnw("request failed", append(fields, "error", v.Error)...)
		return nil
	}
	s.logger.Infow("request", fields...)
	return nil
}

// censorBody masks secret-looking fields in a JSON body. Non-JSON input is returned unchanged.
func censorBody(body []byte) []byte {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return body
	}
	out, err := json.Marshal(censorValue(v))
	if err != nil {
		return body
	}
	return out
}

func censorValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, inner := range t {
			if _, ok := censoredFields[strings.ToLower(k)]; ok {
				t[k] = censored
				continue
			}
			t[k] = censorValue(inner)
		}
	case []interface{}:
		for i := range t {
			t[i] = censorValue(t[i])
		}
	}
	return v
}

////////

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func BindAndValidate(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func GetParam(c echo.Context, name string) (string, error) {
	value := c.Param(name)
	if value == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return value, nil
}

func GetAndParseParam(c echo.Context, name string) (uint64, error) {
	v, err := GetParam(c, name)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return id, nil
}
