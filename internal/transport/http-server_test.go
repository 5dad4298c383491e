package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/chat"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/config"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/db/dbtest"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/pomodoro"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/service"
)

type stubCompleter struct {
	reply string
	err   error
	calls int
}

func (s *stubCompleter) Complete(context.Context, []chat.Message) (string, error) {
	s.calls++
	return s.reply, s.err
}

func newTestServer(t *testing.T, completer chat.Completer) *HTTPServer {
	t.Helper()

	gdb := dbtest.NewSQLite(t)
	l := zap.NewNop().Sugar()
	cfg := &config.Config{
		CORSOrigins:  "http://localhost:5173",
		PomodoroFile: filepath.Join(t.TempDir(), "pomodoro_data.json"),
	}

	return New(Params{
		Config:     cfg,
		Logger:     l,
		Notes:      service.NewNotes(gdb, l),
		Categories: service.NewCategories(gdb, l),
		Tags:       service.NewTags(gdb, l),
		Chat:       chat.NewService(completer, chat.NewResponder(), l),
		Pomodoro:   pomodoro.NewTracker(cfg, l),
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, map[string]interface{}) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]interface{}
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func doList(t *testing.T, h http.Handler, path string) []map[string]interface{} {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCensorBody(t *testing.T) {
	b := `{
		"email": "email@email.com",
		"password": "123456789123",
		"nested": {"API_KEY": "sk-123", "items": [{"token": "abc", "ok": 1}]}
	}`

	got := censorBody([]byte(b))
	assert.JSONEq(t, `{
		"email": "email@email.com",
		"password": "$censored",
		"nested": {"API_KEY": "$censored", "items": [{"token": "$censored", "ok": 1}]}
	}`, string(got))

	assert.Equal(t, "not json", string(censorBody([]byte("not json"))))
}

func TestNoteLifecycle(t *testing.T) {
	s := newTestServer(t, &stubCompleter{})

	code, note := do(t, s, http.MethodPost, "/api/notes", `{}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, service.DefaultNoteTitle, note["title"])
	assert.Equal(t, "", note["content"])
	assert.Equal(t, []interface{}{}, note["tags"])
	assert.Equal(t, []interface{}{}, note["categories"])

	code, _ = do(t, s, http.MethodPost, "/api/notes", `{"title": "second", "content": "body"}`)
	require.Equal(t, http.StatusCreated, code)

	code, updated := do(t, s, http.MethodPut, "/api/notes/1", `{"content": "changed"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, service.DefaultNoteTitle, updated["title"])
	assert.Equal(t, "changed", updated["content"])

	code, got := do(t, s, http.MethodGet, "/api/notes/1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "changed", got["content"])

	assert.Len(t, doList(t, s, "/api/notes"), 2)

	code, msg := do(t, s, http.MethodDelete, "/api/notes/1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "笔记已删除", msg["message"])

	code, errResp := do(t, s, http.MethodGet, "/api/notes/1", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "笔记不存在", errResp["error"])

	code, _ = do(t, s, http.MethodPut, "/api/notes/1", `{"title": "x"}`)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, s, http.MethodDelete, "/api/notes/1", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t, &stubCompleter{})

	code, resp := do(t, s, http.MethodGet, "/api/notes/abc", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp["error"], "id")

	code, _ = do(t, s, http.MethodPost, "/api/notes", `{"title": `)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, s, http.MethodPost, "/api/categories", `{"name": ""}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, s, http.MethodPost, "/api/categories", `{"name": "x", "color": "blue"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = do(t, s, http.MethodGet, "/api/nothing", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.NotEmpty(t, resp["error"])
}

func TestCategories(t *testing.T) {
	s := newTestServer(t, &stubCompleter{})

	code, work := do(t, s, http.MethodPost, "/api/categories", `{"name": "Work"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "#667eea", work["color"])
	assert.Equal(t, "📁", work["icon"])
	assert.EqualValues(t, 0, work["note_count"])

	code, resp := do(t, s, http.MethodPost, "/api/categories", `{"name": "Work"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "分类名称已存在", resp["error"])

	code, _ = do(t, s, http.MethodPost, "/api/categories", `{"name": "Home", "color": "#112233"}`)
	require.Equal(t, http.StatusCreated, code)

	code, resp = do(t, s, http.MethodPut, "/api/categories/2", `{"name": "Work"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "分类名称已存在", resp["error"])

	code, resp = do(t, s, http.MethodPut, "/api/categories/1", `{"name": "Work", "icon": "💼"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "💼", resp["icon"])

	code, _ = do(t, s, http.MethodPost, "/api/notes", `{"title": "n"}`)
	require.Equal(t, http.StatusCreated, code)

	code, note := do(t, s, http.MethodPost, "/api/notes/1/categories", `{"category_ids": [1, 999]}`)
	require.Equal(t, http.StatusOK, code)
	cats := note["categories"].([]interface{})
	require.Len(t, cats, 1)
	assert.Equal(t, "Work", cats[0].(map[string]interface{})["name"])

	summaries := doList(t, s, "/api/categories/1/notes")
	require.Len(t, summaries, 1)
	assert.Equal(t, "n", summaries[0]["title"])

	code, _ = do(t, s, http.MethodGet, "/api/categories/42/notes", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, resp = do(t, s, http.MethodDelete, "/api/categories/1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "分类删除成功", resp["message"])

	code, note = do(t, s, http.MethodGet, "/api/notes/1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, note["categories"])
}

func TestTags(t *testing.T) {
	s := newTestServer(t, &stubCompleter{})

	code, _ := do(t, s, http.MethodPost, "/api/notes", `{}`)
	require.Equal(t, http.StatusCreated, code)

	code, note := do(t, s, http.MethodPost, "/api/notes/1/tags", `{"tags": ["go", " go ", "db"]}`)
	require.Equal(t, http.StatusOK, code)
	assert.ElementsMatch(t, []interface{}{"go", "db"}, note["tags"])

	assert.Len(t, doList(t, s, "/api/tags"), 2)

	code, resp := do(t, s, http.MethodPost, "/api/tags", `{"name": "go"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "标签名称已存在", resp["error"])

	code, resp = do(t, s, http.MethodPost, "/api/tags", `{"name": "   "}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "标签名称不能为空", resp["error"])

	code, _ = do(t, s, http.MethodPut, "/api/tags/2", `{"name": "  "}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Len(t, doList(t, s, "/api/tags"), 2)

	code, _ = do(t, s, http.MethodDelete, "/api/tags/1", "")
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = do(t, s, http.MethodPut, "/api/tags/1", `{"name": "gone"}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestChat(t *testing.T) {
	t.Run("empty message", func(t *testing.T) {
		stub := &stubCompleter{reply: "unused"}
		s := newTestServer(t, stub)

		code, resp := do(t, s, http.MethodPost, "/api/ai/chat", `{"message": "  "}`)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "消息不能为空", resp["error"])
		assert.Zero(t, stub.calls)
	})

	t.Run("model reply", func(t *testing.T) {
		s := newTestServer(t, &stubCompleter{reply: "from model"})

		code, resp := do(t, s, http.MethodPost, "/api/ai/chat", `{"message": "hi", "context": [{"type": "user", "content": "a"}]}`)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "from model", resp["response"])
		assert.NotEmpty(t, resp["timestamp"])
	})

	t.Run("fallback", func(t *testing.T) {
		s := newTestServer(t, &stubCompleter{err: chat.ErrCompletionFailed})

		code, resp := do(t, s, http.MethodPost, "/api/ai/chat", `{"message": "你好"}`)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "你好！我是史迪仔的AI助手，很高兴为你服务！🤖", resp["response"])
	})
}

func TestPolishAndTags(t *testing.T) {
	failing := newTestServer(t, &stubCompleter{err: chat.ErrCompletionFailed})

	code, resp := do(t, failing, http.MethodPost, "/api/ai/polish", `{"text": "draft"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, polishUnavailable, resp["error"])
	assert.Equal(t, "draft", resp["original_text"])

	code, resp = do(t, failing, http.MethodPost, "/api/ai/generate-tags", `{"content": "text"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, tagsUnavailable, resp["error"])
	assert.Equal(t, "text", resp["content"])

	code, resp = do(t, failing, http.MethodPost, "/api/ai/polish", `{"text": "  padded draft \n"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "padded draft", resp["original_text"])

	code, resp = do(t, failing, http.MethodPost, "/api/ai/polish", `{"text": ""}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "文本内容不能为空", resp["error"])

	code, resp = do(t, failing, http.MethodPost, "/api/ai/generate-tags", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "内容不能为空", resp["error"])

	working := newTestServer(t, &stubCompleter{reply: "a, b ,c"})

	code, resp = do(t, working, http.MethodPost, "/api/ai/generate-tags", `{"content": " text "}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "text", resp["content"])
	assert.Equal(t, []interface{}{"a", "b", "c"}, resp["tags"])

	code, resp = do(t, working, http.MethodPost, "/api/ai/polish", `{"text": "draft"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "a, b ,c", resp["polished_text"])
	assert.Equal(t, "draft", resp["original_text"])
}

func TestSuggestions(t *testing.T) {
	s := newTestServer(t, &stubCompleter{})

	code, resp := do(t, s, http.MethodPost, "/api/ai/suggestions", `{"type": "study", "notes": [1, 2]}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "study", resp["type"])
	assert.Len(t, resp["suggestions"], 4)

	code, resp = do(t, s, http.MethodPost, "/api/ai/suggestions", `{}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "general", resp["type"])
}

func TestPomodoro(t *testing.T) {
	s := newTestServer(t, &stubCompleter{})

	code, resp := do(t, s, http.MethodGet, "/api/pomodoro/settings", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 25, resp["settings"].(map[string]interface{})["work_duration"])

	code, resp = do(t, s, http.MethodPost, "/api/pomodoro/settings", `{"long_break": 20}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "设置已更新", resp["message"])
	settings := resp["settings"].(map[string]interface{})
	assert.EqualValues(t, 20, settings["long_break"])
	assert.EqualValues(t, 25, settings["work_duration"])

	code, resp = do(t, s, http.MethodPost, "/api/pomodoro/session", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "会话类型不能为空", resp["error"])

	code, _ = do(t, s, http.MethodPost, "/api/pomodoro/session", `{"type": "nap"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = do(t, s, http.MethodPost, "/api/pomodoro/session", `{"type": "work"}`)
	require.Equal(t, http.StatusOK, code)
	session := resp["session"].(map[string]interface{})
	assert.EqualValues(t, 1, session["id"])
	assert.EqualValues(t, 25, session["duration"])
	assert.Equal(t, true, session["completed"])

	code, _ = do(t, s, http.MethodPost, "/api/pomodoro/session", `{"type": "short_break", "duration": 5, "completed": false}`)
	require.Equal(t, http.StatusOK, code)

	code, resp = do(t, s, http.MethodGet, "/api/pomodoro/statistics?days=abc", "")
	require.Equal(t, http.StatusOK, code)
	stats := resp["statistics"].(map[string]interface{})
	assert.Len(t, stats["recent_days"], 7)
	assert.EqualValues(t, 1, stats["total_sessions"])
	assert.EqualValues(t, 25, stats["total_work_time"])

	code, resp = do(t, s, http.MethodGet, "/api/pomodoro/statistics?days=366", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp["statistics"].(map[string]interface{})["recent_days"], 366)

	for _, days := range []string{"367", "3000000", "2147483647"} {
		code, resp = do(t, s, http.MethodGet, "/api/pomodoro/statistics?days="+days, "")
		assert.Equal(t, http.StatusBadRequest, code, days)
		assert.NotEmpty(t, resp["error"])
	}

	code, resp = do(t, s, http.MethodGet, "/api/pomodoro/statistics?days=0", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, resp["statistics"].(map[string]interface{})["recent_days"])

	code, resp = do(t, s, http.MethodGet, "/api/pomodoro/today", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp["sessions"], 2)
	summary := resp["summary"].(map[string]interface{})
	assert.EqualValues(t, 1, summary["work_sessions"])
	assert.EqualValues(t, 2, summary["total_sessions"])
	assert.EqualValues(t, 0, summary["total_break_time"])

	code, resp = do(t, s, http.MethodPost, "/api/pomodoro/reset", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "数据已重置", resp["message"])

	code, resp = do(t, s, http.MethodGet, "/api/pomodoro/settings", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 20, resp["settings"].(map[string]interface{})["long_break"])
}

func TestHealthAndPing(t *testing.T) {
	s := newTestServer(t, &stubCompleter{})

	code, resp := do(t, s, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "AI Native 记事本后端服务运行正常", resp["message"])

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestCORSAndRequestID(t *testing.T) {
	s := newTestServer(t, &stubCompleter{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)
}
