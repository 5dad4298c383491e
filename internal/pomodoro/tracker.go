package pomodoro

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/config"
)

var Module = fx.Provide(NewTracker)

var ErrInvalidSessionType = errors.New("invalid session type")

// Tracker keeps pomodoro sessions, settings and statistics in a single JSON
// document. All operations are serialized; every mutation is written to disk
// before the in-memory state changes.
type Tracker struct {
	path   string
	logger *zap.SugaredLogger
	now    func() time.Time

	mu  sync.Mutex
	doc document
}

func NewTracker(cfg *config.Config, l *zap.SugaredLogger) *Tracker {
	return newTracker(cfg.PomodoroFile, l, time.Now)
}

func newTracker(path string, l *zap.SugaredLogger, now func() time.Time) *Tracker {
	t := &Tracker{
		path:   path,
		logger: l,
		now:    now,
	}
	t.doc = t.load()
	return t
}

func (t *Tracker) load() document {
	raw, err := os.ReadFile(t.path)
	if err != nil {
		if !os.IsNotExist(err) {
			t.logger.Warnw("read pomodoro file, using defaults", "path", t.path, "error", err)
		}
		return defaultDocument()
	}

	doc := defaultDocument()
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.logger.Warnw("parse pomodoro file, using defaults", "path", t.path, "error", err)
		return defaultDocument()
	}
	if doc.Sessions == nil {
		doc.Sessions = make([]Session, 0)
	}
	if doc.Statistics.DailyStats == nil {
		doc.Statistics.DailyStats = make(map[string]DailyStats)
	}
	return doc
}

// mutate applies fn to a copy of the document, persists the copy and only then
// makes it current. A failed write leaves the previous state in place.
func (t *Tracker) mutate(fn func(d *document)) (document, error) {
	next := t.doc.clone()
	fn(&next)
	if err := t.save(next); err != nil {
		return document{}, err
	}
	t.doc = next
	return next, nil
}

func (t *Tracker) save(d document) error {
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal pomodoro document")
	}

	dir := filepath.Dir(t.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(t.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp pomodoro file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write pomodoro file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close pomodoro file")
	}
	if err := os.Rename(tmp.Name(), t.path); err != nil {
		return errors.Wrap(err, "replace pomodoro file")
	}
	return nil
}

func (t *Tracker) Settings() Settings {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.doc.Settings
}

func (t *Tracker) UpdateSettings(patch SettingsPatch) (Settings, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, err := t.mutate(func(d *document) {
		d.Settings = patch.apply(d.Settings)
	})
	if err != nil {
		return Settings{}, err
	}
	return doc.Settings, nil
}

// AddSession appends a session stamped with the current time and folds it into the statistics.
func (t *Tracker) AddSession(kind string, duration int, completed bool) (Session, error) {
	switch kind {
	case SessionWork, SessionShortBreak, SessionLongBreak:
	default:
		return Session{}, errors.Wrapf(ErrInvalidSessionType, "%q", kind)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	var session Session
	_, err := t.mutate(func(d *document) {
		session = Session{
			ID:        len(d.Sessions) + 1,
			Type:      kind,
			Duration:  duration,
			Completed: completed,
			StartTime: now,
			Date:      now.Format(dateLayout),
		}
		d.Sessions = append(d.Sessions, session)
		d.Statistics.record(session)
	})
	if err != nil {
		return Session{}, err
	}

	t.logger.Debugw("pomodoro session recorded", "id", session.ID, "type", kind, "duration", duration, "completed", completed)
	return session, nil
}

// Statistics reports the running totals plus the trailing days ending today,
// oldest first. Days without activity are zero-filled.
func (t *Tracker) Statistics(days int) StatisticsReport {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := t.doc.clone().Statistics
	report := StatisticsReport{
		Statistics: stats,
		RecentDays: make([]DayReport, 0),
	}
	if days <= 0 {
		return report
	}

	y, m, d := t.now().Date()
	today := time.Date(y, m, d, 12, 0, 0, 0, t.now().Location())

	var sessions, workTime int
	for i := days - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format(dateLayout)
		day := stats.DailyStats[date]
		report.RecentDays = append(report.RecentDays, DayReport{Date: date, DailyStats: day})
		sessions += day.WorkSessions
		workTime += day.WorkTime
	}
	report.AverageDailySessions = float64(sessions) / float64(days)
	report.AverageDailyWorkTime = float64(workTime) / float64(days)
	return report
}

// Today returns the sessions recorded on the current calendar day.
func (t *Tracker) Today() ([]Session, TodaySummary) {
	t.mu.Lock()
	defer t.mu.Unlock()

	today := t.now().Format(dateLayout)
	sessions := make([]Session, 0)
	var summary TodaySummary
	for _, s := range t.doc.Sessions {
		if s.Date != today {
			continue
		}
		sessions = append(sessions, s)
		if !s.Completed {
			continue
		}
		if s.isWork() {
			summary.WorkSessions++
			summary.TotalWorkTime += s.Duration
		} else {
			summary.TotalBreakTime += s.Duration
		}
	}
	summary.TotalSessions = len(sessions)
	return sessions, summary
}

// Reset drops sessions and statistics. Settings survive.
func (t *Tracker) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := t.mutate(func(d *document) {
		d.Sessions = make([]Session, 0)
		d.Statistics = emptyStatistics()
	})
	if err == nil {
		t.logger.Info("pomodoro data reset")
	}
	return err
}
