package pomodoro

import "time"

const (
	SessionWork       = "work"
	SessionShortBreak = "short_break"
	SessionLongBreak  = "long_break"

	DefaultSessionDuration = 25

	dateLayout = "2006-01-02"
)

type Settings struct {
	WorkDuration           int  `json:"work_duration"`
	ShortBreak             int  `json:"short_break"`
	LongBreak              int  `json:"long_break"`
	SessionsUntilLongBreak int  `json:"sessions_until_long_break"`
	AutoStartBreaks        bool `json:"auto_start_breaks"`
	AutoStartWork          bool `json:"auto_start_work"`
	SoundEnabled           bool `json:"sound_enabled"`
}

// SettingsPatch carries a partial settings update; nil fields keep their value.
type SettingsPatch struct {
	WorkDuration           *int  `json:"work_duration" validate:"omitempty,gt=0"`
	ShortBreak             *int  `json:"short_break" validate:"omitempty,gt=0"`
	LongBreak              *int  `json:"long_break" validate:"omitempty,gt=0"`
	SessionsUntilLongBreak *int  `json:"sessions_until_long_break" validate:"omitempty,gt=0"`
	AutoStartBreaks        *bool `json:"auto_start_breaks"`
	AutoStartWork          *bool `json:"auto_start_work"`
	SoundEnabled           *bool `json:"sound_enabled"`
}

func (p SettingsPatch) apply(s Settings) Settings {
	if p.WorkDuration != nil {
		s.WorkDuration = *p.WorkDuration
	}
	if p.ShortBreak != nil {
		s.ShortBreak = *p.ShortBreak
	}
	if p.LongBreak != nil {
		s.LongBreak = *p.LongBreak
	}
	if p.SessionsUntilLongBreak != nil {
		s.SessionsUntilLongBreak = *p.SessionsUntilLongBreak
	}
	if p.AutoStartBreaks != nil {
		s.AutoStartBreaks = *p.AutoStartBreaks
	}
	if p.AutoStartWork != nil {
		s.AutoStartWork = *p.AutoStartWork
	}
	if p.SoundEnabled != nil {
		s.SoundEnabled = *p.SoundEnabled
	}
	return s
}

type Session struct {
	ID        int       `json:"id"`
	Type      string    `json:"type"`
	Duration  int       `json:"duration"`
	Completed bool      `json:"completed"`
	StartTime time.Time `json:"start_time"`
	Date      string    `json:"date"`
}

func (s Session) isWork() bool {
	return s.Type == SessionWork
}

type DailyStats struct {
	WorkSessions int `json:"work_sessions"`
	WorkTime     int `json:"work_time"`
	BreakTime    int `json:"break_time"`
}

type Statistics struct {
	TotalSessions  int                   `json:"total_sessions"`
	TotalWorkTime  int                   `json:"total_work_time"`
	TotalBreakTime int                   `json:"total_break_time"`
	DailyStats     map[string]DailyStats `json:"daily_stats"`
}

// record folds a freshly appended session into the running totals.
// Incomplete sessions still open a bucket for their day.
func (st *Statistics) record(s Session) {
	daily := st.DailyStats[s.Date]
	if s.Completed {
		if s.isWork() {
			st.TotalSessions++
			st.TotalWorkTime += s.Duration
			daily.WorkSessions++
			daily.WorkTime += s.Duration
		} else {
			st.TotalBreakTime += s.Duration
			daily.BreakTime += s.Duration
		}
	}
	st.DailyStats[s.Date] = daily
}

type DayReport struct {
	Date string `json:"date"`
	DailyStats
}

type StatisticsReport struct {
	Statistics
	RecentDays           []DayReport `json:"recent_days"`
	AverageDailySessions float64     `json:"average_daily_sessions"`
	AverageDailyWorkTime float64     `json:"average_daily_work_time"`
}

type TodaySummary struct {
	WorkSessions   int `json:"work_sessions"`
	TotalWorkTime  int `json:"total_work_time"`
	TotalBreakTime int `json:"total_break_time"`
	TotalSessions  int `json:"total_sessions"`
}

type document struct {
	Sessions   []Session  `json:"sessions"`
	Settings   Settings   `json:"settings"`
	Statistics Statistics `json:"statistics"`
}

func DefaultSettings() Settings {
	return Settings{
		WorkDuration:           25,
		ShortBreak:             5,
		LongBreak:              15,
		SessionsUntilLongBreak: 4,
		AutoStartBreaks:        false,
		AutoStartWork:          false,
		SoundEnabled:           true,
	}
}

func emptyStatistics() Statistics {
	return Statistics{DailyStats: make(map[string]DailyStats)}
}

func defaultDocument() document {
	return document{
		Sessions:   make([]Session, 0),
		Settings:   DefaultSettings(),
		Statistics: emptyStatistics(),
	}
}

func (d document) clone() document {
	out := d
	out.Sessions = make([]Session, len(d.Sessions))
	copy(out.Sessions, d.Sessions)
	out.Statistics.DailyStats = make(map[string]DailyStats, len(d.Statistics.DailyStats))
	for k, v := range d.Statistics.DailyStats {
		out.Statistics.DailyStats[k] = v
	}
	return out
}
