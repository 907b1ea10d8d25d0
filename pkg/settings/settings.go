package settings

import (
	"strconv"

	"github.com/classon/classon/internal/config"
	"github.com/classon/classon/pkg/weekday"
)

const (
	keyWeekStart = "week_start"
	keyVacation  = "vacation"
	keyDebug     = "debug"
)

type Settings struct {
	WeekStart weekday.WeekStart
	Vacation  bool
	Debug     bool
}

// Defaults converts the configured settings used until the user stores their own.
func Defaults(cfg config.Settings) Settings {
	return Settings{
		WeekStart: weekday.ParseWeekStart(cfg.WeekStart),
		Vacation:  cfg.Vacation,
		Debug:     cfg.Debug,
	}
}

func (s Settings) toValues() map[string]string {
	return map[string]string{
		keyWeekStart: s.WeekStart.String(),
		keyVacation:  strconv.FormatBool(s.Vacation),
		keyDebug:     strconv.FormatBool(s.Debug),
	}
}

// withValues overrides s with the stored values. Unreadable values keep the default.
func (s Settings) withValues(values map[string]string) Settings {
	if v, ok := values[keyWeekStart]; ok {
		s.WeekStart = weekday.ParseWeekStart(v)
	}
	if v, ok := values[keyVacation]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.Vacation = b
		}
	}
	if v, ok := values[keyDebug]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.Debug = b
		}
	}
	return s
}

type SettingsDraft struct {
	WeekStart string `validate:"required,oneof=monday sunday"`
	Vacation  bool
	Debug     bool
}
