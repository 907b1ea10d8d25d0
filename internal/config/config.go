package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Listen    string    `koanf:"listen"`
	Timezone  string    `koanf:"timezone"`
	Database  Database  `koanf:"db"`
	Settings  Settings  `koanf:"settings"`
	Timetable Timetable `koanf:"timetable"`
	Reminder  Reminder  `koanf:"reminder"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// Settings are the defaults used until the user stores their own values.
type Settings struct {
	// WeekStart is "monday" or "sunday".
	WeekStart string `koanf:"weekstart"`
	Vacation  bool   `koanf:"vacation"`
	Debug     bool   `koanf:"debug"`
}

type Timetable struct {
	DefaultPeriods []Period `koanf:"defaultperiods"`
}

type Period struct {
	StartMinute     int `koanf:"startminute"`
	DurationMinutes int `koanf:"durationminutes"`
}

type Reminder struct {
	Enabled bool   `koanf:"enabled"`
	Cron    string `koanf:"cron"`
}

func defaults() Application {
	return Application{
		Listen:   ":8181",
		Timezone: "Local",
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "classon",
			Pass:   "",
			Name:   "classon",
			Schema: "classon",
		},
		Settings: Settings{
			WeekStart: "monday",
		},
		Timetable: Timetable{
			DefaultPeriods: []Period{
				{StartMinute: 480, DurationMinutes: 45},
				{StartMinute: 535, DurationMinutes: 45},
				{StartMinute: 600, DurationMinutes: 45},
				{StartMinute: 655, DurationMinutes: 45},
				{StartMinute: 780, DurationMinutes: 45},
				{StartMinute: 835, DurationMinutes: 45},
			},
		},
		Reminder: Reminder{
			Enabled: true,
			Cron:    "@every 1m",
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "CLASSON_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "CLASSON_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}
	app.normalize()

	return app, nil
}

// normalize falls back to defaults for values that would break startup.
func (a *Application) normalize() {
	switch strings.ToLower(a.Settings.WeekStart) {
	case "monday", "sunday":
		a.Settings.WeekStart = strings.ToLower(a.Settings.WeekStart)
	default:
		log.Warnf("unknown week start %q, falling back to monday", a.Settings.WeekStart)
		a.Settings.WeekStart = "monday"
	}
	if a.Reminder.Cron == "" {
		a.Reminder.Cron = "@every 1m"
	}
	if a.Timezone == "" {
		a.Timezone = "Local"
	}
}
