package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string `yaml:"env" env:"APP_ENV" env-default:"local"`
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"wellness.db"`

	Log struct {
		Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
		Format string `yaml:"format" env:"LOG_FORMAT" env-default:"console"`
	} `yaml:"log"`

	Engine struct {
		TickInterval  int `yaml:"tick_interval" env:"TICK_INTERVAL" env-default:"10"`
		IdleThreshold int `yaml:"idle_threshold" env:"IDLE_THRESHOLD" env-default:"300"`
	} `yaml:"engine"`

	Reminders struct {
		BreakInterval     int `yaml:"break_interval" env:"BREAK_INTERVAL" env-default:"2700"`
		PostureInterval   int `yaml:"posture_interval" env:"POSTURE_INTERVAL" env-default:"1800"`
		EyeCareInterval   int `yaml:"eye_care_interval" env:"EYE_CARE_INTERVAL" env-default:"1200"`
		HydrationInterval int `yaml:"hydration_interval" env:"HYDRATION_INTERVAL" env-default:"3600"`
	} `yaml:"reminders"`

	Advisor struct {
		LateNightStart   string `yaml:"late_night_start" env:"LATE_NIGHT_START" env-default:"00:00"`
		LateNightEnd     string `yaml:"late_night_end" env:"LATE_NIGHT_END" env-default:"05:30"`
		PeakStart        string `yaml:"peak_start" env:"PEAK_START" env-default:"09:00"`
		PeakEnd          string `yaml:"peak_end" env:"PEAK_END" env-default:"18:00"`
		SustainedSession int    `yaml:"sustained_session" env:"SUSTAINED_SESSION" env-default:"14400"`
	} `yaml:"advisor"`

	Server struct {
		Enabled bool `yaml:"enabled" env:"SERVER_ENABLED" env-default:"true"`
		Port    int  `yaml:"port" env:"SERVER_PORT" env-default:"8733"`
	} `yaml:"server"`

	Notifications struct {
		Enabled bool `yaml:"enabled" env:"NOTIFICATIONS_ENABLED" env-default:"true"`
	} `yaml:"notifications"`

	Tray struct {
		Enabled bool `yaml:"enabled" env:"TRAY_ENABLED" env-default:"false"`
	} `yaml:"tray"`

	LLM struct {
		BaseURL string `yaml:"base_url" env:"LLM_BASE_URL" env-default:"http://localhost:11434"`
		Model   string `yaml:"model" env:"LLM_MODEL" env-default:"llama3.2"`
		Timeout int    `yaml:"timeout" env:"LLM_TIMEOUT" env-default:"60"`
	} `yaml:"llm"`
}

// LoadConfig reads the yaml config at path (falling back to environment
// variables only when the file does not exist) and validates it. A
// misconfigured engine fails here rather than at the first tick.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		// Only a missing file falls back to env/defaults. A file that
		// exists but does not parse is a startup error, not a shrug.
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if envErr := cleanenv.ReadEnv(&cfg); envErr != nil {
			return nil, fmt.Errorf("failed to read config: %w", envErr)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks intervals and clock windows. Inverted windows or
// non-positive intervals would make the late-night override misbehave, so
// they are startup errors.
func (c *Config) Validate() error {
	if c.Engine.TickInterval < 1 {
		return fmt.Errorf("engine.tick_interval must be at least 1 second, got %d", c.Engine.TickInterval)
	}
	if c.Engine.IdleThreshold <= c.Engine.TickInterval {
		return fmt.Errorf("engine.idle_threshold (%d) must exceed the tick interval (%d)",
			c.Engine.IdleThreshold, c.Engine.TickInterval)
	}

	intervals := map[string]int{
		"reminders.break_interval":     c.Reminders.BreakInterval,
		"reminders.posture_interval":   c.Reminders.PostureInterval,
		"reminders.eye_care_interval":  c.Reminders.EyeCareInterval,
		"reminders.hydration_interval": c.Reminders.HydrationInterval,
		"advisor.sustained_session":    c.Advisor.SustainedSession,
	}
	for name, v := range intervals {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}

	windows := [][3]string{
		{"advisor.late_night", c.Advisor.LateNightStart, c.Advisor.LateNightEnd},
		{"advisor.peak", c.Advisor.PeakStart, c.Advisor.PeakEnd},
	}
	for _, w := range windows {
		start, err := ParseClock(w[1])
		if err != nil {
			return fmt.Errorf("%s_start: %w", w[0], err)
		}
		end, err := ParseClock(w[2])
		if err != nil {
			return fmt.Errorf("%s_end: %w", w[0], err)
		}
		if start >= end {
			return fmt.Errorf("%s window is inverted (%s >= %s)", w[0], w[1], w[2])
		}
	}

	if c.Server.Enabled && (c.Server.Port < 1 || c.Server.Port > 65535) {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}

	return nil
}

// ParseClock parses an "HH:MM" string into minutes after midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour*60 + minute, nil
}
