// Package config loads lifelog settings from <home>/config.yaml.
// A missing file yields the defaults; fields left out of the file keep their defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/faizmokh/lifelog/internal/files"
	"github.com/faizmokh/lifelog/internal/logbook"
	"github.com/faizmokh/lifelog/internal/timer"
)

// FileName is the settings file inside the lifelog home directory.
const FileName = "config.yaml"

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid setting")

// Settings holds everything a user can tune.
type Settings struct {
	LogFolder            string            `yaml:"logFolder"`
	DateFormat           string            `yaml:"dateFormat"`
	Subjects             []string          `yaml:"subjects"`
	DefaultStudyDuration int               `yaml:"defaultStudyDuration"` // minutes
	DefaultRestDuration  int               `yaml:"defaultRestDuration"`  // seconds
	Pomodoro             PomodoroSettings  `yaml:"pomodoro"`
	Notifications        bool              `yaml:"notifications"`
	WorkoutTemplates     []WorkoutTemplate `yaml:"workoutTemplates"`
}

// PomodoroSettings configures the focus cycle for study and work sessions.
type PomodoroSettings struct {
	Enabled bool `yaml:"enabled"`
	Work    int  `yaml:"work"`  // minutes
	Break   int  `yaml:"break"` // minutes
}

// WorkoutTemplate is a named list of exercises for quick entry.
type WorkoutTemplate struct {
	Name      string                     `yaml:"name"`
	Exercises []logbook.TemplateExercise `yaml:"exercises"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		LogFolder:            files.DefaultLogFolder,
		DateFormat:           files.DefaultDateFormat,
		Subjects:             []string{"Math", "English", "Programming", "Reading", "Other"},
		DefaultStudyDuration: 30,
		DefaultRestDuration:  60,
		Pomodoro:             PomodoroSettings{Enabled: false, Work: 25, Break: 5},
		Notifications:        true,
		WorkoutTemplates: []WorkoutTemplate{
			{Name: "Upper body", Exercises: []logbook.TemplateExercise{
				{Name: "Push-ups", Params: "Reps: [15]"},
				{Name: "Dumbbell rows", Params: "Weight: [10] kg | Reps: [12]"},
				{Name: "Shoulder press", Params: "Weight: [8] kg | Reps: [10]"},
			}},
			{Name: "Lower body", Exercises: []logbook.TemplateExercise{
				{Name: "Squats", Params: "Weight: [40] kg | Reps: [12]"},
				{Name: "Lunges", Params: "Reps: [10] /leg"},
				{Name: "Calf raises", Params: "Reps: [20]"},
			}},
			{Name: "HIIT", Exercises: []logbook.TemplateExercise{
				{Name: "Burpees", Params: "Duration: [30s]"},
				{Name: "Jumping jacks", Params: "Duration: [30s]"},
				{Name: "Mountain climbers", Params: "Duration: [30s]"},
			}},
		},
	}
}

// Path returns the settings file location for a lifelog home directory.
func Path(base string) string {
	return filepath.Join(base, FileName)
}

// Load reads settings from path on top of the defaults.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Save writes s to path, creating the directory if needed.
func Save(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects values no session could run with.
func (s Settings) Validate() error {
	switch {
	case s.LogFolder == "":
		return fmt.Errorf("%w: logFolder is empty", ErrInvalid)
	case s.DefaultStudyDuration <= 0:
		return fmt.Errorf("%w: defaultStudyDuration must be positive", ErrInvalid)
	case s.DefaultRestDuration < 0:
		return fmt.Errorf("%w: defaultRestDuration is negative", ErrInvalid)
	case s.Pomodoro.Enabled && (s.Pomodoro.Work <= 0 || s.Pomodoro.Break <= 0):
		return fmt.Errorf("%w: pomodoro work and break must be positive", ErrInvalid)
	}
	switch s.DateFormat {
	case "YYYY-MM-DD", "YYYY/MM/DD", "DD-MM-YYYY":
	default:
		return fmt.Errorf("%w: unsupported dateFormat %q", ErrInvalid, s.DateFormat)
	}
	return nil
}

// PomodoroConfig returns the timer cycle, or nil when Pomodoro is off.
func (s Settings) PomodoroConfig() *timer.PomodoroConfig {
	if !s.Pomodoro.Enabled {
		return nil
	}
	return &timer.PomodoroConfig{
		Work:  time.Duration(s.Pomodoro.Work) * time.Minute,
		Break: time.Duration(s.Pomodoro.Break) * time.Minute,
	}
}

// Template finds a workout template by name.
func (s Settings) Template(name string) (WorkoutTemplate, bool) {
	for _, t := range s.WorkoutTemplates {
		if t.Name == name {
			return t, true
		}
	}
	return WorkoutTemplate{}, false
}
