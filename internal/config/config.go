// Package config loads process settings from the environment and the user profile from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/myrjola/setplan/internal/envstruct"
	"github.com/myrjola/setplan/internal/workout"
	"gopkg.in/yaml.v3"
)

// Config holds process settings shared by the server and the CLI.
type Config struct {
	// Addr is the address the HTTP server listens on.
	Addr string `env:"SETPLAN_ADDR" envDefault:"localhost:4000"`
	// SqliteURL is the path to the database file or ":memory:".
	SqliteURL string `env:"SETPLAN_SQLITE_URL" envDefault:"./setplan.sqlite3"`
	// ProfilePath points to the YAML profile used until a profile is stored in the database.
	ProfilePath string `env:"SETPLAN_PROFILE_PATH" envDefault:""`
	// CatalogURL is the remote exercise catalog. The bundled catalog is used when empty or unavailable.
	CatalogURL     string        `env:"SETPLAN_CATALOG_URL" envDefault:""`
	CatalogTimeout time.Duration `env:"SETPLAN_CATALOG_TIMEOUT" envDefault:"5s"`
	// OpenAIAPIKey enables drafting exercises with a language model.
	OpenAIAPIKey string `env:"OPENAI_API_KEY" envDefault:""`
	LogLevel     string `env:"SETPLAN_LOG_LEVEL" envDefault:"info"`
	// TracesDirectory enables the flight recorder, which writes traces of slow requests into this directory.
	TracesDirectory      string        `env:"SETPLAN_TRACES_DIRECTORY" envDefault:""`
	SlowRequestThreshold time.Duration `env:"SETPLAN_SLOW_REQUEST_THRESHOLD" envDefault:"5s"`
	// DefaultAvailableMinutes is the time budget when a request does not specify one.
	DefaultAvailableMinutes int `env:"SETPLAN_DEFAULT_MINUTES" envDefault:"60"`
}

// FromEnv populates Config from the environment. lookupEnv has the signature of [os.LookupEnv].
func FromEnv(lookupEnv func(string) (string, bool)) (Config, error) {
	var cfg Config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return Config{}, fmt.Errorf("populate config: %w", err)
	}
	if cfg.DefaultAvailableMinutes <= 0 {
		return Config{}, fmt.Errorf("SETPLAN_DEFAULT_MINUTES must be positive, got %d", cfg.DefaultAvailableMinutes)
	}
	return cfg, nil
}

// LoadProfile reads a YAML profile from path on top of the built-in defaults, then applies environment variable
// overrides. A missing file or an empty path yields the defaults. Env vars use the prefix SETPLAN_PROFILE_:
//
//	SETPLAN_PROFILE_EXPERIENCE_LEVEL, SETPLAN_PROFILE_TRAINING_GOAL,
//	SETPLAN_PROFILE_EQUIPMENT, SETPLAN_PROFILE_FOCUS_AREAS (comma separated lists)
//
// Entries under muscle_group_settings replace the default entry of that muscle group as a whole.
func LoadProfile(path string, lookupEnv func(string) (string, bool)) (workout.Profile, error) {
	profile := workout.DefaultProfile()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return workout.Profile{}, fmt.Errorf("reading profile file: %w", err)
		default:
			if err = yaml.Unmarshal(data, &profile); err != nil {
				return workout.Profile{}, fmt.Errorf("parsing profile file: %w", err)
			}
		}
	}

	applyProfileOverrides(&profile, lookupEnv)

	if err := profile.Validate(); err != nil {
		return workout.Profile{}, fmt.Errorf("profile validation: %w", err)
	}
	return profile, nil
}

func splitList(v string) []string {
	var out []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func applyProfileOverrides(p *workout.Profile, lookupEnv func(string) (string, bool)) {
	if v, ok := lookupEnv("SETPLAN_PROFILE_EXPERIENCE_LEVEL"); ok && v != "" {
		p.ExperienceLevel = workout.DifficultyLevel(v)
	}
	if v, ok := lookupEnv("SETPLAN_PROFILE_TRAINING_GOAL"); ok && v != "" {
		p.TrainingGoal = workout.TrainingGoal(v)
	}
	if v, ok := lookupEnv("SETPLAN_PROFILE_EQUIPMENT"); ok {
		p.AvailableEquipment = []workout.Equipment{}
		for _, item := range splitList(v) {
			p.AvailableEquipment = append(p.AvailableEquipment, workout.Equipment(item))
		}
	}
	if v, ok := lookupEnv("SETPLAN_PROFILE_FOCUS_AREAS"); ok {
		p.FocusAreas = []workout.MuscleGroup{}
		for _, item := range splitList(v) {
			p.FocusAreas = append(p.FocusAreas, workout.MuscleGroup(item))
		}
	}
}
