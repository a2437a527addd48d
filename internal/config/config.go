// Package config provides the configuration structure for slide-voice.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pelletier/go-toml/v2"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
	"github.com/book-expert/slide-voice/internal/pptx"
	"github.com/book-expert/slide-voice/internal/pptx/audio"
)

// ErrServiceURL is returned for a TTS service URL that is not absolute http(s).
var ErrServiceURL = errors.New("must be an absolute http or https URL")

// APIKeyEnv overrides tts.api_key when set.
const APIKeyEnv = "SLIDE_VOICE_TTS_API_KEY"

const (
	defaultVoice          = "en-US-Standard-C"
	defaultLanguage       = "en-US"
	defaultTimeoutSeconds = 60
	defaultWorkers        = 4
	defaultVolume         = 80000
	defaultIconX          = 5730875
	defaultIconY          = 3063875
	defaultIconSize       = 730250
	maxVolume             = 100000
)

// NATSConfig holds the configuration for NATS.
type NATSConfig struct {
	URL                   string `toml:"url"`
	NarrationSubject      string `toml:"narration_subject"`
	DeckObjectStoreBucket string `toml:"deck_object_store_bucket"`
}

// Validate checks the NATS section.
func (c *NATSConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required),
		validation.Field(&c.NarrationSubject, validation.Required),
		validation.Field(&c.DeckObjectStoreBucket, validation.Required),
	)
}

// TTSConfig holds the speech synthesis service settings.
type TTSConfig struct {
	ServiceURL     string `toml:"service_url"`
	APIKey         string `toml:"api_key"`
	Voice          string `toml:"voice"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Workers        int    `toml:"workers"`
}

// Timeout returns the request timeout as a duration.
func (c *TTSConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks the TTS section.
func (c *TTSConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ServiceURL, validation.Required, validation.By(httpURL)),
		validation.Field(&c.Voice, validation.Required),
		validation.Field(&c.Language, validation.Required),
		validation.Field(&c.TimeoutSeconds, validation.Required, validation.Min(1)),
		validation.Field(&c.Workers, validation.Required, validation.Min(1), validation.Max(32)),
	)
}

// NarrationConfig controls how clips are placed on slides. Positions and
// sizes are in EMU.
type NarrationConfig struct {
	Volume   int   `toml:"volume"`
	IconX    int64 `toml:"icon_x"`
	IconY    int64 `toml:"icon_y"`
	IconSize int64 `toml:"icon_size"`
}

// Validate checks the narration section.
func (c *NarrationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Volume, validation.Min(0), validation.Max(maxVolume)),
		validation.Field(&c.IconX, validation.Min(int64(0))),
		validation.Field(&c.IconY, validation.Min(int64(0))),
		validation.Field(&c.IconSize, validation.Required, validation.Min(int64(1))),
	)
}

// InsertOptions converts the section into narration insertion options.
func (c *NarrationConfig) InsertOptions() audio.Options {
	size := int(c.IconSize)

	return audio.Options{
		Volume:   c.Volume,
		Geometry: audio.Geometry{X: int(c.IconX), Y: int(c.IconY), CX: size, CY: size},
	}
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
	ScratchDir  string `toml:"scratch_dir"`
}

// Config is the root configuration structure.
type Config struct {
	NATS      NATSConfig      `toml:"nats"`
	TTS       TTSConfig       `toml:"tts"`
	Narration NarrationConfig `toml:"narration"`
	Paths     PathsConfig     `toml:"paths"`
}

// DeckOptions returns the options used to open decks for editing.
func (c *Config) DeckOptions() pptx.Options {
	return pptx.Options{ScratchDir: c.Paths.ScratchDir, Narration: c.Narration.InsertOptions()}
}

// Default returns a configuration populated with the built-in defaults.
func Default() *Config {
	return &Config{
		NATS: NATSConfig{
			URL:                   "nats://127.0.0.1:4222",
			NarrationSubject:      "slides.narration.requested",
			DeckObjectStoreBucket: "SLIDE_DECKS",
		},
		TTS: TTSConfig{
			ServiceURL:     "http://127.0.0.1:8000",
			APIKey:         "",
			Voice:          defaultVoice,
			Language:       defaultLanguage,
			TimeoutSeconds: defaultTimeoutSeconds,
			Workers:        defaultWorkers,
		},
		Narration: NarrationConfig{
			Volume:   defaultVolume,
			IconX:    defaultIconX,
			IconY:    defaultIconY,
			IconSize: defaultIconSize,
		},
		Paths: PathsConfig{
			BaseLogsDir: os.TempDir(),
			ScratchDir:  "",
		},
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	err := c.TTS.Validate()
	if err != nil {
		return fmt.Errorf("tts: %w", err)
	}

	err = c.Narration.Validate()
	if err != nil {
		return fmt.Errorf("narration: %w", err)
	}

	err = c.NATS.Validate()
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}

	return validation.ValidateStruct(&c.Paths,
		validation.Field(&c.Paths.BaseLogsDir, validation.Required),
	)
}

// Load loads the configuration through the central configurator, layering
// it over the defaults.
func Load(log *logger.Logger) (*Config, error) {
	cfg := Default()

	err := configurator.Load(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	return finish(cfg)
}

// LoadFile reads a TOML file, layering it over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file '%s': %w", path, err)
	}

	return Parse(data)
}

// Parse decodes TOML data over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	err := toml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.TTS.APIKey = key
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func httpURL(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return ErrServiceURL
	}

	return nil
}
