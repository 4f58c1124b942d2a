// Package config handles TOML-based configuration loading and validation.
// Credentials never live in the config file; they are read from the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"harvest/internal/media"
)

// Config holds all application configuration.
type Config struct {
	OutputDir   string `toml:"output_dir"`
	Quality     string `toml:"quality"`
	SearchLimit int    `toml:"search_limit"`
	Backend     string `toml:"backend"`
	YtDLPPath   string `toml:"ytdlp_path"`
	FFmpegPath  string `toml:"ffmpeg_path"`
	UserAgent   string `toml:"user_agent"`
	History     bool   `toml:"history"`
	Debug       bool   `toml:"debug"`

	Deals     DealsConfig     `toml:"deals"`
	Courses   CoursesConfig   `toml:"courses"`
	ILearning ILearningConfig `toml:"ilearning"`
}

// DealsConfig configures the PChome deal scraper.
type DealsConfig struct {
	URL string `toml:"url"`
}

// CoursesConfig configures the NCHU course catalog scraper.
type CoursesConfig struct {
	LoginURL  string   `toml:"login_url"`
	CourseURL string   `toml:"course_url"`
	OutputDir string   `toml:"output_dir"`
	Delay     Duration `toml:"delay"`
}

// ILearningConfig configures the NCHU iLearning scraper.
type ILearningConfig struct {
	LoginURL    string `toml:"login_url"`
	CaptchaFile string `toml:"captcha_file"`
}

// Duration wraps time.Duration so it can be written as "2s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Credentials are the portal login credentials taken from the environment.
type Credentials struct {
	Username string `envconfig:"HARVEST_USERNAME"`
	Password string `envconfig:"HARVEST_PASSWORD"`
}

// legacyCredentials mirrors the variable names older .env files used.
type legacyCredentials struct {
	Username string `envconfig:"USERNAMES"`
	Password string `envconfig:"PASSWORD"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		OutputDir:   "downloads",
		Quality:     "best",
		SearchLimit: 5,
		Backend:     "ytdlp",
		YtDLPPath:   "yt-dlp",
		FFmpegPath:  "ffmpeg",
		UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		History:     true,
		Debug:       false,
		Deals: DealsConfig{
			URL: "https://shopping.pchome.com.tw/activity/collection.htm",
		},
		Courses: CoursesConfig{
			LoginURL:  "https://ccidp.nchu.edu.tw/login?service=https://cportal.nchu.edu.tw/cas_login/&locale=zh-TW",
			CourseURL: "https://cportal.nchu.edu.tw/cofsys/plsql/crseqry_home",
			OutputDir: "課程資訊",
			Delay:     Duration{2 * time.Second},
		},
		ILearning: ILearningConfig{
			LoginURL:    "https://lms2020.nchu.edu.tw/index/login?next=%2Fdashboard",
			CaptchaFile: "captcha.png",
		},
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "harvest"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "harvest"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the default config file and merges it with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config file at path and merges it with defaults.
// A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	validBackends := map[string]bool{
		"ytdlp": true, "native": true,
	}
	if !validBackends[strings.ToLower(c.Backend)] {
		return fmt.Errorf("unsupported backend %q (valid: ytdlp, native)", c.Backend)
	}

	if q := media.ParseQuality(c.Quality); q.Kind == media.QualityRaw {
		return fmt.Errorf("unsupported quality %q (valid: best, worst, audio, <height>p)", c.Quality)
	}

	if c.SearchLimit < 1 || c.SearchLimit > 50 {
		return fmt.Errorf("search_limit must be between 1 and 50, got %d", c.SearchLimit)
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output_dir cannot be empty")
	}

	if c.Courses.Delay.Duration < 0 {
		return fmt.Errorf("courses.delay cannot be negative")
	}

	return nil
}

// ExpandOutputDir resolves ~ in the output directory path.
func (c *Config) ExpandOutputDir() (string, error) {
	return expandPath(c.OutputDir)
}

// ExpandCoursesDir resolves ~ in the course output directory path.
func (c *Config) ExpandCoursesDir() (string, error) {
	return expandPath(c.Courses.OutputDir)
}

func expandPath(dir string) (string, error) {
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}
	return filepath.Abs(dir)
}

// LoadCredentials reads portal credentials from the environment, falling
// back to the legacy variable names.
func LoadCredentials() (Credentials, error) {
	var creds Credentials
	if err := envconfig.Process("", &creds); err != nil {
		return Credentials{}, fmt.Errorf("reading credentials: %w", err)
	}

	if creds.Username == "" || creds.Password == "" {
		var legacy legacyCredentials
		if err := envconfig.Process("", &legacy); err == nil {
			if creds.Username == "" {
				creds.Username = legacy.Username
			}
			if creds.Password == "" {
				creds.Password = legacy.Password
			}
		}
	}

	return creds, nil
}

// HistoryPath returns the path to the download history database.
func HistoryPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "harvest", "history.db"), nil
}
