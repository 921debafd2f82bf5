package config

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	DefaultPollInterval   = 1000 * time.Millisecond
	DefaultLocalKey       = "askanon_questions"
	DefaultQuestionMaxLen = 1000
	DefaultReplyMaxLen    = 500
	DefaultHTTPPort       = 8000

	envPrefix = "ASKANON_"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Log            Log      `yaml:"log"`
	HTTP           HTTP     `yaml:"http"`
	Remote         Remote   `yaml:"remote"`
	Local          Local    `yaml:"local"`
	Limits         Limits   `yaml:"limits"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	SecureCookies  bool     `yaml:"secure_cookies"`
}

type Log struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	JSON  bool   `yaml:"json"`
}

type HTTP struct {
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// writes per second allowed per client ip on POST endpoints
	WriteRPS   float64 `yaml:"write_rps" validate:"gte=0"`
	WriteBurst int     `yaml:"write_burst" validate:"gte=0"`
}

// Remote is the "remote enabled" flag. Whether the handle can actually be
// opened is decided at startup.
type Remote struct {
	Enabled bool `yaml:"enabled"`
}

type Local struct {
	Path         string        `yaml:"path" validate:"required"`
	Key          string        `yaml:"key" validate:"required"`
	PollInterval time.Duration `yaml:"poll_interval" validate:"gt=0"`
}

type Limits struct {
	QuestionMaxLen int `yaml:"question_max_len" validate:"gt=0"`
	ReplyMaxLen    int `yaml:"reply_max_len" validate:"gt=0"`
}

type Private struct {
	Pg Pg `yaml:"pg"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// Configured reports whether enough connection details are present to try the remote backend.
func (p Pg) Configured() bool {
	return p.Host != "" && p.Dbname != ""
}

func mustLoadPath(configPath string, output interface{}) {
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			panic("config file does not exist: " + configPath)
		}
		panic("can't read config file: " + configPath)
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file " + configPath + ": " + err.Error())
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder, applies .env and
// ASKANON_* environment overrides, fills defaults and validates. It panics on any error.
func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	privatePath := path.Join(configFolder, "private.yaml")
	if _, err := os.Stat(privatePath); err == nil {
		mustLoadPath(privatePath, &private)
	}

	// a missing .env is fine, everything can come from the real environment
	_ = godotenv.Load(path.Join(configFolder, ".env"))

	cfg := &Config{Public: public, Private: private}
	cfg.applyEnv()
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		panic("invalid config: " + err.Error())
	}
	return cfg
}

func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c.Public); err != nil {
		return err
	}
	if c.Public.Remote.Enabled && !c.Private.Pg.Configured() {
		return errors.New("remote.enabled requires pg host and dbname")
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Public.Log.Level == "" {
		c.Public.Log.Level = "info"
	}
	if c.Public.HTTP.Port == 0 {
		c.Public.HTTP.Port = DefaultHTTPPort
	}
	if c.Public.HTTP.ReadTimeout == 0 {
		c.Public.HTTP.ReadTimeout = 5 * time.Second
	}
	if c.Public.HTTP.ShutdownTimeout == 0 {
		c.Public.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if c.Public.Local.Key == "" {
		c.Public.Local.Key = DefaultLocalKey
	}
	if c.Public.Local.PollInterval == 0 {
		c.Public.Local.PollInterval = DefaultPollInterval
	}
	if c.Public.Limits.QuestionMaxLen == 0 {
		c.Public.Limits.QuestionMaxLen = DefaultQuestionMaxLen
	}
	if c.Public.Limits.ReplyMaxLen == 0 {
		c.Public.Limits.ReplyMaxLen = DefaultReplyMaxLen
	}
	if c.Private.Pg.Port == 0 {
		c.Private.Pg.Port = 5432
	}
	if c.Private.Pg.SSLMode == "" {
		c.Private.Pg.SSLMode = "disable"
	}
}

func (c *Config) applyEnv() {
	if v, ok := lookupEnv("REMOTE_ENABLED"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Public.Remote.Enabled = b
		}
	}
	if v, ok := lookupEnv("LOCAL_PATH"); ok {
		c.Public.Local.Path = v
	}
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		c.Public.Log.Level = v
	}
	if v, ok := lookupEnv("PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			c.Public.HTTP.Port = port
		}
	}
	if v, ok := lookupEnv("PG_HOST"); ok {
		c.Private.Pg.Host = v
	}
	if v, ok := lookupEnv("PG_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			c.Private.Pg.Port = port
		}
	}
	if v, ok := lookupEnv("PG_USER"); ok {
		c.Private.Pg.User = v
	}
	if v, ok := lookupEnv("PG_PASSWORD"); ok {
		c.Private.Pg.Password = v
	}
	if v, ok := lookupEnv("PG_DBNAME"); ok {
		c.Private.Pg.Dbname = v
	}
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
