// Package config loads the q63-server process configuration.
//
// Values are layered in increasing precedence: flag defaults, an optional
// YAML file, Q63_* environment variables, then flags set on the command line.
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/uglydojo/q63"
	"github.com/uglydojo/q63/mail"
	"github.com/uglydojo/q63/password"
)

// EnvPrefix namespaces environment overrides. Q63_REDIS_ADDR sets redis.addr.
const EnvPrefix = "Q63_"

// Default values for server flags.
const (
	defaultHTTPAddr        = ":8080"
	defaultShutdownTimeout = 10 * time.Second
	defaultRedisAddr       = "127.0.0.1:6379"
	defaultRedisRetries    = 5
	defaultLogFormat       = "json"
	defaultLogLevel        = "info"
)

// Server is the full process configuration.
type Server struct {
	HTTP     HTTPConfig     `koanf:"http"`
	Redis    RedisConfig    `koanf:"redis"`
	Log      LogConfig      `koanf:"log"`
	Admin    AdminConfig    `koanf:"admin"`
	SMTP     SMTPConfig     `koanf:"smtp"`
	Password PasswordConfig `koanf:"password"`
	Reset    ResetConfig    `koanf:"reset"`
	Store    StoreConfig    `koanf:"store"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

type HTTPConfig struct {
	Addr     string        `koanf:"addr"`
	Shutdown time.Duration `koanf:"shutdown"`
}

// RedisConfig selects the backing store. Embedded starts an in-process
// miniredis and ignores Addr; its data does not survive a restart.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	Embedded bool   `koanf:"embedded"`
	Retries  uint64 `koanf:"retries"`
}

type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

type AdminConfig struct {
	Key string `koanf:"key"`
}

type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

// ResetConfig pins where emailed reset links point. Origin wins when set;
// otherwise the request origin is used only for a host listed in Hosts.
type ResetConfig struct {
	Origin string   `koanf:"origin"`
	Hosts  []string `koanf:"hosts"`
}

type PasswordConfig struct {
	Iterations int `koanf:"iterations"`
}

type StoreConfig struct {
	Prefix string `koanf:"prefix"`
}

// MetricsConfig toggles the metric surfaces. Prometheus serves /metrics on
// the API listener; OTel registers instruments on the global meter provider.
type MetricsConfig struct {
	Prometheus bool `koanf:"prometheus"`
	OTel       bool `koanf:"otel"`
}

// RegisterFlags defines every setting on fs. Flag names are the koanf keys
// with "." replaced by "-".
func RegisterFlags(fs *pflag.FlagSet) {
	engine := q63.DefaultConfig()

	fs.String("http-addr", defaultHTTPAddr, "HTTP listen address")
	fs.Duration("http-shutdown", defaultShutdownTimeout, "graceful shutdown timeout")

	fs.String("redis-addr", defaultRedisAddr, "Redis address")
	fs.String("redis-password", "", "Redis password")
	fs.Int("redis-db", 0, "Redis database number")
	fs.Bool("redis-embedded", false, "run an in-process Redis (development only; data is lost on exit)")
	fs.Uint64("redis-retries", defaultRedisRetries, "startup connection attempts before giving up")

	fs.String("log-format", defaultLogFormat, "log format (json or text)")
	fs.String("log-level", defaultLogLevel, "log level (debug, info, warn, error)")

	fs.String("admin-key", "", "bearer key for the email export endpoint (empty disables it)")

	fs.String("smtp-host", engine.Mail.SMTP.Host, "SMTP relay host")
	fs.Int("smtp-port", engine.Mail.SMTP.Port, "SMTP relay port")
	fs.String("smtp-username", engine.Mail.SMTP.Username, "SMTP username")
	fs.String("smtp-password", "", "SMTP password (empty disables reset mail)")
	fs.String("smtp-from", engine.Mail.SMTP.From, "sender address for reset mail")

	fs.String("reset-origin", "", "public origin for reset links, e.g. https://q63.uglydojo.com")
	fs.StringSlice("reset-hosts", nil, "request hosts trusted to build reset links when reset-origin is unset")

	fs.Int("password-iterations", engine.Password.Iterations, "PBKDF2 iterations for new password digests")
	fs.String("store-prefix", engine.Store.KeyPrefix, "prefix prepended to every store key")

	fs.Bool("metrics-prometheus", true, "serve Prometheus metrics at /metrics")
	fs.Bool("metrics-otel", false, "register OpenTelemetry instruments on the global meter provider")
}

// Load reads path (when non-empty), the environment, and fs into a Server.
// fs must have been populated by RegisterFlags and parsed.
func Load(fs *pflag.FlagSet, path string) (*Server, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE").With("path", path).Wrapf(err, "load config file")
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, oops.Code("CONFIG_ENV").Wrapf(err, "load environment")
	}

	flagKey := func(f *pflag.Flag) (string, interface{}) {
		return strings.ReplaceAll(f.Name, "-", "."), posflag.FlagVal(fs, f)
	}
	if err := k.Load(posflag.ProviderWithFlag(fs, ".", k, flagKey), nil); err != nil {
		return nil, oops.Code("CONFIG_FLAGS").Wrapf(err, "load flags")
	}

	var cfg Server
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_DECODE").Wrapf(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
}

// Validate checks the process-level settings. Engine settings are checked
// by q63.Config.Validate when the engine is built.
func (c *Server) Validate() error {
	if c.HTTP.Addr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("http.addr is required")
	}
	if c.HTTP.Shutdown <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("http.shutdown must be > 0")
	}
	if !c.Redis.Embedded && c.Redis.Addr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("redis.addr is required unless redis.embedded is set")
	}
	if c.Redis.DB < 0 {
		return oops.Code("CONFIG_INVALID").Errorf("redis.db must be >= 0")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if c.Password.Iterations < password.MinIterations {
		return oops.Code("CONFIG_INVALID").Errorf("password.iterations must be >= %d", password.MinIterations)
	}
	return nil
}

// Engine maps the process settings onto the engine defaults.
func (c *Server) Engine() q63.Config {
	cfg := q63.DefaultConfig()
	cfg.Password.Iterations = c.Password.Iterations
	cfg.Admin.Key = c.Admin.Key
	cfg.Store.KeyPrefix = c.Store.Prefix
	cfg.PasswordReset.PublicOrigin = c.Reset.Origin
	cfg.PasswordReset.AllowedHosts = append([]string(nil), c.Reset.Hosts...)
	cfg.Mail.SMTP = mail.SMTPConfig{
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.SMTP.From,
	}
	return cfg
}
