package config

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Host string
		Port int
	}
	Auth struct {
		Secret      string
		LoginTTL    time.Duration
		SessionTTL  time.Duration
		ResetTTL    time.Duration
		RequireName bool
	}
	Database struct {
		Driver string
		Path   string
		URI    string
		Name   string
	}
	Redis struct {
		Addr     string
		Password string
	}
	Mail struct {
		Driver   string
		From     string
		Host     string
		Port     int
		Username string
		Password string
		BaseURL  string
		Bucket   string
		Prefix   string
		Region   string
		Endpoint string
	}
	Log struct {
		Level string
	}
}

// legacyEnv maps config keys to the unprefixed variable names older
// deployments still set.
var legacyEnv = map[string]string{
	"server.host":   "HOST",
	"server.port":   "PORT",
	"database.uri":  "MONGODB_URI",
	"auth.secret":   "SECRET_TOKEN_KEY",
	"mail.username": "EMAIL_SENDER",
	"mail.password": "EMAIL_SENDER_PASSWORD",
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("ACCOUNTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.loginttl", 3*time.Minute)
	v.SetDefault("auth.sessionttl", time.Hour)
	v.SetDefault("auth.resetttl", time.Hour)
	v.SetDefault("auth.requirename", false)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/accounts.db")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "accounts")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("mail.driver", "log")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.host", "smtp.gmail.com")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.baseurl", "http://localhost:3000")
	v.SetDefault("mail.bucket", "")
	v.SetDefault("mail.prefix", "outbox")
	v.SetDefault("mail.region", "us-east-1")
	v.SetDefault("mail.endpoint", "")
	v.SetDefault("log.level", "info")

	for key, name := range legacyEnv {
		prefixed := "ACCOUNTS_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, name); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth secret is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database path is required for sqlite")
		}
	case "mongo":
		if c.Database.URI == "" {
			return errors.New("database uri is required for mongo")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	switch c.Mail.Driver {
	case "log":
	case "smtp":
		if c.Mail.Host == "" {
			return errors.New("mail host is required for smtp")
		}
	case "s3":
		if c.Mail.Bucket == "" {
			return errors.New("mail bucket is required for s3")
		}
	default:
		return fmt.Errorf("unknown mail driver %q", c.Mail.Driver)
	}

	return nil
}

// Addr is the listen address of the HTTP server.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

func loadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:idx])
		value := strings.Trim(strings.TrimSpace(line[idx+1:]), `"'`)

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
