package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timeouts, pool sizes, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server ServerConfig
	DB     DBConfig
	CORS   CORSConfig
	Log    LogConfig
	Queue  QueueConfig
	Email  EmailConfig
	SMS    SMSConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"America/Bogota"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"America/Bogota"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"-18000"` // -5*60*60
}

// QueueConfig drives both queue implementations and the worker pools.
// Driver "postgres" is the durable queue; "memory" runs the same contract
// in-process for local/dev runs.
type QueueConfig struct {
	Driver             string        `envconfig:"QUEUE_DRIVER" default:"postgres"`
	NotificationPool   int           `envconfig:"QUEUE_NOTIFICATION_WORKERS" default:"4"`
	SchedulingPool     int           `envconfig:"QUEUE_SCHEDULING_WORKERS" default:"2"`
	PollInterval       time.Duration `envconfig:"QUEUE_POLL_INTERVAL" default:"1s"`
	ClaimLease         time.Duration `envconfig:"QUEUE_CLAIM_LEASE" default:"2m"`
	SchedulerTick      time.Duration `envconfig:"QUEUE_SCHEDULER_TICK" default:"30s"`
	DefaultAttempts    int           `envconfig:"QUEUE_DEFAULT_ATTEMPTS" default:"3"`
	DefaultBackoff     time.Duration `envconfig:"QUEUE_DEFAULT_BACKOFF" default:"2s"`
	ChannelSendTimeout time.Duration `envconfig:"QUEUE_CHANNEL_SEND_TIMEOUT" default:"10s"`
}

type EmailConfig struct {
	Host     string `envconfig:"SMTP_HOST" default:""`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	User     string `envconfig:"SMTP_USER" default:""`
	Password string `envconfig:"SMTP_PASSWORD" default:""`
	From     string `envconfig:"SMTP_FROM" default:"no-reply@mentorhub.local"`
}

type SMSConfig struct {
	AccountSID string `envconfig:"TWILIO_ACCOUNT_SID" default:""`
	AuthToken  string `envconfig:"TWILIO_AUTH_TOKEN" default:""`
	FromNumber string `envconfig:"TWILIO_PHONE_NUMBER" default:""`
}

// Enabled reports whether real SMTP credentials are present. Without them the
// email sender runs in log-only mode.
func (c EmailConfig) Enabled() bool {
	return c.Host != "" && c.User != ""
}

// Enabled mirrors the Twilio credential sanity check: a real account SID
// always starts with "AC".
func (c SMSConfig) Enabled() bool {
	return len(c.AccountSID) > 2 && c.AccountSID[:2] == "AC" && c.AuthToken != "" && c.FromNumber != ""
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "America/Bogota",
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "America/Bogota",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: -18000,
		},
		Queue: QueueConfig{
			Driver:             "memory",
			NotificationPool:   1,
			SchedulingPool:     1,
			PollInterval:       10 * time.Millisecond,
			ClaimLease:         2 * time.Minute,
			SchedulerTick:      time.Second,
			DefaultAttempts:    3,
			DefaultBackoff:     2 * time.Second,
			ChannelSendTimeout: time.Second,
		},
	}
}
