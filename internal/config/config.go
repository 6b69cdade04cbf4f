package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "RESORT_"

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageMySQL  = "mysql"

	EventsLog   = "log"
	EventsKafka = "kafka"
)

var ErrInvalid = errors.New("invalid config")

type Log struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type HTTP struct {
	Host              string        `yaml:"host"`
	Port              string        `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins    []string      `yaml:"allowed_origins"`
	RateLimit         float64       `yaml:"rate_limit"`
	RateBurst         int           `yaml:"rate_burst"`
	LivenessEndpoint  string        `yaml:"liveness_endpoint"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type MySQL struct {
	Addr     string `yaml:"addr"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type Storage struct {
	Driver string `yaml:"driver"`
	Seed   bool   `yaml:"seed"`
	Redis  Redis  `yaml:"redis"`
	MySQL  MySQL  `yaml:"mysql"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type Events struct {
	Driver string `yaml:"driver"`
	Kafka  Kafka  `yaml:"kafka"`
}

type Tracing struct {
	Endpoint string `yaml:"endpoint"`
}

type Admin struct {
	Passcode     string        `yaml:"passcode"`
	PasscodeHash string        `yaml:"passcode_hash"`
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

type Payment struct {
	Latency      time.Duration `yaml:"latency"`
	Timeout      time.Duration `yaml:"timeout"`
	DeclineAbove string        `yaml:"decline_above"`
}

type Booking struct {
	RejectOverlaps      bool          `yaml:"reject_overlaps"`
	RejectInvertedRange bool          `yaml:"reject_inverted_range"`
	SessionTTL          time.Duration `yaml:"session_ttl"`
	SweepInterval       time.Duration `yaml:"sweep_interval"`
}

type Hotel struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Phone   string `yaml:"phone"`
}

type Config struct {
	Service string  `yaml:"service"`
	Log     Log     `yaml:"log"`
	HTTP    HTTP    `yaml:"http"`
	Storage Storage `yaml:"storage"`
	Events  Events  `yaml:"events"`
	Tracing Tracing `yaml:"tracing"`
	Admin   Admin   `yaml:"admin"`
	Payment Payment `yaml:"payment"`
	Booking Booking `yaml:"booking"`
	Hotel   Hotel   `yaml:"hotel"`
}

//nolint:gomnd
func Default() Config {
	//nolint:exhaustruct
	return Config{
		Service: "resort",
		Log:     Log{Level: "info"},
		HTTP: HTTP{
			Host:              "localhost",
			Port:              "8092",
			ReadHeaderTimeout: 20 * time.Second,
			ShutdownTimeout:   4 * time.Second,
			AllowedOrigins:    []string{"*"},
			RateLimit:         20,
			RateBurst:         40,
			LivenessEndpoint:  "/liveness",
		},
		Storage: Storage{
			Driver: StorageMemory,
			Seed:   true,
			Redis:  Redis{Addr: "localhost:6379", Prefix: "resort"},
			MySQL:  MySQL{Addr: "localhost:3306", User: "resort", Database: "resort"},
		},
		Events: Events{
			Driver: EventsLog,
			Kafka:  Kafka{Brokers: []string{"localhost:9092"}, Topic: "resort.bookings"},
		},
		Admin: Admin{
			Passcode:  "admin123",
			JWTSecret: "change-me",
			TokenTTL:  12 * time.Hour,
		},
		Payment: Payment{
			Latency:      1500 * time.Millisecond,
			Timeout:      10 * time.Second,
			DeclineAbove: "0",
		},
		Booking: Booking{
			RejectInvertedRange: true,
			SessionTTL:          30 * time.Minute,
			SweepInterval:       time.Minute,
		},
		Hotel: Hotel{
			Name:    "Taj Resort & Spa",
			Address: "Apollo Bunder, Colaba, Mumbai 400001",
			Phone:   "+91 22 6665 3366",
		},
	}
}

// Load reads defaults, then the yaml file at path (optional), then a .env
// file and RESORT_* variables. Later sources win.
func Load(path string) (*Config, error) {
	conf := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %v: %w", path, err)
		}

		if err := yaml.Unmarshal(data, &conf); err != nil {
			return nil, fmt.Errorf("parse config %v: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := conf.applyEnv(); err != nil {
		return nil, err
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"LOG_LEVEL":           &c.Log.Level,
		"HTTP_HOST":           &c.HTTP.Host,
		"HTTP_PORT":           &c.HTTP.Port,
		"STORAGE_DRIVER":      &c.Storage.Driver,
		"REDIS_ADDR":          &c.Storage.Redis.Addr,
		"REDIS_PASSWORD":      &c.Storage.Redis.Password,
		"MYSQL_ADDR":          &c.Storage.MySQL.Addr,
		"MYSQL_USER":          &c.Storage.MySQL.User,
		"MYSQL_PASSWORD":      &c.Storage.MySQL.Password,
		"MYSQL_DATABASE":      &c.Storage.MySQL.Database,
		"EVENTS_DRIVER":       &c.Events.Driver,
		"KAFKA_TOPIC":         &c.Events.Kafka.Topic,
		"TRACING_ENDPOINT":    &c.Tracing.Endpoint,
		"ADMIN_PASSCODE":      &c.Admin.Passcode,
		"ADMIN_PASSCODE_HASH": &c.Admin.PasscodeHash,
		"JWT_SECRET":          &c.Admin.JWTSecret,
	}

	for key, dst := range str {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv(envPrefix + "KAFKA_BROKERS"); ok {
		c.Events.Kafka.Brokers = splitList(v)
	}

	if v, ok := os.LookupEnv(envPrefix + "ALLOWED_ORIGINS"); ok {
		c.HTTP.AllowedOrigins = splitList(v)
	}

	flags := map[string]*bool{
		"LOG_PRETTY":            &c.Log.Pretty,
		"STORAGE_SEED":          &c.Storage.Seed,
		"REJECT_OVERLAPS":       &c.Booking.RejectOverlaps,
		"REJECT_INVERTED_RANGE": &c.Booking.RejectInvertedRange,
	}

	for key, dst := range flags {
		v, ok := os.LookupEnv(envPrefix + key)
		if !ok {
			continue
		}

		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %v%v=%q: %w", ErrInvalid, envPrefix, key, v, err)
		}

		*dst = b
	}

	return nil
}

func splitList(v string) []string {
	var out []string

	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}

func (c *Config) Validate() error {
	var problems []string

	switch c.Storage.Driver {
	case StorageMemory, StorageRedis, StorageMySQL:
	default:
		problems = append(problems, fmt.Sprintf("unknown storage driver %q", c.Storage.Driver))
	}

	switch c.Events.Driver {
	case EventsLog:
	case EventsKafka:
		if len(c.Events.Kafka.Brokers) == 0 || c.Events.Kafka.Topic == "" {
			problems = append(problems, "kafka events need brokers and a topic")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown events driver %q", c.Events.Driver))
	}

	if c.HTTP.Port == "" {
		problems = append(problems, "http port is required")
	}

	if c.Admin.JWTSecret == "" {
		problems = append(problems, "admin jwt secret is required")
	}

	if c.Admin.Passcode == "" && c.Admin.PasscodeHash == "" {
		problems = append(problems, "admin passcode or passcode hash is required")
	}

	if c.Booking.SessionTTL <= 0 || c.Booking.SweepInterval <= 0 {
		problems = append(problems, "wizard session ttl and sweep interval must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalid, strings.Join(problems, "; "))
	}

	return nil
}
