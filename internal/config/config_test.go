package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	conf, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if conf.Storage.Driver != StorageMemory || conf.HTTP.Port != "8092" || conf.Booking.SessionTTL != 30*time.Minute {
		t.Fatalf("unexpected defaults: %+v", conf)
	}

	if !conf.Booking.RejectInvertedRange {
		t.Fatal("inverted ranges should be rejected by default")
	}
}

func TestLoadBookingFlagsFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RESORT_REJECT_INVERTED_RANGE", "false")
	t.Setenv("RESORT_REJECT_OVERLAPS", "true")

	conf, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if conf.Booking.RejectInvertedRange || !conf.Booking.RejectOverlaps {
		t.Fatalf("booking = %+v", conf.Booking)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yaml")
	body := `
http:
  port: "9000"
storage:
  driver: redis
  redis:
    addr: cache:6379
events:
  driver: kafka
  kafka:
    brokers: [k1:9092]
    topic: bookings
payment:
  latency: 250ms
booking:
  reject_overlaps: true
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("RESORT_HTTP_PORT", "9100")
	t.Setenv("RESORT_KAFKA_BROKERS", "k1:9092, k2:9092")

	conf, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if conf.HTTP.Port != "9100" {
		t.Errorf("env should win over file: port %v", conf.HTTP.Port)
	}

	if conf.Storage.Driver != StorageRedis || conf.Storage.Redis.Addr != "cache:6379" {
		t.Errorf("storage = %+v", conf.Storage)
	}

	if len(conf.Events.Kafka.Brokers) != 2 || conf.Events.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("brokers = %v", conf.Events.Kafka.Brokers)
	}

	if conf.Payment.Latency != 250*time.Millisecond || !conf.Booking.RejectOverlaps {
		t.Errorf("payment/booking = %+v %+v", conf.Payment, conf.Booking)
	}

	if conf.Hotel.Name == "" {
		t.Error("defaults not kept for sections missing from the file")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("RESORT_STORAGE_DRIVER=mysql\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("RESORT_STORAGE_DRIVER", "")
	os.Unsetenv("RESORT_STORAGE_DRIVER")

	conf, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { os.Unsetenv("RESORT_STORAGE_DRIVER") })

	if conf.Storage.Driver != StorageMySQL {
		t.Fatalf("driver = %v", conf.Storage.Driver)
	}
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"storage driver": func(c *Config) { c.Storage.Driver = "mongo" },
		"events driver":  func(c *Config) { c.Events.Driver = "smtp" },
		"kafka topic":    func(c *Config) { c.Events.Driver = EventsKafka; c.Events.Kafka.Topic = "" },
		"jwt secret":     func(c *Config) { c.Admin.JWTSecret = "" },
		"passcode":       func(c *Config) { c.Admin.Passcode = "" },
		"session ttl":    func(c *Config) { c.Booking.SessionTTL = 0 },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(&c)

			if err := c.Validate(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestBadBoolEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RESORT_REJECT_OVERLAPS", "maybe")

	if _, err := Load(""); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}
