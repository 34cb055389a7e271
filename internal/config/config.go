package config

import (
	"os"
	"strconv"
)

// Config holds the dismissal engine configuration.
type Config struct {
	Database struct {
		Host     string
		Port     int
		User     string
		Password string
		Database string
		SSLMode  string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	MQTT struct {
		BrokerURL   string
		ClientID    string
		SampleTopic string // accelerometer samples in
		AlertTopic  string // ring notifications out
	}

	Store struct {
		AlarmKeyPrefix string // alarm record key prefix, e.g. "sankalp:alarm:"
		WakeEventCap   int    // wake history bound, oldest evicted
	}

	Motion struct {
		SampleIntervalMs int // expected sensor sampling interval
	}

	Scheduler struct {
		PollIntervalSec int // alarm check period
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load builds the configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "sankalp")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.MQTT.BrokerURL = getEnv("MQTT_BROKER_URL", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "sankalp-alarm")
	cfg.MQTT.SampleTopic = getEnv("MQTT_SAMPLE_TOPIC", "sankalp/sensor/accel")
	cfg.MQTT.AlertTopic = getEnv("MQTT_ALERT_TOPIC", "sankalp/alarm/ring")

	cfg.Store.AlarmKeyPrefix = getEnv("STORE_ALARM_PREFIX", "sankalp:alarm:")
	cfg.Store.WakeEventCap = getEnvInt("STORE_WAKE_EVENT_CAP", 30)

	cfg.Motion.SampleIntervalMs = getEnvInt("MOTION_SAMPLE_INTERVAL_MS", 40)

	cfg.Scheduler.PollIntervalSec = getEnvInt("SCHEDULER_POLL_INTERVAL", 10)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
