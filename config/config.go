package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the outer layers' configuration. The indicator core takes
// none of it; it only sees the Check level.
type Config struct {
	LogLevel string

	// Infrastructure
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MetricsAddr   string

	// Evaluation
	Check string // off | basic | strict

	// Replay checkpoints
	SnapshotKey string
	SnapshotTTL time.Duration
}

// Prefix namespaces the environment: TACORE_SQLITE_PATH and so on.
const Prefix = "TACORE"

// Defaults registers every key with its fallback on v.
func Defaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("sqlite_path", "data/candles.db")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("metrics_addr", ":9090")
	v.SetDefault("check", "basic")
	v.SetDefault("snapshot_key", "tacore:replay:snapshot")
	v.SetDefault("snapshot_ttl", 24*time.Hour)
}

// New returns a viper instance reading TACORE_* variables over the defaults.
// dotenv files are loaded first when present; variables already set in the
// environment win.
func New(dotenv ...string) *viper.Viper {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, f := range dotenv {
		// missing files are fine
		_ = godotenv.Load(f)
	}

	v := viper.New()
	v.SetEnvPrefix(Prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	Defaults(v)
	return v
}

// Load reads the configuration from v.
func Load(v *viper.Viper) *Config {
	return &Config{
		LogLevel:      v.GetString("log_level"),
		SQLitePath:    v.GetString("sqlite_path"),
		RedisAddr:     v.GetString("redis_addr"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),
		MetricsAddr:   v.GetString("metrics_addr"),
		Check:         v.GetString("check"),
		SnapshotKey:   v.GetString("snapshot_key"),
		SnapshotTTL:   v.GetDuration("snapshot_ttl"),
	}
}
