package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Inference InferenceConfig
	Pipeline  PipelineConfig
	Logger    LoggerConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type StorageConfig struct {
	Bucket        string
	PublicBaseURL string
}

type InferenceConfig struct {
	APIURL  string
	ModelID string
	APIKey  string
}

type PipelineConfig struct {
	StageTimeout time.Duration
	Timezone     string
	FontPath     string
	FontSize     float64
}

type LoggerConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "imaging")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("STORAGE_BUCKET", "imaging-artifacts")
	v.SetDefault("STORAGE_PUBLIC_BASE_URL", "https://storage.googleapis.com")
	v.SetDefault("INFERENCE_API_URL", "https://outline.roboflow.com")
	v.SetDefault("INFERENCE_MODEL_ID", "proy_2/1")
	v.SetDefault("INFERENCE_API_KEY", "")
	v.SetDefault("PIPELINE_STAGE_TIMEOUT", "30s")
	v.SetDefault("HISTORY_TIMEZONE", "America/Guayaquil")
	v.SetDefault("RENDER_FONT_PATH", "")
	v.SetDefault("RENDER_FONT_SIZE", 14.0)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	// Env
	v.AutomaticEnv()

	connMaxLifetime, err := time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		connMaxLifetime = 30 * time.Minute
	}
	stageTimeout, err := time.ParseDuration(v.GetString("PIPELINE_STAGE_TIMEOUT"))
	if err != nil {
		stageTimeout = 30 * time.Second
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Storage: StorageConfig{
			Bucket:        v.GetString("STORAGE_BUCKET"),
			PublicBaseURL: v.GetString("STORAGE_PUBLIC_BASE_URL"),
		},
		Inference: InferenceConfig{
			APIURL:  v.GetString("INFERENCE_API_URL"),
			ModelID: v.GetString("INFERENCE_MODEL_ID"),
			APIKey:  v.GetString("INFERENCE_API_KEY"),
		},
		Pipeline: PipelineConfig{
			StageTimeout: stageTimeout,
			Timezone:     v.GetString("HISTORY_TIMEZONE"),
			FontPath:     v.GetString("RENDER_FONT_PATH"),
			FontSize:     v.GetFloat64("RENDER_FONT_SIZE"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	return cfg, nil
}
