package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all server configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Storage  StorageConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
}

type JWTConfig struct {
	Secret   string
	ExpHours int
}

// StorageConfig points at the S3-compatible bucket holding member photos
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	PublicURL string // base URL photos are served from
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from .env, config.yaml and the environment.
// Environment variables win, with keys like DATABASE_HOST or JWT_SECRET.
func Load() *Config {
	// .env is optional; absence is normal outside local development
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.env", "development")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "community_user")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "community_db")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxconns", 10)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.exphours", 72)
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucket", "community-media")
	v.SetDefault("storage.region", "auto")
	v.SetDefault("storage.publicurl", "")
	v.SetDefault("cors.allowedorigins", []string{"http://localhost:5173"})

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("Failed to read config file: %v", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetInt("server.port"),
			Env:  v.GetString("server.env"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			Name:     v.GetString("database.name"),
			SSLMode:  v.GetString("database.sslmode"),
			MaxConns: v.GetInt("database.maxconns"),
		},
		JWT: JWTConfig{
			Secret:   v.GetString("jwt.secret"),
			ExpHours: v.GetInt("jwt.exphours"),
		},
		Storage: StorageConfig{
			Endpoint:  v.GetString("storage.endpoint"),
			AccessKey: v.GetString("storage.accesskey"),
			SecretKey: v.GetString("storage.secretkey"),
			Bucket:    v.GetString("storage.bucket"),
			Region:    v.GetString("storage.region"),
			PublicURL: v.GetString("storage.publicurl"),
		},
		CORS: CORSConfig{
			AllowedOrigins: v.GetStringSlice("cors.allowedorigins"),
		},
	}

	if cfg.JWT.Secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	return cfg
}
