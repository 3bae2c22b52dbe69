package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type CheckinMode string

const (
	// CheckinToggle allows undoing a check-in by checking the ticket again.
	CheckinToggle CheckinMode = "toggle"
	// CheckinConfirm is one-way: a checked-in ticket stays checked in.
	CheckinConfirm CheckinMode = "confirm"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	App      AppConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
}

type AppConfig struct {
	CheckinMode   CheckinMode
	QRSecret      string
	SaleRateLimit int // submissions per minute per client
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverHost := os.Getenv("SERVER_HOST")
	if serverHost == "" {
		serverHost = "localhost"
	}

	serverPortStr := os.Getenv("SERVER_PORT")
	if serverPortStr == "" {
		serverPortStr = "8080"
	}

	serverPort, err := strconv.Atoi(serverPortStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid SERVER_PORT: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host: serverHost,
		Port: serverPort,
	}

	postgresHost := os.Getenv("POSTGRES_HOST")
	if postgresHost == "" {
		postgresHost = "localhost"
	}

	postgresPortStr := os.Getenv("POSTGRES_PORT")
	if postgresPortStr == "" {
		postgresPortStr = "5432"
	}

	postgresPort, err := strconv.Atoi(postgresPortStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid POSTGRES_PORT: %w", op, err)
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	if postgresUser == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
	}

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	if postgresPassword == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
	}

	postgresDB := os.Getenv("POSTGRES_DB")
	if postgresDB == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
	}

	postgresSSLMode := os.Getenv("POSTGRES_SSLMODE")
	if postgresSSLMode == "" {
		postgresSSLMode = "disable"
	}

	postgresCfg := PostgresConfig{
		User:     postgresUser,
		Password: postgresPassword,
		Name:     postgresDB,
		Host:     postgresHost,
		Port:     postgresPort,
		SSLMode:  postgresSSLMode,
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisCfg := RedisConfig{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	}

	mode := CheckinMode(os.Getenv("CHECKIN_MODE"))
	switch mode {
	case "":
		mode = CheckinToggle
	case CheckinToggle, CheckinConfirm:
	default:
		return nil, fmt.Errorf("%s: invalid CHECKIN_MODE %q", op, mode)
	}

	qrSecret := os.Getenv("QR_SECRET")
	if qrSecret == "" {
		return nil, fmt.Errorf("%s: missing QR_SECRET", op)
	}

	rateLimitStr := os.Getenv("SALE_RATE_LIMIT")
	if rateLimitStr == "" {
		rateLimitStr = "30"
	}

	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid SALE_RATE_LIMIT: %w", op, err)
	}

	appCfg := AppConfig{
		CheckinMode:   mode,
		QRSecret:      qrSecret,
		SaleRateLimit: rateLimit,
	}

	return &Config{
		Server:   serverCfg,
		Postgres: postgresCfg,
		Redis:    redisCfg,
		App:      appCfg,
	}, nil
}
