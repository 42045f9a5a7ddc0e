package config

import (
	"os"
	"strings"
)

type AppConfig struct {
	HTTPAddr      string
	RedisAddr     string
	RedisPass     string
	KafkaBrokers  []string
	KafkaGroupID  string
	SnowflakeNode int64

	JWTPublicKeyPath string
	JWTIssuer        string
	JWTAudience      string
}

func Load() AppConfig {
	return AppConfig{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPass:     getEnv("REDIS_PASS", ""),
		KafkaBrokers:  getEnvSlice("KAFKA_BROKERS", []string{"kafka-service:9092"}),
		KafkaGroupID:  getEnv("KAFKA_GROUP_ID", "user-sync-group"),
		SnowflakeNode: 3,

		JWTPublicKeyPath: getEnv("JWT_PUBLIC_KEY_PATH", "/app/keys/jwt_public.pem"),
		JWTIssuer:        getEnv("JWT_ISSUER", "identity-service"),
		JWTAudience:      getEnv("JWT_AUDIENCE", "user-profile-service"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
