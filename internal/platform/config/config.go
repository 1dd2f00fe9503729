package config

import (
	"os"
	"strings"
	"time"
)

// Config captures everything the server needs from the environment.
type Config struct {
	Addr string

	// DatabaseURL is the PostgreSQL DSN for profiles, students,
	// registrations, and the program catalog.
	DatabaseURL string

	// RedisURL enables the advisory email reservation when set. Empty means
	// the workflow relies solely on the database constraint.
	RedisURL string

	// KafkaBrokers enables audit/reconciliation publishing when non-empty.
	KafkaBrokers []string

	// Identity service admin API.
	IdentityServiceURL string
	IdentityServiceKey string

	// Matric allocation service.
	MatricServiceURL string

	// JWTSigningKey signs activation tokens embedded in invite links.
	JWTSigningKey string

	// ActivationRedirectURL is where the invite email sends the student.
	ActivationRedirectURL string

	// AdminToken guards the provisioning endpoint.
	AdminToken string

	// ReservationTTL bounds how long an in-flight email reservation lives.
	ReservationTTL time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:                  getenv("REGISTRAR_ADDR", ":8080"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisURL:              os.Getenv("REDIS_URL"),
		IdentityServiceURL:    os.Getenv("IDENTITY_SERVICE_URL"),
		IdentityServiceKey:    os.Getenv("IDENTITY_SERVICE_KEY"),
		MatricServiceURL:      os.Getenv("MATRIC_SERVICE_URL"),
		JWTSigningKey:         getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		ActivationRedirectURL: getenv("ACTIVATION_REDIRECT_URL", "http://localhost:3000/onboarding"),
		AdminToken:            os.Getenv("ADMIN_TOKEN"),
		ReservationTTL:        time.Minute,
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, broker := range strings.Split(brokers, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
