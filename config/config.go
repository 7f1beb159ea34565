package config

import (
	"os"
	"strconv"
)

type Config struct {
	Firestore   FirestoreConfig
	Logger      LoggerConfig
	Maintenance MaintenanceConfig
}

type FirestoreConfig struct {
	ProjectID       string
	CredentialsFile string
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MaintenanceConfig struct {
	// MicroReservationEpsilon is the quantity floor below which a
	// reservation counts as rounding residue.
	MicroReservationEpsilon float64
}

// LoadEnv builds the configuration from environment variables.
func LoadEnv() *Config {
	return &Config{
		Firestore: FirestoreConfig{
			ProjectID:       getEnv("FIRESTORE_PROJECT_ID", ""),
			CredentialsFile: getEnv("FIRESTORE_CREDENTIALS_FILE", ""),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "console"),
		},
		Maintenance: MaintenanceConfig{
			MicroReservationEpsilon: getEnvFloat("MICRO_RESERVATION_EPSILON", 0),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
