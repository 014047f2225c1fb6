package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv         string
	Port            string
	DatabaseURL     string
	DefaultTrashcan int

	Session  SessionConfig
	Embedded EmbeddedDBConfig
	Geocode  GeocodeConfig
	Alerts   AlertConfig

	MQTTAddress        string
	FrontendDir        string
	CORSAllowedOrigins []string
	ProtectAPI         bool
}

// SessionConfig controls how login sessions are minted and checked
type SessionConfig struct {
	Secret string
	// LegacyCookie keeps the unsigned base64 cookie and presence-only gate
	LegacyCookie bool
	// LegacyPlaintextPasswords compares stored passwords verbatim instead of bcrypt
	LegacyPlaintextPasswords bool
}

// EmbeddedDBConfig is used when DATABASE_URL is empty
type EmbeddedDBConfig struct {
	DataDir  string
	Port     uint32
	Database string
	Username string
	Password string
}

// GeocodeConfig holds reverse geocoding settings
type GeocodeConfig struct {
	APIKey   string
	BaseURL  string
	CacheDir string
}

// AlertConfig holds fill-level notification settings
type AlertConfig struct {
	Threshold              float64
	FirebaseCredentials    string
	FirebaseCredentialsB64 string
}

// Load loads configuration from the environment, reading .env first if present
func Load() (*Config, error) {
	_ = godotenv.Load()

	nodeEnv := getEnv("NODE_ENV", "development")

	secret := os.Getenv("SESSION_SECRET")
	legacyCookie := getBool("LEGACY_SESSION_COOKIE", false)
	if secret == "" && !legacyCookie {
		if nodeEnv == "production" {
			return nil, fmt.Errorf("SESSION_SECRET is required in production")
		}
		secret = "dev-session-secret-change-me"
	}

	trashcan, err := getInt("DEFAULT_TRASHCAN", 1)
	if err != nil {
		return nil, err
	}
	if trashcan <= 0 {
		return nil, fmt.Errorf("DEFAULT_TRASHCAN must be positive, got %d", trashcan)
	}

	threshold, err := getFloat("FILL_ALERT_THRESHOLD", 80)
	if err != nil {
		return nil, err
	}

	embeddedPort, err := getInt("EMBEDDED_DB_PORT", 5433)
	if err != nil {
		return nil, err
	}

	return &Config{
		NodeEnv:         nodeEnv,
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DefaultTrashcan: trashcan,
		Session: SessionConfig{
			Secret:                   secret,
			LegacyCookie:             legacyCookie,
			LegacyPlaintextPasswords: getBool("LEGACY_PLAINTEXT_PASSWORDS", false),
		},
		Embedded: EmbeddedDBConfig{
			DataDir:  getEnv("EMBEDDED_DB_DIR", "./db_data"),
			Port:     uint32(embeddedPort),
			Database: getEnv("EMBEDDED_DB_NAME", "wastewizard"),
			Username: "postgres",
			Password: "postgres",
		},
		Geocode: GeocodeConfig{
			APIKey:   os.Getenv("GOOGLE_MAPS_API_KEY"),
			BaseURL:  getEnv("GEOCODE_BASE_URL", "https://maps.googleapis.com/maps/api/geocode/json"),
			CacheDir: os.Getenv("GEOCODE_CACHE_DIR"),
		},
		Alerts: AlertConfig{
			Threshold:              threshold,
			FirebaseCredentials:    os.Getenv("FIREBASE_CREDENTIALS_FILE"),
			FirebaseCredentialsB64: os.Getenv("FIREBASE_CREDENTIALS_BASE64"),
		},
		MQTTAddress:        os.Getenv("MQTT_ADDRESS"),
		FrontendDir:        os.Getenv("FRONTEND_DIR"),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		ProtectAPI:         getBool("PROTECT_API", false),
	}, nil
}

// IsProduction reports whether cookies should be marked Secure
func (c *Config) IsProduction() bool {
	return c.NodeEnv == "production"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}

func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
