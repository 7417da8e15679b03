package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Upstream marketplace API.
	APIBaseURL        string `mapstructure:"API_BASE_URL"`
	APITimeoutSeconds int    `mapstructure:"API_TIMEOUT_SECONDS"`
	// Comma separated resources that may be served from canned data when the upstream fails.
	FallbackResources string `mapstructure:"FALLBACK_RESOURCES"`

	// Redis configuration.
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB    int    `mapstructure:"REDIS_SESSION_DB"`
	RedisQueueDB      int    `mapstructure:"REDIS_QUEUE_DB"`
	SessionTTLMinutes int    `mapstructure:"SESSION_TTL_MINUTES"`
	DraftTTLMinutes   int    `mapstructure:"DRAFT_TTL_MINUTES"`

	// MongoDB holds the pending-sync outbox.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Reverse geocoding.
	GeocoderURL       string `mapstructure:"GEOCODER_URL"`
	GeocoderUserAgent string `mapstructure:"GEOCODER_USER_AGENT"`

	// Booking.
	DuplicateBookingMatch string `mapstructure:"DUPLICATE_BOOKING_MATCH"`
	PromoCode             string `mapstructure:"PROMO_CODE"`
	ReconcileSchedule     string `mapstructure:"RECONCILE_SCHEDULE"`
	// Slots and reminders are computed in this zone.
	BusinessTimezone    string `mapstructure:"BUSINESS_TIMEZONE"`
	ReminderLeadMinutes int    `mapstructure:"REMINDER_LEAD_MINUTES"`

	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `mapstructure:"CLOUDINARY_FOLDER"`
}

var AppConfig Config

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("API_BASE_URL", "http://localhost:9090/api")
	viper.SetDefault("API_TIMEOUT_SECONDS", 15)
	viper.SetDefault("FALLBACK_RESOURCES", "garages,washing,services,vehicles,addresses,catalog,cities,landing")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("SESSION_TTL_MINUTES", 7*24*60)
	viper.SetDefault("DRAFT_TTL_MINUTES", 60)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "bikeserve")
	viper.SetDefault("GEOCODER_URL", "https://nominatim.openstreetmap.org")
	viper.SetDefault("GEOCODER_USER_AGENT", "bikeserve/1.0")
	viper.SetDefault("DUPLICATE_BOOKING_MATCH", "Booking already exists")
	viper.SetDefault("PROMO_CODE", "FIRSTRIDE")
	viper.SetDefault("RECONCILE_SCHEDULE", "0 */5 * * * *")
	viper.SetDefault("BUSINESS_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("REMINDER_LEAD_MINUTES", 60)
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	viper.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	viper.SetDefault("CLOUDINARY_API_KEY", "")
	viper.SetDefault("CLOUDINARY_API_SECRET", "")
	viper.SetDefault("CLOUDINARY_FOLDER", "bikeserve/vehicles")
}

func LoadConfig() {
	// A local .env is optional; real environments inject variables directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// FallbackResourceList splits FALLBACK_RESOURCES into trimmed, non-empty names.
func (c Config) FallbackResourceList() []string {
	var out []string
	for _, r := range strings.Split(c.FallbackResources, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func (c Config) APITimeout() time.Duration {
	if c.APITimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.APITimeoutSeconds) * time.Second
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c Config) DraftTTL() time.Duration {
	return time.Duration(c.DraftTTLMinutes) * time.Minute
}

func (c Config) ReminderLead() time.Duration {
	return time.Duration(c.ReminderLeadMinutes) * time.Minute
}

// Location loads BUSINESS_TIMEZONE, falling back to UTC when it is unknown.
func (c Config) Location() *time.Location {
	if c.BusinessTimezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.BusinessTimezone)
	if err != nil {
		log.Printf("Unknown BUSINESS_TIMEZONE %q, using UTC", c.BusinessTimezone)
		return time.UTC
	}
	return loc
}
