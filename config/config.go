package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort string `mapstructure:"APP_PORT"`
	Env     string `mapstructure:"ENV"`

	// Storage. Backend is "mongo" or "file".
	DatabaseBackend string `mapstructure:"DATABASE_BACKEND"`
	DatabaseURL     string `mapstructure:"DATABASE_URL"`
	DatabaseName    string `mapstructure:"DATABASE_NAME"`
	DataFile        string `mapstructure:"DATA_FILE"`

	// Redis configuration (reminder queue backend).
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisReminderDB int    `mapstructure:"REDIS_REMINDER_DB"`

	// Booking rules.
	MaxBookingsPerMaster int `mapstructure:"MAX_BOOKINGS_PER_MASTER"`

	// Reminder lead times, minutes before session start.
	ReminderLeadLongMin  int `mapstructure:"REMINDER_LEAD_LONG_MIN"`
	ReminderLeadShortMin int `mapstructure:"REMINDER_LEAD_SHORT_MIN"`

	// Text interpreter (Gemini).
	GeminiAPIKey        string        `mapstructure:"GEMINI_API_KEY"`
	InterpreterTimeout  time.Duration `mapstructure:"INTERPRETER_TIMEOUT"`
	DefaultSlotLocation string        `mapstructure:"DEFAULT_SLOT_LOCATION"`
	DefaultSlotDuration int           `mapstructure:"DEFAULT_SLOT_DURATION_MIN"`

	MaxUserInputLength   int `mapstructure:"MAX_USER_INPUT_LENGTH"`
	MaxRequestsPerMinute int `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Firebase service account for push delivery. Empty disables FCM and
	// falls back to log-only notifications.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DATABASE_BACKEND", "mongo")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "concierge")
	viper.SetDefault("DATA_FILE", "data/database.json")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_REMINDER_DB", 3)
	viper.SetDefault("MAX_BOOKINGS_PER_MASTER", 2)
	viper.SetDefault("REMINDER_LEAD_LONG_MIN", 60)
	viper.SetDefault("REMINDER_LEAD_SHORT_MIN", 15)
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("INTERPRETER_TIMEOUT", 15*time.Second)
	viper.SetDefault("DEFAULT_SLOT_LOCATION", "Sauna")
	viper.SetDefault("DEFAULT_SLOT_DURATION_MIN", 60)
	viper.SetDefault("MAX_USER_INPUT_LENGTH", 2000)
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")

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
