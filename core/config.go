package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug    bool
		TestMode bool
		Env      string // DEV (local; default), TEST, QA, PROD
		Build    string
		AppName  string

		FrontendBaseURL  string
		DefaultFromEmail string
		SendgridAPIKey   string
		RollbarToken     string

		Server   ServerConfig
		Database DatabaseConfig
		Clerk    ClerkConfig
		AI       AIConfig
	}

	ServerConfig struct {
		Host            string
		DebugHost       string
		AllowedOrigins  []string
		ShutdownTimeout time.Duration
		// CourseAPIKey is the shared static key accepted as an alternate
		// credential on course creation.
		CourseAPIKey string
	}

	DatabaseConfig struct {
		URI         string
		Name        string
		MaxPoolSize uint64
		Timeout     time.Duration
	}

	ClerkConfig struct {
		SecretKey     string
		JWTPublicKey  string // PEM-encoded RSA public key of the instance
		WebhookSecret string
		APIBaseURL    string
	}

	AIConfig struct {
		APIKey    string
		Model     string
		BaseURL   string
		MaxTokens int
		Timeout   time.Duration
	}
)

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("build", "dev")
	conf.SetDefault("appName", "Elimu")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("serverHost", "0.0.0.0:8000")
	conf.SetDefault("serverDebugHost", "0.0.0.0:4000")
	conf.SetDefault("serverAllowedOrigins", []string{"http://localhost:3000"})
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("databaseURI", "mongodb://localhost:27017")
	conf.SetDefault("databaseName", "elimu")
	conf.SetDefault("databaseMaxPoolSize", 100)
	conf.SetDefault("databaseTimeout", 10*time.Second)
	conf.SetDefault("clerkAPIBaseURL", "https://api.clerk.com/v1")
	conf.SetDefault("aiModel", "gemini-pro")
	conf.SetDefault("aiBaseURL", "https://generativelanguage.googleapis.com/v1beta")
	conf.SetDefault("aiMaxTokens", 2048)
	conf.SetDefault("aiTimeout", 30*time.Second)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:    conf.GetBool("debug"),
		TestMode: env == "TEST",
		Env:      env,
		Build:    conf.GetString("build"),
		AppName:  conf.GetString("appName"),

		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		DefaultFromEmail: conf.GetString("defaultFromEmail"),
		SendgridAPIKey:   conf.GetString("sendgridAPIKey"),
		RollbarToken:     conf.GetString("rollbarToken"),

		Server: ServerConfig{
			Host:            conf.GetString("serverHost"),
			DebugHost:       conf.GetString("serverDebugHost"),
			AllowedOrigins:  conf.GetStringSlice("serverAllowedOrigins"),
			ShutdownTimeout: conf.GetDuration("serverShutdownTimeout"),
			CourseAPIKey:    conf.GetString("courseCreationAPIKey"),
		},
		Database: DatabaseConfig{
			URI:         conf.GetString("databaseURI"),
			Name:        conf.GetString("databaseName"),
			MaxPoolSize: conf.GetUint64("databaseMaxPoolSize"),
			Timeout:     conf.GetDuration("databaseTimeout"),
		},
		Clerk: ClerkConfig{
			SecretKey:     conf.GetString("clerkSecretKey"),
			JWTPublicKey:  conf.GetString("clerkJWTPublicKey"),
			WebhookSecret: conf.GetString("clerkWebhookSecret"),
			APIBaseURL:    conf.GetString("clerkAPIBaseURL"),
		},
		AI: AIConfig{
			APIKey:    conf.GetString("googleAIAPIKey"),
			Model:     conf.GetString("aiModel"),
			BaseURL:   conf.GetString("aiBaseURL"),
			MaxTokens: conf.GetInt("aiMaxTokens"),
			Timeout:   conf.GetDuration("aiTimeout"),
		},
	}
}
