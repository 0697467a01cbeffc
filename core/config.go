package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf holds the app-wide configuration. It is loaded once at startup.
var Conf *Config

type (
	Config struct {
		Env      string
		Debug    bool
		TestMode bool

		AppName          string
		SecretKey        []byte
		FrontendBaseURL  string
		DefaultFromEmail string

		AccessTokenTTL  time.Duration
		RefreshTokenTTL time.Duration

		DatabaseURL string
		RedisURL    string

		SendgridAPIKey  string
		RollbarToken    string
		VAPIDPublicKey  string
		VAPIDPrivateKey string

		Server ServerConfig
	}

	ServerConfig struct {
		Host            string
		Port            int
		ShutdownTimeout time.Duration
	}
)

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func init() {
	Conf = LoadConfig()
}

// LoadConfig reads configuration from the environment, with an optional
// config/.env.<env> file loaded first and sane defaults for local dev.
func LoadConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "GradeBook")
	v.SetDefault("secretKey", "puq7-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("accessTokenTTL", 24*time.Hour)
	v.SetDefault("refreshTokenTTL", 30*24*time.Hour)
	v.SetDefault("databaseURL", "")
	v.SetDefault("redisURL", "")
	v.SetDefault("sendgridAPIKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("vapidPublicKey", "")
	v.SetDefault("vapidPrivateKey", "")
	v.SetDefault("serverHost", "")
	v.SetDefault("serverPort", 8000)
	v.SetDefault("serverShutdownTimeout", 20*time.Second)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	}
	v.AutomaticEnv()

	return &Config{
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         env == "TEST",
		AppName:          v.GetString("appName"),
		SecretKey:        []byte(v.GetString("secretKey")),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: v.GetString("defaultFromEmail"),
		AccessTokenTTL:   v.GetDuration("accessTokenTTL"),
		RefreshTokenTTL:  v.GetDuration("refreshTokenTTL"),
		DatabaseURL:      v.GetString("databaseURL"),
		RedisURL:         v.GetString("redisURL"),
		SendgridAPIKey:   v.GetString("sendgridAPIKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		VAPIDPublicKey:   v.GetString("vapidPublicKey"),
		VAPIDPrivateKey:  v.GetString("vapidPrivateKey"),
		Server: ServerConfig{
			Host:            v.GetString("serverHost"),
			Port:            v.GetInt("serverPort"),
			ShutdownTimeout: v.GetDuration("serverShutdownTimeout"),
		},
	}
}
