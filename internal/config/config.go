package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env"
)

type config struct {
	Production     bool          `env:"PRODUCTION" envDefault:"false"`
	Port           string        `env:"PORT" envDefault:"80"`
	PostgresUrl    string        `env:"POSTGRES_URL"`
	RedisUrl       string        `env:"REDIS_URL" envDefault:"redis:6379"`
	Secret         string        `env:"SECRET"`
	JwtTTL         time.Duration `env:"TOKEN_TTL" envDefault:"20m"`
	GraphBaseUrl   string        `env:"GRAPH_BASE_URL" envDefault:"https://graph.microsoft.com/v1.0"`
	LoginBaseUrl   string        `env:"MS_LOGIN_BASE_URL" envDefault:"https://login.microsoftonline.com"`
	TenantID       string        `env:"MS_TENANT_ID"`
	ClientID       string        `env:"MS_CLIENT_ID"`
	ClientSecret   string        `env:"MS_CLIENT_SECRET"`
	SystemTimezone string        `env:"SYSTEM_TIMEZONE" envDefault:"UTC"`
	SyncTimeout    time.Duration `env:"SYNC_TIMEOUT" envDefault:"25m"`
}

var (
	conf           config
	systemLocation *time.Location
	loadOnce       sync.Once
)

func load() {
	loadOnce.Do(func() {
		if err := env.Parse(&conf); err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}

		loc, err := time.LoadLocation(conf.SystemTimezone)
		if err != nil {
			panic(fmt.Sprintf("failed to load system timezone %q: %v", conf.SystemTimezone, err))
		}
		systemLocation = loc
	})
}

// Validate reports the variables the server cannot start without.
func Validate() error {
	load()

	required := map[string]string{
		"POSTGRES_URL":     conf.PostgresUrl,
		"SECRET":           conf.Secret,
		"MS_TENANT_ID":     conf.TenantID,
		"MS_CLIENT_ID":     conf.ClientID,
		"MS_CLIENT_SECRET": conf.ClientSecret,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("required environment variable %s is not set", name)
		}
	}

	return nil
}

func Production() bool {
	load()
	return conf.Production
}

func Port() string {
	load()
	return conf.Port
}

func PostgresURL() string {
	load()
	return conf.PostgresUrl
}

func RedisURL() string {
	load()
	return conf.RedisUrl
}

func Secret() string {
	load()
	return conf.Secret
}

func JwtTTL() time.Duration {
	load()
	return conf.JwtTTL
}

func GraphBaseURL() string {
	load()
	return conf.GraphBaseUrl
}

func LoginBaseURL() string {
	load()
	return conf.LoginBaseUrl
}

func TenantID() string {
	load()
	return conf.TenantID
}

func ClientID() string {
	load()
	return conf.ClientID
}

func ClientSecret() string {
	load()
	return conf.ClientSecret
}

// SystemTimezone is the timezone all local event datetimes are stored in.
func SystemTimezone() *time.Location {
	load()
	return systemLocation
}

func SyncTimeout() time.Duration {
	load()
	return conf.SyncTimeout
}
