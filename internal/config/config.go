package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Providers ProvidersConfig
	Threat    ThreatConfig
}

type AppConfig struct {
	Env  string
	Port int
	Host string
	// RateLimit is requests per minute per client IP on the API surface.
	RateLimit int
}

type ProvidersConfig struct {
	// Timeout bounds every outbound provider call.
	Timeout time.Duration

	// Priorities: edge metadata outranks the commercial service, which
	// outranks the free lookup.
	EdgePriority    int
	MaxMindPriority int
	MMDBPriority    int
	IPInfoPriority  int

	MaxMindAccountID  string
	MaxMindLicenseKey string
	IPInfoToken       string
	// MMDBPath points at a local GeoIP2/GeoLite2 City database; empty
	// disables the local provider.
	MMDBPath string
}

type ThreatConfig struct {
	// Per-signal fusion weights, keyed by collector name. Zero values
	// fall back to the signal's own score.
	VPNWeight       float64
	ProxyWeight     float64
	TorWeight       float64
	BotWeight       float64
	MaliciousWeight float64
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/app")
	viper.AddConfigPath("/etc/ip-api")

	viper.AutomaticEnv()

	bindEnvVars()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("Error reading config file", "error", err)
		}
	}

	config := &Config{
		App: AppConfig{
			Env:       viper.GetString("APP_ENV"),
			Port:      viper.GetInt("APP_PORT"),
			Host:      viper.GetString("APP_HOST"),
			RateLimit: viper.GetInt("APP_RATE_LIMIT"),
		},
		Providers: ProvidersConfig{
			Timeout:           viper.GetDuration("PROVIDER_TIMEOUT"),
			EdgePriority:      viper.GetInt("PROVIDER_EDGE_PRIORITY"),
			MaxMindPriority:   viper.GetInt("PROVIDER_MAXMIND_PRIORITY"),
			MMDBPriority:      viper.GetInt("PROVIDER_MMDB_PRIORITY"),
			IPInfoPriority:    viper.GetInt("PROVIDER_IPINFO_PRIORITY"),
			MaxMindAccountID:  viper.GetString("MAXMIND_ACCOUNT_ID"),
			MaxMindLicenseKey: viper.GetString("MAXMIND_LICENSE_KEY"),
			IPInfoToken:       viper.GetString("IPINFO_TOKEN"),
			MMDBPath:          viper.GetString("MMDB_PATH"),
		},
		Threat: ThreatConfig{
			VPNWeight:       viper.GetFloat64("RISK_WEIGHT_VPN"),
			ProxyWeight:     viper.GetFloat64("RISK_WEIGHT_PROXY"),
			TorWeight:       viper.GetFloat64("RISK_WEIGHT_TOR"),
			BotWeight:       viper.GetFloat64("RISK_WEIGHT_BOT"),
			MaliciousWeight: viper.GetFloat64("RISK_WEIGHT_MALICIOUS"),
		},
	}

	return config, nil
}

// SignalWeights converts the flat config into the fusion weight table.
// Only positive weights are configured; a missing entry makes the
// fusion fall back to the signal's own score.
func (c *Config) SignalWeights() map[string]float64 {
	weights := make(map[string]float64)
	put := func(name string, w float64) {
		if w > 0 {
			weights[name] = w
		}
	}
	put("vpn_check", c.Threat.VPNWeight)
	put("proxy_check", c.Threat.ProxyWeight)
	put("tor_check", c.Threat.TorWeight)
	put("bot_check", c.Threat.BotWeight)
	put("malicious_activity_check", c.Threat.MaliciousWeight)
	return weights
}

func bindEnvVars() {
	viper.BindEnv("APP_ENV")
	viper.BindEnv("APP_PORT")
	viper.BindEnv("APP_HOST")
	viper.BindEnv("APP_RATE_LIMIT")

	viper.BindEnv("PROVIDER_TIMEOUT")
	viper.BindEnv("PROVIDER_EDGE_PRIORITY")
	viper.BindEnv("PROVIDER_MAXMIND_PRIORITY")
	viper.BindEnv("PROVIDER_MMDB_PRIORITY")
	viper.BindEnv("PROVIDER_IPINFO_PRIORITY")
	viper.BindEnv("MAXMIND_ACCOUNT_ID")
	viper.BindEnv("MAXMIND_LICENSE_KEY")
	viper.BindEnv("IPINFO_TOKEN")
	viper.BindEnv("MMDB_PATH")

	viper.BindEnv("RISK_WEIGHT_VPN")
	viper.BindEnv("RISK_WEIGHT_PROXY")
	viper.BindEnv("RISK_WEIGHT_TOR")
	viper.BindEnv("RISK_WEIGHT_BOT")
	viper.BindEnv("RISK_WEIGHT_MALICIOUS")
}

func setDefaults() {
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_HOST", "0.0.0.0")
	viper.SetDefault("APP_RATE_LIMIT", 100)

	viper.SetDefault("PROVIDER_TIMEOUT", 5*time.Second)
	viper.SetDefault("PROVIDER_EDGE_PRIORITY", 3)
	viper.SetDefault("PROVIDER_MAXMIND_PRIORITY", 2)
	viper.SetDefault("PROVIDER_MMDB_PRIORITY", 2)
	viper.SetDefault("PROVIDER_IPINFO_PRIORITY", 1)

	viper.SetDefault("RISK_WEIGHT_VPN", 25)
	viper.SetDefault("RISK_WEIGHT_PROXY", 20)
	viper.SetDefault("RISK_WEIGHT_TOR", 30)
	viper.SetDefault("RISK_WEIGHT_MALICIOUS", 40)
}

// SetupLogger builds the process logger: JSON in production, text
// elsewhere.
func SetupLogger(cfg *Config) *slog.Logger {
	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
