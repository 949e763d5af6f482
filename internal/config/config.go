package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "YURUITO"

type Config struct {
	Bind         string
	Port         int
	GracePeriod  time.Duration
	HandSize     int
	DeckMin      int
	DeckMax      int
	CommandRate  float64
	CommandBurst int
	CORSOrigins  []string
	PublicURL    string
	LogLevel     string
}

// RegisterFlags declares every setting on fs. Each flag can also be set
// through the environment as YURUITO_<FLAG_NAME>.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("bind", "b", "0.0.0.0", "address to bind to (env: YURUITO_BIND)")
	fs.IntP("port", "p", 3001, "port to listen on (env: YURUITO_PORT)")
	fs.Duration("grace-period", 5*time.Minute, "how long a disconnected seat is held for reconnection (env: YURUITO_GRACE_PERIOD)")
	fs.Int("hand-size", 1, "cards dealt to each player (env: YURUITO_HAND_SIZE)")
	fs.Int("deck-min", 1, "lowest card value (env: YURUITO_DECK_MIN)")
	fs.Int("deck-max", 100, "highest card value (env: YURUITO_DECK_MAX)")
	fs.Float64("command-rate", 10, "inbound commands per second allowed per connection (env: YURUITO_COMMAND_RATE)")
	fs.Int("command-burst", 20, "burst of inbound commands allowed per connection (env: YURUITO_COMMAND_BURST)")
	fs.StringSlice("cors-origins", []string{"*"}, "allowed CORS origins (env: YURUITO_CORS_ORIGINS)")
	fs.String("public-url", "", "external base URL used in room share links (env: YURUITO_PUBLIC_URL)")
	fs.String("log-level", "info", "zerolog level: trace, debug, info, warn, error (env: YURUITO_LOG_LEVEL)")
}

// Load merges flags with the environment; explicitly set flags win.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}

	c := Config{
		Bind:         v.GetString("bind"),
		Port:         v.GetInt("port"),
		GracePeriod:  v.GetDuration("grace-period"),
		HandSize:     v.GetInt("hand-size"),
		DeckMin:      v.GetInt("deck-min"),
		DeckMax:      v.GetInt("deck-max"),
		CommandRate:  v.GetFloat64("command-rate"),
		CommandBurst: v.GetInt("command-burst"),
		CORSOrigins:  v.GetStringSlice("cors-origins"),
		PublicURL:    strings.TrimRight(v.GetString("public-url"), "/"),
		LogLevel:     v.GetString("log-level"),
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.GracePeriod <= 0 {
		return errors.New("grace period must be positive")
	}
	if c.HandSize < 1 {
		return fmt.Errorf("hand size must be at least 1: %d", c.HandSize)
	}
	if c.DeckMax < c.DeckMin {
		return fmt.Errorf("empty deck range %d..%d", c.DeckMin, c.DeckMax)
	}
	if c.DeckMax-c.DeckMin+1 < c.HandSize {
		return fmt.Errorf("deck of %d cards cannot fill a hand of %d", c.DeckMax-c.DeckMin+1, c.HandSize)
	}
	if c.CommandRate <= 0 || c.CommandBurst < 1 {
		return errors.New("command rate and burst must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}
