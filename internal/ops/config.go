package ops

import (
	"time"

	"github.com/spf13/viper"
	"github.com/yanun0323/errors"

	"main/internal/bus"
)

// Recognized configuration keys.
const (
	keyWarmupLookBack      = "maximum-warmup-history-days-look-back"
	keyTiingoAuthToken     = "tiingo-auth-token"
	keyExchangeSleep       = "custom-exchange-sleep-interval"
	keyQueueCapacity       = "queue-capacity"
	keyQueueOverflowPolicy = "queue-overflow-policy"
)

const (
	DefaultWarmupLookBackDays = 7
	DefaultQueueCapacity      = 4096
)

// Settings is the resolved feed configuration threaded through
// Feed.Initialize.
type Settings struct {
	MaxWarmupHistoryDaysLookBack int
	TiingoAuthToken              string
	CustomExchangeSleepInterval  time.Duration
	QueueCapacity                int
	QueueOverflowPolicy          bus.OverflowPolicy
}

// Default returns the settings used when no config file is given.
func Default() Settings {
	return Settings{
		MaxWarmupHistoryDaysLookBack: DefaultWarmupLookBackDays,
		CustomExchangeSleepInterval:  100 * time.Millisecond,
		QueueCapacity:                DefaultQueueCapacity,
		QueueOverflowPolicy:          bus.OverflowBlock,
	}
}

// Load reads a yaml/json settings file, applies defaults and validates.
func Load(path string) (Settings, error) {
	v := viper.New()
	v.SetDefault(keyWarmupLookBack, DefaultWarmupLookBackDays)
	v.SetDefault(keyExchangeSleep, "100ms")
	v.SetDefault(keyQueueCapacity, DefaultQueueCapacity)
	v.SetDefault(keyQueueOverflowPolicy, "block")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, errors.Wrapf(err, "read config %q", path)
		}
	}

	policy, err := parseOverflowPolicy(v.GetString(keyQueueOverflowPolicy))
	if err != nil {
		return Settings{}, err
	}
	s := Settings{
		MaxWarmupHistoryDaysLookBack: v.GetInt(keyWarmupLookBack),
		TiingoAuthToken:              v.GetString(keyTiingoAuthToken),
		CustomExchangeSleepInterval:  v.GetDuration(keyExchangeSleep),
		QueueCapacity:                v.GetInt(keyQueueCapacity),
		QueueOverflowPolicy:          policy,
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks if the settings are usable.
func (s Settings) Validate() error {
	if s.MaxWarmupHistoryDaysLookBack <= 0 {
		return errors.Errorf("%s must be > 0", keyWarmupLookBack)
	}
	if s.CustomExchangeSleepInterval <= 0 {
		return errors.Errorf("%s must be > 0", keyExchangeSleep)
	}
	if s.QueueCapacity <= 0 {
		return errors.Errorf("%s must be > 0", keyQueueCapacity)
	}
	return nil
}

func parseOverflowPolicy(name string) (bus.OverflowPolicy, error) {
	switch name {
	case "", "block":
		return bus.OverflowBlock, nil
	case "drop", "drop-newest":
		return bus.OverflowDropNewest, nil
	default:
		return bus.OverflowBlock, errors.Errorf("unknown %s: %q", keyQueueOverflowPolicy, name)
	}
}
