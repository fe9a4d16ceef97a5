package ledger

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// AllowShortPositions lets SELL drive quantity negative. When false
	// (the default) an oversell is rejected before anything is written.
	AllowShortPositions bool `envconfig:"ALLOW_SHORT_POSITIONS" default:"false"`
	// LockTimeout bounds how long an apply waits for a busy position key
	// before failing with a retryable conflict.
	LockTimeout time.Duration `envconfig:"LEDGER_LOCK_TIMEOUT" default:"5s"`
	// RetryAttempts bounds the internal retry loop on storage contention.
	RetryAttempts int `envconfig:"LEDGER_RETRY_ATTEMPTS" default:"3"`
	// RetryBackoff is the pause between contention retries.
	RetryBackoff time.Duration `envconfig:"LEDGER_RETRY_BACKOFF" default:"50ms"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
