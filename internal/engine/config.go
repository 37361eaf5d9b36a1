package engine

import (
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/billroom/internal/config"
	"github.com/MrJamesThe3rd/billroom/internal/generator"
	"github.com/MrJamesThe3rd/billroom/internal/playback"
	"github.com/MrJamesThe3rd/billroom/internal/script"
	"github.com/MrJamesThe3rd/billroom/internal/transaction"
)

// DefaultFinanceName is used when nobody owns the finance room.
const DefaultFinanceName = "Head Finance"

type Config struct {
	PollInterval   time.Duration
	SweepInterval  time.Duration
	ArchiveAfter   time.Duration
	RequeueOnStart bool
	Seed           uint64

	Playback playback.Config
	Pacing   script.Pacing
	Routing  generator.Routing
	Tiers    []generator.Tier
}

func DefaultConfig() Config {
	return Config{
		PollInterval:   time.Second,
		SweepInterval:  30 * time.Second,
		ArchiveAfter:   40 * time.Minute,
		RequeueOnStart: true,
		Playback:       playback.DefaultConfig(),
		Pacing:         script.DefaultPacing(),
		Routing: generator.Routing{
			CashRoom:     "340",
			FinanceRoom:  "210",
			VIPRoom:      "450",
			FallbackRoom: "101",
			VIPThreshold: transaction.Rupees(10_000_000),
		},
		Tiers: generator.DefaultTiers(),
	}
}

// FromConfig builds the engine configuration from the environment config,
// reading the tiers file when one is set.
func FromConfig(c *config.Config) (Config, error) {
	cfg := DefaultConfig()

	e := c.Engine
	cfg.PollInterval = e.PollInterval
	cfg.SweepInterval = e.SweepInterval
	cfg.ArchiveAfter = e.ArchiveAfter
	cfg.RequeueOnStart = e.RequeueOnStart
	cfg.Seed = e.Seed
	cfg.Playback = playback.Config{
		TypingLead:       e.TypingLead,
		SettleDelay:      e.SettleDelay,
		PlaceholderDelay: e.PlaceholderDelay,
	}
	cfg.Routing = generator.Routing{
		CashRoom:     e.CashRoom,
		FinanceRoom:  e.FinanceRoom,
		VIPRoom:      e.VIPRoom,
		FallbackRoom: e.FallbackRoom,
		VIPThreshold: transaction.Rupees(e.VIPThreshold),
	}

	if e.TiersFile != "" {
		tiers, err := generator.LoadTiers(e.TiersFile)
		if err != nil {
			return Config{}, fmt.Errorf("loading tiers: %w", err)
		}

		cfg.Tiers = tiers
	}

	return cfg, nil
}
