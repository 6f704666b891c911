// Package seed implements the seed command: it opens the local
// database, resolves the acting identities from minted session tokens,
// and loads the demo fixtures through the guarded services.
package seed

import (
	"context"
	"flag"
	"fmt"

	"go.uber.org/zap"

	"github.com/Youssef-Elmorali/studio/internal/audit"
	"github.com/Youssef-Elmorali/studio/internal/auth/token"
	"github.com/Youssef-Elmorali/studio/internal/authz"
	"github.com/Youssef-Elmorali/studio/internal/bank"
	"github.com/Youssef-Elmorali/studio/internal/campaign"
	"github.com/Youssef-Elmorali/studio/internal/donation"
	"github.com/Youssef-Elmorali/studio/internal/notification"
	"github.com/Youssef-Elmorali/studio/internal/platform/config"
	"github.com/Youssef-Elmorali/studio/internal/platform/logging"
	"github.com/Youssef-Elmorali/studio/internal/profile"
	"github.com/Youssef-Elmorali/studio/internal/request"
	"github.com/Youssef-Elmorali/studio/internal/seed"
	"github.com/Youssef-Elmorali/studio/internal/storage/sqlite"
)

// envConfig holds the environment-sourced part of the configuration.
type envConfig struct {
	DBPath    string `env:"STUDIO_DB_PATH" envDefault:"studio.db"`
	LogLevel  string `env:"STUDIO_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"STUDIO_LOG_FORMAT" envDefault:"console"`
}

// Config holds seed command configuration.
type Config struct {
	DBPath     string
	LogLevel   string
	LogFormat  string
	StaffUID   string
	DonorUID   string
	PatientUID string
}

// ParseConfig parses environment variables and flags into a Config.
// Flags win over the environment.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var fromEnv envConfig
	if err := config.ParseEnv(&fromEnv); err != nil {
		return Config{}, err
	}

	cfg := Config{
		LogLevel:  fromEnv.LogLevel,
		LogFormat: fromEnv.LogFormat,
	}
	fs.StringVar(&cfg.DBPath, "db", fromEnv.DBPath, "path to the SQLite database file")
	fs.StringVar(&cfg.StaffUID, "staff", "staff-1", "uid for the seeded staff account")
	fs.StringVar(&cfg.DonorUID, "donor", "donor-1", "uid for the seeded donor account")
	fs.StringVar(&cfg.PatientUID, "recipient", "recipient-1", "uid for the seeded recipient account")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the seed command.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "seed")
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	}()

	ids, err := resolveIdentities(cfg)
	if err != nil {
		return err
	}

	auditor := audit.NewEmitter(store)
	svcs := seed.Services{
		Profiles:      profile.NewService(store, auditor, nil),
		Banks:         bank.NewService(store, auditor, nil, nil),
		Campaigns:     campaign.NewService(store, auditor, nil, nil),
		Requests:      request.NewService(store, auditor, nil, nil),
		Donations:     donation.NewService(store, auditor, nil, nil),
		Notifications: notification.NewService(store, auditor, nil, nil),
	}

	logger.Info("seeding database", zap.String("db", cfg.DBPath))
	return seed.Run(ctx, logger, svcs, ids)
}

// resolveIdentities round-trips every acting principal through a signed
// session token, the same path a real caller's identity takes.
func resolveIdentities(cfg Config) (seed.Identities, error) {
	tokenCfg, err := token.LoadConfigFromEnv(nil)
	if err != nil {
		return seed.Identities{}, err
	}

	roundTrip := func(identity authz.Identity) (authz.Identity, error) {
		signed, err := token.Mint(identity, tokenCfg)
		if err != nil {
			return authz.Identity{}, fmt.Errorf("mint token for %s: %w", identity.Subject, err)
		}
		resolved, err := token.Resolve(signed, tokenCfg)
		if err != nil {
			return authz.Identity{}, fmt.Errorf("resolve token for %s: %w", identity.Subject, err)
		}
		return resolved, nil
	}

	var ids seed.Identities
	if ids.Staff, err = roundTrip(authz.Identity{Subject: cfg.StaffUID, Role: authz.RoleAdmin}); err != nil {
		return seed.Identities{}, err
	}
	if ids.Donor, err = roundTrip(authz.Identity{Subject: cfg.DonorUID, Role: authz.RoleDonor}); err != nil {
		return seed.Identities{}, err
	}
	if ids.Recipient, err = roundTrip(authz.Identity{Subject: cfg.PatientUID, Role: authz.RoleRecipient}); err != nil {
		return seed.Identities{}, err
	}
	return ids, nil
}
