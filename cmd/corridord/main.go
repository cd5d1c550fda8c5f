package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"corridord/config"
	"corridord/core/state"
	"corridord/native/corridor"
	"corridord/observability/logging"
	"corridord/services/corridord/server"
	"corridord/storage"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "path to corridord configuration file")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("corridord: load config: %v", err)
	}
	env := strings.TrimSpace(cfg.Environment)
	if env == "" {
		env = strings.TrimSpace(os.Getenv("CORRIDORD_ENV"))
	}
	logger := logging.Setup("corridord", env)

	if !ethcommon.IsHexAddress(cfg.Admin.Address) {
		log.Fatalf("corridord: invalid admin address %q", cfg.Admin.Address)
	}
	admin := ethcommon.HexToAddress(cfg.Admin.Address)

	db, err := storage.NewLevelDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("corridord: open storage: %v", err)
	}
	defer db.Close()

	engine := corridor.NewEngine()
	engine.SetState(state.NewManager(db))
	engine.SetAdmin(admin)
	engine.SetEmitter(server.NewEventLogger(logger))

	if err := seedCorridors(engine, admin, cfg.Corridors); err != nil {
		log.Fatalf("corridord: seed corridors: %v", err)
	}

	srv, err := server.New(server.Config{
		ListenAddress: cfg.ListenAddress,
		AdminAddress:  admin,
		ShutdownGrace: cfg.ShutdownGrace.Duration,
		Auth: server.AuthConfig{
			HMACSecret: cfg.Admin.JWTSecret,
			Issuer:     cfg.Admin.Issuer,
			Audience:   cfg.Admin.Audience,
			ClockSkew:  cfg.Admin.ClockSkew.Duration,
		},
		RateLimit: server.RateLimit{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			Burst:             cfg.RateLimit.Burst,
		},
	}, engine, logger)
	if err != nil {
		log.Fatalf("corridord: configure server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("corridord: server: %v", err)
	}
	logger.Info("corridord stopped")
}

// seedCorridors registers configured corridors and their fee curves,
// tolerating records that already exist from a previous run.
func seedCorridors(engine *corridor.Engine, admin [20]byte, seeds []config.CorridorConfig) error {
	for _, seed := range seeds {
		id, err := engine.RegisterCorridor(admin, seed.Token0, seed.Token1, seed.Nettable)
		switch {
		case err == nil:
		case errors.Is(err, corridor.ErrCorridorExists):
			id = corridor.DeriveCorridorID(seed.Token0, seed.Token1)
			if err := engine.SetNettable(admin, id, seed.Nettable); err != nil {
				return err
			}
		default:
			return err
		}
		if seed.Fees == nil {
			continue
		}
		threshold, err := parseThreshold(seed.Fees.NetFlowThreshold)
		if err != nil {
			return err
		}
		params := corridor.FeeParams{
			BaseFeeBps:       seed.Fees.BaseFeeBps,
			MaxExtraFeeBps:   seed.Fees.MaxExtraFeeBps,
			NetFlowThreshold: threshold,
		}
		if err := engine.SetFeeParams(admin, id, params); err != nil {
			return err
		}
	}
	return nil
}

func parseThreshold(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	threshold, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid net flow threshold %q", raw)
	}
	return threshold, nil
}
