package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"math/rand/v2"

	"github.com/donamatch/donamatch/internal/adapters/postgres"
	"github.com/donamatch/donamatch/internal/core/domain"
	"github.com/donamatch/donamatch/internal/pkg/config"
	"github.com/donamatch/donamatch/internal/pkg/logging"
	"github.com/donamatch/donamatch/internal/seed"
)

func main() {
	donations := flag.Int("donations", 0, "create N random donations near San Francisco instead of seeding NGOs")
	flag.Parse()

	cfg, err := config.Load("donamatch-seed")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	ngoRepo := postgres.NewNGORepo(db)

	if *donations <= 0 {
		seedNGOs(ctx, logger, ngoRepo)
		return
	}

	ngos, err := ngoRepo.Snapshot(ctx)
	if err != nil {
		log.Fatalf("load ngos: %v", err)
	}
	if len(ngos) == 0 {
		log.Fatal("no NGOs found; run seed without -donations first")
	}

	batch := seed.Donations(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), *donations, ngos)
	if err := postgres.NewDonationRepo(db).CreateBatch(ctx, batch); err != nil {
		log.Fatalf("create donations: %v", err)
	}

	assigned := 0
	for _, d := range batch {
		if d.Status == domain.StatusAssigned {
			assigned++
		}
	}
	logger.Info("donations seeded", "count", len(batch), "assigned", assigned)
}

// seedNGOs creates each demo NGO on its own so existing ones are skipped.
func seedNGOs(ctx context.Context, logger *slog.Logger, repo *postgres.NGORepo) {
	created := 0
	for _, n := range seed.NGOs() {
		err := repo.Create(ctx, &n)
		switch {
		case errors.Is(err, domain.ErrConflict):
			logger.Info("ngo already exists, skipping", "name", n.Name)
		case err != nil:
			log.Fatalf("create ngo %q: %v", n.Name, err)
		default:
			created++
		}
	}
	logger.Info("ngos seeded", "created", created)
}
