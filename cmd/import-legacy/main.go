package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/usf-territorio/territorio-backend/internal/legacy"
	"github.com/usf-territorio/territorio-backend/internal/teams"
	"github.com/usf-territorio/territorio-backend/internal/territory"
	"github.com/usf-territorio/territorio-backend/pkg/config"
	"github.com/usf-territorio/territorio-backend/pkg/db"
	"github.com/usf-territorio/territorio-backend/pkg/logger"
	"github.com/usf-territorio/territorio-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "import-legacy"})

	_ = godotenv.Load()

	path := flag.String("file", "", "legacy dados.json to import (default: TERRITORIO_LEGACY_DATA_PATH)")
	seed := flag.Bool("seed", false, "import the built-in starter data set instead of a file")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)
	cfg.Service.Kind = "import-legacy"

	logg = logger.New(logger.Options{
		ServiceName: "import-legacy",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	source := *path
	if source == "" {
		source = cfg.Legacy.DataPath
	}
	if *seed {
		source = "seed"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"source": source,
	})

	teamRegistry, err := teams.NewRegistry(cfg.Teams)
	requireResource(ctx, logg, "team table", err)

	doc, err := loadDocument(source, *seed)
	requireResource(ctx, logg, "legacy document", err)

	conds, agents, err := legacy.ToModels(doc)
	if err != nil {
		for _, skipped := range multierr.Errors(err) {
			logg.Warn(ctx, "skipped legacy record: "+skipped.Error())
		}
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)
	err = migrate.Run(ctx, sqlDB, dbClient.Driver(), "", "up")
	requireResource(ctx, logg, "migrations", err)

	repo := territory.NewRepository(dbClient)
	report, err := territory.ImportRecords(ctx, repo, conds, agents)
	requireResource(ctx, logg, "import", err)

	svc, err := territory.NewService(repo, logg, nil)
	requireResource(ctx, logg, "territory service", err)

	var reconcileErrs error
	for _, teamID := range report.Teams {
		if _, ok := teamRegistry.Lookup(teamID); !ok {
			logg.Warn(logg.WithTeamID(ctx, teamID), "imported team is not in the configured team table")
		}
		if _, err := svc.Reconcile(ctx, teamID); err != nil {
			reconcileErrs = multierr.Append(reconcileErrs, fmt.Errorf("team %s: %w", teamID, err))
		}
	}
	requireResource(ctx, logg, "reconcile", reconcileErrs)

	ctx = logg.WithFields(ctx, map[string]any{
		"condominiums":   report.Condominiums,
		"agents_created": report.AgentsCreated,
		"agents_merged":  report.AgentsMerged,
		"teams":          report.Teams,
	})
	logg.Info(ctx, "legacy import complete")
}

func loadDocument(path string, seed bool) (*legacy.Document, error) {
	if seed {
		return legacy.SeedDocument(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return legacy.Decode(f)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
