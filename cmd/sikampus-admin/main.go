package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sikampus-api/internal/models"
	"github.com/noah-isme/sikampus-api/internal/repository"
	"github.com/noah-isme/sikampus-api/internal/service"
	"github.com/noah-isme/sikampus-api/pkg/config"
	"github.com/noah-isme/sikampus-api/pkg/database"
	"github.com/noah-isme/sikampus-api/pkg/logger"
)

const usage = `usage: sikampus-admin <command> [flags]

commands:
  migrate          apply pending schema migrations
  seed             insert the default module catalogue when it is empty
  modules          show every module with occupancy and fee
  registrations    list registrations (-module, -status, -page, -size)
  summary          show staff metrics (-since YYYY-MM-DD)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		color.Red("failed to load config: %v", err)
		os.Exit(1)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		color.Red("failed to init logger: %v", err)
		os.Exit(1)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		color.Red("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer db.Close() //nolint:errcheck

	if err := run(context.Background(), cfg, db, logr, os.Args[1], os.Args[2:]); err != nil {
		color.Red("%s: %v", os.Args[1], err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, db *sqlx.DB, logr *zap.Logger, command string, args []string) error {
	fees := service.NewFeeCalculator(cfg.Registration.FeePerCredit)

	switch command {
	case "migrate":
		if err := database.RunMigrations(db.DB, logr); err != nil {
			return err
		}
		color.Green("migrations applied")
	case "seed":
		seeded, err := database.SeedModules(ctx, db)
		if err != nil {
			return err
		}
		if seeded == 0 {
			color.Yellow("catalogue already populated, nothing seeded")
			return nil
		}
		color.Green("seeded %d modules", seeded)
	case "modules":
		rows, err := repository.NewModuleRepository(db).ListWithOccupancy(ctx, models.ModuleFilter{})
		if err != nil {
			return err
		}
		modules := make([]models.ModuleAvailability, 0, len(rows))
		for _, row := range rows {
			av := service.EvaluateCapacity(row.Module, row.Occupied)
			av.Fee = fees.Fee(row.Module.Credits)
			modules = append(modules, av)
		}
		renderModules(os.Stdout, modules)
	case "registrations":
		fs := flag.NewFlagSet("registrations", flag.ContinueOnError)
		moduleID := fs.String("module", "", "filter by module id")
		status := fs.String("status", "", "filter by status")
		page := fs.Int("page", 1, "page number")
		size := fs.Int("size", 20, "page size")
		if err := fs.Parse(args); err != nil {
			return err
		}
		svc := service.NewRegistrationService(repository.NewRegistrationRepository(db), nil, fees, nil, nil, logr)
		items, pagination, err := svc.List(ctx, models.RegistrationFilter{
			ModuleID: *moduleID,
			Status:   models.RegistrationStatus(*status),
			Page:     *page,
			PageSize: *size,
		})
		if err != nil {
			return err
		}
		renderRegistrations(os.Stdout, items, pagination)
	case "summary":
		fs := flag.NewFlagSet("summary", flag.ContinueOnError)
		since := fs.String("since", "", "period start (YYYY-MM-DD)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		periodStart, err := parsePeriod(*since)
		if err != nil {
			return err
		}
		summary, err := service.NewSummaryService(repository.NewSummaryRepository(db), nil, logr).Summary(ctx, periodStart)
		if err != nil {
			return err
		}
		renderSummary(os.Stdout, summary)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}
