// Command load-fixtures migrates the schema and loads the demo fixtures.
//
//	go run ./tools/load-fixtures -dir fixtures/data
//	go run ./tools/load-fixtures -superuser admin -password admin123
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"catalog-service/config"
	"catalog-service/database"
	"catalog-service/fixtures"
	"catalog-service/logger"
	aws_pkg "catalog-service/pkg/aws"
	"catalog-service/repository"
	"catalog-service/services"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	dir := flag.String("dir", cfg.FixturesDir, "directory holding the fixture files")
	files := flag.String("files", strings.Join(fixtures.DefaultFiles, ","), "comma separated fixture files, loaded in order")
	skipMigrate := flag.Bool("skip-migrate", false, "do not migrate the schema first")
	superuser := flag.String("superuser", "", "also create a superuser with this username")
	email := flag.String("email", "", "superuser email")
	password := flag.String("password", "", "superuser password")
	flag.Parse()

	log, err := logger.Initialize(cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(context.Background(), cfg, log, *dir, splitFiles(*files), *skipMigrate, *superuser, *email, *password); err != nil {
		log.Fatal("Fixture load failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, dir string, files []string, skipMigrate bool, superuser, email, password string) error {
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if !skipMigrate {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("Schema migrated")
	}

	var metrics aws_pkg.Recorder
	if mc, err := aws_pkg.NewMetricsClient(ctx); err == nil {
		metrics = mc
	}

	categories := services.NewCategoryService(repository.NewGormCategoryRepository(db), nil, nil, log)
	loader := fixtures.NewLoader(db, categories, metrics, log)

	res, err := loader.LoadAll(ctx, os.DirFS(dir), files)
	if err != nil {
		return err
	}
	log.Info("Fixtures loaded",
		zap.Int("files", res.Files),
		zap.Int("records", res.Records),
		zap.Strings("skipped", res.Skipped),
	)

	if superuser != "" {
		tokens := services.NewTokenService(cfg.JWTSecret, cfg.SessionTTL)
		auth := services.NewAuthService(repository.NewGormAdminRepository(db), tokens, metrics, log)
		if _, err := auth.CreateSuperuser(ctx, superuser, email, password); err != nil {
			return fmt.Errorf("create superuser: %w", err)
		}
	}
	return nil
}

func splitFiles(raw string) []string {
	var out []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
