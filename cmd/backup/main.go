package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"familytravel/internal/config"
	"familytravel/internal/database"
	"familytravel/internal/logging"
	"familytravel/internal/repository"
	"familytravel/internal/service"
)

func main() {
	// Define subcommands
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	catalogCmd := flag.NewFlagSet("catalog", flag.ExitOnError)

	// Export flags
	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	// Import flags
	importInput := importCmd.String("input", "", "Input file path (required)")
	importClear := importCmd.Bool("clear", false, "Clear existing families before import (WARNING: destructive)")

	// Catalog flags
	catalogInput := catalogCmd.String("input", "", "Country catalog CSV (default: CATALOG_PATH)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()
	logging.Setup(cfg.LogLevel)
	ctx := context.Background()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		fatal("failed to initialize database", err)
	}
	defer db.Close()

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(ctx, cfg.MigrationsPath); err != nil {
		fatal("failed to run migrations", err)
	}

	userRepo := repository.NewUserRepository(db)
	visitedRepo := repository.NewVisitedRepository(db)
	backupService := service.NewBackupService(userRepo, visitedRepo)

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(ctx, backupService, *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		handleImport(ctx, backupService, db, *importInput, *importClear)

	case "catalog":
		catalogCmd.Parse(os.Args[2:])
		path := *catalogInput
		if path == "" {
			path = cfg.CatalogPath
		}
		handleCatalog(ctx, service.NewCatalogService(repository.NewCountryRepository(db)), path)

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(ctx context.Context, backupService *service.BackupService, outputPath string) {
	if outputPath == "" {
		outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}

	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fatal("failed to create output directory", err)
		}
	}

	slog.Info("exporting database", "output", outputPath)
	if err := backupService.ExportFile(ctx, outputPath); err != nil {
		fatal("export failed", err)
	}

	if info, err := os.Stat(outputPath); err == nil {
		slog.Info("export complete", "bytes", info.Size())
	}
	printSummary(ctx, backupService)
}

func handleImport(ctx context.Context, backupService *service.BackupService, db *database.DB, inputPath string, clearData bool) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		fatal("input file does not exist", err)
	}

	if clearData {
		fmt.Print("WARNING: This will delete all families and their visits. Type 'yes' to confirm: ")
		var confirmation string
		fmt.Scanln(&confirmation)
		if confirmation != "yes" {
			slog.Info("import cancelled")
			return
		}

		if err := clearDatabase(ctx, db); err != nil {
			fatal("failed to clear database", err)
		}
	}

	slog.Info("importing database", "input", inputPath)
	stats, err := backupService.ImportFile(ctx, inputPath)
	if err != nil {
		fatal("import failed", err)
	}
	fmt.Printf("Imported %d families, %d users, %d visits (%d skipped)\n",
		stats.Families, stats.Users, stats.Visits, stats.Skipped)
	printSummary(ctx, backupService)
}

func printSummary(ctx context.Context, backupService *service.BackupService) {
	summary, err := backupService.Summary(ctx)
	if err != nil {
		slog.Warn("failed to summarise database", "error", err)
		return
	}
	fmt.Printf("Database holds %d users; highest family id is %d\n", summary.Users, summary.MaxFamilyID)
}

func handleCatalog(ctx context.Context, catalogService *service.CatalogService, path string) {
	slog.Info("loading country catalog", "input", path)
	added, err := catalogService.LoadFile(ctx, path)
	if err != nil {
		fatal("catalog load failed", err)
	}
	fmt.Printf("Catalog loaded: %d new countries\n", added)
}

func clearDatabase(ctx context.Context, db *database.DB) error {
	// Delete in reverse order of dependencies; the catalog is kept
	tables := []string{
		"visited_countries",
		"sessions",
		"users",
	}

	for _, table := range tables {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
		slog.Info("cleared table", "table", table)
	}
	return nil
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Println("Family Travel Tracker Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [options]     Export families and visits to a JSON file")
	fmt.Println("  backup import [options]     Import families and visits from a JSON file")
	fmt.Println("  backup catalog [options]    Load the country catalog from a CSV file")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println("  -clear            Clear existing families before import (WARNING: destructive)")
	fmt.Println()
	fmt.Println("Catalog Options:")
	fmt.Println("  -input <file>     CSV with country_code,country_name rows (default: CATALOG_PATH)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DATABASE_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./familytravel.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
}
