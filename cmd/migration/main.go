package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/floorball-league/internal/platform/logging"
	"github.com/spf13/pflag"
)

const applicationName = "floorball-league-migration"

var defaultMigrationDirs = []string{"./db/migrations", "/app/db/migrations"}

type command struct {
	usage string
	run   func(m *migrate.Migrate, logger *logging.Logger, args []string) error
}

var commands = map[string]command{
	"up":      {usage: "up", run: runUp},
	"down":    {usage: "down [steps]", run: runDown},
	"version": {usage: "version", run: runVersion},
	"force":   {usage: "force <version>", run: runForce},
	"goto":    {usage: "goto <version>", run: runGoto},
}

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	logger := logging.NewJSON(logging.LevelInfo).With("service", applicationName)
	defer func() { _ = logger.Sync() }()

	flags := pflag.NewFlagSet("migration", pflag.ContinueOnError)
	dbURL := flags.String("db-url", os.Getenv("DB_URL"), "postgres url (defaults to DB_URL)")
	dir := flags.String("dir", os.Getenv("MIGRATIONS_DIR"), "migrations directory (defaults to MIGRATIONS_DIR, then ./db/migrations)")
	flags.Usage = func() { printUsage(flags) }
	if err := flags.Parse(os.Args[1:]); err != nil {
		return 2
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}
	name := strings.ToLower(strings.TrimSpace(flags.Arg(0)))
	if name == "migrate" {
		name = "goto"
	}
	cmd, ok := commands[name]
	if !ok {
		flags.Usage()
		return 2
	}

	if strings.TrimSpace(*dbURL) == "" {
		logger.Error("DB_URL is required")
		return 1
	}
	migrationsDir, err := resolveMigrationsDir(*dir)
	if err != nil {
		logger.Error("resolve migrations dir", "error", err)
		return 1
	}

	sourceURL := "file://" + filepath.ToSlash(migrationsDir)
	m, err := migrate.New(sourceURL, withApplicationName(strings.TrimSpace(*dbURL)))
	if err != nil {
		logger.Error("create migrator", "source", sourceURL, "error", err)
		return 1
	}
	defer closeMigrator(m, logger)

	if err := cmd.run(m, logger.With("command", name), flags.Args()[1:]); err != nil {
		logger.Error("migration failed", "command", name, "error", err)
		return 1
	}
	return 0
}

func runUp(m *migrate.Migrate, logger *logging.Logger, _ []string) error {
	if err := ignoreNoChange(m.Up(), logger); err != nil {
		return err
	}
	logger.Info("migrations applied")
	return nil
}

func runDown(m *migrate.Migrate, logger *logging.Logger, args []string) error {
	steps, err := parseSteps(args)
	if err != nil {
		return err
	}
	if err := ignoreNoChange(m.Steps(-steps), logger); err != nil {
		return err
	}
	logger.Info("migrations rolled back", "steps", steps)
	return nil
}

func runVersion(m *migrate.Migrate, _ *logging.Logger, _ []string) error {
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		fmt.Println("version: none\ndirty: false")
		return nil
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	}
	fmt.Printf("version: %d\ndirty: %t\n", version, dirty)
	return nil
}

func runForce(m *migrate.Migrate, logger *logging.Logger, args []string) error {
	if len(args) == 0 {
		return errors.New("force requires a version argument")
	}
	version, err := parseVersion(args[0])
	if err != nil {
		return err
	}
	if err := m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	logger.Info("forced version", "version", version)
	return nil
}

func runGoto(m *migrate.Migrate, logger *logging.Logger, args []string) error {
	if len(args) == 0 {
		return errors.New("goto requires a target version argument")
	}
	target, err := parseTarget(args[0])
	if err != nil {
		return err
	}
	if err := ignoreNoChange(m.Migrate(target), logger); err != nil {
		return err
	}
	logger.Info("migrated", "version", target)
	return nil
}

func ignoreNoChange(err error, logger *logging.Logger) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return nil
	}
	return err
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, errors.New("down steps must be > 0")
	}
	return steps, nil
}

// parseVersion accepts any non-negative version that fits in an int, which is
// what migrate.Force takes.
func parseVersion(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, errors.New("version must be >= 0")
	}
	return value, nil
}

func parseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, strconv.IntSize)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}

func closeMigrator(m *migrate.Migrate, logger *logging.Logger) {
	srcErr, dbErr := m.Close()
	if err := errors.Join(srcErr, dbErr); err != nil {
		logger.Warn("close migrator", "error", err)
	}
}

func resolveMigrationsDir(explicit string) (string, error) {
	candidates := defaultMigrationDirs
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		candidates = []string{explicit}
	}
	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}
	return "", fmt.Errorf("no migrations directory among %s", strings.Join(candidates, ", "))
}

// withApplicationName labels migration sessions in pg_stat_activity unless
// the url already names one.
func withApplicationName(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		return raw
	}
	query := parsed.Query()
	if query.Get("application_name") != "" {
		return raw
	}
	query.Set("application_name", applicationName)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func printUsage(flags *pflag.FlagSet) {
	names := []string{"up", "down", "version", "force", "goto"}
	fmt.Fprintf(os.Stderr, "usage: %s [flags] <command>\ncommands:\n", filepath.Base(os.Args[0]))
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
	}
	flags.PrintDefaults()
}
