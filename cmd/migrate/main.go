package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"tg_scanner/migrations"
)

func main() {
	dbPath := flag.String("db", envOrDefault("DATABASE_PATH", "./data/scanner.db"), "path to sqlite database")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: migrate [-db path] <command>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  up          Migrate to the latest version")
		fmt.Fprintln(os.Stderr, "  up-one      Migrate one version up")
		fmt.Fprintln(os.Stderr, "  down        Roll back one version")
		fmt.Fprintln(os.Stderr, "  status      Show migration status")
		fmt.Fprintln(os.Stderr, "  version     Show current version")
		fmt.Fprintln(os.Stderr, "  reset       Roll back all migrations")
		os.Exit(1)
	}

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	p, err := migrations.NewProvider(db)
	if err != nil {
		log.Fatal(err)
	}

	if err := run(context.Background(), p, args[0]); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, p *goose.Provider, cmd string) error {
	var err error
	switch cmd {
	case "up":
		var res []*goose.MigrationResult
		res, err = p.Up(ctx)
		printResults(res...)
	case "up-one":
		var res *goose.MigrationResult
		res, err = p.UpByOne(ctx)
		printResults(res)
	case "down":
		var res *goose.MigrationResult
		res, err = p.Down(ctx)
		printResults(res)
	case "reset":
		var res []*goose.MigrationResult
		res, err = p.DownTo(ctx, 0)
		printResults(res...)
	case "status":
		err = printStatus(ctx, p)
	case "version":
		var v int64
		if v, err = p.GetDBVersion(ctx); err == nil {
			fmt.Printf("version %d\n", v)
		}
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return nil
}

func printStatus(ctx context.Context, p *goose.Provider) error {
	statuses, err := p.Status(ctx)
	if err != nil {
		return err
	}
	for _, s := range statuses {
		applied := "Pending"
		if s.State == goose.StateApplied {
			applied = s.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("%-24s %s\n", applied, s.Source.Path)
	}
	return nil
}

func printResults(results ...*goose.MigrationResult) {
	for _, r := range results {
		if r != nil {
			fmt.Println(r)
		}
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
