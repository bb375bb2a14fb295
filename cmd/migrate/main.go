// Command migrate applies database migrations via goose.
//
// Usage:
//
//	migrate up      Apply all pending migrations
//	migrate down    Roll back the most recent migration
//	migrate status  Print migration status
//
// DATABASE_URL must be set. Requires the goose binary on PATH
// (go install github.com/pressly/goose/v3/cmd/goose@latest).
package main

import (
	"fmt"
	"os"
	"os/exec"
)

const migrationsDir = "db/migrations"

func main() {
	action := "up"
	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	switch action {
	case "up", "down", "status":
	default:
		fmt.Printf("Unknown action: %s\n", action)
		fmt.Println("Usage: migrate [up|down|status]")
		os.Exit(1)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Println("DATABASE_URL is required")
		os.Exit(1)
	}

	cmd := exec.Command("goose", "-dir", migrationsDir, "postgres", dsn, action)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Printf("Migration %s failed: %v\n", action, err)
		os.Exit(1)
	}
}
