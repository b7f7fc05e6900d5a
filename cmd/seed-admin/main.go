// seed-admin creates the admin user if it does not exist yet.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... SEED_ADMIN_PIN=... go run ./cmd/seed-admin
//
// The pin is stored in plain text, like every other user pin.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jadygoy/cafe_backend/config"
	"github.com/jadygoy/cafe_backend/models"
	"github.com/jadygoy/cafe_backend/utils"
)

const defaultAdminUsername = "admin"

func main() {
	username := flag.String("username", defaultAdminUsername, "admin username")
	pin := flag.String("pin", "", "admin pin (defaults to $SEED_ADMIN_PIN)")
	flag.Parse()

	if strings.TrimSpace(*pin) == "" {
		*pin = strings.TrimSpace(os.Getenv("SEED_ADMIN_PIN"))
	}
	if *pin == "" {
		fmt.Fprintln(os.Stderr, "pin is required: pass -pin or set SEED_ADMIN_PIN")
		os.Exit(2)
	}

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	defer config.CloseDatabase()

	if err := models.MigrateTable(db); err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate: %v\n", err)
		os.Exit(1)
	}

	directory := models.NewUserDirectory(models.NewGormStore(db), config.GetLogger())
	user, err := directory.CreateUser(ctx, &models.NewUser{
		Username: *username,
		Pin:      *pin,
		IsAdmin:  true,
	})
	if errors.Is(err, utils.ErrorDuplicateUsername) {
		fmt.Printf("user %q already exists; nothing to do\n", *username)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create admin: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("created admin user %q (id=%s)\n", user.Username, user.ID)
}
