// seed-admin creates or resets the admin user and the default posting accounts.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... ADMIN_PASSWORD=... go run ./cmd/seed-admin
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/sales_backend/config"
	"bitbucket.org/mmdatafocus/sales_backend/models"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"gorm.io/gorm"
)

const (
	defaultAdminUsername = "salesAdmin"
	adminName            = "Sales Admin"
)

// accounts referenced by the default invoice and voucher postings
var defaultAccounts = []models.NewAccount{
	{Code: "131", Name: "Receivables from customers", Level: 1},
	{Code: "511", Name: "Sales revenue", Level: 1},
	{Code: "521", Name: "Revenue deductions", Level: 1},
	{Code: "3331", Name: "Output VAT payable", Level: 2},
}

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if err := models.MigrateTable(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate: %v\n", err)
		os.Exit(1)
	}

	username := envOr("ADMIN_USERNAME", defaultAdminUsername)
	password := os.Getenv("ADMIN_PASSWORD")
	if len(password) < 6 {
		fmt.Fprintln(os.Stderr, "ADMIN_PASSWORD must be set (at least 6 characters).")
		os.Exit(2)
	}

	ctx = utils.SetUserIdInContext(ctx, 0)
	ctx = utils.SetUsernameInContext(ctx, "seed")
	ctx = utils.SetIsAdminInContext(ctx, true)

	if err := seedAdmin(ctx, db, username, password); err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed admin user: %v\n", err)
		os.Exit(1)
	}
	for _, account := range defaultAccounts {
		existing, err := models.GetAccount(ctx, account.Code)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to lookup account %s: %v\n", account.Code, err)
			os.Exit(1)
		}
		if existing != nil {
			continue
		}
		input := account
		if _, err := models.CreateAccount(ctx, &input); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create account %s: %v\n", account.Code, err)
			os.Exit(1)
		}
		fmt.Printf("Created account %s (%s)\n", account.Code, account.Name)
	}
}

func seedAdmin(ctx context.Context, db *gorm.DB, username string, password string) error {
	var existing models.User
	err := db.WithContext(ctx).Where("username = ?", username).Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if _, err := models.CreateUser(ctx, &models.NewUser{
			Username: username,
			Name:     adminName,
			Password: password,
			Role:     models.UserRoleAdmin,
		}); err != nil {
			return err
		}
		fmt.Printf("Created admin user: username=%q\n", username)
		return nil
	}
	if err != nil {
		return err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Model(&existing).Updates(map[string]any{
		"password":  hashed,
		"is_active": true,
		"role":      models.UserRoleAdmin,
	}).Error; err != nil {
		return err
	}
	fmt.Printf("Updated admin user: username=%q\n", username)
	return nil
}

func envOr(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
