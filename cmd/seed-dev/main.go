// seed-dev creates the demo chitty ("5 Lakh Chitty", 20 members over 20
// months) with a full member roster. It is a no-op when any chitty already
// exists, so it is safe to run on every deploy.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-dev
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mmdatafocus/chitty_backend/config"
	"github.com/mmdatafocus/chitty_backend/models"
	"github.com/mmdatafocus/chitty_backend/utils"
	"github.com/shopspring/decimal"
)

var seedMemberNames = []string{
	"Rajesh Kumar", "Priya Sharma", "Amit Singh", "Sunita Devi",
	"Vikash Gupta", "Meera Joshi", "Suresh Reddy", "Kavita Patel",
	"Ravi Kumar", "Anjali Singh", "Manoj Yadav", "Sita Ram",
	"Deepak Verma", "Radha Krishna", "Santosh Kumar", "Gita Devi",
	"Rakesh Jain", "Shanti Bai", "Mukesh Agarwal", "Kamala Devi",
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
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	count, err := utils.ResourceCountWhere[models.Chitty](ctx, "1 = 1")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to count chitties: %v\n", err)
		os.Exit(1)
	}
	if count > 0 {
		fmt.Println("chitties already exist; nothing to seed")
		return
	}

	input := models.NewChitty{
		Name:         "5 Lakh Chitty",
		Amount:       decimal.NewFromInt(500000),
		TotalMembers: 20,
		TotalMonths:  20,
		MemberNames:  seedMemberNames,
	}
	chitty, err := models.CreateChitty(ctx, &input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed chitty: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("seeded chitty %s (%s) with %d members\n", chitty.Name, chitty.ID, len(chitty.MemberIds))
}
