package models

import (
	"github.com/mmdatafocus/chitty_backend/config"
)

func MigrateTable() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&Chitty{},
		&Member{},
		&MonthlySlip{},
		&SlipPaymentRecord{},
	)
}
