package models

import (
	"bitbucket.org/mmdatafocus/sales_backend/config"
)

func MigrateTable() error {
	db := config.GetDB()

	return db.AutoMigrate(
		&CodeSequence{},
		&Account{}, &Customer{}, &Product{},
		&PriceListEntry{}, &DiscountTier{},
		&Invoice{}, &InvoiceDetail{},
		&Voucher{}, &VoucherDetail{},
		&User{},
	)
}
