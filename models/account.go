package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/sales_backend/config"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"gorm.io/gorm"
)

// Account is a chart-of-accounts entry referenced by invoice and voucher postings.
type Account struct {
	Code      string    `gorm:"primaryKey;size:10" json:"code"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Level     int       `gorm:"not null" json:"level"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAccount struct {
	Code  string `json:"code" binding:"required,max=10"`
	Name  string `json:"name" binding:"required,max=100"`
	Level int    `json:"level" binding:"required,gte=1,lte=5"`
}

type AccountPatch struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=100"`
	Level *int    `json:"level" binding:"omitempty,gte=1,lte=5"`
}

// account columns of invoices and vouchers, checked before an account is deleted
var accountUsages = []struct {
	model  interface{}
	column string
}{
	{&Invoice{}, "debit_account"},
	{&Invoice{}, "revenue_account"},
	{&Invoice{}, "tax_account"},
	{&Invoice{}, "discount_account"},
	{&Voucher{}, "debit_reduction_account"},
	{&Voucher{}, "credit_payment_account"},
	{&Voucher{}, "tax_debit_account"},
}

func CreateAccount(ctx context.Context, input *NewAccount) (*Account, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	account := Account{
		Code:  input.Code,
		Name:  input.Name,
		Level: input.Level,
	}
	err := runInTx(ctx, "Account", "CreateAccount", input, func(tx *gorm.DB) error {
		if err := utils.ValidateUnique[Account](ctx, tx, "code", account.Code, "", nil); err != nil {
			return err
		}
		return tx.Create(&account).Error
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func UpdateAccount(ctx context.Context, code string, input *AccountPatch) (*Account, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	changes := patch{}
	setIfPresent(changes, "name", input.Name)
	setIfPresent(changes, "level", input.Level)

	var account *Account
	err := runInTx(ctx, "Account", "UpdateAccount", input, func(tx *gorm.DB) error {
		var err error
		account, err = utils.FetchModelOrNotFound[Account](ctx, tx, map[string]interface{}{"code": code})
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(account).Updates(map[string]interface{}(changes)).Error; err != nil {
			return err
		}
		account, err = utils.FetchModelOrNotFound[Account](ctx, tx, map[string]interface{}{"code": code})
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func DeleteAccount(ctx context.Context, code string) (*Account, error) {
	var account *Account
	err := runInTx(ctx, "Account", "DeleteAccount", code, func(tx *gorm.DB) error {
		var err error
		account, err = utils.FetchModelOrNotFound[Account](ctx, tx, map[string]interface{}{"code": code})
		if err != nil {
			return err
		}
		for _, usage := range accountUsages {
			var count int64
			if err := tx.Model(usage.model).Where(usage.column+" = ?", code).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return utils.NewValidationError("code", "account is used by "+usage.column)
			}
		}
		return tx.Delete(account).Error
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func GetAccount(ctx context.Context, code string) (*Account, error) {
	return utils.FetchModel[Account](ctx, nil, map[string]interface{}{"code": code})
}

func GetAccounts(ctx context.Context, page *Page) ([]*Account, error) {
	skip, limit := page.window()
	return utils.FetchModels[Account](ctx, nil, "code", skip, limit)
}

func AccountExists(ctx context.Context, code string) (bool, error) {
	return recordExists[Account](ctx, "code", code)
}

// SearchAccounts matches code or name case-insensitively.
func SearchAccounts(ctx context.Context, keyword string, page *Page) ([]*Account, error) {
	db := config.GetDB()
	skip, limit := page.window()
	pattern := utils.LikePattern(keyword)
	results := []*Account{}
	err := db.WithContext(ctx).
		Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern).
		Order("code").
		Offset(skip).Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func GetAccountsByLevel(ctx context.Context, level int) ([]*Account, error) {
	db := config.GetDB()
	results := []*Account{}
	if err := db.WithContext(ctx).Where("level = ?", level).Order("code").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// validateAccountCodes checks every non-empty code exists.
func validateAccountCodes(ctx context.Context, tx *gorm.DB, fields map[string]string) error {
	for field, code := range fields {
		if code == "" {
			continue
		}
		if err := utils.ValidateResourceId[Account](ctx, tx, "code", code); err != nil {
			return referenceError(err, field, "account "+code+" not found")
		}
	}
	return nil
}
