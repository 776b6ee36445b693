package models

import (
	"context"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/sales_backend/config"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"gorm.io/gorm"
)

type Customer struct {
	Code           string    `gorm:"primaryKey;size:10" json:"code"`
	Name           string    `gorm:"size:100;not null;index" json:"name"`
	Address        string    `gorm:"size:150;not null" json:"address"`
	Phone          *string   `gorm:"size:15" json:"phone"`
	Email          *string   `gorm:"size:100" json:"email"`
	TaxCode        *string   `gorm:"size:15;uniqueIndex" json:"tax_code"`
	Classification *string   `gorm:"size:50" json:"classification"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name           string  `json:"name" binding:"required,max=100"`
	Address        string  `json:"address" binding:"required,max=150"`
	Phone          *string `json:"phone" binding:"omitempty,numeric,max=15"`
	Email          *string `json:"email" binding:"omitempty,max=100"`
	TaxCode        *string `json:"tax_code" binding:"omitempty,max=15"`
	Classification *string `json:"classification" binding:"omitempty,max=50"`
}

type CustomerPatch struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=100"`
	Address        *string `json:"address" binding:"omitempty,min=1,max=150"`
	Phone          *string `json:"phone" binding:"omitempty,numeric,max=15"`
	Email          *string `json:"email" binding:"omitempty,max=100"`
	TaxCode        *string `json:"tax_code" binding:"omitempty,max=15"`
	Classification *string `json:"classification" binding:"omitempty,max=50"`
}

func validateCustomerContact(phone *string, email *string) error {
	if email := utils.TrimToNil(email); email != nil && !utils.IsValidEmail(*email) {
		return utils.NewValidationError("email", "must be a valid email")
	}
	if phone == nil || strings.TrimSpace(*phone) == "" {
		return nil
	}
	if err := utils.ValidatePhoneNumber(strings.TrimSpace(*phone), ""); err != nil {
		return utils.NewValidationError("phone", err.Error())
	}
	return nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := validateCustomerContact(input.Phone, input.Email); err != nil {
		return nil, err
	}
	taxCode := utils.TrimToNil(input.TaxCode)

	var customer Customer
	err := mintAndCreate(ctx, CustomerCodeSeries, config.CodeMintAttempts(), "Customer", func() error {
		return runInTx(ctx, "Customer", "CreateCustomer", input, func(tx *gorm.DB) error {
			if taxCode != nil {
				if err := utils.ValidateUnique[Customer](ctx, tx, "tax_code", *taxCode, "", nil); err != nil {
					return err
				}
			}
			code, err := NextCode(ctx, tx, CustomerCodeSeries)
			if err != nil {
				return err
			}
			customer = Customer{
				Code:           code,
				Name:           input.Name,
				Address:        input.Address,
				Phone:          utils.TrimToNil(input.Phone),
				Email:          utils.TrimToNil(input.Email),
				TaxCode:        taxCode,
				Classification: utils.TrimToNil(input.Classification),
			}
			return createHeader(tx, &customer)
		})
	})
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func UpdateCustomer(ctx context.Context, code string, input *CustomerPatch) (*Customer, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := validateCustomerContact(input.Phone, input.Email); err != nil {
		return nil, err
	}

	changes := patch{}
	setIfPresent(changes, "name", input.Name)
	setIfPresent(changes, "address", input.Address)
	// optional columns: an empty string clears the value
	for column, value := range map[string]*string{
		"phone":          input.Phone,
		"email":          input.Email,
		"tax_code":       input.TaxCode,
		"classification": input.Classification,
	} {
		if value != nil {
			changes[column] = utils.TrimToNil(value)
		}
	}

	var customer *Customer
	err := runInTx(ctx, "Customer", "UpdateCustomer", input, func(tx *gorm.DB) error {
		var err error
		customer, err = utils.FetchModelOrNotFound[Customer](ctx, tx, map[string]interface{}{"code": code})
		if err != nil {
			return err
		}
		if taxCode := utils.TrimToNil(input.TaxCode); taxCode != nil {
			if err := utils.ValidateUnique[Customer](ctx, tx, "tax_code", *taxCode, "code", code); err != nil {
				return err
			}
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(customer).Updates(map[string]interface{}(changes)).Error; err != nil {
			return err
		}
		customer, err = utils.FetchModelOrNotFound[Customer](ctx, tx, map[string]interface{}{"code": code})
		return err
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

// DeleteCustomer refuses while invoices or vouchers reference the customer.
func DeleteCustomer(ctx context.Context, code string) (*Customer, error) {
	var customer *Customer
	err := runInTx(ctx, "Customer", "DeleteCustomer", code, func(tx *gorm.DB) error {
		var err error
		customer, err = utils.FetchModelOrNotFound[Customer](ctx, tx, map[string]interface{}{"code": code})
		if err != nil {
			return err
		}
		count, err := utils.ResourceCountWhere[Invoice](ctx, tx, "customer_code = ?", code)
		if err != nil {
			return err
		}
		if count > 0 {
			return utils.NewValidationError("code", "customer has invoices")
		}
		count, err = utils.ResourceCountWhere[Voucher](ctx, tx, "customer_code = ?", code)
		if err != nil {
			return err
		}
		if count > 0 {
			return utils.NewValidationError("code", "customer has vouchers")
		}
		return tx.Delete(customer).Error
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func GetCustomer(ctx context.Context, code string) (*Customer, error) {
	return utils.FetchModel[Customer](ctx, nil, map[string]interface{}{"code": code})
}

func GetCustomerByTaxCode(ctx context.Context, taxCode string) (*Customer, error) {
	return utils.FetchModel[Customer](ctx, nil, map[string]interface{}{"tax_code": strings.TrimSpace(taxCode)})
}

func CustomerExists(ctx context.Context, code string) (bool, error) {
	return recordExists[Customer](ctx, "code", strings.TrimSpace(code))
}

func CustomerTaxCodeExists(ctx context.Context, taxCode string) (bool, error) {
	return recordExists[Customer](ctx, "tax_code", strings.TrimSpace(taxCode))
}

func GetCustomers(ctx context.Context, page *Page) ([]*Customer, error) {
	skip, limit := page.window()
	return utils.FetchModels[Customer](ctx, nil, "code", skip, limit)
}

// SearchCustomers matches name, address or tax code case-insensitively.
func SearchCustomers(ctx context.Context, keyword string, page *Page) ([]*Customer, error) {
	db := config.GetDB()
	skip, limit := page.window()
	pattern := utils.LikePattern(keyword)
	results := []*Customer{}
	err := db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(address) LIKE ? OR LOWER(tax_code) LIKE ?", pattern, pattern, pattern).
		Order("name").Order("code").
		Offset(skip).Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
