package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/sales_backend/config"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// totals may differ from their components by at most this much, to absorb rounding
var totalsTolerance = decimal.NewFromInt(1)

type Invoice struct {
	Code            string          `gorm:"primaryKey;size:10" json:"code"`
	IssueDate       time.Time       `gorm:"not null;index" json:"issue_date"`
	CustomerCode    string          `gorm:"size:10;not null;index" json:"customer_code"`
	CustomerName    string          `gorm:"size:150;not null" json:"customer_name"`
	PaymentMethod   string          `gorm:"size:50;not null" json:"payment_method"`
	DebitAccount    string          `gorm:"size:10;not null" json:"debit_account"`
	RevenueAccount  string          `gorm:"size:10;not null" json:"revenue_account"`
	TaxAccount      string          `gorm:"size:10;not null" json:"tax_account"`
	DiscountAccount *string         `gorm:"size:10" json:"discount_account"`
	Description     *string         `gorm:"type:text" json:"description"`
	TaxRate         decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"tax_rate"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"tax_amount"`
	DiscountRate    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_rate"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"discount_amount"`
	RevenueAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"revenue_amount"`
	PaymentTotal    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"payment_total"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInvoice struct {
	IssueDate       utils.NaiveTime `json:"issue_date" binding:"required"`
	CustomerCode    string          `json:"customer_code" binding:"required,max=10"`
	CustomerName    string          `json:"customer_name" binding:"max=150"`
	PaymentMethod   string          `json:"payment_method" binding:"required,max=50"`
	DebitAccount    string          `json:"debit_account" binding:"required,max=10"`
	RevenueAccount  string          `json:"revenue_account" binding:"required,max=10"`
	TaxAccount      string          `json:"tax_account" binding:"required,max=10"`
	DiscountAccount *string         `json:"discount_account" binding:"omitempty,max=10"`
	Description     *string         `json:"description"`
	TaxRate         decimal.Decimal `json:"tax_rate" binding:"gte=0,lte=100"`
	TaxAmount       decimal.Decimal `json:"tax_amount" binding:"gte=0"`
	DiscountRate    decimal.Decimal `json:"discount_rate" binding:"gte=0,lte=100"`
	DiscountAmount  decimal.Decimal `json:"discount_amount" binding:"gte=0"`
	RevenueAmount   decimal.Decimal `json:"revenue_amount" binding:"gte=0"`
	PaymentTotal    decimal.Decimal `json:"payment_total" binding:"gte=0"`
	Details         []NewLineItem   `json:"details" binding:"dive"`
}

// InvoicePatch carries only the supplied fields. Details, when present, replaces every line.
type InvoicePatch struct {
	IssueDate       *utils.NaiveTime `json:"issue_date"`
	CustomerCode    *string          `json:"customer_code" binding:"omitempty,min=1,max=10"`
	CustomerName    *string          `json:"customer_name" binding:"omitempty,min=1,max=150"`
	PaymentMethod   *string          `json:"payment_method" binding:"omitempty,min=1,max=50"`
	DebitAccount    *string          `json:"debit_account" binding:"omitempty,min=1,max=10"`
	RevenueAccount  *string          `json:"revenue_account" binding:"omitempty,min=1,max=10"`
	TaxAccount      *string          `json:"tax_account" binding:"omitempty,min=1,max=10"`
	DiscountAccount *string          `json:"discount_account" binding:"omitempty,max=10"`
	Description     *string          `json:"description"`
	TaxRate         *decimal.Decimal `json:"tax_rate" binding:"omitempty,gte=0,lte=100"`
	TaxAmount       *decimal.Decimal `json:"tax_amount" binding:"omitempty,gte=0"`
	DiscountRate    *decimal.Decimal `json:"discount_rate" binding:"omitempty,gte=0,lte=100"`
	DiscountAmount  *decimal.Decimal `json:"discount_amount" binding:"omitempty,gte=0"`
	RevenueAmount   *decimal.Decimal `json:"revenue_amount" binding:"omitempty,gte=0"`
	PaymentTotal    *decimal.Decimal `json:"payment_total" binding:"omitempty,gte=0"`
	Details         *[]NewLineItem   `json:"details" binding:"omitempty,dive"`
}

type InvoiceWithDetails struct {
	Invoice *Invoice         `json:"invoice"`
	Details []*InvoiceDetail `json:"details"`
}

// InvoiceTotalsPreview is the input of ComputeInvoiceTotals.
type InvoiceTotalsPreview struct {
	TaxRate      decimal.Decimal `json:"tax_rate" binding:"gte=0,lte=100"`
	DiscountRate decimal.Decimal `json:"discount_rate" binding:"gte=0,lte=100"`
	Details      []NewLineItem   `json:"details" binding:"dive"`
}

// validateInvoiceTotals checks paymentTotal = revenue + tax - discount within tolerance.
func validateInvoiceTotals(revenue, tax, discount, paymentTotal decimal.Decimal) error {
	expected := revenue.Add(tax).Sub(discount)
	if !utils.WithinTolerance(paymentTotal, expected, totalsTolerance) {
		return utils.NewValidationError("payment_total",
			"payment total must equal revenue amount + tax amount - discount amount (expected "+expected.StringFixed(2)+")")
	}
	return nil
}

func (input *NewInvoice) validate() error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if err := validateInvoiceTotals(input.RevenueAmount, input.TaxAmount, input.DiscountAmount, input.PaymentTotal); err != nil {
		return err
	}
	return validateLines(input.Details)
}

// validateReferences checks the customer, accounts and products exist and returns the customer.
func (input *NewInvoice) validateReferences(ctx context.Context, tx *gorm.DB) (*Customer, error) {
	customer, err := utils.FetchModel[Customer](ctx, tx, map[string]interface{}{"code": input.CustomerCode})
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, utils.NewValidationError("customer_code", "customer not found")
	}
	if err := validateAccountCodes(ctx, tx, map[string]string{
		"debit_account":    input.DebitAccount,
		"revenue_account":  input.RevenueAccount,
		"tax_account":      input.TaxAccount,
		"discount_account": utils.DereferencePtr(input.DiscountAccount),
	}); err != nil {
		return nil, err
	}
	if err := validateLineProducts(ctx, tx, input.Details); err != nil {
		return nil, err
	}
	return customer, nil
}

// CreateInvoice stores the header and all its lines in one transaction and returns the header.
// The code is minted inside that transaction; a code collision is retried.
func CreateInvoice(ctx context.Context, input *NewInvoice) (*Invoice, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var invoice *Invoice
	err := mintAndCreate(ctx, InvoiceCodeSeries, config.CodeMintAttempts(), "Invoice", func() error {
		var err error
		invoice, err = createInvoiceWithLines(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func createInvoiceWithLines(ctx context.Context, input *NewInvoice) (*Invoice, error) {
	db := config.GetDB()
	logger := config.GetLogger()

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, utils.TranslateError(tx.Error)
	}
	// always rollback on early-return; a no-op after Commit
	defer func() { _ = tx.Rollback().Error }()

	customer, err := input.validateReferences(ctx, tx)
	if err != nil {
		return nil, err
	}

	code, err := NextCode(ctx, tx, InvoiceCodeSeries)
	if err != nil {
		return nil, err
	}

	customerName := input.CustomerName
	if customerName == "" {
		customerName = customer.Name
	}

	invoice := Invoice{
		Code:            code,
		IssueDate:       utils.NormalizeDate(input.IssueDate.Time),
		CustomerCode:    input.CustomerCode,
		CustomerName:    customerName,
		PaymentMethod:   input.PaymentMethod,
		DebitAccount:    input.DebitAccount,
		RevenueAccount:  input.RevenueAccount,
		TaxAccount:      input.TaxAccount,
		DiscountAccount: utils.TrimToNil(input.DiscountAccount),
		Description:     utils.TrimToNil(input.Description),
		TaxRate:         input.TaxRate,
		TaxAmount:       input.TaxAmount,
		DiscountRate:    input.DiscountRate,
		DiscountAmount:  input.DiscountAmount,
		RevenueAmount:   input.RevenueAmount,
		PaymentTotal:    input.PaymentTotal,
	}
	if err := createHeader(tx, &invoice); err != nil {
		config.LogError(logger, "Invoice", "CreateInvoice", "creating header", invoice.Code, err)
		return nil, utils.TranslateError(err)
	}

	details := mapNewInvoiceDetails(code, input.Details)
	if len(details) > 0 {
		if err := tx.Create(&details).Error; err != nil {
			config.LogError(logger, "Invoice", "CreateInvoice", "creating details", invoice.Code, err)
			return nil, utils.TranslateError(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, utils.TranslateError(err)
	}
	return &invoice, nil
}

// UpdateInvoice applies the patch; if any amount changes, the merged amounts must still
// satisfy the totals invariant.
func UpdateInvoice(ctx context.Context, code string, input *InvoicePatch) (*Invoice, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.Details != nil {
		if err := validateLines(*input.Details); err != nil {
			return nil, err
		}
	}

	if err := utils.CheckPatchDate("issue_date", input.IssueDate); err != nil {
		return nil, err
	}

	changes := patch{}
	if input.IssueDate != nil {
		changes["issue_date"] = utils.NormalizeDate(input.IssueDate.Time)
	}
	setIfPresent(changes, "customer_code", input.CustomerCode)
	setIfPresent(changes, "customer_name", input.CustomerName)
	setIfPresent(changes, "payment_method", input.PaymentMethod)
	setIfPresent(changes, "debit_account", input.DebitAccount)
	setIfPresent(changes, "revenue_account", input.RevenueAccount)
	setIfPresent(changes, "tax_account", input.TaxAccount)
	if input.DiscountAccount != nil {
		changes["discount_account"] = utils.TrimToNil(input.DiscountAccount)
	}
	if input.Description != nil {
		changes["description"] = utils.TrimToNil(input.Description)
	}
	setIfPresent(changes, "tax_rate", input.TaxRate)
	setIfPresent(changes, "tax_amount", input.TaxAmount)
	setIfPresent(changes, "discount_rate", input.DiscountRate)
	setIfPresent(changes, "discount_amount", input.DiscountAmount)
	setIfPresent(changes, "revenue_amount", input.RevenueAmount)
	setIfPresent(changes, "payment_total", input.PaymentTotal)

	var invoice *Invoice
	err := runInTx(ctx, "Invoice", "UpdateInvoice", code, func(tx *gorm.DB) error {
		existing, err := utils.FetchModelOrNotFound[Invoice](ctx, tx, map[string]interface{}{"code": code})
		if err != nil {
			return err
		}

		if input.TaxAmount != nil || input.DiscountAmount != nil || input.RevenueAmount != nil || input.PaymentTotal != nil {
			if err := validateInvoiceTotals(
				utils.DereferencePtr(input.RevenueAmount, existing.RevenueAmount),
				utils.DereferencePtr(input.TaxAmount, existing.TaxAmount),
				utils.DereferencePtr(input.DiscountAmount, existing.DiscountAmount),
				utils.DereferencePtr(input.PaymentTotal, existing.PaymentTotal),
			); err != nil {
				return err
			}
		}

		if input.CustomerCode != nil && *input.CustomerCode != existing.CustomerCode {
			vouchers, err := utils.ResourceCountWhere[Voucher](ctx, tx, "invoice_code = ?", code)
			if err != nil {
				return err
			}
			if vouchers > 0 {
				return utils.NewValidationError("customer_code", "invoice has discount vouchers; customer cannot change")
			}
			customer, err := utils.FetchModel[Customer](ctx, tx, map[string]interface{}{"code": *input.CustomerCode})
			if err != nil {
				return err
			}
			if customer == nil {
				return utils.NewValidationError("customer_code", "customer not found")
			}
			if input.CustomerName == nil {
				changes["customer_name"] = customer.Name
			}
		}
		if err := validateAccountCodes(ctx, tx, map[string]string{
			"debit_account":    utils.DereferencePtr(input.DebitAccount),
			"revenue_account":  utils.DereferencePtr(input.RevenueAccount),
			"tax_account":      utils.DereferencePtr(input.TaxAccount),
			"discount_account": utils.DereferencePtr(input.DiscountAccount),
		}); err != nil {
			return err
		}

		if len(changes) > 0 {
			if err := tx.Model(existing).Updates(map[string]interface{}(changes)).Error; err != nil {
				return err
			}
		}

		if input.Details != nil {
			if err := validateLineProducts(ctx, tx, *input.Details); err != nil {
				return err
			}
			if _, err := DeleteDetailsByParent[InvoiceDetail](ctx, tx, code); err != nil {
				return err
			}
			details := mapNewInvoiceDetails(code, *input.Details)
			if len(details) > 0 {
				if err := tx.Create(&details).Error; err != nil {
					return err
				}
			}
		}

		invoice, err = utils.FetchModelOrNotFound[Invoice](ctx, tx, map[string]interface{}{"code": code})
		return err
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// DeleteInvoice removes the lines and then the header in one transaction.
// Invoices referenced by a voucher cannot be deleted.
func DeleteInvoice(ctx context.Context, code string) (*Invoice, error) {
	var invoice *Invoice
	err := runInTx(ctx, "Invoice", "DeleteInvoice", code, func(tx *gorm.DB) error {
		var err error
		invoice, err = utils.FetchModelOrNotFound[Invoice](ctx, tx, map[string]interface{}{"code": code})
		if err != nil {
			return err
		}
		count, err := utils.ResourceCountWhere[Voucher](ctx, tx, "invoice_code = ?", code)
		if err != nil {
			return err
		}
		if count > 0 {
			return utils.NewValidationError("code", "invoice has discount vouchers")
		}
		if _, err := DeleteDetailsByParent[InvoiceDetail](ctx, tx, code); err != nil {
			return err
		}
		return tx.Delete(invoice).Error
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func GetInvoice(ctx context.Context, code string) (*Invoice, error) {
	return utils.FetchModel[Invoice](ctx, nil, map[string]interface{}{"code": code})
}

// GetInvoiceWithDetails returns nil, nil when the header does not exist.
func GetInvoiceWithDetails(ctx context.Context, code string) (*InvoiceWithDetails, error) {
	invoice, err := GetInvoice(ctx, code)
	if err != nil || invoice == nil {
		return nil, err
	}
	details, err := GetInvoiceDetails(ctx, code)
	if err != nil {
		return nil, err
	}
	return &InvoiceWithDetails{Invoice: invoice, Details: details}, nil
}

func GetInvoices(ctx context.Context, page *Page) ([]*Invoice, error) {
	skip, limit := page.window()
	return utils.FetchModels[Invoice](ctx, nil, "issue_date DESC, code DESC", skip, limit)
}

// GetInvoicesByCustomer lists a customer's invoices, newest first.
func GetInvoicesByCustomer(ctx context.Context, customerCode string, page *Page) ([]*Invoice, error) {
	db := config.GetDB()
	skip, limit := page.window()
	results := []*Invoice{}
	err := db.WithContext(ctx).
		Where("customer_code = ?", customerCode).
		Order("issue_date DESC").Order("code DESC").
		Offset(skip).Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetInvoicesByDateRange lists invoices issued between fromDate and toDate, both days inclusive.
func GetInvoicesByDateRange(ctx context.Context, fromDate time.Time, toDate time.Time, page *Page) ([]*Invoice, error) {
	if toDate.Before(fromDate) {
		return nil, utils.NewValidationError("to_date", "must not be before from_date")
	}
	db := config.GetDB()
	skip, limit := page.window()
	start, end := utils.DayRange(fromDate, toDate)
	results := []*Invoice{}
	err := db.WithContext(ctx).
		Where("issue_date >= ? AND issue_date < ?", start, end).
		Order("issue_date").Order("code").
		Offset(skip).Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ComputeInvoiceTotals previews revenue, discount, tax and payment total for a set of lines.
func ComputeInvoiceTotals(input *InvoiceTotalsPreview) (*utils.DocumentTotals, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	lines := make([]utils.LineAmount, 0, len(input.Details))
	for _, line := range input.Details {
		lines = append(lines, utils.LineAmount{Quantity: line.Quantity, UnitPrice: line.UnitPrice})
	}
	totals := utils.CalculateDocumentTotals(lines, input.TaxRate, input.DiscountRate)
	return &totals, nil
}
