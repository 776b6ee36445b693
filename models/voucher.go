package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/sales_backend/config"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Voucher is a discount voucher issued against an invoice. It reduces revenue and the
// amount the customer owes.
type Voucher struct {
	Code                  string          `gorm:"primaryKey;size:10" json:"code"`
	IssueDate             time.Time       `gorm:"not null;index" json:"issue_date"`
	CustomerCode          string          `gorm:"size:10;not null;index" json:"customer_code"`
	Description           *string         `gorm:"type:text" json:"description"`
	DebitReductionAccount string          `gorm:"size:10;not null" json:"debit_reduction_account"`
	CreditPaymentAccount  string          `gorm:"size:10;not null" json:"credit_payment_account"`
	InvoiceCode           string          `gorm:"size:10;not null;index" json:"invoice_code"`
	TaxRate               decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"tax_rate"`
	TaxAmount             decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"tax_amount"`
	TaxDebitAccount       string          `gorm:"size:10;not null" json:"tax_debit_account"`
	RevenueReduction      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"revenue_reduction"`
	PaymentReduction      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"payment_reduction"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewVoucher struct {
	IssueDate             utils.NaiveTime `json:"issue_date" binding:"required"`
	CustomerCode          string          `json:"customer_code" binding:"required,max=10"`
	Description           *string         `json:"description"`
	DebitReductionAccount string          `json:"debit_reduction_account" binding:"required,max=10"`
	CreditPaymentAccount  string          `json:"credit_payment_account" binding:"required,max=10"`
	InvoiceCode           string          `json:"invoice_code" binding:"required,max=10"`
	TaxRate               decimal.Decimal `json:"tax_rate" binding:"gte=0,lte=100"`
	TaxAmount             decimal.Decimal `json:"tax_amount" binding:"gte=0"`
	TaxDebitAccount       string          `json:"tax_debit_account" binding:"required,max=10"`
	RevenueReduction      decimal.Decimal `json:"revenue_reduction" binding:"gte=0"`
	PaymentReduction      decimal.Decimal `json:"payment_reduction" binding:"gte=0"`
	Details               []NewLineItem   `json:"details" binding:"dive"`
}

type VoucherPatch struct {
	IssueDate             *utils.NaiveTime `json:"issue_date"`
	CustomerCode          *string          `json:"customer_code" binding:"omitempty,min=1,max=10"`
	Description           *string          `json:"description"`
	DebitReductionAccount *string          `json:"debit_reduction_account" binding:"omitempty,min=1,max=10"`
	CreditPaymentAccount  *string          `json:"credit_payment_account" binding:"omitempty,min=1,max=10"`
	InvoiceCode           *string          `json:"invoice_code" binding:"omitempty,min=1,max=10"`
	TaxRate               *decimal.Decimal `json:"tax_rate" binding:"omitempty,gte=0,lte=100"`
	TaxAmount             *decimal.Decimal `json:"tax_amount" binding:"omitempty,gte=0"`
	TaxDebitAccount       *string          `json:"tax_debit_account" binding:"omitempty,min=1,max=10"`
	RevenueReduction      *decimal.Decimal `json:"revenue_reduction" binding:"omitempty,gte=0"`
	PaymentReduction      *decimal.Decimal `json:"payment_reduction" binding:"omitempty,gte=0"`
	Details               *[]NewLineItem   `json:"details" binding:"omitempty,dive"`
}

type VoucherWithDetails struct {
	Voucher *Voucher         `json:"voucher"`
	Details []*VoucherDetail `json:"details"`
}

// validateVoucherTotals checks paymentReduction = revenueReduction + tax within tolerance.
func validateVoucherTotals(revenueReduction, tax, paymentReduction decimal.Decimal) error {
	expected := revenueReduction.Add(tax)
	if !utils.WithinTolerance(paymentReduction, expected, totalsTolerance) {
		return utils.NewValidationError("payment_reduction",
			"payment reduction must equal revenue reduction + tax amount (expected "+expected.StringFixed(2)+")")
	}
	return nil
}

func (input *NewVoucher) validate() error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if err := validateVoucherTotals(input.RevenueReduction, input.TaxAmount, input.PaymentReduction); err != nil {
		return err
	}
	return validateLines(input.Details)
}

// validateVoucherInvoice checks the invoice exists and was issued to customerCode.
func validateVoucherInvoice(ctx context.Context, tx *gorm.DB, invoiceCode string, customerCode string) error {
	invoice, err := utils.FetchModel[Invoice](ctx, tx, map[string]interface{}{"code": invoiceCode})
	if err != nil {
		return err
	}
	if invoice == nil {
		return utils.NewValidationError("invoice_code", "invoice not found")
	}
	if invoice.CustomerCode != customerCode {
		return utils.NewValidationError("invoice_code", "invoice belongs to another customer")
	}
	return nil
}

func (input *NewVoucher) validateReferences(ctx context.Context, tx *gorm.DB) error {
	if err := utils.ValidateResourceId[Customer](ctx, tx, "code", input.CustomerCode); err != nil {
		return referenceError(err, "customer_code", "customer not found")
	}
	if err := validateVoucherInvoice(ctx, tx, input.InvoiceCode, input.CustomerCode); err != nil {
		return err
	}
	if err := validateAccountCodes(ctx, tx, map[string]string{
		"debit_reduction_account": input.DebitReductionAccount,
		"credit_payment_account":  input.CreditPaymentAccount,
		"tax_debit_account":       input.TaxDebitAccount,
	}); err != nil {
		return err
	}
	return validateLineProducts(ctx, tx, input.Details)
}

// CreateVoucher stores the header and its lines in one transaction and returns the header.
func CreateVoucher(ctx context.Context, input *NewVoucher) (*Voucher, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var voucher *Voucher
	err := mintAndCreate(ctx, VoucherCodeSeries, config.CodeMintAttempts(), "Voucher", func() error {
		var err error
		voucher, err = createVoucherWithLines(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return voucher, nil
}

func createVoucherWithLines(ctx context.Context, input *NewVoucher) (*Voucher, error) {
	db := config.GetDB()
	logger := config.GetLogger()

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, utils.TranslateError(tx.Error)
	}
	defer func() { _ = tx.Rollback().Error }()

	if err := input.validateReferences(ctx, tx); err != nil {
		return nil, err
	}

	code, err := NextCode(ctx, tx, VoucherCodeSeries)
	if err != nil {
		return nil, err
	}

	voucher := Voucher{
		Code:                  code,
		IssueDate:             utils.NormalizeDate(input.IssueDate.Time),
		CustomerCode:          input.CustomerCode,
		Description:           utils.TrimToNil(input.Description),
		DebitReductionAccount: input.DebitReductionAccount,
		CreditPaymentAccount:  input.CreditPaymentAccount,
		InvoiceCode:           input.InvoiceCode,
		TaxRate:               input.TaxRate,
		TaxAmount:             input.TaxAmount,
		TaxDebitAccount:       input.TaxDebitAccount,
		RevenueReduction:      input.RevenueReduction,
		PaymentReduction:      input.PaymentReduction,
	}
	if err := createHeader(tx, &voucher); err != nil {
		config.LogError(logger, "Voucher", "CreateVoucher", "creating header", voucher.Code, err)
		return nil, utils.TranslateError(err)
	}

	details := mapNewVoucherDetails(code, input.Details)
	if len(details) > 0 {
		if err := tx.Create(&details).Error; err != nil {
			config.LogError(logger, "Voucher", "CreateVoucher", "creating details", voucher.Code, err)
			return nil, utils.TranslateError(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, utils.TranslateError(err)
	}
	return &voucher, nil
}

func UpdateVoucher(ctx context.Context, code string, input *VoucherPatch) (*Voucher, error) {
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
	if input.Description != nil {
		changes["description"] = utils.TrimToNil(input.Description)
	}
	setIfPresent(changes, "debit_reduction_account", input.DebitReductionAccount)
	setIfPresent(changes, "credit_payment_account", input.CreditPaymentAccount)
	setIfPresent(changes, "invoice_code", input.InvoiceCode)
	setIfPresent(changes, "tax_rate", input.TaxRate)
	setIfPresent(changes, "tax_amount", input.TaxAmount)
	setIfPresent(changes, "tax_debit_account", input.TaxDebitAccount)
	setIfPresent(changes, "revenue_reduction", input.RevenueReduction)
	setIfPresent(changes, "payment_reduction", input.PaymentReduction)

	var voucher *Voucher
	err := runInTx(ctx, "Voucher", "UpdateVoucher", code, func(tx *gorm.DB) error {
		existing, err := utils.FetchModelOrNotFound[Voucher](ctx, tx, map[string]interface{}{"code": code})
		if err != nil {
			return err
		}

		if input.TaxAmount != nil || input.RevenueReduction != nil || input.PaymentReduction != nil {
			if err := validateVoucherTotals(
				utils.DereferencePtr(input.RevenueReduction, existing.RevenueReduction),
				utils.DereferencePtr(input.TaxAmount, existing.TaxAmount),
				utils.DereferencePtr(input.PaymentReduction, existing.PaymentReduction),
			); err != nil {
				return err
			}
		}

		customerCode := utils.DereferencePtr(input.CustomerCode, existing.CustomerCode)
		invoiceCode := utils.DereferencePtr(input.InvoiceCode, existing.InvoiceCode)
		if input.CustomerCode != nil {
			if err := utils.ValidateResourceId[Customer](ctx, tx, "code", customerCode); err != nil {
				return referenceError(err, "customer_code", "customer not found")
			}
		}
		if input.CustomerCode != nil || input.InvoiceCode != nil {
			if err := validateVoucherInvoice(ctx, tx, invoiceCode, customerCode); err != nil {
				return err
			}
		}
		if err := validateAccountCodes(ctx, tx, map[string]string{
			"debit_reduction_account": utils.DereferencePtr(input.DebitReductionAccount),
			"credit_payment_account":  utils.DereferencePtr(input.CreditPaymentAccount),
			"tax_debit_account":       utils.DereferencePtr(input.TaxDebitAccount),
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
			if _, err := DeleteDetailsByParent[VoucherDetail](ctx, tx, code); err != nil {
				return err
			}
			details := mapNewVoucherDetails(code, *input.Details)
			if len(details) > 0 {
				if err := tx.Create(&details).Error; err != nil {
					return err
				}
			}
		}

		voucher, err = utils.FetchModelOrNotFound[Voucher](ctx, tx, map[string]interface{}{"code": code})
		return err
	})
	if err != nil {
		return nil, err
	}
	return voucher, nil
}

// DeleteVoucher removes the lines and then the header in one transaction.
func DeleteVoucher(ctx context.Context, code string) (*Voucher, error) {
	var voucher *Voucher
	err := runInTx(ctx, "Voucher", "DeleteVoucher", code, func(tx *gorm.DB) error {
		var err error
		voucher, err = utils.FetchModelOrNotFound[Voucher](ctx, tx, map[string]interface{}{"code": code})
		if err != nil {
			return err
		}
		if _, err := DeleteDetailsByParent[VoucherDetail](ctx, tx, code); err != nil {
			return err
		}
		return tx.Delete(voucher).Error
	})
	if err != nil {
		return nil, err
	}
	return voucher, nil
}

func GetVoucher(ctx context.Context, code string) (*Voucher, error) {
	return utils.FetchModel[Voucher](ctx, nil, map[string]interface{}{"code": code})
}

// GetVoucherWithDetails returns nil, nil when the header does not exist.
func GetVoucherWithDetails(ctx context.Context, code string) (*VoucherWithDetails, error) {
	voucher, err := GetVoucher(ctx, code)
	if err != nil || voucher == nil {
		return nil, err
	}
	details, err := GetVoucherDetails(ctx, code)
	if err != nil {
		return nil, err
	}
	return &VoucherWithDetails{Voucher: voucher, Details: details}, nil
}

func GetVouchers(ctx context.Context, page *Page) ([]*Voucher, error) {
	skip, limit := page.window()
	return utils.FetchModels[Voucher](ctx, nil, "issue_date DESC, code DESC", skip, limit)
}

func GetVouchersByCustomer(ctx context.Context, customerCode string, page *Page) ([]*Voucher, error) {
	return getVouchersWhere(ctx, page, "customer_code = ?", customerCode)
}

func GetVouchersByInvoice(ctx context.Context, invoiceCode string, page *Page) ([]*Voucher, error) {
	return getVouchersWhere(ctx, page, "invoice_code = ?", invoiceCode)
}

// GetVouchersByDateRange lists vouchers issued between fromDate and toDate, both days inclusive.
func GetVouchersByDateRange(ctx context.Context, fromDate time.Time, toDate time.Time, page *Page) ([]*Voucher, error) {
	if toDate.Before(fromDate) {
		return nil, utils.NewValidationError("to_date", "must not be before from_date")
	}
	start, end := utils.DayRange(fromDate, toDate)
	return getVouchersWhere(ctx, page, "issue_date >= ? AND issue_date < ?", start, end)
}

func getVouchersWhere(ctx context.Context, page *Page, condition string, values ...interface{}) ([]*Voucher, error) {
	db := config.GetDB()
	skip, limit := page.window()
	results := []*Voucher{}
	err := db.WithContext(ctx).
		Where(condition, values...).
		Order("issue_date DESC").Order("code DESC").
		Offset(skip).Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
