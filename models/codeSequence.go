package models

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/sales_backend/config"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	codeDigits   = 4
	maxCodeValue = 9999
)

// CodeSeries describes one generated code: a two letter prefix and the column holding it.
type CodeSeries struct {
	Prefix string
	Table  string
	Column string
}

var (
	CustomerCodeSeries = CodeSeries{Prefix: "KH", Table: "customers", Column: "code"}
	ProductCodeSeries  = CodeSeries{Prefix: "SP", Table: "products", Column: "code"}
	InvoiceCodeSeries  = CodeSeries{Prefix: "HD", Table: "invoices", Column: "code"}
	VoucherCodeSeries  = CodeSeries{Prefix: "PG", Table: "vouchers", Column: "code"}
)

func (s CodeSeries) format(n int) string {
	return fmt.Sprintf("%s%0*d", s.Prefix, codeDigits, n)
}

// CodeSequence is the per-prefix counter row. Holding its row lock serialises minting.
type CodeSequence struct {
	Prefix    string    `gorm:"primaryKey;size:2" json:"prefix"`
	LastValue int       `gorm:"not null;default:0" json:"last_value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// NextCode mints the next code of series inside tx.
// The counter row stays locked until tx ends, so the caller must insert the returned code
// in the same transaction.
func NextCode(ctx context.Context, tx *gorm.DB, series CodeSeries) (string, error) {
	db := tx.WithContext(ctx)

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&CodeSequence{Prefix: series.Prefix}).Error; err != nil {
		return "", err
	}

	var seq CodeSequence
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("prefix = ?", series.Prefix).Take(&seq).Error; err != nil {
		return "", err
	}

	highest, err := highestExistingCode(ctx, tx, series)
	if err != nil {
		return "", err
	}
	if seq.LastValue > highest {
		highest = seq.LastValue
	}

	next := highest + 1
	if next > maxCodeValue {
		return "", fmt.Errorf("%w: %s", utils.ErrorCodeSequenceExhausted, series.Prefix)
	}

	if err := db.Model(&CodeSequence{}).Where("prefix = ?", series.Prefix).
		Update("last_value", next).Error; err != nil {
		return "", err
	}
	return series.format(next), nil
}

// PeekNextCode reports the code the next create of series would receive. The mint runs in a
// transaction that is always rolled back, so the counter is left as it was.
func PeekNextCode(ctx context.Context, series CodeSeries) (string, error) {
	tx := config.GetDB().WithContext(ctx).Begin()
	if tx.Error != nil {
		return "", utils.TranslateError(tx.Error)
	}
	defer func() { _ = tx.Rollback().Error }()

	code, err := NextCode(ctx, tx, series)
	if err != nil {
		return "", utils.TranslateError(err)
	}
	return code, nil
}

// highestExistingCode scans the fixed-width codes of series and returns the largest numeric
// suffix, 0 when there are none. Codes of another width are ignored.
func highestExistingCode(ctx context.Context, tx *gorm.DB, series CodeSeries) (int, error) {
	var codes []string
	err := tx.WithContext(ctx).Table(series.Table).
		Where(series.Column+" LIKE ? AND LENGTH("+series.Column+") = ?", series.Prefix+"%", len(series.Prefix)+codeDigits).
		Order(series.Column+" DESC").
		Limit(20).
		Pluck(series.Column, &codes).Error
	if err != nil {
		return 0, err
	}

	for _, code := range codes {
		n, err := strconv.Atoi(code[len(series.Prefix):])
		if err == nil && n >= 0 {
			return n, nil
		}
	}
	return 0, nil
}

// errCodeCollision marks a duplicate on the freshly minted code itself. Other duplicates
// (a taken tax code, say) are not worth another attempt.
var errCodeCollision = errors.New("minted code collided")

// createHeader inserts a record carrying a freshly minted code. A duplicate key is reported
// as a code collision so mintAndCreate mints again.
func createHeader(tx *gorm.DB, value interface{}) error {
	err := tx.Create(value).Error
	if err != nil && isDuplicateKey(err) {
		return fmt.Errorf("%w: %w", errCodeCollision, utils.TranslateError(err))
	}
	return err
}

// mintAndCreate retries fn when the minted code collided, taking the mint lock of series
// around each attempt. fn is expected to mint with NextCode and insert with createHeader.
func mintAndCreate(ctx context.Context, series CodeSeries, attempts int, moduleName string, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		release, lockErr := utils.ObtainLock(ctx, "mint", series.Prefix, moduleName, "mintAndCreate")
		if lockErr != nil {
			return lockErr
		}
		err = fn()
		release()
		if err == nil || !errors.Is(err, errCodeCollision) {
			return err
		}
	}
	return err
}
