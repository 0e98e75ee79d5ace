// Package services contains stateless domain services for the catalog bounded context.
// They enforce business rules on domain types and never touch infrastructure.
package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/ghuser/catalog/services/catalog/domain"
	"github.com/ghuser/catalog/services/catalog/domain/models"
)

// MaxPrice is the largest price a NUMERIC(5,3) column can hold.
var MaxPrice = decimal.RequireFromString("99.999")

const priceScale = 3

// MaxStock is the largest stock count or threshold an INTEGER column can hold.
const MaxStock = math.MaxInt32

// ValidateName enforces business rules for ItemName beyond the length checks
// done by the ItemName constructor.
//
// Business rules:
//   - No leading or trailing whitespace
//   - No control characters (Unicode category Cc)
func ValidateName(name models.ItemName) error {
	s := name.String()

	if s != strings.TrimSpace(s) {
		return fmt.Errorf("item name must not have leading or trailing whitespace")
	}

	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("item name must not contain control characters")
		}
	}

	return nil
}

// ValidatePrice checks that price is within [0, 99.999] with at most three fractional digits.
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	if price.GreaterThan(MaxPrice) {
		return fmt.Errorf("price must not exceed %s", MaxPrice.String())
	}
	if !price.Equal(price.Truncate(priceScale)) {
		return fmt.Errorf("price must have at most %d decimal places", priceScale)
	}
	return nil
}

// ValidateItem performs cross-field validation on an Item before it is
// persisted, on create and on update alike. Every failure wraps domain.ErrInvalidItem.
func ValidateItem(item *models.Item) error {
	if item == nil {
		return fmt.Errorf("%w: item cannot be nil", domain.ErrInvalidItem)
	}

	var errs []error
	if err := ValidateName(item.Name); err != nil {
		errs = append(errs, fmt.Errorf("invalid name: %w", err))
	}
	if err := ValidatePrice(item.Price); err != nil {
		errs = append(errs, err)
	}
	if err := validateStock("available stock", item.AvailableStock); err != nil {
		errs = append(errs, err)
	}
	if err := validateStock("restock threshold", item.RestockThreshold); err != nil {
		errs = append(errs, err)
	}
	if err := validateStock("max stock threshold", item.MaxStockThreshold); err != nil {
		errs = append(errs, err)
	}
	if err := models.ValidateDirectoryName("brand", item.Brand.Name); err != nil {
		errs = append(errs, err)
	}
	if err := models.ValidateDirectoryName("type", item.Type.Name); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidItem, errors.Join(errs...))
	}
	return nil
}

func validateStock(field string, n int) error {
	if n < 0 {
		return fmt.Errorf("%s must not be negative", field)
	}
	if n > MaxStock {
		return fmt.Errorf("%s must not exceed %d", field, MaxStock)
	}
	return nil
}
