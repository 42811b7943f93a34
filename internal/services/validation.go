package services

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"catalog/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// maxPrice is the first value a decimal(10,2) column cannot hold.
var maxPrice = decimal.New(1, 8)

// ValidationError reports the fields of a product that failed validation,
// keyed by their JSON names.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid product: %s", strings.Join(names, ", "))
}

// newValidator returns a validator aware of product field types and json names.
func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(sf.Name)
		}
		return name
	})

	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Registration only fails on an empty tag or nil func.
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		category, ok := fl.Field().Interface().(models.Category)
		return ok && category.IsValid()
	})

	validate.RegisterStructValidation(productStructLevel, models.Product{})

	return validate
}

// productStructLevel rejects prices the price column would round or overflow.
func productStructLevel(sl validator.StructLevel) {
	product := sl.Current().Interface().(models.Product)
	if !fitsPriceColumn(product.Price) {
		sl.ReportError(product.Price, "price", "Price", "price", "")
	}
}

func fitsPriceColumn(d decimal.Decimal) bool {
	return d.Round(2).Equal(d) && d.LessThan(maxPrice)
}

// validateProduct checks product against its struct rules.
func (s *ProductService) validateProduct(product *models.Product) error {
	err := s.validate.Struct(product)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate product: %w", err)
	}

	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return &ValidationError{Fields: fields}
}
