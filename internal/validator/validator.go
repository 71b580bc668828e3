// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"orbit/internal/ledger"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterWith(v)
	}
}

// RegisterWith registers the custom rules on v.
func RegisterWith(v *validator.Validate) {
	_ = v.RegisterValidation("entry_type", validateEntryType)
	_ = v.RegisterValidation("month_key", validateMonthKey)
	_ = v.RegisterValidation("hex_color", validateHexColor)
	_ = v.RegisterValidation("not_blank", validateNotBlank)
	v.RegisterStructValidation(validateEntry, ledger.Entry{})
}

func validateEntryType(fl validator.FieldLevel) bool {
	return ledger.Type(fl.Field().String()).Valid()
}

func validateMonthKey(fl validator.FieldLevel) bool {
	_, err := ledger.ParseMonthKey(fl.Field().String())
	return err == nil
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validateEntry checks ledger entries reached through dive on a request body.
func validateEntry(sl validator.StructLevel) {
	e := sl.Current().Interface().(ledger.Entry)
	if e.ID == "" {
		sl.ReportError(e.ID, "ID", "id", "required", "")
	}
	if strings.TrimSpace(e.Name) == "" {
		sl.ReportError(e.Name, "Name", "name", "not_blank", "")
	}
	if e.Amount < 0 {
		sl.ReportError(e.Amount, "Amount", "amount", "gte", "0")
	}
	if !e.Type.Valid() {
		sl.ReportError(e.Type, "Type", "type", "entry_type", "")
	}
	if e.Color != "" && !hexColorRegex.MatchString(e.Color) {
		sl.ReportError(e.Color, "Color", "color", "hex_color", "")
	}
}
