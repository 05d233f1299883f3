package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/jobwatch/jobwatch/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	if err := Validate.RegisterValidation("due_filter", validateDueFilter); err != nil {
		panic(fmt.Sprintf("failed to register due_filter validator: %v", err))
	}
}

// validateDueFilter validates that a string is a valid DueFilter enum value
func validateDueFilter(fl validator.FieldLevel) bool {
	_, err := models.ParseDueFilter(fl.Field().String())
	return err == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateDueFilter validates a due filter string value
func ValidateDueFilter(value string) error {
	if _, err := models.ParseDueFilter(value); err != nil {
		return fmt.Errorf("invalid due filter: %s (must be 'TODAY', 'OVERDUE', or 'UPCOMING')", value)
	}
	return nil
}
