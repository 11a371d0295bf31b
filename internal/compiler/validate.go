package compiler

import (
	"fmt"
	"strings"

	"github.com/refract-engine/refract/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrRuleNameEmpty        = "E101" // rule name is required
	ErrDuplicateRuleName    = "E102" // rule names must be unique
	ErrNoAntecedents        = "E103" // at least one antecedent required
	ErrEmptyPattern         = "E104" // pattern must have at least one term
	ErrEmptyTerm            = "E105" // terms must be non-empty
	ErrBareVariable         = "E106" // "?" alone is not a variable
	ErrUnboundConsequentVar = "E107" // consequent variable unbound
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks compiled rules against the structural schema.
// Returns all errors found (does not fail-fast), so a validate command
// can report every defect of a rule set in one pass.
func Validate(rules []ir.Rule) []ValidationError {
	var errs []ValidationError

	names := make(map[string]bool, len(rules))
	for i, rule := range rules {
		field := func(name string) string { return fmt.Sprintf("rules[%d].%s", i, name) }

		// E101: name required
		if strings.TrimSpace(rule.Name) == "" {
			errs = append(errs, ValidationError{
				Field:   field("name"),
				Message: "rule name is required and must be non-empty",
				Code:    ErrRuleNameEmpty,
			})
		}

		// E102: duplicate name
		if rule.Name != "" && names[rule.Name] {
			errs = append(errs, ValidationError{
				Field:   field("name"),
				Message: fmt.Sprintf("duplicate rule name: %q", rule.Name),
				Code:    ErrDuplicateRuleName,
			})
		}
		names[rule.Name] = true

		// E103: at least one antecedent
		if len(rule.Antecedents) == 0 {
			errs = append(errs, ValidationError{
				Field:   field("when"),
				Message: "at least one antecedent is required",
				Code:    ErrNoAntecedents,
			})
		}

		bound := make(map[string]bool)
		for j, ant := range rule.Antecedents {
			errs = append(errs, validatePattern(ant, fmt.Sprintf("%s[%d]", field("when"), j))...)
			for _, v := range ant.Variables() {
				bound[v] = true
			}
		}

		errs = append(errs, validatePattern(rule.Consequent, field("then"))...)

		// E107: every consequent variable must be bound by an antecedent
		for _, v := range rule.Consequent.Variables() {
			if !bound[v] {
				errs = append(errs, ValidationError{
					Field:   field("then"),
					Message: fmt.Sprintf("consequent variable %q is not bound by any antecedent", v),
					Code:    ErrUnboundConsequentVar,
				})
			}
		}
	}

	return errs
}

// validatePattern checks a single pattern's terms.
func validatePattern(pat ir.Pattern, field string) []ValidationError {
	// E104: empty pattern
	if len(pat) == 0 {
		return []ValidationError{{
			Field:   field,
			Message: "pattern must have at least one term",
			Code:    ErrEmptyPattern,
		}}
	}

	var errs []ValidationError
	for k, term := range pat {
		switch {
		// E105: empty term
		case term == "":
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, k),
				Message: "term must be non-empty",
				Code:    ErrEmptyTerm,
			})
		// E106: bare "?" is neither a variable nor a sensible constant
		case string(term) == ir.VariablePrefix:
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, k),
				Message: `bare "?" is not a valid variable name`,
				Code:    ErrBareVariable,
			})
		}
	}
	return errs
}
