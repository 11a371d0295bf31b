// Package compiler turns CUE rule-set sources into ir.Rule values and
// validates them with positioned, coded diagnostics.
//
// A rule set is a CUE file of the form:
//
//	rules: [
//		{
//			name:     "grad-only-violation"
//			priority: 5
//			when: [
//				["enrolled", "?s", "?c"],
//				["graduate-only", "?c"],
//			]
//			then: ["flag-violation", "?s", "?c"]
//		},
//	]
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/refract-engine/refract/internal/ir"
)

// CompileError is a single compile failure with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileBytes compiles CUE source into a rule set. The filename is
// used for error positions only.
func CompileBytes(filename string, src []byte) ([]ir.Rule, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	return CompileRules(v)
}

// CompileRules parses a CUE value holding a top-level "rules" list.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`rules: [ ... ]`)
//	rules, err := CompileRules(v)
func CompileRules(v cue.Value) ([]ir.Rule, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	rulesVal := v.LookupPath(cue.ParsePath("rules"))
	if !rulesVal.Exists() {
		return nil, &CompileError{
			Field:   "rules",
			Message: "top-level rules list is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := rulesVal.List()
	if err != nil {
		return nil, &CompileError{
			Field:   "rules",
			Message: "rules must be a list",
			Pos:     rulesVal.Pos(),
		}
	}

	var rules []ir.Rule
	for i := 0; iter.Next(); i++ {
		rule, err := parseRule(iter.Value(), i)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if len(rules) == 0 {
		return nil, &CompileError{
			Field:   "rules",
			Message: "at least one rule is required",
			Pos:     rulesVal.Pos(),
		}
	}

	return rules, nil
}

// parseRule extracts one rule struct.
func parseRule(v cue.Value, idx int) (ir.Rule, error) {
	field := func(name string) string { return fmt.Sprintf("rules[%d].%s", idx, name) }

	rule := ir.Rule{}

	// Parse name (required)
	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return rule, &CompileError{
			Field:   field("name"),
			Message: "rule name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return rule, formatCUEError(err)
	}
	rule.Name = name

	// Parse priority (optional, defaults to 0)
	prioVal := v.LookupPath(cue.ParsePath("priority"))
	if prioVal.Exists() {
		prio, err := prioVal.Int64()
		if err != nil {
			return rule, &CompileError{
				Field:   field("priority"),
				Message: "priority must be an integer",
				Pos:     prioVal.Pos(),
			}
		}
		rule.Priority = int(prio)
	}

	// Parse when clause (required, list of patterns)
	whenVal := v.LookupPath(cue.ParsePath("when"))
	if !whenVal.Exists() {
		return rule, &CompileError{
			Field:   field("when"),
			Message: "when clause is required",
			Pos:     v.Pos(),
		}
	}
	whenIter, err := whenVal.List()
	if err != nil {
		return rule, &CompileError{
			Field:   field("when"),
			Message: "when clause must be a list of patterns",
			Pos:     whenVal.Pos(),
		}
	}
	for j := 0; whenIter.Next(); j++ {
		pat, err := parsePattern(whenIter.Value(), fmt.Sprintf("%s[%d]", field("when"), j))
		if err != nil {
			return rule, err
		}
		rule.Antecedents = append(rule.Antecedents, pat)
	}

	// Parse then clause (required, single pattern)
	thenVal := v.LookupPath(cue.ParsePath("then"))
	if !thenVal.Exists() {
		return rule, &CompileError{
			Field:   field("then"),
			Message: "then clause is required",
			Pos:     v.Pos(),
		}
	}
	rule.Consequent, err = parsePattern(thenVal, field("then"))
	if err != nil {
		return rule, err
	}

	return rule, nil
}

// parsePattern extracts a flat list of string terms.
func parsePattern(v cue.Value, field string) (ir.Pattern, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: "pattern must be a list of string terms",
			Pos:     v.Pos(),
		}
	}

	var pat ir.Pattern
	for iter.Next() {
		term, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   field,
				Message: "pattern term must be a string",
				Pos:     iter.Value().Pos(),
			}
		}
		pat = append(pat, ir.Term(term))
	}
	return pat, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
