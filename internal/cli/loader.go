package cli

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/refract-engine/refract/internal/compiler"
	"github.com/refract-engine/refract/internal/ir"
)

// factsFile is the YAML layout of a working-memory file:
//
//	facts:
//	  - [enrolled, Alice, CS501]
//	  - [graduate-only, CS501]
type factsFile struct {
	Facts [][]string `yaml:"facts"`
}

// loadRules compiles and validates a CUE rule-set file, mapping each
// failure mode to its exit code: missing file and compile errors are
// command errors, validation defects are failures.
func loadRules(path string) ([]ir.Rule, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("cannot read rules file %s", path), err)
	}

	rules, err := compiler.CompileBytes(path, src)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "rule set failed to compile", err)
	}

	if errs := compiler.Validate(rules); len(errs) > 0 {
		return nil, &ValidationFailure{Errors: errs}
	}

	return rules, nil
}

// ValidationFailure carries every validation defect of a rule set.
type ValidationFailure struct {
	Errors []compiler.ValidationError
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("rule set failed validation with %d error(s)", len(e.Errors))
}

// loadFacts reads a working-memory YAML file. Parsing is strict:
// unknown fields are rejected to catch typos like "fact:".
func loadFacts(path string) ([]ir.Fact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("cannot read facts file %s", path), err)
	}

	var file factsFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, WrapExitError(ExitCommandError, "facts file failed to parse", err)
	}

	if len(file.Facts) == 0 {
		return nil, NewExitError(ExitCommandError, "facts file contains no facts")
	}

	facts := make([]ir.Fact, 0, len(file.Facts))
	for i, tuple := range file.Facts {
		if len(tuple) == 0 {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("facts[%d]: tuple must be non-empty", i))
		}
		facts = append(facts, ir.NewFact(tuple...))
	}

	return facts, nil
}
