package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstantRunGenerator(t *testing.T) {
	g := NewConstantRunGenerator("run-x")

	assert.Equal(t, "run-x", g.Generate())
	assert.Equal(t, "run-x", g.Generate())
}

func TestConstantRunGeneratorDefault(t *testing.T) {
	g := NewConstantRunGenerator("")
	assert.Equal(t, "test-run-default", g.Generate())
}
