package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunGradOnlyCascade(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/grad-only-cascade.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)

	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "SATURATED", result.State)
	require.Len(t, result.Trace, 3)
	assert.Equal(t, "grad-only-violation", result.Trace[0].Rule)
	assert.Equal(t, "drop-flagged", result.Trace[1].Rule)
	assert.Equal(t, "notify-advisor", result.Trace[2].Rule)
}

func TestRunReviewOrderStrategy(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/review-order.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)

	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 2)
	// Declaration order wins under the order strategy.
	assert.Equal(t, "low-gpa-review", result.Trace[0].Rule)
	// The second firing re-derives the same fact.
	assert.False(t, result.Trace[1].New)
}

func TestRunReportsExpectationFailures(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/grad-only-cascade.yaml")
	require.NoError(t, err)
	scenario.Expect.Derived = append(scenario.Expect.Derived, []string{"never", "derived"})
	count := 99
	scenario.Expect.FiringCount = &count

	result, err := Run(scenario)

	require.NoError(t, err)
	assert.False(t, result.Pass)
	// Both failures reported, not just the first.
	assert.Len(t, result.Errors, 2)
}

func TestRunRejectsMissingRulesFile(t *testing.T) {
	scenario := &Scenario{
		Name:        "broken",
		Description: "rules file does not exist",
		Rules:       "testdata/rules/missing.cue",
		Facts:       [][]string{{"p", "1"}},
	}

	_, err := Run(scenario)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read rules")
}

func TestGoldenScenarios(t *testing.T) {
	paths := []string{
		"testdata/scenarios/grad-only-cascade.yaml",
		"testdata/scenarios/review-order.yaml",
	}

	for _, path := range paths {
		scenario, err := LoadScenario(path)
		require.NoError(t, err)

		t.Run(scenario.Name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}
