package operations_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidlab/internal/operations"
	"covidlab/internal/operations/testutil"
)

func ids(steps []operations.Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.ID()
	}
	return out
}

func TestRegistry(t *testing.T) {
	registry := operations.NewRegistry()
	assert.Equal(t, 0, registry.Count())
	assert.Empty(t, registry.ListIDs())

	require.NoError(t, registry.Register(testutil.CreateSuccessfulStep("cases")))
	require.NoError(t, registry.Register(testutil.CreateSuccessfulStep("mortality", "cases")))

	assert.Equal(t, 2, registry.Count())
	assert.True(t, registry.Has("cases"))
	assert.False(t, registry.Has("lake"))
	assert.Equal(t, []string{"cases", "mortality"}, registry.ListIDs())

	step, err := registry.Get("mortality")
	require.NoError(t, err)
	assert.Equal(t, "mortality", step.ID())

	_, err = registry.Get("lake")
	assert.Error(t, err)
}

func TestRegistryRegisterErrors(t *testing.T) {
	registry := operations.NewRegistry()

	assert.Error(t, registry.Register(nil))
	assert.Error(t, registry.Register(&testutil.MockStep{}))

	require.NoError(t, registry.Register(testutil.CreateSuccessfulStep("cases")))
	assert.Error(t, registry.Register(testutil.CreateSuccessfulStep("cases")))
}

func TestGetDependencyOrder(t *testing.T) {
	tests := []struct {
		name     string
		steps    []operations.Step
		expected []string
	}{
		{
			name:     "independent steps keep registration order",
			steps:    []operations.Step{testutil.CreateSuccessfulStep("b"), testutil.CreateSuccessfulStep("a"), testutil.CreateSuccessfulStep("c")},
			expected: []string{"b", "a", "c"},
		},
		{
			name:     "dependency registered later runs first",
			steps:    []operations.Step{testutil.CreateSuccessfulStep("stats", "cases"), testutil.CreateSuccessfulStep("cases")},
			expected: []string{"cases", "stats"},
		},
		{
			name:     "diamond",
			steps:    testutil.CreateDiamondSteps(),
			expected: []string{"A", "B", "C", "D"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := operations.NewRegistry()
			for _, s := range tt.steps {
				require.NoError(t, registry.Register(s))
			}
			ordered, err := registry.GetDependencyOrder()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids(ordered))
		})
	}
}

func TestGetDependencyOrderErrors(t *testing.T) {
	t.Run("missing dependency", func(t *testing.T) {
		registry := operations.NewRegistry()
		require.NoError(t, registry.Register(testutil.CreateSuccessfulStep("stats", "cases")))
		assert.Error(t, registry.ValidateDependencies())
	})

	t.Run("cycle", func(t *testing.T) {
		registry := operations.NewRegistry()
		require.NoError(t, registry.Register(testutil.CreateSuccessfulStep("a", "b")))
		require.NoError(t, registry.Register(testutil.CreateSuccessfulStep("b", "a")))
		_, err := registry.GetDependencyOrder()
		assert.ErrorContains(t, err, "cycle")
	})
}

func TestGetDependents(t *testing.T) {
	registry := operations.NewRegistry()
	for _, s := range testutil.CreateDiamondSteps() {
		require.NoError(t, registry.Register(s))
	}

	assert.Equal(t, []string{"B", "C"}, registry.GetDependents("A"))
	assert.Equal(t, []string{"D"}, registry.GetDependents("B"))
	assert.Empty(t, registry.GetDependents("D"))
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := operations.NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = registry.Register(testutil.CreateSuccessfulStep(fmt.Sprintf("step-%d", i)))
			_ = registry.ListIDs()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, registry.Count())
}
