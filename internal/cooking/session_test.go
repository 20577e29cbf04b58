package cooking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souschef-app/backend/internal/model"
)

func testRecipe() model.Recipe {
	return model.Recipe{
		ID:   "test-recipe",
		Name: "Veggie Stir Fry",
		Ingredients: model.IngredientList{
			{Name: "broccoli", Amount: "2 cups"},
			{Name: "soy sauce", Amount: "1/4 cup"},
			{Name: "sesame oil", Amount: "to taste"},
		},
		Instructions: model.InstructionList{
			{Step: "Chop the vegetables"},
			{Step: "Stir fry for 5 minutes"},
			{Step: "Simmer for 5 to 10 minutes"},
		},
	}
}

func TestSessionStepNavigation(t *testing.T) {
	s := NewSession(testRecipe())
	assert.Equal(t, 0, s.CurrentStep)

	s.Advance()
	assert.Equal(t, 1, s.CurrentStep)
	assert.True(t, s.CompletedSteps[0])

	s.Advance()
	assert.Equal(t, 2, s.CurrentStep)

	// Advancing from the last step completes it but does not move
	s.Advance()
	assert.Equal(t, 2, s.CurrentStep)
	assert.True(t, s.CompletedSteps[2])

	s.Retreat()
	s.Retreat()
	assert.Equal(t, 0, s.CurrentStep)

	// Retreating from the first step is a no-op
	s.Retreat()
	assert.Equal(t, 0, s.CurrentStep)

	// Retreating never un-completes a step
	assert.True(t, s.CompletedSteps[2])
}

func TestSessionJumpClamps(t *testing.T) {
	s := NewSession(testRecipe())

	s.Jump(99)
	assert.Equal(t, 2, s.CurrentStep)

	s.Jump(-5)
	assert.Equal(t, 0, s.CurrentStep)

	// Jumping has no side effect on completion
	assert.Empty(t, s.CompletedSteps)
}

func TestSessionEmptyRecipe(t *testing.T) {
	s := NewSession(model.Recipe{Name: "Empty"})
	s.Advance()
	assert.Equal(t, 0, s.CurrentStep)
	s.Jump(5)
	assert.Equal(t, 0, s.CurrentStep)
}

func TestSessionIngredientChecklist(t *testing.T) {
	s := NewSession(testRecipe())

	s.ToggleIngredient(0)
	assert.True(t, s.CheckedIngredients[0])
	s.ToggleIngredient(0)
	assert.False(t, s.CheckedIngredients[0])

	// Out-of-range indices are ignored
	s.ToggleIngredient(99)
	s.ToggleIngredient(-1)
	assert.Empty(t, s.CheckedIngredients)
}

func TestSessionRemoveIngredient(t *testing.T) {
	s := NewSession(testRecipe())

	msg, ok := s.RemoveIngredient(1)
	require.True(t, ok)
	assert.Equal(t, "I don't have soy sauce, what can I substitute?", msg)
	assert.True(t, s.RemovedIngredients[1])

	// The recipe itself is untouched
	assert.Len(t, s.Recipe.Ingredients, 3)

	s.RestoreIngredient(1)
	assert.False(t, s.RemovedIngredients[1])

	_, ok = s.RemoveIngredient(99)
	assert.False(t, ok)
}

func TestSessionAdjustServings(t *testing.T) {
	s := NewSession(testRecipe())
	assert.Equal(t, 1.0, s.ServingMultiplier)

	s.AdjustServings(0.5)
	assert.Equal(t, 1.5, s.ServingMultiplier)

	// Clamped at the maximum
	for i := 0; i < 20; i++ {
		s.AdjustServings(0.5)
	}
	assert.Equal(t, MaxMultiplier, s.ServingMultiplier)

	// Clamped at the minimum
	for i := 0; i < 20; i++ {
		s.AdjustServings(-0.5)
	}
	assert.Equal(t, MinMultiplier, s.ServingMultiplier)
}

func TestSessionScaledIngredients(t *testing.T) {
	s := NewSession(testRecipe())
	s.AdjustServings(1) // 2x

	scaled := s.ScaledIngredients()
	require.Len(t, scaled, 3)
	assert.Equal(t, "4 cups", scaled[0].Amount)
	assert.Equal(t, "1/2 cup", scaled[1].Amount)
	assert.Equal(t, "to taste", scaled[2].Amount)

	// Display only: the stored recipe keeps its original amounts
	assert.Equal(t, "2 cups", s.Recipe.Ingredients[0].Amount)
}

func TestSessionReplaceRecipeResets(t *testing.T) {
	s := NewSession(testRecipe())
	s.Advance()
	s.ToggleIngredient(0)
	s.RemoveIngredient(1)
	s.AdjustServings(1)
	s.StartTimer(60)

	s.ReplaceRecipe(model.Recipe{
		Name:         "Updated",
		Instructions: model.InstructionList{{Step: "Only step"}},
	})

	assert.Equal(t, 0, s.CurrentStep)
	assert.Empty(t, s.CompletedSteps)
	assert.Empty(t, s.CheckedIngredients)
	assert.Empty(t, s.RemovedIngredients)
	assert.Equal(t, 1.0, s.ServingMultiplier)
	assert.Nil(t, s.Timer)
}

func TestSessionTimerLifecycle(t *testing.T) {
	s := NewSession(testRecipe())
	s.StartTimer(3)
	require.NotNil(t, s.Timer)
	assert.True(t, s.Timer.Running)

	assert.False(t, s.Tick())
	assert.Equal(t, 2, s.Timer.Remaining)

	s.PauseTimer()
	assert.False(t, s.Tick())
	assert.Equal(t, 2, s.Timer.Remaining)

	s.ResumeTimer()
	assert.False(t, s.Tick())
	assert.True(t, s.Tick(), "the finishing tick reports once")
	assert.False(t, s.Tick(), "a finished timer stops ticking")

	assert.True(t, s.Timer.Finished)
	assert.False(t, s.Timer.Running)
	assert.Equal(t, 3, s.Timer.Beeps)

	s.ResetTimer()
	assert.Equal(t, 3, s.Timer.Remaining)
	assert.False(t, s.Timer.Running)
	assert.False(t, s.Timer.Finished)
	assert.Zero(t, s.Timer.Beeps)

	s.DismissTimer()
	assert.Nil(t, s.Timer)
}

func TestStartTimerFromStep(t *testing.T) {
	s := NewSession(testRecipe())

	// Step 0 has no duration
	options, started := s.StartTimerFromStep()
	assert.Nil(t, options)
	assert.False(t, started)
	assert.Nil(t, s.Timer)

	// Step 1 has a single duration: starts immediately
	s.Jump(1)
	options, started = s.StartTimerFromStep()
	assert.Nil(t, options)
	assert.True(t, started)
	require.NotNil(t, s.Timer)
	assert.Equal(t, 5*60, s.Timer.Duration)

	// Step 2 has a range: options come back, nothing starts
	s.DismissTimer()
	s.Jump(2)
	options, started = s.StartTimerFromStep()
	assert.Equal(t, []int{5, 10}, options)
	assert.False(t, started)
	assert.Nil(t, s.Timer)
}

func TestSessionSnapshotIsIndependent(t *testing.T) {
	s := NewSession(testRecipe())
	s.Advance()
	s.StartTimer(10)

	snap := s.Snapshot()
	s.Advance()
	s.Timer.Remaining = 1

	assert.True(t, snap.CompletedSteps[0])
	assert.False(t, snap.CompletedSteps[1])
	assert.Equal(t, 10, snap.Timer.Remaining)
}
