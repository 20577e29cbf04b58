package cooking

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/souschef-app/backend/internal/model"
)

// Serving multiplier bounds, adjusted in half-serving steps
const (
	MinMultiplier  = 0.5
	MaxMultiplier  = 4.0
	MultiplierStep = 0.5
)

// Number of beeps the finished-timer notification carries
const timerBeeps = 3

// Timer is the optional countdown attached to a session
type Timer struct {
	Duration  int  `json:"duration_seconds"`
	Remaining int  `json:"remaining_seconds"`
	Running   bool `json:"running"`
	Finished  bool `json:"finished"`
	Beeps     int  `json:"beeps,omitempty"`
}

// Session is the guided cooking state for a single recipe instance. It is
// driven by UI events one at a time; the Manager serializes access.
type Session struct {
	ID                 string        `json:"id"`
	Recipe             model.Recipe  `json:"recipe"`
	CurrentStep        int           `json:"current_step"`
	CompletedSteps     map[int]bool  `json:"completed_steps"`
	CheckedIngredients map[int]bool  `json:"checked_ingredients"`
	RemovedIngredients map[int]bool  `json:"removed_ingredients"`
	ServingMultiplier  float64       `json:"serving_multiplier"`
	Timer              *Timer        `json:"timer,omitempty"`
}

// NewSession starts a fresh guided session at step 0 with nothing checked
// and the recipe's own serving size
func NewSession(recipe model.Recipe) *Session {
	return &Session{
		ID:                 uuid.New().String(),
		Recipe:             recipe,
		CurrentStep:        0,
		CompletedSteps:     make(map[int]bool),
		CheckedIngredients: make(map[int]bool),
		RemovedIngredients: make(map[int]bool),
		ServingMultiplier:  1,
	}
}

func (s *Session) lastStep() int {
	if len(s.Recipe.Instructions) == 0 {
		return 0
	}
	return len(s.Recipe.Instructions) - 1
}

// Advance moves to the next step, clamped at the last one. The step being
// left is marked completed either way, so advancing from the final step
// completes it without moving.
func (s *Session) Advance() {
	s.CompletedSteps[s.CurrentStep] = true
	if s.CurrentStep < s.lastStep() {
		s.CurrentStep++
	}
}

// Retreat moves to the previous step, clamped at 0. Completion state is
// left alone.
func (s *Session) Retreat() {
	if s.CurrentStep > 0 {
		s.CurrentStep--
	}
}

// Jump navigates directly to a step (overview strip) with no side effect on
// completion state
func (s *Session) Jump(step int) {
	if step < 0 {
		step = 0
	}
	if step > s.lastStep() {
		step = s.lastStep()
	}
	s.CurrentStep = step
}

// ToggleIngredient flips the checked state of an ingredient
func (s *Session) ToggleIngredient(index int) {
	if index < 0 || index >= len(s.Recipe.Ingredients) {
		return
	}
	if s.CheckedIngredients[index] {
		delete(s.CheckedIngredients, index)
	} else {
		s.CheckedIngredients[index] = true
	}
}

// RemoveIngredient marks an ingredient as unavailable. The recipe itself is
// untouched; the returned message is handed to the chat flow to ask for a
// substitute.
func (s *Session) RemoveIngredient(index int) (string, bool) {
	if index < 0 || index >= len(s.Recipe.Ingredients) {
		return "", false
	}
	s.RemovedIngredients[index] = true
	return fmt.Sprintf("I don't have %s, what can I substitute?", s.Recipe.Ingredients[index].Name), true
}

// RestoreIngredient undoes a removal
func (s *Session) RestoreIngredient(index int) {
	delete(s.RemovedIngredients, index)
}

// AdjustServings changes the multiplier by delta, snapped to half-serving
// steps and clamped to [0.5, 4]
func (s *Session) AdjustServings(delta float64) {
	m := s.ServingMultiplier + delta
	m = float64(int(m/MultiplierStep+0.5*sign(m))) * MultiplierStep
	if m < MinMultiplier {
		m = MinMultiplier
	}
	if m > MaxMultiplier {
		m = MaxMultiplier
	}
	s.ServingMultiplier = m
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}

// ScaledIngredients returns the ingredient list with amounts scaled for
// display. The stored recipe is never mutated.
func (s *Session) ScaledIngredients() []model.Ingredient {
	scaled := make([]model.Ingredient, len(s.Recipe.Ingredients))
	for i, ing := range s.Recipe.Ingredients {
		scaled[i] = model.Ingredient{
			Name:   ing.Name,
			Amount: ScaleAmount(ing.Amount, s.ServingMultiplier),
		}
	}
	return scaled
}

// ReplaceRecipe swaps in a new recipe (e.g. an AI edit arrived) and resets
// the whole session: prior step and ingredient progress cannot be trusted
// to still apply.
func (s *Session) ReplaceRecipe(recipe model.Recipe) {
	s.Recipe = recipe
	s.CurrentStep = 0
	s.CompletedSteps = make(map[int]bool)
	s.CheckedIngredients = make(map[int]bool)
	s.RemovedIngredients = make(map[int]bool)
	s.ServingMultiplier = 1
	s.Timer = nil
}

// StartTimer starts a countdown of the given number of seconds
func (s *Session) StartTimer(seconds int) {
	if seconds <= 0 {
		return
	}
	s.Timer = &Timer{
		Duration:  seconds,
		Remaining: seconds,
		Running:   true,
	}
}

// StartTimerFromStep inspects the current step's text for a duration. A
// single detected value starts the timer immediately and returns no
// options; a range returns the selectable minute values without starting
// anything.
func (s *Session) StartTimerFromStep() (options []int, started bool) {
	if len(s.Recipe.Instructions) == 0 {
		return nil, false
	}

	minutes := DetectDurations(s.Recipe.Instructions[s.CurrentStep].Step)
	switch len(minutes) {
	case 0:
		return nil, false
	case 1:
		s.StartTimer(minutes[0] * 60)
		return nil, true
	default:
		return minutes, false
	}
}

// PauseTimer pauses the countdown
func (s *Session) PauseTimer() {
	if s.Timer != nil {
		s.Timer.Running = false
	}
}

// ResumeTimer resumes a paused countdown
func (s *Session) ResumeTimer() {
	if s.Timer != nil && !s.Timer.Finished && s.Timer.Remaining > 0 {
		s.Timer.Running = true
	}
}

// ResetTimer restores the countdown to its full duration, paused
func (s *Session) ResetTimer() {
	if s.Timer != nil {
		s.Timer.Remaining = s.Timer.Duration
		s.Timer.Running = false
		s.Timer.Finished = false
		s.Timer.Beeps = 0
	}
}

// DismissTimer removes the timer entirely
func (s *Session) DismissTimer() {
	s.Timer = nil
}

// Snapshot returns a copy safe to serialize after the manager lock is
// released
func (s *Session) Snapshot() Session {
	out := *s
	out.CompletedSteps = copyIntSet(s.CompletedSteps)
	out.CheckedIngredients = copyIntSet(s.CheckedIngredients)
	out.RemovedIngredients = copyIntSet(s.RemovedIngredients)
	if s.Timer != nil {
		t := *s.Timer
		out.Timer = &t
	}
	return out
}

func copyIntSet(m map[int]bool) map[int]bool {
	out := make(map[int]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Tick advances a running timer by one second. On reaching zero the timer
// stops and the multi-beep notification is recorded for the client to play.
// Returns true exactly once, on the tick that finishes the countdown.
func (s *Session) Tick() bool {
	t := s.Timer
	if t == nil || !t.Running {
		return false
	}

	t.Remaining--
	if t.Remaining > 0 {
		return false
	}

	t.Remaining = 0
	t.Running = false
	t.Finished = true
	t.Beeps = timerBeeps
	return true
}
