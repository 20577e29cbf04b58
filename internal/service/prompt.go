package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/souschef-app/backend/internal/model"
)

// ChatMessage is one turn of the client conversation, passed through to the
// completion service untouched.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PromptBuilder assembles the natural-language instruction blocks sent to
// the completion service. It is pure string construction: user free text is
// interpolated directly, and allergy/dietary lines are rendered as hard
// constraints even though only the upstream model can actually honor them.
type PromptBuilder struct{}

// NewPromptBuilder creates a new PromptBuilder instance
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

const recipeJSONFormat = `Respond with a short friendly message followed by the recipe as a JSON object with this structure:
{
    "name": "Recipe name",
    "description": "Brief description of the recipe",
    "emoji": "A single emoji for the dish",
    "time_to_cook": "e.g. 30 minutes",
    "servings": "e.g. 4",
    "difficulty": "Easy, Medium or Hard",
    "tags": ["tag1", "tag2"],
    "ingredients": [
        {"name": "flour", "amount": "2 cups"},
        {"name": "sugar", "amount": "1 cup"}
    ],
    "instructions": [
        {"step": "Mix the dry ingredients", "tip": "Sift for a lighter texture"},
        {"step": "Bake at 350°F for 30 minutes"}
    ],
    "tips": ["Serve warm"],
    "nutrition": {"calories": "350 kcal", "protein": "15g", "carbs": "45g", "fat": "12g"}
}

The difficulty field MUST be Easy, Medium or Hard.
Keep the message before the JSON under one sentence.`

// BuildChatPrompt builds the system prompt for the conversational recipe
// flow. currentRecipe, availableIngredients and removedIngredients are all
// optional.
func (b *PromptBuilder) BuildChatPrompt(prefs *model.UserPreferences, currentRecipe *model.Recipe, availableIngredients, removedIngredients []string) string {
	var sb strings.Builder

	sb.WriteString("You are a friendly professional chef helping a home cook. ")
	sb.WriteString(recipeJSONFormat)
	sb.WriteString("\n")

	b.writePreferences(&sb, prefs)

	if len(availableIngredients) > 0 {
		sb.WriteString("\nIngredients the user has available: ")
		sb.WriteString(strings.Join(availableIngredients, ", "))
		sb.WriteString(".")
	}

	if len(removedIngredients) > 0 {
		sb.WriteString("\nThe user does NOT have these ingredients, suggest substitutes instead: ")
		sb.WriteString(strings.Join(removedIngredients, ", "))
		sb.WriteString(".")
	}

	if currentRecipe != nil {
		// The recipe under discussion is embedded verbatim so modifications
		// keep every field the user is not asking to change.
		if data, err := json.Marshal(currentRecipe); err == nil {
			sb.WriteString("\n\nThe user is working with this recipe. When they ask for changes, return the FULL modified recipe JSON, keeping unchanged fields as they are:\n")
			sb.Write(data)
		}
	}

	return sb.String()
}

// BuildSearchPrompt builds the system prompt for one-shot recipe search
func (b *PromptBuilder) BuildSearchPrompt(prefs *model.UserPreferences, availableIngredients []string) string {
	var sb strings.Builder

	sb.WriteString("You are a professional chef. Generate exactly one recipe for the user's request. ")
	sb.WriteString(recipeJSONFormat)
	sb.WriteString("\n")

	b.writePreferences(&sb, prefs)

	if len(availableIngredients) > 0 {
		sb.WriteString("\nPrefer ingredients the user already has: ")
		sb.WriteString(strings.Join(availableIngredients, ", "))
		sb.WriteString(".")
	}

	return sb.String()
}

// BuildDetailPrompt builds the prompt that fills in a lightweight meal-plan
// recipe: the name/description survive, everything else is generated.
func (b *PromptBuilder) BuildDetailPrompt(prefs *model.UserPreferences, recipe *model.Recipe) string {
	var sb strings.Builder

	sb.WriteString("You are a professional chef. Complete the following recipe outline into a full recipe. Keep the name and description exactly as given. ")
	sb.WriteString(recipeJSONFormat)
	sb.WriteString("\n")

	b.writePreferences(&sb, prefs)

	if data, err := json.Marshal(recipe); err == nil {
		sb.WriteString("\nRecipe outline to complete:\n")
		sb.Write(data)
	}

	return sb.String()
}

// writePreferences renders the user's preferences into constraint lines.
// Allergies come first and are phrased as absolute.
func (b *PromptBuilder) writePreferences(sb *strings.Builder, prefs *model.UserPreferences) {
	if prefs == nil {
		return
	}

	if len(prefs.Allergies) > 0 {
		sb.WriteString("\nCRITICAL FOOD ALLERGIES - ABSOLUTELY DO NOT include or suggest any of the following, in any form: ")
		sb.WriteString(strings.Join(prefs.Allergies, ", "))
		sb.WriteString(".")
	}

	if len(prefs.DietaryRestrictions) > 0 {
		sb.WriteString("\nDietary restrictions - ABSOLUTELY DO NOT violate: ")
		sb.WriteString(strings.Join(prefs.DietaryRestrictions, ", "))
		sb.WriteString(".")
	}

	if prefs.NumPeople > 0 {
		fmt.Fprintf(sb, "\nThe recipe should serve %d people.", prefs.NumPeople)
	}

	household := make([]string, 0, 2)
	if prefs.HasPartner {
		household = append(household, "a partner")
	}
	if prefs.HasKids {
		if len(prefs.KidsAges) > 0 {
			household = append(household, "kids aged "+strings.Join(prefs.KidsAges, ", "))
		} else {
			household = append(household, "kids")
		}
	}
	if len(household) > 0 {
		sb.WriteString("\nThe household includes ")
		sb.WriteString(strings.Join(household, " and "))
		sb.WriteString(".")
	}

	if len(prefs.Equipment) > 0 {
		sb.WriteString("\nAvailable kitchen equipment: ")
		sb.WriteString(strings.Join(prefs.Equipment, ", "))
		sb.WriteString(". Only use equipment from this list.")
	}

	if len(prefs.HealthGoals) > 0 {
		sb.WriteString("\nHealth goals to keep in mind: ")
		sb.WriteString(strings.Join(prefs.HealthGoals, ", "))
		sb.WriteString(".")
	}
}
