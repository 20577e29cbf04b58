package service

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const veggieWrapReply = `Here's a fresh recipe for you: {"name": "Veggie Wrap", "description": "A quick lunch wrap", "emoji": "🌯", "time_to_cook": "10 minutes", "servings": "2", "difficulty": "Easy", "ingredients": [{"name": "tortilla", "amount": "2"}, {"name": "hummus", "amount": "1/2 cup"}], "instructions": [{"step": "Spread the hummus"}, {"step": "Roll the wrap"}]} Enjoy!`

func TestExtractRecipeFromProse(t *testing.T) {
	e := NewJSONExtractor()

	recipe, message := e.ExtractRecipe(veggieWrapReply)
	require.NotNil(t, recipe)
	assert.Equal(t, "Veggie Wrap", recipe.Name)
	assert.Len(t, recipe.Ingredients, 2)
	assert.NotEmpty(t, recipe.ID, "extracted recipes get an ID")

	assert.NotContains(t, message, "{", "chat message carries no JSON")
	assert.NotContains(t, message, "}")
}

func TestExtractRecipeFromFencedBlock(t *testing.T) {
	e := NewJSONExtractor()

	text := "Sure!\n```json\n{\"name\": \"Pancakes\", \"ingredients\": [{\"name\": \"flour\", \"amount\": \"2 cups\"}], \"instructions\": [{\"step\": \"Mix\"}]}\n```\nEnjoy."
	recipe, message := e.ExtractRecipe(text)
	require.NotNil(t, recipe)
	assert.Equal(t, "Pancakes", recipe.Name)
	assert.NotContains(t, message, "```")
}

func TestExtractRecipeRepairsRawNewlines(t *testing.T) {
	e := NewJSONExtractor()

	// A raw newline inside a string value is invalid JSON until repaired
	text := "{\"name\": \"Soup\", \"description\": \"warm\nand cozy\", \"ingredients\": [{\"name\": \"broth\", \"amount\": \"4 cups\"}], \"instructions\": [{\"step\": \"Simmer\"}]}"
	recipe, _ := e.ExtractRecipe(text)
	require.NotNil(t, recipe)
	assert.Equal(t, "warm\nand cozy", recipe.Description)
}

func TestExtractRecipeRepairsTrailingCommas(t *testing.T) {
	e := NewJSONExtractor()

	text := `{"name": "Salad", "ingredients": [{"name": "lettuce", "amount": "1 head"},], "instructions": [{"step": "Toss"},],}`
	recipe, _ := e.ExtractRecipe(text)
	require.NotNil(t, recipe)
	assert.Equal(t, "Salad", recipe.Name)
}

func TestExtractRecipeNoJSONPassesTextThrough(t *testing.T) {
	e := NewJSONExtractor()

	text := "I'd suggest adding more garlic to deepen the flavor."
	recipe, message := e.ExtractRecipe(text)
	assert.Nil(t, recipe)
	assert.Equal(t, text, message)
}

func TestExtractRecipeRejectsNonRecipeJSON(t *testing.T) {
	e := NewJSONExtractor()

	text := `The nutrition breakdown is {"calories": 300, "protein": 12}.`
	recipe, message := e.ExtractRecipe(text)
	assert.Nil(t, recipe)
	assert.Equal(t, text, message)
}

func TestExtractRecipeCannedMessageWhenRemainderIsNoise(t *testing.T) {
	e := NewJSONExtractor()

	long := strings.Repeat("And here is a lot of rambling about the dish. ", 10)
	text := `{"name": "Stew", "ingredients": [{"name": "beef", "amount": "1 lb"}], "instructions": [{"step": "Braise"}]}` + long
	_, message := e.ExtractRecipe(text)
	assert.Equal(t, cannedAcknowledgement, message)

	// Empty remainder gets the same treatment
	_, message = e.ExtractRecipe(`{"name": "Stew", "ingredients": [{"name": "beef", "amount": "1 lb"}], "instructions": [{"step": "Braise"}]}`)
	assert.Equal(t, cannedAcknowledgement, message)
}

func TestExtractRecipes(t *testing.T) {
	e := NewJSONExtractor()

	t.Run("bare array", func(t *testing.T) {
		text := `[{"name": "A", "ingredients": [], "instructions": []}, {"name": "B", "ingredients": [], "instructions": []}]`
		recipes := e.ExtractRecipes(text)
		require.Len(t, recipes, 2)
		assert.Equal(t, "A", recipes[0].Name)
		assert.NotEmpty(t, recipes[1].ID)
	})

	t.Run("recipes wrapper", func(t *testing.T) {
		text := `Here you go: {"recipes": [{"name": "A", "ingredients": [], "instructions": []}]}`
		recipes := e.ExtractRecipes(text)
		require.Len(t, recipes, 1)
	})

	t.Run("no JSON", func(t *testing.T) {
		assert.Nil(t, e.ExtractRecipes("nothing to see here"))
	})
}

func TestRepairJSONIdempotentOnValidInput(t *testing.T) {
	valid := `{"name": "Tacos", "note": "uses \"fresh\" corn", "tags": ["quick", "easy"]}`
	require.True(t, json.Valid([]byte(valid)))

	assert.Equal(t, valid, RepairJSON(valid), "valid JSON passes through byte for byte")

	broken := "{\"a\": \"line\none\",\n\"b\": [1, 2,],}"
	once := RepairJSON(broken)
	assert.True(t, json.Valid([]byte(once)))
	assert.Equal(t, once, RepairJSON(once), "repair is idempotent")
}

func TestRepairJSONHonorsEscapes(t *testing.T) {
	// An escaped quote must not flip the in-string state
	in := `{"a": "he said \"hi\",", "b": "x"}`
	assert.Equal(t, in, RepairJSON(in))

	// Tabs and carriage returns inside strings are escaped too
	out := RepairJSON("{\"a\": \"col1\tcol2\r\"}")
	assert.True(t, json.Valid([]byte(out)))
	assert.Contains(t, out, `\t`)
	assert.Contains(t, out, `\r`)
}
