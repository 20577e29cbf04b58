package service

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/souschef-app/backend/internal/model"
)

// JSONExtractor recovers a structured recipe from the completion service's
// free-form text reply. LLM output is near-JSON at best: it arrives wrapped
// in prose or markdown fences, with raw newlines inside string values and
// trailing commas. Extraction never hard-fails; the worst case is "no recipe
// found" with the original text passed through.
type JSONExtractor struct{}

// NewJSONExtractor creates a new JSONExtractor instance
func NewJSONExtractor() *JSONExtractor {
	return &JSONExtractor{}
}

var (
	fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*([\\{\\[].*?[\\}\\]])\\s*```")
	preamblePattern    = regexp.MustCompile(`(?i)(here'?s? (?:is )?(?:the |your |a )?recipe[^.!\n]*[.:!]?|i'?ve (?:created|made|prepared) [^.!\n]*[.:!]?)`)
)

// Chat text longer than this after the JSON is removed is almost always
// leftover model rambling, so it gets replaced with a canned acknowledgement.
const maxChatMessageLen = 100

const cannedAcknowledgement = "Here's your recipe! Let me know if you'd like any changes."

// ExtractRecipe locates a recipe JSON object embedded in text, parses it
// (repairing if needed) and returns the recipe plus the chat message with
// the JSON removed. A nil recipe means no usable recipe was found, in which
// case the message is the input text unmodified.
func (e *JSONExtractor) ExtractRecipe(text string) (*model.Recipe, string) {
	candidate, span, ok := findJSONCandidate(text)
	if !ok {
		return nil, text
	}

	recipe, ok := e.parseRecipe(candidate)
	if !ok {
		return nil, text
	}

	if recipe.ID == "" {
		recipe.ID = uuid.New().String()
	}

	message := cleanChatMessage(text, span)
	return recipe, message
}

// ExtractRecipes is the meal-plan variant: it recovers an array of recipes
// (possibly a very large one) from the reply, either as a bare JSON array or
// under a "recipes" key. The same character-level repair pass applies, which
// covers every string value in the structure.
func (e *JSONExtractor) ExtractRecipes(text string) []model.Recipe {
	candidate, _, ok := findJSONCandidate(text)
	if !ok {
		return nil
	}

	raw := []byte(candidate)

	var wrapper struct {
		Recipes []model.Recipe `json:"recipes"`
	}
	var list []model.Recipe

	parse := func(data []byte) []model.Recipe {
		if strings.HasPrefix(strings.TrimSpace(string(data)), "[") {
			if err := json.Unmarshal(data, &list); err == nil {
				return list
			}
			return nil
		}
		if err := json.Unmarshal(data, &wrapper); err == nil && len(wrapper.Recipes) > 0 {
			return wrapper.Recipes
		}
		return nil
	}

	if recipes := parse(raw); recipes != nil {
		return assignIDs(recipes)
	}

	repaired := RepairJSON(candidate)
	if recipes := parse([]byte(repaired)); recipes != nil {
		return assignIDs(recipes)
	}

	log.Printf("[JSONExtractor] failed to parse recipe list from reply (%d bytes)", len(text))
	return nil
}

func assignIDs(recipes []model.Recipe) []model.Recipe {
	for i := range recipes {
		if recipes[i].ID == "" {
			recipes[i].ID = uuid.New().String()
		}
	}
	return recipes
}

// parseRecipe attempts a direct parse, then one repaired parse. The result
// must carry at least a non-empty name and an array-typed ingredients field
// to count as a recipe.
func (e *JSONExtractor) parseRecipe(candidate string) (*model.Recipe, bool) {
	if recipe, ok := decodeRecipe([]byte(candidate)); ok {
		return recipe, true
	}

	repaired := RepairJSON(candidate)
	if recipe, ok := decodeRecipe([]byte(repaired)); ok {
		log.Printf("[JSONExtractor] recovered recipe JSON via repair pass")
		return recipe, true
	}

	return nil, false
}

func decodeRecipe(data []byte) (*model.Recipe, bool) {
	// Probe the minimum contract first: non-empty name, array ingredients.
	var probe struct {
		Name        string          `json:"name"`
		Ingredients json.RawMessage `json:"ingredients"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, false
	}
	if probe.Name == "" || !strings.HasPrefix(strings.TrimSpace(string(probe.Ingredients)), "[") {
		return nil, false
	}

	var recipe model.Recipe
	if err := json.Unmarshal(data, &recipe); err != nil {
		return nil, false
	}
	return &recipe, true
}

// span marks where the JSON (including any fences) sits in the source text
type span struct {
	start, end int
}

// findJSONCandidate returns the JSON text to parse and the region of the
// original reply it occupies. Fenced code blocks win; otherwise the greedy
// match from the earliest opening bracket to its matching last close is used,
// so a bare array of objects is taken whole rather than from its first '{'.
func findJSONCandidate(text string) (string, span, bool) {
	if loc := fencedBlockPattern.FindStringSubmatchIndex(text); loc != nil {
		return text[loc[2]:loc[3]], span{loc[0], loc[1]}, true
	}

	objStart := strings.IndexByte(text, '{')
	arrStart := strings.IndexByte(text, '[')

	start, close := objStart, byte('}')
	if arrStart >= 0 && (objStart < 0 || arrStart < objStart) {
		start, close = arrStart, ']'
	}

	if start < 0 {
		return "", span{}, false
	}

	end := strings.LastIndexByte(text, close)
	if end <= start {
		return "", span{}, false
	}
	return text[start : end+1], span{start, end + 1}, true
}

// cleanChatMessage strips the JSON region and any "here's the recipe"-style
// preamble from the reply, falling back to a canned acknowledgement when the
// remainder is empty or implausibly long.
func cleanChatMessage(text string, s span) string {
	message := text[:s.start] + text[s.end:]
	message = preamblePattern.ReplaceAllString(message, "")
	message = strings.TrimSpace(message)
	message = strings.Trim(message, ":")
	message = strings.TrimSpace(message)

	if message == "" || len(message) > maxChatMessageLen {
		return cannedAcknowledgement
	}
	return message
}

// RepairJSON applies a best-effort character-level repair to near-valid JSON:
// inside string literals raw newline, carriage-return and tab characters are
// replaced with their escape sequences; outside them trailing commas before
// '}' or ']' are dropped. The scanner tracks exactly two states, in-string
// and not-in-string, honoring escape sequences. Running it on already-valid
// JSON returns the input byte for byte.
func RepairJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			if escaped {
				b.WriteByte(c)
				escaped = false
				continue
			}
			switch c {
			case '\\':
				b.WriteByte(c)
				escaped = true
			case '"':
				inString = false
				b.WriteByte(c)
			case '\n':
				b.WriteString(`\n`)
			case '\r':
				b.WriteString(`\r`)
			case '\t':
				b.WriteString(`\t`)
			default:
				b.WriteByte(c)
			}
			continue
		}

		switch c {
		case '"':
			inString = true
			b.WriteByte(c)
		case ',':
			// Drop the comma when the next non-whitespace closes a scope.
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\n' || s[j] == '\r' || s[j] == '\t') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}
