package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// FreeText unmarshals from either a JSON string or a bare number. The
// completion service is inconsistent about quoting values like servings and
// cook times, so these fields parse both forms instead of failing.
type FreeText string

func (f *FreeText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FreeText(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*f = FreeText(num.String())
		return nil
	}

	return fmt.Errorf("invalid free-text value: %s", data)
}

// Ingredient is a single recipe ingredient with an optional amount
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount,omitempty"`
}

// UnmarshalJSON accepts both the object form {"name":...,"amount":...} and
// the plain string form ("2 cups flour") the LLM sometimes produces.
func (ing *Ingredient) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*ing = Ingredient{Name: s}
		return nil
	}

	var obj struct {
		Name   string   `json:"name"`
		Amount FreeText `json:"amount"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*ing = Ingredient{Name: obj.Name, Amount: string(obj.Amount)}
	return nil
}

// Instruction is a single recipe step with an optional tip
type Instruction struct {
	Step string `json:"step"`
	Tip  string `json:"tip,omitempty"`
}

// UnmarshalJSON accepts both the object form {"step":...,"tip":...} and a
// plain string step
func (ins *Instruction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*ins = Instruction{Step: s}
		return nil
	}

	var obj struct {
		Step string `json:"step"`
		Tip  string `json:"tip,omitempty"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*ins = Instruction{Step: obj.Step, Tip: obj.Tip}
	return nil
}

// Nutrition holds free-text nutrition values as the LLM reports them
type Nutrition struct {
	Calories FreeText `json:"calories,omitempty"`
	Protein  FreeText `json:"protein,omitempty"`
	Carbs    FreeText `json:"carbs,omitempty"`
	Fat      FreeText `json:"fat,omitempty"`
}

// IngredientList is a JSONB-backed list of ingredients
type IngredientList []Ingredient

func (l IngredientList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal(l)
}

func (l *IngredientList) Scan(value interface{}) error {
	if value == nil {
		*l = IngredientList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// InstructionList is a JSONB-backed list of instructions
type InstructionList []Instruction

func (l InstructionList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal(l)
}

func (l *InstructionList) Scan(value interface{}) error {
	if value == nil {
		*l = InstructionList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Recipe is the shared recipe shape exchanged with the LLM, the client and
// the persistence layer. It is stored as a JSONB document, never as its own
// table.
type Recipe struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	Emoji        string           `json:"emoji,omitempty"`
	ImageURL     string           `json:"image_url,omitempty"`
	TimeToCook   FreeText         `json:"time_to_cook,omitempty"`
	Servings     FreeText         `json:"servings,omitempty"`
	Difficulty   string           `json:"difficulty,omitempty"`
	Rating       float64          `json:"rating,omitempty"`
	Tags         JSONBStringArray `json:"tags,omitempty"`
	Ingredients  IngredientList   `json:"ingredients"`
	Instructions InstructionList  `json:"instructions"`
	Tips         JSONBStringArray `json:"tips,omitempty"`
	Nutrition    *Nutrition       `json:"nutrition,omitempty"`
}

// Value implements the driver.Valuer interface so a Recipe can be stored as
// a JSONB column
func (r Recipe) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements the sql.Scanner interface
func (r *Recipe) Scan(value interface{}) error {
	if value == nil {
		*r = Recipe{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for Recipe", value)
	}

	return json.Unmarshal(bytes, r)
}

// IsComplete reports whether the recipe has the ingredients and instructions
// a user can actually cook from. Lightweight meal-plan recipes fail this
// until the detail fill completes.
func (r *Recipe) IsComplete() bool {
	return len(r.Ingredients) > 0 && len(r.Instructions) > 0
}
