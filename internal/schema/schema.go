// Package schema owns the one definition of what a workout plan looks like.
// The same value constrains the generative service and drives validation.
package schema

import (
	"encoding/json"
	"sync"

	"google.golang.org/genai"
)

// Field names shared by the prompt text, the schema and the validator.
const (
	FieldTitle         = "title"
	FieldDescription   = "description"
	FieldTotalDuration = "totalDuration"
	FieldDifficulty    = "difficulty"
	FieldExercises     = "exercises"
	FieldTips          = "tips"

	FieldID              = "id"
	FieldName            = "name"
	FieldSets            = "sets"
	FieldReps            = "reps"
	FieldRest            = "rest"
	FieldNotes           = "notes"
	FieldMuscleGroup     = "muscleGroup"
	FieldInstructions    = "instructions"
	FieldVideoSearchTerm = "videoSearchTerm"
)

var (
	planOnce sync.Once
	planInst *genai.Schema
)

// WorkoutPlan returns the canonical plan schema. Each call gets its own copy,
// so a caller that tweaks it cannot affect anybody else.
func WorkoutPlan() *genai.Schema {
	planOnce.Do(func() {
		planInst = buildWorkoutPlan()
	})
	return clone(planInst)
}

// JSON renders the canonical schema, for clients that want to know the shape up front.
func JSON() ([]byte, error) {
	return json.Marshal(WorkoutPlan())
}

func buildWorkoutPlan() *genai.Schema {
	exercise := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			FieldID:              str("Unique identifier for the exercise"),
			FieldName:            str("Name of the exercise"),
			FieldSets:            str("Number of sets, e.g., '3' or '3-4'"),
			FieldReps:            str("Rep range, e.g., '8-12' or 'AMRAP'"),
			FieldRest:            str("Rest period, e.g., '60s' or '90s'"),
			FieldNotes:           str("Form cues or tempo instructions"),
			FieldMuscleGroup:     str("Primary muscle worked"),
			FieldInstructions:    str("Concise step-by-step instructions on how to perform the exercise."),
			FieldVideoSearchTerm: str("Specific search term for YouTube to find a demonstration (e.g. 'Barbell Squat Form')."),
		},
	}
	exercise.PropertyOrdering = []string{
		FieldID, FieldName, FieldSets, FieldReps, FieldRest,
		FieldNotes, FieldMuscleGroup, FieldInstructions, FieldVideoSearchTerm,
	}
	exercise.Required = append([]string(nil), exercise.PropertyOrdering...)

	plan := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			FieldTitle:         str("Catchy title for the workout"),
			FieldDescription:   str("Brief overview of the session focus"),
			FieldTotalDuration: str("Estimated total time"),
			FieldDifficulty:    {Type: genai.TypeString},
			FieldExercises: {
				Type:  genai.TypeArray,
				Items: exercise,
			},
			FieldTips: {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "3-4 key tips for this specific workout",
			},
		},
	}
	plan.PropertyOrdering = []string{
		FieldTitle, FieldDescription, FieldTotalDuration,
		FieldDifficulty, FieldExercises, FieldTips,
	}
	plan.Required = append([]string(nil), plan.PropertyOrdering...)
	return plan
}

func str(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

// clone deep-copies the parts of a schema this package sets.
func clone(s *genai.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	c := &genai.Schema{
		Type:        s.Type,
		Description: s.Description,
		Items:       clone(s.Items),
	}
	if s.Required != nil {
		c.Required = append([]string(nil), s.Required...)
	}
	if s.PropertyOrdering != nil {
		c.PropertyOrdering = append([]string(nil), s.PropertyOrdering...)
	}
	if s.Enum != nil {
		c.Enum = append([]string(nil), s.Enum...)
	}
	if s.Properties != nil {
		c.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			c.Properties[name] = clone(prop)
		}
	}
	return c
}
