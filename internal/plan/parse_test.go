package plan_test

import (
	"encoding/json"
	"testing"

	"alcyxob/flexplan/internal/domain"
	"alcyxob/flexplan/internal/plan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullPlan() *domain.WorkoutPlan {
	return &domain.WorkoutPlan{
		Title:         "Upper <Body> & Core",
		Description:   "Push/pull superset session",
		TotalDuration: "~45 min",
		Difficulty:    "Intermediate",
		Exercises: []domain.Exercise{
			{
				ID: "1", Name: "Jumping Jacks", Sets: "1", Reps: "60s", Rest: "0s",
				Notes: "Warm-up", MuscleGroup: "Full Body",
				Instructions: "Jump feet out while raising arms, return.", VideoSearchTerm: "Jumping Jacks Proper Form",
			},
			{
				ID: "2", Name: "Pull-up", Sets: "3-4", Reps: "AMRAP", Rest: "90s",
				Notes: "Full range", MuscleGroup: "Lats",
				Instructions: "Hang, pull chin over bar, lower under control.", VideoSearchTerm: "Strict Pull Up Form",
			},
		},
		Tips: []string{"Breathe out on effort", "Rest 90s \"between\" sets", "日本語 is fine too"},
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// mutate decodes the full plan into a generic map, lets f edit it, and re-encodes.
func mutate(t *testing.T, f func(doc map[string]any)) string {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(mustJSON(t, fullPlan())), &doc))
	f(doc)
	return mustJSON(t, doc)
}

func firstExercise(doc map[string]any) map[string]any {
	return doc["exercises"].([]any)[0].(map[string]any)
}

func TestParse_RoundTripsExactly(t *testing.T) {
	want := fullPlan()

	got, err := plan.Parse(mustJSON(t, want))

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParse_IsIdempotent(t *testing.T) {
	first, err := plan.Parse(mustJSON(t, fullPlan()))
	require.NoError(t, err)

	raw, err := plan.Marshal(first)
	require.NoError(t, err)
	second, err := plan.Parse(string(raw))

	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, string(raw), "Upper <Body> & Core")
}

func TestParse_EmptyExercisesAndTips(t *testing.T) {
	raw := `{"title":"Rest Day","description":"Recover","totalDuration":"0 min","difficulty":"Beginner","exercises":[],"tips":[]}`

	got, err := plan.Parse(raw)

	require.NoError(t, err)
	assert.NotNil(t, got.Exercises)
	assert.Empty(t, got.Exercises)
	assert.Empty(t, got.Tips)
}

func TestParse_StripsCodeFence(t *testing.T) {
	raw := "```json\n" + mustJSON(t, fullPlan()) + "\n```"

	got, err := plan.Parse(raw)

	require.NoError(t, err)
	assert.Equal(t, fullPlan(), got)
}

func TestParse_IgnoresUnknownFields(t *testing.T) {
	raw := mutate(t, func(doc map[string]any) {
		doc["calories"] = 450
		firstExercise(doc)["tempo"] = "3-1-1"
	})

	got, err := plan.Parse(raw)

	require.NoError(t, err)
	assert.Equal(t, fullPlan(), got)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{not json"},
		{"plain text", "Here is your workout!"},
		{"empty", "   "},
		{"top level array", "[]"},
		{"trailing data", mustJSON(t, fullPlan()) + ` {"x":1}`},
		{"missing title", mutate(t, func(doc map[string]any) { delete(doc, "title") })},
		{"empty title", mutate(t, func(doc map[string]any) { doc["title"] = "" })},
		{"missing tips", mutate(t, func(doc map[string]any) { delete(doc, "tips") })},
		{"exercises not a sequence", mutate(t, func(doc map[string]any) { doc["exercises"] = "bench, squat" })},
		{"exercises null", mutate(t, func(doc map[string]any) { doc["exercises"] = nil })},
		{"exercise missing instructions", mutate(t, func(doc map[string]any) { delete(firstExercise(doc), "instructions") })},
		{"exercise missing videoSearchTerm", mutate(t, func(doc map[string]any) { delete(firstExercise(doc), "videoSearchTerm") })},
		{"exercise blank id", mutate(t, func(doc map[string]any) { firstExercise(doc)["id"] = " " })},
		{"sets as number", mutate(t, func(doc map[string]any) { firstExercise(doc)["sets"] = 3 })},
		{"exercise not an object", mutate(t, func(doc map[string]any) { doc["exercises"] = []any{"Squat"} })},
		{"case variant title overrides", mutate(t, func(doc map[string]any) { doc["Title"] = "" })},
		{"case variant exercises override", mutate(t, func(doc map[string]any) {
			doc["Exercises"] = []any{map[string]any{"id": "1"}, map[string]any{"ID": "2"}}
		})},
		{"case variant exercise field", mutate(t, func(doc map[string]any) { firstExercise(doc)["INSTRUCTIONS"] = "" })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := plan.Parse(tt.raw)

			assert.Nil(t, got)
			var malformed *plan.MalformedPlanError
			require.ErrorAs(t, err, &malformed)
			assert.True(t, plan.IsMalformedPlan(err))
		})
	}
}

func TestParse_CaseVariantKeysCannotReplaceCheckedValues(t *testing.T) {
	raw := mustJSON(t, fullPlan())
	raw = raw[:len(raw)-1] + `,"Title":"","Exercises":[{"id":"1"},{"ID":"2"}]}`

	got, err := plan.Parse(raw)

	assert.Nil(t, got)
	assert.True(t, plan.IsMalformedPlan(err))
	assert.Contains(t, err.Error(), "only by case")
}

func TestDuplicateIDs(t *testing.T) {
	p := fullPlan()
	assert.Empty(t, plan.DuplicateIDs(p))

	p.Exercises = append(p.Exercises, p.Exercises[0], p.Exercises[0], p.Exercises[1])
	assert.Equal(t, []string{"1", "2"}, plan.DuplicateIDs(p))
	assert.Nil(t, plan.DuplicateIDs(nil))
}
