package domain

// Goal is the training goal a user picks when asking for a new plan.
type Goal string

const (
	GoalStrength    Goal = "Strength"
	GoalHypertrophy Goal = "Hypertrophy"
	GoalEndurance   Goal = "Endurance"
	GoalWeightLoss  Goal = "Weight Loss"
	GoalFlexibility Goal = "Flexibility"
)

// Difficulty is the user's self-reported training level.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// Equipment describes what the user has access to.
type Equipment string

const (
	EquipmentGym           Equipment = "Gym"
	EquipmentDumbbellsOnly Equipment = "Dumbbells Only"
	EquipmentBodyweight    Equipment = "Bodyweight"
	EquipmentHomeGym       Equipment = "Home Gym"
)

// Duration bounds offered to users, in minutes.
const (
	MinDurationMinutes = 15
	MaxDurationMinutes = 120
)

// UserPreferences is what the user submits to get a fresh plan.
// It is a value: build it, hand it to the prompt builder, never change it.
type UserPreferences struct {
	Goal       Goal       `json:"goal"`
	Difficulty Difficulty `json:"difficulty"`
	Equipment  Equipment  `json:"equipment"`
	Duration   int        `json:"duration"` // minutes
	FocusArea  string     `json:"focusArea"`
	Notes      string     `json:"notes"`    // injuries, likes, dislikes; may be empty
}

// DefaultPreferences mirrors the initial state of the preference form.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		Goal:       GoalHypertrophy,
		Difficulty: DifficultyIntermediate,
		Equipment:  EquipmentGym,
		Duration:   60,
		FocusArea:  "Full Body",
		Notes:      "",
	}
}
