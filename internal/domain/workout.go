package domain

import "net/url"

// Exercise is a single entry in a WorkoutPlan.
// Every field is required; a plan with a blank field never leaves the parser.
// Sets and Reps stay strings because ranges ("3-4", "8-12") and "AMRAP" are normal.
// Notes carries form cues or the "Warm-up" marker for imported warm-up items.
type Exercise struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Sets            string `json:"sets"`
	Reps            string `json:"reps"`
	Rest            string `json:"rest"`
	Notes           string `json:"notes"`
	MuscleGroup     string `json:"muscleGroup"`
	Instructions    string `json:"instructions"`
	VideoSearchTerm string `json:"videoSearchTerm"`
}

// VideoSearchURL points at a YouTube search for the exercise demonstration.
func (e Exercise) VideoSearchURL() string {
	return "https://www.youtube.com/results?search_query=" + url.QueryEscape(e.VideoSearchTerm)
}

// WorkoutPlan is the aggregate the whole system revolves around.
// Plans are replaced, never edited: every create, import or revision yields a new value.
// TotalDuration is free text ("About 55 minutes"); Exercises are in execution order.
type WorkoutPlan struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	TotalDuration string     `json:"totalDuration"`
	Difficulty    string     `json:"difficulty"`
	Exercises     []Exercise `json:"exercises"`
	Tips          []string   `json:"tips"`
}

// Clone returns a deep copy so callers can hold a snapshot that nobody else can touch.
func (p *WorkoutPlan) Clone() *WorkoutPlan {
	if p == nil {
		return nil
	}
	c := *p
	if p.Exercises != nil {
		c.Exercises = make([]Exercise, len(p.Exercises))
		copy(c.Exercises, p.Exercises)
	}
	if p.Tips != nil {
		c.Tips = make([]string, len(p.Tips))
		copy(c.Tips, p.Tips)
	}
	return &c
}
