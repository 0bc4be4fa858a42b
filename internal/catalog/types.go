package catalog

// The course catalog is a four-deep hierarchy: a Language owns Levels, a
// Level owns Skills, a Skill owns Contents, and a Content owns Activities.
// Every parent link is optional; an empty parent ID detaches a node from the
// chain above it. CalculatedTotalTime on each node is derived state written
// only by the cascade recalculation; it is never authored directly.

type Language struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Code                string `json:"code,omitempty"`
	CalculatedTotalTime int    `json:"calculated_total_time"`
}

type Level struct {
	ID                  string `json:"id"`
	LanguageID          string `json:"language_id,omitempty"`
	Name                string `json:"name"`
	OrderIndex          int    `json:"order_index"`
	CalculatedTotalTime int    `json:"calculated_total_time"`
}

type Skill struct {
	ID                  string `json:"id"`
	LevelID             string `json:"level_id,omitempty"`
	Name                string `json:"name"`
	CalculatedTotalTime int    `json:"calculated_total_time"`
}

type Content struct {
	ID                  string `json:"id"`
	SkillID             string `json:"skill_id,omitempty"`
	Title               string `json:"title"`
	CalculatedTotalTime int    `json:"calculated_total_time"`
}

// Activity is the leaf node. EstimatedTime is in minutes; a nil value counts
// as zero in every sum.
type Activity struct {
	ID            string `json:"id"`
	ContentID     string `json:"content_id,omitempty"`
	Title         string `json:"title"`
	ActivityType  string `json:"activity_type,omitempty"`
	EstimatedTime *int   `json:"estimated_time,omitempty"`
}

func estimatedOrZero(a Activity) int {
	if a.EstimatedTime == nil {
		return 0
	}
	return *a.EstimatedTime
}
