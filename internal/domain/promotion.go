package domain

// PromotionRule defines the bar an employee must clear to be promoted
// from their current level into the target level for a given role.
type PromotionRule struct {
	Role                      string `json:"role"`
	TargetLevel               string `json:"target_level"`
	MinMonthsInLevel          int    `json:"min_months_in_level"`
	RequiredPerformanceRating string `json:"required_performance_rating"`
	RequiredProjects          int    `json:"required_projects"`
	RequiredCompetencyScore   int    `json:"required_competency_score"`
}

// PromotionProgress records an employee's actual progress toward a
// target level.
type PromotionProgress struct {
	UserID          string `json:"user_id"`
	TargetLevel     string `json:"target_level"`
	MonthsInLevel   int    `json:"months_in_level"`
	LastRating      string `json:"last_rating"`
	ProjectsDone    int    `json:"projects_completed"`
	CompetencyScore int    `json:"competency_score"`
}
