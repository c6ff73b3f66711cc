package models

type CourseSearchResult struct {
	CourseID    int     `json:"course_id"`
	PlanIndex   int     `json:"plan_index"`
	ModuleTitle string  `json:"module_title"`
	CourseTitle string  `json:"course_title"`
	Topic       string  `json:"topic"`
	Summary     string  `json:"summary"`
	Score       float64 `json:"score"`
}

type CourseSearchResponse struct {
	Query   string               `json:"query"`
	Results []CourseSearchResult `json:"results"`
}
