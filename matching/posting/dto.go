package posting

// CreateRequest is the JSON body for posting creation and edits.
type CreateRequest struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	RequiredSkills    []string `json:"required_skills"`
	PreferredSkills   []string `json:"preferred_skills"`
	MinExperience     float64  `json:"min_experience"`
	MaxExperience     float64  `json:"max_experience"`
	RequiredEducation string   `json:"required_education"`
	Location          string   `json:"location"`
	DurationMonths    int      `json:"duration_months"`
	Stipend           string   `json:"stipend"`
}

// ExtractSkillsRequest asks for skills to be derived from a description.
type ExtractSkillsRequest struct {
	Description string `json:"description"`
}

// ExtractedSkills is the result of description skill extraction.
type ExtractedSkills struct {
	RequiredSkills  []string `json:"required_skills"`
	PreferredSkills []string `json:"preferred_skills"`

	// Source is "llm" or "keyword" depending on which extractor answered.
	Source string `json:"source"`
}
