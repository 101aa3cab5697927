package models

type Problem struct {
	ID        int    `db:"id" json:"id"`
	ContestID int    `db:"contest_id" json:"contest_id"`
	Title     string `db:"title" json:"title"`
	Statement string `db:"statement" json:"statement"`

	Difficulty string `db:"difficulty" json:"difficulty"`
	Points     int    `db:"points" json:"points"`

	// Nominal resource limits. These may exceed what the execution
	// service's tier allows and are clamped before dispatch.
	TimeLimitMS      int  `db:"time_limit_ms" json:"time_limit_ms"`
	MemoryLimitBytes int  `db:"memory_limit_bytes" json:"memory_limit_bytes"`
	CPUTimeLimitMS   int  `db:"cpu_time_limit_ms" json:"cpu_time_limit_ms"`
	EnableNetwork    bool `db:"enable_network" json:"enable_network"`

	MaxSubmissions         int  `db:"max_submissions" json:"max_submissions"`
	AllowMultipleLanguages bool `db:"allow_multiple_languages" json:"allow_multiple_languages"`
	DefaultLanguageID      int  `db:"default_language_id" json:"default_language_id"`
}

// CPUTimeLimitSeconds converts the stored millisecond limit to the
// seconds the execution service expects.
func (p *Problem) CPUTimeLimitSeconds() float64 {
	return float64(p.CPUTimeLimitMS) / 1000.0
}

type TestCase struct {
	ID        int    `db:"id" json:"id"`
	ProblemID int    `db:"problem_id" json:"problem_id"`
	Name      string `db:"name" json:"name"`
	InputData string `db:"input_data" json:"input_data"`
	// Serialized so the Redis cache round-trips it intact. Responses
	// never include it: samples are blanked before serving.
	ExpectedOutput string `db:"expected_output" json:"expected_output,omitempty"`
	IsSample       bool   `db:"is_sample" json:"is_sample"`
	IsPublic       bool   `db:"is_public" json:"is_public"`
	SortOrder      int    `db:"sort_order" json:"order"`
}

type ProblemListItem struct {
	ID         int    `db:"id" json:"id"`
	Title      string `db:"title" json:"title"`
	Difficulty string `db:"difficulty" json:"difficulty"`
	Points     int    `db:"points" json:"points"`
}

type ProblemDetail struct {
	Problem
	SampleTestCases     []TestCase `json:"sample_test_cases"`
	TotalSubmissions    int        `json:"total_submissions"`
	AcceptedSubmissions int        `json:"accepted_submissions"`
	AcceptanceRate      float64    `json:"acceptance_rate"`
}
