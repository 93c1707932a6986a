package genai

// Stage identifiers for the three sequential generation steps.
const (
	StageBlueprint = "blueprint"
	StageTest      = "test"
	StageSolution  = "solution"
)

// Question types supported by the generated tests.
const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeEssay          = "essay"
)

// Cognitive levels (Bloom taxonomy subset used in school exam matrices).
const (
	CognitiveRecognition   = "C1"
	CognitiveComprehension = "C2"
	CognitiveApplication   = "C3"
)

// CognitiveRatios is the C1/C2/C3 percentage split governing question
// difficulty distribution. The three values must sum to exactly 100.
type CognitiveRatios struct {
	Recognition   int `json:"recognition"`
	Comprehension int `json:"comprehension"`
	Application   int `json:"application"`
}

// Sum returns the total of the three percentages.
func (r CognitiveRatios) Sum() int {
	return r.Recognition + r.Comprehension + r.Application
}

// Validate rejects any split that does not sum to 100.
func (r CognitiveRatios) Validate() error {
	if sum := r.Sum(); sum != 100 {
		return &RatioError{Sum: sum}
	}
	return nil
}

// QuestionCounts holds how many questions of each type the test should have.
type QuestionCounts struct {
	MultipleChoice int `json:"multiple_choice"`
	Essay          int `json:"essay"`
}

// Total returns the combined question count.
func (c QuestionCounts) Total() int {
	return c.MultipleChoice + c.Essay
}

// GenerationParams are the user-supplied knobs for a generation session.
// They are small by design: bulk document content travels separately and
// is never persisted alongside these.
type GenerationParams struct {
	Subject          string          `json:"subject"`
	ClassLevel       string          `json:"class_level"`
	QuestionCounts   QuestionCounts  `json:"question_counts"`
	CognitiveRatios  CognitiveRatios `json:"cognitive_ratios"`
	TimeLimitMinutes int             `json:"time_limit_minutes"`
	TopicRanges      string          `json:"topic_ranges,omitempty"`
}

// Blueprint is the assessment matrix ("kisi-kisi"): the per-topic breakdown
// of question counts, types and cognitive levels that precedes full test
// generation.
type Blueprint struct {
	Subject    string         `json:"subject"`
	ClassLevel string         `json:"class_level"`
	Rows       []BlueprintRow `json:"rows"`
}

type BlueprintRow struct {
	Number         int    `json:"number"`
	Topic          string `json:"topic"`
	Indicator      string `json:"indicator"`
	CognitiveLevel string `json:"cognitive_level"`
	QuestionType   string `json:"question_type"`
	QuestionCount  int    `json:"question_count"`
}

// Test is a fully generated exam derived from a blueprint.
type Test struct {
	Title            string     `json:"title"`
	Subject          string     `json:"subject"`
	ClassLevel       string     `json:"class_level"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	Instructions     string     `json:"instructions,omitempty"`
	Questions        []Question `json:"questions"`
}

type Question struct {
	ID             string   `json:"id"`
	Number         int      `json:"number"`
	Type           string   `json:"type"`
	CognitiveLevel string   `json:"cognitive_level"`
	Topic          string   `json:"topic,omitempty"`
	Text           string   `json:"text"`
	Options        []string `json:"options,omitempty"`
}

// Solution is the answer key for a generated test, keyed to its question ids.
type Solution struct {
	Answers []Answer `json:"answers"`
}

type Answer struct {
	QuestionID  string `json:"question_id"`
	Number      int    `json:"number"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation,omitempty"`
}
