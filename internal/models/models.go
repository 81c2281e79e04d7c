package models

import "time"

// PaperAnalysis is the structured result of analyzing one scientific
// document (or a multi-document batch treated as one unit of work).
type PaperAnalysis struct {
	PaperTitle         string             `json:"paper_title"`
	CoreHypothesis     string             `json:"core_hypothesis"`
	MethodologySummary string             `json:"methodology_summary"`
	MethodologySteps   []MethodologyStage `json:"methodology_steps"`
	KeyResults         []string           `json:"key_results"`
	Conclusions        string             `json:"conclusions"`
	Limitations        string             `json:"limitations"`
	FiguresData        []FigureData       `json:"figures_data"`
}

// MethodologyStage is one experimental phase (e.g. "Sample Preparation")
// with its ordered procedural steps.
type MethodologyStage struct {
	StageName string   `json:"stage_name"`
	Steps     []string `json:"steps"`
}

// FigureData describes one figure, table, or chart from the paper.
type FigureData struct {
	Caption    string      `json:"caption"`
	Type       string      `json:"type"`
	Purpose    string      `json:"purpose"`
	Findings   []string    `json:"findings"`
	DataPoints []DataPoint `json:"data_points,omitempty"`
}

// DataPoint is one representative value extracted from a quantitative chart.
type DataPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one entry in the Q&A transcript.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
