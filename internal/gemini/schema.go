package gemini

import "github.com/google/generative-ai-go/genai"

// analysisSchema constrains the model output to the PaperAnalysis shape.
var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"paper_title":         {Type: genai.TypeString},
		"core_hypothesis":     {Type: genai.TypeString},
		"methodology_summary": {Type: genai.TypeString},
		"methodology_steps": {
			Type:        genai.TypeArray,
			Description: "Break down the methodology into 2-5 distinct experimental phases (e.g. Synthesis, Characterization, Data Analysis).",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"stage_name": {
						Type:        genai.TypeString,
						Description: "Title of the experimental phase (e.g., 'Sample Preparation')",
					},
					"steps": {
						Type:        genai.TypeArray,
						Items:       &genai.Schema{Type: genai.TypeString},
						Description: "Sequential list of specific actions taken in this phase.",
					},
				},
				Required: []string{"stage_name", "steps"},
			},
		},
		"key_results": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"conclusions": {Type: genai.TypeString},
		"limitations": {Type: genai.TypeString},
		"figures_data": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"caption": {Type: genai.TypeString},
					"type":    {Type: genai.TypeString},
					"purpose": {Type: genai.TypeString},
					"findings": {
						Type:        genai.TypeArray,
						Items:       &genai.Schema{Type: genai.TypeString},
						Description: "List 2-4 key visual observations, numerical trends, or pattern descriptions visible in the figure.",
					},
					"data_points": {
						Type:        genai.TypeArray,
						Description: "For quantitative charts (bar, line, scatter), extract 3-5 representative data points. Return empty array for diagrams/images.",
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"label": {
									Type:        genai.TypeString,
									Description: "X-axis label or category",
								},
								"value": {
									Type:        genai.TypeNumber,
									Description: "Y-axis numerical value",
								},
								"unit": {
									Type:        genai.TypeString,
									Description: "Unit of measurement if available",
								},
							},
						},
					},
				},
				Required: []string{"caption", "type", "purpose", "findings", "data_points"},
			},
		},
	},
	Required: []string{
		"paper_title", "core_hypothesis", "methodology_summary", "methodology_steps",
		"key_results", "conclusions", "limitations", "figures_data",
	},
}
