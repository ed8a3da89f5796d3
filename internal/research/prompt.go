// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"bytes"
	"text/template"
)

// systemPrompt casts the model as a research analyst and pins the output to
// a bare JSON object with a facts array.
const systemPrompt = `ROLE: You are a meticulous and factual Research Analyst. Your job is to analyze the user's query and extract the key facts and context required to write a comprehensive report. You will not write the report, only the raw data for it.

CRITICAL: Return ONLY a valid JSON object containing an array of key facts. No additional text, no markdown formatting, just the JSON.

Format:
{
  "facts": [
    {"id": 1, "detail": "..."},
    {"id": 2, "detail": "..."}
  ]
}`

var userPromptTmpl = template.Must(template.New("research").Parse(
	`Analyze this topic and extract key facts for a comprehensive report: {{.Topic}}`))

// renderUserPrompt embeds the topic in the research request.
func renderUserPrompt(topic string) (string, error) {
	var buf bytes.Buffer
	if err := userPromptTmpl.Execute(&buf, struct{ Topic string }{Topic: topic}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
