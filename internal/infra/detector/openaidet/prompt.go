package openaidet

import "fmt"

// systemPrompt gives strict directions and the schema for JSON output.
func systemPrompt() string {
	return `You are a senior code reviewer detecting code smells. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- label values use snake_case smell names such as long_method, large_class, duplicate_code, dead_code, complex_conditional, feature_envy, data_clump, magic_number, god_object, long_parameter_list.
- confidence is a number between 0 and 1 reflecting how certain you are.
- start_line and end_line are 1-based and must stay within the submitted source.
- findings is an array; include at least label, start_line, end_line and confidence. Keep descriptions concise.
- Report an empty findings array when the source is clean.

Schema (example with empty values):
{
  "findings": [
    {
      "label": "<string>",
      "start_line": 0,
      "end_line": 0,
      "confidence": 0.0,
      "description": "<string>"
    }
  ]
}`
}

// userPrompt wraps the submitted source in a compact user message.
func userPrompt(code, language string) string {
	return fmt.Sprintf("Detect code smells in the following %s source and respond with the JSON per schema.\n\n%s", language, code)
}
