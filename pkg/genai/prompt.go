package genai

import (
	"encoding/json"
	"fmt"
	"strings"
)

func buildBlueprintPrompt(req BlueprintRequest) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are an exam designer for Indonesian school teachers. Your ONLY job is to build\n")
	prompt.WriteString("an assessment matrix (kisi-kisi) from the provided learning material.\n")
	prompt.WriteString("You do NOT write questions yet. You only plan topics, indicators and counts.\n")
	prompt.WriteString("</system>\n\n")

	writeParamsSection(&prompt, req.Params)

	prompt.WriteString("<material>\n")
	if strings.TrimSpace(req.ExtractedText) != "" {
		prompt.WriteString(req.ExtractedText)
		prompt.WriteString("\n")
	}
	if len(req.PageImages) > 0 {
		prompt.WriteString(fmt.Sprintf("(%d scanned page images are attached; read them for content the text misses.)\n", len(req.PageImages)))
	}
	prompt.WriteString("</material>\n\n")

	prompt.WriteString("<rules>\n")
	prompt.WriteString("- Cover only material inside the requested topic range.\n")
	prompt.WriteString(fmt.Sprintf("- Distribute cognitive levels as C1=%d%%, C2=%d%%, C3=%d%% of the total question count.\n",
		req.Params.CognitiveRatios.Recognition, req.Params.CognitiveRatios.Comprehension, req.Params.CognitiveRatios.Application))
	prompt.WriteString(fmt.Sprintf("- Plan exactly %d multiple_choice and %d essay questions in total across all rows.\n",
		req.Params.QuestionCounts.MultipleChoice, req.Params.QuestionCounts.Essay))
	prompt.WriteString("- Every row needs a concrete indicator: what the student must be able to do.\n")
	prompt.WriteString("</rules>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"subject\": \"Matematika\",\n")
	prompt.WriteString("  \"class_level\": \"VII\",\n")
	prompt.WriteString("  \"rows\": [\n")
	prompt.WriteString("    {\n")
	prompt.WriteString("      \"number\": 1,\n")
	prompt.WriteString("      \"topic\": \"Bilangan Bulat\",\n")
	prompt.WriteString("      \"indicator\": \"Students can order integers on a number line\",\n")
	prompt.WriteString("      \"cognitive_level\": \"C1|C2|C3\",\n")
	prompt.WriteString("      \"question_type\": \"multiple_choice|essay\",\n")
	prompt.WriteString("      \"question_count\": 4\n")
	prompt.WriteString("    }\n")
	prompt.WriteString("  ]\n")
	prompt.WriteString("}\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func buildTestPrompt(req TestRequest) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are an exam writer for Indonesian school teachers. Write the full test\n")
	prompt.WriteString("following the approved assessment matrix EXACTLY: same topics, same counts,\n")
	prompt.WriteString("same cognitive levels, same question types.\n")
	prompt.WriteString("</system>\n\n")

	writeParamsSection(&prompt, req.Params)

	prompt.WriteString("<matrix>\n")
	writeJSON(&prompt, req.Blueprint)
	prompt.WriteString("</matrix>\n\n")

	prompt.WriteString("<material>\n")
	if strings.TrimSpace(req.ExtractedText) != "" {
		prompt.WriteString(req.ExtractedText)
		prompt.WriteString("\n")
	}
	if len(req.PageImages) > 0 {
		prompt.WriteString(fmt.Sprintf("(%d scanned page images are attached.)\n", len(req.PageImages)))
	}
	prompt.WriteString("</material>\n\n")

	prompt.WriteString("<rules>\n")
	prompt.WriteString("- multiple_choice questions need exactly 4 options labeled A. B. C. D. inside the options array.\n")
	prompt.WriteString("- essay questions have no options array.\n")
	prompt.WriteString("- Number questions sequentially starting at 1, multiple choice first, then essay.\n")
	prompt.WriteString("- Questions must be answerable from the provided material alone.\n")
	prompt.WriteString("</rules>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"title\": \"Ulangan Harian Matematika\",\n")
	prompt.WriteString("  \"subject\": \"Matematika\",\n")
	prompt.WriteString("  \"class_level\": \"VII\",\n")
	prompt.WriteString("  \"time_limit_minutes\": 90,\n")
	prompt.WriteString("  \"instructions\": \"Kerjakan soal berikut dengan teliti.\",\n")
	prompt.WriteString("  \"questions\": [\n")
	prompt.WriteString("    {\n")
	prompt.WriteString("      \"number\": 1,\n")
	prompt.WriteString("      \"type\": \"multiple_choice|essay\",\n")
	prompt.WriteString("      \"cognitive_level\": \"C1|C2|C3\",\n")
	prompt.WriteString("      \"topic\": \"Bilangan Bulat\",\n")
	prompt.WriteString("      \"text\": \"...\",\n")
	prompt.WriteString("      \"options\": [\"A. ...\", \"B. ...\", \"C. ...\", \"D. ...\"]\n")
	prompt.WriteString("    }\n")
	prompt.WriteString("  ]\n")
	prompt.WriteString("}\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func buildSolutionPrompt(req SolutionRequest) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are grading-material writer. Produce the answer key for the given test.\n")
	prompt.WriteString("Answer EVERY question, reusing each question's id verbatim.\n")
	prompt.WriteString("</system>\n\n")

	writeParamsSection(&prompt, req.Params)

	prompt.WriteString("<test>\n")
	writeJSON(&prompt, req.Test)
	prompt.WriteString("</test>\n\n")

	prompt.WriteString("<rules>\n")
	prompt.WriteString("- For multiple_choice: answer is the correct option letter plus its text.\n")
	prompt.WriteString("- For essay: answer is a model answer a teacher can grade against.\n")
	prompt.WriteString("- Add a short explanation where the reasoning is not obvious.\n")
	prompt.WriteString("</rules>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"answers\": [\n")
	prompt.WriteString("    {\n")
	prompt.WriteString("      \"question_id\": \"the id from the test\",\n")
	prompt.WriteString("      \"number\": 1,\n")
	prompt.WriteString("      \"answer\": \"B. 42\",\n")
	prompt.WriteString("      \"explanation\": \"...\"\n")
	prompt.WriteString("    }\n")
	prompt.WriteString("  ]\n")
	prompt.WriteString("}\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func writeParamsSection(prompt *strings.Builder, params GenerationParams) {
	prompt.WriteString("<exam_parameters>\n")
	prompt.WriteString(fmt.Sprintf("Subject: %s\n", params.Subject))
	prompt.WriteString(fmt.Sprintf("Class level: %s\n", params.ClassLevel))
	prompt.WriteString(fmt.Sprintf("Question counts: %d multiple choice, %d essay\n",
		params.QuestionCounts.MultipleChoice, params.QuestionCounts.Essay))
	prompt.WriteString(fmt.Sprintf("Cognitive ratios: C1=%d%% C2=%d%% C3=%d%%\n",
		params.CognitiveRatios.Recognition, params.CognitiveRatios.Comprehension, params.CognitiveRatios.Application))
	if params.TimeLimitMinutes > 0 {
		prompt.WriteString(fmt.Sprintf("Time limit: %d minutes\n", params.TimeLimitMinutes))
	}
	if params.TopicRanges != "" {
		prompt.WriteString(fmt.Sprintf("Topic range: %s\n", params.TopicRanges))
	}
	prompt.WriteString("</exam_parameters>\n\n")
}

func writeJSON(prompt *strings.Builder, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	prompt.Write(data)
	prompt.WriteString("\n")
}
