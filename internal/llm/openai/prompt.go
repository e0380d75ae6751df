package openai

import (
	"fmt"
	"strings"

	"mathmend-backend/internal/llm"
)

const correctionSystemPrompt = "You are a mathematics expert assistant that helps correct OCR errors and improve LaTeX. You're helping a student with their math notes."

const correctionTemplate = `I have a math document that was processed with OCR.
The document contains %s mathematics.

Additional context from the user: %s

Here is the OCR text:
%s

Here is the LaTeX that was generated:
%s

Please:
1. Check for any errors in the LaTeX
2. Make any necessary corrections to format mathematical equations properly
3. Ensure the LaTeX will compile properly

Return a JSON object with:
- correctedText: the corrected plain text with properly formatted mathematics
- latexCode: the corrected LaTeX representation of the document`

func buildCorrectionPrompt(input llm.CorrectionInput) string {
	instructions := strings.TrimSpace(input.Instructions)
	if instructions == "" {
		instructions = "None provided."
	}
	return fmt.Sprintf(correctionTemplate, input.MathType, instructions, input.OCRText, input.OCRLaTeX)
}
