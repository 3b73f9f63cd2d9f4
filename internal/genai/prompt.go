package genai

import "strings"

// invoicePromptTemplate is the fixed instruction template; {EXTRACTED_TEXT}
// is replaced with the OCR output, which may be empty.
const invoicePromptTemplate = `
Analyze the text and structure it into an invoice JSON with keys:
vendor, vendorAddress, client, clientAddress, invoiceNumber, date, dueDate, items, subtotal, tax, total.
Items must be an array of objects: description, quantity, unitPrice, total.
Use ISO-8601 dates (YYYY-MM-DD). Empty fields = "" or 0.
Return ONLY the JSON object, no commentary.
Text: """{EXTRACTED_TEXT}"""
JSON Output:
`

// BuildInvoicePrompt substitutes the extracted text into the instruction
// template.
func BuildInvoicePrompt(extractedText string) string {
	return strings.Replace(invoicePromptTemplate, "{EXTRACTED_TEXT}", extractedText, 1)
}

// stripCodeFence removes a surrounding markdown code fence, which Gemini
// frequently wraps around JSON output despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
