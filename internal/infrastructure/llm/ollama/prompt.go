package ollama

func buildAnalysisPrompt(text string, snippetLimit int) string {
	snippet := text
	if len(snippet) > snippetLimit {
		snippet = snippet[:snippetLimit]
	}

	return `You are an office document analysis assistant.
Return a strict JSON object with exactly these keys:
title (string, concise document title),
document_date (string, YYYY-MM-DD if possible, else null),
counterparty (string, the other party or parties involved),
total_value (string or number, monetary amount mentioned, else null),
summary (string, 2-3 sentences on the document's purpose),
category (string, e.g. contract, invoice, correspondence).
No markdown, no extra keys.

Document:
` + snippet
}
