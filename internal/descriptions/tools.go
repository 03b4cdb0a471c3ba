package descriptions

// Tool descriptions with practical examples and use cases

const (
	ExtractQuestionsDescription = `Pull candidate form questions out of an uploaded document without generating a draft.

**When to use:** You have a CSV, JSON, text/markdown or PDF file and want to see which fields or questions it contains before drafting.

**Supported inputs:**
• CSV: the header row becomes the field list (comma, tab or semicolon separated)
• JSON: keys of the object, or of the first object in an array
• Text / Markdown: question lines, then list items, then sentences
• PDF: embedded text layer first, OCR of the first pages when the text is missing or garbled

**Examples:**
• "What fields does signup.csv collect?"
• "Extract the questions from questionnaire.pdf"

**Result:** JSON with questions, fileType, textLength, parseIssue (pdf_no_text, pdf_low_quality_text, pdf_parse_failed), readabilityScore, usedOcr and extractMethod.

**Parameters:** pass either path (a file inside the configured upload directory, stdio mode only) or content with filename. Binary content must be base64 with encoding=base64.`

	BuildDraftDescription = `Turn a free-text request, optionally with an uploaded document, into a complete form draft.

**When to use:** The user describes a form ("报名表", "customer survey", "8-question quiz about China") and may attach a document with the fields or questions.

**How it works:**
1. Questions are extracted from the document if one is given
2. The request is classified as quiz, registration, survey, recruitment, booking or generic
3. An LLM drafts the form when configured; every draft is validated
4. Otherwise a rule engine builds it from a field library and built-in quiz banks

**Examples:**
• "报名表" → name, email and a required phone field
• "帮我做一个关于中国的测验，8题" → 8 graded single-choice questions
• An empty prompt with people.json → the file's fields verbatim

**Result:** JSON with the draft (title, description, questions, isQuiz, generationMode, llmModelUsed) and the extraction summary.

**Errors:** empty_input when there is neither a prompt nor usable file questions, quiz_needs_llm when a quiz on an unknown topic cannot be generated, pdf_* when an uploaded PDF could not be read and nothing else produced questions.`

	CreateFormDescription = `Publish a draft as a Google Form.

**When to use:** After build_draft, once the user is happy with the questions.

**What it does:** Creates the form with the draft title, sets the description, turns on quiz mode for quizzes and adds one item per question in order. Choice questions become radio buttons and carry the correct answer and points in quiz mode.

**Parameters:** draft is the JSON draft returned by build_draft (the draft object itself). access_token is a Google OAuth token with the forms.body scope held by the caller.

**Errors:** auth_expired when Google rejects the token; the caller should re-authenticate instead of retrying.`
)
