package generation

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
)

// defaultPromptTemplate is used when no template file is configured.
const defaultPromptTemplate = `You are an expert educational content creator specializing in flashcard generation.

TASK:
Generate exactly {{.Count}} flashcards in {{.Language}} language based on the educational content below.

DIFFICULTY: {{.Level}}
REQUIREMENTS:
- Each flashcard should have a clear, specific term/question and comprehensive definition/answer
- Focus on key concepts and important facts from the content
- {{.Instruction}}
- Must keep both terms and definitions comprehensive but under 250 characters
- Terms should be specific and unambiguous
- Questions should be directly based on the document content

OUTPUT FORMAT:
Return ONLY a valid JSON array with this exact structure:
[
  {
    "term": "Clear, specific question or term",
    "definition": "Comprehensive answer or definition"
  }
]

CRITICAL: Return ONLY the JSON array, no explanations, no additional text, no markdown formatting.

EDUCATIONAL CONTENT:
{{.Text}}
`

// promptData is the value templates are executed with.
type promptData struct {
	Count       int
	Language    string
	Level       Level
	Instruction string
	Text        string
}

// Prompt renders generation requests into model prompts.
type Prompt struct {
	tmpl *template.Template
}

// NewDefaultPrompt returns a Prompt using the built-in template.
func NewDefaultPrompt() *Prompt {
	return &Prompt{tmpl: template.Must(template.New("flashcards").Parse(defaultPromptTemplate))}
}

// LoadPrompt parses the template at path. An empty path yields the built-in
// template.
func LoadPrompt(path string) (*Prompt, error) {
	if path == "" {
		return NewDefaultPrompt(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
			ErrInvalidConfig, path, err)
	}

	tmpl, err := template.New("flashcards").Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", ErrInvalidConfig, err)
	}

	return &Prompt{tmpl: tmpl}, nil
}

// Render builds the prompt for req, filling in the default level and language.
func (p *Prompt) Render(req Request) (string, error) {
	if req.Text == "" {
		return "", fmt.Errorf("%w: empty text", ErrDocumentTooShort)
	}

	level := req.Level
	if level == "" {
		level = DefaultLevel
	}
	language := req.Language
	if language == "" {
		language = DefaultLanguage
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, promptData{
		Count:       req.Count,
		Language:    language,
		Level:       level,
		Instruction: level.Instruction(),
		Text:        req.Text,
	}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	return buf.String(), nil
}
