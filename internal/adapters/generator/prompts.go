package generator

import (
	"strings"
	"text/template"

	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/patchwork/internal/core/ports"
	"go.trai.ch/zerr"
)

const editSystemPrompt = `You edit source files by exact text substitution.
Answer with a JSON object and nothing else, in one of two shapes:
{"edits": [{"id": "e1", "originalCode": "...", "newCode": "...", "risk": "low", "style": "..."}]}
{"code": "<the complete new file content>"}
Each originalCode must be copied verbatim from the current file and must be unique within it.
Only the first occurrence of originalCode is replaced.
Use {"edits": []} when the file already satisfies the request.`

const planSystemPrompt = `You plan the steps that resolve a coding task.
Answer with a JSON object and nothing else:
{"actions": [{"type": "create_file", "path": "...", "content": "..."},
             {"type": "delete_file", "path": "..."},
             {"type": "edit_code", "path": "..."},
             {"type": "run_command", "command": "..."},
             {"type": "pass", "reason": "..."}]}
Leave content empty on create_file to have the file written in a later step.
Paths are relative to the repository root.`

const analysisSystemPrompt = `You answer questions about a code base.
Reply in plain prose. Be concrete and cite file paths.`

var funcs = template.FuncMap{
	"fence": func(s string) string {
		if strings.HasSuffix(s, "\n") {
			return "```\n" + s + "```"
		}
		return "```\n" + s + "\n```"
	},
}

var editTemplate = template.Must(template.New("edit").Funcs(funcs).Parse(
	`{{.Spec}}

File: {{.Path}}
{{if .Exists}}Current content:
{{fence .Content}}{{else}}The file does not exist yet. Answer with {"code": ...}.{{end}}
{{template "context" .CodeContext}}`))

var planTemplate = template.Must(template.New("plan").Funcs(funcs).Parse(
	`Task {{.Task.ID}}: {{.Task.Title}}
{{with .Task.Description}}
{{.}}
{{end}}{{with .Task.CompletionCriteria}}
Completion criteria: {{.}}
{{end}}
Pseudocode:
{{.Task.Pseudocode}}
{{template "context" .CodeContext}}`))

var analysisTemplate = template.Must(template.New("analysis").Funcs(funcs).Parse(
	`Task {{.Task.ID}}: {{.Task.Title}}
{{with .Task.Description}}
{{.}}
{{end}}{{with .Task.CompletionCriteria}}
Completion criteria: {{.}}
{{end}}{{template "context" .CodeContext}}`))

const contextTemplate = `{{define "context"}}{{if .}}
Related code:
{{range .}}
{{.Path}}:{{.StartLine}}
{{fence .Content}}
{{end}}{{end}}{{end}}`

func init() {
	for _, t := range []*template.Template{editTemplate, planTemplate, analysisTemplate} {
		template.Must(t.Parse(contextTemplate))
	}
}

type taskPromptData struct {
	Task        *domain.Task
	CodeContext []ports.Snippet
}

// render executes tmpl and returns the prompt text.
func render(tmpl *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", zerr.With(zerr.Wrap(err, "render prompt"), "template", tmpl.Name())
	}
	return strings.TrimSpace(b.String()), nil
}

// conversation frames history between the system prompt and the current request.
func conversation(system string, history []domain.Message, request string) []domain.Message {
	msgs := make([]domain.Message, 0, len(history)+2)
	msgs = append(msgs, domain.Message{Role: domain.RoleSystem, Content: system})
	msgs = append(msgs, history...)
	return append(msgs, domain.Message{Role: domain.RoleUser, Content: request})
}
