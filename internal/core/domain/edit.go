package domain

// Edit is a proposed exact-text substitution within one file.
type Edit struct {
	ID           string `json:"id"`
	OriginalCode string `json:"originalCode"`
	NewCode      string `json:"newCode"`
	Risk         string `json:"risk,omitempty"`
	Style        string `json:"style,omitempty"`

	// Diagnostic is set when the edit could not be applied.
	Diagnostic *NoMatchDiagnostic `json:"-"`
}

// Failed reports whether the edit carries a diagnostic from its last apply.
func (e *Edit) Failed() bool {
	return e.Diagnostic != nil
}

// EditProposal is a generator answer for one file.
// Exactly one of Edits or Code is meaningful: Code replaces the whole file.
type EditProposal struct {
	Edits []Edit
	Code  *string
}

// IsWholeFile reports whether the proposal replaces the entire file.
func (p EditProposal) IsWholeFile() bool {
	return p.Code != nil
}

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleSystem is used for instructions framing the conversation.
	RoleSystem Role = "system"
	// RoleUser is used for requests and feedback sent to the generator.
	RoleUser Role = "user"
	// RoleAssistant is used for previous generator answers.
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation state fed to the generator.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
