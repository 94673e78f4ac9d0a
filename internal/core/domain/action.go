package domain

// Action is a single step of the code-mutation path.
// The set of actions is closed: only the types in this file implement it.
type Action interface {
	// Kind returns a stable name for logs and reports.
	Kind() string
	isAction()
}

// CreateFile writes a new file. An empty Content asks the generator for it.
type CreateFile struct {
	Path    string
	Content string
}

// DeleteFile removes a file from the checkout.
type DeleteFile struct {
	Path string
}

// EditCode runs an edit session against an existing file.
type EditCode struct {
	Path string
}

// RunCommand executes a shell command inside the sandbox.
type RunCommand struct {
	Command string
}

// Pass is an explicit no-op.
type Pass struct {
	Reason string
}

// Kind implements Action.
func (CreateFile) Kind() string { return "create_file" }

// Kind implements Action.
func (DeleteFile) Kind() string { return "delete_file" }

// Kind implements Action.
func (EditCode) Kind() string { return "edit_code" }

// Kind implements Action.
func (RunCommand) Kind() string { return "run_command" }

// Kind implements Action.
func (Pass) Kind() string { return "pass" }

func (CreateFile) isAction() {}
func (DeleteFile) isAction() {}
func (EditCode) isAction()   {}
func (RunCommand) isAction() {}
func (Pass) isAction()       {}
