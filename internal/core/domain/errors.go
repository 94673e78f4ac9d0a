package domain

import "go.trai.ch/zerr"

var (
	// ErrProvisionFailed is returned when a sandbox cannot be created.
	ErrProvisionFailed = zerr.New("sandbox provisioning failed")

	// ErrSandboxDestroyed is returned when a destroyed sandbox is used.
	ErrSandboxDestroyed = zerr.New("sandbox already destroyed")

	// ErrSandboxDestroyFailed is returned when sandbox resources cannot be released.
	ErrSandboxDestroyFailed = zerr.New("failed to destroy sandbox")

	// ErrPathOutsideSandbox is returned when a file path escapes the sandbox root.
	ErrPathOutsideSandbox = zerr.New("path is outside sandbox root")

	// ErrSandboxReadFailed is returned when a file cannot be read from the sandbox.
	ErrSandboxReadFailed = zerr.New("failed to read file from sandbox")

	// ErrSandboxWriteFailed is returned when a file cannot be written in the sandbox.
	ErrSandboxWriteFailed = zerr.New("failed to write file in sandbox")

	// ErrCommandStartFailed is returned when a sandbox command cannot be started.
	ErrCommandStartFailed = zerr.New("failed to start command")

	// ErrEmptySnippet is returned when an edit has an empty original or replacement snippet.
	ErrEmptySnippet = zerr.New("edit snippets must not be empty")

	// ErrNoMatch is returned when an edit's original code is not present verbatim in the file.
	ErrNoMatch = zerr.New("original code not found in file")

	// ErrValidation is returned when a generator response is malformed.
	ErrValidation = zerr.New("generator response failed validation")

	// ErrEditsUnresolved is returned when edits still fail after the retry budget is spent.
	ErrEditsUnresolved = zerr.New("edits could not be applied")

	// ErrGeneratorRequestFailed is returned when the content generator cannot be reached.
	ErrGeneratorRequestFailed = zerr.New("content generator request failed")

	// ErrGeneratorNotConfigured is returned when no API key is available for the generator.
	ErrGeneratorNotConfigured = zerr.New("content generator is not configured")

	// ErrSchedulerDeadlock is returned when no waiting task can ever become runnable.
	ErrSchedulerDeadlock = zerr.New("scheduler deadlock")

	// ErrTaskFailed is returned when one or more tasks of a run failed.
	ErrTaskFailed = zerr.New("task failed")

	// ErrCommitFailed is returned when staging or committing changes fails.
	ErrCommitFailed = zerr.New("commit failed")

	// ErrNothingToCommit is returned when a mutation task left the working tree unchanged.
	ErrNothingToCommit = zerr.New("nothing to commit")

	// ErrRunFailed is returned when a run finished with failures that were already reported.
	ErrRunFailed = zerr.New("run failed")

	// ErrEmptyTaskID is returned when a plan contains a task without an id.
	ErrEmptyTaskID = zerr.New("task id must not be empty")

	// ErrDuplicateTaskID is returned when two tasks in a plan share an id.
	ErrDuplicateTaskID = zerr.New("duplicate task id")

	// ErrMissingDependency is returned when a task references a dependency that is not in the plan.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the task dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrPlanInvalid is returned when static plan validation reports issues.
	ErrPlanInvalid = zerr.New("plan is invalid")

	// ErrPlanReadFailed is returned when the plan file cannot be read.
	ErrPlanReadFailed = zerr.New("failed to read plan file")

	// ErrPlanParseFailed is returned when the plan file cannot be parsed.
	ErrPlanParseFailed = zerr.New("failed to parse plan file")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidSetting is returned when a configured value is out of range.
	ErrInvalidSetting = zerr.New("invalid setting")

	// ErrNotARepository is returned when the target directory is not inside a git repository.
	ErrNotARepository = zerr.New("not a git repository")

	// ErrBranchCreateFailed is returned when the run branch cannot be created.
	ErrBranchCreateFailed = zerr.New("failed to create run branch")

	// ErrStoreCreateFailed is returned when the report store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create report store directory")

	// ErrStoreReadFailed is returned when a stored report cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read report")

	// ErrStoreUnmarshalFailed is returned when a stored report cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal report")

	// ErrStoreMarshalFailed is returned when a report cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal report")

	// ErrStoreWriteFailed is returned when a report cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write report")

	// ErrReportNotFound is returned when no report exists for a plan.
	ErrReportNotFound = zerr.New("no report found for plan")
)
