package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.trai.ch/patchwork/internal/core/domain"
)

type editsResponse struct {
	Edits *[]domain.Edit `json:"edits"`
	Code  *string        `json:"code"`
}

type actionDTO struct {
	Type    string `json:"type"`
	Path    string `json:"path"`
	Content string `json:"content"`
	Command string `json:"command"`
	Reason  string `json:"reason"`
}

type actionsResponse struct {
	Actions []actionDTO `json:"actions"`
}

// parseEditProposal validates a raw edit answer.
// Exactly one of edits or code must be present, and every edit needs a
// non-empty originalCode and newCode. Missing ids are assigned in order.
func parseEditProposal(raw string) (domain.EditProposal, error) {
	var resp editsResponse
	if err := decodeJSON(raw, &resp); err != nil {
		return domain.EditProposal{}, err
	}

	switch {
	case resp.Edits != nil && resp.Code != nil:
		return domain.EditProposal{}, &domain.ValidationError{Reason: `answer must contain either "edits" or "code", not both`}
	case resp.Code != nil:
		return domain.EditProposal{Code: resp.Code}, nil
	case resp.Edits == nil:
		return domain.EditProposal{}, &domain.ValidationError{Reason: `answer must contain "edits" or "code"`}
	}

	edits := *resp.Edits
	seen := make(map[string]bool, len(edits))
	for i := range edits {
		e := &edits[i]
		if e.ID == "" {
			e.ID = fmt.Sprintf("e%d", i+1)
		}
		if seen[e.ID] {
			return domain.EditProposal{}, &domain.ValidationError{
				Field:  "edits",
				Reason: fmt.Sprintf("duplicate edit id %q", e.ID),
			}
		}
		seen[e.ID] = true
		if e.OriginalCode == "" {
			return domain.EditProposal{}, &domain.ValidationError{
				Field:  "edits",
				Reason: fmt.Sprintf("edit %q has empty originalCode", e.ID),
			}
		}
		if e.NewCode == "" {
			return domain.EditProposal{}, &domain.ValidationError{
				Field:  "edits",
				Reason: fmt.Sprintf("edit %q has empty newCode", e.ID),
			}
		}
	}
	return domain.EditProposal{Edits: edits}, nil
}

// parseActions validates a raw action plan.
func parseActions(raw string) ([]domain.Action, error) {
	var resp actionsResponse
	if err := decodeJSON(raw, &resp); err != nil {
		return nil, err
	}
	if len(resp.Actions) == 0 {
		return nil, &domain.ValidationError{Field: "actions", Reason: `at least one action is required, use "pass" for none`}
	}

	actions := make([]domain.Action, 0, len(resp.Actions))
	for i, a := range resp.Actions {
		invalid := func(reason string) error {
			return &domain.ValidationError{Field: fmt.Sprintf("actions[%d]", i), Reason: reason}
		}
		needPath := func() error {
			if strings.TrimSpace(a.Path) == "" {
				return invalid(a.Type + " requires a path")
			}
			return nil
		}

		switch a.Type {
		case "create_file":
			if err := needPath(); err != nil {
				return nil, err
			}
			actions = append(actions, domain.CreateFile{Path: a.Path, Content: a.Content})
		case "delete_file":
			if err := needPath(); err != nil {
				return nil, err
			}
			actions = append(actions, domain.DeleteFile{Path: a.Path})
		case "edit_code":
			if err := needPath(); err != nil {
				return nil, err
			}
			actions = append(actions, domain.EditCode{Path: a.Path})
		case "run_command":
			if strings.TrimSpace(a.Command) == "" {
				return nil, invalid("run_command requires a command")
			}
			actions = append(actions, domain.RunCommand{Command: a.Command})
		case "pass":
			actions = append(actions, domain.Pass{Reason: a.Reason})
		default:
			return nil, invalid(fmt.Sprintf("unknown action type %q", a.Type))
		}
	}
	return actions, nil
}

// decodeJSON unmarshals raw, tolerating a surrounding markdown fence.
func decodeJSON(raw string, v any) error {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return &domain.ValidationError{Reason: "answer is not valid JSON: " + err.Error()}
	}
	return nil
}
