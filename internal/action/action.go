// Package action models the file modifications proposed by an agent. An
// Action describes intent only; nothing here touches the filesystem.
package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind is the modification an agent proposes.
type Kind string

const (
	Create Kind = "create"
	Read   Kind = "read"
	Edit   Kind = "edit"
	Delete Kind = "delete"
	Move   Kind = "move"
)

// ParseKind normalizes and validates a kind string.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case Create, Read, Edit, Delete, Move:
		return k, nil
	default:
		return "", fmt.Errorf("unknown action kind %q", s)
	}
}

// Action is one proposed modification. Paths are project-relative. Content,
// Language, Imports and Dependencies are optional and describe the proposed
// state, not the current one. Actions are treated as immutable once decoded.
type Action struct {
	Kind         Kind     `json:"kind"`
	TargetPath   string   `json:"targetPath"`
	SourcePath   string   `json:"sourcePath,omitempty"`
	Content      string   `json:"content,omitempty"`
	Language     string   `json:"language,omitempty"`
	Imports      []string `json:"imports,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// Output is the envelope agents emit: an optional explanation plus the
// proposed actions.
type Output struct {
	Explanation string   `json:"explanation,omitempty"`
	Actions     []Action `json:"actions"`
}

// Decode accepts the three payload shapes agents produce: an Output
// envelope, a bare action array, or a single action object.
func Decode(data []byte) ([]Action, error) {
	var out Output
	if err := json.Unmarshal(data, &out); err == nil && len(out.Actions) > 0 {
		return out.Actions, nil
	}

	var list []Action
	if err := json.Unmarshal(data, &list); err == nil && len(list) > 0 {
		return list, nil
	}

	var one Action
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, fmt.Errorf("decode action payload: %w", err)
	}
	if one.Kind == "" && one.TargetPath == "" {
		return nil, errors.New("action payload contains no actions")
	}
	return []Action{one}, nil
}

// Describe returns a short human-readable label for logs and audit entries.
func (a Action) Describe() string {
	if a.Kind == Move && a.SourcePath != "" {
		return fmt.Sprintf("%s %s -> %s", a.Kind, a.SourcePath, a.TargetPath)
	}
	return fmt.Sprintf("%s %s", a.Kind, a.TargetPath)
}
