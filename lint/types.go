// Package lint provides a rule-based checker for deployments. Rules inspect
// the symbol registry, the security policy and the connectivity graph and
// report non-fatal issues: unbound profiles, dangling privileges, boundary
// flows and naming problems.
package lint

import (
	"fmt"
)

// Severity represents the severity level of a linting issue.
type Severity int

const (
	// SeverityError indicates an issue that makes the analysis unsound.
	SeverityError Severity = iota
	// SeverityWarning indicates a potential issue that should be addressed.
	SeverityWarning
	// SeverityInfo indicates a suggestion or style improvement.
	SeverityInfo
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Subject kinds.
const (
	KindNode    = "node"
	KindProfile = "profile"
	KindEnclave = "enclave"
	KindTopic   = "topic"
	KindMessage = "message"
	KindModel   = "model"
)

// Subject identifies the deployment entity an issue is about.
type Subject struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// String returns "kind name".
func (s Subject) String() string {
	return s.Kind + " " + s.Name
}

// Fix is a suggested change that resolves an issue.
type Fix struct {
	// Description explains what the fix does.
	Description string `json:"description"`
	// Before contains the original text that will be replaced.
	Before string `json:"before"`
	// After contains the replacement text.
	After string `json:"after"`
}

// Issue represents a single linting issue found in a deployment.
type Issue struct {
	// Rule is the identifier of the rule that found this issue.
	Rule string `json:"rule"`
	// Severity indicates the importance level of the issue.
	Severity Severity `json:"severity"`
	// Message is a human-readable description of the issue.
	Message string `json:"message"`
	// Subject is the entity the issue is about, nil for model-wide issues.
	Subject *Subject `json:"subject,omitempty"`
	// Fix contains an optional suggested fix for the issue.
	Fix *Fix `json:"fix,omitempty"`
	// Context provides additional metadata about the issue.
	Context map[string]interface{} `json:"context,omitempty"`
}

// String returns a formatted string representation of the issue.
func (i Issue) String() string {
	if i.Subject != nil {
		return fmt.Sprintf("%s: %s [%s] %s", i.Severity, i.Subject, i.Rule, i.Message)
	}
	return fmt.Sprintf("%s: [%s] %s", i.Severity, i.Rule, i.Message)
}

// IsValid checks if the issue has all required fields.
func (i Issue) IsValid() bool {
	return i.Rule != "" && i.Message != ""
}

// NewIssue creates a new Issue with the given parameters.
func NewIssue(rule string, severity Severity, message string, subject *Subject) Issue {
	return Issue{
		Rule:     rule,
		Severity: severity,
		Message:  message,
		Subject:  subject,
		Context:  make(map[string]interface{}),
	}
}

// On returns a subject of the given kind and name.
func On(kind, name string) *Subject {
	return &Subject{Kind: kind, Name: name}
}

// WithFix adds a fix to an issue and returns the modified issue.
func (i Issue) WithFix(description, before, after string) Issue {
	i.Fix = &Fix{
		Description: description,
		Before:      before,
		After:       after,
	}
	return i
}

// WithContext adds context metadata to an issue and returns the modified issue.
func (i Issue) WithContext(key string, value interface{}) Issue {
	if i.Context == nil {
		i.Context = make(map[string]interface{})
	}
	i.Context[key] = value
	return i
}
