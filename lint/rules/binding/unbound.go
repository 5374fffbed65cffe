// Package binding provides rules about how deployment nodes pair with
// security profiles.
package binding

import (
	"fmt"

	"github.com/luis1ribeiro/SROS2-Utilities/lint"
)

// UnboundProfileRule reports profiles that govern no deployed node.
type UnboundProfileRule struct{}

// NewUnboundProfileRule creates a new unbound profile rule.
func NewUnboundProfileRule() *UnboundProfileRule {
	return &UnboundProfileRule{}
}

// Name returns the unique identifier for this rule.
func (r *UnboundProfileRule) Name() string {
	return "unbound-profile"
}

// Description returns a human-readable description of what this rule checks.
func (r *UnboundProfileRule) Description() string {
	return "Reports security profiles with no matching node in the deployment"
}

// Check reports one issue per unbound profile.
func (r *UnboundProfileRule) Check(ctx *lint.Context) []lint.Issue {
	if ctx.Binding == nil {
		return nil
	}
	issues := make([]lint.Issue, 0, len(ctx.Binding.UnboundProfiles))
	for _, p := range ctx.Binding.UnboundProfiles {
		issue := lint.NewIssue(
			r.Name(),
			lint.SeverityWarning,
			fmt.Sprintf("Profile %s of enclave %s has no matching node", p.RosName(), p.Enclave.Path),
			lint.On(lint.KindProfile, p.RosName()),
		)
		issues = append(issues, issue.WithContext("enclave", p.Enclave.Path))
	}
	return issues
}

// UnboundNodeRule reports nodes that no profile governs. Such nodes take no
// part in the flow analysis.
type UnboundNodeRule struct{}

// NewUnboundNodeRule creates a new unbound node rule.
func NewUnboundNodeRule() *UnboundNodeRule {
	return &UnboundNodeRule{}
}

// Name returns the unique identifier for this rule.
func (r *UnboundNodeRule) Name() string {
	return "unbound-node"
}

// Description returns a human-readable description of what this rule checks.
func (r *UnboundNodeRule) Description() string {
	return "Reports deployment nodes that no security profile governs"
}

// Check reports one issue per unbound node.
func (r *UnboundNodeRule) Check(ctx *lint.Context) []lint.Issue {
	if ctx.Binding == nil {
		return nil
	}
	issues := make([]lint.Issue, 0, len(ctx.Binding.UnboundNodes))
	for _, n := range ctx.Binding.UnboundNodes {
		issues = append(issues, lint.NewIssue(
			r.Name(),
			lint.SeverityWarning,
			fmt.Sprintf("Node %s has no security profile and is excluded from the analysis", n.RosName()),
			lint.On(lint.KindNode, n.RosName()),
		))
	}
	return issues
}
