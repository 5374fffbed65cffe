package binding

import (
	"fmt"
	"strings"

	"github.com/luis1ribeiro/SROS2-Utilities/analysis"
	"github.com/luis1ribeiro/SROS2-Utilities/lint"
)

// NewDanglingPrivilegeRule reports granted topics that match no registered topic.
//
//nolint:ireturn // Builder functions should return interfaces
func NewDanglingPrivilegeRule() lint.Rule {
	return lint.SimpleRule(
		"dangling-privilege",
		"Reports privileges over topics the deployment does not declare",
		func(ctx *lint.Context) []lint.Issue {
			if ctx.Binding == nil {
				return nil
			}
			var issues []lint.Issue
			for _, d := range ctx.Binding.Dangling {
				issue := lint.NewIssue(
					"dangling-privilege",
					lint.SeverityWarning,
					fmt.Sprintf("Topic %s of %s is defined in the policy but has no match in the deployment",
						d.Topic, d.Profile.RosName()),
					lint.On(lint.KindProfile, d.Profile.RosName()),
				)
				issues = append(issues, issue.
					WithContext("topic", d.Topic).
					WithContext("role", strings.ToLower(d.Role.String())))
			}
			return issues
		},
	)
}

// NewEnclaveMismatchRule reports nodes launched in an enclave other than the
// one owning their profile. The profile's enclave is the one analyzed.
//
//nolint:ireturn // Builder functions should return interfaces
func NewEnclaveMismatchRule() lint.Rule {
	return lint.NodeRule(
		"enclave-mismatch",
		"Reports nodes launched in an enclave that does not own their profile",
		func(_ *lint.Context, node *analysis.Node) []lint.Issue {
			launched := node.Node.Enclave
			if launched == "" || launched == node.Enclave.Path {
				return nil
			}
			issue := lint.NewIssue(
				"enclave-mismatch",
				lint.SeverityError,
				fmt.Sprintf("Node %s is launched in %s but its profile belongs to %s",
					node.RosName(), launched, node.Enclave.Path),
				lint.On(lint.KindNode, node.RosName()),
			)
			return []lint.Issue{issue.WithFix("Launch the node in its profile's enclave", launched, node.Enclave.Path)}
		},
	)
}
