package flow

import (
	"fmt"

	"github.com/luis1ribeiro/SROS2-Utilities/analysis"
	"github.com/luis1ribeiro/SROS2-Utilities/lint"
	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

// NewUndeclaredAccessRule reports topics a node declares it publishes or
// subscribes to without the matching privilege in its profile. The analysis
// follows the profile, so such traffic is invisible to it.
//
//nolint:ireturn // Builder functions should return interfaces
func NewUndeclaredAccessRule() lint.Rule {
	const name = "undeclared-access"
	return lint.NodeRule(
		name,
		"Reports node topics that the node's profile does not grant",
		func(_ *lint.Context, node *analysis.Node) []lint.Issue {
			var issues []lint.Issue
			report := func(verb string, topics []*registry.Topic, granted func(*registry.Topic) bool) {
				for _, t := range topics {
					if granted(t) {
						continue
					}
					issue := lint.NewIssue(
						name,
						lint.SeverityWarning,
						fmt.Sprintf("Node %s %s %s without a privilege to do so", node.RosName(), verb, t.Name),
						lint.On(lint.KindNode, node.RosName()),
					)
					issues = append(issues, issue.WithContext("topic", t.Name))
				}
			}
			report("publishes on", node.Node.Advertise, node.Advertises)
			report("subscribes to", node.Node.Subscribe, node.Subscribes)
			return issues
		},
	)
}
