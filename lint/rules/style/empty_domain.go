package style

import (
	"fmt"

	"github.com/luis1ribeiro/SROS2-Utilities/lint"
	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

// NewEmptyDomainRule reports topics whose message type declares no values:
// nothing can ever be published on them in the generated model.
//
//nolint:ireturn // Builder functions should return interfaces
func NewEmptyDomainRule() lint.Rule {
	return lint.TopicRule(
		"empty-message-domain",
		"Reports topics whose message type has an empty value domain",
		func(_ *lint.Context, topic *registry.Topic) []lint.Issue {
			if topic.MessageType == nil || len(topic.MessageType.Value.Values) > 0 {
				return nil
			}
			issue := lint.NewIssue(
				"empty-message-domain",
				lint.SeverityWarning,
				fmt.Sprintf("Message type %s of topic %s declares no values", topic.Type, topic.Name),
				lint.On(lint.KindTopic, topic.Name),
			)
			return []lint.Issue{issue.WithContext("type", topic.Type)}
		},
	)
}
