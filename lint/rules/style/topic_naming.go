// Package style provides naming and declaration style rules.
package style

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/luis1ribeiro/SROS2-Utilities/lint"
)

var (
	topicSegment = regexp.MustCompile(`^_?[a-z][a-z0-9_]*$`)
	nonSegment   = regexp.MustCompile(`[^a-z0-9_]+`)
)

// TopicNamingRule enforces ROS naming for topics: absolute, "/"-separated
// segments of lowercase letters, digits and underscores, each starting with
// a letter after at most one leading underscore.
type TopicNamingRule struct{}

// NewTopicNamingRule creates a new topic naming rule.
func NewTopicNamingRule() *TopicNamingRule {
	return &TopicNamingRule{}
}

// Name returns the unique identifier for this rule.
func (r *TopicNamingRule) Name() string {
	return "topic-naming"
}

// Description returns a human-readable description of what this rule checks.
func (r *TopicNamingRule) Description() string {
	return "Enforces lowercase snake_case segments in topic names"
}

// Check examines every registered topic.
func (r *TopicNamingRule) Check(ctx *lint.Context) []lint.Issue {
	var issues []lint.Issue

	err := ctx.WalkTopics(func(topicCtx *lint.Context) error {
		if issue := r.checkTopicName(topicCtx.Topic.Name); issue != nil {
			issues = append(issues, *issue)
		}
		return nil
	})
	if err != nil {
		return nil
	}
	return issues
}

func (r *TopicNamingRule) checkTopicName(name string) *lint.Issue {
	if isValidTopicName(name) {
		return nil
	}
	issue := lint.NewIssue(
		r.Name(),
		lint.SeverityInfo,
		fmt.Sprintf("Topic name '%s' does not follow snake_case naming", name),
		lint.On(lint.KindTopic, name),
	)
	if suggestion := suggestTopicName(name); suggestion != name && isValidTopicName(suggestion) {
		issue = issue.WithFix("Rename the topic", name, suggestion)
	}
	issue = issue.WithContext("topic_name", name)
	return &issue
}

func isValidTopicName(name string) bool {
	if !strings.HasPrefix(name, "/") {
		return false
	}
	for _, segment := range strings.Split(name[1:], "/") {
		if !topicSegment.MatchString(segment) {
			return false
		}
	}
	return true
}

// suggestTopicName lowercases name and collapses runs of other characters
// into underscores.
func suggestTopicName(name string) string {
	segments := strings.Split(strings.Trim(name, "/"), "/")
	for i, s := range segments {
		segments[i] = strings.Trim(nonSegment.ReplaceAllString(strings.ToLower(s), "_"), "_")
	}
	return "/" + strings.Join(segments, "/")
}
