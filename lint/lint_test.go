package lint_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luis1ribeiro/SROS2-Utilities/analysis"
	"github.com/luis1ribeiro/SROS2-Utilities/lint"
	"github.com/luis1ribeiro/SROS2-Utilities/lint/linttest"
	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

func TestIssue(t *testing.T) {
	t.Run("string with subject", func(t *testing.T) {
		issue := lint.NewIssue("rule", lint.SeverityWarning, "message", lint.On(lint.KindNode, "/a"))
		assert.Equal(t, "warning: node /a [rule] message", issue.String())
	})

	t.Run("string without subject", func(t *testing.T) {
		issue := lint.NewIssue("rule", lint.SeverityError, "message", nil)
		assert.Equal(t, "error: [rule] message", issue.String())
	})

	t.Run("validity", func(t *testing.T) {
		assert.True(t, lint.NewIssue("rule", lint.SeverityInfo, "message", nil).IsValid())
		assert.False(t, lint.NewIssue("", lint.SeverityInfo, "message", nil).IsValid())
		assert.False(t, lint.Issue{Rule: "rule"}.IsValid())
	})

	t.Run("with fix and context", func(t *testing.T) {
		issue := lint.Issue{Rule: "rule", Message: "m"}.
			WithContext("topic", "/x").
			WithFix("rename", "/X", "/x")

		assert.Equal(t, "/x", issue.Context["topic"])
		require.NotNil(t, issue.Fix)
		assert.Equal(t, "/X", issue.Fix.Before)
		assert.Equal(t, "/x", issue.Fix.After)
	})
}

func TestContextWalk(t *testing.T) {
	ctx := linttest.Deployment(t)
	require.True(t, ctx.IsModelLevel())

	var nodes, topics []string
	err := ctx.WalkAll(func(walkCtx *lint.Context) error {
		switch {
		case walkCtx.IsNodeLevel():
			nodes = append(nodes, walkCtx.Node.RosName())
			assert.Same(t, ctx, walkCtx.Parent)
		case walkCtx.IsTopicLevel():
			topics = append(topics, walkCtx.Topic.Name)
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"/a", "/b"}, nodes)
	assert.Equal(t, []string{"/status", "/cmd", "/Heartbeat", "/_debug"}, topics)
}

func TestBuilders(t *testing.T) {
	ctx := linttest.Deployment(t)

	t.Run("simple rule", func(t *testing.T) {
		rule := lint.SimpleRule("simple", "description", func(*lint.Context) []lint.Issue {
			return []lint.Issue{lint.NewIssue("simple", lint.SeverityInfo, "hit", nil)}
		})
		assert.Equal(t, "simple", rule.Name())
		assert.Equal(t, "description", rule.Description())
		assert.Len(t, rule.Check(ctx), 1)
	})

	t.Run("node rule visits bound nodes", func(t *testing.T) {
		var seen []string
		rule := lint.NodeRule("nodes", "d", func(_ *lint.Context, n *analysis.Node) []lint.Issue {
			seen = append(seen, n.RosName())
			return nil
		})
		assert.Empty(t, rule.Check(ctx))
		assert.Equal(t, []string{"/a", "/b"}, seen)
	})

	t.Run("topic rule visits registered topics", func(t *testing.T) {
		rule := lint.TopicRule("topics", "d", func(_ *lint.Context, tp *registry.Topic) []lint.Issue {
			return []lint.Issue{lint.NewIssue("topics", lint.SeverityInfo, tp.Name, lint.On(lint.KindTopic, tp.Name))}
		})
		assert.Len(t, rule.Check(ctx), 4)
	})

	t.Run("pattern rule matches node and topic names", func(t *testing.T) {
		rule := lint.PatternRule("no-capitals", "d", `[A-Z]`, lint.SeverityWarning)
		issues := rule.Check(ctx)
		require.Len(t, issues, 1)
		assert.Equal(t, "/Heartbeat", issues[0].Subject.Name)
	})

	t.Run("pattern rule panics on a bad pattern", func(t *testing.T) {
		assert.Panics(t, func() { lint.PatternRule("bad", "d", `(`, lint.SeverityInfo) })
	})

	t.Run("run drops invalid issues", func(t *testing.T) {
		rule := lint.SimpleRule("mixed", "d", func(*lint.Context) []lint.Issue {
			return []lint.Issue{{Rule: "mixed"}, lint.NewIssue("mixed", lint.SeverityInfo, "kept", nil)}
		})
		issues := lint.Run(ctx, rule)
		require.Len(t, issues, 1)
		assert.Equal(t, "kept", issues[0].Message)
	})
}

func TestReporter(t *testing.T) {
	issues := []lint.Issue{
		lint.NewIssue("b-rule", lint.SeverityInfo, "info", lint.On(lint.KindTopic, "/x")),
		lint.NewIssue("a-rule", lint.SeverityWarning, "warn", lint.On(lint.KindNode, "/a")),
		lint.NewIssue("c-rule", lint.SeverityWarning, "model", nil),
	}

	t.Run("text is sorted by severity", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, lint.NewReporter(&buf, lint.FormatText).Report(issues))
		assert.Equal(t,
			"warning: [c-rule] model\nwarning: node /a [a-rule] warn\ninfo: topic /x [b-rule] info\n",
			buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, lint.NewReporter(&buf, lint.FormatJSON).Report(issues))

		var out struct {
			Issues []struct {
				Rule     string
				Severity string
				Subject  *lint.Subject
			}
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		require.Len(t, out.Issues, 3)
		assert.Equal(t, "warning", out.Issues[0].Severity)
		assert.Nil(t, out.Issues[0].Subject)
		assert.Equal(t, "info", out.Issues[2].Severity)
	})

	t.Run("sarif", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, lint.NewReporter(&buf, lint.FormatSARIF).Report(issues))

		var out map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		assert.Equal(t, "2.1.0", out["version"])
		run := out["runs"].([]interface{})[0].(map[string]interface{})
		driver := run["tool"].(map[string]interface{})["driver"].(map[string]interface{})
		assert.Equal(t, "svros", driver["name"])
		assert.Len(t, driver["rules"], 3)
		results := run["results"].([]interface{})
		require.Len(t, results, 3)
		assert.Equal(t, "note", results[2].(map[string]interface{})["level"])
	})

	t.Run("nothing to report", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, lint.NewReporter(&buf, lint.FormatJSON).Report(nil))
		assert.Empty(t, buf.String())
	})

	t.Run("format names", func(t *testing.T) {
		for _, f := range []lint.Format{lint.FormatText, lint.FormatJSON, lint.FormatSARIF} {
			parsed, err := lint.ParseFormat(f.String())
			require.NoError(t, err)
			assert.Equal(t, f, parsed)
		}
		_, err := lint.ParseFormat("xml")
		assert.Error(t, err)
	})
}
