package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luis1ribeiro/SROS2-Utilities/lint"
	"github.com/luis1ribeiro/SROS2-Utilities/lint/linttest"
)

func TestDefault(t *testing.T) {
	ctx := linttest.Deployment(t)

	byRule := make(map[string][]lint.Issue)
	for _, issue := range lint.Run(ctx, Default()...) {
		byRule[issue.Rule] = append(byRule[issue.Rule], issue)
	}

	names := make(map[string]bool)
	for _, rule := range Default() {
		require.False(t, names[rule.Name()], "duplicate rule %s", rule.Name())
		names[rule.Name()] = true
		assert.NotEmpty(t, rule.Description())
		assert.Len(t, byRule[rule.Name()], 1, "rule %s", rule.Name())
	}
}
