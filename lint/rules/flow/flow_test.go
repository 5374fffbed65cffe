package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luis1ribeiro/SROS2-Utilities/lint/linttest"
)

func TestBoundaryFlowRule(t *testing.T) {
	issues := NewBoundaryFlowRule().Check(linttest.Deployment(t))

	require.Len(t, issues, 1)
	assert.Equal(t, "/status", issues[0].Subject.Name)
	assert.Equal(t,
		"Connection through /status is not well supported. /b is not secure, while /a is secure: /a -/status-> /b",
		issues[0].Message)
	assert.Equal(t, "/a", issues[0].Context["source"])
	assert.Equal(t, "/b", issues[0].Context["target"])
}

func TestUndeclaredAccessRule(t *testing.T) {
	issues := NewUndeclaredAccessRule().Check(linttest.Deployment(t))

	require.Len(t, issues, 1)
	assert.Equal(t, "/a", issues[0].Subject.Name)
	assert.Equal(t, "/cmd", issues[0].Context["topic"])
	assert.Contains(t, issues[0].Message, "publishes on /cmd")
}
