package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	t.Run("formats code, message, context and cause", func(t *testing.T) {
		cause := stderrors.New("boom")
		err := WrapWithContext(cause, CodeConsistency, "topic redefined", map[string]interface{}{
			"topic": "/cmd",
			"kind":  "Topic",
		})

		assert.Equal(t, "CONSISTENCY: topic redefined [kind=Topic topic=/cmd]: boom", err.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("wrap of nil is nil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, CodeInternal, "unused"))
		assert.Nil(t, WrapWithContext(nil, CodeInternal, "unused", nil))
	})

	t.Run("Is compares codes", func(t *testing.T) {
		err := Newf(CodeReference, "unknown topic %q", "/x")
		assert.ErrorIs(t, err, New(CodeReference, "other"))
		assert.NotErrorIs(t, err, New(CodeParse, "other"))
	})

	t.Run("WithContext does not mutate the receiver", func(t *testing.T) {
		base := New(CodeParse, "bad clause")
		derived := base.WithContext("clause", "reads")

		assert.Empty(t, base.Context)
		assert.Equal(t, "reads", derived.Context["clause"])
	})
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		check  func(error) bool
		expect bool
	}{
		{"consistency", New(CodeConsistency, "x"), IsConsistency, true},
		{"remap cycle is consistency", New(CodeRemapCycle, "x"), IsConsistency, true},
		{"policy conflict", New(CodePolicyConflict, "x"), IsPolicyConflict, true},
		{"reference", New(CodeReference, "x"), IsReference, true},
		{"parse", New(CodeParse, "x"), IsParse, true},
		{"wrapped by fmt", fmt.Errorf("stage: %w", New(CodeReference, "x")), IsReference, true},
		{"nested coded error", Wrap(New(CodeParse, "inner"), CodeInvalidConfig, "outer"), IsParse, true},
		{"plain error", stderrors.New("x"), IsConsistency, false},
		{"nil", nil, IsParse, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.check(tt.err))
		})
	}
}

func TestCodeOf(t *testing.T) {
	require.Equal(t, CodeUnknown, CodeOf(stderrors.New("plain")))
	require.Equal(t, CodeInvalidConfig, CodeOf(Wrap(New(CodeParse, "inner"), CodeInvalidConfig, "outer")))
}
