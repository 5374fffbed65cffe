package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luis1ribeiro/SROS2-Utilities/errors"
)

func TestResolveRemaps(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []Remap
		want    []Remap
		wantErr bool
	}{
		{
			name:  "chain resolves transitively",
			pairs: []Remap{{"a", "b"}, {"b", "c"}},
			want:  []Remap{{"a", "c"}, {"b", "c"}},
		},
		{
			name:  "self remap is dropped",
			pairs: []Remap{{"a", "a"}},
			want:  []Remap{},
		},
		{
			name:  "first declaration wins",
			pairs: []Remap{{"a", "b"}, {"a", "c"}},
			want:  []Remap{{"a", "b"}},
		},
		{
			name:  "self rule terminates a chain",
			pairs: []Remap{{"a", "b"}, {"b", "b"}},
			want:  []Remap{{"a", "b"}},
		},
		{
			name:  "long chain declared out of order",
			pairs: []Remap{{"c", "d"}, {"a", "b"}, {"b", "c"}},
			want:  []Remap{{"c", "d"}, {"a", "d"}, {"b", "d"}},
		},
		{
			name:    "two rule cycle",
			pairs:   []Remap{{"a", "b"}, {"b", "a"}},
			wantErr: true,
		},
		{
			name:    "cycle reached from outside",
			pairs:   []Remap{{"x", "a"}, {"a", "b"}, {"b", "c"}, {"c", "a"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveRemaps(tt.pairs)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.CodeRemapCycle))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply(t *testing.T) {
	resolved := []Remap{{"a", "c"}}
	assert.Equal(t, "c", Apply(resolved, "a"))
	assert.Equal(t, "z", Apply(resolved, "z"))
}

func TestSignatures(t *testing.T) {
	assert.Equal(t, "channel_robot_cmd_vel", TopicSignature("/robot/cmd_vel"))
	assert.Equal(t, "channel_status", TopicSignature("status"))
	assert.Equal(t, "Int32", TypeSignature("std_msgs/msg/Int32"))
	assert.Equal(t, "Twist", TypeSignature("geometry_msgs/msg/Twist"))
	assert.Equal(t, "MsgInt", TypeSignature("Int"))
	assert.Equal(t, "Int32_Neg1", ValueAtom("Int32", "-1"))
	assert.Equal(t, "node_a", NodeSignature("/a"))
	assert.Equal(t, "s_set", VariableName("set"))
}
