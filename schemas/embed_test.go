package schema

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCueModuleEmbedded(t *testing.T) {
	data, err := Source()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	content := string(data)
	assert.Contains(t, content, "package schema")
	assert.Contains(t, content, Definition+":")
}

func TestDefinitionValidates(t *testing.T) {
	data, err := Source()
	require.NoError(t, err)

	ctx := cuecontext.New()
	schemaValue := ctx.CompileBytes(data, cue.Filename(SchemaFile))
	require.NoError(t, schemaValue.Err())
	def := schemaValue.LookupPath(cue.ParsePath(Definition))
	require.True(t, def.Exists())

	tests := []struct {
		name    string
		source  string
		wantErr bool
	}{
		{
			name: "minimal",
			source: `
version: "1.2.0"
topics: [{name: "/status", type: "std_msgs/Int32"}]
nodes: [{name: "talker", package: "demo", executable: "talker"}]
`,
		},
		{
			name: "behaviour and inline policy",
			source: `
version: "1.2.0"
messages: [{type: "std_msgs/Int32", kind: "numeric", values: ["0", "1"]}]
topics: [{name: "/status", type: "std_msgs/Int32"}]
states: [{declaration: "public int counter", values: "0/1"}]
nodes: [{
	name: "talker", package: "demo", executable: "talker"
	behaviour: [{name: "talk", clauses: ["publishes /status"]}]
}]
policy: enclaves: [{path: "/public", profiles: [{node: "talker", allow_publish: ["status"]}]}]
`,
		},
		{
			name:    "missing version",
			source:  `topics: [], nodes: []`,
			wantErr: true,
		},
		{
			name:    "unknown field",
			source:  `version: "1.2.0", topics: [], nodes: [], launch: "x"`,
			wantErr: true,
		},
		{
			name:    "unknown message kind",
			source:  `version: "1.2.0", topics: [], nodes: [], messages: [{type: "T", kind: "float", values: ["1"]}]`,
			wantErr: true,
		},
		{
			name:    "empty clause list",
			source:  `version: "1.2.0", topics: [], nodes: [{name: "a", package: "p", executable: "a", behaviour: [{name: "b", clauses: []}]}]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ctx.CompileString(tt.source)
			require.NoError(t, v.Err())
			err := def.Unify(v).Validate(cue.Concrete(true))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
