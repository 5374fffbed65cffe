package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luis1ribeiro/SROS2-Utilities/errors"
	"github.com/luis1ribeiro/SROS2-Utilities/fs/billy"
	"github.com/luis1ribeiro/SROS2-Utilities/policy"
)

const validCUE = `
version: "1.2.0"
steps:   6

packages: [{name: "demo"}]
messages: [
	{type: "std_msgs/Int32", kind: "numeric", values: ["0", "1"]},
	{type: "std_msgs/String", values: ["on", "off"]},
]
topics: [
	{name: "/status", type: "std_msgs/Int32"},
	{name: "/cmd", type: "std_msgs/String"},
]
states: [{declaration: "public mode", values: "idle/busy"}]
nodes: [
	{
		name:       "talker"
		package:    "demo"
		executable: "talker"
		enclave:    "/secure"
		advertise: ["/status"]
		behaviour: [{name: "talk", clauses: ["publishes /status"]}]
	},
	{
		name:       "listener"
		namespace:  "robot"
		package:    "demo"
		executable: "listener"
		remaps: [{from: "in", to: "/status"}]
		subscribe: ["in"]
		behaviour: [
			{name: "listen", clauses: ["reads /status"]},
			{name: "idle", subclause: true, clauses: ["requires no $mode"]},
		]
	},
]
policy: enclaves: [
	{path: "/secure", profiles: [{node: "talker", allow_publish: ["status"]}]},
	{path: "/public", profiles: [{namespace: "/robot", node: "listener", allow_subscribe: ["/status"]}]},
]
`

const validYAML = `
version: 1.2.0
steps: 6
packages:
  - name: demo
messages:
  - type: std_msgs/Int32
    kind: numeric
    values: ["0", "1"]
  - type: std_msgs/String
    values: ["on", "off"]
topics:
  - name: /status
    type: std_msgs/Int32
  - name: /cmd
    type: std_msgs/String
states:
  - declaration: public mode
    values: idle/busy
nodes:
  - name: talker
    package: demo
    executable: talker
    enclave: /secure
    advertise: [/status]
    behaviour:
      - name: talk
        clauses: ["publishes /status"]
  - name: listener
    namespace: robot
    package: demo
    executable: listener
    remaps:
      - from: in
        to: /status
    subscribe: [in]
    behaviour:
      - name: listen
        clauses: ["reads /status"]
      - name: idle
        subclause: true
        clauses: ["requires no $mode"]
policy:
  enclaves:
    - path: /secure
      profiles:
        - node: talker
          allow_publish: [status]
    - path: /public
      profiles:
        - namespace: /robot
          node: listener
          allow_subscribe: [/status]
`

// setupTestFS creates a memory filesystem holding the given files.
func setupTestFS(t *testing.T, files map[string]string) *billy.FS {
	t.Helper()
	fs := billy.NewInMemoryFS()
	for name, content := range files {
		require.NoError(t, fs.WriteFile(name, []byte(content), 0o644))
	}
	return fs
}

func TestLoad_Valid(t *testing.T) {
	fs := setupTestFS(t, map[string]string{
		"deploy/app.cue":  validCUE,
		"deploy/app.yaml": validYAML,
	})

	for _, path := range []string{"deploy/app.cue", "deploy/app.yaml"} {
		t.Run(path, func(t *testing.T) {
			d, err := Load(context.Background(), fs, path)
			require.NoError(t, err)

			assert.Equal(t, path, d.Source)
			assert.Equal(t, "1.2.0", d.Version)
			assert.Equal(t, 6, d.Steps)
			assert.Zero(t, d.Scope)
			assert.Equal(t, []string{"/status", "/cmd"}, d.ListTopics())
			assert.Equal(t, []string{"std_msgs/Int32", "std_msgs/String"}, d.ListMessages())

			assert.Equal(t, KindNumeric, d.Messages[0].Kind)
			assert.Equal(t, KindEnumerated, d.Messages[1].Kind, "kind defaults to enumerated")

			listener, ok := d.GetNode("/robot/listener")
			require.True(t, ok)
			assert.Equal(t, []Remap{{From: "in", To: "/status"}}, listener.Remaps)
			require.Len(t, listener.Behaviour, 2)
			assert.False(t, listener.Behaviour[0].SubClause)
			assert.True(t, listener.Behaviour[1].SubClause)
			assert.Equal(t, []string{"talk", "listen", "idle"}, d.ListPredicates())

			require.NotNil(t, d.Policy)
			require.Len(t, d.Policy.Enclaves, 2)
			assert.Equal(t, policy.ProfileTree{Namespace: "/robot", Node: "listener", AllowSubscribe: []string{"/status"}},
				d.Policy.Enclaves[1].Profiles[0])
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		content  string
		wantCode errors.ErrorCode
		wantMsg  string
	}{
		{
			name:     "cue syntax",
			path:     "bad.cue",
			content:  `version: "1.2.0" topics: [`,
			wantCode: errors.CodeCUELoadFailed,
		},
		{
			name:     "yaml syntax",
			path:     "bad.yaml",
			content:  "version: [1.2.0\n",
			wantCode: errors.CodeYAMLDecodeFailed,
		},
		{
			name:     "empty yaml",
			path:     "empty.yml",
			content:  "",
			wantCode: errors.CodeYAMLDecodeFailed,
		},
		{
			name:     "schema mismatch",
			path:     "shape.cue",
			content:  `version: "1.2.0", topics: [{name: "/a"}], nodes: []`,
			wantCode: errors.CodeSchemaFailed,
		},
		{
			name:     "unknown field in yaml",
			path:     "shape.yaml",
			content:  "version: 1.2.0\ntopics: []\nnodes: []\nlaunch: x\n",
			wantCode: errors.CodeSchemaFailed,
		},
		{
			name:     "incompatible version",
			path:     "old.cue",
			content:  `version: "0.9.0", topics: [], nodes: []`,
			wantCode: errors.CodeInvalidConfig,
			wantMsg:  "not compatible",
		},
		{
			name: "unknown package",
			path: "pkg.cue",
			content: `version: "1.2.0"
packages: [{name: "demo"}]
topics: []
nodes: [{name: "a", package: "other", executable: "a"}]`,
			wantCode: errors.CodeInvalidConfig,
			wantMsg:  `node "a" references unknown package "other" (available packages: demo)`,
		},
		{
			name: "duplicate predicate",
			path: "pred.cue",
			content: `version: "1.2.0"
topics: []
nodes: [
	{name: "a", package: "p", executable: "a", behaviour: [{name: "go", clauses: ["requires some $x"]}]},
	{name: "b", package: "p", executable: "b", behaviour: [{name: "go", clauses: ["requires no $x"]}]},
]`,
			wantCode: errors.CodeInvalidConfig,
			wantMsg:  `predicate "go" of node "/b" is already defined by node "/a"`,
		},
		{
			name: "two policy sources",
			path: "policy.cue",
			content: `version: "1.2.0"
topics: []
nodes: []
policy: enclaves: []
policy_file: "policy.xml"`,
			wantCode: errors.CodeInvalidConfig,
			wantMsg:  "mutually exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := setupTestFS(t, map[string]string{tt.path: tt.content})

			d, err := Load(context.Background(), fs, tt.path)
			require.Error(t, err)
			assert.Nil(t, d)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), billy.NewInMemoryFS(), "missing.cue")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))
}

func TestLoad_SkipValidation(t *testing.T) {
	fs := setupTestFS(t, map[string]string{
		"old.cue": `version: "0.9.0", topics: [], nodes: []`,
	})

	d, err := Load(context.Background(), fs, "old.cue", WithSkipValidation())
	require.NoError(t, err)
	assert.Equal(t, "0.9.0", d.Version)

	require.Error(t, d.Validate())
}

func TestLoad_Cancelled(t *testing.T) {
	fs := setupTestFS(t, map[string]string{"app.cue": validCUE})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, fs, "app.cue")
	require.ErrorIs(t, err, context.Canceled)
}

func TestNodeRecord(t *testing.T) {
	n := Node{
		Name:       "listener",
		Namespace:  "robot",
		Package:    "demo",
		Executable: "listener",
		Remaps:     []Remap{{From: "in", To: "/status"}},
		Subscribe:  []string{"in"},
	}

	rec := n.Record()
	assert.Equal(t, "/robot/listener", n.RosName())
	assert.Equal(t, "robot", rec.Namespace)
	require.Len(t, rec.Remaps, 1)
	assert.Equal(t, "in", rec.Remaps[0].From)
	assert.Equal(t, "/status", rec.Remaps[0].To)
	assert.Equal(t, []string{"in"}, rec.Subscribe)
}
