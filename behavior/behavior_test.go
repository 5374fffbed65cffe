package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luis1ribeiro/SROS2-Utilities/errors"
	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

// newSymbols builds a registry with two message domains, three topics, a
// numeric and an enumerated state and one predicate.
func newSymbols(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()

	_, err := reg.DeclareMessage("std_msgs/String", registry.DomainEnumerated, []string{"bar", "baz"})
	require.NoError(t, err)
	_, err = reg.DeclareMessage("std_msgs/Int32", registry.DomainNumeric, []string{"0", "1", "2"})
	require.NoError(t, err)

	for _, rec := range []registry.TopicRecord{
		{Name: "/foo", Type: "std_msgs/String"},
		{Name: "/out", Type: "std_msgs/String"},
		{Name: "/status", Type: "std_msgs/Int32"},
		{Name: "/robot/status", Type: "std_msgs/Int32"},
	} {
		_, err := reg.RegisterTopic(rec)
		require.NoError(t, err)
	}

	_, err = reg.DeclareState(registry.StateRecord{Name: "baz", Domain: registry.DomainNumeric, Values: []string{"0", "1", "2"}})
	require.NoError(t, err)
	_, err = reg.DeclareState(registry.StateRecord{Name: "mode", Values: []string{"idle", "busy"}})
	require.NoError(t, err)
	_, err = reg.DeclarePredicate("ready", "talker", true)
	require.NoError(t, err)
	return reg
}

func TestParseAndCompile(t *testing.T) {
	reg := newSymbols(t)

	tests := []struct {
		name   string
		source string
		want   Fragment
	}{
		{
			name:   "topic presence",
			source: "requires some /foo",
			want:   "some t.inbox[channel_foo]",
		},
		{
			name:   "topic absence alias",
			source: "requires not /foo",
			want:   "no t.inbox[channel_foo]",
		},
		{
			name:   "topic head value",
			source: "requires exists /foo = bar",
			want:   "first[t.inbox[channel_foo]] = MsgString_Bar",
		},
		{
			name:   "negated topic head value",
			source: "requires no /foo = bar",
			want:   "first[t.inbox[channel_foo]] != MsgString_Bar",
		},
		{
			name:   "state left its default",
			source: "requires some $mode",
			want:   "t.mode != Mode_Idle",
		},
		{
			name:   "state at its default",
			source: "requires no $mode",
			want:   "t.mode = Mode_Idle",
		},
		{
			name:   "numeric state value",
			source: "requires some $baz eql 2",
			want:   "t.baz = 2",
		},
		{
			name:   "negated predicate",
			source: "requires no ?ready",
			want:   "not ready[t]",
		},
		{
			name:   "predicate and topic",
			source: "requires some ?ready and some /foo",
			want:   "(ready[t])\n\tand (some t.inbox[channel_foo])",
		},
		{
			name:   "publish any message",
			source: "publishes /status",
			want:   "(some m : Int32 | t.inbox'[channel_status] = add[t.inbox[channel_status], m])",
		},
		{
			name:   "publish a value",
			source: "publishes /out = bar",
			want:   "t.inbox'[channel_out] = add[t.inbox[channel_out], MsgString_Bar]",
		},
		{
			name:   "increment",
			source: "alters $baz += 1",
			want:   "t.baz' = plus[t.baz, 1]",
		},
		{
			name:   "decrement alias",
			source: "alters $baz rmv 1",
			want:   "t.baz' = minus[t.baz, 1]",
		},
		{
			name:   "enumerated assignment",
			source: "alters $mode = busy",
			want:   "t.mode' = Mode_Busy",
		},
		{
			name:   "read without branches",
			source: "reads /foo",
			want:   "some t.inbox[channel_foo] and t.inbox'[channel_foo] = rest[t.inbox[channel_foo]]",
		},
		{
			name:   "guarded state increment",
			source: "reads /foo then { m = bar implies $baz += 1 }",
			want: "some t.inbox[channel_foo]\n" +
				"\tand (let m = first[t.inbox[channel_foo]] |\n" +
				"\t\t((m = MsgString_Bar implies t.baz' = plus[t.baz, 1] else t.baz' = t.baz)))\n" +
				"\tand t.inbox'[channel_foo] = rest[t.inbox[channel_foo]]",
		},
		{
			name:   "numeric guard",
			source: "reads /status then { m > 1 => no ?ready }",
			want: "some t.inbox[channel_status]\n" +
				"\tand (let m = first[t.inbox[channel_status]] |\n" +
				"\t\t((gt[m.val, 1] implies not ready[t])))\n" +
				"\tand t.inbox'[channel_status] = rest[t.inbox[channel_status]]",
		},
		{
			name:   "branches complete each other's frame",
			source: "reads /foo then { /out = m or $mode = busy }",
			want: "some t.inbox[channel_foo]\n" +
				"\tand (let m = first[t.inbox[channel_foo]] |\n" +
				"\t\t(t.inbox'[channel_out] = add[t.inbox[channel_out], m] and t.mode' = t.mode)\n" +
				"\t\tor (t.mode' = Mode_Busy and t.inbox'[channel_out] = t.inbox[channel_out]))\n" +
				"\tand t.inbox'[channel_foo] = rest[t.inbox[channel_foo]]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, err := Parse(tt.source, reg)
			require.NoError(t, err)
			assert.Equal(t, tt.source, clause.Source())
			assert.Equal(t, tt.want, Compile(clause))
		})
	}
}

func TestParseBuildsTypedNodes(t *testing.T) {
	reg := newSymbols(t)

	t.Run("guarded read", func(t *testing.T) {
		clause, err := Parse("reads /foo then { m = bar implies $baz += 1 }", reg)
		require.NoError(t, err)

		read, ok := clause.(*Read)
		require.True(t, ok)
		assert.Equal(t, "/foo", read.Topic.Name)
		require.Len(t, read.Branches, 1)
		require.Len(t, read.Branches[0], 1)

		guarded, ok := read.Branches[0][0].(*ReadConditional)
		require.True(t, ok)
		assert.Equal(t, OpEqual, guarded.Operator)
		assert.Equal(t, "bar", guarded.Value)
		assert.Same(t, read.Topic, guarded.From())
		assert.Equal(t, "baz", guarded.Consequence.State.Name)
		assert.Equal(t, OpAdd, guarded.Consequence.Operator)
	})

	t.Run("replicating consequence", func(t *testing.T) {
		clause, err := Parse("reads /foo then { /out += m }", reg)
		require.NoError(t, err)

		read := clause.(*Read)
		consequence, ok := read.Branches[0][0].(*ReadConsequence)
		require.True(t, ok)
		assert.True(t, consequence.Replicate)
		assert.Equal(t, "/out", consequence.Topic.Name)
	})

	t.Run("a single condition is not wrapped", func(t *testing.T) {
		clause, err := Parse("requires some /foo", reg)
		require.NoError(t, err)
		_, ok := clause.(*Conditional)
		assert.True(t, ok)
	})
}

func TestParseErrors(t *testing.T) {
	reg := newSymbols(t)

	tests := []struct {
		name      string
		source    string
		reference bool
	}{
		{name: "unknown keyword", source: "frobnicates /foo"},
		{name: "unterminated branch", source: "reads /foo then { $baz = 1"},
		{name: "predicate with a value", source: "requires some ?ready = bar"},
		{name: "unknown topic", source: "publishes /missing", reference: true},
		{name: "unknown state", source: "alters $missing = 1", reference: true},
		{name: "unknown predicate", source: "requires some ?missing", reference: true},
		{name: "value outside the topic domain", source: "publishes /foo = qux", reference: true},
		{name: "value outside the state domain", source: "alters $baz = 7", reference: true},
		{name: "increment of an enumerated state", source: "alters $mode += busy", reference: true},
		{name: "ordering on an enumerated topic", source: "reads /foo then { m > bar implies $baz = 1 }", reference: true},
		{name: "write back to the read topic", source: "reads /foo then { /foo = m }", reference: true},
		{name: "replicate across types", source: "reads /foo then { /status = m }", reference: true},
		{name: "decrement of a topic", source: "reads /foo then { /out -= bar }", reference: true},
		{name: "guarded read of an unknown topic", source: "reads /nope then { m = bar implies $baz += 1 }", reference: true},
		{name: "guarded read updating an unknown state", source: "reads /foo then { m = bar implies $nope += 1 }", reference: true},
		{name: "guard value outside the topic domain", source: "reads /foo then { m = qux implies $baz += 1 }", reference: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.source, reg)
			require.Error(t, err)
			if tt.reference {
				assert.True(t, errors.IsReference(err), "want a reference error, got %v", err)
			} else {
				assert.True(t, errors.IsParse(err), "want a parse error, got %v", err)
			}
			assert.Contains(t, err.Error(), tt.source)
		})
	}
}

func TestParseAll(t *testing.T) {
	reg := newSymbols(t)

	t.Run("conjoins clauses", func(t *testing.T) {
		clause, err := ParseAll([]string{"requires some /foo", "alters $baz = 2"}, reg)
		require.NoError(t, err)
		assert.Equal(t, Fragment("(some t.inbox[channel_foo])\n\tand (t.baz' = 2)"), Compile(clause))
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		_, err := ParseAll([]string{"requires some /foo", "publishes /missing"}, reg)
		require.Error(t, err)
		assert.True(t, errors.IsReference(err))
	})

	t.Run("empty behavior", func(t *testing.T) {
		_, err := ParseAll(nil, reg)
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidInput, errors.CodeOf(err))
	})
}

func TestTargets(t *testing.T) {
	reg := newSymbols(t)

	tests := []struct {
		name   string
		source string
		topics []string
		states []string
	}{
		{name: "condition writes nothing", source: "requires some /foo"},
		{name: "publish", source: "publishes /status", topics: []string{"/status"}},
		{name: "alter", source: "alters $baz += 1", states: []string{"baz"}},
		{
			name:   "read pops its topic and collects branch writes",
			source: "reads /foo then { /out = m or $mode = busy and m = bar implies $baz = 0 }",
			topics: []string{"/foo", "/out"},
			states: []string{"mode", "baz"},
		},
		{name: "negated predicate writes nothing", source: "reads /status then { no ?ready }", topics: []string{"/status"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, err := Parse(tt.source, reg)
			require.NoError(t, err)

			topics, states := Targets(clause)
			var topicNames, stateNames []string
			for _, tp := range topics {
				topicNames = append(topicNames, tp.Name)
			}
			for _, s := range states {
				stateNames = append(stateNames, s.Name)
			}
			assert.Equal(t, tt.topics, topicNames)
			assert.Equal(t, tt.states, stateNames)
		})
	}
}

func TestParseState(t *testing.T) {
	tests := []struct {
		name        string
		declaration string
		values      string
		want        registry.StateRecord
		wantErr     bool
	}{
		{
			name:        "public numeric",
			declaration: "public int counter",
			values:      "0/1/2",
			want:        registry.StateRecord{Name: "counter", Public: true, Domain: registry.DomainNumeric, Values: []string{"0", "1", "2"}},
		},
		{
			name:        "private by default",
			declaration: "$mode",
			values:      "idle / busy",
			want:        registry.StateRecord{Name: "mode", Values: []string{"idle", "busy"}},
		},
		{
			name:        "explicitly private",
			declaration: "private mode",
			values:      "idle",
			want:        registry.StateRecord{Name: "mode", Values: []string{"idle"}},
		},
		{
			name:        "no values",
			declaration: "mode",
			values:      " / ",
			wantErr:     true,
		},
		{
			name:        "unknown visibility",
			declaration: "protected int mode extra",
			values:      "0",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseState(tt.declaration, tt.values)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsParse(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNodeScope(t *testing.T) {
	reg := newSymbols(t)
	_, err := reg.AddPackage("robot_pkg", "")
	require.NoError(t, err)

	node, err := reg.RegisterNode(registry.NodeRecord{
		Name:       "driver",
		Namespace:  "/robot",
		Package:    "robot_pkg",
		Executable: "driver",
		Advertise:  []string{"status"},
	})
	require.NoError(t, err)

	t.Run("relative names resolve in the node namespace", func(t *testing.T) {
		clause, err := Parse("publishes status", NodeScope(reg, node))
		require.NoError(t, err)
		assert.Equal(t, "/robot/status", clause.(*Publish).Topic.Name)
	})

	t.Run("absolute names are kept", func(t *testing.T) {
		clause, err := Parse("publishes /status", NodeScope(reg, node))
		require.NoError(t, err)
		assert.Equal(t, "/status", clause.(*Publish).Topic.Name)
	})

	t.Run("nil node is the plain registry", func(t *testing.T) {
		_, err := Parse("publishes status", NodeScope(reg, nil))
		require.Error(t, err)
		assert.True(t, errors.IsReference(err))
	})
}
