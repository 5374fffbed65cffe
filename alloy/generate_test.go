package alloy

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luis1ribeiro/SROS2-Utilities/analysis"
	"github.com/luis1ribeiro/SROS2-Utilities/behavior"
	"github.com/luis1ribeiro/SROS2-Utilities/errors"
	"github.com/luis1ribeiro/SROS2-Utilities/policy"
	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

type fixture struct {
	reg       *registry.Registry
	pol       *policy.Policy
	behaviors map[string][]string
}

// statusDeployment has /a publishing /status:Int32{0,1} to /b, with a in
// enclave aEnclave and b in the public enclave.
func statusDeployment(t *testing.T, aEnclave string) *fixture {
	t.Helper()
	reg := registry.New()
	_, err := reg.AddPackage("demo", "")
	require.NoError(t, err)
	_, err = reg.DeclareMessage("std_msgs/Int32", registry.DomainNumeric, []string{"0", "1"})
	require.NoError(t, err)
	_, err = reg.RegisterTopic(registry.TopicRecord{Name: "/status", Type: "std_msgs/Int32"})
	require.NoError(t, err)
	_, err = reg.DeclareState(registry.StateRecord{Name: "secret", Domain: registry.DomainNumeric, Values: []string{"0", "1"}})
	require.NoError(t, err)
	_, err = reg.DeclareState(registry.StateRecord{Name: "mode", Public: true, Values: []string{"idle", "busy"}})
	require.NoError(t, err)

	_, err = reg.RegisterNode(registry.NodeRecord{Name: "a", Package: "demo", Executable: "a", Advertise: []string{"/status"}})
	require.NoError(t, err)
	_, err = reg.RegisterNode(registry.NodeRecord{Name: "b", Package: "demo", Executable: "b", Subscribe: []string{"/status"}})
	require.NoError(t, err)

	pol := policy.New()
	require.NoError(t, pol.Load(policy.Tree{Enclaves: []policy.EnclaveTree{
		{Path: aEnclave, Profiles: []policy.ProfileTree{{Node: "a", AllowPublish: []string{"/status"}}}},
		{Path: policy.PublicEnclave, Profiles: []policy.ProfileTree{{Node: "b", AllowSubscribe: []string{"/status"}}}},
	}}))

	return &fixture{
		reg: reg,
		pol: pol,
		behaviors: map[string][]string{
			"talk":   {"requires some $secret", "publishes /status = 1"},
			"listen": {"reads /status then { m = 1 implies $mode = busy }"},
		},
	}
}

func (f *fixture) model(t *testing.T) Model {
	t.Helper()
	binding := analysis.Bind(f.reg, f.pol)
	m := Model{
		Registry: f.reg,
		Policy:   f.pol,
		Nodes:    binding.Nodes,
		Graph:    analysis.Connect(binding.Nodes),
	}

	owners := map[string]string{"talk": "a", "listen": "b"}
	for _, name := range []string{"talk", "listen"} {
		node, ok := binding.Node("/" + owners[name])
		require.True(t, ok)
		pred, err := f.reg.DeclarePredicate(name, node.RosName(), false)
		require.NoError(t, err)
		clause, err := behavior.ParseAll(f.behaviors[name], behavior.NodeScope(f.reg, node.Node))
		require.NoError(t, err)
		m.Behaviors = append(m.Behaviors, Behavior{Predicate: pred, Node: node.Node, Clause: clause})
	}
	return m
}

func TestGenerateBoundaryFlow(t *testing.T) {
	doc, err := Generate(statusDeployment(t, "/priv").model(t))
	require.NoError(t, err)

	t.Run("one check per boundary topic", func(t *testing.T) {
		require.Len(t, doc.Checks, 1)
		assert.Equal(t, "non_interference_channel_status", doc.Checks[0].Name)
		assert.Equal(t, "/status", doc.Checks[0].Topic.Name)
		assert.Equal(t, []string{"node_a"}, doc.Checks[0].Advertisers)
		assert.Empty(t, doc.Advisories)
		assert.Equal(t, 1, strings.Count(doc.Text, "\ncheck "))
		assert.Contains(t, doc.Text,
			"check non_interference_channel_status {\n"+
				"\talways (all m0, m1 : Message | publish[T1, channel_status, m0] and publish[T2, channel_status, m1] implies m0 = m1)\n"+
				"} for 4 but 1..10 steps\n")
	})

	t.Run("synchronization names the advertiser", func(t *testing.T) {
		assert.Contains(t, doc.Text,
			"\tchannel_status in node_a.advertises\n"+
				"\talways ((some m0 : Message | publish[T1, channel_status, m0]) iff (some m1 : Message | publish[T2, channel_status, m1]))\n")
		assert.NotContains(t, doc.Text, "all m : Message | publish[T1, channel_status, m] iff")
	})

	t.Run("public state is equivalent", func(t *testing.T) {
		assert.Contains(t, doc.Text, "fact public_state_equivalence {\n\talways T1.mode = T2.mode\n}\n")
		assert.NotContains(t, doc.Text, "T1.secret = T2.secret")
	})

	t.Run("declarations", func(t *testing.T) {
		for _, want := range []string{
			"open util/sequniv\n",
			"abstract sig State_Mode {}\none sig Mode_Idle, Mode_Busy extends State_Mode {}\n",
			"one sig channel_status extends Channel {}\n",
			"abstract sig Int32 extends Message {}\none sig Int32_0 extends Int32 {} {\n\tval = 0\n}\n",
			"one sig node_a extends Node {} {\n\tadvertises = channel_status\n\tno subscribes\n}\n",
			"one sig node_b extends Node {} {\n\tno advertises\n\tsubscribes = channel_status\n}\n",
			"one sig enclave_priv extends Enclave {} {\n\tprofiles = profile_a\n}\n",
			"one sig privilege_a_advertise_status_allow extends Privilege {} {\n\trole = Advertise\n\trule = Allow\n\tobject = object_status\n}\n",
			"one sig profile_a extends Profile {} {\n\tprivileges = privilege_a_advertise_status_allow\n}\n",
			"\tvar inbox : Channel -> (seq Message),\n\tvar secret : one Int,\n\tvar mode : one State_Mode\n}\n",
			"one sig T1, T2 extends Execution {}\n",
			"\t\telems[t.inbox[channel_status]] in Int32\n",
			"\t\tt.secret in 0 + 1\n",
			"\t\tno t.inbox\n\t\tt.secret = 0\n\t\tt.mode = Mode_Idle\n",
		} {
			assert.Contains(t, doc.Text, want)
		}
	})

	t.Run("behaviors carry frame conditions", func(t *testing.T) {
		assert.Contains(t, doc.Text,
			"// /a\npred talk [t : Execution] {\n"+
				"\t(t.secret != 0)\n"+
				"\tand (t.inbox'[channel_status] = add[t.inbox[channel_status], Int32_1])\n"+
				"\tt.secret' = t.secret\n"+
				"\tt.mode' = t.mode\n"+
				"\tall c : Channel - (channel_status) | t.inbox'[c] = t.inbox[c]\n"+
				"}\n")
		assert.Contains(t, doc.Text, "\tt.secret' = t.secret\n\tall c : Channel - (channel_status) | t.inbox'[c] = t.inbox[c]\n}\n")
		assert.Contains(t, doc.Text, "pred system [t : Execution] {\n\ttalk[t]\n\tor listen[t]\n}\n")
		assert.Contains(t, doc.Text, "always all t : Execution | nop[t] or system[t]")
	})

	t.Run("sections are ordered", func(t *testing.T) {
		order := []string{
			"/* === STATES === */",
			"/* === CHANNELS === */",
			"/* === MESSAGES === */",
			"/* === SECURITY === */",
			"/* === SELF-COMPOSITION === */",
			"/* === PREDICATES === */",
			"fact public_state_equivalence",
			"fact public_event_synchronization",
			"/* === NON-INTERFERENCE === */",
		}
		last := -1
		for _, marker := range order {
			idx := strings.Index(doc.Text, marker)
			require.NotEqual(t, -1, idx, marker)
			assert.Greater(t, idx, last, marker)
			last = idx
		}
	})

	t.Run("write to", func(t *testing.T) {
		var buf bytes.Buffer
		n, err := doc.WriteTo(&buf)
		require.NoError(t, err)
		assert.Equal(t, int64(len(doc.Text)), n)
		assert.Equal(t, doc.Text, buf.String())
	})
}

func TestGenerateVacuous(t *testing.T) {
	doc, err := Generate(statusDeployment(t, policy.PublicEnclave).model(t))
	require.NoError(t, err)

	assert.Empty(t, doc.Checks)
	assert.Equal(t, []string{VacuousAdvisory}, doc.Advisories)
	assert.NotContains(t, doc.Text, "\ncheck ")
	assert.NotContains(t, doc.Text, "NON-INTERFERENCE")

	// /status is now a public input: same content in both executions.
	assert.Contains(t, doc.Text,
		"\talways (all m : Message | publish[T1, channel_status, m] iff publish[T2, channel_status, m])\n")
}

func TestGenerateOptions(t *testing.T) {
	t.Run("bounds", func(t *testing.T) {
		doc, err := Generate(statusDeployment(t, "/priv").model(t), WithScope(6), WithSteps(3), WithInbox(2))
		require.NoError(t, err)
		assert.Contains(t, doc.Text, "} for 6 but 2 seq, 1..3 steps\n")
	})

	t.Run("invalid bounds", func(t *testing.T) {
		_, err := Generate(statusDeployment(t, "/priv").model(t), WithSteps(0))
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidInput, errors.CodeOf(err))
	})

	t.Run("incomplete model", func(t *testing.T) {
		doc, err := Generate(Model{})
		require.Error(t, err)
		assert.Nil(t, doc)
	})
}

func TestGenerateIntBitwidth(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		opts    []Option
		want    string
		wantErr bool
	}{
		{
			name:   "small domains keep the default bitwidth",
			values: []string{"0", "3"},
			want:   "} for 4 but 1..10 steps\n",
		},
		{
			name:   "sums of large values fit",
			values: []string{"0", "10", "20"},
			want:   "} for 4 but 7 Int, 1..10 steps\n",
		},
		{
			name:   "negative values count by magnitude",
			values: []string{"-100", "5"},
			want:   "} for 4 but 9 Int, 1..10 steps\n",
		},
		{
			name:   "combined with an inbox bound",
			values: []string{"0", "20"},
			opts:   []Option{WithInbox(2)},
			want:   "} for 4 but 7 Int, 2 seq, 1..10 steps\n",
		},
		{
			name:    "values beyond the largest bitwidth",
			values:  []string{"0", "1000000000"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := statusDeployment(t, "/priv")
			_, err := f.reg.DeclareState(registry.StateRecord{Name: "counter", Domain: registry.DomainNumeric, Values: tt.values})
			require.NoError(t, err)

			doc, err := Generate(f.model(t), tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, doc)
				assert.Equal(t, errors.CodeInvalidInput, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Contains(t, doc.Text, tt.want)
		})
	}
}

func TestGenerateWithoutBehaviors(t *testing.T) {
	f := statusDeployment(t, "/priv")
	binding := analysis.Bind(f.reg, f.pol)

	doc, err := Generate(Model{
		Registry: f.reg,
		Policy:   f.pol,
		Nodes:    binding.Nodes,
		Graph:    analysis.Connect(binding.Nodes),
	})
	require.NoError(t, err)

	assert.Contains(t, doc.Text, "pred system [t : Execution] {\n\tsome none\n}\n")
	assert.Len(t, doc.Checks, 1)
}

func TestGenerateSignatureCollision(t *testing.T) {
	f := statusDeployment(t, "/priv")
	_, err := f.reg.RegisterTopic(registry.TopicRecord{Name: "/a/b", Type: "std_msgs/Int32"})
	require.NoError(t, err)
	_, err = f.reg.RegisterTopic(registry.TopicRecord{Name: "/a_b", Type: "std_msgs/Int32"})
	require.NoError(t, err)

	doc, err := Generate(f.model(t))
	require.Error(t, err)
	assert.Nil(t, doc)
	assert.True(t, errors.IsConsistency(err))
	assert.Contains(t, err.Error(), "channel_a_b")
}
