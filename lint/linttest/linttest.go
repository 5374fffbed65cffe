// Package linttest builds small deployments for rule tests.
package linttest

import (
	"testing"

	"github.com/luis1ribeiro/SROS2-Utilities/analysis"
	"github.com/luis1ribeiro/SROS2-Utilities/lint"
	"github.com/luis1ribeiro/SROS2-Utilities/policy"
	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

// Deployment returns a model-level context over a deployment that trips
// every built-in rule exactly once:
//
//   - /a runs in /priv and publishes /status to /b in /public;
//   - /a also publishes /cmd, which its profile does not grant;
//   - /b is launched in /priv although its profile belongs to /public;
//   - /c has no profile and /orphan has no node;
//   - /a is granted /ghost, which is not a topic;
//   - /Heartbeat is badly named and its message type has no values;
//   - /_debug is hidden.
func Deployment(tb testing.TB) *lint.Context {
	tb.Helper()

	reg := registry.New()
	must(tb, func() error { _, err := reg.AddPackage("demo", ""); return err })
	must(tb, func() error {
		_, err := reg.DeclareMessage("std_msgs/Int32", registry.DomainNumeric, []string{"0", "1"})
		return err
	})
	for _, rec := range []registry.TopicRecord{
		{Name: "/status", Type: "std_msgs/Int32"},
		{Name: "/cmd", Type: "std_msgs/Int32"},
		{Name: "/Heartbeat", Type: "std_msgs/Empty"},
		{Name: "/_debug", Type: "std_msgs/Int32"},
	} {
		must(tb, func() error { _, err := reg.RegisterTopic(rec); return err })
	}
	for _, rec := range []registry.NodeRecord{
		{Name: "a", Package: "demo", Executable: "a", Enclave: "/priv", Advertise: []string{"/status", "/cmd"}},
		{Name: "b", Package: "demo", Executable: "b", Enclave: "/priv", Subscribe: []string{"/status"}},
		{Name: "c", Package: "demo", Executable: "c"},
	} {
		must(tb, func() error { _, err := reg.RegisterNode(rec); return err })
	}

	pol := policy.New()
	must(tb, func() error {
		return pol.Load(policy.Tree{Enclaves: []policy.EnclaveTree{
			{
				Path: "/priv",
				Profiles: []policy.ProfileTree{
					{Node: "a", AllowPublish: []string{"/status", "/ghost"}},
					{Node: "orphan", AllowSubscribe: []string{"/cmd"}},
				},
			},
			{
				Path:     policy.PublicEnclave,
				Profiles: []policy.ProfileTree{{Node: "b", AllowSubscribe: []string{"/status", "/Heartbeat"}}},
			},
		}})
	})

	binding := analysis.Bind(reg, pol)
	return lint.NewContext(reg, pol, binding, analysis.Connect(binding.Nodes))
}

func must(tb testing.TB, fn func() error) {
	tb.Helper()
	if err := fn(); err != nil {
		tb.Fatalf("linttest: building deployment: %v", err)
	}
}
