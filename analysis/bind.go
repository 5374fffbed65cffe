// Package analysis binds deployment nodes to their security profiles and
// computes the information-flow graph between them.
package analysis

import (
	"github.com/luis1ribeiro/SROS2-Utilities/policy"
	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

// Node is a deployment node paired with the profile that governs it.
type Node struct {
	Node    *registry.Node
	Profile *policy.Profile
	Enclave *policy.Enclave
	// Advertise and Subscribe are the registered topics the profile grants.
	Advertise []*registry.Topic
	Subscribe []*registry.Topic
}

// RosName returns the fully qualified name of the node.
func (n *Node) RosName() string { return n.Node.RosName() }

// Signature returns the Alloy signature of the node.
func (n *Node) Signature() string { return n.Node.Signature }

// Secure reports whether the node runs in a private enclave.
func (n *Node) Secure() bool { return !n.Enclave.Public }

// Advertises reports whether the node is granted publication on topic.
func (n *Node) Advertises(topic *registry.Topic) bool { return contains(n.Advertise, topic) }

// Subscribes reports whether the node is granted subscription to topic.
func (n *Node) Subscribes(topic *registry.Topic) bool { return contains(n.Subscribe, topic) }

// NodeSummary is the serializable view of a bound node.
type NodeSummary struct {
	Node      string      `json:"node"`
	Package   string      `json:"package"`
	Namespace string      `json:"namespace"`
	RosName   string      `json:"rosname"`
	Enclave   string      `json:"enclave"`
	Topics    TopicAccess `json:"topics"`
}

// TopicAccess lists topic names by role.
type TopicAccess struct {
	Subscribe []string `json:"subscribe"`
	Advertise []string `json:"advertise"`
}

// Summary returns the serializable view of the node.
func (n *Node) Summary() NodeSummary {
	return NodeSummary{
		Node:      n.Node.Identity(),
		Package:   n.Node.Package,
		Namespace: n.Node.Namespace,
		RosName:   n.RosName(),
		Enclave:   n.Enclave.Path,
		Topics: TopicAccess{
			Subscribe: names(n.Subscribe),
			Advertise: names(n.Advertise),
		},
	}
}

// DanglingPrivilege is a granted topic that no registered topic matches.
type DanglingPrivilege struct {
	Profile *policy.Profile
	Role    policy.Role
	Topic   string
}

// Binding is the result of pairing nodes with profiles.
type Binding struct {
	Nodes []*Node
	// UnboundProfiles have no node with the same fully qualified name.
	UnboundProfiles []*policy.Profile
	// UnboundNodes have no profile and take no part in the analysis.
	UnboundNodes []*registry.Node
	Dangling     []DanglingPrivilege
}

// Node returns the bound node with the given fully qualified name.
func (b *Binding) Node(rosname string) (*Node, bool) {
	for _, n := range b.Nodes {
		if n.RosName() == rosname {
			return n, true
		}
	}
	return nil, false
}

// Bind pairs every registered node with the profile of the same fully
// qualified name. Nodes keep registry order. Nothing in the binding is fatal:
// the unmatched sides are reported on the Binding.
func Bind(reg *registry.Registry, pol *policy.Policy) *Binding {
	b := &Binding{}
	used := make(map[*policy.Profile]bool)

	for _, rn := range reg.Nodes() {
		profile, ok := pol.Profile(rn.RosName())
		if !ok {
			b.UnboundNodes = append(b.UnboundNodes, rn)
			continue
		}
		used[profile] = true

		n := &Node{Node: rn, Profile: profile, Enclave: profile.Enclave}
		n.Advertise = b.grant(reg, profile, policy.RoleAdvertise)
		n.Subscribe = b.grant(reg, profile, policy.RoleSubscribe)
		b.Nodes = append(b.Nodes, n)
	}

	for _, p := range pol.Profiles() {
		if !used[p] {
			b.UnboundProfiles = append(b.UnboundProfiles, p)
		}
	}
	return b
}

func (b *Binding) grant(reg *registry.Registry, profile *policy.Profile, role policy.Role) []*registry.Topic {
	var topics []*registry.Topic
	for _, name := range profile.Granted(role) {
		t, ok := reg.Topic(name)
		if !ok {
			b.Dangling = append(b.Dangling, DanglingPrivilege{Profile: profile, Role: role, Topic: name})
			continue
		}
		topics = append(topics, t)
	}
	return topics
}

func contains(topics []*registry.Topic, topic *registry.Topic) bool {
	for _, t := range topics {
		if t == topic {
			return true
		}
	}
	return false
}

func names(topics []*registry.Topic) []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		out = append(out, t.Name)
	}
	return out
}
