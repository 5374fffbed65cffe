// Package policy models the SROS security policy of a deployment: enclaves,
// the profiles they own, and the allow/deny privileges each profile grants
// over topic objects.
package policy

import (
	"slices"
	"strings"

	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

// PublicEnclave is the path of the enclave whose nodes are unsecured.
const PublicEnclave = "/public"

// Role is the kind of access a privilege governs.
type Role int

const (
	// RoleAdvertise governs publishing on a topic.
	RoleAdvertise Role = iota
	// RoleSubscribe governs subscribing to a topic.
	RoleSubscribe
)

// String returns the Alloy atom name of the role.
func (r Role) String() string {
	switch r {
	case RoleAdvertise:
		return "Advertise"
	case RoleSubscribe:
		return "Subscribe"
	default:
		return "Unknown"
	}
}

// Rule is the effect of a privilege.
type Rule int

const (
	// RuleAllow grants access.
	RuleAllow Rule = iota
	// RuleDeny revokes access.
	RuleDeny
)

// String returns the Alloy atom name of the rule.
func (r Rule) String() string {
	switch r {
	case RuleAllow:
		return "Allow"
	case RuleDeny:
		return "Deny"
	default:
		return "Unknown"
	}
}

// Tree is the record shape of a security policy.
type Tree struct {
	Enclaves []EnclaveTree `json:"enclaves" yaml:"enclaves"`
}

// EnclaveTree is the record shape of one enclave.
type EnclaveTree struct {
	Path     string        `json:"path" yaml:"path"`
	Profiles []ProfileTree `json:"profiles" yaml:"profiles"`
}

// ProfileTree is the record shape of one profile. Topic names are relative to
// Namespace unless absolute.
type ProfileTree struct {
	Namespace      string   `json:"namespace" yaml:"namespace"`
	Node           string   `json:"node" yaml:"node"`
	AllowPublish   []string `json:"allow_publish,omitempty" yaml:"allow_publish,omitempty"`
	AllowSubscribe []string `json:"allow_subscribe,omitempty" yaml:"allow_subscribe,omitempty"`
	DenyPublish    []string `json:"deny_publish,omitempty" yaml:"deny_publish,omitempty"`
	DenySubscribe  []string `json:"deny_subscribe,omitempty" yaml:"deny_subscribe,omitempty"`
}

// Enclave is a security boundary.
type Enclave struct {
	Path      string
	Public    bool
	Signature string
	Profiles  []*Profile
}

// Object is an opaque privilege target, usually a topic.
type Object struct {
	Name      string
	Signature string
}

// Privilege is one concrete access rule of a profile.
type Privilege struct {
	Signature string
	Profile   *Profile
	Role      Role
	Rule      Rule
	Object    *Object
}

// Profile is a bundle of privileges scoped to a namespace and bound to one enclave.
type Profile struct {
	Name           string
	Namespace      string
	Enclave        *Enclave
	AllowAdvertise []string
	AllowSubscribe []string
	DenyAdvertise  []string
	DenySubscribe  []string
	Privileges     []*Privilege
	Signature      string
}

// RosName returns the fully qualified name of the node the profile governs.
func (p *Profile) RosName() string {
	return registry.RosName(p.Namespace, p.Name)
}

// Allows reports whether the profile grants role on topic: the topic must be
// allowed and not denied.
func (p *Profile) Allows(role Role, topic string) bool {
	switch role {
	case RoleAdvertise:
		return slices.Contains(p.AllowAdvertise, topic) && !slices.Contains(p.DenyAdvertise, topic)
	case RoleSubscribe:
		return slices.Contains(p.AllowSubscribe, topic) && !slices.Contains(p.DenySubscribe, topic)
	default:
		return false
	}
}

// Granted returns the topics the profile grants for role, in declaration order.
func (p *Profile) Granted(role Role) []string {
	var allow []string
	switch role {
	case RoleAdvertise:
		allow = p.AllowAdvertise
	case RoleSubscribe:
		allow = p.AllowSubscribe
	}
	granted := make([]string, 0, len(allow))
	for _, topic := range allow {
		if p.Allows(role, topic) {
			granted = append(granted, topic)
		}
	}
	return granted
}

// ProfileSummary is the serializable view of a profile.
type ProfileSummary struct {
	Name          string   `json:"name"`
	Namespace     string   `json:"namespace"`
	Advertise     []string `json:"advertise"`
	DenyAdvertise []string `json:"deny_advertise"`
	Subscribe     []string `json:"subscribe"`
	DenySubscribe []string `json:"deny_subscribe"`
}

// Summary returns the serializable view of the profile.
func (p *Profile) Summary() ProfileSummary {
	return ProfileSummary{
		Name:          p.Name,
		Namespace:     p.Namespace,
		Advertise:     nonNil(p.AllowAdvertise),
		DenyAdvertise: nonNil(p.DenyAdvertise),
		Subscribe:     nonNil(p.AllowSubscribe),
		DenySubscribe: nonNil(p.DenySubscribe),
	}
}

// EnclaveSummary is the serializable view of an enclave.
type EnclaveSummary struct {
	Name     string           `json:"name"`
	Profiles []ProfileSummary `json:"profiles"`
}

// Summary returns the serializable view of the enclave.
func (e *Enclave) Summary() EnclaveSummary {
	profiles := make([]ProfileSummary, 0, len(e.Profiles))
	for _, p := range e.Profiles {
		profiles = append(profiles, p.Summary())
	}
	return EnclaveSummary{Name: e.Path, Profiles: profiles}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func signature(prefix, name string) string {
	return prefix + registry.Ident(strings.ToLower(name))
}
