package policy

import (
	"fmt"
	"slices"
	"strings"

	"github.com/luis1ribeiro/SROS2-Utilities/errors"
	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

type privilegeKey struct {
	profile string
	role    Role
	target  string
	rule    Rule
}

// Policy owns the enclaves, profiles, privileges and objects of one run.
type Policy struct {
	enclaves   *registry.Table[string, *Enclave]
	profiles   *registry.Table[string, *Profile]
	privileges *registry.Table[privilegeKey, *Privilege]
	objects    *registry.Table[string, *Object]
}

// New creates an empty policy.
func New() *Policy {
	return &Policy{
		enclaves: registry.NewTable[string, *Enclave]("enclave", nil, nil),
		profiles: registry.NewTable[string, *Profile]("profile",
			func(existing, incoming *Profile) error {
				if existing.Enclave.Path != incoming.Enclave.Path {
					return fmt.Errorf("bound to enclave %s, redeclared in enclave %s",
						existing.Enclave.Path, incoming.Enclave.Path)
				}
				merged := &Profile{
					AllowAdvertise: union(existing.AllowAdvertise, incoming.AllowAdvertise),
					AllowSubscribe: union(existing.AllowSubscribe, incoming.AllowSubscribe),
					DenyAdvertise:  union(existing.DenyAdvertise, incoming.DenyAdvertise),
					DenySubscribe:  union(existing.DenySubscribe, incoming.DenySubscribe),
				}
				return checkExclusive(existing.RosName(), merged)
			},
			func(existing, incoming *Profile) {
				existing.AllowAdvertise = union(existing.AllowAdvertise, incoming.AllowAdvertise)
				existing.AllowSubscribe = union(existing.AllowSubscribe, incoming.AllowSubscribe)
				existing.DenyAdvertise = union(existing.DenyAdvertise, incoming.DenyAdvertise)
				existing.DenySubscribe = union(existing.DenySubscribe, incoming.DenySubscribe)
			},
		),
		privileges: registry.NewTable[privilegeKey, *Privilege]("privilege", nil, nil),
		objects:    registry.NewTable[string, *Object]("object", nil, nil),
	}
}

// Load adds every enclave of tree to the policy.
func (p *Policy) Load(tree Tree) error {
	for _, e := range tree.Enclaves {
		if _, err := p.AddEnclave(e.Path, e.Profiles); err != nil {
			return err
		}
	}
	return nil
}

// AddEnclave builds the enclave at path and one profile per profile tree.
// An empty path denotes the public enclave. Adding profiles to an existing
// enclave extends it.
func (p *Policy) AddEnclave(path string, profiles []ProfileTree) (*Enclave, error) {
	if path == "" {
		path = PublicEnclave
	}
	enclave, err := p.enclaves.Intern(path, &Enclave{
		Path:      path,
		Public:    path == PublicEnclave,
		Signature: signature("enclave", path),
	})
	if err != nil {
		return nil, err
	}

	for _, tree := range profiles {
		candidate, err := NewProfile(tree, enclave)
		if err != nil {
			return nil, err
		}

		profile, err := p.profiles.Intern(candidate.RosName(), candidate)
		if err != nil {
			return nil, err
		}
		if profile == candidate {
			enclave.Profiles = append(enclave.Profiles, profile)
		}

		if err := p.grant(profile); err != nil {
			return nil, err
		}
	}
	return enclave, nil
}

// NewProfile partitions a profile tree into namespace-qualified allow and deny
// lists. A topic both allowed and denied for the same role fails with
// CodePolicyConflict.
func NewProfile(tree ProfileTree, enclave *Enclave) (*Profile, error) {
	if tree.Node == "" {
		return nil, errors.New(errors.CodeParse, "profile has no node name")
	}
	if enclave == nil {
		return nil, errors.Newf(errors.CodeInvalidInput, "profile %q has no enclave", tree.Node)
	}

	ns := normalizeNamespace(tree.Namespace)
	profile := &Profile{
		Name:           tree.Node,
		Namespace:      ns,
		Enclave:        enclave,
		AllowAdvertise: qualifyAll(ns, tree.AllowPublish),
		AllowSubscribe: qualifyAll(ns, tree.AllowSubscribe),
		DenyAdvertise:  qualifyAll(ns, tree.DenyPublish),
		DenySubscribe:  qualifyAll(ns, tree.DenySubscribe),
	}
	profile.Signature = signature("profile", profile.RosName())

	if err := checkExclusive(profile.RosName(), profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Enclaves returns the enclaves in declaration order.
func (p *Policy) Enclaves() []*Enclave { return p.enclaves.All() }

// Profiles returns the profiles in declaration order.
func (p *Policy) Profiles() []*Profile { return p.profiles.All() }

// Privileges returns the privileges in declaration order.
func (p *Policy) Privileges() []*Privilege { return p.privileges.All() }

// Objects returns the privilege objects in declaration order.
func (p *Policy) Objects() []*Object { return p.objects.All() }

// Profile returns the profile governing the node with the given ROS name.
func (p *Policy) Profile(rosname string) (*Profile, bool) { return p.profiles.Lookup(rosname) }

// Enclave returns the enclave at path.
func (p *Policy) Enclave(path string) (*Enclave, bool) { return p.enclaves.Lookup(path) }

func (p *Policy) grant(profile *Profile) error {
	lists := []struct {
		role   Role
		rule   Rule
		topics []string
	}{
		{RoleAdvertise, RuleAllow, profile.AllowAdvertise},
		{RoleSubscribe, RuleAllow, profile.AllowSubscribe},
		{RoleAdvertise, RuleDeny, profile.DenyAdvertise},
		{RoleSubscribe, RuleDeny, profile.DenySubscribe},
	}

	for _, l := range lists {
		for _, topic := range l.topics {
			priv, err := p.internPrivilege(profile, l.role, topic, l.rule)
			if err != nil {
				return err
			}
			if !slices.Contains(profile.Privileges, priv) {
				profile.Privileges = append(profile.Privileges, priv)
			}
		}
	}
	return nil
}

// internPrivilege returns the privilege identified by (profile, role, topic, rule),
// creating it and its object on first use.
func (p *Policy) internPrivilege(profile *Profile, role Role, topic string, rule Rule) (*Privilege, error) {
	object, err := p.objects.Intern(topic, &Object{Name: topic, Signature: signature("object", topic)})
	if err != nil {
		return nil, err
	}

	key := privilegeKey{profile: profile.RosName(), role: role, target: topic, rule: rule}
	name := strings.TrimPrefix(profile.Signature, "profile") + "_" + strings.ToLower(role.String()) +
		strings.TrimPrefix(object.Signature, "object") + "_" + strings.ToLower(rule.String())
	return p.privileges.Intern(key, &Privilege{
		Signature: "privilege" + name,
		Profile:   profile,
		Role:      role,
		Rule:      rule,
		Object:    object,
	})
}

func checkExclusive(name string, profile *Profile) error {
	var conflicts []string
	for _, topic := range profile.DenyAdvertise {
		if slices.Contains(profile.AllowAdvertise, topic) {
			conflicts = append(conflicts, "advertise "+topic)
		}
	}
	for _, topic := range profile.DenySubscribe {
		if slices.Contains(profile.AllowSubscribe, topic) {
			conflicts = append(conflicts, "subscribe "+topic)
		}
	}
	if len(conflicts) == 0 {
		return nil
	}
	return errors.WrapWithContext(
		fmt.Errorf("both allowed and denied: %s", strings.Join(conflicts, ", ")),
		errors.CodePolicyConflict,
		"conflicting privileges",
		map[string]interface{}{"profile": name},
	)
}

func normalizeNamespace(ns string) string {
	ns = strings.Trim(ns, "/")
	if ns == "" {
		return "/"
	}
	return "/" + ns + "/"
}

func qualifyAll(ns string, topics []string) []string {
	qualified := make([]string, 0, len(topics))
	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, "/") {
			t = ns + t
		}
		if !slices.Contains(qualified, t) {
			qualified = append(qualified, t)
		}
	}
	return qualified
}

func union(a, b []string) []string {
	out := append([]string(nil), a...)
	for _, v := range b {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
