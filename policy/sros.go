package policy

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/luis1ribeiro/SROS2-Utilities/errors"
	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

// SROSVersion is the policy format version written by EncodeSROS.
const SROSVersion = "0.2.0"

const (
	permissionAllow = "ALLOW"
	permissionDeny  = "DENY"
)

type xmlPolicy struct {
	XMLName  xml.Name     `xml:"policy"`
	Version  string       `xml:"version,attr"`
	Enclaves []xmlEnclave `xml:"enclaves>enclave"`
}

type xmlEnclave struct {
	Path     string       `xml:"path,attr"`
	Profiles []xmlProfile `xml:"profiles>profile"`
}

type xmlProfile struct {
	Namespace string      `xml:"ns,attr"`
	Node      string      `xml:"node,attr"`
	Topics    []xmlTopics `xml:"topics"`
}

type xmlTopics struct {
	Publish   string   `xml:"publish,attr,omitempty"`
	Subscribe string   `xml:"subscribe,attr,omitempty"`
	Topics    []string `xml:"topic"`
}

// DecodeSROS reads an SROS policy document. Services and actions are ignored.
// Malformed documents fail with CodeParse.
func DecodeSROS(r io.Reader) (Tree, error) {
	var doc xmlPolicy
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return Tree{}, errors.Wrap(err, errors.CodeParse, "failed to decode SROS policy")
	}

	tree := Tree{Enclaves: make([]EnclaveTree, 0, len(doc.Enclaves))}
	for _, e := range doc.Enclaves {
		enclave := EnclaveTree{Path: e.Path}
		for _, p := range e.Profiles {
			if p.Node == "" {
				return Tree{}, errors.WrapWithContext(
					fmt.Errorf("profile without a node attribute"),
					errors.CodeParse,
					"malformed SROS policy",
					map[string]interface{}{"enclave": e.Path},
				)
			}
			profile := ProfileTree{Namespace: p.Namespace, Node: p.Node}
			for _, group := range p.Topics {
				if err := partition(&profile, group); err != nil {
					return Tree{}, errors.WrapWithContext(err, errors.CodeParse, "malformed SROS policy",
						map[string]interface{}{"enclave": e.Path, "node": p.Node})
				}
			}
			enclave.Profiles = append(enclave.Profiles, profile)
		}
		tree.Enclaves = append(tree.Enclaves, enclave)
	}
	return tree, nil
}

// EncodeSROS writes tree as an SROS policy document.
func EncodeSROS(w io.Writer, tree Tree) error {
	doc := xmlPolicy{Version: SROSVersion}
	for _, e := range tree.Enclaves {
		enclave := xmlEnclave{Path: e.Path}
		for _, p := range e.Profiles {
			profile := xmlProfile{Namespace: normalizeNamespace(p.Namespace), Node: p.Node}
			profile.Topics = appendGroup(profile.Topics, xmlTopics{Publish: permissionAllow}, p.AllowPublish)
			profile.Topics = appendGroup(profile.Topics, xmlTopics{Subscribe: permissionAllow}, p.AllowSubscribe)
			profile.Topics = appendGroup(profile.Topics, xmlTopics{Publish: permissionDeny}, p.DenyPublish)
			profile.Topics = appendGroup(profile.Topics, xmlTopics{Subscribe: permissionDeny}, p.DenySubscribe)
			enclave.Profiles = append(enclave.Profiles, profile)
		}
		doc.Enclaves = append(doc.Enclaves, enclave)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write SROS header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode SROS policy: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("failed to write SROS policy: %w", err)
	}
	return nil
}

// Generate derives a policy from the deployment: each node gets a profile
// allowing exactly the topics it advertises and subscribes to, in the enclave
// it is launched in, or the public enclave when it has none.
func Generate(nodes []*registry.Node) Tree {
	var tree Tree
	index := make(map[string]int)
	for _, n := range nodes {
		path := n.Enclave
		if path == "" {
			path = PublicEnclave
		}
		i, ok := index[path]
		if !ok {
			i = len(tree.Enclaves)
			index[path] = i
			tree.Enclaves = append(tree.Enclaves, EnclaveTree{Path: path})
		}

		profile := ProfileTree{Namespace: normalizeNamespace(n.Namespace), Node: n.Name}
		for _, t := range n.Advertise {
			profile.AllowPublish = append(profile.AllowPublish, t.Name)
		}
		for _, t := range n.Subscribe {
			profile.AllowSubscribe = append(profile.AllowSubscribe, t.Name)
		}
		tree.Enclaves[i].Profiles = append(tree.Enclaves[i].Profiles, profile)
	}
	return tree
}

func partition(profile *ProfileTree, group xmlTopics) error {
	topics := make([]string, 0, len(group.Topics))
	for _, t := range group.Topics {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}

	if group.Publish == "" && group.Subscribe == "" {
		return fmt.Errorf("topics group of %q grants neither publish nor subscribe", profile.Node)
	}

	switch strings.TrimSpace(group.Publish) {
	case "":
	case permissionAllow:
		profile.AllowPublish = append(profile.AllowPublish, topics...)
	case permissionDeny:
		profile.DenyPublish = append(profile.DenyPublish, topics...)
	default:
		return fmt.Errorf("unknown publish permission %q", group.Publish)
	}

	switch strings.TrimSpace(group.Subscribe) {
	case "":
	case permissionAllow:
		profile.AllowSubscribe = append(profile.AllowSubscribe, topics...)
	case permissionDeny:
		profile.DenySubscribe = append(profile.DenySubscribe, topics...)
	default:
		return fmt.Errorf("unknown subscribe permission %q", group.Subscribe)
	}
	return nil
}

func appendGroup(groups []xmlTopics, group xmlTopics, topics []string) []xmlTopics {
	if len(topics) == 0 {
		return groups
	}
	group.Topics = topics
	return append(groups, group)
}
