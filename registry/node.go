package registry

import (
	"strings"
)

// Node is a running component instance of the deployment.
type Node struct {
	Name       string
	Namespace  string
	Package    string
	Executable string
	// Enclave is the enclave path the node is launched in, empty if unset.
	Enclave string
	// Remaps holds the resolved remaps, no-ops dropped.
	Remaps    []Remap
	Advertise []*Topic
	Subscribe []*Topic
	Signature string
}

// NodeRecord is the ingestion shape of a node.
type NodeRecord struct {
	Name       string
	Namespace  string
	Package    string
	Executable string
	Remaps     []Remap
	Enclave    string
	Advertise  []string
	Subscribe  []string
}

// Identity returns the registry key of the node: package/namespace/name.
func (n *Node) Identity() string {
	return NodeIdentity(n.Package, n.Namespace, n.Name)
}

// RosName returns the fully qualified ROS name of the node.
func (n *Node) RosName() string {
	return RosName(n.Namespace, n.Name)
}

// ResolveTopic applies the node's remaps to name and qualifies the result
// with the node namespace. Absolute names keep their namespace; "~" names
// are private to the node.
func (n *Node) ResolveTopic(name string) string {
	return qualify(n.Namespace, n.Name, Apply(n.Remaps, name))
}

// NodeIdentity builds the registry key of a node.
func NodeIdentity(pkg, namespace, name string) string {
	ns := cleanNamespace(namespace)
	if ns == "" {
		return pkg + "/" + name
	}
	return pkg + "/" + ns + "/" + name
}

// RosName builds a fully qualified ROS name from a namespace and a base name.
func RosName(namespace, name string) string {
	ns := cleanNamespace(namespace)
	name = strings.Trim(name, "/")
	if ns == "" {
		return "/" + name
	}
	return "/" + ns + "/" + name
}

func cleanNamespace(namespace string) string {
	return strings.Trim(namespace, "/")
}

func qualify(namespace, node, name string) string {
	switch {
	case strings.HasPrefix(name, "/"):
		return name
	case strings.HasPrefix(name, "~"):
		return RosName(namespace, node) + "/" + strings.TrimLeft(name, "~/")
	default:
		return RosName(namespace, name)
	}
}
