package config

import (
	"slices"

	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

// ListPackages returns the declared package names in declaration order.
func (d *Deployment) ListPackages() []string {
	names := make([]string, 0, len(d.Packages))
	for _, p := range d.Packages {
		names = append(names, p.Name)
	}
	return names
}

// HasPackage reports whether a package named name is declared.
func (d *Deployment) HasPackage(name string) bool {
	return slices.Contains(d.ListPackages(), name)
}

// ListMessages returns the declared message types in declaration order.
func (d *Deployment) ListMessages() []string {
	names := make([]string, 0, len(d.Messages))
	for _, m := range d.Messages {
		names = append(names, m.Type)
	}
	return names
}

// ListTopics returns the declared topic names in declaration order.
func (d *Deployment) ListTopics() []string {
	names := make([]string, 0, len(d.Topics))
	for _, t := range d.Topics {
		names = append(names, t.Name)
	}
	return names
}

// ListPredicates returns the names of every node behaviour.
func (d *Deployment) ListPredicates() []string {
	var names []string
	for _, n := range d.Nodes {
		for _, p := range n.Behaviour {
			names = append(names, p.Name)
		}
	}
	return names
}

// GetNode returns the node with the given ROS name.
func (d *Deployment) GetNode(rosname string) (*Node, bool) {
	for i := range d.Nodes {
		if d.Nodes[i].RosName() == rosname {
			return &d.Nodes[i], true
		}
	}
	return nil, false
}

// RosName returns the fully qualified ROS name of the node.
func (n *Node) RosName() string {
	return registry.RosName(n.Namespace, n.Name)
}

// Domain returns the registry domain kind of the message.
func (m Message) Domain() registry.Domain {
	if m.Kind == KindNumeric {
		return registry.DomainNumeric
	}
	return registry.DomainEnumerated
}

// Record returns the registry ingestion shape of the node.
func (n *Node) Record() registry.NodeRecord {
	remaps := make([]registry.Remap, 0, len(n.Remaps))
	for _, r := range n.Remaps {
		remaps = append(remaps, registry.Remap{From: r.From, To: r.To})
	}
	return registry.NodeRecord{
		Name:       n.Name,
		Namespace:  n.Namespace,
		Package:    n.Package,
		Executable: n.Executable,
		Remaps:     remaps,
		Enclave:    n.Enclave,
		Advertise:  n.Advertise,
		Subscribe:  n.Subscribe,
	}
}
