package behavior

import (
	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

// nodeScope resolves topic names the way the owning node sees them.
type nodeScope struct {
	Symbols
	node *registry.Node
}

// NodeScope returns a view of sym in which topic names are first resolved
// through the remaps and namespace of node. Names that do not resolve are
// looked up verbatim.
func NodeScope(sym Symbols, node *registry.Node) Symbols {
	if node == nil {
		return sym
	}
	return &nodeScope{Symbols: sym, node: node}
}

// Topic implements Symbols.
func (s *nodeScope) Topic(name string) (*registry.Topic, bool) {
	if t, ok := s.Symbols.Topic(s.node.ResolveTopic(name)); ok {
		return t, true
	}
	return s.Symbols.Topic(name)
}
