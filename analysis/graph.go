package analysis

import (
	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

// Edge is a flow of topic from a publishing node to a subscribing one.
type Edge struct {
	Topic  *registry.Topic
	Source *Node
	Target *Node
	// Boundary is set when exactly one endpoint runs in a private enclave.
	Boundary bool
}

// Connection is the serializable view of an edge.
type Connection struct {
	Relation string `json:"relation"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Boundary bool   `json:"boundary"`
}

type edgeKey struct {
	topic *registry.Topic
	a, b  *Node
}

// Graph is the connectivity of a set of bound nodes.
type Graph struct {
	edges      []Edge
	observable []*registry.Topic
}

// Connect computes every flow between distinct nodes: for each topic a node
// advertises, an edge to each other node subscribing to it. A pair of nodes
// connected through the same topic in both directions yields a single edge.
// Topics of boundary edges form the observable set, in discovery order.
func Connect(nodes []*Node) *Graph {
	g := &Graph{}
	seen := make(map[edgeKey]bool)
	observed := make(map[*registry.Topic]bool)

	for _, src := range nodes {
		for _, topic := range src.Advertise {
			for _, dst := range nodes {
				if dst == src || !dst.Subscribes(topic) {
					continue
				}
				if seen[edgeKey{topic, src, dst}] || seen[edgeKey{topic, dst, src}] {
					continue
				}
				seen[edgeKey{topic, src, dst}] = true

				e := Edge{Topic: topic, Source: src, Target: dst, Boundary: src.Secure() != dst.Secure()}
				g.edges = append(g.edges, e)
				if e.Boundary && !observed[topic] {
					observed[topic] = true
					g.observable = append(g.observable, topic)
				}
			}
		}
	}
	return g
}

// Edges returns every edge in discovery order.
func (g *Graph) Edges() []Edge { return g.edges }

// Boundary returns the edges that cross between a private and a public enclave.
func (g *Graph) Boundary() []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Boundary {
			out = append(out, e)
		}
	}
	return out
}

// Observable returns the topics carried by at least one boundary edge.
func (g *Graph) Observable() []*registry.Topic { return g.observable }

// IsObservable reports whether topic is carried by a boundary edge.
func (g *Graph) IsObservable(topic *registry.Topic) bool { return contains(g.observable, topic) }

// Connections returns the serializable view of every edge.
func (g *Graph) Connections() []Connection {
	out := make([]Connection, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, Connection{
			Relation: e.Topic.Name,
			Source:   e.Source.RosName(),
			Target:   e.Target.RosName(),
			Boundary: e.Boundary,
		})
	}
	return out
}
