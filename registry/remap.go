package registry

import (
	"fmt"
	"strings"

	"github.com/luis1ribeiro/SROS2-Utilities/errors"
)

// Remap renames a topic for one node.
type Remap struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// String returns the remap in ROS argument form.
func (r Remap) String() string {
	return r.From + ":=" + r.To
}

// ResolveRemaps collapses remap pairs into their final mapping.
//
// The first declaration of a source name wins. Each target is followed through
// the remaining rules until it reaches a name no rule renames. Pairs that end
// where they started are dropped. A chain that revisits a name fails with
// CodeRemapCycle. The result keeps declaration order.
func ResolveRemaps(pairs []Remap) ([]Remap, error) {
	rules := make(map[string]string, len(pairs))
	var order []string
	for _, p := range pairs {
		if _, seen := rules[p.From]; seen {
			continue
		}
		rules[p.From] = p.To
		order = append(order, p.From)
	}

	resolved := make([]Remap, 0, len(order))
	for _, from := range order {
		to := rules[from]
		if to == from {
			continue
		}

		chain := []string{from}
		visited := map[string]bool{from: true}
		for {
			next, ok := rules[to]
			if !ok || next == to {
				break
			}
			if visited[to] {
				chain = append(chain, to)
				return nil, errors.WrapWithContext(
					fmt.Errorf("remap chain %s does not terminate", strings.Join(chain, " -> ")),
					errors.CodeRemapCycle,
					"cyclic remap",
					map[string]interface{}{"from": from},
				)
			}
			visited[to] = true
			chain = append(chain, to)
			to = next
		}

		resolved = append(resolved, Remap{From: from, To: to})
	}
	return resolved, nil
}

// Apply returns the final name of topic under the resolved remaps.
func Apply(resolved []Remap, topic string) string {
	for _, r := range resolved {
		if r.From == topic {
			return r.To
		}
	}
	return topic
}
