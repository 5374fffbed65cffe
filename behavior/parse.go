package behavior

import (
	"fmt"
	"strings"

	"github.com/luis1ribeiro/SROS2-Utilities/errors"
	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

// Parse parses one behavior clause and builds its validated AST against sym.
// Syntax errors fail with CodeParse; unresolved names and out-of-domain values
// fail with CodeReference. Both carry the clause text.
func Parse(source string, sym Symbols) (Clause, error) {
	src := strings.TrimSpace(source)
	tree, err := clauseParser.ParseString("", src)
	if err != nil {
		return nil, parseError(src, err)
	}

	switch {
	case tree.Requires != nil:
		return buildRequires(src, sym, tree.Requires)
	case tree.Reads != nil:
		return buildReads(src, sym, tree.Reads)
	case tree.Publishes != nil:
		p, err := NewPublish(src, sym, tree.Publishes.Topic, tree.Publishes.Value)
		if err != nil {
			return nil, err
		}
		return p, nil
	case tree.Alters != nil:
		return buildAlters(src, sym, tree.Alters)
	default:
		return nil, parseError(src, fmt.Errorf("empty clause"))
	}
}

// ParseAll parses every clause and conjoins them.
func ParseAll(sources []string, sym Symbols) (Clause, error) {
	clauses := make([]Clause, 0, len(sources))
	for _, s := range sources {
		c, err := Parse(s, sym)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}
	if len(clauses) == 0 {
		return nil, errors.New(errors.CodeInvalidInput, "no behavior clauses")
	}
	return NewMultipleConditions(strings.Join(sources, "\n"), clauses...), nil
}

// ParseState parses a state declaration such as "public int counter" with its
// "/"-delimited value list. States are private unless declared public.
func ParseState(declaration, values string) (registry.StateRecord, error) {
	decl := strings.TrimSpace(declaration)
	tree, err := stateParser.ParseString("", decl)
	if err != nil {
		return registry.StateRecord{}, errors.WrapWithContext(err, errors.CodeParse, "malformed state declaration",
			map[string]interface{}{"state": decl})
	}

	rec := registry.StateRecord{
		Name:   strings.TrimPrefix(tree.Name, "$"),
		Public: tree.Visibility == "public",
	}
	if tree.Int {
		rec.Domain = registry.DomainNumeric
	}
	for _, v := range strings.Split(values, "/") {
		if v = strings.TrimSpace(v); v != "" {
			rec.Values = append(rec.Values, v)
		}
	}
	if len(rec.Values) == 0 {
		return registry.StateRecord{}, errors.Newf(errors.CodeParse, "state %q declares no values", rec.Name)
	}
	return rec, nil
}

func buildRequires(src string, sym Symbols, n *requiresNode) (Clause, error) {
	clauses := make([]Clause, 0, len(n.Conditions))
	for _, cond := range n.Conditions {
		var ref Ref
		var value *string
		if cond.Target.Predicate != "" {
			ref = parseRef(cond.Target.Predicate)
		} else {
			ref = parseRef(cond.Target.Entity.Name)
			value = cond.Target.Entity.Value
		}

		c, err := NewConditional(src, sym, parseQuantifier(cond.Quantifier), ref, value)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}
	return NewMultipleConditions(src, clauses...), nil
}

func buildReads(src string, sym Symbols, n *readsNode) (Clause, error) {
	from, err := lookupTopic(src, sym, n.Topic)
	if err != nil {
		return nil, err
	}

	branches := make([][]ReadCondition, 0, len(n.Branches))
	for _, b := range n.Branches {
		branch := make([]ReadCondition, 0, len(b.Conditions))
		for _, rc := range b.Conditions {
			cond, err := buildReadCondition(src, sym, from, rc)
			if err != nil {
				return nil, err
			}
			branch = append(branch, cond)
		}
		branches = append(branches, branch)
	}
	read, err := NewRead(src, sym, n.Topic, branches)
	if err != nil {
		return nil, err
	}
	return read, nil
}

func buildReadCondition(src string, sym Symbols, from *registry.Topic, n *readConditionNode) (ReadCondition, error) {
	var (
		consequence *ReadConsequence
		err         error
	)
	if n.Consequence.Predicate != "" {
		consequence, err = NewReadConsequence(src, sym, from, parseRef(n.Consequence.Predicate), OpEqual, "")
	} else {
		u := n.Consequence.Update
		consequence, err = NewReadConsequence(src, sym, from, parseRef(u.Target), parseOperator(u.Operator), u.Value)
	}
	if err != nil {
		return nil, err
	}

	if n.Guard == nil {
		return consequence, nil
	}
	guarded, err := NewReadConditional(src, from, parseOperator(n.Guard.Operator), n.Guard.Value, consequence)
	if err != nil {
		return nil, err
	}
	return guarded, nil
}

func buildAlters(src string, sym Symbols, n *altersNode) (Clause, error) {
	clauses := make([]Clause, 0, len(n.Updates))
	for _, u := range n.Updates {
		c, err := NewAlter(src, sym, strings.TrimPrefix(u.State, "$"), parseOperator(u.Operator), u.Value)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}
	return NewMultipleConditions(src, clauses...), nil
}

func parseRef(token string) Ref {
	switch {
	case strings.HasPrefix(token, "$"):
		return Ref{Kind: RefState, Name: token[1:]}
	case strings.HasPrefix(token, "?"):
		return Ref{Kind: RefPredicate, Name: token[1:]}
	default:
		return Ref{Kind: RefTopic, Name: token}
	}
}

func parseQuantifier(token string) Quantifier {
	switch token {
	case "no", "not":
		return QuantifierNo
	default:
		return QuantifierSome
	}
}

func parseOperator(token string) Operator {
	switch token {
	case ">", "gtr":
		return OpGreater
	case "<", "les":
		return OpLess
	case "+=", "add":
		return OpAdd
	case "-=", "rmv":
		return OpRemove
	default:
		return OpEqual
	}
}
