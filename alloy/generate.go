package alloy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/luis1ribeiro/SROS2-Utilities/behavior"
	"github.com/luis1ribeiro/SROS2-Utilities/errors"
	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

// Generate renders the self-composition model of m. Declarations come first
// (states, channels, messages, security objects), then the two executions,
// the step predicates, the equivalence and synchronization facts and one
// check per observable topic. No document is returned on error.
func Generate(m Model, opts ...Option) (*Document, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if m.Registry == nil || m.Policy == nil || m.Graph == nil {
		return nil, errors.New(errors.CodeInvalidInput, "model requires a registry, a policy and a connectivity graph")
	}
	if o.Scope < 1 || o.Steps < 1 || o.Inbox < 0 {
		return nil, errors.Newf(errors.CodeInvalidInput, "invalid bounds: scope %d, steps %d, inbox %d", o.Scope, o.Steps, o.Inbox)
	}

	g := &generator{
		model:   m,
		opts:    o,
		doc:     &Document{},
		claimed: make(map[string]string),
	}
	for _, section := range []func() error{
		g.preamble,
		g.states,
		g.channels,
		g.messages,
		g.security,
		g.executions,
		g.predicates,
		g.equivalence,
		g.synchronization,
		g.checks,
	} {
		if err := section(); err != nil {
			return nil, err
		}
	}

	if len(g.doc.Checks) == 0 {
		g.doc.Advisories = append(g.doc.Advisories, VacuousAdvisory)
		o.Logger.Warn(VacuousAdvisory)
	}
	g.doc.Text = g.b.String()
	o.Logger.Info("generated model",
		"checks", len(g.doc.Checks),
		"behaviors", len(m.Behaviors),
		"nodes", len(m.Nodes),
	)
	return g.doc, nil
}

type generator struct {
	model Model
	opts  Options
	doc   *Document
	b     strings.Builder
	// claimed maps every emitted signature to the entity it denotes.
	claimed map[string]string
}

func (g *generator) printf(format string, args ...interface{}) {
	fmt.Fprintf(&g.b, format, args...)
}

func (g *generator) section(title string) {
	g.printf("\n/* === %s === */\n\n", title)
}

// claim records that sig denotes owner. Two entities mapping to the same
// signature would silently merge in the model.
func (g *generator) claim(sig, owner string) error {
	if prev, ok := g.claimed[sig]; ok && prev != owner {
		return errors.WrapWithContext(
			fmt.Errorf("%s and %s both map to %s", prev, owner, sig),
			errors.CodeConsistency,
			"signature collision",
			map[string]interface{}{"signature": sig},
		)
	}
	g.claimed[sig] = owner
	return nil
}

func (g *generator) preamble() error {
	g.printf("open util/sequniv\n")
	return nil
}

func (g *generator) states() error {
	g.section("STATES")
	for _, s := range g.model.Registry.States() {
		if s.Domain == registry.DomainNumeric {
			continue
		}
		if err := g.claim(s.Signature, "state $"+s.Name); err != nil {
			return err
		}
		atoms := make([]string, 0, len(s.Values))
		for _, v := range s.Values {
			atom := s.Atom(v)
			if err := g.claim(atom, fmt.Sprintf("value %s of $%s", v, s.Name)); err != nil {
				return err
			}
			atoms = append(atoms, atom)
		}
		g.printf("abstract sig %s {}\n", s.Signature)
		g.printf("one sig %s extends %s {}\n\n", strings.Join(atoms, ", "), s.Signature)
	}
	return nil
}

func (g *generator) channels() error {
	g.section("CHANNELS")
	g.printf("abstract sig Channel {}\n")
	for _, t := range g.model.Registry.Topics() {
		if err := g.claim(t.Signature, "topic "+t.Name); err != nil {
			return err
		}
		g.printf("one sig %s extends Channel {}\n", t.Signature)
	}
	return nil
}

func (g *generator) messages() error {
	g.section("MESSAGES")
	g.printf("abstract sig Message {\n\tval : lone Int\n}\n")
	for _, mv := range g.model.Registry.MessageValues() {
		if err := g.claim(mv.Signature, "message domain "+mv.Signature); err != nil {
			return err
		}
		g.printf("\nabstract sig %s extends Message {}\n", mv.Signature)
		for _, v := range mv.Values {
			atom := mv.Atom(v)
			if err := g.claim(atom, fmt.Sprintf("value %s of %s", v, mv.Signature)); err != nil {
				return err
			}
			if mv.Domain == registry.DomainNumeric {
				g.printf("one sig %s extends %s {} {\n\tval = %s\n}\n", atom, mv.Signature, v)
			} else {
				g.printf("one sig %s extends %s {} {\n\tno val\n}\n", atom, mv.Signature)
			}
		}
	}
	return nil
}

const securityDeclarations = `abstract sig Role {}
one sig Advertise, Subscribe extends Role {}

abstract sig Rule {}
one sig Allow, Deny extends Rule {}

abstract sig Object {}

abstract sig Privilege {
	role : one Role,
	rule : one Rule,
	object : one Object
}

abstract sig Profile {
	privileges : set Privilege
}

abstract sig Enclave {
	profiles : set Profile
}

abstract sig Node {
	advertises : set Channel,
	subscribes : set Channel
}
`

func (g *generator) security() error {
	g.section("SECURITY")
	g.printf("%s\n", securityDeclarations)

	pol := g.model.Policy
	for _, obj := range pol.Objects() {
		if err := g.claim(obj.Signature, "object "+obj.Name); err != nil {
			return err
		}
		g.printf("one sig %s extends Object {}\n", obj.Signature)
	}

	for _, p := range pol.Privileges() {
		if err := g.claim(p.Signature, "privilege of "+p.Profile.RosName()); err != nil {
			return err
		}
		g.printf("\none sig %s extends Privilege {} {\n\trole = %s\n\trule = %s\n\tobject = %s\n}\n",
			p.Signature, p.Role, p.Rule, p.Object.Signature)
	}

	for _, p := range pol.Profiles() {
		if err := g.claim(p.Signature, "profile "+p.RosName()); err != nil {
			return err
		}
		sigs := make([]string, 0, len(p.Privileges))
		for _, priv := range p.Privileges {
			sigs = append(sigs, priv.Signature)
		}
		g.printf("\none sig %s extends Profile {} {\n\t%s\n}\n", p.Signature, relation("privileges", sigs))
	}

	for _, e := range pol.Enclaves() {
		if err := g.claim(e.Signature, "enclave "+e.Path); err != nil {
			return err
		}
		sigs := make([]string, 0, len(e.Profiles))
		for _, p := range e.Profiles {
			sigs = append(sigs, p.Signature)
		}
		g.printf("\none sig %s extends Enclave {} {\n\t%s\n}\n", e.Signature, relation("profiles", sigs))
	}

	for _, n := range g.model.Nodes {
		if err := g.claim(n.Signature(), "node "+n.RosName()); err != nil {
			return err
		}
		g.printf("\none sig %s extends Node {} {\n\t%s\n\t%s\n}\n",
			n.Signature(),
			relation("advertises", channelSigs(n.Advertise)),
			relation("subscribes", channelSigs(n.Subscribe)))
	}
	return nil
}

func (g *generator) executions() error {
	reg := g.model.Registry
	g.section("SELF-COMPOSITION")

	if err := g.claim("inbox", "the inbox field"); err != nil {
		return err
	}
	g.printf("abstract sig Execution {\n\tvar inbox : Channel -> (seq Message)")
	for _, s := range reg.States() {
		if err := g.claim(s.Variable, "variable of $"+s.Name); err != nil {
			return err
		}
		g.printf(",\n\tvar %s : one %s", s.Variable, stateType(s))
	}
	g.printf("\n}\n\none sig T1, T2 extends Execution {}\n")

	if topics := reg.Topics(); len(topics) > 0 {
		g.printf("\nfact well_typed_inbox {\n\talways all t : Execution {\n")
		for _, t := range topics {
			g.printf("\t\telems[t.inbox[%s]] in %s\n", t.Signature, t.MessageType.Signature)
		}
		g.printf("\t}\n}\n")
	}

	var numeric []*registry.State
	for _, s := range reg.States() {
		if s.Domain == registry.DomainNumeric {
			numeric = append(numeric, s)
		}
	}
	if len(numeric) > 0 {
		g.printf("\nfact state_domains {\n\talways all t : Execution {\n")
		for _, s := range numeric {
			g.printf("\t\tt.%s in %s\n", s.Variable, strings.Join(s.Values, " + "))
		}
		g.printf("\t}\n}\n")
	}

	g.printf("\nfact init {\n\tall t : Execution {\n\t\tno t.inbox\n")
	for _, s := range reg.States() {
		g.printf("\t\tt.%s = %s\n", s.Variable, s.Atom(s.Default))
	}
	g.printf("\t}\n}\n")
	return nil
}

func (g *generator) predicates() error {
	reg := g.model.Registry
	g.section("PREDICATES")

	g.printf("pred publish [t : Execution, c : Channel, m : Message] {\n\tt.inbox'[c] = add[t.inbox[c], m]\n}\n")

	g.printf("\npred nop [t : Execution] {\n\tt.inbox' = t.inbox\n")
	for _, s := range reg.States() {
		g.printf("\tt.%s' = t.%s\n", s.Variable, s.Variable)
	}
	g.printf("}\n")

	var steps []string
	for _, bhv := range g.model.Behaviors {
		p := bhv.Predicate
		if err := g.claim(p.Signature, "predicate ?"+p.Name); err != nil {
			return err
		}

		owner := p.Owner
		if bhv.Node != nil {
			owner = bhv.Node.RosName()
		}
		g.printf("\n// %s\npred %s [t : Execution] {\n\t%s\n", owner, p.Signature, behavior.Compile(bhv.Clause))
		if !p.SubClause {
			g.frame(bhv.Clause)
			steps = append(steps, p.Signature+"[t]")
		}
		g.printf("}\n")
	}

	body := "some none"
	if len(steps) > 0 {
		body = strings.Join(steps, "\n\tor ")
	}
	g.printf("\npred system [t : Execution] {\n\t%s\n}\n", body)
	g.printf("\nfact traces {\n\talways all t : Execution | nop[t] or system[t]\n}\n")
	return nil
}

// frame keeps unchanged everything the clause does not write.
func (g *generator) frame(c behavior.Clause) {
	topics, states := behavior.Targets(c)
	for _, s := range g.model.Registry.States() {
		if !containsState(states, s) {
			g.printf("\tt.%s' = t.%s\n", s.Variable, s.Variable)
		}
	}
	if len(topics) == 0 {
		g.printf("\tt.inbox' = t.inbox\n")
		return
	}
	g.printf("\tall c : Channel - (%s) | t.inbox'[c] = t.inbox[c]\n", strings.Join(channelSigs(topics), " + "))
}

func (g *generator) equivalence() error {
	g.section("OBSERVATIONAL DETERMINISM")
	g.printf("fact public_state_equivalence {\n")
	for _, s := range g.model.Registry.States() {
		if s.Public {
			g.printf("\talways T1.%s = T2.%s\n", s.Variable, s.Variable)
		}
	}
	g.printf("}\n")
	return nil
}

func (g *generator) synchronization() error {
	g.printf("\nfact public_event_synchronization {\n")
	for _, t := range g.publicInputs() {
		g.printf("\talways (all m : Message | publish[T1, %s, m] iff publish[T2, %s, m])\n", t.Signature, t.Signature)
	}
	for _, t := range g.model.Graph.Observable() {
		for _, sig := range g.advertisers(t) {
			g.printf("\t%s in %s.advertises\n", t.Signature, sig)
		}
		g.printf("\talways ((some m0 : Message | publish[T1, %s, m0]) iff (some m1 : Message | publish[T2, %s, m1]))\n",
			t.Signature, t.Signature)
	}
	g.printf("}\n")
	return nil
}

// publicInputs returns the topics only unsecured nodes advertise. Their
// content is the same in both executions.
func (g *generator) publicInputs() []*registry.Topic {
	var inputs []*registry.Topic
	seen := make(map[*registry.Topic]bool)
	for _, n := range g.model.Nodes {
		if n.Secure() {
			continue
		}
		for _, t := range n.Advertise {
			if seen[t] || g.securelyAdvertised(t) {
				continue
			}
			seen[t] = true
			inputs = append(inputs, t)
		}
	}
	return inputs
}

func (g *generator) securelyAdvertised(t *registry.Topic) bool {
	for _, n := range g.model.Nodes {
		if n.Secure() && n.Advertises(t) {
			return true
		}
	}
	return false
}

func (g *generator) advertisers(t *registry.Topic) []string {
	var sigs []string
	for _, n := range g.model.Nodes {
		if n.Advertises(t) {
			sigs = append(sigs, n.Signature())
		}
	}
	return sigs
}

func (g *generator) checks() error {
	observable := g.model.Graph.Observable()
	if len(observable) == 0 {
		return nil
	}
	g.section("NON-INTERFERENCE")

	bitwidth, err := intBitwidth(g.model.Registry)
	if err != nil {
		return err
	}
	var but []string
	if bitwidth > defaultBitwidth {
		but = append(but, fmt.Sprintf("%d Int", bitwidth))
	}
	if g.opts.Inbox > 0 {
		but = append(but, fmt.Sprintf("%d seq", g.opts.Inbox))
	}
	but = append(but, fmt.Sprintf("1..%d steps", g.opts.Steps))
	bounds := fmt.Sprintf("for %d but %s", g.opts.Scope, strings.Join(but, ", "))

	for _, t := range observable {
		name := "non_interference_" + t.Signature
		if err := g.claim(name, "check of "+t.Name); err != nil {
			return err
		}
		g.printf("check %s {\n\talways (all m0, m1 : Message | publish[T1, %s, m0] and publish[T2, %s, m1] implies m0 = m1)\n} %s\n\n",
			name, t.Signature, t.Signature, bounds)
		g.doc.Checks = append(g.doc.Checks, Check{Name: name, Topic: t, Advertisers: g.advertisers(t)})
		g.opts.Logger.Debug("emitted check", "topic", t.Name, "check", name)
	}
	return nil
}

// Integer bitwidths the checker supports.
const (
	defaultBitwidth = 4
	maxBitwidth     = 30
)

// intBitwidth returns the bitwidth under which every numeric domain value,
// and the sum or difference of any two of them, is represented without
// overflow.
func intBitwidth(reg *registry.Registry) (int, error) {
	largest := 0
	track := func(values []string) error {
		for _, v := range values {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.Newf(errors.CodeInvalidInput, "numeric value %q is not an integer", v)
			}
			if n < 0 {
				n = -n
			}
			largest = max(largest, n)
		}
		return nil
	}
	for _, mv := range reg.MessageValues() {
		if mv.Domain == registry.DomainNumeric {
			if err := track(mv.Values); err != nil {
				return 0, err
			}
		}
	}
	for _, s := range reg.States() {
		if s.Domain == registry.DomainNumeric {
			if err := track(s.Values); err != nil {
				return 0, err
			}
		}
	}

	// 2*largest must fit in [-2^(b-1), 2^(b-1)-1].
	bits := 1
	for (1<<(bits-1))-1 < 2*largest {
		bits++
		if bits > maxBitwidth {
			return 0, errors.Newf(errors.CodeInvalidInput,
				"numeric value %d needs more than %d bits", largest, maxBitwidth)
		}
	}
	return max(bits, defaultBitwidth), nil
}

func relation(field string, sigs []string) string {
	if len(sigs) == 0 {
		return "no " + field
	}
	return field + " = " + strings.Join(sigs, " + ")
}

func channelSigs(topics []*registry.Topic) []string {
	sigs := make([]string, 0, len(topics))
	for _, t := range topics {
		sigs = append(sigs, t.Signature)
	}
	return sigs
}

func stateType(s *registry.State) string {
	if s.Domain == registry.DomainNumeric {
		return "Int"
	}
	return s.Signature
}

func containsState(states []*registry.State, s *registry.State) bool {
	for _, x := range states {
		if x == s {
			return true
		}
	}
	return false
}
