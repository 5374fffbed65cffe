package registry

import (
	"strings"
	"unicode"
)

// reserved holds Alloy keywords and built-in names that generated
// identifiers must not collide with.
var reserved = map[string]bool{
	"abstract": true, "all": true, "and": true, "as": true, "assert": true,
	"but": true, "check": true, "disj": true, "else": true, "exactly": true,
	"extends": true, "fact": true, "for": true, "fun": true, "iden": true,
	"iff": true, "implies": true, "in": true, "Int": true, "int": true,
	"let": true, "lone": true, "module": true, "no": true, "none": true,
	"not": true, "one": true, "open": true, "or": true, "pred": true,
	"run": true, "seq": true, "set": true, "sig": true, "some": true,
	"String": true, "sum": true, "univ": true, "var": true, "always": true,
	"eventually": true, "after": true, "steps": true, "this": true,
	"Message": true, "Channel": true, "Node": true, "Enclave": true,
	"Profile": true, "Privilege": true, "Object": true, "Execution": true,
	"Role": true, "Rule": true,
}

// Ident maps s to a valid Alloy identifier fragment: every character outside
// [A-Za-z0-9_] becomes an underscore and a leading minus becomes "neg".
func Ident(s string) string {
	var b strings.Builder
	if strings.HasPrefix(s, "-") {
		b.WriteString("neg")
		s = s[1:]
	}
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}

// Capitalize upper-cases the first letter of s and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// TopicSignature derives the channel signature of a topic name.
// "/robot/cmd_vel" becomes "channel_robot_cmd_vel".
func TopicSignature(name string) string {
	return "channel" + Ident(strings.ToLower(ensureLeadingSlash(name)))
}

// TypeSignature derives the abstract message signature of a type name: the
// last "/" or "_" separated segment, capitalized. "std_msgs/msg/Int32"
// becomes "Int32".
func TypeSignature(typeName string) string {
	flat := strings.ReplaceAll(strings.ToLower(typeName), "/", "_")
	parts := strings.Split(flat, "_")
	last := ""
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			last = parts[i]
			break
		}
	}
	sig := Capitalize(Ident(last))
	if sig == "" || reserved[sig] || unicode.IsDigit(rune(sig[0])) {
		sig = "Msg" + sig
	}
	return sig
}

// ValueAtom derives the atom signature of value within a domain named prefix.
func ValueAtom(prefix, value string) string {
	return prefix + "_" + Capitalize(Ident(value))
}

// NodeSignature derives the node signature of a fully qualified ROS name.
// "/robot/driver" becomes "node_robot_driver".
func NodeSignature(rosname string) string {
	return "node" + Ident(strings.ToLower(ensureLeadingSlash(rosname)))
}

// VariableName derives the execution field that holds a process state.
func VariableName(state string) string {
	v := Ident(strings.ToLower(state))
	if reserved[v] || v == "" || unicode.IsDigit(rune(v[0])) {
		v = "s_" + v
	}
	return v
}

// PredicateName derives the Alloy predicate name of a behavior predicate.
func PredicateName(name string) string {
	p := Ident(name)
	if reserved[p] || p == "" || unicode.IsDigit(rune(p[0])) || p == "nop" || p == "system" || p == "publish" {
		p = "p_" + p
	}
	return p
}

func ensureLeadingSlash(name string) string {
	if strings.HasPrefix(name, "/") {
		return name
	}
	return "/" + name
}
