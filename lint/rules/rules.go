// Package rules assembles the built-in deployment rules.
package rules

import (
	"github.com/luis1ribeiro/SROS2-Utilities/lint"
	"github.com/luis1ribeiro/SROS2-Utilities/lint/rules/binding"
	"github.com/luis1ribeiro/SROS2-Utilities/lint/rules/flow"
	"github.com/luis1ribeiro/SROS2-Utilities/lint/rules/style"
)

// Default returns every built-in rule.
func Default() []lint.Rule {
	return []lint.Rule{
		binding.NewUnboundProfileRule(),
		binding.NewUnboundNodeRule(),
		binding.NewDanglingPrivilegeRule(),
		binding.NewEnclaveMismatchRule(),
		flow.NewBoundaryFlowRule(),
		flow.NewUndeclaredAccessRule(),
		style.NewTopicNamingRule(),
		style.NewEmptyDomainRule(),
		style.NewHiddenNameRule(),
	}
}
