package style

import "github.com/luis1ribeiro/SROS2-Utilities/lint"

// hiddenSegment matches a ROS name with a segment starting with an
// underscore. ROS tools hide such names from introspection.
const hiddenSegment = `(^|/)_`

// NewHiddenNameRule reports hidden node and topic names.
//
//nolint:ireturn // Builder functions should return interfaces
func NewHiddenNameRule() lint.Rule {
	return lint.PatternRule(
		"hidden-name",
		"Reports node and topic names hidden from ROS introspection",
		hiddenSegment,
		lint.SeverityInfo,
	)
}
