package lint

// Rule defines the interface that all linting rules must implement.
type Rule interface {
	// Name returns a unique kebab-case identifier for the rule.
	Name() string

	// Description returns a human-readable description of what the rule checks.
	Description() string

	// Check examines the provided Context and returns any issues found.
	Check(ctx *Context) []Issue
}

// Run applies every rule to ctx and returns the valid issues in rule order.
func Run(ctx *Context, rules ...Rule) []Issue {
	var issues []Issue
	for _, rule := range rules {
		for _, issue := range rule.Check(ctx) {
			if issue.IsValid() {
				issues = append(issues, issue)
			}
		}
	}
	return issues
}
