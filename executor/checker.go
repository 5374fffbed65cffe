package executor

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/luis1ribeiro/SROS2-Utilities/errors"
)

// Verdict is the outcome of one check.
type Verdict int

const (
	// VerdictUnknown means the checker output did not mention the check.
	VerdictUnknown Verdict = iota
	// VerdictHolds means no counterexample was found within the bounds.
	VerdictHolds
	// VerdictViolated means the checker found a counterexample.
	VerdictViolated
)

// String returns the string representation of the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictHolds:
		return "holds"
	case VerdictViolated:
		return "violated"
	default:
		return "unknown"
	}
}

// CheckResult is the verdict of one named check.
type CheckResult struct {
	Check   string
	Verdict Verdict
}

// Report is the outcome of one checker run.
type Report struct {
	Results []CheckResult
	Output  string
}

// Violated returns the checks that have a counterexample.
func (r *Report) Violated() []string {
	var names []string
	for _, res := range r.Results {
		if res.Verdict == VerdictViolated {
			names = append(names, res.Check)
		}
	}
	return names
}

// Checker runs an external model checker command line on a model file.
// The model path is appended as the last argument.
type Checker struct {
	program string
	args    []string
	logger  *slog.Logger
	stream  io.Writer
	command func(program string, args ...string) Executor
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithCheckerLogger sets the logger.
func WithCheckerLogger(logger *slog.Logger) CheckerOption {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOutputStream copies the checker output to w while it runs.
func WithOutputStream(w io.Writer) CheckerOption {
	return func(c *Checker) {
		c.stream = w
	}
}

// WithCommandFactory replaces the way commands are built.
func WithCommandFactory(f func(program string, args ...string) Executor) CheckerOption {
	return func(c *Checker) {
		c.command = f
	}
}

// NewChecker parses commandLine, such as "java -jar alloy.jar exec".
func NewChecker(commandLine string, opts ...CheckerOption) (*Checker, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil, errors.New(errors.CodeInvalidInput, "checker command is empty")
	}
	c := &Checker{
		program: fields[0],
		args:    fields[1:],
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		command: func(program string, args ...string) Executor {
			return New(program, args...)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run checks the model at modelPath and returns one result per name in
// checks, in order. A checker that exits non-zero fails with
// CodeExecutionFailed.
func (c *Checker) Run(ctx context.Context, modelPath string, checks []string) (*Report, error) {
	args := append(append([]string{}, c.args...), filepath.Base(modelPath))
	cmd := c.command(c.program, args...)

	opts := []Option{
		WithCapture(false, false, true),
		WithWorkingDir(filepath.Dir(modelPath)),
	}
	if c.stream != nil {
		opts = append(opts, WithStdoutWriter(c.stream), WithStderrWriter(c.stream))
	}

	c.logger.Info("running model checker", "program", c.program, "model", modelPath, "checks", len(checks))
	result, err := cmd.Execute(ctx, opts...)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeExecutionFailed, "model checker failed",
			map[string]interface{}{"model": modelPath})
	}

	report := &Report{
		Results: ParseVerdicts(result.Combined, checks),
		Output:  result.Combined,
	}
	for _, res := range report.Results {
		c.logger.Debug("check verdict", "check", res.Check, "verdict", res.Verdict.String())
	}
	return report, nil
}

// ParseVerdicts reads checker output. A line naming a check starts its
// section; the first verdict line in the section decides it. Both the
// tabular form ("00. check name 0 UNSAT") and the narrative form
// ("No counterexample found.") are understood.
func ParseVerdicts(output string, checks []string) []CheckResult {
	verdicts := make(map[string]Verdict, len(checks))
	current := ""

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if name := mentioned(line, checks); name != "" {
			current = name
		}
		if current == "" || verdicts[current] != VerdictUnknown {
			continue
		}
		if v := lineVerdict(line); v != VerdictUnknown {
			verdicts[current] = v
		}
	}

	results := make([]CheckResult, 0, len(checks))
	for _, name := range checks {
		results = append(results, CheckResult{Check: name, Verdict: verdicts[name]})
	}
	return results
}

// mentioned returns the longest check name appearing as a word in line.
func mentioned(line string, checks []string) string {
	words := strings.FieldsFunc(line, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	})
	best := ""
	for _, w := range words {
		for _, name := range checks {
			if w == name && len(name) > len(best) {
				best = name
			}
		}
	}
	return best
}

func lineVerdict(line string) Verdict {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(line, "UNSAT"), strings.Contains(lower, "no counterexample"):
		return VerdictHolds
	case strings.Contains(line, "SAT"), strings.Contains(lower, "counterexample found"):
		return VerdictViolated
	default:
		return VerdictUnknown
	}
}
