// Command svros compiles a ROS 2 deployment and its SROS policy into an
// Alloy self-composition model that checks non-interference between private
// and public enclaves.
//
// Usage:
//
//	svros -config deploy.cue [-policy policy.xml] [-out model.als]
//	      [-steps N] [-scope N] [-inbox N] [-report text|json|sarif]
//	      [-emit-policy file] [-connections file]
//	      [-check -checker "java -jar alloy.jar exec"] [-v] [-log-json]
//
// The exit code is 0 on success, 1 on a fatal error and 2 when the model
// checker finds a counterexample.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/luis1ribeiro/SROS2-Utilities/config"
	"github.com/luis1ribeiro/SROS2-Utilities/executor"
	"github.com/luis1ribeiro/SROS2-Utilities/fs"
	"github.com/luis1ribeiro/SROS2-Utilities/fs/billy"
	"github.com/luis1ribeiro/SROS2-Utilities/lint"
	"github.com/luis1ribeiro/SROS2-Utilities/pipeline"
	"github.com/luis1ribeiro/SROS2-Utilities/policy"
)

const (
	exitOK        = 0
	exitFatal     = 1
	exitViolation = 2
)

type options struct {
	config      string
	policy      string
	out         string
	steps       int
	scope       int
	inbox       int
	report      string
	emitPolicy  string
	connections string
	check       bool
	checker     string
	verbose     bool
	logJSON     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("svros", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var o options
	flags.StringVar(&o.config, "config", "", "deployment description (.cue, .yaml or .yml)")
	flags.StringVar(&o.policy, "policy", "", "SROS policy file, replacing the deployment's policy")
	flags.StringVar(&o.out, "out", "", "model output file (default stdout)")
	flags.IntVar(&o.steps, "steps", 0, "largest trace length of checks")
	flags.IntVar(&o.scope, "scope", 0, "scope of checks")
	flags.IntVar(&o.inbox, "inbox", 0, "inbox sequence bound, 0 for the scope")
	flags.StringVar(&o.report, "report", "text", "issue report format: text, json or sarif")
	flags.StringVar(&o.emitPolicy, "emit-policy", "", "write the analyzed policy as SROS XML to this file")
	flags.StringVar(&o.connections, "connections", "", "write the connection report as JSON to this file")
	flags.BoolVar(&o.check, "check", false, "run the model checker on the generated model")
	flags.StringVar(&o.checker, "checker", "java -jar alloy.jar exec", "model checker command line")
	flags.BoolVar(&o.verbose, "v", false, "verbose logging")
	flags.BoolVar(&o.logJSON, "log-json", false, "log as JSON")

	if err := flags.Parse(args); err != nil {
		return exitFatal
	}
	if o.config == "" {
		fmt.Fprintln(stderr, "svros: -config is required")
		flags.Usage()
		return exitFatal
	}

	logger := newLogger(stderr, o.verbose, o.logJSON)
	code, err := compile(ctx, o, logger, stdout, stderr)
	if err != nil {
		logger.Error("compilation failed", "error", err)
		fmt.Fprintf(stderr, "svros: %v\n", err)
		return exitFatal
	}
	return code
}

func newLogger(w io.Writer, verbose, asJSON bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

func compile(ctx context.Context, o options, logger *slog.Logger, stdout, stderr io.Writer) (int, error) {
	format, err := lint.ParseFormat(o.report)
	if err != nil {
		return exitFatal, err
	}
	if o.check && o.out == "" {
		return exitFatal, fmt.Errorf("-check requires -out")
	}

	osfs := billy.NewBaseOSFS()
	d, err := config.Load(ctx, osfs, o.config)
	if err != nil {
		return exitFatal, err
	}
	if o.policy != "" {
		path, err := fs.GetAbs(o.policy)
		if err != nil {
			return exitFatal, err
		}
		d.Policy = nil
		d.PolicyFile = path
	}

	res, err := pipeline.Run(ctx, d,
		pipeline.WithLogger(logger),
		pipeline.WithFS(osfs),
		pipeline.WithScope(o.scope),
		pipeline.WithSteps(o.steps),
		pipeline.WithInbox(o.inbox),
	)
	if err != nil {
		return exitFatal, err
	}

	// The model is written last.
	outputs, err := sideOutputs(o, res)
	if err != nil {
		return exitFatal, err
	}
	for _, out := range outputs {
		if err := osfs.WriteFile(out.path, out.data, 0o644); err != nil {
			return exitFatal, err
		}
	}
	if err := writeModel(osfs, o.out, res, stdout); err != nil {
		return exitFatal, err
	}

	if err := lint.NewReporter(stderr, format).Report(res.Issues); err != nil {
		return exitFatal, fmt.Errorf("failed to report issues: %w", err)
	}

	if !o.check || len(res.Document.Checks) == 0 {
		return exitOK, nil
	}
	return runChecker(ctx, o, logger, res, stderr)
}

type output struct {
	path string
	data []byte
}

func sideOutputs(o options, res *pipeline.Result) ([]output, error) {
	var outputs []output
	if o.emitPolicy != "" {
		var buf bytes.Buffer
		if err := policy.EncodeSROS(&buf, res.PolicyTree); err != nil {
			return nil, err
		}
		outputs = append(outputs, output{path: o.emitPolicy, data: buf.Bytes()})
	}
	if o.connections != "" {
		data, err := json.MarshalIndent(res.Graph.Connections(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode connections: %w", err)
		}
		outputs = append(outputs, output{path: o.connections, data: append(data, '\n')})
	}
	return outputs, nil
}

func writeModel(w fs.WriteFS, path string, res *pipeline.Result, stdout io.Writer) error {
	if path == "" {
		if _, err := res.Document.WriteTo(stdout); err != nil {
			return fmt.Errorf("failed to write model: %w", err)
		}
		return nil
	}
	return w.WriteFile(path, []byte(res.Document.Text), 0o644)
}

func runChecker(ctx context.Context, o options, logger *slog.Logger, res *pipeline.Result, stderr io.Writer) (int, error) {
	checkerOpts := []executor.CheckerOption{executor.WithCheckerLogger(logger)}
	if o.verbose {
		checkerOpts = append(checkerOpts, executor.WithOutputStream(stderr))
	}
	checker, err := executor.NewChecker(o.checker, checkerOpts...)
	if err != nil {
		return exitFatal, err
	}

	model, err := fs.GetAbs(o.out)
	if err != nil {
		return exitFatal, err
	}
	names := make([]string, 0, len(res.Document.Checks))
	for _, c := range res.Document.Checks {
		names = append(names, c.Name)
	}

	report, err := checker.Run(ctx, model, names)
	if err != nil {
		return exitFatal, err
	}
	for _, r := range report.Results {
		fmt.Fprintf(stderr, "%s: %s\n", r.Check, r.Verdict)
		if r.Verdict == executor.VerdictUnknown {
			logger.Warn("checker output has no verdict", "check", r.Check, "run_id", res.RunID)
		}
	}
	if len(report.Violated()) > 0 {
		return exitViolation, nil
	}
	return exitOK, nil
}
