package config

import (
	"fmt"
	"strings"

	"github.com/luis1ribeiro/SROS2-Utilities/errors"
	schema "github.com/luis1ribeiro/SROS2-Utilities/schemas"
)

// Validate checks the references CUE cannot express:
//   - The version is compatible with the embedded schema
//   - Behaviour predicate names are unique across nodes
//   - Node packages are declared, when any package is declared
//   - At most one of policy and policy_file is set
//
// Redeclared topics, nodes and messages are left to the registry, which
// accepts identical redeclarations and gives undeclared message types an
// empty domain. Topic references of nodes and behaviour
// text are checked there too, once remaps and namespaces are resolved.
func (d *Deployment) Validate() error {
	if d == nil {
		return errors.New(errors.CodeInvalidInput, "deployment is nil")
	}

	if err := validateVersion(d.Version); err != nil {
		return err
	}

	// Collect all validation errors
	var validationErrors []string
	for _, check := range []func(*Deployment) []string{
		validateUniquePredicates,
		validateNodePackages,
		validatePolicySource,
	} {
		validationErrors = append(validationErrors, check(d)...)
	}

	if len(validationErrors) > 0 {
		return errors.New(
			errors.CodeInvalidConfig,
			fmt.Sprintf("deployment validation failed: %s", strings.Join(validationErrors, "; ")),
		)
	}
	return nil
}

func validateVersion(version string) error {
	ok, err := schema.IsCompatible(version)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidConfig, "invalid deployment version")
	}
	if !ok {
		return errors.Newf(errors.CodeInvalidConfig,
			"deployment version %s is not compatible with schema version %s", version, schema.SchemaVersion)
	}
	return nil
}

func validateUniquePredicates(d *Deployment) []string {
	var problems []string
	owners := make(map[string]string)
	for _, n := range d.Nodes {
		for _, p := range n.Behaviour {
			if owner, ok := owners[p.Name]; ok {
				problems = append(problems, fmt.Sprintf("predicate %q of node %q is already defined by node %q",
					p.Name, n.RosName(), owner))
				continue
			}
			owners[p.Name] = n.RosName()
		}
	}
	return problems
}

func validateNodePackages(d *Deployment) []string {
	if len(d.Packages) == 0 {
		return nil
	}
	var problems []string
	for _, n := range d.Nodes {
		if !d.HasPackage(n.Package) {
			problems = append(problems, fmt.Sprintf("node %q references unknown package %q (available packages: %s)",
				n.Name, n.Package, strings.Join(d.ListPackages(), ", ")))
		}
	}
	return problems
}

func validatePolicySource(d *Deployment) []string {
	if d.Policy != nil && d.PolicyFile != "" {
		return []string{"policy and policy_file are mutually exclusive"}
	}
	return nil
}
