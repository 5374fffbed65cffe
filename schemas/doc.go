// Package schema provides the CUE schema of deployment descriptions and the
// schema-version compatibility check.
//
// # CUE Module
//
// CueModule embeds deployment.cue at build time. Deployment descriptions
// written in CUE or YAML are unified with the #Deployment definition before
// they are decoded, so type, shape and closedness errors are reported by
// CUE with the offending path.
//
// # Versioning
//
// Every description declares the schema version it was written against:
//
//	version: "1.2.0"
//
// IsCompatible accepts versions matching the caret constraint ^SchemaVersion.
//
// # Usage Example
//
//	compatible, err := schema.IsCompatible(d.Version)
//	if err != nil {
//	    log.Fatalf("Invalid version: %v", err)
//	}
//	if !compatible {
//	    log.Fatalf("Incompatible version: description has %s, requires compatible with %s",
//	        d.Version, schema.SchemaVersion)
//	}
package schema
