package schema

import "embed"

// CueModule contains the embedded CUE schema definitions:
//   - deployment.cue: the deployment description schema (#Deployment)
//
// The config package unifies user descriptions with Definition at runtime.
//
//go:embed deployment.cue
var CueModule embed.FS

// SchemaFile is the name of the deployment schema inside CueModule.
const SchemaFile = "deployment.cue"

// Definition is the CUE definition every deployment description must satisfy.
const Definition = "#Deployment"

// Source returns the deployment schema source.
func Source() ([]byte, error) {
	return CueModule.ReadFile(SchemaFile)
}
