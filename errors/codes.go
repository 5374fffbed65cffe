// Package errors provides the coded error type shared by every stage of the
// svros compiler. Errors carry a string code for classification, a message,
// optional structured context, and the wrapped cause.
package errors

// ErrorCode represents a specific error condition in the svros compiler.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Model errors.

	// CodeConsistency indicates a registry key was re-defined with incompatible attributes.
	CodeConsistency ErrorCode = "CONSISTENCY"

	// CodePolicyConflict indicates a topic is both allowed and denied for the same role.
	CodePolicyConflict ErrorCode = "POLICY_CONFLICT"

	// CodeReference indicates behavior text references an undeclared entity or an out-of-domain value.
	CodeReference ErrorCode = "REFERENCE"

	// CodeParse indicates malformed behavior text or a malformed policy tree.
	CodeParse ErrorCode = "PARSE_ERROR"

	// CodeRemapCycle indicates a remap chain that never reaches a terminal name.
	CodeRemapCycle ErrorCode = "REMAP_CYCLE"

	// Resource errors.

	// CodeNotFound indicates a requested resource does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// CodeSchemaFailed indicates the data failed schema validation.
	CodeSchemaFailed ErrorCode = "SCHEMA_VALIDATION_FAILED"

	// Configuration loading errors.

	// CodeCUELoadFailed indicates a CUE document could not be compiled.
	CodeCUELoadFailed ErrorCode = "CUE_LOAD_FAILED"

	// CodeCUEDecodeFailed indicates a CUE value could not be decoded into Go types.
	CodeCUEDecodeFailed ErrorCode = "CUE_DECODE_FAILED"

	// CodeYAMLDecodeFailed indicates a YAML document could not be decoded.
	CodeYAMLDecodeFailed ErrorCode = "YAML_DECODE_FAILED"

	// Execution errors.

	// CodeExecutionFailed indicates a general execution failure.
	CodeExecutionFailed ErrorCode = "EXECUTION_FAILED"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// System errors.

	// CodeInternal indicates an internal error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
