package config

import (
	"context"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/luis1ribeiro/SROS2-Utilities/errors"
	"github.com/luis1ribeiro/SROS2-Utilities/fs"
	schema "github.com/luis1ribeiro/SROS2-Utilities/schemas"
)

// Load reads the deployment description at path and validates it.
// Files ending in .yaml or .yml are read as YAML, everything else as CUE.
//
// The function performs the following steps:
// 1. Reads the file through filesystem
// 2. Unifies it with the embedded #Deployment schema
// 3. Decodes the result into a Deployment
// 4. Checks the schema version and cross references (unless skipped)
func Load(ctx context.Context, filesystem fs.ReadFS, path string, opts ...LoadOption) (*Deployment, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	data, err := filesystem.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeNotFound,
			"failed to read deployment description",
			map[string]interface{}{
				"path": path,
			},
		)
	}

	var d *Deployment
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		d, err = LoadYAML(ctx, data, path)
	default:
		d, err = LoadCUE(ctx, data, path)
	}
	if err != nil {
		return nil, err
	}
	d.Source = path

	if o.skipValidation {
		return d, nil
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadCUE decodes a CUE deployment description. filename is used in
// error positions only.
func LoadCUE(ctx context.Context, data []byte, filename string) (*Deployment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cueCtx := cuecontext.New()

	value := cueCtx.CompileBytes(data, cue.Filename(filename))
	if value.Err() != nil {
		return nil, errors.WrapWithContext(
			value.Err(),
			errors.CodeCUELoadFailed,
			"failed to compile deployment description",
			map[string]interface{}{
				"path": filename,
			},
		)
	}
	return decode(cueCtx, value, filename)
}

// LoadYAML decodes a YAML deployment description. The document is checked
// against the same CUE schema as CUE descriptions.
func LoadYAML(ctx context.Context, data []byte, filename string) (*Deployment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeYAMLDecodeFailed,
			"failed to parse deployment description",
			map[string]interface{}{
				"path": filename,
			},
		)
	}
	if raw == nil {
		return nil, errors.WrapWithContext(
			errors.New(errors.CodeInvalidInput, "document is empty"),
			errors.CodeYAMLDecodeFailed,
			"failed to parse deployment description",
			map[string]interface{}{
				"path": filename,
			},
		)
	}

	cueCtx := cuecontext.New()
	value := cueCtx.Encode(raw)
	if value.Err() != nil {
		return nil, errors.WrapWithContext(
			value.Err(),
			errors.CodeCUELoadFailed,
			"failed to encode deployment description",
			map[string]interface{}{
				"path": filename,
			},
		)
	}
	return decode(cueCtx, value, filename)
}

// decode unifies value with the deployment schema and decodes it.
func decode(cueCtx *cue.Context, value cue.Value, filename string) (*Deployment, error) {
	def, err := deploymentSchema(cueCtx)
	if err != nil {
		return nil, err
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeSchemaFailed,
			"deployment description does not match the schema",
			map[string]interface{}{
				"path": filename,
			},
		)
	}

	var d Deployment
	if err := unified.Decode(&d); err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeCUEDecodeFailed,
			"failed to decode deployment description",
			map[string]interface{}{
				"path": filename,
			},
		)
	}
	return &d, nil
}

func deploymentSchema(cueCtx *cue.Context) (cue.Value, error) {
	src, err := schema.Source()
	if err != nil {
		return cue.Value{}, errors.Wrap(err, errors.CodeInternal, "embedded schema is missing")
	}
	compiled := cueCtx.CompileBytes(src, cue.Filename(schema.SchemaFile))
	if compiled.Err() != nil {
		return cue.Value{}, errors.Wrap(compiled.Err(), errors.CodeInternal, "embedded schema does not compile")
	}
	def := compiled.LookupPath(cue.ParsePath(schema.Definition))
	if !def.Exists() {
		return cue.Value{}, errors.Newf(errors.CodeInternal, "embedded schema has no %s", schema.Definition)
	}
	return def, nil
}
