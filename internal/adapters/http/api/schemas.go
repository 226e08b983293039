package api

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

type schemaSet struct {
	alert  *gojsonschema.Schema
	vitals *gojsonschema.Schema
}

// mustLoadSchemas compiles the embedded payload schemas. They ship with
// the binary, so a failure is a build defect.
func mustLoadSchemas() *schemaSet {
	return &schemaSet{
		alert:  mustCompile("schemas/alert.schema.json"),
		vitals: mustCompile("schemas/vitals.schema.json"),
	}
}

func mustCompile(path string) *gojsonschema.Schema {
	raw, err := schemaFS.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("read schema %s: %v", path, err))
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", path, err))
	}
	return schema
}

// check validates body against schema. Malformed JSON and schema
// violations both wrap ErrSchema; the message lists every violation.
func check(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return fmt.Errorf("%w: %s", ErrSchema, strings.Join(msgs, "; "))
}
