package recordschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"horse.fit/threatwatch/internal/incident"
)

//go:embed incident.schema.json
var incidentSchemaJSON string

//go:embed article.schema.json
var articleSchemaJSON string

type compiledSchema struct {
	name   string
	source string

	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

var (
	incidentSchema = &compiledSchema{name: "incident.schema.json", source: incidentSchemaJSON}
	articleSchema  = &compiledSchema{name: "article.schema.json", source: articleSchemaJSON}
)

// ValidateIncident checks one incident record against the embedded schema
// and decodes it.
func ValidateIncident(raw json.RawMessage) (incident.Record, error) {
	var record incident.Record
	if err := validateInto(incidentSchema, raw, &record); err != nil {
		return incident.Record{}, err
	}
	return record, nil
}

// ValidateArticle checks one article record against the embedded schema
// and decodes it. other_sources is never nil on success.
func ValidateArticle(raw json.RawMessage) (incident.Article, error) {
	var article incident.Article
	if err := validateInto(articleSchema, raw, &article); err != nil {
		return incident.Article{}, err
	}
	article.Title = strings.TrimSpace(article.Title)
	article.URL = strings.TrimSpace(article.URL)
	if article.OtherSources == nil {
		article.OtherSources = []string{}
	}
	return article, nil
}

func validateInto(cs *compiledSchema, raw json.RawMessage, dst any) error {
	value, err := decodeStrictJSON(raw)
	if err != nil {
		return fmt.Errorf("decode record JSON: %w", err)
	}

	schema, err := cs.load()
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("normalize record JSON: %w", err)
	}
	if err := json.Unmarshal(normalized, dst); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	return nil
}

func (cs *compiledSchema) load() (*jsonschema.Schema, error) {
	cs.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource(cs.name, strings.NewReader(cs.source)); err != nil {
			cs.err = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile(cs.name)
		if err != nil {
			cs.err = fmt.Errorf("compile schema: %w", err)
			return
		}

		cs.schema = schema
	})

	if cs.err != nil {
		return nil, cs.err
	}
	if cs.schema == nil {
		return nil, fmt.Errorf("schema %s not initialized", cs.name)
	}
	return cs.schema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("record is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("record contains trailing content")
	}

	return value, nil
}
