package story

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

var (
	registerOnce sync.Once
	idPattern    = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)
)

// storyIDChecker accepts the lower-case identifiers used for pages, scenes,
// sub-scenes and layers.
type storyIDChecker struct{}

func (storyIDChecker) IsFormat(input interface{}) bool {
	s, ok := input.(string)
	return ok && idPattern.MatchString(s)
}

func registerFormats() {
	registerOnce.Do(func() {
		gojsonschema.FormatCheckers.Add("story-id", storyIDChecker{})
	})
}

// Schema returns the JSON Schema story files are checked against.
func Schema() []byte { return schemaJSON }

// Validate checks a decoded document against the story schema.
func Validate(doc any) error {
	registerFormats()
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return &SchemaError{Problems: msgs}
	}
	return nil
}

// ValidateJSON checks raw JSON bytes.
func ValidateJSON(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return Validate(doc)
}

// SchemaError lists every schema violation found in a document.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "story: validation failed: " + strings.Join(e.Problems, "; ")
}
