// Package output reads the previous run's document and writes the new one.
package output

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/amishk599/liveroles/internal/datafile"
	"github.com/amishk599/liveroles/internal/model"
)

// Schema is the JSON schema every written document must satisfy.
//
//go:embed roles.v1.schema.json
var Schema []byte

// FieldError is one schema violation.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every schema violation of a document.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "output does not match " + model.OutputSchemaVersion + ": " + strings.Join(parts, "; ")
}

// ReadPrior loads the previous document at path. A missing, corrupt or
// foreign document yields nil and the run starts from empty state.
func ReadPrior(path string, logger *slog.Logger) *model.OutputDocument {
	var doc model.OutputDocument
	if err := datafile.Read(path, &doc); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("previous output unreadable, starting fresh", "path", path, "error", err)
		}
		return nil
	}
	if doc.SchemaVersion != model.OutputSchemaVersion {
		logger.Warn("previous output has unexpected schema, starting fresh",
			"path", path,
			"schema_version", doc.SchemaVersion,
		)
		return nil
	}
	if dropped := keepUsable(&doc); dropped > 0 {
		logger.Warn("dropped unusable postings from previous output", "path", path, "count", dropped)
	}
	return &doc
}

// keepUsable removes bucket postings that could not be written back under
// the schema and returns how many were removed.
func keepUsable(doc *model.OutputDocument) int {
	dropped := 0
	for id, postings := range doc.Buckets {
		kept := postings[:0]
		for _, d := range postings {
			if !d.Valid() || strings.TrimSpace(d.Source) == "" || d.SkillHits < 0 {
				dropped++
				continue
			}
			kept = append(kept, d)
		}
		doc.Buckets[id] = kept
	}
	return dropped
}

// PriorBucket returns the dated postings a prior document holds for bucket.
func PriorBucket(doc *model.OutputDocument, bucket string) []model.DatedPosting {
	if doc == nil {
		return nil
	}
	return doc.Buckets[bucket]
}

// Validate checks doc against the embedded schema.
func Validate(doc *model.OutputDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(Schema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validating output: %w", err)
	}
	if result.Valid() {
		return nil
	}
	verr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return verr
}

// Write validates doc and writes it to path as JSON or YAML by extension.
func Write(path string, doc *model.OutputDocument) error {
	if err := Validate(doc); err != nil {
		return err
	}
	return datafile.Write(path, doc)
}
