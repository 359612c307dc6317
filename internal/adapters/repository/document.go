package repository

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/studyplanner/core/internal/domain/entities"
	"github.com/studyplanner/core/internal/infrastructure/logger"
	"github.com/studyplanner/core/internal/ports"
)

// Reasons a stored document is replaced by an empty one
const (
	ReasonEmpty         = "empty"
	ReasonInvalidJSON   = "invalid_json"
	ReasonSchema        = "schema"
	ReasonInvalidFields = "invalid_fields"
)

// CorruptSuffix names the copy kept of a document that could not be decoded
const CorruptSuffix = ".corrupt"

//go:embed schema/document.schema.json
var documentSchemaJSON string

var (
	schemaOnce     sync.Once
	documentSchema *jsonschema.Schema
	schemaErr      error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("document.schema.json", strings.NewReader(documentSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add document schema: %w", err)
			return
		}
		documentSchema, schemaErr = compiler.Compile("document.schema.json")
	})
	return documentSchema, schemaErr
}

// DecodeError reports why stored bytes could not be used as a schedule document.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s: %v", entities.ErrCorruptDocument, e.Reason, e.Err)
}

func (e *DecodeError) Is(target error) bool {
	return target == entities.ErrCorruptDocument
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeDocument parses a stored schedule document. A top-level array is the
// legacy format and becomes the task list of an otherwise empty document.
func DecodeDocument(data []byte) (*entities.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &DecodeError{Reason: ReasonEmpty, Err: io.ErrUnexpectedEOF}
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &DecodeError{Reason: ReasonInvalidJSON, Err: err}
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(raw); err != nil {
		return nil, &DecodeError{Reason: ReasonSchema, Err: firstSchemaCause(err)}
	}

	doc := entities.NewDocument()
	if _, legacy := raw.([]interface{}); legacy {
		if err := json.Unmarshal(data, &doc.Tasks); err != nil {
			return nil, &DecodeError{Reason: ReasonInvalidFields, Err: err}
		}
	} else if err := json.Unmarshal(data, doc); err != nil {
		return nil, &DecodeError{Reason: ReasonInvalidFields, Err: err}
	}

	doc.Normalize()
	return doc, nil
}

// EncodeDocument serializes the document with 2-space indentation and a trailing newline.
func EncodeDocument(doc *entities.Document) ([]byte, error) {
	doc.Normalize()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schedule document: %w", err)
	}

	return append(data, '\n'), nil
}

// firstSchemaCause walks to the deepest validation error so logs show the offending path.
func firstSchemaCause(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return fmt.Errorf("%s: %s", ve.InstanceLocation, ve.Message)
}

// recoverDocument turns a decode failure into an empty document. Only decode
// failures are recovered; anything else is returned to the caller. The raw
// bytes are handed to keep first, and recovery is refused when they cannot be
// kept, so the next save never destroys the only copy.
func recoverDocument(log *logger.Logger, observer ports.StoreObserver, source string, data []byte, err error, keep func([]byte) (string, error)) (*entities.Document, error) {
	var de *DecodeError
	if !errors.As(err, &de) {
		return nil, err
	}

	kept, keepErr := keep(data)
	if keepErr != nil {
		return nil, fmt.Errorf("preserve unreadable schedule document: %w", keepErr)
	}

	observer.ObserveRecovery(de.Reason)
	log.Warnw("Schedule document unreadable, starting from an empty schedule",
		"source", source,
		"reason", de.Reason,
		"error", de.Err.Error(),
		"preserved_as", kept,
	)

	return entities.NewDocument(), nil
}
