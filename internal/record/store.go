package record

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ppiankov/regscout/internal/model"
)

// ErrMalformedRecord marks a records file or record that does not match the schema
var ErrMalformedRecord = errors.New("malformed regulation record")

//go:embed regulations.schema.json
var schemaJSON string

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

// ValidationError lists schema violations found in a records document
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMalformedRecord, strings.Join(e.Errors, "; "))
}

// Is lets errors.Is match ErrMalformedRecord
func (e *ValidationError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// Validate checks a JSON records document against the embedded schema
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Errors: make([]string, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, field+": "+desc.Description())
	}
	return verr
}

// Store reads and writes the records file wholesale
type Store struct {
	path string
}

// NewStore creates a store for the JSON file at path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the records file location
func (s *Store) Path() string {
	return s.path
}

// Encode renders records as the indented JSON array written to disk
func Encode(records []model.RegulationRecord) ([]byte, error) {
	if records == nil {
		records = []model.RegulationRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal records: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteAll replaces the records file with records
func (s *Store) WriteAll(records []model.RegulationRecord) error {
	data, err := Encode(records)
	if err != nil {
		return err
	}
	if err := Validate(data); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".regulations-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close records file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod records file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename records file: %w", err)
	}

	return nil
}

// ReadRaw returns the validated file contents unchanged
func (s *Store) ReadRaw() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	return data, nil
}

// ReadAll loads every record from the file
func (s *Store) ReadAll() ([]model.RegulationRecord, error) {
	data, err := s.ReadRaw()
	if err != nil {
		return nil, err
	}

	var records []model.RegulationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return records, nil
}
