package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/otcheck/pkg/core"
)

// Codec reads and writes operation logs and case documents in one format.
type Codec interface {
	core.Decoder
	// DecodeCase reads a case document.
	DecodeCase(r io.Reader) (*core.Case, error)
	// EncodeOps writes an operation log.
	EncodeOps(ops []core.Op) ([]byte, error)
	// EncodeCase writes a case document.
	EncodeCase(c core.Case) ([]byte, error)
	// Format names the encoding ("json", "yaml", "toml").
	Format() string
}

// Options tunes decoding.
type Options struct {
	// StrictKinds turns records of an unknown kind into decode failures
	// instead of no-op operations.
	StrictKinds bool
	// StrictNumbers keeps the numbers of JSON operation logs as json.Number
	// to avoid float64 conversion of large counts. Case documents always
	// decode numbers exactly.
	StrictNumbers bool
}

// DefaultCodecs returns the codecs keyed by file extension.
func DefaultCodecs(opts Options) map[string]Codec {
	yc := NewYAMLCodec(opts)
	return map[string]Codec{
		".json": NewJSONCodec(opts),
		".yaml": yc,
		".yml":  yc,
		".toml": NewTOMLCodec(opts),
	}
}

// ForFormat returns the codec for a format name.
func ForFormat(name string, opts Options) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return NewJSONCodec(opts), nil
	case "yaml", "yml":
		return NewYAMLCodec(opts), nil
	case "toml":
		return NewTOMLCodec(opts), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", core.ErrInvalidConfig, name)
	}
}

// ForPath picks a codec by the extension of path.
func ForPath(codecs map[string]Codec, path string) (Codec, bool) {
	c, ok := codecs[strings.ToLower(filepath.Ext(path))]
	return c, ok
}

// Extensions lists the registered extensions, sorted.
func Extensions(codecs map[string]Codec) []string {
	exts := make([]string, 0, len(codecs))
	for ext := range codecs {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// --- JSON Codec ---

// JSONCodec handles JSON operation logs, the form clients send on the wire.
type JSONCodec struct {
	opts Options
}

// NewJSONCodec creates a new JSON codec.
func NewJSONCodec(opts Options) *JSONCodec {
	return &JSONCodec{opts: opts}
}

func (c *JSONCodec) Format() string        { return "json" }
func (c *JSONCodec) ComponentType() string { return "json-codec" }

func (c *JSONCodec) decode(r io.Reader, useNumber bool) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var payload any
	decoder := json.NewDecoder(bytes.NewReader(data))
	if useNumber {
		decoder.UseNumber()
	}
	if err := decoder.Decode(&payload); err != nil {
		return nil, &core.DecodeError{Index: -1, Err: fmt.Errorf("invalid json: %w", err)}
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, &core.DecodeError{Index: -1, Err: errors.New("invalid json: trailing data")}
	}
	return payload, nil
}

func (c *JSONCodec) DecodeOps(r io.Reader) ([]core.Op, error) {
	payload, err := c.decode(r, c.opts.StrictNumbers)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, &core.DecodeError{Index: -1, Err: errNotList}
	}
	return opsFromValue(payload, c.opts.StrictKinds)
}

// DecodeCase keeps numbers as json.Number so an integer start survives at
// any size.
func (c *JSONCodec) DecodeCase(r io.Reader) (*core.Case, error) {
	payload, err := c.decode(r, true)
	if err != nil {
		return nil, err
	}
	return caseFromValue(payload, c.opts.StrictKinds, c.wireOps)
}

func (c *JSONCodec) wireOps(s string) ([]core.Op, error) {
	return c.DecodeOps(strings.NewReader(s))
}

func (c *JSONCodec) EncodeOps(ops []core.Op) ([]byte, error) {
	return json.Marshal(toRecords(ops))
}

func (c *JSONCodec) EncodeCase(cs core.Case) ([]byte, error) {
	return json.MarshalIndent(toCaseDoc(cs), "", "  ")
}

// --- YAML Codec ---

// YAMLCodec handles YAML operation logs and case documents.
type YAMLCodec struct {
	opts Options
}

// NewYAMLCodec creates a new YAML codec.
func NewYAMLCodec(opts Options) *YAMLCodec {
	return &YAMLCodec{opts: opts}
}

func (c *YAMLCodec) Format() string        { return "yaml" }
func (c *YAMLCodec) ComponentType() string { return "yaml-codec" }

func (c *YAMLCodec) decode(r io.Reader) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var payload any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, &core.DecodeError{Index: -1, Err: fmt.Errorf("invalid yaml: %w", err)}
	}
	return payload, nil
}

func (c *YAMLCodec) DecodeOps(r io.Reader) ([]core.Op, error) {
	payload, err := c.decode(r)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, &core.DecodeError{Index: -1, Err: errNotList}
	}
	return opsFromValue(payload, c.opts.StrictKinds)
}

func (c *YAMLCodec) DecodeCase(r io.Reader) (*core.Case, error) {
	payload, err := c.decode(r)
	if err != nil {
		return nil, err
	}
	// An "ops" string holds the JSON wire form.
	wire := NewJSONCodec(c.opts)
	return caseFromValue(payload, c.opts.StrictKinds, wire.wireOps)
}

func (c *YAMLCodec) EncodeOps(ops []core.Op) ([]byte, error) {
	return yaml.Marshal(toRecords(ops))
}

func (c *YAMLCodec) EncodeCase(cs core.Case) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(toCaseDoc(cs)); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// --- TOML Codec ---

// TOMLCodec handles TOML documents. TOML has no top-level arrays, so an
// operation log is written as an [[ops]] array of tables.
type TOMLCodec struct {
	opts Options
}

// NewTOMLCodec creates a new TOML codec.
func NewTOMLCodec(opts Options) *TOMLCodec {
	return &TOMLCodec{opts: opts}
}

func (c *TOMLCodec) Format() string        { return "toml" }
func (c *TOMLCodec) ComponentType() string { return "toml-codec" }

func (c *TOMLCodec) decode(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	payload := make(map[string]any)
	if err := toml.Unmarshal(data, &payload); err != nil {
		return nil, &core.DecodeError{Index: -1, Err: fmt.Errorf("invalid toml: %w", err)}
	}
	return payload, nil
}

func (c *TOMLCodec) DecodeOps(r io.Reader) ([]core.Op, error) {
	payload, err := c.decode(r)
	if err != nil {
		return nil, err
	}
	ops, ok := payload["ops"]
	if !ok {
		return nil, &core.DecodeError{Index: -1, Field: "ops", Err: errMissing}
	}
	return opsFromValue(ops, c.opts.StrictKinds)
}

func (c *TOMLCodec) DecodeCase(r io.Reader) (*core.Case, error) {
	payload, err := c.decode(r)
	if err != nil {
		return nil, err
	}
	wire := NewJSONCodec(c.opts)
	return caseFromValue(payload, c.opts.StrictKinds, wire.wireOps)
}

func (c *TOMLCodec) EncodeOps(ops []core.Op) ([]byte, error) {
	return toml.Marshal(struct {
		Ops []record `toml:"ops"`
	}{Ops: toRecords(ops)})
}

func (c *TOMLCodec) EncodeCase(cs core.Case) ([]byte, error) {
	return toml.Marshal(toCaseDoc(cs))
}
