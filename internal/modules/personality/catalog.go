package personality

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

//go:embed catalog.schema.json
var catalogSchemaJSON []byte

const catalogSchemaURL = "catalog.schema.json"

// PersonalityType is one catalog entry. Entries are read-only after loading.
type PersonalityType struct {
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Tagline     string      `json:"tagline"`
	Description string      `json:"description"`
	Strengths   []string    `json:"strengths"`
	Challenges  []string    `json:"challenges"`
	CareerPaths []string    `json:"career_paths"`
	Traits      TraitVector `json:"traits"`
}

// Catalog is an immutable, versioned table of personality types.
type Catalog struct {
	version  int
	entries  []*PersonalityType
	byCode   map[string]*PersonalityType
	byTraits map[TraitVector]*PersonalityType
}

type catalogDoc struct {
	Version int        `yaml:"version" json:"version"`
	Types   []entryDoc `yaml:"types" json:"types"`
}

type entryDoc struct {
	Code        string            `yaml:"code" json:"code"`
	Name        string            `yaml:"name" json:"name"`
	Tagline     string            `yaml:"tagline" json:"tagline"`
	Description string            `yaml:"description" json:"description"`
	Traits      map[string]string `yaml:"traits" json:"traits"`
	Strengths   []string          `yaml:"strengths" json:"strengths"`
	Challenges  []string          `yaml:"challenges" json:"challenges"`
	CareerPaths []string          `yaml:"career_paths" json:"career_paths"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// DefaultCatalog returns the embedded 16-entry catalog, parsed once per process.
func DefaultCatalog() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = LoadCatalog(defaultCatalogYAML)
	})
	return defaultCatalog, defaultErr
}

// LoadCatalog parses and validates a YAML catalog. Partial catalogs are accepted;
// inconsistent ones (code not matching traits, duplicates) are not.
func LoadCatalog(raw []byte) (*Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if doc.Types == nil {
		doc.Types = []entryDoc{}
	}
	if err := validateAgainstSchema(doc); err != nil {
		return nil, err
	}

	c := &Catalog{
		version:  doc.Version,
		entries:  make([]*PersonalityType, 0, len(doc.Types)),
		byCode:   make(map[string]*PersonalityType, len(doc.Types)),
		byTraits: make(map[TraitVector]*PersonalityType, len(doc.Types)),
	}
	for i, e := range doc.Types {
		pt, err := e.toType()
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		if _, dup := c.byCode[pt.Code]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate code %s", i, pt.Code)
		}
		c.entries = append(c.entries, pt)
		c.byCode[pt.Code] = pt
		c.byTraits[pt.Traits] = pt
	}
	return c, nil
}

func (e entryDoc) toType() (*PersonalityType, error) {
	var v TraitVector
	for _, d := range Dimensions() {
		v[d] = Trait(strings.ToLower(strings.TrimSpace(e.Traits[d.String()])))
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(e.Code))
	if derived := Code(v); derived != code {
		return nil, fmt.Errorf("code %s does not match traits (%s)", code, derived)
	}
	return &PersonalityType{
		Code:        code,
		Name:        strings.TrimSpace(e.Name),
		Tagline:     strings.TrimSpace(e.Tagline),
		Description: strings.TrimSpace(e.Description),
		Strengths:   append([]string(nil), e.Strengths...),
		Challenges:  append([]string(nil), e.Challenges...),
		CareerPaths: append([]string(nil), e.CareerPaths...),
		Traits:      v,
	}, nil
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(catalogSchemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("parse catalog schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(catalogSchemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add catalog schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(catalogSchemaURL)
	})
	return schema, schemaErr
}

func validateAgainstSchema(doc catalogDoc) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode catalog: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("catalog does not match schema: %w", err)
	}
	return nil
}

func (c *Catalog) Version() int { return c.version }

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns the catalog in its declared order.
func (c *Catalog) Entries() []*PersonalityType {
	if c == nil {
		return nil
	}
	return append([]*PersonalityType(nil), c.entries...)
}

func (c *Catalog) Lookup(code string) (*PersonalityType, bool) {
	if c == nil {
		return nil, false
	}
	pt, ok := c.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return pt, ok
}
