// Package defs loads and indexes the static, immutable LSL knowledge base
// described in spec §2.1 and §6: built-in types, reserved keywords,
// built-in constants, built-in events, and built-in functions (which may
// have multiple overloads). The registry is loaded once at startup and is
// safe for concurrent read-only use across pipeline instances (spec §5).
package defs

import (
	"embed"
	"fmt"
	"io"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

//go:embed embedded.yaml
var embeddedFS embed.FS

// supportedMajor is the highest Defs document major version this package
// understands; loading a document with a newer major version fails
// rather than silently misinterpreting an incompatible schema.
const supportedMajor = 1

// rawDoc mirrors the serialized definitions document shape from spec §6.
type rawDoc struct {
	Version   string         `yaml:"version"`
	Types     []string       `yaml:"types"`
	Keywords  []string       `yaml:"keywords"`
	Constants []rawConstant  `yaml:"constants"`
	Events    []rawEvent     `yaml:"events"`
	Functions []rawOverload  `yaml:"functions"`
}

type rawConstant struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Value      string `yaml:"value,omitempty"`
	Deprecated bool   `yaml:"deprecated,omitempty"`
	Doc        string `yaml:"doc,omitempty"`
	Wiki       string `yaml:"wiki,omitempty"`
}

type rawParam struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Default string `yaml:"default,omitempty"`
	Doc     string `yaml:"doc,omitempty"`
}

type rawEvent struct {
	Name   string     `yaml:"name"`
	Params []rawParam `yaml:"params"`
	Doc    string     `yaml:"doc,omitempty"`
}

// rawOverload is one entry of the "functions" list; several entries may
// share the same Name, forming the sum-type overload set (spec §9).
type rawOverload struct {
	Name       string     `yaml:"name"`
	Returns    string     `yaml:"returns"`
	Params     []rawParam `yaml:"params"`
	Deprecated bool       `yaml:"deprecated,omitempty"`
	Doc        string     `yaml:"doc,omitempty"`
	Wiki       string     `yaml:"wiki,omitempty"`
}

// Load parses a Defs document from r.
func Load(r io.Reader) (*Defs, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("defs: read: %w", err)
	}

	var doc rawDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("defs: parse: %w", err)
	}

	return build(&doc)
}

// LoadFile parses a Defs document from a path on disk.
func LoadFile(path string) (*Defs, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("defs: open %s: %w", path, err)
	}
	defer f.Close()

	return Load(f)
}

// MustLoadEmbedded loads the small built-in LSL definitions document
// embedded in this package. The full registry is normally produced by
// the wiki-scraping definitions-crawler (explicitly out of scope, spec
// §1); this embedded subset exists so the pipeline and CLI have usable
// defaults without that external collaborator.
func MustLoadEmbedded() *Defs {
	f, err := embeddedFS.Open("embedded.yaml")
	if err != nil {
		panic(fmt.Sprintf("defs: embedded document missing: %v", err))
	}
	defer f.Close()

	d, err := Load(f)
	if err != nil {
		panic(fmt.Sprintf("defs: embedded document invalid: %v", err))
	}

	return d
}

func build(doc *rawDoc) (*Defs, error) {
	if doc.Version != "" {
		v, err := semver.NewVersion(doc.Version)
		if err != nil {
			return nil, fmt.Errorf("defs: invalid version %q: %w", doc.Version, err)
		}

		if v.Major() > supportedMajor {
			return nil, fmt.Errorf("defs: document major version %d unsupported (max %d)", v.Major(), supportedMajor)
		}
	}

	d := &Defs{
		Version:   doc.Version,
		Types:     append([]string(nil), doc.Types...),
		Keywords:  append([]string(nil), doc.Keywords...),
		constants: make(map[string]Constant, len(doc.Constants)),
		events:    make(map[string]Event, len(doc.Events)),
		functions: make(map[string]*Function),
		types:     make(map[string]bool, len(doc.Types)),
		keywords:  make(map[string]bool, len(doc.Keywords)),
	}

	for _, t := range doc.Types {
		d.types[t] = true
	}

	for _, k := range doc.Keywords {
		d.keywords[k] = true
	}

	for _, c := range doc.Constants {
		d.constants[c.Name] = Constant{
			Name:       c.Name,
			Type:       c.Type,
			Value:      c.Value,
			Deprecated: c.Deprecated,
			Doc:        c.Doc,
			Wiki:       c.Wiki,
		}
	}

	for _, e := range doc.Events {
		d.events[e.Name] = Event{Name: e.Name, Params: convertParams(e.Params), Doc: e.Doc}
	}

	for _, fn := range doc.Functions {
		entry := d.functions[fn.Name]
		if entry == nil {
			entry = &Function{Name: fn.Name}
			d.functions[fn.Name] = entry
		}

		entry.Overloads = append(entry.Overloads, Overload{
			Returns:    fn.Returns,
			Params:     convertParams(fn.Params),
			Deprecated: fn.Deprecated,
			Doc:        fn.Doc,
			Wiki:       fn.Wiki,
		})
	}

	return d, nil
}

func convertParams(params []rawParam) []Param {
	out := make([]Param, len(params))
	for i, p := range params {
		out[i] = Param{Name: p.Name, Type: p.Type, Default: p.Default, Doc: p.Doc}
	}

	return out
}
