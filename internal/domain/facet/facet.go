// Package facet holds the prompt modes that shape assistant behaviour.
package facet

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/alfred/backend/internal/domain/shared"
	"gopkg.in/yaml.v3"
)

// Facet identifiers
const (
	Builder  = "builder"
	Mentor   = "mentor"
	Reviewer = "reviewer"
)

// Default is used when a conversation has no facet
const Default = Builder

//go:embed facets.yaml
var defaultCatalogue []byte

// ErrUnknownFacet is returned for facet names outside the catalogue
var ErrUnknownFacet = shared.NewDomainError("UNKNOWN_FACET", "Facet must be one of builder, mentor, reviewer")

// Facet is a prompt-engineering mode
type Facet struct {
	ID          string `yaml:"id" json:"id"`
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description" json:"description"`
	Prompt      string `yaml:"prompt" json:"-"`
}

// Catalogue is the set of available facets plus the shared base prompt
type Catalogue struct {
	Base   string  `yaml:"base"`
	Facets []Facet `yaml:"facets"`
	byID   map[string]Facet
}

// Persona is the subset of a persona that feeds the system prompt
type Persona struct {
	Name         string
	SystemPrompt string
}

// Parse loads a catalogue from YAML
func Parse(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("facet: parse catalogue: %w", err)
	}
	if len(c.Facets) == 0 {
		return nil, fmt.Errorf("facet: catalogue has no facets")
	}
	c.byID = make(map[string]Facet, len(c.Facets))
	for _, f := range c.Facets {
		if f.ID == "" {
			return nil, fmt.Errorf("facet: entry without id")
		}
		if _, dup := c.byID[f.ID]; dup {
			return nil, fmt.Errorf("facet: duplicate id %q", f.ID)
		}
		c.byID[f.ID] = f
	}
	return &c, nil
}

// MustDefault returns the embedded catalogue
func MustDefault() *Catalogue {
	c, err := Parse(defaultCatalogue)
	if err != nil {
		panic(err)
	}
	return c
}

// List returns facets in catalogue order
func (c *Catalogue) List() []Facet {
	out := make([]Facet, len(c.Facets))
	copy(out, c.Facets)
	return out
}

// Resolve normalizes a facet name. Empty resolves to the default.
func (c *Catalogue) Resolve(id string) (string, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return Default, nil
	}
	if _, ok := c.byID[id]; !ok {
		return "", ErrUnknownFacet
	}
	return id, nil
}

// Get returns a facet by id
func (c *Catalogue) Get(id string) (Facet, bool) {
	f, ok := c.byID[id]
	return f, ok
}

// Compose builds the system prompt: base, then facet, then persona
func (c *Catalogue) Compose(facetID string, persona *Persona) (string, error) {
	id, err := c.Resolve(facetID)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(strings.TrimSpace(c.Base))
	b.WriteString("\n\n")
	b.WriteString(strings.TrimSpace(c.byID[id].Prompt))
	if persona != nil && strings.TrimSpace(persona.SystemPrompt) != "" {
		b.WriteString("\n\n")
		if persona.Name != "" {
			fmt.Fprintf(&b, "Persona: %s\n", persona.Name)
		}
		b.WriteString(strings.TrimSpace(persona.SystemPrompt))
	}
	return b.String(), nil
}
