package gamedata

import (
	"errors"

	"github.com/samdwyer/repoheroes/internal/seed"
)

// ArchetypeDef defines an enemy archetype loaded from JSON. Archetypes are
// keyed by tag; the feature extractor's keyword groups and language tags use
// the same vocabulary.
type ArchetypeDef struct {
	ID          string `json:"id"`          // Unique identifier (e.g., "network_spirit")
	Name        string `json:"name"`        // Base display name (e.g., "Network Spirit")
	Tag         string `json:"tag"`         // Tag this archetype belongs to (e.g., "backend")
	HP          int    `json:"hp"`          // Base hit points before scaling
	Attack      int    `json:"attack"`      // Base attack power before scaling
	Defense     int    `json:"defense"`     // Base defense value before scaling
	SpawnWeight int    `json:"spawnWeight"` // Relative spawn frequency (higher = more common)
}

// ArchetypesFile represents the structure of archetypes.json.
type ArchetypesFile struct {
	Archetypes []ArchetypeDef `json:"archetypes"`
}

// ArchetypeRegistry holds loaded archetype definitions grouped by tag.
type ArchetypeRegistry struct {
	byTag map[string][]ArchetypeDef
	all   []ArchetypeDef
}

// NewArchetypeRegistry creates a registry from loaded definitions.
func NewArchetypeRegistry(archetypes []ArchetypeDef) *ArchetypeRegistry {
	registry := &ArchetypeRegistry{
		byTag: make(map[string][]ArchetypeDef),
		all:   archetypes,
	}
	for _, def := range archetypes {
		registry.byTag[def.Tag] = append(registry.byTag[def.Tag], def)
	}
	return registry
}

// LoadArchetypeRegistry loads and creates a registry from the embedded
// archetypes.json.
func LoadArchetypeRegistry() (*ArchetypeRegistry, error) {
	file, err := Load[ArchetypesFile]("archetypes.json")
	if err != nil {
		return nil, err
	}
	if len(file.Archetypes) == 0 {
		return nil, errors.New("no archetypes loaded from archetypes.json")
	}
	return NewArchetypeRegistry(file.Archetypes), nil
}

// MustLoadArchetypeRegistry loads a registry, panicking on error.
func MustLoadArchetypeRegistry() *ArchetypeRegistry {
	registry, err := LoadArchetypeRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// Pick selects an archetype for a prioritized tag list using weighted draws
// from the stream. Tags are tried in order; the first tag with any archetypes
// wins, which keeps tie-breaks explicit. Falls back to the "generic" tag.
func (r *ArchetypeRegistry) Pick(stream *seed.Stream, tags []string) *ArchetypeDef {
	for _, tag := range tags {
		if def := r.pickFromTag(stream, tag); def != nil {
			return def
		}
	}
	return r.pickFromTag(stream, "generic")
}

func (r *ArchetypeRegistry) pickFromTag(stream *seed.Stream, tag string) *ArchetypeDef {
	pool := r.byTag[tag]
	if len(pool) == 0 {
		return nil
	}
	weights := make([]int, len(pool))
	for i, def := range pool {
		weights[i] = def.SpawnWeight
	}
	idx := stream.WeightedPick(weights)
	if idx < 0 {
		idx = 0
	}
	return &pool[idx]
}

// ForTag returns all archetypes registered under a tag.
func (r *ArchetypeRegistry) ForTag(tag string) []ArchetypeDef {
	return r.byTag[tag]
}

// Count returns the number of archetypes in the registry.
func (r *ArchetypeRegistry) Count() int {
	return len(r.all)
}
