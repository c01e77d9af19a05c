package gamedata

import (
	"errors"

	"github.com/samdwyer/repoheroes/internal/seed"
)

// ItemDef defines a loot item archetype loaded from JSON. The final item
// name combines a tag-derived material word with the archetype name.
type ItemDef struct {
	ID   string `json:"id"`   // Unique identifier (e.g., "sword")
	Name string `json:"name"` // Display name stem (e.g., "Sword")
	Slot string `json:"slot"` // Equipment slot (e.g., "weapon")
}

// ItemsFile represents the structure of items.json.
type ItemsFile struct {
	Items []ItemDef `json:"items"`
	// Materials maps a tag to the flavor word prepended to item names
	// ("ai" -> "Neural", producing "Neural Sword").
	Materials map[string]string `json:"materials"`
}

// ItemRegistry holds loaded item archetypes and tag flavor words.
type ItemRegistry struct {
	items     []ItemDef
	materials map[string]string
}

// NewItemRegistry creates a registry from loaded definitions.
func NewItemRegistry(file ItemsFile) *ItemRegistry {
	return &ItemRegistry{items: file.Items, materials: file.Materials}
}

// LoadItemRegistry loads and creates a registry from the embedded items.json.
func LoadItemRegistry() (*ItemRegistry, error) {
	file, err := Load[ItemsFile]("items.json")
	if err != nil {
		return nil, err
	}
	if len(file.Items) == 0 {
		return nil, errors.New("no items loaded from items.json")
	}
	return NewItemRegistry(file), nil
}

// MustLoadItemRegistry loads a registry, panicking on error.
func MustLoadItemRegistry() *ItemRegistry {
	registry, err := LoadItemRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// Pick draws an item archetype from the stream.
func (r *ItemRegistry) Pick(stream *seed.Stream) *ItemDef {
	return &r.items[stream.Intn(len(r.items))]
}

// MaterialFor returns the flavor word for the first tag with one, or the
// generic material.
func (r *ItemRegistry) MaterialFor(tags []string) string {
	for _, tag := range tags {
		if material, ok := r.materials[tag]; ok {
			return material
		}
	}
	if material, ok := r.materials["generic"]; ok {
		return material
	}
	return "Code"
}

// Count returns the number of item archetypes in the registry.
func (r *ItemRegistry) Count() int {
	return len(r.items)
}
