package gamedata

import (
	"testing"

	"github.com/samdwyer/repoheroes/internal/seed"
)

func TestLoadArchetypeRegistry(t *testing.T) {
	registry := MustLoadArchetypeRegistry()

	if registry.Count() == 0 {
		t.Fatal("no archetypes loaded")
	}
	if len(registry.ForTag("generic")) == 0 {
		t.Error("generic tag must have archetypes as the universal fallback")
	}
	for _, tag := range []string{"web", "backend", "cli", "scraping", "ai"} {
		if len(registry.ForTag(tag)) == 0 {
			t.Errorf("tag %q has no archetypes", tag)
		}
	}
}

func TestArchetypePickPriority(t *testing.T) {
	registry := MustLoadArchetypeRegistry()
	stream := seed.Derive("pick-priority")

	// First tag with archetypes wins.
	def := registry.Pick(stream, []string{"no-such-tag", "ai", "web"})
	if def == nil {
		t.Fatal("Pick returned nil")
	}
	if def.Tag != "ai" {
		t.Errorf("expected ai archetype, got tag %q", def.Tag)
	}
}

func TestArchetypePickFallsBackToGeneric(t *testing.T) {
	registry := MustLoadArchetypeRegistry()
	stream := seed.Derive("pick-generic")

	def := registry.Pick(stream, nil)
	if def == nil {
		t.Fatal("Pick returned nil")
	}
	if def.Tag != "generic" {
		t.Errorf("expected generic fallback, got tag %q", def.Tag)
	}
}

func TestNameComposeDeterministic(t *testing.T) {
	registry := MustLoadNameRegistry()

	a := registry.Compose(seed.Derive("name-test"), []string{"backend"})
	b := registry.Compose(seed.Derive("name-test"), []string{"backend"})
	if a != b {
		t.Errorf("same stream produced different names: %q != %q", a, b)
	}
	if a == " " || len(a) < 3 {
		t.Errorf("implausible name %q", a)
	}
}

func TestNameComposeNoTags(t *testing.T) {
	registry := MustLoadNameRegistry()
	name := registry.Compose(seed.Derive("name-no-tags"), nil)
	if name == "" || name == " " {
		t.Errorf("empty name for tagless repository: %q", name)
	}
}

func TestItemRegistry(t *testing.T) {
	registry := MustLoadItemRegistry()

	if registry.Count() == 0 {
		t.Fatal("no items loaded")
	}
	def := registry.Pick(seed.Derive("item-test"))
	if def.Name == "" || def.Slot == "" {
		t.Errorf("incomplete item def: %+v", def)
	}

	if got := registry.MaterialFor([]string{"ai"}); got != "Neural" {
		t.Errorf("MaterialFor(ai) = %q, want Neural", got)
	}
	if got := registry.MaterialFor(nil); got != "Code" {
		t.Errorf("MaterialFor(nil) = %q, want Code", got)
	}
}
