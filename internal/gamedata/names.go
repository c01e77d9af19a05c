package gamedata

import (
	"errors"

	"github.com/samdwyer/repoheroes/internal/seed"
)

// themedChance is the probability of drawing from a themed pool when the
// repository has active tags; the remainder comes from the generic pool so
// names never feel fully templated.
const themedChance = 0.7

// NamesFile represents the structure of names.json: prefix and suffix pools
// keyed by tag, with a "generic" pool as the universal fallback.
type NamesFile struct {
	Prefixes map[string][]string `json:"prefixes"`
	Suffixes map[string][]string `json:"suffixes"`
}

// NameRegistry composes enemy names from tag-themed prefix/suffix pools.
type NameRegistry struct {
	prefixes map[string][]string
	suffixes map[string][]string
}

// NewNameRegistry creates a registry from loaded pools.
func NewNameRegistry(file NamesFile) *NameRegistry {
	return &NameRegistry{prefixes: file.Prefixes, suffixes: file.Suffixes}
}

// LoadNameRegistry loads and creates a registry from the embedded names.json.
func LoadNameRegistry() (*NameRegistry, error) {
	file, err := Load[NamesFile]("names.json")
	if err != nil {
		return nil, err
	}
	if len(file.Prefixes["generic"]) == 0 || len(file.Suffixes["generic"]) == 0 {
		return nil, errors.New("names.json must define generic prefix and suffix pools")
	}
	return NewNameRegistry(file), nil
}

// MustLoadNameRegistry loads a registry, panicking on error.
func MustLoadNameRegistry() *NameRegistry {
	registry, err := LoadNameRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// Compose builds a "Prefix Suffix" name from the stream and the prioritized
// tag list. The same stream state and tags always produce the same name.
func (r *NameRegistry) Compose(stream *seed.Stream, tags []string) string {
	prefix := r.draw(stream, r.prefixes, tags)
	suffix := r.draw(stream, r.suffixes, tags)
	return prefix + " " + suffix
}

// draw picks from the first tag with a themed pool at themedChance, falling
// back to the generic pool otherwise.
func (r *NameRegistry) draw(stream *seed.Stream, pools map[string][]string, tags []string) string {
	var themed []string
	for _, tag := range tags {
		if pool := pools[tag]; len(pool) > 0 {
			themed = pool
			break
		}
	}
	generic := pools["generic"]

	if len(themed) > 0 && stream.Float64() < themedChance {
		return stream.Pick(themed)
	}
	return stream.Pick(generic)
}
