// Package world defines the synthesized game entities and the synthesizer
// that generates them from a repository's feature summary.
package world

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// QuestKind distinguishes regular quests (issues) from boss quests (PRs).
type QuestKind string

const (
	QuestIssue QuestKind = "issue"
	QuestBoss  QuestKind = "boss"
)

// QuestStatus tracks quest progress.
type QuestStatus string

const (
	QuestOpen      QuestStatus = "open"
	QuestCompleted QuestStatus = "completed"
)

// LootItem is a droppable item with stat bonuses. Rarity is one of the
// balance package's rarity tiers.
type LootItem struct {
	Name    string         `json:"name"`
	Slot    string         `json:"slot"`
	Rarity  string         `json:"rarity"`
	Bonuses map[string]int `json:"bonuses"`
}

// Enemy is a synthesized hostile. Provenance records which repository
// feature produced it, which makes determinism regressions debuggable.
type Enemy struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	RoomID     string     `json:"roomId"` // empty for bosses until placed
	Level      int        `json:"level"`
	HP         int        `json:"hp"`
	MaxHP      int        `json:"maxHp"`
	Attack     int        `json:"attack"`
	Defense    int        `json:"defense"`
	Rarity     string     `json:"rarity"`
	Boss       bool       `json:"boss"`
	Tags       []string   `json:"tags"`
	Provenance string     `json:"provenance"`
	Loot       []LootItem `json:"loot"`
	Defeated   bool       `json:"defeated"`
}

// Room is a dungeon room derived from a directory (or file, for flat
// repositories). Connections hold room ids, never pointers: adjacency by id
// keeps the containment graph free of ownership cycles.
type Room struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Path        string   `json:"path"` // source path; empty for the entry hall
	Danger      int      `json:"danger"`
	EnemyIDs    []string `json:"enemyIds"`
	Connections []string `json:"connections"` // sorted room ids
	Cleared     bool     `json:"cleared"`
}

// Quest is derived 1:1 from an issue (regular) or pull request (boss).
// Boss quests reference the boss enemy that must fall before completion.
type Quest struct {
	ID         string      `json:"id"`
	Kind       QuestKind   `json:"kind"`
	Number     int         `json:"number"` // source issue/PR number
	Title      string      `json:"title"`
	Difficulty int         `json:"difficulty"`
	Status     QuestStatus `json:"status"`
	BossID     string      `json:"bossId,omitempty"`
	Rewards    []LootItem  `json:"rewards"`
}

// World is the complete synthesized content for one repository.
type World struct {
	Identity    string   `json:"identity"`
	EntryRoomID string   `json:"entryRoomId"`
	Rooms       []*Room  `json:"rooms"`
	Enemies     []*Enemy `json:"enemies"`
	Quests      []*Quest `json:"quests"`

	roomsByID   map[string]*Room
	enemiesByID map[string]*Enemy
}

// Index (re)builds the id lookup maps. Call after constructing or loading a
// world. Returns an error on duplicate ids, which indicates a bug in id
// derivation rather than a recoverable condition.
func (w *World) Index() error {
	w.roomsByID = make(map[string]*Room, len(w.Rooms))
	for _, room := range w.Rooms {
		if _, dup := w.roomsByID[room.ID]; dup {
			return fmt.Errorf("duplicate room id %s", room.ID)
		}
		w.roomsByID[room.ID] = room
	}
	w.enemiesByID = make(map[string]*Enemy, len(w.Enemies))
	for _, enemy := range w.Enemies {
		if _, dup := w.enemiesByID[enemy.ID]; dup {
			return fmt.Errorf("duplicate enemy id %s", enemy.ID)
		}
		w.enemiesByID[enemy.ID] = enemy
	}
	return nil
}

// Room returns the room with the given id, or nil.
func (w *World) Room(id string) *Room {
	return w.roomsByID[id]
}

// Enemy returns the enemy with the given id, or nil.
func (w *World) Enemy(id string) *Enemy {
	return w.enemiesByID[id]
}

// EntryRoom returns the entry room.
func (w *World) EntryRoom() *Room {
	return w.roomsByID[w.EntryRoomID]
}

// RoomCleared reports whether every enemy assigned to the room is defeated.
func (w *World) RoomCleared(id string) bool {
	room := w.Room(id)
	if room == nil {
		return false
	}
	for _, enemyID := range room.EnemyIDs {
		if enemy := w.Enemy(enemyID); enemy != nil && !enemy.Defeated {
			return false
		}
	}
	return true
}

// Reachable reports whether every room can be reached from the entry room.
func (w *World) Reachable() bool {
	if len(w.Rooms) == 0 {
		return false
	}
	seen := map[string]bool{}
	frontier := []string{w.EntryRoomID}
	for len(frontier) > 0 {
		id := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		if room := w.Room(id); room != nil {
			frontier = append(frontier, room.Connections...)
		}
	}
	return len(seen) == len(w.Rooms)
}

// connect links two rooms bidirectionally, keeping connection lists sorted.
func connect(a, b *Room) {
	a.Connections = insertSorted(a.Connections, b.ID)
	b.Connections = insertSorted(b.Connections, a.ID)
}

func insertSorted(ids []string, id string) []string {
	i := sort.SearchStrings(ids, id)
	if i < len(ids) && ids[i] == id {
		return ids
	}
	ids = append(ids, "")
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}

// stableID derives a room or enemy id from the repository identity and a
// stable path-like key. xxhash keeps ids short and collision-resistant
// enough for a single repository's namespace.
func stableID(identity, key string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(identity+"/"+key))
}
