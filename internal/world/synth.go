package world

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/repoheroes/internal/balance"
	"github.com/samdwyer/repoheroes/internal/feature"
	"github.com/samdwyer/repoheroes/internal/gamedata"
	"github.com/samdwyer/repoheroes/internal/seed"
	"github.com/samdwyer/repoheroes/internal/telemetry"
)

// Synthesizer turns a feature summary plus a derived seed stream into a
// complete world. Synthesis is pure given its inputs: the same summary and
// identity always produce the same world, byte for byte.
type Synthesizer struct {
	archetypes *gamedata.ArchetypeRegistry
	names      *gamedata.NameRegistry
	items      *gamedata.ItemRegistry
	cfg        balance.Config
}

// NewSynthesizer creates a synthesizer backed by the embedded gamedata
// tables.
func NewSynthesizer(cfg balance.Config) *Synthesizer {
	return &Synthesizer{
		archetypes: gamedata.MustLoadArchetypeRegistry(),
		names:      gamedata.MustLoadNameRegistry(),
		items:      gamedata.MustLoadItemRegistry(),
		cfg:        cfg,
	}
}

// Synthesize generates the world for a summary. The stream must have been
// derived from the same identity as the summary.
func (s *Synthesizer) Synthesize(ctx context.Context, sum feature.Summary, stream *seed.Stream) (*World, error) {
	tracer := telemetry.Tracer("world")
	_, span := tracer.Start(ctx, "world.synthesize")
	defer span.End()
	startTime := time.Now()

	w := &World{Identity: sum.Identity}

	s.buildRooms(w, sum)
	s.populateEnemies(w, sum, stream)
	s.buildQuests(w, sum, stream)

	if err := w.Index(); err != nil {
		return nil, fmt.Errorf("synthesize %s: %w", sum.Identity, err)
	}
	if !w.Reachable() {
		return nil, fmt.Errorf("synthesize %s: unreachable room in topology", sum.Identity)
	}

	span.SetAttributes(
		attribute.String("world.identity", sum.Identity),
		attribute.Int("world.room_count", len(w.Rooms)),
		attribute.Int("world.enemy_count", len(w.Enemies)),
		attribute.Int("world.quest_count", len(w.Quests)),
		attribute.Int64("world.synthesis_ms", time.Since(startTime).Milliseconds()),
	)
	return w, nil
}

// buildRooms creates the entry hall plus one room per top-level directory,
// or one room per root file when the repository is flat. Containment links
// every room to the entry hall, so the topology is connected by
// construction.
func (s *Synthesizer) buildRooms(w *World, sum feature.Summary) {
	entry := &Room{
		ID:   stableID(sum.Identity, ""),
		Name: "Entry Hall",
	}
	w.Rooms = append(w.Rooms, entry)
	w.EntryRoomID = entry.ID

	zones := make([]string, 0, len(sum.Zones))
	for zone := range sum.Zones {
		if zone == "root" {
			continue
		}
		zones = append(zones, zone)
	}
	sort.Strings(zones)

	if len(zones) == 0 {
		// Flat repository: one room per root file. An empty repository gets
		// just the entry hall, never zero rooms.
		for _, file := range sum.RootFiles {
			room := &Room{
				ID:     stableID(sum.Identity, file),
				Name:   roomName(file),
				Path:   file,
				Danger: s.danger(file, 1, sum),
			}
			w.Rooms = append(w.Rooms, room)
			connect(entry, room)
		}
		return
	}

	for _, zone := range zones {
		room := &Room{
			ID:     stableID(sum.Identity, zone),
			Name:   roomName(zone),
			Path:   zone,
			Danger: s.danger(zone, sum.Zones[zone], sum),
		}
		w.Rooms = append(w.Rooms, room)
		connect(entry, room)
	}
}

// danger rates a room 1..10 from its zone's file count and name.
func (s *Synthesizer) danger(path string, fileCount int, sum feature.Summary) int {
	danger := min(1+fileCount/5, 10)
	lowered := strings.ToLower(path)
	if strings.Contains(lowered, "test") {
		danger += 2
	}
	if strings.Contains(lowered, "doc") {
		danger = max(1, danger-1)
	}
	return min(danger+sum.SizeTier/2, 12)
}

// populateEnemies draws a roster for every room (entry hall included) from
// per-room substreams. Substreams keyed by room path mean one room's roster
// never depends on how many draws another room consumed.
func (s *Synthesizer) populateEnemies(w *World, sum feature.Summary, stream *seed.Stream) {
	tags := enemyTags(sum)

	for _, room := range w.Rooms {
		rs := stream.Sub("room:" + room.Path)

		count := 1
		if limit := min(1+sum.Zones[zoneKey(room, sum)]/5, s.cfg.MaxEnemiesPerRoom); limit > 1 {
			count = rs.IntRange(1, limit)
		}

		for i := 0; i < count; i++ {
			es := stream.Sub(fmt.Sprintf("enemy:%s:%d", room.Path, i))
			enemy := s.spawnEnemy(sum, es, room, i, tags)
			w.Enemies = append(w.Enemies, enemy)
			room.EnemyIDs = append(room.EnemyIDs, enemy.ID)
		}
	}
}

// spawnEnemy creates one room enemy: archetype by tag priority, name from
// the prefix/suffix pools, stats from the archetype base scaled by danger,
// tier, and stars.
func (s *Synthesizer) spawnEnemy(sum feature.Summary, es *seed.Stream, room *Room, ordinal int, tags []string) *Enemy {
	def := s.archetypes.Pick(es, tags)
	danger := max(room.Danger, 1)

	hp := s.cfg.Scale(def.HP+danger*10, sum.SizeTier, sum.Stars)
	attack := s.cfg.Scale(def.Attack+danger, sum.SizeTier, sum.Stars)
	defense := s.cfg.Scale(def.Defense+danger/2, sum.SizeTier, sum.Stars)

	enemy := &Enemy{
		ID:         stableID(sum.Identity, fmt.Sprintf("%s/enemy/%d", room.Path, ordinal)),
		Name:       s.names.Compose(es, tags),
		RoomID:     room.ID,
		Level:      danger + sum.SizeTier,
		HP:         hp,
		MaxHP:      hp,
		Attack:     attack,
		Defense:    defense,
		Rarity:     rarityForDanger(danger),
		Tags:       tags,
		Provenance: fmt.Sprintf("room:%s archetype:%s", room.Path, def.ID),
	}
	enemy.Loot = s.lootTable(sum, es, enemy.MaxHP, tags)
	return enemy
}

// buildQuests maps each issue to a regular quest and each pull request to a
// boss quest gated by a boss enemy. The boss lives in a deterministically
// chosen room as a required encounter.
func (s *Synthesizer) buildQuests(w *World, sum feature.Summary, stream *seed.Stream) {
	tags := enemyTags(sum)

	for _, issue := range sum.Issues {
		qs := stream.Sub(fmt.Sprintf("quest:issue:%d", issue.Number))
		quest := &Quest{
			ID:         stableID(sum.Identity, fmt.Sprintf("quest/issue/%d", issue.Number)),
			Kind:       QuestIssue,
			Number:     issue.Number,
			Title:      issue.Title,
			Difficulty: balance.IssueDifficulty(issue.Comments, issue.Labels),
			Status:     QuestOpen,
			Rewards:    s.rewardTable(sum, qs, 50, tags), // standard tier
		}
		w.Quests = append(w.Quests, quest)
	}

	baseLevel := sum.BaseLevel()
	for _, pr := range sum.Pulls {
		qs := stream.Sub(fmt.Sprintf("quest:pr:%d", pr.Number))
		level := balance.PRBossLevel(baseLevel, pr.Comments, pr.Additions, pr.Deletions)

		boss := &Enemy{
			ID:         stableID(sum.Identity, fmt.Sprintf("boss/pr/%d", pr.Number)),
			Name:       fmt.Sprintf("%s, Herald of PR #%d", s.names.Compose(qs, tags), pr.Number),
			Level:      level,
			HP:         s.cfg.BossStat(s.cfg.Scale(100+level*10, sum.SizeTier, sum.Stars)),
			Attack:     s.cfg.BossStat(s.cfg.Scale(10+level*2, sum.SizeTier, sum.Stars)),
			Defense:    s.cfg.BossStat(s.cfg.Scale(5+level, sum.SizeTier, sum.Stars)),
			Rarity:     balance.RarityLegendary,
			Boss:       true,
			Tags:       tags,
			Provenance: fmt.Sprintf("pr:%d", pr.Number),
		}
		boss.MaxHP = boss.HP
		boss.Loot = s.lootTable(sum, qs, boss.MaxHP, tags)

		// Place the boss in a deterministically drawn room.
		room := w.Rooms[qs.Intn(len(w.Rooms))]
		boss.RoomID = room.ID
		room.EnemyIDs = append(room.EnemyIDs, boss.ID)
		w.Enemies = append(w.Enemies, boss)

		quest := &Quest{
			ID:         stableID(sum.Identity, fmt.Sprintf("quest/pr/%d", pr.Number)),
			Kind:       QuestBoss,
			Number:     pr.Number,
			Title:      pr.Title,
			Difficulty: level,
			Status:     QuestOpen,
			BossID:     boss.ID,
			Rewards:    s.rewardTable(sum, qs, boss.MaxHP, tags),
		}
		w.Quests = append(w.Quests, quest)
	}
}

// lootTable builds 1-3 rarity-weighted drops for an enemy. Stars fatten the
// rare tail; enemy health raises the average rarity.
func (s *Synthesizer) lootTable(sum feature.Summary, es *seed.Stream, enemyHP int, tags []string) []LootItem {
	count := es.IntRange(1, 3)
	table := make([]LootItem, 0, count)
	for i := 0; i < count; i++ {
		table = append(table, s.rollItem(sum, es, enemyHP, tags))
	}
	return table
}

// rewardTable builds quest rewards using the same rarity curve, with the
// tier input standing in for enemy health.
func (s *Synthesizer) rewardTable(sum feature.Summary, qs *seed.Stream, tierHP int, tags []string) []LootItem {
	count := qs.IntRange(1, 2)
	table := make([]LootItem, 0, count)
	for i := 0; i < count; i++ {
		table = append(table, s.rollItem(sum, qs, tierHP, tags))
	}
	return table
}

func (s *Synthesizer) rollItem(sum feature.Summary, es *seed.Stream, enemyHP int, tags []string) LootItem {
	weights := balance.RarityWeights(sum.Stars, enemyHP)
	idx := es.WeightedPick(weights)
	if idx < 0 {
		idx = 0
	}
	rarity := balance.Rarities[idx]

	def := s.items.Pick(es)
	material := s.items.MaterialFor(tags)

	// Higher rarity grants more bonus points, spread over random stats.
	bonuses := map[string]int{}
	points := (idx + 1) * 2
	stats := []string{"hp", "attack", "defense", "luck"}
	for i := 0; i < points; i++ {
		stat := stats[es.Intn(len(stats))]
		bonuses[stat]++
	}

	return LootItem{
		Name:    material + " " + def.Name,
		Slot:    def.Slot,
		Rarity:  rarity,
		Bonuses: bonuses,
	}
}

// enemyTags is the prioritized tag list for archetype and name selection:
// README keyword tags by hit count, then the dominant-language tag.
func enemyTags(sum feature.Summary) []string {
	tags := sum.Tags()
	if sum.LanguageTag != "" {
		found := false
		for _, tag := range tags {
			if tag == sum.LanguageTag {
				found = true
				break
			}
		}
		if !found {
			tags = append(tags, sum.LanguageTag)
		}
	}
	return tags
}

// zoneKey maps a room back to its zone entry in the summary.
func zoneKey(room *Room, sum feature.Summary) string {
	if room.Path == "" {
		return "root"
	}
	if _, ok := sum.Zones[room.Path]; ok {
		return room.Path
	}
	return "root"
}

// roomName prettifies a path segment: "internal" -> "Internal",
// "main.go" -> "Main.go".
func roomName(segment string) string {
	if segment == "" {
		return "Entry Hall"
	}
	return strings.ToUpper(segment[:1]) + segment[1:]
}

func rarityForDanger(danger int) string {
	switch {
	case danger >= 9:
		return balance.RarityEpic
	case danger >= 6:
		return balance.RarityRare
	case danger >= 3:
		return balance.RarityUncommon
	default:
		return balance.RarityCommon
	}
}
