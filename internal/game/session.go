// Package game orchestrates a play session: fetching repository snapshots,
// synthesizing or loading worlds, and running encounters against the
// persisted player.
package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/repoheroes/internal/combat"
	"github.com/samdwyer/repoheroes/internal/config"
	"github.com/samdwyer/repoheroes/internal/feature"
	"github.com/samdwyer/repoheroes/internal/player"
	"github.com/samdwyer/repoheroes/internal/seed"
	"github.com/samdwyer/repoheroes/internal/snapshot"
	"github.com/samdwyer/repoheroes/internal/storage"
	"github.com/samdwyer/repoheroes/internal/telemetry"
	"github.com/samdwyer/repoheroes/internal/world"
)

// Errors returned by session operations.
var (
	ErrNoWorld         = errors.New("no world loaded")
	ErrNoPlayer        = errors.New("no player loaded")
	ErrEncounterActive = errors.New("an encounter is already active")
	ErrNoEncounter     = errors.New("no such encounter")
	ErrEnemyDefeated   = errors.New("enemy is already defeated")
	ErrEnemyElsewhere  = errors.New("enemy is not in that room")
	ErrQuestDone       = errors.New("quest is already completed")
	ErrBossAlive       = errors.New("boss quest completes only when its boss falls")
)

// Fetcher produces repository snapshots. Satisfied by snapshot.Client;
// tests substitute a stub.
type Fetcher interface {
	Fetch(ctx context.Context, owner, name string) (*snapshot.Snapshot, error)
}

// Session ties one player to one loaded world and runs encounters. Not safe
// for concurrent use; a session serves a single player.
type Session struct {
	cfg     config.Config
	store   *storage.Store
	fetcher Fetcher
	synth   *world.Synthesizer

	world  *world.World
	player *player.Player

	active   *combat.Encounter
	activeID string
	enemyID  string
	roomID   string
	attempts map[string]int
}

// NewSession wires a session from its dependencies. The store is required;
// the fetcher may be nil for cache-only (offline) play.
func NewSession(cfg config.Config, store *storage.Store, fetcher Fetcher) *Session {
	return &Session{
		cfg:      cfg,
		store:    store,
		fetcher:  fetcher,
		synth:    world.NewSynthesizer(cfg.Balance),
		attempts: map[string]int{},
	}
}

// World returns the loaded world, or nil.
func (s *Session) World() *world.World {
	return s.world
}

// Player returns the loaded player, or nil.
func (s *Session) Player() *player.Player {
	return s.player
}

// LoadPlayer loads the named player, creating a fresh level-1 record on
// first play.
func (s *Session) LoadPlayer(ctx context.Context, name string) error {
	p, err := s.store.LoadPlayer(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		p = player.New(name)
		if err := s.store.SavePlayer(ctx, p); err != nil {
			return fmt.Errorf("create player: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("load player: %w", err)
	}
	s.player = p
	return nil
}

// EnterWorld loads the saved world for owner/name, or fetches the
// repository and synthesizes a new one. refresh forces re-synthesis even
// when a saved world exists; progress flags in the old world are discarded.
func (s *Session) EnterWorld(ctx context.Context, owner, name string, refresh bool) error {
	tracer := telemetry.Tracer("game")
	ctx, span := tracer.Start(ctx, "game.enter_world")
	defer span.End()

	identity := owner + "/" + name
	span.SetAttributes(attribute.String("repo", identity), attribute.Bool("refresh", refresh))

	if !refresh {
		w, err := s.store.LoadWorld(ctx, identity)
		if err == nil {
			s.world = w
			span.SetAttributes(attribute.Bool("cached", true))
			return nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("load world: %w", err)
		}
	}

	if s.fetcher == nil {
		return fmt.Errorf("no saved world for %s and no fetcher configured", identity)
	}
	snap, err := s.fetcher.Fetch(ctx, owner, name)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", identity, err)
	}

	sum := feature.Extract(snap)
	w, err := s.synth.Synthesize(ctx, sum, seed.Derive(identity))
	if err != nil {
		return fmt.Errorf("synthesize world: %w", err)
	}
	if err := s.store.SaveWorld(ctx, w); err != nil {
		return fmt.Errorf("save world: %w", err)
	}

	s.world = w
	span.SetAttributes(
		attribute.Bool("cached", false),
		attribute.Int("world.rooms", len(w.Rooms)),
		attribute.Int("world.enemies", len(w.Enemies)),
		attribute.Int("world.quests", len(w.Quests)),
	)
	return nil
}

// StartEncounter begins a fight with an enemy standing in the given room.
// Returns the encounter id used for submitting actions. Only one encounter
// may be active at a time.
func (s *Session) StartEncounter(ctx context.Context, roomID, enemyID string) (string, error) {
	if s.world == nil {
		return "", ErrNoWorld
	}
	if s.player == nil {
		return "", ErrNoPlayer
	}
	if s.active != nil {
		return "", ErrEncounterActive
	}

	room := s.world.Room(roomID)
	if room == nil {
		return "", fmt.Errorf("unknown room %s", roomID)
	}
	enemy := s.world.Enemy(enemyID)
	if enemy == nil {
		return "", fmt.Errorf("unknown enemy %s", enemyID)
	}
	if enemy.RoomID != roomID {
		return "", fmt.Errorf("%w: %s", ErrEnemyElsewhere, enemyID)
	}
	if enemy.Defeated {
		return "", fmt.Errorf("%w: %s", ErrEnemyDefeated, enemyID)
	}

	// The decision stream is keyed by enemy and attempt count, so replaying
	// the same fight sequence reproduces the same rolls.
	s.attempts[enemyID]++
	decisions := seed.Derive(s.world.Identity).
		Sub(fmt.Sprintf("fight:%s:%d", enemyID, s.attempts[enemyID]))

	playerStats := combat.Stats{
		Name:    s.player.Name,
		HP:      s.player.HP,
		MaxHP:   s.player.MaxHP(),
		Attack:  s.player.EffectiveAttack(),
		Defense: s.player.EffectiveDefense(),
	}
	enemyStats := combat.Stats{
		Name:    enemy.Name,
		HP:      enemy.HP,
		MaxHP:   enemy.MaxHP,
		Attack:  enemy.Attack,
		Defense: enemy.Defense,
	}

	s.active = combat.New(playerStats, enemyStats, decisions)
	s.activeID = uuid.NewString()
	s.enemyID = enemyID
	s.roomID = roomID

	tracer := telemetry.Tracer("game")
	_, span := tracer.Start(ctx, "game.encounter_start")
	span.SetAttributes(
		attribute.String("encounter.id", s.activeID),
		attribute.String("enemy.name", enemy.Name),
		attribute.Int("enemy.level", enemy.Level),
		attribute.Bool("enemy.boss", enemy.Boss),
	)
	span.End()

	return s.activeID, nil
}

// SubmitAction resolves one turn of the active encounter and applies any
// terminal outcome to the player and world.
func (s *Session) SubmitAction(ctx context.Context, encounterID string, action combat.Action) (combat.Result, error) {
	if s.active == nil || encounterID != s.activeID {
		return combat.Result{}, fmt.Errorf("%w: %s", ErrNoEncounter, encounterID)
	}

	result, err := s.active.Submit(action)
	if err != nil {
		return combat.Result{}, err
	}
	if !result.State.Terminal() {
		return result, nil
	}

	tracer := telemetry.Tracer("game")
	ctx, span := tracer.Start(ctx, "game.encounter_end")
	span.SetAttributes(
		attribute.String("encounter.id", encounterID),
		attribute.String("outcome", string(result.State)),
		attribute.Int("turns", result.Turn),
	)
	defer span.End()

	if err := s.settle(ctx, result); err != nil {
		return result, err
	}
	s.active = nil
	s.activeID = ""
	return result, nil
}

// settle applies a terminal encounter outcome: XP, loot, defeat penalties,
// room clears, and boss quest completion.
func (s *Session) settle(ctx context.Context, result combat.Result) error {
	enemy := s.world.Enemy(s.enemyID)
	s.player.HP = result.PlayerHP

	switch result.State {
	case combat.StatePlayerVictory:
		enemy.Defeated = true
		enemy.HP = 0
		if err := s.store.MarkEnemyDefeated(ctx, s.world.Identity, enemy.ID); err != nil {
			return fmt.Errorf("persist defeat of %s: %w", enemy.ID, err)
		}
		s.player.AwardXP(combat.XPReward(enemy.Level, enemy.Boss))
		for _, item := range enemy.Loot {
			if !s.player.AddLoot(item) {
				break
			}
		}
		if s.world.RoomCleared(s.roomID) {
			s.world.Room(s.roomID).Cleared = true
			if err := s.store.MarkRoomCleared(ctx, s.world.Identity, s.roomID); err != nil {
				return fmt.Errorf("persist room clear: %w", err)
			}
		}
		if enemy.Boss {
			if err := s.completeBossQuests(ctx, enemy.ID); err != nil {
				return err
			}
		}

	case combat.StateEnemyVictory:
		s.player.ApplyDefeat()

	case combat.StatePlayerFled:
		// HP already synced; nothing else changes hands.
	}

	if err := s.store.SavePlayer(ctx, s.player); err != nil {
		return fmt.Errorf("save player: %w", err)
	}
	return nil
}

func (s *Session) completeBossQuests(ctx context.Context, bossID string) error {
	for _, quest := range s.world.Quests {
		if quest.BossID != bossID || quest.Status == world.QuestCompleted {
			continue
		}
		quest.Status = world.QuestCompleted
		if err := s.store.CompleteQuest(ctx, s.world.Identity, quest.ID); err != nil {
			return fmt.Errorf("persist quest %s: %w", quest.ID, err)
		}
		for _, item := range quest.Rewards {
			if !s.player.AddLoot(item) {
				break
			}
		}
	}
	return nil
}

// CompleteQuest turns in a regular quest, granting its rewards and XP
// proportional to difficulty. Boss quests cannot be turned in directly;
// they complete when their boss is defeated.
func (s *Session) CompleteQuest(ctx context.Context, questID string) error {
	if s.world == nil {
		return ErrNoWorld
	}
	if s.player == nil {
		return ErrNoPlayer
	}

	var quest *world.Quest
	for _, q := range s.world.Quests {
		if q.ID == questID {
			quest = q
			break
		}
	}
	if quest == nil {
		return fmt.Errorf("unknown quest %s", questID)
	}
	if quest.Status == world.QuestCompleted {
		return fmt.Errorf("%w: %s", ErrQuestDone, questID)
	}
	if quest.Kind == world.QuestBoss {
		if boss := s.world.Enemy(quest.BossID); boss != nil && !boss.Defeated {
			return fmt.Errorf("%w: %s", ErrBossAlive, questID)
		}
	}

	quest.Status = world.QuestCompleted
	if err := s.store.CompleteQuest(ctx, s.world.Identity, quest.ID); err != nil {
		return fmt.Errorf("persist quest %s: %w", quest.ID, err)
	}
	s.player.AwardXP(quest.Difficulty * 10)
	for _, item := range quest.Rewards {
		if !s.player.AddLoot(item) {
			break
		}
	}
	if err := s.store.SavePlayer(ctx, s.player); err != nil {
		return fmt.Errorf("save player: %w", err)
	}
	return nil
}

// Rest heals the player to full outside combat.
func (s *Session) Rest(ctx context.Context) error {
	if s.player == nil {
		return ErrNoPlayer
	}
	if s.active != nil {
		return ErrEncounterActive
	}
	s.player.Heal()
	if err := s.store.SavePlayer(ctx, s.player); err != nil {
		return fmt.Errorf("save player: %w", err)
	}
	return nil
}
