// Package storage persists synthesized worlds and player progress in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/samdwyer/repoheroes/internal/player"
	"github.com/samdwyer/repoheroes/internal/storage/migrations"
	"github.com/samdwyer/repoheroes/internal/world"
)

// ErrNotFound is returned when no record exists for the requested key.
var ErrNotFound = errors.New("storage: not found")

// Store persists worlds and players in a single SQLite database.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (or creates) the database at path and applies embedded
// migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveWorld writes the complete world in one transaction, replacing any
// previous record for the same repository.
func (s *Store) SaveWorld(ctx context.Context, w *world.World) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w == nil || w.Identity == "" {
		return fmt.Errorf("world identity is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save world: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"quests", "enemies", "rooms", "worlds"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE identity = ?", w.Identity); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO worlds (identity, entry_room_id, created_at) VALUES (?, ?, ?)`,
		w.Identity, w.EntryRoomID, time.Now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("insert world: %w", err)
	}

	for i, room := range w.Rooms {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rooms (identity, id, ord, name, path, danger, enemy_ids, connections, cleared)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			w.Identity, room.ID, i, room.Name, room.Path, room.Danger,
			mustJSON(room.EnemyIDs), mustJSON(room.Connections), boolInt(room.Cleared),
		); err != nil {
			return fmt.Errorf("insert room %s: %w", room.ID, err)
		}
	}

	for i, enemy := range w.Enemies {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO enemies (identity, id, ord, name, room_id, level, hp, max_hp,
			                      attack, defense, rarity, boss, tags, provenance, loot, defeated)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			w.Identity, enemy.ID, i, enemy.Name, enemy.RoomID, enemy.Level, enemy.HP, enemy.MaxHP,
			enemy.Attack, enemy.Defense, enemy.Rarity, boolInt(enemy.Boss),
			mustJSON(enemy.Tags), enemy.Provenance, mustJSON(enemy.Loot), boolInt(enemy.Defeated),
		); err != nil {
			return fmt.Errorf("insert enemy %s: %w", enemy.ID, err)
		}
	}

	for i, quest := range w.Quests {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO quests (identity, id, ord, kind, number, title, difficulty, status, boss_id, rewards)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			w.Identity, quest.ID, i, string(quest.Kind), quest.Number, quest.Title,
			quest.Difficulty, string(quest.Status), quest.BossID, mustJSON(quest.Rewards),
		); err != nil {
			return fmt.Errorf("insert quest %s: %w", quest.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save world: %w", err)
	}
	return nil
}

// LoadWorld reads the world for a repository identity. Returns ErrNotFound
// when the repository has never been saved.
func (s *Store) LoadWorld(ctx context.Context, identity string) (*world.World, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w := &world.World{Identity: identity}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT entry_room_id FROM worlds WHERE identity = ?`, identity)
	if err := row.Scan(&w.EntryRoomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load world: %w", err)
	}

	if err := s.loadRooms(ctx, w); err != nil {
		return nil, err
	}
	if err := s.loadEnemies(ctx, w); err != nil {
		return nil, err
	}
	if err := s.loadQuests(ctx, w); err != nil {
		return nil, err
	}
	if err := w.Index(); err != nil {
		return nil, fmt.Errorf("index loaded world: %w", err)
	}
	return w, nil
}

func (s *Store) loadRooms(ctx context.Context, w *world.World) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, path, danger, enemy_ids, connections, cleared
		   FROM rooms WHERE identity = ? ORDER BY ord`, w.Identity)
	if err != nil {
		return fmt.Errorf("load rooms: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		room := &world.Room{}
		var enemyIDs, connections string
		var cleared int
		if err := rows.Scan(&room.ID, &room.Name, &room.Path, &room.Danger,
			&enemyIDs, &connections, &cleared); err != nil {
			return fmt.Errorf("scan room: %w", err)
		}
		if err := fromJSON(enemyIDs, &room.EnemyIDs); err != nil {
			return fmt.Errorf("decode room %s enemy ids: %w", room.ID, err)
		}
		if err := fromJSON(connections, &room.Connections); err != nil {
			return fmt.Errorf("decode room %s connections: %w", room.ID, err)
		}
		room.Cleared = cleared != 0
		w.Rooms = append(w.Rooms, room)
	}
	return rows.Err()
}

func (s *Store) loadEnemies(ctx context.Context, w *world.World) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, room_id, level, hp, max_hp, attack, defense,
		        rarity, boss, tags, provenance, loot, defeated
		   FROM enemies WHERE identity = ? ORDER BY ord`, w.Identity)
	if err != nil {
		return fmt.Errorf("load enemies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		enemy := &world.Enemy{}
		var tags, loot string
		var boss, defeated int
		if err := rows.Scan(&enemy.ID, &enemy.Name, &enemy.RoomID, &enemy.Level,
			&enemy.HP, &enemy.MaxHP, &enemy.Attack, &enemy.Defense,
			&enemy.Rarity, &boss, &tags, &enemy.Provenance, &loot, &defeated); err != nil {
			return fmt.Errorf("scan enemy: %w", err)
		}
		if err := fromJSON(tags, &enemy.Tags); err != nil {
			return fmt.Errorf("decode enemy %s tags: %w", enemy.ID, err)
		}
		if err := fromJSON(loot, &enemy.Loot); err != nil {
			return fmt.Errorf("decode enemy %s loot: %w", enemy.ID, err)
		}
		enemy.Boss = boss != 0
		enemy.Defeated = defeated != 0
		w.Enemies = append(w.Enemies, enemy)
	}
	return rows.Err()
}

func (s *Store) loadQuests(ctx context.Context, w *world.World) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, kind, number, title, difficulty, status, boss_id, rewards
		   FROM quests WHERE identity = ? ORDER BY ord`, w.Identity)
	if err != nil {
		return fmt.Errorf("load quests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		quest := &world.Quest{}
		var kind, status, rewards string
		if err := rows.Scan(&quest.ID, &kind, &quest.Number, &quest.Title,
			&quest.Difficulty, &status, &quest.BossID, &rewards); err != nil {
			return fmt.Errorf("scan quest: %w", err)
		}
		if err := fromJSON(rewards, &quest.Rewards); err != nil {
			return fmt.Errorf("decode quest %s rewards: %w", quest.ID, err)
		}
		quest.Kind = world.QuestKind(kind)
		quest.Status = world.QuestStatus(status)
		w.Quests = append(w.Quests, quest)
	}
	return rows.Err()
}

// MarkRoomCleared flags a room as cleared.
func (s *Store) MarkRoomCleared(ctx context.Context, identity, roomID string) error {
	return s.updateFlag(ctx, "UPDATE rooms SET cleared = 1 WHERE identity = ? AND id = ?", identity, roomID)
}

// MarkEnemyDefeated flags an enemy as defeated.
func (s *Store) MarkEnemyDefeated(ctx context.Context, identity, enemyID string) error {
	return s.updateFlag(ctx, "UPDATE enemies SET defeated = 1 WHERE identity = ? AND id = ?", identity, enemyID)
}

// CompleteQuest marks a quest completed.
func (s *Store) CompleteQuest(ctx context.Context, identity, questID string) error {
	return s.updateFlag(ctx,
		"UPDATE quests SET status = '"+string(world.QuestCompleted)+"' WHERE identity = ? AND id = ?",
		identity, questID)
}

func (s *Store) updateFlag(ctx context.Context, query, identity, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, query, identity, id)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SavePlayer upserts a player record keyed by name.
func (s *Store) SavePlayer(ctx context.Context, p *player.Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO players (name, level, xp, hp, attack, defense, luck, inventory, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET
		   level = excluded.level, xp = excluded.xp, hp = excluded.hp,
		   attack = excluded.attack, defense = excluded.defense, luck = excluded.luck,
		   inventory = excluded.inventory, updated_at = excluded.updated_at`,
		p.Name, p.Level, p.XP, p.HP, p.Attack, p.Defense, p.Luck,
		mustJSON(p.Inventory), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save player: %w", err)
	}
	return nil
}

// LoadPlayer reads a player by name. Returns ErrNotFound for unknown names.
func (s *Store) LoadPlayer(ctx context.Context, name string) (*player.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT name, level, xp, hp, attack, defense, luck, inventory
		   FROM players WHERE name = ?`, name)

	p := &player.Player{}
	var inventory string
	err := row.Scan(&p.Name, &p.Level, &p.XP, &p.HP, &p.Attack, &p.Defense, &p.Luck, &inventory)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load player: %w", err)
	}
	if err := fromJSON(inventory, &p.Inventory); err != nil {
		return nil, fmt.Errorf("decode player inventory: %w", err)
	}
	return p, nil
}

// mustJSON encodes slice columns. The world and player types contain only
// JSON-encodable fields, so a failure indicates a programming error.
func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("storage: encode column: %v", err))
	}
	return string(data)
}

// boolInt stores booleans as SQLite integers (0 or 1).
func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func fromJSON(data string, v any) error {
	if data == "" || data == "null" {
		return nil
	}
	return json.Unmarshal([]byte(data), v)
}
