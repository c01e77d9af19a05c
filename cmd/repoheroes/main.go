// Package main is the entry point for RepoHeroes, a dungeon crawler whose
// worlds are generated from GitHub repositories.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/samdwyer/repoheroes/internal/combat"
	"github.com/samdwyer/repoheroes/internal/config"
	"github.com/samdwyer/repoheroes/internal/game"
	"github.com/samdwyer/repoheroes/internal/snapshot"
	"github.com/samdwyer/repoheroes/internal/storage"
	"github.com/samdwyer/repoheroes/internal/telemetry"
	"github.com/samdwyer/repoheroes/internal/world"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: .env file not loaded: %v", err)
	}
	setupOTelEnv()

	var (
		repo    string
		dbPath  string
		refresh bool
		offline bool
	)
	flag.StringVar(&repo, "repo", "", "repository to explore, as owner/name (required)")
	flag.StringVar(&dbPath, "db", "", "sqlite database path (default: RH_DB_PATH or repoheroes.db)")
	flag.BoolVar(&refresh, "refresh", false, "refetch the repository and regenerate its world, discarding progress")
	flag.BoolVar(&offline, "offline", false, "play only from saved worlds, never touching the network")
	flag.Parse()

	owner, name, ok := splitRepo(repo)
	if !ok {
		fmt.Fprintln(os.Stderr, "usage: repoheroes -repo owner/name [-refresh] [-offline]")
		os.Exit(2)
	}

	ctx := context.Background()

	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		log.Printf("Warning: telemetry setup failed: %v", err)
	} else {
		defer func() {
			if err := shutdown(ctx); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", cfg.DBPath, err)
	}
	defer store.Close()

	var fetcher game.Fetcher
	if !offline {
		fetcher = snapshot.NewClient(cfg.GitHubBaseURL, cfg.GitHubToken)
	}

	session := game.NewSession(cfg, store, fetcher)
	if err := session.LoadPlayer(ctx, cfg.PlayerName); err != nil {
		log.Fatalf("Failed to load player: %v", err)
	}
	if err := session.EnterWorld(ctx, owner, name, refresh); err != nil {
		exitForFetchError(repo, err)
	}

	if err := runREPL(ctx, session); err != nil {
		log.Fatalf("Game error: %v", err)
	}
}

func splitRepo(repo string) (owner, name string, ok bool) {
	owner, name, found := strings.Cut(strings.TrimSpace(repo), "/")
	if !found || owner == "" || name == "" {
		return "", "", false
	}
	return owner, name, true
}

// exitForFetchError prints a distinct message per failure kind so users can
// tell a typo from a rate limit.
func exitForFetchError(repo string, err error) {
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		log.Fatalf("Repository %s not found (private repos need GITHUB_TOKEN)", repo)
	case errors.Is(err, snapshot.ErrRateLimited):
		log.Fatalf("GitHub rate limit hit; set GITHUB_TOKEN or wait and retry")
	default:
		log.Fatalf("Failed to enter %s: %v", repo, err)
	}
}

// setupOTelEnv configures OTEL environment variables from our custom env vars.
func setupOTelEnv() {
	os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://api.honeycomb.io")

	apiKey := os.Getenv("HONEYCOMB_REPOHEROES_API_KEY")
	dataset := os.Getenv("HONEYCOMB_REPOHEROES_DATASET")
	if dataset == "" {
		dataset = "repoheroes"
	}
	if apiKey != "" {
		os.Setenv("OTEL_EXPORTER_OTLP_HEADERS",
			fmt.Sprintf("x-honeycomb-team=%s,x-honeycomb-dataset=%s", apiKey, dataset))
	}
}

// repl holds the interactive loop's cursor state.
type repl struct {
	session     *game.Session
	roomID      string
	encounterID string
}

func runREPL(ctx context.Context, session *game.Session) error {
	r := &repl{session: session, roomID: session.World().EntryRoomID}

	w := session.World()
	p := session.Player()
	fmt.Printf("\nWelcome to %s: %d rooms, %d enemies, %d quests.\n",
		w.Identity, len(w.Rooms), len(w.Enemies), len(w.Quests))
	fmt.Printf("%s the hero, level %d (%d/%d HP). Type 'help' for commands.\n\n",
		p.Name, p.Level, p.HP, p.MaxHP())
	r.look()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			fmt.Println("Farewell.")
			return nil
		}
		if err := r.dispatch(ctx, fields); err != nil {
			fmt.Printf("%v\n", err)
		}
	}
}

func (r *repl) dispatch(ctx context.Context, fields []string) error {
	cmd, args := fields[0], fields[1:]

	if r.encounterID != "" {
		switch cmd {
		case "attack", "defend", "flee":
			return r.turn(ctx, combat.Action(cmd))
		default:
			return fmt.Errorf("you are in combat: attack, defend, or flee")
		}
	}

	switch cmd {
	case "help":
		fmt.Println("look            describe the current room")
		fmt.Println("map             list all rooms")
		fmt.Println("go <n>          move to connected room n")
		fmt.Println("fight <n>       engage enemy n in this room")
		fmt.Println("quests          list quests")
		fmt.Println("complete <n>    turn in quest n")
		fmt.Println("stats           show your hero")
		fmt.Println("rest            heal to full")
		fmt.Println("quit            leave the dungeon")
		return nil
	case "look":
		r.look()
		return nil
	case "map":
		r.printMap()
		return nil
	case "go":
		return r.move(args)
	case "fight":
		return r.fight(ctx, args)
	case "quests":
		r.printQuests()
		return nil
	case "complete":
		return r.complete(ctx, args)
	case "stats":
		r.printStats()
		return nil
	case "rest":
		if err := r.session.Rest(ctx); err != nil {
			return err
		}
		fmt.Printf("You rest. HP restored to %d.\n", r.session.Player().HP)
		return nil
	default:
		return fmt.Errorf("unknown command %q (try 'help')", cmd)
	}
}

func (r *repl) look() {
	w := r.session.World()
	room := w.Room(r.roomID)
	fmt.Printf("-- %s (danger %d)%s\n", room.Name, room.Danger, clearedSuffix(room))
	for i, id := range room.Connections {
		fmt.Printf("   exit %d: %s\n", i+1, w.Room(id).Name)
	}
	for i, id := range room.EnemyIDs {
		enemy := w.Enemy(id)
		status := fmt.Sprintf("level %d, %d HP, %s", enemy.Level, enemy.HP, enemy.Rarity)
		if enemy.Boss {
			status += ", BOSS"
		}
		if enemy.Defeated {
			status = "defeated"
		}
		fmt.Printf("   enemy %d: %s (%s)\n", i+1, enemy.Name, status)
	}
}

func clearedSuffix(room *world.Room) string {
	if room.Cleared {
		return " [cleared]"
	}
	return ""
}

func (r *repl) printMap() {
	w := r.session.World()
	for _, room := range w.Rooms {
		marker := "  "
		if room.ID == r.roomID {
			marker = "* "
		}
		fmt.Printf("%s%s (danger %d, %d enemies)%s\n",
			marker, room.Name, room.Danger, len(room.EnemyIDs), clearedSuffix(room))
	}
}

func (r *repl) move(args []string) error {
	room := r.session.World().Room(r.roomID)
	idx, err := pickIndex(args, len(room.Connections), "exit")
	if err != nil {
		return err
	}
	r.roomID = room.Connections[idx]
	r.look()
	return nil
}

func (r *repl) fight(ctx context.Context, args []string) error {
	w := r.session.World()
	room := w.Room(r.roomID)
	idx, err := pickIndex(args, len(room.EnemyIDs), "enemy")
	if err != nil {
		return err
	}
	enemyID := room.EnemyIDs[idx]

	id, err := r.session.StartEncounter(ctx, r.roomID, enemyID)
	if err != nil {
		return err
	}
	r.encounterID = id
	fmt.Printf("%s blocks your path! attack, defend, or flee.\n", w.Enemy(enemyID).Name)
	return nil
}

func (r *repl) turn(ctx context.Context, action combat.Action) error {
	result, err := r.session.SubmitAction(ctx, r.encounterID, action)
	if err != nil {
		return err
	}
	fmt.Println(result.Log)
	if !result.State.Terminal() {
		fmt.Printf("   you: %d HP | foe: %d HP\n", result.PlayerHP, result.EnemyHP)
		return nil
	}

	r.encounterID = ""
	p := r.session.Player()
	switch result.State {
	case combat.StatePlayerVictory:
		fmt.Printf("Victory! You are level %d with %d XP.\n", p.Level, p.XP)
	case combat.StateEnemyVictory:
		fmt.Printf("You fall... and wake at %d HP, lighter by some experience.\n", p.HP)
	case combat.StatePlayerFled:
		fmt.Println("You slip away.")
	}
	return nil
}

func (r *repl) printQuests() {
	for i, quest := range r.session.World().Quests {
		tag := "quest"
		if quest.Kind == world.QuestBoss {
			tag = "boss "
		}
		fmt.Printf("%d. [%s] #%d %s (difficulty %d, %s)\n",
			i+1, tag, quest.Number, quest.Title, quest.Difficulty, quest.Status)
	}
}

func (r *repl) complete(ctx context.Context, args []string) error {
	quests := r.session.World().Quests
	idx, err := pickIndex(args, len(quests), "quest")
	if err != nil {
		return err
	}
	if err := r.session.CompleteQuest(ctx, quests[idx].ID); err != nil {
		return err
	}
	fmt.Printf("Quest #%d turned in.\n", quests[idx].Number)
	return nil
}

func (r *repl) printStats() {
	p := r.session.Player()
	fmt.Printf("%s  level %d  %d/%d HP  %d XP\n", p.Name, p.Level, p.HP, p.MaxHP(), p.XP)
	fmt.Printf("attack %d  defense %d  luck %d\n", p.EffectiveAttack(), p.EffectiveDefense(), p.Luck)
	fmt.Printf("inventory (%d/%d):\n", len(p.Inventory), p.InventoryCapacity())
	for _, item := range p.Inventory {
		fmt.Printf("   %s [%s, %s]\n", item.Name, item.Slot, item.Rarity)
	}
}

func pickIndex(args []string, n int, what string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("which %s? give a number 1-%d", what, n)
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil || idx < 1 || idx > n {
		return 0, fmt.Errorf("no %s %s (there are %d)", what, args[0], n)
	}
	return idx - 1, nil
}
