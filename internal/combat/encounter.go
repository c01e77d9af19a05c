// Package combat provides the turn-based encounter state machine. An
// encounter consumes one synthesized enemy and the player's stats; outcomes
// are deterministic given the player's choices and the supplied decision
// stream, which makes every fight replayable in tests.
package combat

import (
	"errors"
	"fmt"

	"github.com/samdwyer/repoheroes/internal/seed"
)

// Action is a player choice for one turn.
type Action string

const (
	ActionAttack Action = "attack"
	ActionDefend Action = "defend"
	ActionFlee   Action = "flee"
)

// State is the encounter state. Turn resolution is synchronous, so the
// transient resolving phase between accepting an action and settling its
// outcome is never observable from outside.
type State string

const (
	StateAwaitingAction State = "awaiting_action"
	StatePlayerVictory  State = "player_victory"
	StateEnemyVictory   State = "enemy_victory"
	StatePlayerFled     State = "player_fled"
)

// Terminal reports whether no further actions are accepted.
func (s State) Terminal() bool {
	return s != StateAwaitingAction
}

// fleeChance is the probability a flee attempt succeeds. The draw comes
// from the encounter's decision stream, never ambient randomness.
const fleeChance = 0.7

// Errors returned by Submit.
var (
	ErrEncounterOver = errors.New("encounter is over")
	ErrUnknownAction = errors.New("unknown action")
)

// Stats is a combatant's stat block, copied into the encounter at start so
// a fight never mutates the persisted entities directly.
type Stats struct {
	Name    string
	HP      int
	MaxHP   int
	Attack  int
	Defense int
}

// Alive reports whether the combatant still stands.
func (s Stats) Alive() bool {
	return s.HP > 0
}

// Result describes the settled outcome of one submitted action.
type Result struct {
	State    State
	Log      string
	PlayerHP int
	EnemyHP  int
	Turn     int
}

// Encounter is one player-versus-enemy fight. Not safe for concurrent use:
// a player has exactly one fight at a time and actions arrive serialized.
type Encounter struct {
	Player Stats
	Enemy  Stats

	state     State
	decisions *seed.Stream
	turn      int
}

// New starts an encounter with both sides at the given stats. decisions
// supplies the flee roll; deriving it from a stable key keeps the whole
// fight reproducible.
func New(player, enemy Stats, decisions *seed.Stream) *Encounter {
	return &Encounter{
		Player:    player,
		Enemy:     enemy,
		state:     StateAwaitingAction,
		decisions: decisions,
	}
}

// State returns the current encounter state.
func (e *Encounter) State() State {
	return e.state
}

// Turn returns the number of resolved turns.
func (e *Encounter) Turn() int {
	return e.turn
}

// Submit resolves one player action. Submitting to a terminal encounter
// returns ErrEncounterOver; the caller must start a new encounter.
func (e *Encounter) Submit(action Action) (Result, error) {
	if e.state.Terminal() {
		return Result{}, fmt.Errorf("%w: state %s", ErrEncounterOver, e.state)
	}

	e.turn++
	var log string
	switch action {
	case ActionAttack:
		log = e.resolveAttack()
	case ActionDefend:
		log = e.resolveDefend()
	case ActionFlee:
		log = e.resolveFlee()
	default:
		e.turn--
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	return Result{
		State:    e.state,
		Log:      log,
		PlayerHP: e.Player.HP,
		EnemyHP:  e.Enemy.HP,
		Turn:     e.turn,
	}, nil
}

// damage computes an exchange: attack against defense, floored at 1 so
// fights always end. No variance here - the only random draw in combat is
// the flee roll.
func damage(attack, defense int) int {
	return max(1, attack-defense/2)
}

func (e *Encounter) resolveAttack() string {
	dealt := damage(e.Player.Attack, e.Enemy.Defense)
	e.Enemy.HP = max(0, e.Enemy.HP-dealt)
	if !e.Enemy.Alive() {
		e.state = StatePlayerVictory
		return fmt.Sprintf("You hit %s for %d and defeat it!", e.Enemy.Name, dealt)
	}

	taken := damage(e.Enemy.Attack, e.Player.Defense)
	e.Player.HP = max(0, e.Player.HP-taken)
	if !e.Player.Alive() {
		e.state = StateEnemyVictory
		return fmt.Sprintf("You hit %s for %d, but its counter for %d fells you.", e.Enemy.Name, dealt, taken)
	}
	return fmt.Sprintf("You hit %s for %d; it strikes back for %d.", e.Enemy.Name, dealt, taken)
}

// resolveDefend doubles effective defense against the incoming hit, for
// this turn only.
func (e *Encounter) resolveDefend() string {
	taken := damage(e.Enemy.Attack, e.Player.Defense*2)
	e.Player.HP = max(0, e.Player.HP-taken)
	if !e.Player.Alive() {
		e.state = StateEnemyVictory
		return fmt.Sprintf("You brace, but %s breaks through for %d and fells you.", e.Enemy.Name, taken)
	}
	return fmt.Sprintf("You brace; %s hits for only %d.", e.Enemy.Name, taken)
}

func (e *Encounter) resolveFlee() string {
	if e.decisions.Float64() < fleeChance {
		e.state = StatePlayerFled
		return "You slip away from the fight."
	}

	taken := damage(e.Enemy.Attack, e.Player.Defense)
	e.Player.HP = max(0, e.Player.HP-taken)
	if !e.Player.Alive() {
		e.state = StateEnemyVictory
		return fmt.Sprintf("You fail to escape; %s strikes for %d and fells you.", e.Enemy.Name, taken)
	}
	return fmt.Sprintf("You fail to escape; %s strikes for %d.", e.Enemy.Name, taken)
}

// XPReward is the experience for defeating an enemy of the given level;
// bosses are worth triple.
func XPReward(level int, boss bool) int {
	xp := level * 10
	if boss {
		xp *= 3
	}
	return xp
}
