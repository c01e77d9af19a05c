// Package player holds the player character and its progression rules:
// XP, leveling, inventory capacity, and the defeat penalty. This is the
// mutable game-state side of the house; the generated world never depends
// on anything here.
package player

import (
	"github.com/samdwyer/repoheroes/internal/world"
)

// Progression constants.
const (
	xpPerLevel      = 100
	baseHP          = 100
	hpPerLevel      = 10
	attackPerLevel  = 2
	defensePerLevel = 1
	luckPerLevel    = 1
	baseInventory   = 10
	inventoryPerTen = 10
)

// Player is the persistent player character.
type Player struct {
	Name      string           `json:"name"`
	Level     int              `json:"level"`
	XP        int              `json:"xp"`
	HP        int              `json:"hp"`
	Attack    int              `json:"attack"`
	Defense   int              `json:"defense"`
	Luck      int              `json:"luck"`
	Inventory []world.LootItem `json:"inventory"`
}

// New creates a fresh level-1 player.
func New(name string) *Player {
	return &Player{
		Name:    name,
		Level:   1,
		HP:      baseHP,
		Attack:  10,
		Defense: 5,
		Luck:    5,
	}
}

// MaxHP is the health ceiling for the player's level.
func (p *Player) MaxHP() int {
	return baseHP + (p.Level-1)*hpPerLevel
}

// InventoryCapacity grows by ten slots every ten levels.
func (p *Player) InventoryCapacity() int {
	return baseInventory + p.Level/10*inventoryPerTen
}

// AwardXP adds experience and applies any level-ups, growing stats per
// level gained. Returns true if at least one level was gained.
func (p *Player) AwardXP(xp int) bool {
	p.XP += xp
	leveled := false
	for p.XP >= p.Level*xpPerLevel {
		p.XP -= p.Level * xpPerLevel
		p.Level++
		leveled = true
		p.HP += hpPerLevel
		p.Attack += attackPerLevel
		p.Defense += defensePerLevel
		p.Luck += luckPerLevel
	}
	return leveled
}

// AddLoot places an item in the inventory. Returns false without adding
// when the inventory is full.
func (p *Player) AddLoot(item world.LootItem) bool {
	if len(p.Inventory) >= p.InventoryCapacity() {
		return false
	}
	p.Inventory = append(p.Inventory, item)
	return true
}

// EffectiveAttack is attack plus inventory bonuses.
func (p *Player) EffectiveAttack() int {
	return p.Attack + p.bonus("attack")
}

// EffectiveDefense is defense plus inventory bonuses.
func (p *Player) EffectiveDefense() int {
	return p.Defense + p.bonus("defense")
}

func (p *Player) bonus(stat string) int {
	total := 0
	for _, item := range p.Inventory {
		total += item.Bonuses[stat]
	}
	return total
}

// Heal restores the player to full health, as happens before entering a
// new encounter.
func (p *Player) Heal() {
	p.HP = p.MaxHP()
}

// DefeatPenalty describes what losing a fight cost.
type DefeatPenalty struct {
	XPLost int
}

// ApplyDefeat respawns the player at half health and docks XP, capped at
// level*10 so a loss never de-levels.
func (p *Player) ApplyDefeat() DefeatPenalty {
	lost := min(p.XP, p.Level*10)
	p.XP -= lost
	p.HP = max(1, p.MaxHP()/2)
	return DefeatPenalty{XPLost: lost}
}
