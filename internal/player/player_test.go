package player

import (
	"testing"

	"github.com/samdwyer/repoheroes/internal/world"
)

func TestAwardXPSingleLevel(t *testing.T) {
	p := New("Hero")

	if p.AwardXP(50) {
		t.Error("50 XP should not level a fresh player")
	}
	if !p.AwardXP(60) {
		t.Error("110 XP total should reach level 2")
	}
	if p.Level != 2 {
		t.Errorf("Level = %d, want 2", p.Level)
	}
	if p.XP != 10 {
		t.Errorf("leftover XP = %d, want 10", p.XP)
	}
	if p.Attack != 12 || p.Defense != 6 {
		t.Errorf("stats after level-up: attack %d defense %d", p.Attack, p.Defense)
	}
}

func TestAwardXPMultipleLevels(t *testing.T) {
	p := New("Hero")

	// 100 (1->2) + 200 (2->3) + 10 leftover.
	if !p.AwardXP(310) {
		t.Error("expected level-ups")
	}
	if p.Level != 3 {
		t.Errorf("Level = %d, want 3", p.Level)
	}
	if p.XP != 10 {
		t.Errorf("leftover XP = %d, want 10", p.XP)
	}
	if p.MaxHP() != 120 {
		t.Errorf("MaxHP = %d, want 120", p.MaxHP())
	}
}

func TestInventoryCapacity(t *testing.T) {
	p := New("Hero")
	if got := p.InventoryCapacity(); got != 10 {
		t.Errorf("level 1 capacity = %d, want 10", got)
	}
	p.Level = 25
	if got := p.InventoryCapacity(); got != 30 {
		t.Errorf("level 25 capacity = %d, want 30", got)
	}
}

func TestAddLootFullInventory(t *testing.T) {
	p := New("Hero")
	item := world.LootItem{Name: "Code Sword", Rarity: "common"}
	for i := 0; i < 10; i++ {
		if !p.AddLoot(item) {
			t.Fatalf("slot %d should accept loot", i)
		}
	}
	if p.AddLoot(item) {
		t.Error("full inventory accepted loot")
	}
}

func TestEffectiveStatsIncludeBonuses(t *testing.T) {
	p := New("Hero")
	p.AddLoot(world.LootItem{Name: "Server Ring", Bonuses: map[string]int{"attack": 3}})
	p.AddLoot(world.LootItem{Name: "Neural Armor", Bonuses: map[string]int{"defense": 2, "attack": 1}})

	if got := p.EffectiveAttack(); got != 14 {
		t.Errorf("EffectiveAttack = %d, want 14", got)
	}
	if got := p.EffectiveDefense(); got != 7 {
		t.Errorf("EffectiveDefense = %d, want 7", got)
	}
}

func TestApplyDefeat(t *testing.T) {
	p := New("Hero")
	p.AwardXP(50)
	p.HP = 0

	penalty := p.ApplyDefeat()
	if penalty.XPLost != 10 {
		t.Errorf("XPLost = %d, want 10 (level*10)", penalty.XPLost)
	}
	if p.XP != 40 {
		t.Errorf("XP = %d, want 40", p.XP)
	}
	if p.HP != 50 {
		t.Errorf("HP = %d, want half of max", p.HP)
	}
}

func TestApplyDefeatCapsAtAvailableXP(t *testing.T) {
	p := New("Hero")
	p.AwardXP(5)

	penalty := p.ApplyDefeat()
	if penalty.XPLost != 5 {
		t.Errorf("XPLost = %d, want 5", penalty.XPLost)
	}
	if p.XP != 0 {
		t.Errorf("XP = %d, want 0", p.XP)
	}
}

func TestHealRestoresToMax(t *testing.T) {
	p := New("Hero")
	p.HP = 3
	p.Heal()
	if p.HP != p.MaxHP() {
		t.Errorf("HP = %d, want %d", p.HP, p.MaxHP())
	}
}
