package main

import "strings"

// PlayerClass identifies a player's character class
type PlayerClass string

const (
	ClassBase      PlayerClass = "base"
	ClassNinja     PlayerClass = "ninja"     // stealth
	ClassMonkey    PlayerClass = "monkey"    // grapple glide
	ClassClown     PlayerClass = "clown"     // confetti (cosmetic)
	ClassSnowman   PlayerClass = "snowman"   // freeze others
	ClassMole      PlayerClass = "mole"      // burrow up
	ClassAlien     PlayerClass = "alien"     // abduct another player
	ClassScientist PlayerClass = "scientist" // shrink
)

// AllClasses lists every selectable class
var AllClasses = []PlayerClass{
	ClassBase, ClassNinja, ClassMonkey, ClassClown,
	ClassSnowman, ClassMole, ClassAlien, ClassScientist,
}

// ParseClass maps a wire value to a class, defaulting to ClassBase
func ParseClass(s string) PlayerClass {
	c := PlayerClass(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllClasses {
		if c == known {
			return c
		}
	}
	return ClassBase
}
