package main

import "time"

const TagCooldown = 500 * time.Millisecond

// transferTag passes "it" from the current holder to the first player, in
// join order, whose hit circle overlaps the holder's. Nothing happens while
// the holder is still inside the cooldown from its own tag. Returns the new
// holder's id, or "" if no transfer happened.
func transferTag(w *World, now time.Time) string {
	it := w.It()
	if it == nil {
		return ""
	}
	if now.Sub(it.LastTagged) <= TagCooldown {
		return ""
	}
	for _, p := range w.Players() {
		if p.ID == it.ID {
			continue
		}
		if !CheckCollision(it.X, it.Y, it.HitRadius, p.X, p.Y, p.HitRadius) {
			continue
		}
		it.LastTagged = now
		w.SetIt(p.ID)
		p.LastTagged = now
		return p.ID
	}
	return ""
}
