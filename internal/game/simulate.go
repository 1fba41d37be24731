package game

import "time"

// spawn adds one object when more than SpawnInterval has passed since the last spawn.
func (g *Game) spawn(now time.Time, events []Event) []Event {
	if now.Sub(g.lastSpawn) <= g.state.SpawnInterval {
		return events
	}

	w := g.layout.Width()
	size := w * g.tuning.ObjectSizeFraction
	if size < g.tuning.MinObjectSize {
		size = g.tuning.MinObjectSize
	}
	maxX := w - size
	if maxX < 0 {
		maxX = 0
	}

	g.nextID++
	o := &Object{
		ID:        g.nextID,
		Category:  g.layout.Category(g.rng.IntN(g.layout.Len())),
		Size:      size,
		X:         g.rng.Float64() * maxX,
		Y:         -size,
		State:     Falling,
		SpawnedAt: now,
	}
	g.state.Objects = append(g.state.Objects, o)
	g.lastSpawn = now

	return append(events, Event{Kind: EventSpawned, ObjectID: o.ID, Category: o.Category})
}

// update runs grab, drag, release and free fall for one tick.
func (g *Game) update(in Input, events []Event) []Event {
	pinching := in.Pinching && in.HasCursor

	if pinching && g.dragged() == nil {
		if o := g.nearestFalling(in.Cursor); o != nil {
			o.State = Dragged
			events = append(events, Event{Kind: EventGrabbed, ObjectID: o.ID, Category: o.Category})
		}
	}

	if o := g.dragged(); o != nil {
		if in.HasCursor {
			o.centerOn(in.Cursor, g.layout.Width(), g.layout.Height())
		}
		// A lost hand counts as a release.
		if !pinching {
			events = g.release(o, events)
		}
	}

	return g.fall(events)
}

// dragged returns the object bound to the hand, or nil.
func (g *Game) dragged() *Object {
	for _, o := range g.state.Objects {
		if o.State == Dragged {
			return o
		}
	}
	return nil
}

// nearestFalling returns the falling object whose center is closest to p and
// strictly within the capture radius. Ties go to the earliest spawn.
func (g *Game) nearestFalling(p Point) *Object {
	var best *Object
	var bestDist float64
	for _, o := range g.state.Objects {
		if o.State != Falling {
			continue
		}
		d := o.Center().Dist(p)
		if d >= g.tuning.CaptureRadius {
			continue
		}
		if best == nil || d < bestDist || (d == bestDist && o.ID < best.ID) {
			best, bestDist = o, d
		}
	}
	return best
}

// release evaluates a drop. Drops inside the bin strip are scored and the
// object is destroyed; drops above it put the object back into free fall.
func (g *Game) release(o *Object, events []Event) []Event {
	c := o.Center()
	zone, ok := g.layout.ZoneAt(c.X)
	if !g.layout.InBand(c.Y) || !ok {
		o.State = Falling
		return append(events, Event{Kind: EventReleased, ObjectID: o.ID, Category: o.Category})
	}

	g.remove(o.ID)

	if g.layout.Category(zone) == o.Category {
		g.state.Score += g.tuning.CorrectReward
		g.state.Sorted++
		events = append(events, Event{Kind: EventSorted, ObjectID: o.ID, Category: o.Category, Zone: zone, Score: g.state.Score, Level: g.state.Level})
		return g.levelUp(events)
	}

	g.state.Score -= g.tuning.WrongPenalty
	if g.state.Score < 0 {
		g.state.Score = 0
	}
	g.state.Misplaced++
	return append(events, Event{Kind: EventMisplaced, ObjectID: o.ID, Category: o.Category, Zone: zone, Score: g.state.Score, Level: g.state.Level})
}

// levelUp ratchets the level from the score and tightens the difficulty.
// The level never goes down.
func (g *Game) levelUp(events []Event) []Event {
	level := g.tuning.LevelFor(g.state.Score)
	if level <= g.state.Level {
		return events
	}
	g.state.Level = level
	g.state.SpawnInterval = g.tuning.SpawnIntervalFor(level)
	g.state.FallSpeed = g.tuning.FallSpeedFor(level)
	return append(events, Event{Kind: EventLevelUp, Score: g.state.Score, Level: level})
}

// fall moves every falling object down and removes the ones that left the
// play area, counting them as missed. The game ends on the last allowed miss.
func (g *Game) fall(events []Event) []Event {
	h := g.layout.Height()
	live := g.state.Objects[:0]
	over := false

	for _, o := range g.state.Objects {
		if over {
			live = append(live, o)
			continue
		}
		if o.State == Falling {
			o.Y += g.state.FallSpeed
			if o.Y > h {
				g.state.Missed++
				events = append(events, Event{Kind: EventMissed, ObjectID: o.ID, Category: o.Category, Score: g.state.Score, Level: g.state.Level})
				if g.state.Missed >= g.tuning.MaxMissed {
					g.state.Phase = PhaseOver
					over = true
					events = append(events,
						Event{Kind: EventGameOver, Score: g.state.Score, Level: g.state.Level, Phase: PhaseOver},
						Event{Kind: EventPhaseChanged, Score: g.state.Score, Level: g.state.Level, Phase: PhaseOver},
					)
				}
				continue
			}
		}
		live = append(live, o)
	}

	for i := len(live); i < len(g.state.Objects); i++ {
		g.state.Objects[i] = nil
	}
	g.state.Objects = live
	return events
}

func (g *Game) remove(id uint64) {
	for i, o := range g.state.Objects {
		if o.ID == id {
			copy(g.state.Objects[i:], g.state.Objects[i+1:])
			g.state.Objects[len(g.state.Objects)-1] = nil
			g.state.Objects = g.state.Objects[:len(g.state.Objects)-1]
			return
		}
	}
}
