// Package resolver maps the symbolic note ids of a pattern onto concrete
// samples from the store. Resolution is best-effort: it walks a
// fallback chain and reports ids it cannot serve instead of failing, so a
// missing sample never sinks a whole request.
package resolver

import (
	"math"
	"sort"

	bferrors "github.com/dygy/beatforge/internal/errors"
	"github.com/dygy/beatforge/internal/pattern"
	"github.com/dygy/beatforge/internal/samples"
	"github.com/dygy/beatforge/internal/timing"
)

// Source tags for a resolved note.
const (
	SourcePrimary  = "primary"
	SourceFallback = "fallback"
)

// roleWindow is the pitch distance around a role's GM pitch considered an
// in-range candidate.
const roleWindow = 4

// Resolved is one entry of a note mapping.
type Resolved struct {
	Sample       samples.Info
	Pitch        int
	VelocityTier int
	Source       string
}

// Resolution is the complete note mapping for one pattern. Unresolved maps
// each id no fallback could serve to the recoverable error describing the
// miss; the caller drops those events instead of failing.
type Resolution struct {
	Family       string
	AutoSelected bool
	Notes        map[pattern.NoteID]Resolved
	Unresolved   map[pattern.NoteID]*bferrors.ResolveError
}

// UnresolvedIDs returns the unresolved ids in a stable order, for event
// dropping and reporting.
func (res *Resolution) UnresolvedIDs() []pattern.NoteID {
	ids := make([]pattern.NoteID, 0, len(res.Unresolved))
	for id := range res.Unresolved {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// Resolver selects an instrument family and builds note mappings. The
// optional alternate store models a second sample provider consulted when
// the primary has nothing for a note.
type Resolver struct {
	store     samples.Store
	alternate samples.Store
	cache     *samples.Cache
}

// New creates a resolver over the primary store. The decode cache is
// shared with the renderer; resolution warms it and uses it to reject
// undecodable files early.
func New(store samples.Store, cache *samples.Cache) *Resolver {
	return &Resolver{store: store, cache: cache}
}

// WithAlternate adds a second sample provider to the fallback chain.
func (r *Resolver) WithAlternate(store samples.Store) *Resolver {
	r.alternate = store
	return r
}

// Resolve builds the note mapping for a pattern. instrument is either
// "auto" or an explicit family name (deprecated names are aliased, e.g.
// piano to keyboard).
func (r *Resolver) Resolve(p *pattern.Pattern, instrument string, rules timing.StyleRules) *Resolution {
	family, auto := r.selectFamily(p, instrument, rules)

	res := &Resolution{
		Family:       family,
		AutoSelected: auto,
		Notes:        make(map[pattern.NoteID]Resolved),
		Unresolved:   make(map[pattern.NoteID]*bferrors.ResolveError),
	}

	preferredVel := int(math.Round(rules.BaseVelocity * 127))

	for _, id := range p.NoteIDs() {
		resolved, rerr := r.resolveNote(id, family, preferredVel)
		if rerr != nil {
			res.Unresolved[id] = rerr
			continue
		}
		res.Notes[id] = resolved
	}
	return res
}

// selectFamily returns the family to resolve against and whether it was
// auto-selected by scoring.
func (r *Resolver) selectFamily(p *pattern.Pattern, instrument string, rules timing.StyleRules) (string, bool) {
	if instrument != "" && instrument != "auto" {
		if family := NormalizeFamily(instrument); family != "" {
			return family, false
		}
	}

	best := familyOrder[0]
	bestScore := math.Inf(-1)
	for _, name := range familyOrder {
		score := r.scoreFamily(familyTable[name], p, rules)
		if score > bestScore {
			best = name
			bestScore = score
		}
	}
	return best, true
}

// scoreFamily implements the selection rule: style preference counts +3,
// style avoidance -2, each distinct note id the family serves +2, at least
// one sample on disk +1, none at all -10.
func (r *Resolver) scoreFamily(f Family, p *pattern.Pattern, rules timing.StyleRules) float64 {
	score := 0.0

	for _, name := range rules.PreferFamilies {
		if name == f.Name {
			score += 3
		}
	}
	for _, name := range rules.AvoidFamilies {
		if name == f.Name {
			score -= 2
		}
	}

	for _, id := range p.NoteIDs() {
		if id.IsMelodic() && f.servesPitch(id.Pitch) {
			score += 2
		} else if !id.IsMelodic() && f.servesRole(id.Role) {
			score += 2
		}
	}

	infos, err := r.store.List(f.Name)
	if err == nil && len(infos) > 0 {
		score++
	} else {
		score -= 10
	}
	return score
}

// resolveNote walks the fallback chain for one note id: primary family in
// the primary store, same family in the alternate provider, then the first
// sample of any family anywhere. An exhausted chain returns a recoverable
// ResolveError describing the miss.
func (r *Resolver) resolveNote(id pattern.NoteID, family string, preferredVel int) (Resolved, *bferrors.ResolveError) {
	target := targetPitch(id)

	if resolved, ok := r.pick(r.store, family, id, target, preferredVel, SourcePrimary); ok {
		return resolved, nil
	}
	if r.alternate != nil {
		if resolved, ok := r.pick(r.alternate, family, id, target, preferredVel, SourceFallback); ok {
			return resolved, nil
		}
	}
	if resolved, ok := r.lastResort(); ok {
		return resolved, nil
	}

	rerr := &bferrors.ResolveError{NoteID: noteLabel(id), Family: family}
	if r.storesEmpty() {
		rerr.Cause = bferrors.ErrEmptyStore
	}
	return Resolved{}, rerr
}

// storesEmpty reports whether neither store lists a single sample. Only
// called on the miss path, which has already walked everything anyway.
func (r *Resolver) storesEmpty() bool {
	stores := []samples.Store{r.store}
	if r.alternate != nil {
		stores = append(stores, r.alternate)
	}
	for _, store := range stores {
		families, err := store.Families()
		if err != nil {
			continue
		}
		for _, family := range families {
			if infos, err := store.List(family); err == nil && len(infos) > 0 {
				return false
			}
		}
	}
	return true
}

// pick selects the best candidate within one family of one store: exact
// pitch first, then closest pitch, then closest velocity to the preferred
// tier. Candidates that fail to decode are skipped, which is how decode
// failures downgrade to the fallback path instead of erroring.
func (r *Resolver) pick(store samples.Store, family string, id pattern.NoteID, target, preferredVel int, source string) (Resolved, bool) {
	infos, err := store.List(family)
	if err != nil || len(infos) == 0 {
		return Resolved{}, false
	}

	candidates := infos
	if !id.IsMelodic() {
		candidates = nil
		for _, info := range infos {
			if abs(info.Pitch-target) <= roleWindow {
				candidates = append(candidates, info)
			}
		}
		if len(candidates) == 0 {
			// no sample inside the role window; widen to the whole family
			candidates = infos
		}
	}

	ordered := make([]samples.Info, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		di, dj := abs(ordered[i].Pitch-target), abs(ordered[j].Pitch-target)
		if di != dj {
			return di < dj
		}
		return abs(ordered[i].Velocity-preferredVel) < abs(ordered[j].Velocity-preferredVel)
	})

	for _, info := range ordered {
		if _, err := r.cache.Get(info.Path); err != nil {
			continue
		}
		return Resolved{
			Sample:       info,
			Pitch:        info.Pitch,
			VelocityTier: info.Velocity,
			Source:       source,
		}, true
	}
	return Resolved{}, false
}

// lastResort returns the first decodable sample of any family in either
// store, always tagged as a fallback.
func (r *Resolver) lastResort() (Resolved, bool) {
	stores := []samples.Store{r.store}
	if r.alternate != nil {
		stores = append(stores, r.alternate)
	}
	for _, store := range stores {
		families, err := store.Families()
		if err != nil {
			continue
		}
		for _, family := range families {
			infos, err := store.List(family)
			if err != nil {
				continue
			}
			for _, info := range infos {
				if _, err := r.cache.Get(info.Path); err != nil {
					continue
				}
				return Resolved{
					Sample:       info,
					Pitch:        info.Pitch,
					VelocityTier: info.Velocity,
					Source:       SourceFallback,
				}, true
			}
		}
	}
	return Resolved{}, false
}

// noteLabel renders a note id for error messages: the role name for drum
// notes, the spelled pitch for melodic ones.
func noteLabel(id pattern.NoteID) string {
	if id.IsMelodic() {
		return pattern.PitchName(id.Pitch)
	}
	return id.Role
}

func targetPitch(id pattern.NoteID) int {
	if id.IsMelodic() {
		return id.Pitch
	}
	if pitch, ok := pattern.RoleGMPitch[id.Role]; ok {
		return pitch
	}
	return 60
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
