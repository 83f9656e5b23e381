package resolver

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	bferrors "github.com/dygy/beatforge/internal/errors"
	"github.com/dygy/beatforge/internal/pattern"
	"github.com/dygy/beatforge/internal/samples"
	"github.com/dygy/beatforge/internal/timing"
)

// writeSample creates <root>/<family>/p<pitch>_v<vel>.wav with a short tone.
func writeSample(t *testing.T, root, family string, pitch, vel int) string {
	t.Helper()
	dir := filepath.Join(root, family)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, sampleName(pitch, vel))
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rate := 44100
	n := 441
	ints := make([]int, n)
	for i := range ints {
		ints[i] = int(0.4 * 32767 * math.Sin(2*math.Pi*220*float64(i)/float64(rate)))
	}
	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           ints,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func sampleName(pitch, vel int) string {
	return fmt.Sprintf("p%03d_v%03d.wav", pitch, vel)
}

func drumPattern(roles ...string) *pattern.Pattern {
	p := &pattern.Pattern{}
	for i, role := range roles {
		p.Events = append(p.Events, pattern.Event{
			Position: float64(i) * 0.1,
			Velocity: 0.8,
			Note:     pattern.RoleNote(role),
		})
	}
	return p
}

func newResolver(t *testing.T, root string) *Resolver {
	t.Helper()
	store := samples.NewDirStore(root)
	return New(store, samples.NewCache(store, 44100))
}

func rulesFor(t *testing.T, style string) timing.StyleRules {
	t.Helper()
	rules, err := timing.StyleRulesFor(style)
	if err != nil {
		t.Fatal(err)
	}
	return rules
}

func TestResolveExactMatch(t *testing.T) {
	root := t.TempDir()
	writeSample(t, root, "tr808", 36, 100)
	writeSample(t, root, "tr808", 38, 100)

	r := newResolver(t, root)
	res := r.Resolve(drumPattern("kick", "snare"), "tr808", rulesFor(t, "house"))

	if res.Family != "tr808" {
		t.Errorf("family = %q, want tr808", res.Family)
	}
	if res.AutoSelected {
		t.Error("explicit instrument should not be auto-selected")
	}
	if len(res.Unresolved) != 0 {
		t.Errorf("unexpected unresolved ids: %v", res.Unresolved)
	}

	kick := res.Notes[pattern.RoleNote("kick")]
	if kick.Pitch != 36 || kick.Source != SourcePrimary {
		t.Errorf("kick resolved to %+v", kick)
	}
	snare := res.Notes[pattern.RoleNote("snare")]
	if snare.Pitch != 38 {
		t.Errorf("snare resolved to pitch %d, want 38", snare.Pitch)
	}
}

func TestResolveClosestPitchThenVelocity(t *testing.T) {
	root := t.TempDir()
	// No exact kick (36): nearest in-window pitch is 35; two velocity tiers.
	writeSample(t, root, "drumkit", 35, 60)
	writeSample(t, root, "drumkit", 35, 110)
	writeSample(t, root, "drumkit", 40, 100)

	r := newResolver(t, root)
	res := r.Resolve(drumPattern("kick"), "drumkit", rulesFor(t, "house"))

	kick := res.Notes[pattern.RoleNote("kick")]
	if kick.Pitch != 35 {
		t.Errorf("kick pitch = %d, want closest pitch 35", kick.Pitch)
	}
	// house base velocity 0.8 -> preferred tier ~102, so 110 beats 60
	if kick.VelocityTier != 110 {
		t.Errorf("kick velocity tier = %d, want 110", kick.VelocityTier)
	}
}

func TestAutoSelectionScoring(t *testing.T) {
	root := t.TempDir()
	writeSample(t, root, "tr808", 36, 100)
	writeSample(t, root, "tr808", 38, 100)
	writeSample(t, root, "guitar", 52, 100)

	r := newResolver(t, root)

	t.Run("house drums pick tr808", func(t *testing.T) {
		// tr808: prefer +3, serves kick+snare +4, samples +1 = 8.
		// guitar: avoid -2, serves nothing, samples +1 = -1.
		res := r.Resolve(drumPattern("kick", "snare"), "auto", rulesFor(t, "house"))
		if !res.AutoSelected {
			t.Error("auto selection not flagged")
		}
		if res.Family != "tr808" {
			t.Errorf("family = %q, want tr808", res.Family)
		}
	})

	t.Run("melodic funk picks guitar", func(t *testing.T) {
		p := &pattern.Pattern{Events: []pattern.Event{
			{Position: 0, Velocity: 0.8, Note: pattern.PitchNote(52)},
			{Position: 0.5, Velocity: 0.8, Note: pattern.PitchNote(59)},
		}}
		res := r.Resolve(p, "auto", rulesFor(t, "funk"))
		if res.Family != "guitar" {
			t.Errorf("family = %q, want guitar", res.Family)
		}
	})
}

func TestDeprecatedAlias(t *testing.T) {
	root := t.TempDir()
	writeSample(t, root, "keyboard", 60, 100)

	r := newResolver(t, root)
	p := &pattern.Pattern{Events: []pattern.Event{
		{Position: 0, Velocity: 0.7, Note: pattern.PitchNote(60)},
	}}
	res := r.Resolve(p, "piano", rulesFor(t, "lofi"))

	if res.Family != "keyboard" {
		t.Errorf("piano should alias to keyboard, got %q", res.Family)
	}
	if len(res.Unresolved) != 0 {
		t.Errorf("unresolved: %v", res.Unresolved)
	}
}

func TestFallbackToAlternateProvider(t *testing.T) {
	primary := t.TempDir()
	alternate := t.TempDir()
	writeSample(t, alternate, "tr808", 36, 100)

	store := samples.NewDirStore(primary)
	altStore := samples.NewDirStore(alternate)
	// DirStore reads by absolute path, so one cache serves both stores.
	r := New(store, samples.NewCache(store, 44100)).WithAlternate(altStore)
	res := r.Resolve(drumPattern("kick"), "tr808", rulesFor(t, "house"))

	kick, ok := res.Notes[pattern.RoleNote("kick")]
	if !ok {
		t.Fatalf("kick unresolved: %v", res.Unresolved)
	}
	if kick.Source != SourceFallback {
		t.Errorf("source = %q, want fallback", kick.Source)
	}
}

func TestLastResortFallback(t *testing.T) {
	// A kick with zero drum samples anywhere still resolves as long as one
	// sample of any family exists.
	root := t.TempDir()
	writeSample(t, root, "synth", 72, 90)

	r := newResolver(t, root)
	res := r.Resolve(drumPattern("kick"), "drumkit", rulesFor(t, "rock"))

	kick, ok := res.Notes[pattern.RoleNote("kick")]
	if !ok {
		t.Fatalf("kick unresolved despite available sample: %v", res.Unresolved)
	}
	if kick.Source != SourceFallback {
		t.Errorf("source = %q, want fallback", kick.Source)
	}
	if kick.Sample.Family != "synth" {
		t.Errorf("sample family = %q, want synth", kick.Sample.Family)
	}
}

func TestUnresolvedOnEmptyStore(t *testing.T) {
	r := newResolver(t, t.TempDir())
	res := r.Resolve(drumPattern("kick", "snare"), "auto", rulesFor(t, "house"))

	if len(res.Unresolved) != 2 {
		t.Errorf("unresolved = %v, want both ids", res.Unresolved)
	}
	if len(res.Notes) != 0 {
		t.Errorf("notes = %v, want none", res.Notes)
	}

	rerr, ok := res.Unresolved[pattern.RoleNote("kick")]
	if !ok {
		t.Fatal("kick miss carries no error")
	}
	if !errors.Is(rerr, bferrors.ErrEmptyStore) {
		t.Errorf("miss error = %v, want wrapped ErrEmptyStore", rerr)
	}
	if !rerr.IsRecoverable() {
		t.Error("resolution misses must be recoverable")
	}
	if rerr.NoteID != "kick" {
		t.Errorf("error note id = %q, want kick", rerr.NoteID)
	}

	ids := res.UnresolvedIDs()
	if len(ids) != 2 || ids[0] != pattern.RoleNote("kick") || ids[1] != pattern.RoleNote("snare") {
		t.Errorf("UnresolvedIDs() = %v, want [kick snare]", ids)
	}
}

func TestUnresolvedMelodicLabel(t *testing.T) {
	r := newResolver(t, t.TempDir())
	p := &pattern.Pattern{Events: []pattern.Event{
		{Position: 0, Velocity: 0.8, Note: pattern.PitchNote(60)},
	}}
	res := r.Resolve(p, "keyboard", rulesFor(t, "lofi"))

	rerr, ok := res.Unresolved[pattern.PitchNote(60)]
	if !ok {
		t.Fatal("melodic miss carries no error")
	}
	if rerr.NoteID != "C4" {
		t.Errorf("error note id = %q, want spelled pitch C4", rerr.NoteID)
	}
	if rerr.Family != "keyboard" {
		t.Errorf("error family = %q, want keyboard", rerr.Family)
	}
}

func TestCorruptSampleSkipped(t *testing.T) {
	root := t.TempDir()
	// Corrupt kick in the role window, valid one further away.
	dir := filepath.Join(root, "drumkit")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "p036_v100.wav"), []byte("junk"), 0644); err != nil {
		t.Fatal(err)
	}
	writeSample(t, root, "drumkit", 38, 100)

	r := newResolver(t, root)
	res := r.Resolve(drumPattern("kick"), "drumkit", rulesFor(t, "rock"))

	kick, ok := res.Notes[pattern.RoleNote("kick")]
	if !ok {
		t.Fatalf("kick unresolved: %v", res.Unresolved)
	}
	if kick.Pitch != 38 {
		t.Errorf("expected the decodable sample at 38, got %d", kick.Pitch)
	}
}

func TestNormalizeFamily(t *testing.T) {
	cases := map[string]string{
		"piano":    "keyboard",
		"Piano":    "keyboard",
		"808":      "tr808",
		"drums":    "drumkit",
		"guitar":   "guitar",
		"theremin": "",
	}
	for in, want := range cases {
		if got := NormalizeFamily(in); got != want {
			t.Errorf("NormalizeFamily(%q) = %q, want %q", in, got, want)
		}
	}
}
