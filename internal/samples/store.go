// Package samples provides the sample store boundary, WAV decoding to
// normalized mono float buffers, linear resampling, and the process-wide
// decode cache shared by concurrent pipeline runs.
package samples

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	bferrors "github.com/dygy/beatforge/internal/errors"
)

// Info describes one sample file in the store.
type Info struct {
	Family   string
	Pitch    int // MIDI pitch the sample was recorded at
	Velocity int // 0-127 velocity tier
	Path     string
}

// Store is the external sample library boundary. The pipeline never
// manages acquisition or layout; it only lists and reads.
type Store interface {
	Families() ([]string, error)
	List(family string) ([]Info, error)
	Read(path string) ([]byte, error)
}

// sample files are named p<pitch>_v<velocity>.wav under a family directory
var sampleNameRe = regexp.MustCompile(`^p(\d{1,3})_v(\d{1,3})\.wav$`)

// DirStore reads samples from <root>/<family>/p<pitch>_v<velocity>.wav.
type DirStore struct {
	root string
}

// NewDirStore creates a store rooted at dir.
func NewDirStore(dir string) *DirStore {
	return &DirStore{root: dir}
}

// Families returns the family directories in sorted order.
func (s *DirStore) Families() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sample root: %w", err)
	}

	var families []string
	for _, e := range entries {
		if e.IsDir() {
			families = append(families, e.Name())
		}
	}
	sort.Strings(families)
	return families, nil
}

// List returns every parseable sample in a family, sorted by pitch then
// velocity so selection order is stable.
func (s *DirStore) List(family string) ([]Info, error) {
	dir := filepath.Join(s.root, family)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read family %s: %w", family, err)
	}

	var infos []Info
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := sampleNameRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		infos = append(infos, Info{
			Family:   family,
			Pitch:    atoi(m[1]),
			Velocity: atoi(m[2]),
			Path:     filepath.Join(dir, e.Name()),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Pitch != infos[j].Pitch {
			return infos[i].Pitch < infos[j].Pitch
		}
		return infos[i].Velocity < infos[j].Velocity
	})
	return infos, nil
}

// Read returns the raw bytes of a sample file.
func (s *DirStore) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", bferrors.ErrSampleNotFound, path)
		}
		return nil, fmt.Errorf("read sample %s: %w", path, err)
	}
	return data, nil
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
