// Package playbook loads the cross-examination playbook library: per conflict
// type question templates, trap branches and an optional step sequence.
package playbook

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/contradicta/internal/model"
)

//go:embed builtin/default.yaml
var builtinFS embed.FS

// FallbackKey is the entry used for conflict types without a valid entry of their own
const FallbackKey = "factual"

// ErrNoLibrary means no usable library could be built, not even the embedded default
var ErrNoLibrary = errors.New("no usable playbook library")

// Entry is the playbook for one conflict type
type Entry struct {
	Name             string           `yaml:"name" json:"name"`
	CrossExamination CrossExamination `yaml:"cross_examination" json:"cross_examination"`
}

// CrossExamination holds the templates of one entry
type CrossExamination struct {
	QuestionSet  []string         `yaml:"question_set" json:"question_set"`
	TrapBranches []string         `yaml:"trap_branches" json:"trap_branches,omitempty"`
	Sequence     []model.StepType `yaml:"sequence,omitempty" json:"sequence,omitempty"`
}

// Library is an immutable set of entries. It is safe for concurrent use.
type Library struct {
	entries  map[string]Entry
	source   string
	warnings []string
}

// Lookup returns the entry for t, or the fallback entry
func (l *Library) Lookup(t model.ConflictType) Entry {
	if e, ok := l.entries[string(t)]; ok {
		return e
	}
	return l.entries[FallbackKey]
}

// Has reports whether t has an entry of its own
func (l *Library) Has(t model.ConflictType) bool {
	_, ok := l.entries[string(t)]
	return ok
}

// Keys returns the entry keys, sorted
func (l *Library) Keys() []string {
	keys := make([]string, 0, len(l.entries))
	for k := range l.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns a copy of all entries
func (l *Library) Entries() map[string]Entry {
	out := make(map[string]Entry, len(l.entries))
	for k, v := range l.entries {
		out[k] = v
	}
	return out
}

// Source names where the library was loaded from ("embedded" for the default)
func (l *Library) Source() string {
	return l.source
}

// Warnings lists entries that were rejected while loading
func (l *Library) Warnings() []string {
	return append([]string(nil), l.warnings...)
}

var (
	embeddedOnce sync.Once
	embeddedLib  *Library
	embeddedErr  error
)

// Embedded returns the built-in library, parsed once per process
func Embedded() (*Library, error) {
	embeddedOnce.Do(func() {
		data, err := builtinFS.ReadFile("builtin/default.yaml")
		if err != nil {
			embeddedErr = fmt.Errorf("%w: read embedded library: %v", ErrNoLibrary, err)
			return
		}
		lib, err := Parse(data, "embedded", nil)
		if err != nil {
			embeddedErr = fmt.Errorf("%w: %v", ErrNoLibrary, err)
			return
		}
		embeddedLib = lib
	})
	return embeddedLib, embeddedErr
}

// DefaultPaths returns the candidate library locations after any configured ones
func DefaultPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".contradicta", "playbooks.yaml"))
	}
	return append(paths, "playbooks.yaml")
}

// Load returns the first library found among paths, layered over the embedded
// default so every conflict type resolves. Missing files are skipped; when none
// exists the embedded library is returned.
func Load(paths []string) (*Library, error) {
	base, err := Embedded()
	if err != nil {
		return nil, err
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read playbook library %s: %w", path, err)
		}
		lib, err := Parse(data, path, base)
		if err != nil {
			return nil, fmt.Errorf("failed to parse playbook library %s: %w", path, err)
		}
		return lib, nil
	}
	return base, nil
}

// Parse builds a library from YAML. Entries of base are kept unless data
// overrides them. A malformed entry is dropped with a warning so its type
// resolves to the fallback entry; a malformed fallback override leaves the
// base fallback in place. Only text that is not a YAML mapping, or a library
// left without any valid fallback, is an error.
func Parse(data []byte, source string, base *Library) (*Library, error) {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	lib := &Library{entries: make(map[string]Entry), source: source}
	if base != nil {
		for k, v := range base.entries {
			lib.entries[k] = v
		}
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if key != FallbackKey && !model.ConflictType(key).Valid() {
			lib.warnings = append(lib.warnings, fmt.Sprintf("%s: unknown conflict type", key))
			continue
		}

		node := raw[key]
		var entry Entry
		err := node.Decode(&entry)
		if err == nil {
			err = validate(entry)
		}
		if err != nil {
			if _, inBase := lib.entries[key]; inBase && key == FallbackKey {
				lib.warnings = append(lib.warnings, fmt.Sprintf("%s: %v, keeping the %s entry", key, err, base.source))
				continue
			}
			lib.warnings = append(lib.warnings, fmt.Sprintf("%s: %v, using %s", key, err, FallbackKey))
			delete(lib.entries, key)
			continue
		}
		lib.entries[key] = entry
	}

	if _, ok := lib.entries[FallbackKey]; !ok {
		return nil, fmt.Errorf("missing %q entry", FallbackKey)
	}
	return lib, nil
}

func validate(e Entry) error {
	if len(e.CrossExamination.QuestionSet) == 0 {
		return errors.New("empty question_set")
	}
	seq := e.CrossExamination.Sequence
	if len(seq) == 0 {
		return nil
	}
	explosions := 0
	for _, st := range seq {
		if !st.Valid() || st == model.StepDoNotAsk {
			return fmt.Errorf("invalid sequence step %q", st)
		}
		if st == model.StepExplosion {
			explosions++
		}
	}
	if explosions != 1 {
		return fmt.Errorf("sequence needs exactly one explosion step, has %d", explosions)
	}
	return nil
}
