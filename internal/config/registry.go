package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/viper"

	"github.com/infogrep/infogrep/internal/patterns"
)

// RegistryFile maps pattern selectors to pattern files.
const RegistryFile = AppName + ".patterns.json"

// DefaultSelector is used when no selector is given.
const DefaultSelector = "secrets"

// defaultRegistry maps the bundled selectors to their files under the
// default-patterns directory.
var defaultRegistry = map[string]string{
	"secrets":  filepath.ToSlash(filepath.Join(patterns.DefaultDir, "rules-stable.yml")),
	"pii":      filepath.ToSlash(filepath.Join(patterns.DefaultDir, "pii-stable.yml")),
	"gitleaks": filepath.ToSlash(filepath.Join(patterns.DefaultDir, "gitleaks.yml")),
}

// GitleaksFile is the bundled gitleaks conversion written at bootstrap.
const GitleaksFile = "gitleaks.yml"

// ErrUnknownSelector is returned by Resolve for names not in the registry.
var ErrUnknownSelector = errors.New("unknown pattern selector")

// Registry is the selector table stored in the config directory. Selectors
// are case-insensitive; relative paths resolve against Dir.
type Registry struct {
	Dir     string
	Entries map[string]string
}

func registryPath(dir string) string { return filepath.Join(dir, RegistryFile) }

// LoadRegistry reads the registry in dir.
func LoadRegistry(dir string) (Registry, error) {
	r := Registry{Dir: dir, Entries: map[string]string{}}
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	v.SetConfigFile(registryPath(dir))
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return r, fmt.Errorf("read pattern registry: %w", err)
	}
	for _, k := range v.AllKeys() {
		if p := v.GetString(k); p != "" {
			r.Entries[strings.ToLower(k)] = p
		}
	}
	return r, nil
}

// Names returns the selectors in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r.Entries))
	for n := range r.Entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the absolute pattern-file path for selector.
func (r Registry) Resolve(selector string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(selector))
	if key == "" {
		key = DefaultSelector
	}
	p, ok := r.Entries[key]
	if !ok {
		return "", fmt.Errorf("%w %q (known: %s)", ErrUnknownSelector, selector, strings.Join(r.Names(), ", "))
	}
	p = filepath.FromSlash(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.Dir, p)
	}
	return p, nil
}

// Add registers selector name for path after checking the file parses, and
// persists the registry. The file is re-read under the lock so concurrent
// adds keep each other's entries.
func (r *Registry) Add(name, path string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || strings.ContainsAny(name, " \t:") {
		return fmt.Errorf("invalid selector name %q", name)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := patterns.Load(abs); err != nil {
		return err
	}

	p := registryPath(r.Dir)
	return withLock(p, func() error {
		entries := map[string]string{}
		if _, err := os.Stat(p); err == nil {
			cur, err := LoadRegistry(r.Dir)
			if err != nil {
				return err
			}
			entries = cur.Entries
		}
		entries[name] = abs
		data, err := encodeEntries(entries)
		if err != nil {
			return err
		}
		if err := atomicWrite(p, data); err != nil {
			return err
		}
		r.Entries = entries
		return nil
	})
}

// Save writes the registry atomically while holding a lock on it.
func (r Registry) Save() error {
	data, err := encodeEntries(r.Entries)
	if err != nil {
		return err
	}
	return LockAndWrite(registryPath(r.Dir), data)
}

func encodeEntries(entries map[string]string) ([]byte, error) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// EnsureDefaults creates dir, the bundled pattern files and the registry when
// they are missing. Existing files are left untouched.
func EnsureDefaults(dir string) (Registry, error) {
	defDir := filepath.Join(dir, patterns.DefaultDir)
	if err := os.MkdirAll(defDir, 0o755); err != nil {
		return Registry{}, fmt.Errorf("create %s: %w", defDir, err)
	}
	for name, data := range patterns.Defaults() {
		if err := writeIfMissing(filepath.Join(defDir, name), func() ([]byte, error) { return data, nil }); err != nil {
			return Registry{}, err
		}
	}
	err := writeIfMissing(filepath.Join(defDir, GitleaksFile), func() ([]byte, error) {
		set, err := patterns.DefaultGitleaks()
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := patterns.Encode(&buf, set); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		return Registry{}, err
	}

	if _, err := os.Stat(registryPath(dir)); errors.Is(err, fs.ErrNotExist) {
		r := Registry{Dir: dir, Entries: map[string]string{}}
		for k, v := range defaultRegistry {
			r.Entries[k] = v
		}
		if err := r.Save(); err != nil {
			return Registry{}, err
		}
	}
	return LoadRegistry(dir)
}

func writeIfMissing(path string, content func() ([]byte, error)) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	data, err := content()
	if err != nil {
		return fmt.Errorf("prepare %s: %w", filepath.Base(path), err)
	}
	return LockAndWrite(path, data)
}

// LockAndWrite takes an exclusive lock on path+".lock" and replaces path
// with data through a temp file and rename.
func LockAndWrite(path string, data []byte) error {
	return withLock(path, func() error {
		return atomicWrite(path, data)
	})
}

// withLock runs fn while holding an exclusive lock on path+".lock".
func withLock(path string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", filepath.Dir(path), err)
	}
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer lock.Unlock()
	return fn()
}

func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
