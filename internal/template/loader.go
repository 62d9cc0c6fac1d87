package template

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	ledgererrors "github.com/taskledger/taskledger/internal/errors"
)

// Loader reads task templates from a directory of YAML files.
type Loader struct {
	dir string
}

// NewLoader creates a loader rooted at the given templates directory,
// typically .taskledger/templates under the project root.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// LoadFromFile loads and validates a single template file.
func (l *Loader) LoadFromFile(path string) (*Template, error) {
	data, err := os.ReadFile(path) //nolint:gosec // #nosec G304 - path comes from the project templates directory
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ledgererrors.ErrTemplateNotFound, path)
		}
		return nil, ledgererrors.Wrap(err, "reading template file")
	}

	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ledgererrors.ErrTemplateParse, path, err)
	}
	if tmpl.Name == "" {
		// Fall back to the file name so bare templates stay addressable.
		tmpl.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := tmpl.Validate(); err != nil {
		return nil, ledgererrors.Wrapf(err, "template %s", path)
	}
	return &tmpl, nil
}

// LoadAll loads every *.yaml/*.yml template in the loader's directory,
// sorted by name. A missing directory yields an empty result.
func (l *Loader) LoadAll() ([]*Template, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, ledgererrors.Wrap(err, "reading templates directory")
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		tmpl, err := l.LoadFromFile(filepath.Join(l.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
	return templates, nil
}

// Registry provides name-keyed access to loaded templates.
type Registry struct {
	templates map[string]*Template
}

// NewRegistry builds a registry from loaded templates. Later entries with
// a duplicate name replace earlier ones.
func NewRegistry(templates []*Template) *Registry {
	reg := &Registry{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		reg.templates[t.Name] = t
	}
	return reg
}

// Get retrieves a template by name. The result is a clone, safe to modify.
func (r *Registry) Get(name string) (*Template, error) {
	t, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledgererrors.ErrTemplateNotFound, name)
	}
	return t.Clone(), nil
}

// List returns all templates sorted by name, as clones.
func (r *Registry) List() []*Template {
	out := make([]*Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
