package render

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"unicode/utf8"

	"resume-builder/internal/model"
)

const fileSuffix = ".gohtml"

//go:embed templates
var embedded embed.FS

var funcs = template.FuncMap{
	"join": strings.Join,
}

// htmlStore holds one parsed template set per variant. Files under
// partials/ are shared by every variant.
type htmlStore struct {
	base     map[string]string
	combined map[model.Template]*template.Template
}

func loadHTMLStore(fsys fs.FS, root string) (*htmlStore, error) {
	s := &htmlStore{
		base:     make(map[string]string),
		combined: make(map[model.Template]*template.Template),
	}
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(name, fileSuffix) {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		if !utf8.Valid(data) {
			return fmt.Errorf("template %s is not valid UTF-8", p)
		}
		key := strings.TrimSuffix(strings.TrimPrefix(p, root+"/"), fileSuffix)
		if _, exists := s.base[key]; exists {
			return fmt.Errorf("duplicate template key %s", key)
		}
		s.base[key] = string(data)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, v := range model.Templates() {
		src, ok := s.base[string(v)]
		if !ok {
			return nil, fmt.Errorf("missing template for variant %s", v)
		}
		t, err := template.New(string(v)).Funcs(funcs).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", v, err)
		}
		for key, partial := range s.base {
			if path.Dir(key) != "partials" {
				continue
			}
			if _, err := t.New(key).Parse(partial); err != nil {
				return nil, fmt.Errorf("parse %s for %s: %w", key, v, err)
			}
		}
		s.combined[v] = t
	}
	return s, nil
}

func (s *htmlStore) lookup(v model.Template) (*template.Template, bool) {
	t, ok := s.combined[v]
	return t, ok
}
