package i18n

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// localeFile is the on-disk shape of a YAML override:
//
//	language: fr
//	messages:
//	  title: "Assistant déchets"
type localeFile struct {
	Language string            `yaml:"language"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog holds the bundles of every supported language.
// It starts from the compiled-in table and can be overridden from YAML files.
type Catalog struct {
	mu       sync.RWMutex
	messages map[string]map[string]string // lang -> key -> text
}

// Default returns a catalog holding a copy of the compiled-in table.
func Default() *Catalog {
	c := &Catalog{messages: make(map[string]map[string]string, len(supported))}
	for _, lang := range supported {
		c.messages[lang] = make(map[string]string, len(Keys))
	}
	for key, langs := range translations {
		for lang, text := range langs {
			if m, ok := c.messages[lang]; ok {
				m[key] = text
			}
		}
	}
	return c
}

// For returns the bundle for lang, or the English bundle when lang is unsupported.
func (c *Catalog) For(lang string) Bundle {
	if !IsSupported(lang) {
		lang = DefaultLang
	}
	t := func(key string) string { return c.Translate(key, lang) }
	return Bundle{
		Lang:        lang,
		Title:       t(KeyTitle),
		Subtitle:    t(KeySubtitle),
		ChangeLang:  t(KeyChangeLang),
		Intro:       t(KeyIntro),
		Example1:    t(KeyExample1),
		Example2:    t(KeyExample2),
		Example3:    t(KeyExample3),
		Tip:         t(KeyTip),
		Placeholder: t(KeyPlaceholder),
		Send:        t(KeySend),
		Disclaimer:  t(KeyDisclaimer),
		Thinking:    t(KeyThinking),
	}
}

// Translate returns the text for key in lang, falling back to English.
// Unknown keys return the key itself so nothing is silently swallowed.
func (c *Catalog) Translate(key, lang string) string {
	if lang == "" {
		lang = DefaultLang
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if text, ok := c.messages[lang][key]; ok {
		return text
	}
	if text, ok := c.messages[DefaultLang][key]; ok {
		return text
	}
	return key
}

// Register overrides messages of one supported language.
func (c *Catalog) Register(lang string, msgs map[string]string) error {
	if !IsSupported(lang) {
		return fmt.Errorf("unsupported language %q", lang)
	}
	for key := range msgs {
		if !slices.Contains(Keys, key) {
			return fmt.Errorf("language %s: unknown key %q", lang, key)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, text := range msgs {
		c.messages[lang][key] = text
	}
	return nil
}

// LoadYAMLDir loads every .yaml/.yml file in dir as an override.
func (c *Catalog) LoadYAMLDir(dir string) error {
	files, err := readLocaleDir(dir)
	if err != nil {
		return err
	}
	for path, lf := range files {
		if err := c.Register(lf.Language, lf.Messages); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// Validate reports every language with an empty display string.
func (c *Catalog) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var problems []string
	for _, lang := range supported {
		for _, key := range Keys {
			if strings.TrimSpace(c.messages[lang][key]) == "" {
				problems = append(problems, lang+"."+key)
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("empty translations: %s", strings.Join(problems, ", "))
	}
	return nil
}

// LintResult describes the YAML files of a locale directory.
type LintResult struct {
	Languages   []string
	MissingKeys map[string][]string
	UnknownKeys map[string][]string
	EmptyKeys   map[string][]string
	Errors      map[string]error // file -> error
}

// HasIssues reports whether anything other than missing keys was found.
// Missing keys are allowed: the compiled-in text is used for them.
func (r *LintResult) HasIssues(strict bool) bool {
	if len(r.Errors) > 0 {
		return true
	}
	for _, keys := range r.UnknownKeys {
		if len(keys) > 0 {
			return true
		}
	}
	for _, keys := range r.EmptyKeys {
		if len(keys) > 0 {
			return true
		}
	}
	if strict {
		for _, keys := range r.MissingKeys {
			if len(keys) > 0 {
				return true
			}
		}
	}
	return false
}

// Lint checks the override files of dir against the known keys.
func Lint(dir string) (*LintResult, error) {
	res := &LintResult{
		MissingKeys: make(map[string][]string),
		UnknownKeys: make(map[string][]string),
		EmptyKeys:   make(map[string][]string),
		Errors:      make(map[string]error),
	}

	files, err := readLocaleDir(dir)
	if err != nil {
		return nil, err
	}

	for path, lf := range files {
		if !IsSupported(lf.Language) {
			res.Errors[path] = fmt.Errorf("unsupported language %q", lf.Language)
			continue
		}
		res.Languages = append(res.Languages, lf.Language)
		for _, key := range Keys {
			text, ok := lf.Messages[key]
			switch {
			case !ok:
				res.MissingKeys[lf.Language] = append(res.MissingKeys[lf.Language], key)
			case strings.TrimSpace(text) == "":
				res.EmptyKeys[lf.Language] = append(res.EmptyKeys[lf.Language], key)
			}
		}
		for key := range lf.Messages {
			if !slices.Contains(Keys, key) {
				res.UnknownKeys[lf.Language] = append(res.UnknownKeys[lf.Language], key)
			}
		}
		sort.Strings(res.UnknownKeys[lf.Language])
	}
	sort.Strings(res.Languages)
	return res, nil
}

func readLocaleDir(dir string) (map[string]localeFile, error) {
	files := make(map[string]localeFile)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		lf, err := readLocaleFile(path)
		if err != nil {
			return fmt.Errorf("read locale file %s: %w", path, err)
		}
		files[path] = lf
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func readLocaleFile(path string) (localeFile, error) {
	var lf localeFile
	data, err := os.ReadFile(path)
	if err != nil {
		return lf, err
	}
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return lf, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if lf.Language == "" {
		return lf, fmt.Errorf("missing 'language' field")
	}
	return lf, nil
}
