// Package labels renders semantic label keys ("fit.perfect",
// "distribution.bell", ...) as localized text.
package labels

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the locale every other catalog falls back to.
const BaseLocale = "en"

//go:embed locales/*.yaml
var embeddedFS embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog holds messages for a set of locales.
//
// A Catalog is immutable after loading and safe for concurrent use.
type Catalog struct {
	locales  []string // matcher order; BaseLocale first
	messages map[string]map[string]string
	matcher  language.Matcher
}

// Load returns the catalog embedded in the binary.
//
// Postcondition: Returns a Catalog containing BaseLocale, or a non-nil error.
func Load() (*Catalog, error) {
	return LoadFS(embeddedFS)
}

// LoadFS loads every locales/*.yaml file in fsys.
//
// Precondition: fsys must contain locales/<BaseLocale>.yaml.
// Postcondition: Returns a Catalog or a non-nil error naming the bad file.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	c := &Catalog{messages: map[string]map[string]string{}}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		if err := c.add(p, file); err != nil {
			return nil, err
		}
	}
	if _, ok := c.messages[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}

	c.locales = make([]string, 0, len(c.messages))
	c.locales = append(c.locales, BaseLocale)
	for loc := range c.messages {
		if loc != BaseLocale {
			c.locales = append(c.locales, loc)
		}
	}
	sort.Strings(c.locales[1:])

	tags := make([]language.Tag, len(c.locales))
	for i, loc := range c.locales {
		tags[i] = language.Make(loc)
	}
	c.matcher = language.NewMatcher(tags)
	return c, nil
}

func (c *Catalog) add(p string, file catalogFile) error {
	fromPath := strings.TrimSuffix(path.Base(p), path.Ext(p))
	locale := strings.TrimSpace(file.Locale)
	if locale == "" {
		return fmt.Errorf("catalog %s: locale is required", p)
	}
	if locale != fromPath {
		return fmt.Errorf("catalog %s: locale %q must match file name %q", p, locale, fromPath)
	}
	if _, err := language.Parse(locale); err != nil {
		return fmt.Errorf("catalog %s: invalid locale %q: %w", p, locale, err)
	}
	if len(file.Messages) == 0 {
		return fmt.Errorf("catalog %s: messages map is required", p)
	}
	msgs := make(map[string]string, len(file.Messages))
	for k, v := range file.Messages {
		key := strings.TrimSpace(k)
		if key == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", p)
		}
		msgs[key] = v
	}
	c.messages[locale] = msgs
	return nil
}

// Locales returns the loaded locales, BaseLocale first.
func (c *Catalog) Locales() []string {
	return append([]string(nil), c.locales...)
}

// Match returns the loaded locale that best serves the BCP 47 tag, or
// BaseLocale when nothing matches or the tag is malformed.
func (c *Catalog) Match(locale string) string {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return BaseLocale
	}
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return BaseLocale
	}
	return c.locales[idx]
}

// Text renders key in the best match for locale. Missing keys fall back to
// BaseLocale and then to the key itself. Each "{{name}}" placeholder is
// replaced by fmt.Sprint(args[name]); unknown placeholders are left as is.
func (c *Catalog) Text(locale, key string, args map[string]any) string {
	msg, ok := c.messages[c.Match(locale)][key]
	if !ok {
		msg, ok = c.messages[BaseLocale][key]
	}
	if !ok {
		return key
	}
	return substitute(msg, args)
}

// Keys returns the sorted message keys of one loaded locale.
func (c *Catalog) Keys(locale string) []string {
	msgs := c.messages[locale]
	keys := make([]string, 0, len(msgs))
	for k := range msgs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func substitute(msg string, args map[string]any) string {
	if len(args) == 0 || !strings.Contains(msg, "{{") {
		return msg
	}
	pairs := make([]string, 0, 2*len(args))
	for name, v := range args {
		pairs = append(pairs, "{{"+name+"}}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}
