package i18n

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var embeddedLocales embed.FS

// Params are the named substitutions of a message template.
type Params map[string]any

type localeFile struct {
	Lang     string            `yaml:"lang"`
	Tag      string            `yaml:"tag"`
	Messages map[string]string `yaml:"messages"`
}

// Localizer renders user-facing prose keyed by message id and language.
type Localizer struct {
	sources   map[Lang]map[string]string
	templates map[Lang]map[string]*template.Template
	amounts   *message.Printer
}

// Load reads the catalogs embedded in the binary.
func Load() (*Localizer, error) {
	return LoadFromFS(embeddedLocales)
}

// LoadFromFS reads every locales/*.yaml file from fsys. The Russian catalog is required.
func LoadFromFS(fsys fs.FS) (*Localizer, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locales: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale files found")
	}
	sort.Strings(paths)

	l := &Localizer{
		sources:   map[Lang]map[string]string{},
		templates: map[Lang]map[string]*template.Template{},
		amounts:   message.NewPrinter(language.English),
	}
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := l.add(path, data); err != nil {
			return nil, err
		}
	}
	if _, ok := l.sources[Default]; !ok {
		return nil, fmt.Errorf("default locale %s is missing", Default)
	}
	return l, nil
}

func (l *Localizer) add(path string, data []byte) error {
	var file localeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	lang, ok := ParseLang(file.Lang)
	if !ok {
		return fmt.Errorf("%s: unknown lang %q", path, file.Lang)
	}
	tag, err := language.Parse(file.Tag)
	if err != nil {
		return fmt.Errorf("%s: parse tag %q: %w", path, file.Tag, err)
	}
	if base, _ := tag.Base(); base != mustBase(lang.Tag()) {
		return fmt.Errorf("%s: tag %s does not match lang %s", path, tag, lang)
	}
	if _, exists := l.sources[lang]; exists {
		return fmt.Errorf("%s: lang %s already loaded", path, lang)
	}
	if len(file.Messages) == 0 {
		return fmt.Errorf("%s: messages are required", path)
	}

	sources := make(map[string]string, len(file.Messages))
	templates := make(map[string]*template.Template, len(file.Messages))
	for key, text := range file.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("%s: blank message key", path)
		}
		tmpl, err := template.New(key).Option("missingkey=error").Parse(text)
		if err != nil {
			return fmt.Errorf("%s: template %q: %w", path, key, err)
		}
		sources[key] = text
		templates[key] = tmpl
	}
	l.sources[lang] = sources
	l.templates[lang] = templates
	return nil
}

func mustBase(tag language.Tag) language.Base {
	base, _ := tag.Base()
	return base
}

// Text renders message key in lang. A key missing from lang falls back to the
// default language, then to the key itself. A template that fails to execute
// yields its raw source.
func (l *Localizer) Text(lang Lang, key string, params ...Params) string {
	tmpl, source, ok := l.lookup(lang, key)
	if !ok {
		return key
	}
	var data Params
	if len(params) > 0 {
		data = params[0]
	}
	if data == nil {
		data = Params{}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return source
	}
	return buf.String()
}

// Has reports whether key is defined for lang or the default language.
func (l *Localizer) Has(lang Lang, key string) bool {
	_, _, ok := l.lookup(lang, key)
	return ok
}

func (l *Localizer) lookup(lang Lang, key string) (*template.Template, string, bool) {
	if tmpl, ok := l.templates[lang][key]; ok {
		return tmpl, l.sources[lang][key], true
	}
	if tmpl, ok := l.templates[Default][key]; ok {
		return tmpl, l.sources[Default][key], true
	}
	return nil, "", false
}

// Amount formats a whole-currency amount with digit grouping, e.g. 12,500.
func (l *Localizer) Amount(n int64) string {
	return l.amounts.Sprintf("%d", n)
}
