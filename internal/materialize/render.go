package materialize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"go/format"
	"go/token"
	"strconv"
	"strings"
	"text/template"
)

const tsModule = `// Mock CSV files for testing and development
// Each file contains realistic data with effect size, standard error, sample size, and study ID

export const mockCsvFiles = [
{{- range $i, $e := .Entries}}{{if $i}},{{end}}
  {
    name: {{str $e.Name}},
    content: ` + "`{{tpl $e.Content}}`" + `,
    filename: {{str $e.Filename}},
    original_filename: {{str $e.OriginalFilename}},
  }
{{- end}}
];

export const getRandomMockCsvFile = () => {
  const randomIndex = Math.floor(Math.random() * mockCsvFiles.length);
  return mockCsvFiles[randomIndex];
};
`

const goModule = `// Code generated by mockcsv. DO NOT EDIT.

// Package {{.Package}} holds mock CSV files for testing and development.
// Each file contains effect size, standard error, sample size and study ID.
package {{.Package}}

import "math/rand/v2"

// MockCSVFile is one generated dataset.
type MockCSVFile struct {
	Name             string
	Content          string
	Filename         string
	OriginalFilename string
}

// MockCSVFiles lists every generated dataset.
var MockCSVFiles = []MockCSVFile{
{{- range .Entries}}
	{
		Name:             {{gostr .Name}},
		Content:          {{gostr .Content}},
		Filename:         {{gostr .Filename}},
		OriginalFilename: {{gostr .OriginalFilename}},
	},
{{- end}}
}

// RandomMockCSVFile returns a uniformly random element of MockCSVFiles.
func RandomMockCSVFile() MockCSVFile {
	return MockCSVFiles[rand.IntN(len(MockCSVFiles))]
}
`

var templateLiteral = strings.NewReplacer("\\", "\\\\", "`", "\\`", "${", "\\${")

var moduleFuncs = template.FuncMap{
	"str":   jsString,
	"tpl":   templateLiteral.Replace,
	"gostr": goString,
}

var (
	tsTemplate = template.Must(template.New("ts").Funcs(moduleFuncs).Parse(tsModule))
	goTemplate = template.Must(template.New("go").Funcs(moduleFuncs).Parse(goModule))
)

type moduleData struct {
	Package string
	Entries []Entry
}

// RenderModule renders entries in opts.Format.
func RenderModule(entries []Entry, opts Options) ([]byte, error) {
	opts = withDefaults(opts)
	data := moduleData{Package: opts.Package, Entries: entries}

	switch opts.Format {
	case FormatTS:
		var buf bytes.Buffer
		if err := tsTemplate.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("render ts module: %w", err)
		}
		return buf.Bytes(), nil

	case FormatGo:
		if !token.IsIdentifier(opts.Package) {
			return nil, fmt.Errorf("invalid go package name %q", opts.Package)
		}
		var buf bytes.Buffer
		if err := goTemplate.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("render go module: %w", err)
		}
		src, err := format.Source(buf.Bytes())
		if err != nil {
			return nil, fmt.Errorf("format go module: %w", err)
		}
		return src, nil

	case FormatJSON:
		if entries == nil {
			entries = []Entry{}
		}
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("render json module: %w", err)
		}
		return append(out, '\n'), nil
	}

	return nil, fmt.Errorf("unknown module format %q", opts.Format)
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// goString prefers a raw string so multi-line content stays readable.
func goString(s string) string {
	if strconv.CanBackquote(strings.ReplaceAll(s, "\n", "")) {
		return "`" + s + "`"
	}
	return strconv.Quote(s)
}
