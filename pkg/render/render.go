package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

type Format string

const (
	FormatJSON   Format = "json"
	FormatText   Format = "text"
	FormatPretty Format = "pretty"
	FormatYAML   Format = "yaml"
)

var ValidFormats = []Format{FormatJSON, FormatText, FormatPretty, FormatYAML}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatText, FormatPretty, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %s (valid: json, text, pretty, yaml)", s)
	}
}

// Renderer turns a list of rows into one of the output formats. Structured
// formats (json, yaml) encode Data directly; text and pretty need the
// matching formatter.
type Renderer[T any] struct {
	Data         []T
	TextFormat   func(T) string
	PrettyFormat func([]T) string
}

func (r Renderer[T]) Render(format Format) (string, error) {
	switch format {
	case FormatJSON:
		return r.renderJSON()
	case FormatYAML:
		return r.renderYAML()
	case FormatPretty:
		return r.renderPretty()
	case FormatText:
		return r.renderText()
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func (r Renderer[T]) renderPretty() (string, error) {
	if r.PrettyFormat == nil {
		return "", fmt.Errorf("pretty format not defined for this type")
	}
	return r.PrettyFormat(r.Data), nil
}

func (r Renderer[T]) renderJSON() (string, error) {
	data := r.Data
	if data == nil {
		data = []T{}
	}
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (r Renderer[T]) renderYAML() (string, error) {
	data := r.Data
	if data == nil {
		data = []T{}
	}
	bytes, err := yaml.Marshal(data)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(bytes), "\n"), nil
}

func (r Renderer[T]) renderText() (string, error) {
	if r.TextFormat == nil {
		return "", fmt.Errorf("text format not defined for this type")
	}

	var lines []string
	for _, item := range r.Data {
		lines = append(lines, r.TextFormat(item))
	}
	return strings.Join(lines, "\n"), nil
}
