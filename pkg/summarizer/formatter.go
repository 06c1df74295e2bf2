package summarizer

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// Formatter renders a Summary into file contents.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc adapts a plain function to Formatter.
type FormatFunc func(summary *Summary) string

// Format calls f.
func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}

// JSONFormatter renders a Summary as indented JSON.
type JSONFormatter struct{}

// Format implements Formatter.
func (JSONFormatter) Format(s *Summary) string {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "{}\n"
	}
	return string(data) + "\n"
}

// ForPath picks a formatter from the file extension: .json gets JSON,
// anything else the given Markdown formatter.
func ForPath(path string, markdown *MarkdownFormatter) Formatter {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSONFormatter{}
	}
	return markdown
}
