package highlight

import (
	"path/filepath"
	"strings"
)

// DetectLanguage returns the Chroma language for a document or template list
// file based on its extension.
func DetectLanguage(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return "html"
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	case ".txt", "":
		return "text"
	}
	return "text"
}
