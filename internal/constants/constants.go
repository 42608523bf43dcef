package constants

// SyntaxTheme is the Chroma theme used by the source view when none is configured.
//
// Dark themes that read well in terminals: github-dark, monokai, dracula, nord,
// gruvbox, onedark, vulcan. Light: github, solarized-light, xcode.
const SyntaxTheme = "github-dark"

// DefaultTemplate seeds an empty configuration.
const DefaultTemplate = "template 1"

// NewTemplate is the value the panel appends.
const NewTemplate = "template"

// DBFile and LogFile live in the data directory.
const (
	DBFile  = "tplsel.db"
	LogFile = "tplsel.log"
)
