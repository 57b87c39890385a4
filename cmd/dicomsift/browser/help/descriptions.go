package help

// HelpText contains information about a field
type HelpText struct {
	Title       string
	Description string
	Details     string
}

// Texts contains help for the copy form fields, keyed by field key.
var Texts = map[string]HelpText{
	"naming": {
		Title:       "FOLDER NAMING",
		Description: "How the folder holding each copied series is named.",
		Details: `Original - the series description (e.g. "T1 AX")
Custom   - one name for every selected series
Prefixed - a prefix followed by the description (e.g. "CT_T1 AX")`,
	},
	"custom": {
		Title:       "CUSTOM NAME",
		Description: "Folder name used for every selected series.",
		Details:     "Series that share a source folder end up in the same destination folder.",
	},
	"prefix": {
		Title:       "PREFIX",
		Description: "Text put directly before each series description.",
		Details:     "No separator is added: include one yourself (e.g. \"CT_\").",
	},
	"destination": {
		Title:       "DESTINATION",
		Description: "Folder the series are copied into.",
		Details: `Files keep their folder relative to the scanned root:
<destination>/<relative folder>/<series folder>/<file>
Leave empty to cancel. Existing files are overwritten.`,
	},
}
