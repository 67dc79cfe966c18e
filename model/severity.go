package model

// Severity orders diagnostics from least to most important.
// SeverityUnknown sorts below every known level.
type Severity uint8

const (
	SeverityUnknown Severity = iota
	SeverityNote
	SeverityInfo
	SeverityWarning
	SeverityError
)

type level struct {
	name  string
	code  string
	color string
}

var levels = [...]level{
	SeverityUnknown: {name: "UNKNOWN", code: "?", color: "#c64600"},
	SeverityNote:    {name: "NOTE", code: "style", color: "#007FFF"},
	SeverityInfo:    {name: "INFO", code: "info", color: "#813d9c"},
	SeverityWarning: {name: "WARN", code: "warning", color: "#f5c200"},
	SeverityError:   {name: "ERROR", code: "error", color: "#c01c28"},
}

// SeverityFromCode maps a shellcheck level code to its severity.
// Unrecognized codes map to SeverityUnknown.
func SeverityFromCode(code string) Severity {
	for s := SeverityNote; s <= SeverityError; s++ {
		if levels[s].code == code {
			return s
		}
	}
	return SeverityUnknown
}

func (s Severity) valid() bool {
	return int(s) < len(levels)
}

// Code returns the level code shellcheck uses for s.
func (s Severity) Code() string {
	if !s.valid() {
		return levels[SeverityUnknown].code
	}
	return levels[s].code
}

// Color returns the hex color used to paint s.
func (s Severity) Color() string {
	if !s.valid() {
		return levels[SeverityUnknown].color
	}
	return levels[s].color
}

func (s Severity) String() string {
	if !s.valid() {
		return levels[SeverityUnknown].name
	}
	return levels[s].name
}

// WorstSeverity returns the highest severity among diags.
// The result for an empty slice is SeverityUnknown; callers check for emptiness first.
func WorstSeverity(diags []Diagnostic) Severity {
	worst := SeverityUnknown
	for i, d := range diags {
		if i == 0 || d.Severity > worst {
			worst = d.Severity
		}
	}
	return worst
}
