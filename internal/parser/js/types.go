package js

// Segment is literal template text between ${...} substitutions
type Segment struct {
	Content string
	// StartLine and StartCol locate the segment in the JS/TS source, zero based
	StartLine uint
	StartCol  uint
}

// Template is a css`...` or html`...` tagged template literal
type Template struct {
	// Tag is "css" or "html"
	Tag      string
	Segments []Segment
}
