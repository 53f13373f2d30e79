package css

// Position is a zero-based line and byte column in a document
type Position struct {
	Line   uint
	Column uint
}

// Range spans two positions in a document
type Range struct {
	Start Position
	End   Position
}

// Declaration is a custom property declaration such as `--from: #09F;`
type Declaration struct {
	Name string
	// Value is the declared text with surrounding whitespace and any
	// !important flag removed. It may contain var() references.
	Value     string
	Important bool
	Range     Range
}

// Reference is a var() call found anywhere in a stylesheet
type Reference struct {
	Name     string
	Fallback *string
	Range    Range
}

// Sheet holds what a parse found, in document order
type Sheet struct {
	Declarations []Declaration
	References   []Reference
}

// Append adds another sheet's findings after this one's
func (s *Sheet) Append(other *Sheet) {
	if other == nil {
		return
	}
	s.Declarations = append(s.Declarations, other.Declarations...)
	s.References = append(s.References, other.References...)
}

// Properties flattens the declarations into name → value. Later
// declarations win, except that a normal declaration never overrides an
// important one.
func (s *Sheet) Properties() map[string]string {
	props := make(map[string]string, len(s.Declarations))
	important := make(map[string]bool)
	for _, d := range s.Declarations {
		if important[d.Name] && !d.Important {
			continue
		}
		props[d.Name] = d.Value
		if d.Important {
			important[d.Name] = true
		}
	}
	return props
}

// Offset moves every range in the sheet by a region's start. The first line
// of the region is shifted by column as well as line.
func (s *Sheet) Offset(line, column uint) {
	for i := range s.Declarations {
		s.Declarations[i].Range = s.Declarations[i].Range.offset(line, column)
	}
	for i := range s.References {
		s.References[i].Range = s.References[i].Range.offset(line, column)
	}
}

func (r Range) offset(line, column uint) Range {
	r.Start = r.Start.offset(line, column)
	r.End = r.End.offset(line, column)
	return r
}

func (p Position) offset(line, column uint) Position {
	if p.Line == 0 {
		p.Column += column
	}
	p.Line += line
	return p
}
