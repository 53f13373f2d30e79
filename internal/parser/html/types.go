package html

// RegionType identifies where CSS was found in an HTML document
type RegionType int

const (
	// UnknownRegion is the zero value
	UnknownRegion RegionType = iota
	// StyleTag is the text of a <style> element
	StyleTag
	// StyleAttribute is the value of a style="..." attribute
	StyleAttribute
)

// Region is a run of CSS text inside an HTML document
type Region struct {
	Content   string
	StartLine uint
	StartCol  uint
	Type      RegionType
}
