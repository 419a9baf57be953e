package hierarchy

// CompatTable maps a container element type to the child types it may
// claim. Types absent from the table can never be containers; types
// absent from every child set can still appear as roots.
type CompatTable map[string]map[string]bool

// DefaultTable covers the element types the extraction pipeline emits.
func DefaultTable() CompatTable {
	return CompatTable{
		"Table":     childSet("TableCell", "Paragraph", "Line", "Word"),
		"TableCell": childSet("Paragraph", "Line", "Word"),
		"Figure":    childSet("SectionHeader", "Caption", "Text", "Line", "Word"),
		"Paragraph": childSet("Line", "Word"),
		"List":      childSet("ListItem", "Line", "Word"),
		"ListItem":  childSet("Line", "Word"),
		"Line":      childSet("Word"),
	}
}

func childSet(types ...string) map[string]bool {
	s := make(map[string]bool, len(types))
	for _, t := range types {
		s[t] = true
	}
	return s
}
