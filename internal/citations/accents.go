package citations

import "strings"

// Substitution maps one escaped LaTeX accent sequence to an HTML entity.
type Substitution struct {
	Pattern     string
	Replacement string
}

// Accents is the fixed accent table. Patterns are pairwise disjoint, so the
// order of application does not change the result.
var Accents = []Substitution{
	{`\"u`, "&uuml;"},
	{`\"a`, "&auml;"},
	{`\"o`, "&ouml;"},
	{`\'e`, "&eacute;"},
	{`\"U`, "&Uuml;"},
	{`\"A`, "&Auml;"},
	{`\"O`, "&Ouml;"},
	{`\'E`, "&Eacute;"},
	{`\"{u}`, "&uuml;"},
	{`\"{a}`, "&auml;"},
	{`\"{o}`, "&ouml;"},
	{`\'{e}`, "&eacute;"},
	{`\"{U}`, "&Uuml;"},
	{`\"{A}`, "&Auml;"},
	{`\"{O}`, "&Ouml;"},
	{`\'{E}`, "&Eacute;"},
}

// TexToHTML replaces every accent sequence in s with its HTML entity. Each
// pattern is tried brace-delimited first, then bare.
func TexToHTML(s string) string {
	for _, sub := range Accents {
		s = strings.ReplaceAll(s, "{"+sub.Pattern+"}", sub.Replacement)
		s = strings.ReplaceAll(s, sub.Pattern, sub.Replacement)
	}
	return s
}
