package citations

import "strings"

// FormatCitation renders the full reference used by cite: markers:
// linked or plain title, author and year, then the journal in italics.
func FormatCitation(r Record) string {
	var b strings.Builder
	if url := r.URL(); url != "" {
		b.WriteString("<a href='" + url + "'>" + r.Title() + "</a>. ")
	} else {
		b.WriteString(r.Title() + ". ")
	}
	b.WriteString(r.Author() + " (" + r.Year() + ").")
	if journal := r.Journal(); journal != "" {
		b.WriteString(" <em>" + journal + "</em>.")
	}
	return TexToHTML(b.String())
}

// FormatReft renders the textual reference used by reft: markers.
func FormatReft(r Record) string {
	return TexToHTML(linked(r, "<em>"+r.Author()+" ("+r.Year()+")</em>"))
}

// FormatRefp renders the parenthetical reference used by refp: markers.
func FormatRefp(r Record) string {
	return TexToHTML("(" + linked(r, "<em>"+r.Author()+"; "+r.Year()+"</em>") + ")")
}

func linked(r Record, inner string) string {
	url := r.URL()
	if url == "" {
		return inner
	}
	return "<a href='" + url + "'>" + inner + "</a>"
}
