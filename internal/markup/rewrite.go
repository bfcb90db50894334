package markup

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/yungbote/advanced-rating/internal/domain/rating"
)

const exportAttr = "data-advanced-rating-export"

type exportButton struct {
	format string
	label  string
}

var exportButtons = []exportButton{
	{format: "json", label: "Export Ratings JSON"},
	{format: "csv", label: "Export Ratings CSV"},
}

// RewritePage converts every rating container of a full page and adds the
// export buttons to #header (or body). Rewriting an already rewritten page
// leaves it as it was.
func RewritePage(r io.Reader, w io.Writer) ([]rating.WidgetState, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	states := RewriteTree(doc)
	if err := html.Render(w, doc); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return states, nil
}

func RewriteTree(doc *html.Node) []rating.WidgetState {
	containers := Containers(doc)
	states := make([]rating.WidgetState, 0, len(containers))
	for _, c := range containers {
		st := deriveRendered(c)
		ReplaceContainer(c, st)
		states = append(states, st)
	}
	addExportButtons(doc)
	return states
}

// deriveRendered reads state from either the host star markup or a control
// this package already rendered.
func deriveRendered(container *html.Node) rating.WidgetState {
	sel := findFirst(container, func(n *html.Node) bool { return hasClass(n, SelectClass) })
	if sel == nil {
		return DeriveState(container)
	}
	st := rating.WidgetState{
		EntityType: attr(sel, "data-entity-type"),
		EntityID:   attr(sel, "data-entity-id"),
	}
	if bar := findFirst(container, func(n *html.Node) bool { return hasClass(n, BarClass) }); bar != nil {
		st.IsRated = backgroundOf(attr(bar, "style")) != UnratedBackground
	}
	if fill := findFirst(container, func(n *html.Node) bool { return hasClass(n, FillClass) }); fill != nil {
		st.Percentage = percentageFromStyle(attr(fill, "style"))
	}
	return st
}

func backgroundOf(s string) string {
	m := backgroundPattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

func addExportButtons(doc *html.Node) {
	if findFirst(doc, func(n *html.Node) bool { return attr(n, exportAttr) != "" }) != nil {
		return
	}
	host := findFirst(doc, func(n *html.Node) bool { return n.Type == html.ElementNode && attr(n, "id") == "header" })
	if host == nil {
		host = findFirst(doc, func(n *html.Node) bool { return isElement(n, atom.Body) })
	}
	if host == nil {
		return
	}
	for _, b := range exportButtons {
		btn := element(atom.Button,
			"type", "button",
			exportAttr, b.format,
			"style", style("margin", "2px"),
		)
		btn.AppendChild(text(b.label))
		host.AppendChild(btn)
	}
}
