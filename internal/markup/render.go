package markup

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/yungbote/advanced-rating/internal/domain/rating"
)

const (
	FillColor         = "orange"
	RatedBackground   = "lightgray"
	UnratedBackground = "lightblue"

	SelectClass = "advanced-rating-select"
	BarClass    = "advanced-rating-bar"
	FillClass   = "advanced-rating-fill"
)

// BackgroundColor tells "never rated" apart from "rated 0".
func BackgroundColor(st rating.WidgetState) string {
	if st.IsRated {
		return RatedBackground
	}
	return UnratedBackground
}

// RenderControl builds the bar and the selector for st.
func RenderControl(st rating.WidgetState) []*html.Node {
	bar := element(atom.Div,
		"class", BarClass,
		"style", style(
			"display", "flex",
			"width", "200px",
			"height", "17px",
			"background-color", BackgroundColor(st),
			"position", "relative",
		),
	)
	fill := element(atom.Div,
		"class", FillClass,
		"style", style(
			"width", fmt.Sprintf("%d%%", st.Percentage),
			"background-color", FillColor,
			"height", "100%",
		),
	)
	bar.AppendChild(fill)

	sel := element(atom.Select,
		"class", SelectClass,
		"data-entity-type", st.EntityType,
		"data-entity-id", st.EntityID,
		"style", style(
			"position", "relative",
			"top", "-17.25px",
			"left", "0",
			"width", "200px",
			"height", "17px",
			"opacity", "0.5",
			"text-align", "center",
			"background-color", "white",
			"border", "1px solid gray",
			"font-size", "10px",
		),
	)
	if !st.CanSubmit() {
		setAttr(sel, "data-submission", "disabled")
	}
	for _, o := range rating.Options(st.Percentage) {
		v := strconv.Itoa(o.Value)
		opt := element(atom.Option, "value", v)
		if o.Selected {
			setAttr(opt, "selected", "selected")
		}
		opt.AppendChild(text(v))
		sel.AppendChild(opt)
	}
	return []*html.Node{bar, sel}
}

func RenderHTML(st rating.WidgetState) (string, error) {
	var b strings.Builder
	for _, n := range RenderControl(st) {
		if err := html.Render(&b, n); err != nil {
			return "", fmt.Errorf("render control: %w", err)
		}
	}
	return b.String(), nil
}

// ReplaceContainer swaps the star widget inside container for the control.
func ReplaceContainer(container *html.Node, st rating.WidgetState) {
	removeChildren(container)
	setAttr(container, "style", style(
		"height", "17px",
		"overflow", "hidden",
		"vertical-align", "middle",
	))
	for _, n := range RenderControl(st) {
		container.AppendChild(n)
	}
}
