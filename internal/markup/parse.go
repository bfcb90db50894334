// Package markup reads rating widgets out of catalog-page HTML and writes the
// numeric control back in their place.
package markup

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/yungbote/advanced-rating/internal/domain/rating"
)

const (
	ContainerClass     = "inline-rating"
	CurrentRatingClass = "current-user-rating"
	SetRatingClass     = "set-rating"
)

var (
	entityIDPattern   = regexp.MustCompile(`entity_id=(\d+)`)
	entityTypePattern = regexp.MustCompile(`entity_type=([a-z_]+)(?:&|$)`)
	widthPattern      = regexp.MustCompile(`(?i)(?:^|;)\s*width\s*:\s*([-+]?\d*\.?\d+)`)
	backgroundPattern = regexp.MustCompile(`(?i)(?:^|;)\s*background-color\s*:\s*([a-z]+)`)
)

// ParseSnapshot parses an HTML fragment and returns a synthetic root holding it.
func ParseSnapshot(r io.Reader) (*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(r, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	root := element(atom.Div)
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

// Containers returns every rating container below root, outermost first.
func Containers(root *html.Node) []*html.Node {
	return findAll(root, func(n *html.Node) bool { return hasClass(n, ContainerClass) })
}

// DeriveFromMarkup derives the state of the first rating container in the
// snapshot, or of the snapshot itself when it holds no container element.
// Snapshots of an already converted control are read back as well.
func DeriveFromMarkup(snapshot string) (rating.WidgetState, error) {
	root, err := ParseSnapshot(strings.NewReader(snapshot))
	if err != nil {
		return rating.WidgetState{}, err
	}
	if cs := Containers(root); len(cs) > 0 {
		return deriveRendered(cs[0]), nil
	}
	return deriveRendered(root), nil
}

// DeriveState reads widget state from a rating container. It only looks at
// the markup; calling it twice on the same tree yields the same state.
func DeriveState(container *html.Node) rating.WidgetState {
	var st rating.WidgetState
	if container == nil {
		return st
	}

	cur := findFirst(container, func(n *html.Node) bool { return hasClass(n, CurrentRatingClass) })
	if cur != nil {
		st.IsRated = true
		st.Percentage = percentageFromStyle(attr(cur, "style"))
	}

	link := findFirst(container, func(n *html.Node) bool {
		return isElement(n, atom.A) && hasClass(n, SetRatingClass)
	})
	if link != nil {
		href := attr(link, "href")
		if m := entityIDPattern.FindStringSubmatch(href); m != nil {
			st.EntityID = m[1]
		}
		if m := entityTypePattern.FindStringSubmatch(href); m != nil {
			st.EntityType = m[1]
		}
	}
	return st
}

func percentageFromStyle(s string) int {
	m := widthPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return rating.ClampPercentage(f)
}
