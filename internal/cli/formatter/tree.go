package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/scopesync/internal/outline"
	"github.com/charmbracelet/lipgloss"
)

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// RenderOutline renders an assignment outline as an indented tree with
// right-aligned weights. Questions not yet assigned a remote id are marked
// pending.
func RenderOutline(o *outline.Outline) string {
	top := o.TopLevel()
	if len(top) == 0 {
		return Dim("(empty outline)") + "\n"
	}

	type line struct {
		content string
		badge   string
	}
	var lines []line
	widest := 0

	var walk func(qs []*outline.Question, indent string)
	walk = func(qs []*outline.Question, indent string) {
		for i, q := range qs {
			last := i == len(qs)-1
			connector, next := treeBranch, treePipe
			if last {
				connector, next = treeCorner, treeBlank
			}

			id := StyleDim.Render(q.DisplayID())
			if q.IsLocal() {
				id = StyleYellow.Render(q.DisplayID())
			}
			title := q.Title
			if len(q.Children) > 0 {
				title = Bold(title)
			}
			content := indent + connector + id + " " + title
			widest = max(widest, lipgloss.Width(content))
			lines = append(lines, line{
				content: content,
				badge:   StyleBlue.Render(fmt.Sprintf("[ %g pts ]", q.Weight)),
			})
			walk(q.Children, indent+next)
		}
	}
	walk(top, "")

	var b strings.Builder
	for _, l := range lines {
		pad := widest - lipgloss.Width(l.content)
		b.WriteString(l.content + strings.Repeat(" ", pad) + "  " + l.badge + "\n")
	}
	return b.String()
}
