package output

import (
	"strings"

	"github.com/hazyhaar/axlive/axtree"
	"github.com/hazyhaar/axlive/internal/msgs"
)

// Renderer turns a node into speech spans.
type Renderer interface {
	Render(t *axtree.Tree, id axtree.NodeID) []string
}

// roleLabels lists the roles that announce themselves after their name.
var roleLabels = map[axtree.Role]string{
	axtree.RoleButton:    msgs.RoleButton,
	axtree.RoleLink:      msgs.RoleLink,
	axtree.RoleCheckBox:  msgs.RoleCheckBox,
	axtree.RoleHeading:   msgs.RoleHeading,
	axtree.RoleTab:       msgs.RoleTab,
	axtree.RoleTextField: msgs.RoleTextField,
	axtree.RoleAlert:     msgs.RoleAlert,
	axtree.RoleImage:     msgs.RoleImage,
	axtree.RoleList:      msgs.RoleList,
}

// structural roles never take their speech from their content: the
// desktop, a window or a document would read out the whole page.
var structural = map[axtree.Role]bool{
	axtree.RoleDesktop:     true,
	axtree.RoleWindow:      true,
	axtree.RoleRootWebArea: true,
	axtree.RoleTabList:     true,
}

// TextRenderer speaks a node's name, its value when distinct, and a
// localized role label for self-announcing roles. A node with neither name
// nor value speaks its descendants' text instead, so a nameless paragraph
// or list item added to a live region reads its content.
type TextRenderer struct {
	printer *msgs.Printer
}

// NewTextRenderer creates a TextRenderer. A nil printer speaks English.
func NewTextRenderer(p *msgs.Printer) *TextRenderer {
	if p == nil {
		p = msgs.NewPrinter("")
	}
	return &TextRenderer{printer: p}
}

func (r *TextRenderer) Render(t *axtree.Tree, id axtree.NodeID) []string {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	var spans []string
	name := strings.TrimSpace(n.Name)
	if name != "" {
		spans = append(spans, name)
	}
	v := strings.TrimSpace(n.Value)
	if v != "" && v != name {
		spans = append(spans, v)
	}
	if name == "" && v == "" && !structural[n.Role] {
		if text := t.JoinedDescendants(id); text != "" {
			spans = append(spans, text)
		}
	}
	if key, ok := roleLabels[n.Role]; ok {
		spans = append(spans, r.printer.Get(key))
	}
	return spans
}
