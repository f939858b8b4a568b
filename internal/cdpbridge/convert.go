package cdpbridge

import (
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/axlive/axtree"
)

// ExternalID namespaces a CDP AXNodeId by page: AXNodeIds are only unique
// within one document.
func ExternalID(pageID string, id proto.AccessibilityAXNodeID) string {
	return pageID + ":" + string(id)
}

// Convert maps a CDP AX node onto arena attributes. CDP exposes no bounds
// in the AX domain, so Location stays zero and visibility comes from the
// hidden property.
func Convert(pageID string, n *proto.AccessibilityAXNode) axtree.Attrs {
	a := axtree.Attrs{
		ExternalID: ExternalID(pageID, n.NodeID),
		Role:       axtree.ParseRole(str(n.Role)),
		Name:       str(n.Name),
		Value:      str(n.Value),
	}

	var liveRoot proto.DOMBackendNodeID
	for _, p := range n.Properties {
		if p == nil || p.Value == nil {
			continue
		}
		v := p.Value
		switch p.Name {
		case proto.AccessibilityAXPropertyNameFocusable:
			a.State = set(a.State, axtree.StateFocusable, v.Value.Bool())
		case proto.AccessibilityAXPropertyNameFocused:
			a.State = set(a.State, axtree.StateFocused, v.Value.Bool())
		case proto.AccessibilityAXPropertyNameHidden:
			a.State = set(a.State, axtree.StateOffscreen, v.Value.Bool())
		case proto.AccessibilityAXPropertyNameDisabled:
			a.State = set(a.State, axtree.StateDisabled, v.Value.Bool())
		case proto.AccessibilityAXPropertyNameLive:
			if s := str(v); s != "off" {
				a.ContainerLiveStatus = s
			}
		case proto.AccessibilityAXPropertyNameRelevant:
			a.ContainerLiveRelevant = axtree.ParseRelevant(str(v))
		case proto.AccessibilityAXPropertyNameBusy:
			a.ContainerLiveBusy = v.Value.Bool()
		case proto.AccessibilityAXPropertyNameAtomic:
			a.ContainerLiveAtomic = v.Value.Bool()
		case proto.AccessibilityAXPropertyNameRoot:
			if len(v.RelatedNodes) > 0 && v.RelatedNodes[0] != nil {
				liveRoot = v.RelatedNodes[0].BackendDOMNodeID
			}
		}
	}

	if a.ContainerLiveStatus != "" && a.ContainerLiveRelevant == 0 {
		a.ContainerLiveRelevant = axtree.DefaultRelevant
	}
	// The region root's own aria-atomic is the container's.
	if liveRoot != 0 && liveRoot == n.BackendDOMNodeID {
		a.LiveAtomic = a.ContainerLiveAtomic
	}
	return a
}

func set(s, f axtree.State, on bool) axtree.State {
	if on {
		return s.With(f)
	}
	return s
}

func str(v *proto.AccessibilityAXValue) string {
	if v == nil || v.Value.Nil() {
		return ""
	}
	return v.Value.Str()
}
