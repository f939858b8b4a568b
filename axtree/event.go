package axtree

// ChangeType is the kind of tree mutation reported by a host.
type ChangeType uint8

const (
	NodeCreated ChangeType = iota + 1
	SubtreeCreated
	TextChanged
	NodeRemoved
)

func (c ChangeType) String() string {
	switch c {
	case NodeCreated:
		return "nodeCreated"
	case SubtreeCreated:
		return "subtreeCreated"
	case TextChanged:
		return "textChanged"
	case NodeRemoved:
		return "nodeRemoved"
	default:
		return "unknown"
	}
}

// TreeChange is a single mutation notification. It is consumed once.
// For NodeRemoved the host delivers the change before tombstoning Target.
type TreeChange struct {
	Target NodeID
	Type   ChangeType
}

// IsLiveRegionChange is the host-side filter for live-region observers:
// only mutations whose target sits inside a live region pass.
func IsLiveRegionChange(t *Tree, c TreeChange) bool {
	n := t.Node(c.Target)
	return n != nil && n.ContainerLiveStatus != ""
}
