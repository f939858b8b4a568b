// Package axtree models the accessibility tree that hosts own and the
// navigation and announcement code reads. Nodes live in an arena indexed by
// NodeID; relations between nodes are index lookups, never owning pointers.
package axtree

import "strings"

// Role is the semantic type of a node.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleDesktop
	RoleWindow
	RoleRootWebArea
	RoleTab
	RoleTabList
	RoleButton
	RoleLink
	RoleStaticText
	RoleTextField
	RoleCheckBox
	RoleHeading
	RoleList
	RoleListItem
	RoleStatus
	RoleAlert
	RoleLog
	RoleTimer
	RoleMarquee
	RoleImage
	RoleParagraph
	RoleGeneric
	RoleGroup
)

var roleNames = [...]string{
	RoleUnknown:     "unknown",
	RoleDesktop:     "desktop",
	RoleWindow:      "window",
	RoleRootWebArea: "rootWebArea",
	RoleTab:         "tab",
	RoleTabList:     "tabList",
	RoleButton:      "button",
	RoleLink:        "link",
	RoleStaticText:  "staticText",
	RoleTextField:   "textField",
	RoleCheckBox:    "checkBox",
	RoleHeading:     "heading",
	RoleList:        "list",
	RoleListItem:    "listItem",
	RoleStatus:      "status",
	RoleAlert:       "alert",
	RoleLog:         "log",
	RoleTimer:       "timer",
	RoleMarquee:     "marquee",
	RoleImage:       "image",
	RoleParagraph:   "paragraph",
	RoleGeneric:     "generic",
	RoleGroup:       "group",
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "unknown"
}

// MarshalText lets roles serialise as their names in JSON and YAML.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	*r = ParseRole(string(b))
	return nil
}

// aliases maps every spelling a host may use (Chrome automation camelCase,
// CDP/ARIA lowercase, hyphenated) to the canonical role.
var aliases = map[string]Role{
	"desktop":          RoleDesktop,
	"window":           RoleWindow,
	"rootwebarea":      RoleRootWebArea,
	"webarea":          RoleRootWebArea,
	"tab":              RoleTab,
	"tablist":          RoleTabList,
	"button":           RoleButton,
	"link":             RoleLink,
	"statictext":       RoleStaticText,
	"text":             RoleStaticText,
	"textfield":        RoleTextField,
	"textbox":          RoleTextField,
	"searchbox":        RoleTextField,
	"checkbox":         RoleCheckBox,
	"heading":          RoleHeading,
	"list":             RoleList,
	"listitem":         RoleListItem,
	"status":           RoleStatus,
	"alert":            RoleAlert,
	"log":              RoleLog,
	"timer":            RoleTimer,
	"marquee":          RoleMarquee,
	"image":            RoleImage,
	"img":              RoleImage,
	"paragraph":        RoleParagraph,
	"generic":          RoleGeneric,
	"genericcontainer": RoleGeneric,
	"section":          RoleGeneric,
	"div":              RoleGeneric,
	"group":            RoleGroup,
}

// ParseRole maps a host role string to a Role. "tab-list", "tablist" and
// "tabList" all map to RoleTabList. Unrecognised roles are RoleUnknown.
func ParseRole(s string) Role {
	key := strings.ToLower(strings.ReplaceAll(s, "-", ""))
	if r, ok := aliases[key]; ok {
		return r
	}
	return RoleUnknown
}
