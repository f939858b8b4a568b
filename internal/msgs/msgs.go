// Package msgs holds the localized strings spoken by axlive: live-region
// prefixes and role labels.
package msgs

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys.
const (
	LiveRegionsRemoved = "live_regions_removed"
	RoleButton         = "role_button"
	RoleLink           = "role_link"
	RoleCheckBox       = "role_checkbox"
	RoleHeading        = "role_heading"
	RoleTab            = "role_tab"
	RoleTextField      = "role_textfield"
	RoleAlert          = "role_alert"
	RoleImage          = "role_image"
	RoleList           = "role_list"
)

var catalog = map[language.Tag]map[string]string{
	language.English: {
		LiveRegionsRemoved: "removed:",
		RoleButton:         "Button",
		RoleLink:           "Link",
		RoleCheckBox:       "Check box",
		RoleHeading:        "Heading",
		RoleTab:            "Tab",
		RoleTextField:      "Edit text",
		RoleAlert:          "Alert",
		RoleImage:          "Image",
		RoleList:           "List",
	},
	language.French: {
		LiveRegionsRemoved: "supprimé :",
		RoleButton:         "Bouton",
		RoleLink:           "Lien",
		RoleCheckBox:       "Case à cocher",
		RoleHeading:        "Titre",
		RoleTab:            "Onglet",
		RoleTextField:      "Zone de texte",
		RoleAlert:          "Alerte",
		RoleImage:          "Image",
		RoleList:           "Liste",
	},
}

var (
	supported = []language.Tag{language.English, language.French}
	matcher   = language.NewMatcher(supported)
)

func init() {
	for tag, entries := range catalog {
		for key, msg := range entries {
			if err := message.SetString(tag, key, msg); err != nil {
				panic("msgs: register " + key + ": " + err.Error())
			}
		}
	}
}

// Printer resolves message keys for one locale.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

// NewPrinter returns a Printer for the best supported match of locale
// (a BCP 47 tag such as "fr-CA"). Unknown or empty locales fall back to
// English.
func NewPrinter(locale string) *Printer {
	tag := language.English
	if locale != "" {
		if desired, err := language.Parse(locale); err == nil {
			_, idx, _ := matcher.Match(desired)
			tag = supported[idx]
		}
	}
	return &Printer{tag: tag, p: message.NewPrinter(tag)}
}

// Get returns the localized string for key, or key itself when unknown.
func (p *Printer) Get(key string) string {
	return p.p.Sprintf(key)
}

// Locale returns the resolved language tag.
func (p *Printer) Locale() string { return p.tag.String() }
