package alert

import (
	"strings"

	"github.com/AccelByte/extend-doorbell/pkg/host"
)

// ProductName prefixes every chat line the plugin prints.
const ProductName = "Doorbell"

// Template placeholders.
const (
	TokenName  = "<name>"
	TokenWorld = "<world>"
	TokenLink  = "<link>"
)

// Target identifies the occupant an alert is about.
type Target struct {
	Name      string
	WorldID   uint32
	WorldName string
}

// Prefix returns the chat prefix for plugin messages.
func Prefix() string {
	return "[" + ProductName + "] "
}

// Format renders template for target as a chat line prefixed with the
// product name. <link> becomes a clickable player link; tokens it does not
// know are left as typed.
func Format(template string, target Target) host.ChatLine {
	replacer := strings.NewReplacer(TokenName, target.Name, TokenWorld, target.WorldName)

	line := host.TextLine(Prefix())
	parts := strings.Split(template, TokenLink)
	for i, part := range parts {
		if i > 0 {
			line.AppendLink(host.PlayerLink{Name: target.Name, WorldID: target.WorldID})
		}
		line.Append(replacer.Replace(part))
	}
	return line
}

// Message builds a plain plugin chat line.
func Message(text string) host.ChatLine {
	return host.TextLine(Prefix() + text)
}
