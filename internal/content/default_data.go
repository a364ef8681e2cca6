package content

import _ "embed"

// defaultTOML is the built-in content table shipped with the server so
// a room can start without an operator-provided override file. It is
// intentionally small: two champions whose abilities exercise most
// effect families the ability engine supports (no ability in it uses
// the trap or aura family). A
// deployment that wants the full champion roster supplies its own file
// via CONTENT_CONFIG_PATH, layered on top of (not replacing) this one.
//
//go:embed default_content.toml
var defaultTOML string

// DefaultSources returns the base content layer every Registry load
// starts from.
func DefaultSources() []string {
	return []string{defaultTOML}
}
