// types.go
package menu

import "slices"

// --- Limits ---
const (
	MaxTagLen      = 32     // Includes the terminator, so tags hold at most 31 bytes
	InlineTextLen  = 12     // Text up to this many bytes is stored inline in the record
	WritableMinLen = 12     // Writable items are indirected with at least this much space
	MaxIndirection = 0xFFFF // Largest size accepted by indirected()
)

// --- Wimp Colours ---
// Only the ones the compiler uses as defaults; any 0-15 value is accepted from source.
const (
	ColourWhite     = 0
	ColourLightGrey = 2
	ColourBlack     = 7
)

// --- Defaults ---
const (
	DefaultItemHeight = 44
	DefaultItemGap    = 0
)

// Item is a single menu entry as declared in the source.
type Item struct {
	Text     string
	TextSize int // Indirected buffer size in bytes; 0 when the text is stored inline

	Validation    string
	HasValidation bool

	IconFG int
	IconBG int

	Ticked     bool
	Dotted     bool
	Shaded     bool
	Writable   bool
	Warning    bool
	WhenShaded bool // Submenu still opens when the item is shaded

	Submenu  string // Menu or dialogue tag; empty for none
	Dialogue bool   // Submenu names a dialogue box rather than a menu

	SourceLine int
}

// Indirected reports whether the item text lives in an indirection block.
func (it *Item) Indirected() bool { return it.TextSize > 0 }

// Menu is a menu block with its items, in declaration order.
type Menu struct {
	Tag       string
	Title     string
	TitleSize int // Indirected title buffer size; 0 when inline

	Reversed   bool
	ItemHeight int
	ItemGap    int

	TitleFG int
	TitleBG int
	WorkFG  int
	WorkBG  int

	Items []Item

	SourceLine int
}

func (m *Menu) TitleIndirected() bool { return m.TitleSize > 0 }

func (m Menu) clone() Menu {
	m.Items = slices.Clone(m.Items)
	return m
}

// Model is the finished, read-only result of parsing. It is only obtainable
// from Builder.Finish.
type Model struct {
	menus []Menu
	index map[string]int
}

// Menus returns a copy of the menus in creation order.
func (m *Model) Menus() []Menu {
	out := make([]Menu, len(m.menus))
	for i := range m.menus {
		out[i] = m.menus[i].clone()
	}
	return out
}

// Len returns the number of menus.
func (m *Model) Len() int { return len(m.menus) }

// Lookup returns the creation index of the menu with the given tag.
func (m *Model) Lookup(tag string) (int, bool) {
	i, ok := m.index[tag]
	return i, ok
}
