// types.go
package layout

import (
	"fmt"
	"strings"
)

// --- Record Sizes (bytes) ---
const (
	FileHeadSize     = 12 // {dialogues, indirection, validation}
	ExtendedHeadSize = 16 // {zero, flags, menus, end}
	MenuStartSize    = 8  // {next, submenus}
	MenuBlockSize    = 28 // Wimp menu header: title, colours, width, height, gap
	MenuRecordSize   = MenuStartSize + MenuBlockSize
	ItemRecordSize   = 24
	TextFieldSize    = 12
	WordSize         = 4
)

// NullOffset marks an absent offset, an empty list or the end of a list.
const NullOffset int32 = -1

// --- Field Offsets Within Records ---
const (
	menuTitleField      = MenuStartSize // Title triple in a menu record
	itemLinkField       = 4             // Submenu or dialogue chain link
	itemTextField       = 12            // Text triple
	itemValidationField = 16            // Validation pointer inside the text triple
)

// --- Menu Flags ---
const (
	MenuTicked            uint32 = 0x00000001
	MenuSeparate          uint32 = 0x00000002 // Dotted line below the item
	MenuWritable          uint32 = 0x00000004
	MenuGiveWarning       uint32 = 0x00000008
	MenuSubMenuWhenShaded uint32 = 0x00000010
	MenuLast              uint32 = 0x00000080
	MenuTitleIndirected   uint32 = 0x00000100 // Set on the first item of the menu
)

// --- Icon Flags ---
const (
	IconText       uint32 = 0x00000001
	IconFilled     uint32 = 0x00000020
	IconIndirected uint32 = 0x00000100
	IconShaded     uint32 = 0x00400000

	IconFGShift        = 24
	IconFGMask  uint32 = 0x0F000000
	IconBGShift        = 28
	IconBGMask  uint32 = 0xF0000000
)

// IconColours packs foreground and background Wimp colours into icon flags.
func IconColours(fg, bg int) uint32 {
	return (uint32(fg)<<IconFGShift)&IconFGMask | (uint32(bg)<<IconBGShift)&IconBGMask
}

// DialogueMode selects how dialogue box references are encoded.
type DialogueMode int

const (
	// DialoguesLegacy threads every dialogue item on one chain from the file
	// head; the client learns the tag order out of band.
	DialoguesLegacy DialogueMode = iota
	// DialoguesTagged writes one chain per tag plus a tag directory.
	DialoguesTagged
)

func (d DialogueMode) String() string {
	switch d {
	case DialoguesLegacy:
		return "legacy"
	case DialoguesTagged:
		return "tagged"
	default:
		return fmt.Sprintf("DialogueMode(%d)", int(d))
	}
}

// ParseDialogueMode maps "legacy" or "tagged" to a DialogueMode.
func ParseDialogueMode(s string) (DialogueMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "legacy":
		return DialoguesLegacy, nil
	case "tagged":
		return DialoguesTagged, nil
	}
	return DialoguesLegacy, fmt.Errorf("%w: dialogue encoding '%s' (want legacy or tagged)", ErrInvalidOptions, s)
}

// Options controls the file format produced by Collate.
type Options struct {
	Dialogues  DialogueMode
	EmbedMenus bool // Write the extended head and the menu name directory
}

func (o Options) Validate() error {
	if o.Dialogues != DialoguesLegacy && o.Dialogues != DialoguesTagged {
		return fmt.Errorf("%w: unknown dialogue encoding %d", ErrInvalidOptions, int(o.Dialogues))
	}
	return nil
}

// Field names the part of a record a patch points at.
type Field int

const (
	FieldTitle Field = iota
	FieldText
	FieldValidation
	FieldLink
)

func (f Field) String() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldText:
		return "text"
	case FieldValidation:
		return "validation"
	case FieldLink:
		return "link"
	default:
		return "unknown"
	}
}

// Patch identifies a field inside a menu or item record. Item is -1 for the
// menu record itself. Patches are turned into file offsets once every record
// has been placed.
type Patch struct {
	Menu  int
	Item  int
	Field Field
}

// ItemBlock is an item record ready to be written.
type ItemBlock struct {
	Text      string
	TextSize  int // Indirected buffer size, 0 when inline
	MenuFlags uint32
	IconFlags uint32
	Link      int32 // Next item in the submenu or dialogue chain

	Submenu  string
	Dialogue bool

	Offset int
}

// MenuBlock is a menu record and its items.
type MenuBlock struct {
	Tag       string
	Title     string
	TitleSize int

	Next     int32 // Wimp block of the next menu
	Submenus int32 // Head of the chain of items opening this menu

	TitleFG, TitleBG, WorkFG, WorkBG int
	Width, Height, Gap               int

	Items []ItemBlock

	Offset int
}

// Pointer is the offset of the Wimp menu block, which is what other records refer to.
func (m *MenuBlock) Pointer() int32 { return int32(m.Offset + MenuStartSize) }

// DirectoryEntry names one menu in the extended format's menu directory.
type DirectoryEntry struct {
	Tag    string
	Menu   int32
	Offset int
	Length int
}

// IndirectionBlock holds an indirected title or item text.
type IndirectionBlock struct {
	Target Patch
	Text   string
	Size   int

	Location int32 // Resolved Target
	Offset   int
	Length   int
}

// ValidationBlock holds the validation string of a writable item.
type ValidationBlock struct {
	Target Patch
	Text   string

	Location int32
	Offset   int
	Length   int
}

// TagBlock is an entry in the tagged dialogue directory.
type TagBlock struct {
	Tag   string
	Chain int32

	Offset int
	Length int
}

// Layout is a fully positioned menu file.
type Layout struct {
	Options Options

	Dialogues   int32 // File head fields
	Indirection int32
	Validation  int32

	MenuDirectory int32 // Extended format only
	Directory     []DirectoryEntry

	Menus        []MenuBlock
	Indirections []IndirectionBlock // In file order
	Validations  []ValidationBlock  // In file order

	DialogueHead int32      // Offset of the zero word before the tag blocks, tagged format only
	DialogueTags []TagBlock // In file order

	dialogueRefs []string // Dialogue tags in item registration order
	Size         int
}

// --- Block Lengths ---

func indirectionLength(size int) int { return (size + 7) &^ 3 }

func validationLength(text string) int { return (len(text) + 1 + 11) &^ 3 }

func tagLength(tag string) int { return (len(tag) + 8) &^ 3 }
