// collate.go
package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/waozixyz/menugen/internal/menu"
)

// ErrInvalidOptions is returned when Options cannot describe a file format.
var ErrInvalidOptions = errors.New("invalid layout options")

// ErrFileTooLarge is returned when an offset would not fit the 32-bit fields of the file.
var ErrFileTooLarge = errors.New("menu file too large")

type submenuRef struct {
	menu, item int
	target     int
}

type dialogueRef struct {
	menu, item int
	tag        string
}

// collator holds the registration lists built while placing records. Lists
// are kept in registration order; the file uses them newest first.
type collator struct {
	model *menu.Model
	l     *Layout

	submenus     []submenuRef
	dialogues    []dialogueRef
	indirections []IndirectionBlock
	validations  []ValidationBlock
}

// Collate assigns a file offset to every record and block of the model and
// threads the submenu and dialogue chains. The model is not modified, so
// calling Collate again gives an identical layout.
func Collate(m *menu.Model, opts Options) (*Layout, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if m == nil || m.Len() == 0 {
		return nil, menu.ErrNoMenus
	}

	c := &collator{
		model: m,
		l: &Layout{
			Options:       opts,
			Dialogues:     NullOffset,
			Indirection:   NullOffset,
			Validation:    NullOffset,
			MenuDirectory: NullOffset,
			DialogueHead:  NullOffset,
		},
	}

	offset := c.placeHead()
	offset, err := c.placeMenus(offset)
	if err != nil {
		return nil, err
	}
	c.linkDirectory()
	c.linkSubmenus()
	c.linkDialogues()
	offset = c.placeIndirections(offset)
	offset = c.placeValidations(offset)
	offset = c.placeDialogueTags(offset)
	if err := checkFileSize(offset); err != nil {
		return nil, err
	}
	c.l.Size = offset

	return c.l, nil
}

// checkFileSize fails when size leaves the range every offset field can hold.
// All offsets lie below the file size, so one check covers them.
func checkFileSize(size int) error {
	if size > math.MaxInt32 {
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, size)
	}
	return nil
}

// placeHead reserves the file head and, in the extended format, the menu directory.
func (c *collator) placeHead() int {
	offset := FileHeadSize
	if !c.l.Options.EmbedMenus {
		return offset
	}
	offset += ExtendedHeadSize
	c.l.MenuDirectory = int32(offset)
	for _, m := range c.model.Menus() {
		n := tagLength(m.Tag)
		c.l.Directory = append(c.l.Directory, DirectoryEntry{Tag: m.Tag, Offset: offset, Length: n})
		offset += n
	}
	return offset + WordSize
}

func (c *collator) placeMenus(offset int) (int, error) {
	for mi, src := range c.model.Menus() {
		items := src.Items
		if len(items) == 0 {
			items = []menu.Item{{IconFG: menu.ColourBlack, IconBG: menu.ColourWhite}}
		}

		mb := MenuBlock{
			Tag:       src.Tag,
			Title:     src.Title,
			TitleSize: src.TitleSize,
			Next:      NullOffset,
			Submenus:  NullOffset,
			TitleFG:   src.TitleFG,
			TitleBG:   src.TitleBG,
			WorkFG:    src.WorkFG,
			WorkBG:    src.WorkBG,
			Height:    src.ItemHeight,
			Gap:       src.ItemGap,
			Items:     make([]ItemBlock, len(items)),
			Offset:    offset,
		}
		if src.TitleIndirected() {
			c.indirections = append(c.indirections, IndirectionBlock{
				Target: Patch{Menu: mi, Item: -1, Field: FieldTitle},
				Text:   src.Title,
				Size:   src.TitleSize,
			})
		}
		offset += MenuRecordSize + len(items)*ItemRecordSize

		width := 0
		itemOffset := mb.Offset + MenuRecordSize
		for ii := range items {
			it := &items[ii]
			width = max(width, len(it.Text))

			ib := ItemBlock{
				Text:     it.Text,
				TextSize: it.TextSize,
				Link:     NullOffset,
				Submenu:  it.Submenu,
				Dialogue: it.Dialogue,
				Offset:   itemOffset,
			}
			ib.MenuFlags, ib.IconFlags = itemFlags(it)
			if ii == len(items)-1 {
				ib.MenuFlags |= MenuLast
			}
			if ii == 0 && src.TitleIndirected() {
				ib.MenuFlags |= MenuTitleIndirected
			}

			if it.Submenu != "" {
				if it.Dialogue {
					c.dialogues = append(c.dialogues, dialogueRef{menu: mi, item: ii, tag: it.Submenu})
					c.l.dialogueRefs = append(c.l.dialogueRefs, it.Submenu)
				} else {
					target, ok := c.model.Lookup(it.Submenu)
					if !ok {
						return 0, fmt.Errorf("L%d: %w '%s' in menu '%s'", it.SourceLine, menu.ErrUnknownSubmenu, it.Submenu, src.Tag)
					}
					c.submenus = append(c.submenus, submenuRef{menu: mi, item: ii, target: target})
				}
			}

			if it.Indirected() {
				c.indirections = append(c.indirections, IndirectionBlock{
					Target: Patch{Menu: mi, Item: ii, Field: FieldText},
					Text:   it.Text,
					Size:   it.TextSize,
				})
				if it.HasValidation {
					c.validations = append(c.validations, ValidationBlock{
						Target: Patch{Menu: mi, Item: ii, Field: FieldValidation},
						Text:   it.Validation,
					})
				}
			}

			mb.Items[ii] = ib
			itemOffset += ItemRecordSize
		}
		mb.Width = 16 + 16*width

		c.l.Menus = append(c.l.Menus, mb)
	}

	for i := 0; i < len(c.l.Menus)-1; i++ {
		c.l.Menus[i].Next = c.l.Menus[i+1].Pointer()
	}
	return offset, nil
}

func itemFlags(it *menu.Item) (menuFlags, iconFlags uint32) {
	if it.Ticked {
		menuFlags |= MenuTicked
	}
	if it.Dotted {
		menuFlags |= MenuSeparate
	}
	if it.Writable {
		menuFlags |= MenuWritable
	}
	if it.Warning {
		menuFlags |= MenuGiveWarning
	}
	if it.WhenShaded {
		menuFlags |= MenuSubMenuWhenShaded
	}

	iconFlags = IconFilled | IconText | IconColours(it.IconFG, it.IconBG)
	if it.Shaded {
		iconFlags |= IconShaded
	}
	if it.Indirected() {
		iconFlags |= IconIndirected
	}
	return menuFlags, iconFlags
}

// resolve turns a patch into the file offset of the field it names.
func (c *collator) resolve(p Patch) int32 {
	m := &c.l.Menus[p.Menu]
	if p.Item < 0 {
		return int32(m.Offset + menuTitleField)
	}
	base := m.Items[p.Item].Offset
	switch p.Field {
	case FieldLink:
		return int32(base + itemLinkField)
	case FieldValidation:
		return int32(base + itemValidationField)
	default:
		return int32(base + itemTextField)
	}
}

func (c *collator) linkDirectory() {
	for i := range c.l.Directory {
		c.l.Directory[i].Menu = c.l.Menus[i].Pointer()
	}
}

// thread links the items of refs, newest first, so the head of the chain is
// the item registered earliest.
func (c *collator) thread(refs []Patch) int32 {
	chain := NullOffset
	for i := len(refs) - 1; i >= 0; i-- {
		ref := refs[i]
		c.l.Menus[ref.Menu].Items[ref.Item].Link = chain
		chain = c.resolve(ref)
	}
	return chain
}

func (c *collator) linkSubmenus() {
	for mi := range c.l.Menus {
		var refs []Patch
		for _, s := range c.submenus {
			if s.target == mi {
				refs = append(refs, Patch{Menu: s.menu, Item: s.item, Field: FieldLink})
			}
		}
		c.l.Menus[mi].Submenus = c.thread(refs)
	}
}

func (c *collator) linkDialogues() {
	if c.l.Options.Dialogues == DialoguesLegacy {
		refs := make([]Patch, len(c.dialogues))
		for i, d := range c.dialogues {
			refs[i] = Patch{Menu: d.menu, Item: d.item, Field: FieldLink}
		}
		c.l.Dialogues = c.thread(refs)
		return
	}

	// One chain per tag; the directory lists the most recently seen tag first.
	var tags []string
	seen := make(map[string]bool)
	for _, d := range c.dialogues {
		if !seen[d.tag] {
			seen[d.tag] = true
			tags = append([]string{d.tag}, tags...)
		}
	}
	for _, tag := range tags {
		var refs []Patch
		for _, d := range c.dialogues {
			if d.tag == tag {
				refs = append(refs, Patch{Menu: d.menu, Item: d.item, Field: FieldLink})
			}
		}
		c.l.DialogueTags = append(c.l.DialogueTags, TagBlock{
			Tag:    tag,
			Chain:  c.thread(refs),
			Length: tagLength(tag),
		})
	}
}

func (c *collator) placeIndirections(offset int) int {
	for i := len(c.indirections) - 1; i >= 0; i-- {
		b := c.indirections[i]
		b.Offset = offset
		b.Length = indirectionLength(b.Size)
		b.Location = c.resolve(b.Target)
		offset += b.Length
		c.l.Indirections = append(c.l.Indirections, b)
	}
	if len(c.l.Indirections) == 0 {
		return offset
	}
	c.l.Indirection = int32(c.l.Indirections[0].Offset)
	return offset + WordSize
}

func (c *collator) placeValidations(offset int) int {
	for i := len(c.validations) - 1; i >= 0; i-- {
		b := c.validations[i]
		b.Offset = offset
		b.Length = validationLength(b.Text)
		b.Location = c.resolve(b.Target)
		offset += b.Length
		c.l.Validations = append(c.l.Validations, b)
	}
	if len(c.l.Validations) == 0 {
		return offset
	}
	c.l.Validation = int32(c.l.Validations[0].Offset)
	return offset + WordSize
}

// placeDialogueTags lays out the tagged dialogue directory: a zero word, the
// tag blocks and a sentinel. Nothing is written when no item opens a dialogue.
func (c *collator) placeDialogueTags(offset int) int {
	if c.l.Options.Dialogues != DialoguesTagged || len(c.l.DialogueTags) == 0 {
		return offset
	}
	c.l.DialogueHead = int32(offset)
	c.l.Dialogues = c.l.DialogueHead
	offset += WordSize
	for i := range c.l.DialogueTags {
		c.l.DialogueTags[i].Offset = offset
		offset += c.l.DialogueTags[i].Length
	}
	return offset + WordSize
}

// OrderEntry is one line of the out-of-band order listings.
type OrderEntry struct {
	Offset int // Position in the client's table, in bytes
	Tag    string
	Title  string
}

// DialogueOrder lists the dialogue tags in the order a legacy client must
// supply its dialogue handles. It is empty for the tagged encoding.
func (l *Layout) DialogueOrder() []OrderEntry {
	if l.Options.Dialogues != DialoguesLegacy {
		return nil
	}
	out := make([]OrderEntry, len(l.dialogueRefs))
	for i, tag := range l.dialogueRefs {
		out[i] = OrderEntry{Offset: WordSize * i, Tag: tag}
	}
	return out
}

// MenuOrder lists the menus in the order their blocks appear in the file.
func (l *Layout) MenuOrder() []OrderEntry {
	out := make([]OrderEntry, len(l.Menus))
	for i := range l.Menus {
		out[i] = OrderEntry{Offset: WordSize * i, Tag: l.Menus[i].Tag, Title: l.Menus[i].Title}
	}
	return out
}
