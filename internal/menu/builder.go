// builder.go
package menu

import "fmt"

// Builder accumulates menus and items in source order. All mutators act on the
// current menu or the current item; both cursors only ever move forward.
type Builder struct {
	menus    []Menu
	index    map[string]int
	curMenu  int
	curItem  int
	line     int
	finished bool
}

// NewBuilder returns an empty builder with no current menu.
func NewBuilder() *Builder {
	return &Builder{
		menus:   make([]Menu, 0, 16),
		index:   make(map[string]int),
		curMenu: -1,
		curItem: -1,
	}
}

// At records the source line attached to menus and items created next.
func (b *Builder) At(line int) { b.line = line }

// Finish hands the model over. The builder cannot be used afterwards.
func (b *Builder) Finish() (*Model, error) {
	if b.finished {
		return nil, ErrBuilderFinished
	}
	b.finished = true
	m := &Model{menus: b.menus, index: b.index}
	b.menus, b.index = nil, nil
	return m, nil
}

func (b *Builder) menu() (*Menu, error) {
	if b.finished {
		return nil, ErrBuilderFinished
	}
	if b.curMenu < 0 {
		return nil, ErrNoCurrentMenu
	}
	return &b.menus[b.curMenu], nil
}

func (b *Builder) item() (*Item, error) {
	m, err := b.menu()
	if err != nil {
		return nil, err
	}
	if b.curItem < 0 {
		return nil, ErrNoCurrentItem
	}
	return &m.Items[b.curItem], nil
}

func checkTag(tag string) error {
	if len(tag)+1 > MaxTagLen {
		return fmt.Errorf("%w: '%s' (%d bytes, max %d)", ErrTagTooLong, tag, len(tag), MaxTagLen-1)
	}
	return nil
}

func checkIndirection(size int) error {
	if size < 0 || size > MaxIndirection {
		return fmt.Errorf("%w: %d (want 0 to %d)", ErrBadIndirection, size, MaxIndirection)
	}
	return nil
}

// indirectedSize returns the buffer a text needs when it cannot be stored inline.
func indirectedSize(text string) int {
	if len(text) > InlineTextLen {
		return len(text) + 1
	}
	return 0
}

// CreateMenu starts a new menu and makes it current. There is no current item afterwards.
func (b *Builder) CreateMenu(tag, title string) error {
	if b.finished {
		return ErrBuilderFinished
	}
	if err := checkTag(tag); err != nil {
		return err
	}
	if _, exists := b.index[tag]; exists {
		return fmt.Errorf("%w: '%s'", ErrDuplicateTag, tag)
	}
	b.menus = append(b.menus, Menu{
		Tag:        tag,
		Title:      title,
		TitleSize:  indirectedSize(title),
		ItemHeight: DefaultItemHeight,
		ItemGap:    DefaultItemGap,
		TitleFG:    ColourBlack,
		TitleBG:    ColourLightGrey,
		WorkFG:     ColourBlack,
		WorkBG:     ColourWhite,
		Items:      make([]Item, 0, 8),
		SourceLine: b.line,
	})
	b.curMenu = len(b.menus) - 1
	b.curItem = -1
	b.index[tag] = b.curMenu
	return nil
}

// CreateItem appends an item to the current menu and makes it current.
func (b *Builder) CreateItem(text string) error {
	m, err := b.menu()
	if err != nil {
		return err
	}
	m.Items = append(m.Items, Item{
		Text:       text,
		TextSize:   indirectedSize(text),
		IconFG:     ColourBlack,
		IconBG:     ColourWhite,
		SourceLine: b.line,
	})
	b.curItem = len(m.Items) - 1
	return nil
}

// SetItemSubmenu attaches a menu or dialogue tag to the current item. The tag is
// only resolved at collation time.
func (b *Builder) SetItemSubmenu(tag string, dialogue bool) error {
	it, err := b.item()
	if err != nil {
		return err
	}
	if err := checkTag(tag); err != nil {
		return err
	}
	it.Submenu = tag
	it.Dialogue = dialogue
	return nil
}

// SetTitleIndirection makes sure the title buffer holds at least size bytes of
// text, and never less than the title itself.
func (b *Builder) SetTitleIndirection(size int) error {
	m, err := b.menu()
	if err != nil {
		return err
	}
	if err := checkIndirection(size); err != nil {
		return err
	}
	if size = max(size, len(m.Title)); size >= m.TitleSize {
		m.TitleSize = size + 1
	}
	return nil
}

// SetItemIndirection makes sure the item buffer holds at least size bytes of
// text, and never less than the item text itself.
func (b *Builder) SetItemIndirection(size int) error {
	it, err := b.item()
	if err != nil {
		return err
	}
	if err := checkIndirection(size); err != nil {
		return err
	}
	if size = max(size, len(it.Text)); size >= it.TextSize {
		it.TextSize = size + 1
	}
	return nil
}

func (b *Builder) SetItemWritable() error {
	it, err := b.item()
	if err != nil {
		return err
	}
	if err := b.SetItemIndirection(WritableMinLen); err != nil {
		return err
	}
	it.Writable = true
	return nil
}

// SetItemValidation sets the validation string once, on a writable item.
func (b *Builder) SetItemValidation(validation string) error {
	it, err := b.item()
	if err != nil {
		return err
	}
	if !it.Writable {
		return ErrNotWritable
	}
	if it.HasValidation {
		return fmt.Errorf("%w: '%s'", ErrValidationSet, it.Validation)
	}
	it.Validation = validation
	it.HasValidation = true
	return nil
}

func (b *Builder) SetMenuColours(titleFG, titleBG, workFG, workBG int) error {
	m, err := b.menu()
	if err != nil {
		return err
	}
	m.TitleFG, m.TitleBG, m.WorkFG, m.WorkBG = titleFG, titleBG, workFG, workBG
	return nil
}

func (b *Builder) SetItemColours(fg, bg int) error {
	it, err := b.item()
	if err != nil {
		return err
	}
	it.IconFG, it.IconBG = fg, bg
	return nil
}

func (b *Builder) SetMenuReversed() error {
	m, err := b.menu()
	if err != nil {
		return err
	}
	m.Reversed = true
	return nil
}

func (b *Builder) SetMenuItemHeight(height int) error {
	m, err := b.menu()
	if err != nil {
		return err
	}
	m.ItemHeight = height
	return nil
}

func (b *Builder) SetMenuItemGap(gap int) error {
	m, err := b.menu()
	if err != nil {
		return err
	}
	m.ItemGap = gap
	return nil
}

// setItemFlag applies fn to the current item.
func (b *Builder) setItemFlag(fn func(*Item)) error {
	it, err := b.item()
	if err != nil {
		return err
	}
	fn(it)
	return nil
}

func (b *Builder) SetItemTicked() error {
	return b.setItemFlag(func(it *Item) { it.Ticked = true })
}

func (b *Builder) SetItemDotted() error {
	return b.setItemFlag(func(it *Item) { it.Dotted = true })
}

func (b *Builder) SetItemShaded() error {
	return b.setItemFlag(func(it *Item) { it.Shaded = true })
}

func (b *Builder) SetItemWarning() error {
	return b.setItemFlag(func(it *Item) { it.Warning = true })
}

func (b *Builder) SetItemWhenShaded() error {
	return b.setItemFlag(func(it *Item) { it.WhenShaded = true })
}
