package layout

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/waozixyz/menugen/internal/menu"
)

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func buildModel(t *testing.T, build func(b *menu.Builder)) *menu.Model {
	t.Helper()
	b := menu.NewBuilder()
	build(b)
	m, err := b.Finish()
	must(t, err)
	return m
}

func collate(t *testing.T, m *menu.Model, opts Options) *Layout {
	t.Helper()
	l, err := Collate(m, opts)
	must(t, err)
	return l
}

func image(t *testing.T, l *Layout) []byte {
	t.Helper()
	data, err := l.Bytes()
	must(t, err)
	if len(data) != l.Size {
		t.Fatalf("image is %d bytes, layout says %d", len(data), l.Size)
	}
	return data
}

func word(data []byte, offset int) int32 {
	return int32(binary.LittleEndian.Uint32(data[offset:]))
}

func fileMenu(t *testing.T) *menu.Model {
	return buildModel(t, func(b *menu.Builder) {
		must(t, b.CreateMenu("1", "File"))
		must(t, b.CreateItem("Open"))
		must(t, b.CreateItem("Quit"))
	})
}

func TestCollate_SimpleMenu(t *testing.T) {
	l := collate(t, fileMenu(t), Options{})
	data := image(t, l)

	for i := 0; i < 3; i++ {
		if got := word(data, 4*i); got != NullOffset {
			t.Errorf("head word %d = %d, want -1", i, got)
		}
	}
	if l.Size != FileHeadSize+MenuRecordSize+2*ItemRecordSize {
		t.Errorf("Size = %d", l.Size)
	}

	m := l.Menus[0]
	if m.Offset != FileHeadSize || m.Next != NullOffset || m.Width != 16+16*4 {
		t.Errorf("menu = offset %d next %d width %d", m.Offset, m.Next, m.Width)
	}
	if got := string(bytes.TrimRight(data[20:32], "\x00")); got != "File" {
		t.Errorf("inline title = %q", got)
	}
	if m.Items[0].MenuFlags&MenuLast != 0 || m.Items[1].MenuFlags&MenuLast == 0 {
		t.Errorf("last flags = %#x %#x", m.Items[0].MenuFlags, m.Items[1].MenuFlags)
	}
	wantIcon := IconFilled | IconText | IconColours(menu.ColourBlack, menu.ColourWhite)
	if m.Items[0].IconFlags != wantIcon {
		t.Errorf("icon flags = %#x, want %#x", m.Items[0].IconFlags, wantIcon)
	}
	if m.Items[1].Offset != FileHeadSize+MenuRecordSize+ItemRecordSize {
		t.Errorf("second item at %d", m.Items[1].Offset)
	}
}

func TestCollate_TitleIndirection(t *testing.T) {
	m := buildModel(t, func(b *menu.Builder) {
		must(t, b.CreateMenu("m", "T"))
		must(t, b.SetTitleIndirection(40))
	})
	l := collate(t, m, Options{})

	if len(l.Indirections) != 1 {
		t.Fatalf("got %d indirection blocks", len(l.Indirections))
	}
	blk := l.Indirections[0]
	if blk.Length != WordSize+((40+1+3)&^3) {
		t.Errorf("block length = %d", blk.Length)
	}
	if blk.Location != int32(l.Menus[0].Offset+MenuStartSize) {
		t.Errorf("block targets %d, title triple is at %d", blk.Location, l.Menus[0].Offset+MenuStartSize)
	}
	if l.Indirection != int32(blk.Offset) {
		t.Errorf("head indirection = %d, block at %d", l.Indirection, blk.Offset)
	}

	// The blank item carries the title flag.
	items := l.Menus[0].Items
	if len(items) != 1 || items[0].Text != "" || items[0].MenuFlags != MenuLast|MenuTitleIndirected {
		t.Errorf("synthesized items = %+v", items)
	}
	if l.Menus[0].Width != 16 {
		t.Errorf("Width = %d, want 16", l.Menus[0].Width)
	}

	data := image(t, l)
	if word(data, blk.Offset) != blk.Location {
		t.Errorf("location word = %d", word(data, blk.Offset))
	}
	if size := word(data, int(blk.Location)+8); size != 41 {
		t.Errorf("title triple size = %d, want 41", size)
	}
	if word(data, blk.Offset+blk.Length) != NullOffset {
		t.Errorf("indirection list not terminated")
	}
}

func TestCollate_WidthAndLastFlag(t *testing.T) {
	m := buildModel(t, func(b *menu.Builder) {
		must(t, b.CreateMenu("a", "A"))
		must(t, b.CreateItem("x"))
		must(t, b.CreateItem("a much longer entry"))
		must(t, b.CreateItem("mid"))
		must(t, b.CreateMenu("b", "B"))
		must(t, b.CreateMenu("c", "C"))
		must(t, b.CreateItem("only"))
	})
	l := collate(t, m, Options{})

	for _, mb := range l.Menus {
		longest, last := 0, 0
		for i, it := range mb.Items {
			longest = max(longest, len(it.Text))
			if it.MenuFlags&MenuLast != 0 {
				last++
				if i != len(mb.Items)-1 {
					t.Errorf("menu %s: item %d flagged last", mb.Tag, i)
				}
			}
		}
		if mb.Width != 16+16*longest {
			t.Errorf("menu %s: width %d, want %d", mb.Tag, mb.Width, 16+16*longest)
		}
		if last != 1 {
			t.Errorf("menu %s: %d items flagged last", mb.Tag, last)
		}
	}
	if l.Menus[0].Next != l.Menus[1].Pointer() || l.Menus[1].Next != l.Menus[2].Pointer() || l.Menus[2].Next != NullOffset {
		t.Errorf("menu links = %d %d %d", l.Menus[0].Next, l.Menus[1].Next, l.Menus[2].Next)
	}
}

func writableModel(t *testing.T) *menu.Model {
	return buildModel(t, func(b *menu.Builder) {
		must(t, b.CreateMenu("m", "A title over twelve"))
		must(t, b.CreateItem("first long item text"))
		must(t, b.CreateItem("Name"))
		must(t, b.SetItemWritable())
		must(t, b.SetItemValidation("A0-9"))
		must(t, b.CreateItem("Code"))
		must(t, b.SetItemWritable())
		must(t, b.SetItemValidation("Kta;Pptr_write"))
	})
}

func TestCollate_BlockOrderAndAlignment(t *testing.T) {
	l := collate(t, writableModel(t), Options{})
	items := l.Menus[0].Items

	wantTargets := []int32{
		int32(items[2].Offset + itemTextField),
		int32(items[1].Offset + itemTextField),
		int32(items[0].Offset + itemTextField),
		int32(l.Menus[0].Offset + menuTitleField),
	}
	if len(l.Indirections) != len(wantTargets) {
		t.Fatalf("got %d indirection blocks", len(l.Indirections))
	}
	for i, b := range l.Indirections {
		if b.Location != wantTargets[i] {
			t.Errorf("indirection %d targets %d, want %d", i, b.Location, wantTargets[i])
		}
		if b.Length%4 != 0 || b.Length <= WordSize {
			t.Errorf("indirection %d length %d", i, b.Length)
		}
		if i > 0 && b.Offset != l.Indirections[i-1].Offset+l.Indirections[i-1].Length {
			t.Errorf("indirection %d not contiguous", i)
		}
	}

	if len(l.Validations) != 2 {
		t.Fatalf("got %d validation blocks", len(l.Validations))
	}
	if l.Validations[0].Text != "Kta;Pptr_write" || l.Validations[1].Text != "A0-9" {
		t.Errorf("validation order = %q, %q", l.Validations[0].Text, l.Validations[1].Text)
	}
	for i, b := range l.Validations {
		if b.Length%4 != 0 || b.Length <= 2*WordSize {
			t.Errorf("validation %d length %d", i, b.Length)
		}
		if b.Length != (len(b.Text)+1+11)&^3 {
			t.Errorf("validation %d length %d for %q", i, b.Length, b.Text)
		}
	}
	if l.Validations[1].Location != int32(items[1].Offset+itemValidationField) {
		t.Errorf("validation targets %d", l.Validations[1].Location)
	}

	last := l.Indirections[len(l.Indirections)-1]
	if l.Validations[0].Offset != last.Offset+last.Length+WordSize {
		t.Errorf("validation list starts at %d", l.Validations[0].Offset)
	}

	if items[1].MenuFlags&MenuWritable == 0 || items[1].IconFlags&IconIndirected == 0 {
		t.Errorf("writable item flags %#x %#x", items[1].MenuFlags, items[1].IconFlags)
	}
	if items[0].MenuFlags&MenuTitleIndirected == 0 {
		t.Errorf("first item lacks the title indirected flag")
	}

	data := image(t, l)
	blk := l.Validations[1]
	if word(data, blk.Offset+WordSize) != int32(blk.Length) {
		t.Errorf("validation length word = %d", word(data, blk.Offset+WordSize))
	}
	if got := string(bytes.TrimRight(data[blk.Offset+8:blk.Offset+blk.Length], "\x00")); got != "A0-9" {
		t.Errorf("validation text = %q", got)
	}
}

func chainModel(t *testing.T) *menu.Model {
	return buildModel(t, func(b *menu.Builder) {
		must(t, b.CreateMenu("main", "Main"))
		must(t, b.CreateItem("a"))
		must(t, b.SetItemSubmenu("sub", false))
		must(t, b.CreateItem("save"))
		must(t, b.SetItemSubmenu("save_as", true))
		must(t, b.CreateItem("b"))
		must(t, b.SetItemSubmenu("sub", false))
		must(t, b.CreateItem("info"))
		must(t, b.SetItemSubmenu("prog_info", true))
		must(t, b.CreateMenu("sub", "Sub"))
		must(t, b.CreateItem("c"))
		must(t, b.SetItemSubmenu("sub", false))
		must(t, b.CreateItem("export"))
		must(t, b.SetItemSubmenu("save_as", true))
	})
}

func linkOf(it ItemBlock) int32 { return int32(it.Offset + itemLinkField) }

func TestCollate_SubmenuChain(t *testing.T) {
	l := collate(t, chainModel(t), Options{})
	main, sub := l.Menus[0], l.Menus[1]

	// Chain order is a, b, c.
	if sub.Submenus != linkOf(main.Items[0]) {
		t.Errorf("chain head = %d, want item a", sub.Submenus)
	}
	if main.Items[0].Link != linkOf(main.Items[2]) {
		t.Errorf("a links to %d, want b", main.Items[0].Link)
	}
	if main.Items[2].Link != linkOf(sub.Items[0]) {
		t.Errorf("b links to %d, want c", main.Items[2].Link)
	}
	if sub.Items[0].Link != NullOffset {
		t.Errorf("c links to %d", sub.Items[0].Link)
	}
	if main.Submenus != NullOffset {
		t.Errorf("main has a submenu chain")
	}
}

func TestCollate_LegacyDialogues(t *testing.T) {
	l := collate(t, chainModel(t), Options{Dialogues: DialoguesLegacy})
	main, sub := l.Menus[0], l.Menus[1]

	if l.Dialogues != linkOf(main.Items[1]) {
		t.Errorf("dialogue head = %d, want save item", l.Dialogues)
	}
	if main.Items[1].Link != linkOf(main.Items[3]) || main.Items[3].Link != linkOf(sub.Items[1]) || sub.Items[1].Link != NullOffset {
		t.Errorf("dialogue chain = %d %d %d", main.Items[1].Link, main.Items[3].Link, sub.Items[1].Link)
	}

	order := l.DialogueOrder()
	want := []string{"save_as", "prog_info", "save_as"}
	if len(order) != len(want) {
		t.Fatalf("order = %+v", order)
	}
	for i, e := range order {
		if e.Tag != want[i] || e.Offset != 4*i {
			t.Errorf("order[%d] = %+v", i, e)
		}
	}
	if len(l.DialogueTags) != 0 || l.DialogueHead != NullOffset {
		t.Errorf("legacy layout has a tag directory")
	}
}

func TestCollate_TaggedDialogues(t *testing.T) {
	l := collate(t, chainModel(t), Options{Dialogues: DialoguesTagged})
	main, sub := l.Menus[0], l.Menus[1]

	if len(l.DialogueTags) != 2 || l.DialogueTags[0].Tag != "prog_info" || l.DialogueTags[1].Tag != "save_as" {
		t.Fatalf("tags = %+v", l.DialogueTags)
	}
	if l.Dialogues != l.DialogueHead || l.DialogueHead != int32(l.DialogueTags[0].Offset-WordSize) {
		t.Errorf("head dialogues = %d, directory = %d", l.Dialogues, l.DialogueHead)
	}
	saveAs := l.DialogueTags[1]
	if saveAs.Chain != linkOf(main.Items[1]) || main.Items[1].Link != linkOf(sub.Items[1]) {
		t.Errorf("save_as chain = %d -> %d", saveAs.Chain, main.Items[1].Link)
	}
	if l.DialogueTags[0].Chain != linkOf(main.Items[3]) || main.Items[3].Link != NullOffset {
		t.Errorf("prog_info chain = %d", l.DialogueTags[0].Chain)
	}
	if l.DialogueOrder() != nil {
		t.Errorf("tagged layout reports an out-of-band order")
	}

	data := image(t, l)
	if word(data, int(l.DialogueHead)) != 0 {
		t.Errorf("directory does not start with a zero word")
	}
	if word(data, saveAs.Offset) != saveAs.Chain {
		t.Errorf("tag block chain word = %d", word(data, saveAs.Offset))
	}
	if got := string(bytes.TrimRight(data[saveAs.Offset+4:saveAs.Offset+saveAs.Length], "\x00")); got != "save_as" {
		t.Errorf("tag text = %q", got)
	}
	if word(data, l.Size-WordSize) != NullOffset {
		t.Errorf("tag directory not terminated")
	}
}

func TestCollate_TaggedWithoutDialogues(t *testing.T) {
	l := collate(t, fileMenu(t), Options{Dialogues: DialoguesTagged})
	if l.Dialogues != NullOffset || l.DialogueHead != NullOffset {
		t.Errorf("dialogues = %d, head = %d", l.Dialogues, l.DialogueHead)
	}
	if l.Size != FileHeadSize+MenuRecordSize+2*ItemRecordSize {
		t.Errorf("Size = %d", l.Size)
	}
}

func TestCollate_EmbedMenus(t *testing.T) {
	l := collate(t, chainModel(t), Options{EmbedMenus: true})
	data := image(t, l)

	if word(data, FileHeadSize) != 0 || word(data, FileHeadSize+8) != int32(FileHeadSize+ExtendedHeadSize) {
		t.Errorf("extended head = %d %d %d %d", word(data, 12), word(data, 16), word(data, 20), word(data, 24))
	}
	if len(l.Directory) != 2 {
		t.Fatalf("directory = %+v", l.Directory)
	}
	main := l.Directory[0]
	if main.Tag != "main" || main.Length != 12 || main.Menu != l.Menus[0].Pointer() {
		t.Errorf("directory[0] = %+v", main)
	}
	end := l.Directory[1].Offset + l.Directory[1].Length
	if word(data, end) != NullOffset || l.Menus[0].Offset != end+WordSize {
		t.Errorf("directory ends at %d, first menu at %d", end, l.Menus[0].Offset)
	}
}

func TestCollate_Idempotent(t *testing.T) {
	m := chainModel(t)
	for _, opts := range []Options{{}, {Dialogues: DialoguesTagged, EmbedMenus: true}} {
		first := image(t, collate(t, m, opts))
		second := image(t, collate(t, m, opts))
		if !bytes.Equal(first, second) {
			t.Errorf("%+v: collation is not repeatable", opts)
		}
	}
}

func TestCollate_Errors(t *testing.T) {
	missing := buildModel(t, func(b *menu.Builder) {
		b.At(3)
		must(t, b.CreateMenu("m", "M"))
		must(t, b.CreateItem("x"))
		must(t, b.SetItemSubmenu("missing_tag", false))
	})
	_, err := Collate(missing, Options{})
	if !errors.Is(err, menu.ErrUnknownSubmenu) || !strings.HasPrefix(err.Error(), "L3:") {
		t.Errorf("unknown submenu: %v", err)
	}

	empty := buildModel(t, func(*menu.Builder) {})
	if _, err := Collate(empty, Options{}); !errors.Is(err, menu.ErrNoMenus) {
		t.Errorf("empty model: %v", err)
	}

	if _, err := Collate(fileMenu(t), Options{Dialogues: DialogueMode(7)}); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("bad options: %v", err)
	}
}

func TestParseDialogueMode(t *testing.T) {
	tests := []struct {
		in      string
		want    DialogueMode
		wantErr bool
	}{
		{"", DialoguesLegacy, false},
		{"legacy", DialoguesLegacy, false},
		{"Tagged", DialoguesTagged, false},
		{"both", DialoguesLegacy, true},
	}
	for _, tt := range tests {
		got, err := ParseDialogueMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDialogueMode(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestWriteFile(t *testing.T) {
	l := collate(t, writableModel(t), Options{})
	path := filepath.Join(t.TempDir(), "Menus")
	must(t, l.WriteFile(path))

	got, err := os.ReadFile(path)
	must(t, err)
	if !bytes.Equal(got, image(t, l)) {
		t.Errorf("file contents differ from the image")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	must(t, err)
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}

	bad := filepath.Join(t.TempDir(), "no", "such", "dir", "Menus")
	if err := l.WriteFile(bad); err == nil {
		t.Errorf("WriteFile into a missing directory succeeded")
	}
	if _, err := os.Stat(bad); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output exists after failure: %v", err)
	}
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	must(t, collate(t, chainModel(t), Options{}).Report(&buf))
	out := buf.String()
	for _, want := range []string{"Menu Blocks", "main", "Dialogue Box References", "save_as", "Validation Strings"} {
		if !strings.Contains(out, want) {
			t.Errorf("report lacks %q", want)
		}
	}
}

func TestCheckFileSize(t *testing.T) {
	if err := checkFileSize(math.MaxInt32); err != nil {
		t.Errorf("largest size rejected: %v", err)
	}
	if err := checkFileSize(math.MaxInt32 + 1); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("oversized file: %v", err)
	}
}
