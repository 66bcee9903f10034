// writer.go
package layout

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteTo writes the menu file image.
func (l *Layout) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	cw := &countingWriter{w: bw}
	if err := l.write(cw); err != nil {
		return cw.n, err
	}
	if err := bw.Flush(); err != nil {
		return cw.n, fmt.Errorf("flush: %w", err)
	}
	return cw.n, nil
}

// Bytes returns the menu file image.
func (l *Layout) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(l.Size)
	if _, err := l.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes the image next to path under a temporary name and renames
// it into place, so a failed write never leaves a partial file at path.
func (l *Layout) WriteFile(path string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file '%s': %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = l.WriteTo(tmp); err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set mode on '%s': %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close '%s': %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place at '%s': %w", path, err)
	}
	return nil
}

func (l *Layout) write(w *countingWriter) error {
	// --- File Head ---
	for _, v := range []int32{l.Dialogues, l.Indirection, l.Validation} {
		if err := writeInt32(w, v); err != nil {
			return fmt.Errorf("write file head: %w", err)
		}
	}

	if l.Options.EmbedMenus {
		if err := l.writeDirectory(w); err != nil {
			return err
		}
	}

	// --- Menus and Items ---
	for i := range l.Menus {
		if err := l.writeMenu(w, &l.Menus[i]); err != nil {
			return fmt.Errorf("write menu '%s': %w", l.Menus[i].Tag, err)
		}
	}

	// --- Indirected Text ---
	for _, b := range l.Indirections {
		if err := w.at(b.Offset, "indirection block"); err != nil {
			return err
		}
		if err := writeInt32(w, b.Location); err != nil {
			return fmt.Errorf("write indirection block: %w", err)
		}
		if err := writeText(w, b.Text, b.Length-WordSize); err != nil {
			return fmt.Errorf("write indirection block: %w", err)
		}
	}
	if len(l.Indirections) > 0 {
		if err := writeInt32(w, NullOffset); err != nil {
			return fmt.Errorf("write indirection sentinel: %w", err)
		}
	}

	// --- Validation Strings ---
	for _, b := range l.Validations {
		if err := w.at(b.Offset, "validation block"); err != nil {
			return err
		}
		if err := writeInt32(w, b.Location); err != nil {
			return fmt.Errorf("write validation block: %w", err)
		}
		if err := writeInt32(w, int32(b.Length)); err != nil {
			return fmt.Errorf("write validation block: %w", err)
		}
		if err := writeText(w, b.Text, b.Length-2*WordSize); err != nil {
			return fmt.Errorf("write validation block: %w", err)
		}
	}
	if len(l.Validations) > 0 {
		if err := writeInt32(w, NullOffset); err != nil {
			return fmt.Errorf("write validation sentinel: %w", err)
		}
	}

	// --- Dialogue Tags ---
	if l.DialogueHead != NullOffset {
		if err := w.at(int(l.DialogueHead), "dialogue directory"); err != nil {
			return err
		}
		if err := writeInt32(w, 0); err != nil {
			return fmt.Errorf("write dialogue directory: %w", err)
		}
		for _, t := range l.DialogueTags {
			if err := writeInt32(w, t.Chain); err != nil {
				return fmt.Errorf("write dialogue tag '%s': %w", t.Tag, err)
			}
			if err := writeText(w, t.Tag, t.Length-WordSize); err != nil {
				return fmt.Errorf("write dialogue tag '%s': %w", t.Tag, err)
			}
		}
		if err := writeInt32(w, NullOffset); err != nil {
			return fmt.Errorf("write dialogue sentinel: %w", err)
		}
	}

	return w.at(l.Size, "end of file")
}

func (l *Layout) writeDirectory(w *countingWriter) error {
	for _, v := range []int32{0, 0, l.MenuDirectory, 0} {
		if err := writeInt32(w, v); err != nil {
			return fmt.Errorf("write extended head: %w", err)
		}
	}
	for _, e := range l.Directory {
		if err := w.at(e.Offset, "menu directory entry"); err != nil {
			return err
		}
		if err := writeInt32(w, e.Menu); err != nil {
			return fmt.Errorf("write menu directory: %w", err)
		}
		if err := writeText(w, e.Tag, e.Length-WordSize); err != nil {
			return fmt.Errorf("write menu directory: %w", err)
		}
	}
	if err := writeInt32(w, NullOffset); err != nil {
		return fmt.Errorf("write menu directory sentinel: %w", err)
	}
	return nil
}

func (l *Layout) writeMenu(w *countingWriter, m *MenuBlock) error {
	if err := w.at(m.Offset, "menu record"); err != nil {
		return err
	}
	if err := writeInt32(w, m.Next); err != nil {
		return err
	}
	if err := writeInt32(w, m.Submenus); err != nil {
		return err
	}
	if err := writeTextField(w, m.Title, m.TitleSize); err != nil {
		return err
	}
	for _, c := range []int{m.TitleFG, m.TitleBG, m.WorkFG, m.WorkBG} {
		if err := writeUint8(w, uint8(c)); err != nil {
			return err
		}
	}
	for _, v := range []int{m.Width, m.Height, m.Gap} {
		if err := writeInt32(w, int32(v)); err != nil {
			return err
		}
	}

	for i := range m.Items {
		it := &m.Items[i]
		if err := w.at(it.Offset, "item record"); err != nil {
			return err
		}
		if err := writeUint32(w, it.MenuFlags); err != nil {
			return err
		}
		if err := writeInt32(w, it.Link); err != nil {
			return err
		}
		if err := writeUint32(w, it.IconFlags); err != nil {
			return err
		}
		if err := writeTextField(w, it.Text, it.TextSize); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}
