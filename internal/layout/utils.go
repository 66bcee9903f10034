// utils.go
package layout

import (
	"encoding/binary"
	"fmt"
	"io"
)

// --- Binary Writing Helpers ---

func writeUint8(w io.Writer, value uint8) error {
	return binary.Write(w, binary.LittleEndian, value)
}

func writeUint32(w io.Writer, value uint32) error {
	return binary.Write(w, binary.LittleEndian, value)
}

func writeInt32(w io.Writer, value int32) error {
	return binary.Write(w, binary.LittleEndian, value)
}

// writeText writes s into a field of exactly size bytes, zero padded. Text
// longer than the field is cut short.
func writeText(w io.Writer, s string, size int) error {
	buf := make([]byte, size)
	copy(buf, s)
	_, err := w.Write(buf)
	return err
}

// writeTextField writes a 12 byte text field: the text inline, or the
// {indirection, validation, size} triple the loader fills in.
func writeTextField(w io.Writer, text string, size int) error {
	if size == 0 {
		return writeText(w, text, TextFieldSize)
	}
	if err := writeInt32(w, 0); err != nil {
		return err
	}
	if err := writeInt32(w, NullOffset); err != nil {
		return err
	}
	return writeInt32(w, int32(size))
}

// countingWriter tracks the file position so each block can be checked
// against the offset it was given during collation.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// at fails if the writer is not at the expected offset.
func (c *countingWriter) at(offset int, what string) error {
	if c.n != int64(offset) {
		return fmt.Errorf("internal error: %s at file position %d, expected offset %d", what, c.n, offset)
	}
	return nil
}
