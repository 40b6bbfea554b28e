package printer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ESC/POS command bytes
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Text alignment
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Font size
const (
	FontNormal = 0x00
	FontDouble = 0x11
	FontWide   = 0x10
	FontTall   = 0x01
)

// Paper widths in characters.
const (
	Width58mm = 32
	Width80mm = 48
)

// Document builds an ESC/POS byte stream together with a plain-text preview
// of what the printer will output.
type Document struct {
	buf     bytes.Buffer
	preview strings.Builder
	width   int
	align   int
}

// NewDocument creates a document for the given character width.
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = Width58mm
	}
	d := &Document{width: charWidth}
	d.Init()
	return d
}

// Width returns the printable width in characters.
func (d *Document) Width() int {
	return d.width
}

// Init sends ESC @.
func (d *Document) Init() *Document {
	d.buf.Write([]byte{ESC, '@'})
	return d
}

func (d *Document) line(s string) {
	d.buf.WriteString(s)
	d.buf.WriteByte(LF)

	pad := 0
	switch d.align {
	case AlignCenter:
		pad = (d.width - runeLen(s)) / 2
	case AlignRight:
		pad = d.width - runeLen(s)
	}
	if pad > 0 {
		d.preview.WriteString(strings.Repeat(" ", pad))
	}
	d.preview.WriteString(s)
	d.preview.WriteByte('\n')
}

// LineFeed sends a line feed.
func (d *Document) LineFeed() *Document {
	d.line("")
	return d
}

// FeedLines advances the paper n lines without touching the preview.
func (d *Document) FeedLines(n int) *Document {
	d.buf.Write([]byte{ESC, 'd', byte(n)})
	return d
}

func (d *Document) SetAlign(align int) *Document {
	d.align = align
	d.buf.Write([]byte{ESC, 'a', byte(align)})
	return d
}

func (d *Document) SetBold(on bool) *Document {
	var v byte
	if on {
		v = 1
	}
	d.buf.Write([]byte{ESC, 'E', v})
	return d
}

func (d *Document) SetFontSize(size byte) *Document {
	d.buf.Write([]byte{GS, '!', size})
	return d
}

// Text prints s on its own line, cut to the paper width.
func (d *Document) Text(s string) *Document {
	d.line(Truncate(s, d.width))
	return d
}

func (d *Document) TextF(format string, args ...interface{}) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// Separator prints a full-width rule made of char.
func (d *Document) Separator(char byte) *Document {
	d.line(strings.Repeat(string(char), d.width))
	return d
}

// KeyValue prints key on the left and value flush right.
func (d *Document) KeyValue(key, value string) *Document {
	d.line(d.columns(key, value))
	return d
}

// ItemLine prints "2x Name" with the total flush right. Long names are cut so the
// total always fits on the same line.
func (d *Document) ItemLine(qty int, name, total string) *Document {
	prefix := fmt.Sprintf("%dx ", qty)
	room := d.width - runeLen(prefix) - runeLen(total) - 1
	if room < 1 {
		room = 1
	}
	d.line(d.columns(prefix+Truncate(name, room), total))
	return d
}

func (d *Document) columns(left, right string) string {
	spaces := d.width - runeLen(left) - runeLen(right)
	if spaces < 1 {
		spaces = 1
	}
	return left + strings.Repeat(" ", spaces) + right
}

// Cut sends a full cut.
func (d *Document) Cut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x00})
	return d
}

// PartialCut sends a partial cut.
func (d *Document) PartialCut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x01})
	return d
}

// Bytes returns the accumulated ESC/POS stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

// Preview returns the receipt as plain text.
func (d *Document) Preview() string {
	return d.preview.String()
}

// Reset clears both buffers and reinitializes the document.
func (d *Document) Reset() *Document {
	d.buf.Reset()
	d.preview.Reset()
	d.align = AlignLeft
	d.Init()
	return d
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if runeLen(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
