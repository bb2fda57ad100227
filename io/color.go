package carpio

import (
	"fmt"
	"strconv"
)

type colorKind uint8

const (
	colorNone colorKind = iota
	colorBasic          // 16 colours, 0-7 normal and 8-15 bright
	colorIndexed        // 256-colour palette
	colorRGB            // 24-bit
)

// ColorSpec is a foreground colour. The zero value means "no colour".
type ColorSpec struct {
	kind    colorKind
	index   uint8
	r, g, b uint8
}

var (
	Red     = basic(1)
	Green   = basic(2)
	Yellow  = basic(3)
	Blue    = basic(4)
	Magenta = basic(5)
	Cyan    = basic(6)

	BrightBlack   = basic(8)
	BrightRed     = basic(9)
	BrightGreen   = basic(10)
	BrightYellow  = basic(11)
	BrightBlue    = basic(12)
	BrightMagenta = basic(13)
	BrightCyan    = basic(14)
)

func basic(i uint8) ColorSpec { return ColorSpec{kind: colorBasic, index: i & 15} }

// Indexed returns a 256-colour palette entry.
func Indexed(i uint8) ColorSpec { return ColorSpec{kind: colorIndexed, index: i} }

// Truecolor returns a 24-bit colour.
func Truecolor(r, g, b uint8) ColorSpec { return ColorSpec{kind: colorRGB, r: r, g: g, b: b} }

// appendSGR appends the SGR parameters for c at the given colour level and
// reports whether anything was written. Colours the terminal cannot show are
// dropped rather than approximated.
func (c ColorSpec) appendSGR(dst []byte, level int) ([]byte, bool) {
	switch {
	case c.kind == colorBasic:
		code := 30 + int(c.index)
		if c.index >= 8 {
			code = 90 + int(c.index) - 8
		}
		return strconv.AppendInt(dst, int64(code), 10), true
	case c.kind == colorIndexed && level >= 2:
		dst = append(dst, "38;5;"...)
		return strconv.AppendInt(dst, int64(c.index), 10), true
	case c.kind == colorRGB && level >= 3:
		dst = append(dst, "38;2;"...)
		dst = strconv.AppendInt(dst, int64(c.r), 10)
		dst = append(dst, ';')
		dst = strconv.AppendInt(dst, int64(c.g), 10)
		dst = append(dst, ';')
		return strconv.AppendInt(dst, int64(c.b), 10), true
	}
	return dst, false
}

// Style combines a foreground colour with text attributes.
type Style struct {
	fg    ColorSpec
	attrs []byte // SGR attribute codes in the order they were added
}

func NewStyle() *Style                 { return &Style{} }
func (s *Style) Fg(c ColorSpec) *Style { s.fg = c; return s }
func (s *Style) Bold() *Style          { return s.attr('1') }
func (s *Style) Faint() *Style         { return s.attr('2') }
func (s *Style) Underline() *Style     { return s.attr('4') }

func (s *Style) attr(code byte) *Style {
	for _, a := range s.attrs {
		if a == code {
			return s
		}
	}
	s.attrs = append(s.attrs, code)
	return s
}

// Sprint wraps text in the style when the manager allows colour.
func (s *Style) Sprint(io *IOManager, text string) string {
	if !io.SupportsColor() {
		return text
	}
	seq := make([]byte, 0, 24)
	for i, a := range s.attrs {
		if i > 0 {
			seq = append(seq, ';')
		}
		seq = append(seq, a)
	}
	if len(seq) > 0 {
		seq = append(seq, ';')
	}
	seq, ok := s.fg.appendSGR(seq, io.ColorLevel())
	if !ok && len(seq) > 0 {
		seq = seq[:len(seq)-1]
	}
	if len(seq) == 0 {
		return text
	}
	return "\x1b[" + string(seq) + "m" + text + "\x1b[0m"
}

func (s *Style) Sprintf(io *IOManager, format string, a ...any) string {
	return s.Sprint(io, fmt.Sprintf(format, a...))
}

// Theme assigns a colour to each log level.
type Theme struct {
	Success, Warning, Error, Info, Debug, Muted ColorSpec
}

// For returns the colour of level.
func (t Theme) For(level LogLevel) ColorSpec {
	switch level {
	case LevelDebug:
		return t.Debug
	case LevelInfo:
		return t.Info
	case LevelSuccess:
		return t.Success
	case LevelWarning:
		return t.Warning
	case LevelError:
		return t.Error
	}
	return ColorSpec{}
}

func DefaultTheme16() Theme {
	return Theme{
		Success: BrightGreen,
		Warning: BrightYellow,
		Error:   BrightRed,
		Info:    BrightCyan,
		Debug:   BrightMagenta,
		Muted:   BrightBlack,
	}
}

func DefaultThemeTruecolor() Theme {
	return Theme{
		Success: Truecolor(80, 250, 123),
		Warning: Truecolor(255, 184, 108),
		Error:   Truecolor(255, 85, 85),
		Info:    Truecolor(139, 233, 253),
		Debug:   Truecolor(189, 147, 249),
		Muted:   Truecolor(128, 128, 128),
	}
}

// DefaultTheme picks the truecolor theme when the terminal supports it.
func DefaultTheme(io *IOManager) Theme {
	if io.ColorLevel() >= 3 {
		return DefaultThemeTruecolor()
	}
	return DefaultTheme16()
}
