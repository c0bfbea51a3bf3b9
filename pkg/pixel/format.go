package pixel

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var ErrUnknownFormat = errors.New("unknown color format")

type ColorFormat int

const (
	FormatHEX ColorFormat = iota + 1
	FormatRGB
	FormatExcelColor
)

var tokens = map[ColorFormat]string{
	FormatHEX:        "HEX",
	FormatRGB:        "RGB",
	FormatExcelColor: "Excel_Color",
}

type cellEncoder func(p RGB) string

var encoders = map[ColorFormat]cellEncoder{
	FormatHEX:        encodeHex,
	FormatRGB:        encodeRGB,
	FormatExcelColor: encodeExcel,
}

// Formats lists the selectable formats in menu order.
func Formats() []ColorFormat {
	return []ColorFormat{FormatHEX, FormatRGB, FormatExcelColor}
}

// ParseFormat maps a selector token (HEX, RGB, Excel_Color) to its format,
// ignoring case.
func ParseFormat(token string) (ColorFormat, error) {
	f, ok := lo.Find(Formats(), func(f ColorFormat) bool {
		return strings.EqualFold(tokens[f], strings.TrimSpace(token))
	})
	if !ok {
		return 0, errors.Wrapf(ErrUnknownFormat, "%q", token)
	}
	return f, nil
}

func (f ColorFormat) Valid() bool {
	_, ok := encoders[f]
	return ok
}

func (f ColorFormat) String() string {
	if t, ok := tokens[f]; ok {
		return t
	}
	return "ColorFormat(" + strconv.Itoa(int(f)) + ")"
}

// Cell encodes a single pixel.
func (f ColorFormat) Cell(p RGB) (string, error) {
	enc, ok := encoders[f]
	if !ok {
		return "", ErrUnknownFormat
	}
	return enc(p), nil
}

func encodeRGB(p RGB) string {
	buf := make([]byte, 0, 11)
	buf = strconv.AppendUint(buf, uint64(p.R), 10)
	buf = append(buf, ',')
	buf = strconv.AppendUint(buf, uint64(p.G), 10)
	buf = append(buf, ',')
	buf = strconv.AppendUint(buf, uint64(p.B), 10)
	return string(buf)
}

const hexDigits = "0123456789ABCDEF"

func encodeHex(p RGB) string {
	return string([]byte{
		'#',
		hexDigits[p.R>>4], hexDigits[p.R&0xF],
		hexDigits[p.G>>4], hexDigits[p.G&0xF],
		hexDigits[p.B>>4], hexDigits[p.B&0xF],
	})
}

// ExcelCode packs p as B,G,R into a 24-bit value, the layout spreadsheet
// color APIs expect.
func ExcelCode(p RGB) uint32 {
	return uint32(p.B)<<16 | uint32(p.G)<<8 | uint32(p.R)
}

func encodeExcel(p RGB) string {
	return strconv.FormatUint(uint64(ExcelCode(p)), 10)
}
