package listing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/chazu/luadis/pkg/proto"
)

// LuacFloatDigits is the significant-digit count luac uses for floats.
const LuacFloatDigits = 14

// ValidTag reports whether t is one of the constant variants a
// prototype may hold.
func ValidTag(t proto.Tag) bool {
	switch t {
	case proto.TagNil, proto.TagFalse, proto.TagTrue, proto.TagInt,
		proto.TagFloat, proto.TagShortStr, proto.TagLongStr:
		return true
	}
	return false
}

// TypeTag returns the one-letter type code of a constant: N, B, F, I or S.
func TypeTag(k proto.Constant) string {
	switch k.Tag {
	case proto.TagNil:
		return "N"
	case proto.TagFalse, proto.TagTrue:
		return "B"
	case proto.TagFloat:
		return "F"
	case proto.TagInt:
		return "I"
	case proto.TagShortStr, proto.TagLongStr:
		return "S"
	default:
		return fmt.Sprintf("?%d", uint8(k.Tag))
	}
}

// FormatConstant renders a constant as a literal. digits selects the
// float precision; 0 means the shortest text that reads back exactly.
func FormatConstant(k proto.Constant, digits int) string {
	switch k.Tag {
	case proto.TagNil:
		return "nil"
	case proto.TagFalse:
		return "false"
	case proto.TagTrue:
		return "true"
	case proto.TagFloat:
		return FormatFloat(k.Float, digits)
	case proto.TagInt:
		return strconv.FormatInt(k.Int, 10)
	case proto.TagShortStr, proto.TagLongStr:
		return QuoteString(k.Str)
	default:
		return fmt.Sprintf("?%d", uint8(k.Tag))
	}
}

// FormatFloat renders f so it never reads as an integer: "2" becomes "2.0".
func FormatFloat(f float64, digits int) string {
	var s string
	switch {
	case math.IsInf(f, 1):
		s = "inf"
	case math.IsInf(f, -1):
		s = "-inf"
	case math.IsNaN(f):
		s = "nan"
		if math.Signbit(f) {
			s = "-nan"
		}
	case digits > 0:
		s = strconv.FormatFloat(f, 'g', digits, 64)
	default:
		s = strconv.FormatFloat(f, 'g', -1, 64)
	}
	if strings.Trim(s, "-0123456789") == "" {
		s += ".0"
	}
	return s
}

// QuoteString renders s as a double-quoted literal. The input is treated
// as raw bytes; embedded NULs and invalid UTF-8 are escaped, not rejected.
func QuoteString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\a':
			sb.WriteString(`\a`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\v':
			sb.WriteString(`\v`)
		default:
			if c >= 0x20 && c < 0x7f {
				sb.WriteByte(c)
			} else {
				fmt.Fprintf(&sb, `\%03d`, c)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
