package bencode

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/xpra-org/pixelcore/pixerr"
)

// Encode serialises v to its canonical bencode byte stream: integers
// in minimal decimal form, dictionary keys sorted byte-lexicographically
// (spec.md §4.6). Encode never fails for a well-formed Value built
// through this package's constructors.
func Encode(v Value) []byte {
	var buf bytes.Buffer
	encodeInto(&buf, v)
	return buf.Bytes()
}

func encodeInto(buf *bytes.Buffer, v Value) {
	switch v.kind {
	case kindInt:
		buf.WriteByte('i')
		buf.WriteString(v.i.String())
		buf.WriteByte('e')
	case kindBytes:
		buf.WriteString(strconv.Itoa(len(v.bytes)))
		buf.WriteByte(':')
		buf.Write(v.bytes)
	case kindList:
		buf.WriteByte('l')
		for _, item := range v.list {
			encodeInto(buf, item)
		}
		buf.WriteByte('e')
	case kindDict:
		buf.WriteByte('d')
		keys := make([]string, 0, len(v.dict))
		for k := range v.dict {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			encodeInto(buf, String(k))
			encodeInto(buf, v.dict[k])
		}
		buf.WriteByte('e')
	default:
		panic(fmt.Sprintf("bencode: %v", pixerr.ErrInvalidArgument))
	}
}
