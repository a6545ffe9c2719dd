package series

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/frcviz/wpilog/internal/cursor"
	"github.com/frcviz/wpilog/internal/schema"
	"github.com/frcviz/wpilog/pkg/types"
)

// decodeValue turns a raw payload into a typed value per the
// generation's declared type. Decoded values never alias the log
// buffer: strings and byte slices are copied out, so a sample stays
// valid even if the caller releases the file bytes.
func decodeValue(gen *schema.Generation, p []byte) (types.Value, error) {
	switch gen.Kind {
	case types.KindBoolean:
		if len(p) != 1 {
			return types.Value{}, fmt.Errorf("boolean payload is %d bytes, want 1", len(p))
		}
		return types.Value{Kind: types.KindBoolean, Bool: p[0] != 0}, nil

	case types.KindInt64:
		if len(p) != 8 {
			return types.Value{}, fmt.Errorf("int64 payload is %d bytes, want 8", len(p))
		}
		return types.Value{Kind: types.KindInt64, Int: int64(binary.LittleEndian.Uint64(p))}, nil

	case types.KindFloat64:
		w := types.FloatWidth(gen.Type)
		if len(p) != w {
			return types.Value{}, fmt.Errorf("%s payload is %d bytes, want %d", gen.Type, len(p), w)
		}
		return types.Value{Kind: types.KindFloat64, Float: readFloat(p, w)}, nil

	case types.KindString:
		return types.Value{Kind: types.KindString, Str: string(p)}, nil

	case types.KindBooleanArray:
		vs := make([]bool, len(p))
		for i, b := range p {
			vs[i] = b != 0
		}
		return types.Value{Kind: types.KindBooleanArray, Bools: vs}, nil

	case types.KindInt64Array:
		if len(p)%8 != 0 {
			return types.Value{}, fmt.Errorf("int64[] payload is %d bytes, not a multiple of 8", len(p))
		}
		vs := make([]int64, len(p)/8)
		for i := range vs {
			vs[i] = int64(binary.LittleEndian.Uint64(p[8*i:]))
		}
		return types.Value{Kind: types.KindInt64Array, Ints: vs}, nil

	case types.KindFloat64Array:
		w := types.FloatWidth(gen.Type)
		if len(p)%w != 0 {
			return types.Value{}, fmt.Errorf("%s payload is %d bytes, not a multiple of %d", gen.Type, len(p), w)
		}
		vs := make([]float64, len(p)/w)
		for i := range vs {
			vs[i] = readFloat(p[w*i:], w)
		}
		return types.Value{Kind: types.KindFloat64Array, Floats: vs}, nil

	case types.KindStringArray:
		c := cursor.New(p)
		n, err := c.U32()
		if err != nil {
			return types.Value{}, fmt.Errorf("string[] count: %w", err)
		}
		// Each element carries at least its 4-byte length prefix, so the
		// count is bounded by the remaining payload. Checking before the
		// allocation keeps a corrupt count from requesting the capacity.
		if uint64(n) > uint64(c.Remaining())/4 {
			return types.Value{}, fmt.Errorf("string[] count %d exceeds payload of %d bytes", n, len(p))
		}
		vs := make([]string, 0, n)
		for i := uint32(0); i < n; i++ {
			s, err := c.String()
			if err != nil {
				return types.Value{}, fmt.Errorf("string[] element %d: %w", i, err)
			}
			vs = append(vs, s)
		}
		if c.Remaining() != 0 {
			return types.Value{}, fmt.Errorf("string[] has %d trailing bytes", c.Remaining())
		}
		return types.Value{Kind: types.KindStringArray, Strs: vs}, nil

	case types.KindRaw:
		return types.Value{Kind: types.KindRaw, Raw: append([]byte(nil), p...)}, nil
	}
	return types.Value{}, fmt.Errorf("undecodable kind %v", gen.Kind)
}

func readFloat(p []byte, width int) float64 {
	if width == 4 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(p)))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(p))
}
