package scval

import (
	"encoding/hex"
	"fmt"

	"github.com/stellar/go/xdr"
)

// ToInterface converts an ScVal to a Go value for JSON serialization.
func ToInterface(val xdr.ScVal) interface{} {
	switch val.Type {
	case xdr.ScValTypeScvBool:
		return val.MustB()
	case xdr.ScValTypeScvVoid:
		return nil
	case xdr.ScValTypeScvU32:
		return uint32(val.MustU32())
	case xdr.ScValTypeScvI32:
		return int32(val.MustI32())
	case xdr.ScValTypeScvU64:
		return uint64(val.MustU64())
	case xdr.ScValTypeScvI64:
		return int64(val.MustI64())
	case xdr.ScValTypeScvI128:
		if v, err := ToI128(val); err == nil {
			return v
		}
		i128 := val.MustI128()
		return map[string]interface{}{
			"hi":  int64(i128.Hi),
			"lo":  uint64(i128.Lo),
			"hex": fmt.Sprintf("%016x%016x", uint64(i128.Hi), uint64(i128.Lo)),
		}
	case xdr.ScValTypeScvU128:
		u128 := val.MustU128()
		return map[string]interface{}{
			"hi":  uint64(u128.Hi),
			"lo":  uint64(u128.Lo),
			"hex": fmt.Sprintf("%016x%016x", uint64(u128.Hi), uint64(u128.Lo)),
		}
	case xdr.ScValTypeScvSymbol:
		return string(val.MustSym())
	case xdr.ScValTypeScvString:
		return string(val.MustStr())
	case xdr.ScValTypeScvAddress:
		addr := val.MustAddress()
		str, _ := addr.String()
		return str
	case xdr.ScValTypeScvBytes:
		return hex.EncodeToString(val.MustBytes())
	case xdr.ScValTypeScvVec:
		vec, _ := ToVec(val)
		result := make([]interface{}, len(vec))
		for i, element := range vec {
			result[i] = ToInterface(element)
		}
		return result
	case xdr.ScValTypeScvMap:
		scMap := *val.MustMap()
		result := make(map[string]interface{})
		for _, entry := range scMap {
			result[toKey(entry.Key)] = ToInterface(entry.Val)
		}
		return result
	default:
		return val.Type.String()
	}
}

// Args renders positional constructor arguments, keyed by their parameter
// names when names line up with args.
func Args(names []string, args []xdr.ScVal) map[string]interface{} {
	out := make(map[string]interface{}, len(args))
	for i, arg := range args {
		key := fmt.Sprintf("arg%d", i)
		if i < len(names) {
			key = names[i]
		}
		out[key] = ToInterface(arg)
	}
	return out
}

func toKey(val xdr.ScVal) string {
	switch val.Type {
	case xdr.ScValTypeScvSymbol:
		return string(val.MustSym())
	case xdr.ScValTypeScvString:
		return string(val.MustStr())
	case xdr.ScValTypeScvU32:
		return fmt.Sprintf("%d", val.MustU32())
	default:
		return fmt.Sprintf("<%s>", val.Type.String())
	}
}
