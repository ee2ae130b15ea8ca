package metadata

import "reflect"

// scalarSymbols maps scalar kinds to the type metadata symbol of the matching
// standard library type.
var scalarSymbols = map[reflect.Kind]string{
	reflect.Bool:          "$sSbN",
	reflect.Int:           "$sSiN",
	reflect.Int8:          "$ss4Int8VN",
	reflect.Int16:         "$ss5Int16VN",
	reflect.Int32:         "$ss5Int32VN",
	reflect.Int64:         "$ss5Int64VN",
	reflect.Uint:          "$sSuN",
	reflect.Uint8:         "$ss5UInt8VN",
	reflect.Uint16:        "$ss6UInt16VN",
	reflect.Uint32:        "$ss6UInt32VN",
	reflect.Uint64:        "$ss6UInt64VN",
	reflect.Uintptr:       "$sSuN",
	reflect.Float32:       "$sSfN",
	reflect.Float64:       "$sSdN",
	reflect.UnsafePointer: "$sSvN",
}

// ScalarSymbol returns the metadata symbol for a scalar host type.
func ScalarSymbol(t reflect.Type) (string, bool) {
	if t == nil {
		return "", false
	}
	sym, ok := scalarSymbols[t.Kind()]
	return sym, ok
}
