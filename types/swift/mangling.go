package swift

// StandardTypeKind is the nominal kind of a standard-library substitution.
type StandardTypeKind uint8

const (
	StandardStruct StandardTypeKind = iota
	StandardEnum
	StandardProtocol
	StandardClass
)

func (k StandardTypeKind) String() string {
	switch k {
	case StandardStruct:
		return "struct"
	case StandardEnum:
		return "enum"
	case StandardProtocol:
		return "protocol"
	case StandardClass:
		return "class"
	default:
		return "unknown"
	}
}

// StandardType is one entry of the `S<letter>` standard substitution table.
type StandardType struct {
	Name string
	Kind StandardTypeKind
}

// MangledKnownTypeKind maps the letter following `S` to the Swift standard library type it names.
// ref: include/swift/Demangling/StandardTypesMangling.def
var MangledKnownTypeKind = map[byte]StandardType{
	'A': {"AutoreleasingUnsafeMutablePointer", StandardStruct},
	'a': {"Array", StandardStruct},
	'b': {"Bool", StandardStruct},
	'D': {"Dictionary", StandardStruct},
	'd': {"Double", StandardStruct},
	'f': {"Float", StandardStruct},
	'h': {"Set", StandardStruct},
	'I': {"DefaultIndices", StandardStruct},
	'i': {"Int", StandardStruct},
	'J': {"Character", StandardStruct},
	'N': {"ClosedRange", StandardStruct},
	'n': {"Range", StandardStruct},
	'O': {"ObjectIdentifier", StandardStruct},
	'P': {"UnsafePointer", StandardStruct},
	'p': {"UnsafeMutablePointer", StandardStruct},
	'R': {"UnsafeBufferPointer", StandardStruct},
	'r': {"UnsafeMutableBufferPointer", StandardStruct},
	'S': {"String", StandardStruct},
	's': {"Substring", StandardStruct},
	'u': {"UInt", StandardStruct},
	'V': {"UnsafeRawPointer", StandardStruct},
	'v': {"UnsafeMutableRawPointer", StandardStruct},
	'W': {"UnsafeRawBufferPointer", StandardStruct},
	'w': {"UnsafeMutableRawBufferPointer", StandardStruct},

	'q': {"Optional", StandardEnum},

	'B': {"BinaryFloatingPoint", StandardProtocol},
	'E': {"Encodable", StandardProtocol},
	'e': {"Decodable", StandardProtocol},
	'F': {"FloatingPoint", StandardProtocol},
	'G': {"RandomNumberGenerator", StandardProtocol},
	'H': {"Hashable", StandardProtocol},
	'j': {"Numeric", StandardProtocol},
	'K': {"BidirectionalCollection", StandardProtocol},
	'k': {"RandomAccessCollection", StandardProtocol},
	'L': {"Comparable", StandardProtocol},
	'l': {"Collection", StandardProtocol},
	'M': {"MutableCollection", StandardProtocol},
	'm': {"RangeReplaceableCollection", StandardProtocol},
	'Q': {"Equatable", StandardProtocol},
	'T': {"Sequence", StandardProtocol},
	't': {"IteratorProtocol", StandardProtocol},
	'U': {"UnsignedInteger", StandardProtocol},
	'X': {"RangeExpression", StandardProtocol},
	'x': {"Strideable", StandardProtocol},
	'Y': {"RawRepresentable", StandardProtocol},
	'y': {"StringProtocol", StandardProtocol},
	'Z': {"SignedInteger", StandardProtocol},
	'z': {"BinaryInteger", StandardProtocol},
}

// MangledKnownTypeKind2 maps the letter following `Sc` to the concurrency type it names.
// ref: include/swift/Demangling/StandardTypesMangling.def (STANDARD_TYPE_CONCURRENCY)
var MangledKnownTypeKind2 = map[byte]StandardType{
	'A': {"Actor", StandardProtocol},
	'C': {"CheckedContinuation", StandardStruct},
	'c': {"UnsafeContinuation", StandardStruct},
	'E': {"CancellationError", StandardStruct},
	'e': {"UnownedSerialExecutor", StandardStruct},
	'F': {"Executor", StandardProtocol},
	'f': {"SerialExecutor", StandardProtocol},
	'G': {"TaskGroup", StandardStruct},
	'g': {"ThrowingTaskGroup", StandardStruct},
	'h': {"TaskExecutor", StandardProtocol},
	'I': {"AsyncIteratorProtocol", StandardProtocol},
	'i': {"AsyncSequence", StandardProtocol},
	'J': {"UnownedJob", StandardStruct},
	'M': {"MainActor", StandardClass},
	'P': {"TaskPriority", StandardStruct},
	'S': {"AsyncStream", StandardStruct},
	's': {"AsyncThrowingStream", StandardStruct},
	'T': {"Task", StandardStruct},
	't': {"UnsafeCurrentTask", StandardStruct},
}

// MangledBuiltinType maps the letter following `B` to its builtin type name for the
// builtins that carry no width.
var MangledBuiltinType = map[byte]string{
	'b': BUILTIN_TYPE_NAME_BRIDGEOBJECT,
	'B': BUILTIN_TYPE_NAME_UNSAFEVALUEBUFFER,
	'I': BUILTIN_TYPE_NAME_INTLITERAL,
	'O': BUILTIN_TYPE_NAME_UNKNOWNOBJECT,
	'o': BUILTIN_TYPE_NAME_NATIVEOBJECT,
	'p': BUILTIN_TYPE_NAME_RAWPOINTER,
	'w': BUILTIN_TYPE_NAME_WORD,
}
