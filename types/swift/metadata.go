package swift

const (
	// Non-type metadata kinds have this bit set.
	MetadataKindIsNonType = 0x400
	// Non-heap metadata kinds have this bit set.
	MetadataKindIsNonHeap = 0x200
	// The above two flags are negative because the "class" kind has to be zero,
	// and class metadata is both type and heap metadata.
	// Runtime-private metadata has this bit set.
	MetadataKindIsRuntimePrivate = 0x100
)

type MetadataKind uint32

const (
	ClassMetadataKind                    MetadataKind = 0                                                        // class
	StructMetadataKind                   MetadataKind = 0 | MetadataKindIsNonHeap                                // struct
	EnumMetadataKind                     MetadataKind = 1 | MetadataKindIsNonHeap                                // enum
	OptionalMetadataKind                 MetadataKind = 2 | MetadataKindIsNonHeap                                // optional
	ForeignClassMetadataKind             MetadataKind = 3 | MetadataKindIsNonHeap                                // foreign class
	ForeignReferenceTypeMetadataKind     MetadataKind = 4 | MetadataKindIsNonHeap                                // foreign reference type
	OpaqueMetadataKind                   MetadataKind = 0 | MetadataKindIsRuntimePrivate | MetadataKindIsNonHeap // opaque
	TupleMetadataKind                    MetadataKind = 1 | MetadataKindIsRuntimePrivate | MetadataKindIsNonHeap // tuple
	FunctionMetadataKind                 MetadataKind = 2 | MetadataKindIsRuntimePrivate | MetadataKindIsNonHeap // function
	ExistentialMetadataKind              MetadataKind = 3 | MetadataKindIsRuntimePrivate | MetadataKindIsNonHeap // existential
	MetatypeMetadataKind                 MetadataKind = 4 | MetadataKindIsRuntimePrivate | MetadataKindIsNonHeap // metatype
	ObjCClassWrapperMetadataKind         MetadataKind = 5 | MetadataKindIsRuntimePrivate | MetadataKindIsNonHeap // objc class wrapper
	ExistentialMetatypeMetadataKind      MetadataKind = 6 | MetadataKindIsRuntimePrivate | MetadataKindIsNonHeap // existential metatype
	ExtendedExistentialMetadataKind      MetadataKind = 7 | MetadataKindIsRuntimePrivate | MetadataKindIsNonHeap // extended existential type
	HeapLocalVariableMetadataKind        MetadataKind = 0 | MetadataKindIsNonType                                // heap local variable
	HeapGenericLocalVariableMetadataKind MetadataKind = 0 | MetadataKindIsNonType | MetadataKindIsRuntimePrivate // heap generic local variable
	ErrorObjectMetadataKind              MetadataKind = 1 | MetadataKindIsNonType | MetadataKindIsRuntimePrivate // error object
	TaskMetadataKind                     MetadataKind = 2 | MetadataKindIsNonType | MetadataKindIsRuntimePrivate // task
	JobMetadataKind                      MetadataKind = 3 | MetadataKindIsNonType | MetadataKindIsRuntimePrivate // job
	// The largest possible non-isa-pointer metadata kind value.
	LastEnumerated = 0x7FF
)

var metadataKindNames = map[MetadataKind]string{
	ClassMetadataKind:                    "class",
	StructMetadataKind:                   "struct",
	EnumMetadataKind:                     "enum",
	OptionalMetadataKind:                 "optional",
	ForeignClassMetadataKind:             "foreign class",
	ForeignReferenceTypeMetadataKind:     "foreign reference type",
	OpaqueMetadataKind:                   "opaque",
	TupleMetadataKind:                    "tuple",
	FunctionMetadataKind:                 "function",
	ExistentialMetadataKind:              "existential",
	MetatypeMetadataKind:                 "metatype",
	ObjCClassWrapperMetadataKind:         "objc class wrapper",
	ExistentialMetatypeMetadataKind:      "existential metatype",
	ExtendedExistentialMetadataKind:      "extended existential type",
	HeapLocalVariableMetadataKind:        "heap local variable",
	HeapGenericLocalVariableMetadataKind: "heap generic local variable",
	ErrorObjectMetadataKind:              "error object",
	TaskMetadataKind:                     "task",
	JobMetadataKind:                      "job",
}

func (k MetadataKind) String() string {
	if name, ok := metadataKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MetadataKindFromWord interprets the first word of a metadata record. Values above
// LastEnumerated are isa pointers, which only class metadata carries.
func MetadataKindFromWord(word uint64) MetadataKind {
	if word > LastEnumerated {
		return ClassMetadataKind
	}
	return MetadataKind(word)
}

// IsValueType reports whether values of this kind are stored inline rather than behind a
// reference.
func (k MetadataKind) IsValueType() bool {
	switch k {
	case StructMetadataKind, EnumMetadataKind, OptionalMetadataKind, TupleMetadataKind:
		return true
	default:
		return false
	}
}
