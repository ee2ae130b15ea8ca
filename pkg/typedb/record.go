package typedb

// TypeRecord maps one native type to its host representation. Records are
// created when a module is first processed and never change afterwards.
type TypeRecord struct {
	// HostType is the host-language identifier generated for the type.
	HostType string
	// NativeType is the fully qualified Swift name, e.g. "main.Person".
	NativeType string
	// MetadataAccessor is the mangled symbol of the type's metadata accessor.
	MetadataAccessor string
	HostNamespace    string
	// Module is the module that owns the type. For overlay records it is not
	// the module that looked the record up.
	Module      string
	IsBlittable bool
	IsFrozen    bool
}

// OutOfModuleType is one overlay entry: a type that RequestingModule references
// but that another module declares.
type OutOfModuleType struct {
	RequestingModule string
	TypeName         string
	Record           *TypeRecord
}

func overlayKey(requestingModule, typeName string) string {
	return requestingModule + "." + typeName
}
