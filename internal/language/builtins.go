package language

const (
	BuiltinsKey     = "LionCore-builtins"
	BuiltinsVersion = "2023.1"

	BuiltinStringID  = "LionCore-builtins-String"
	BuiltinBooleanID = "LionCore-builtins-Boolean"
	BuiltinIntegerID = "LionCore-builtins-Integer"
	BuiltinJSONID    = "LionCore-builtins-JSON"
	BuiltinNodeID    = "LionCore-builtins-Node"
	BuiltinINamedID  = "LionCore-builtins-INamed"
	BuiltinNameKey   = "LionCore-builtins-INamed-name"
)

// Builtins returns a fresh copy of the LionCore builtins language.
func Builtins() *Language {
	l := NewLanguage(BuiltinsKey, BuiltinsVersion)
	l.Primitive(BuiltinStringID).Name = "String"
	l.Primitive(BuiltinBooleanID).Name = "Boolean"
	l.Primitive(BuiltinIntegerID).Name = "Integer"
	l.Primitive(BuiltinJSONID).Name = "JSON"
	l.Concept(BuiltinNodeID).SetAbstract().Name = "Node"
	named := l.Interface(BuiltinINamedID).Property(BuiltinNameKey, BuiltinStringID, false)
	named.Name = "INamed"
	named.Features[0].Name = "name"
	return l
}
