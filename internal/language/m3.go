package language

// LionCore M3 keys as used in language chunks.
const (
	M3Key     = "LionCore-M3"
	M3Version = "2023.1"

	KeyLanguage           = "Language"
	KeyLanguageEntity     = "LanguageEntity"
	KeyClassifier         = "Classifier"
	KeyConcept            = "Concept"
	KeyInterface          = "Interface"
	KeyAnnotation         = "Annotation"
	KeyFeature            = "Feature"
	KeyLink               = "Link"
	KeyProperty           = "Property"
	KeyContainment        = "Containment"
	KeyReference          = "Reference"
	KeyDataType           = "DataType"
	KeyPrimitiveType      = "PrimitiveType"
	KeyEnumeration        = "Enumeration"
	KeyEnumerationLiteral = "EnumerationLiteral"
	KeyIKeyed             = "IKeyed"

	KeyIKeyedKey            = "IKeyed-key"
	KeyLanguageVersion      = "Language-version"
	KeyLanguageEntities     = "Language-entities"
	KeyLanguageDependsOn    = "Language-dependsOn"
	KeyClassifierFeatures   = "Classifier-features"
	KeyConceptAbstract      = "Concept-abstract"
	KeyConceptPartition     = "Concept-partition"
	KeyConceptExtends       = "Concept-extends"
	KeyConceptImplements    = "Concept-implements"
	KeyInterfaceExtends     = "Interface-extends"
	KeyAnnotationAnnotates  = "Annotation-annotates"
	KeyAnnotationExtends    = "Annotation-extends"
	KeyAnnotationImplements = "Annotation-implements"
	KeyFeatureOptional      = "Feature-optional"
	KeyLinkMultiple         = "Link-multiple"
	KeyLinkType             = "Link-type"
	KeyPropertyType         = "Property-type"
	KeyEnumerationLiterals  = "Enumeration-literals"
)

// LionCoreM3 describes LionCore M3 in its own terms. Registered together with
// the builtins it is the definition language chunks are checked against.
func LionCoreM3() *Language {
	l := NewLanguage(M3Key, M3Version)
	l.Name = "LionCore_M3"

	l.Interface(KeyIKeyed).
		Extending(BuiltinINamedID).
		Property(KeyIKeyedKey, BuiltinStringID, false)

	l.Concept(KeyLanguage).SetPartition().
		Implementing(KeyIKeyed).
		Property(KeyLanguageVersion, BuiltinStringID, false).
		Containment(KeyLanguageEntities, KeyLanguageEntity, true, true).
		Reference(KeyLanguageDependsOn, KeyLanguage, true, true)

	l.Concept(KeyLanguageEntity).SetAbstract().Implementing(KeyIKeyed)

	l.Concept(KeyClassifier).SetAbstract().
		Extending(KeyLanguageEntity).
		Containment(KeyClassifierFeatures, KeyFeature, true, true)

	l.Concept(KeyConcept).
		Extending(KeyClassifier).
		Property(KeyConceptAbstract, BuiltinBooleanID, false).
		Property(KeyConceptPartition, BuiltinBooleanID, false).
		Reference(KeyConceptExtends, KeyConcept, true, false).
		Reference(KeyConceptImplements, KeyInterface, true, true)

	l.Concept(KeyInterface).
		Extending(KeyClassifier).
		Reference(KeyInterfaceExtends, KeyInterface, true, true)

	l.Concept(KeyAnnotation).
		Extending(KeyClassifier).
		Reference(KeyAnnotationAnnotates, KeyClassifier, true, false).
		Reference(KeyAnnotationExtends, KeyAnnotation, true, false).
		Reference(KeyAnnotationImplements, KeyInterface, true, true)

	l.Concept(KeyFeature).SetAbstract().
		Implementing(KeyIKeyed).
		Property(KeyFeatureOptional, BuiltinBooleanID, false)

	l.Concept(KeyProperty).
		Extending(KeyFeature).
		Reference(KeyPropertyType, KeyDataType, false, false)

	l.Concept(KeyLink).SetAbstract().
		Extending(KeyFeature).
		Property(KeyLinkMultiple, BuiltinBooleanID, false).
		Reference(KeyLinkType, KeyClassifier, false, false)

	l.Concept(KeyContainment).Extending(KeyLink)
	l.Concept(KeyReference).Extending(KeyLink)

	l.Concept(KeyDataType).SetAbstract().Extending(KeyLanguageEntity)
	l.Concept(KeyPrimitiveType).Extending(KeyDataType)

	l.Concept(KeyEnumeration).
		Extending(KeyDataType).
		Containment(KeyEnumerationLiterals, KeyEnumerationLiteral, true, true)

	l.Concept(KeyEnumerationLiteral).Implementing(KeyIKeyed)

	return l
}

// MetaRegistry is a registry holding the builtins and LionCore M3.
func MetaRegistry() *Registry {
	return NewRegistry(LionCoreM3())
}
