package language

// NewLanguage starts a language built in code. Entities and features created
// through the helpers below use their key as id.
func NewLanguage(key, version string) *Language {
	return &Language{ID: key, Key: key, Name: key, Version: version}
}

func (l *Language) Concept(key string) *Classifier {
	return l.classifier(key, ConceptKind)
}

func (l *Language) Interface(key string) *Classifier {
	return l.classifier(key, InterfaceKind)
}

func (l *Language) Annotation(key string) *Classifier {
	return l.classifier(key, AnnotationKind)
}

func (l *Language) classifier(key string, kind ClassifierKind) *Classifier {
	c := &Classifier{ID: key, Key: key, Name: key, Kind: kind, Language: l}
	l.Classifiers = append(l.Classifiers, c)
	return c
}

func (l *Language) Primitive(key string) *DataType {
	d := &DataType{ID: key, Key: key, Name: key, Kind: PrimitiveKind, Language: l}
	l.DataTypes = append(l.DataTypes, d)
	return d
}

func (l *Language) Enumeration(key string, literals ...string) *DataType {
	d := &DataType{ID: key, Key: key, Name: key, Kind: EnumerationKind, Literals: literals, Language: l}
	l.DataTypes = append(l.DataTypes, d)
	return d
}

func (c *Classifier) SetAbstract() *Classifier {
	c.Abstract = true
	return c
}

func (c *Classifier) SetPartition() *Classifier {
	c.Partition = true
	return c
}

func (c *Classifier) Extending(ids ...string) *Classifier {
	c.Extends = append(c.Extends, ids...)
	return c
}

func (c *Classifier) Implementing(ids ...string) *Classifier {
	c.Implements = append(c.Implements, ids...)
	return c
}

func (c *Classifier) Property(key, typeID string, optional bool) *Classifier {
	return c.feature(key, PropertyFeature, typeID, optional, false)
}

func (c *Classifier) Containment(key, typeID string, optional, multiple bool) *Classifier {
	return c.feature(key, ContainmentFeature, typeID, optional, multiple)
}

func (c *Classifier) Reference(key, typeID string, optional, multiple bool) *Classifier {
	return c.feature(key, ReferenceFeature, typeID, optional, multiple)
}

func (c *Classifier) feature(key string, kind FeatureKind, typeID string, optional, multiple bool) *Classifier {
	c.Features = append(c.Features, &Feature{
		ID:       key,
		Key:      key,
		Name:     key,
		Kind:     kind,
		Optional: optional,
		Multiple: multiple,
		TypeID:   typeID,
		Owner:    c,
	})
	return c
}
