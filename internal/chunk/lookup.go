package chunk

// FindNode returns the first node with the given id, or nil.
func FindNode(c *Chunk, id string) *Node {
	if c == nil {
		return nil
	}
	for _, n := range c.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func FindUsedLanguage(c *Chunk, key string) *UsedLanguage {
	if c == nil {
		return nil
	}
	for i := range c.Languages {
		if c.Languages[i].Key == key {
			return &c.Languages[i]
		}
	}
	return nil
}

// FindProperty returns the property entry whose meta-pointer key equals key.
func FindProperty(n *Node, key string) *Property {
	if n == nil {
		return nil
	}
	for i := range n.Properties {
		if n.Properties[i].Property.Key == key {
			return &n.Properties[i]
		}
	}
	return nil
}

func FindContainment(n *Node, key string) *Containment {
	if n == nil {
		return nil
	}
	for i := range n.Containments {
		if n.Containments[i].Containment.Key == key {
			return &n.Containments[i]
		}
	}
	return nil
}

func FindReference(n *Node, key string) *Reference {
	if n == nil {
		return nil
	}
	for i := range n.References {
		if n.References[i].Reference.Key == key {
			return &n.References[i]
		}
	}
	return nil
}

// FindTarget matches by target id, or by resolveInfo when the id is null.
func FindTarget(targets []ReferenceTarget, t ReferenceTarget) *ReferenceTarget {
	for i := range targets {
		other := targets[i]
		if t.Reference != nil {
			if other.Reference != nil && *other.Reference == *t.Reference {
				return &targets[i]
			}
			continue
		}
		if other.Reference == nil && t.ResolveInfo != nil && other.ResolveInfo != nil && *other.ResolveInfo == *t.ResolveInfo {
			return &targets[i]
		}
	}
	return nil
}
