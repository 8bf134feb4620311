package block

import (
	"maps"

	"pagebuilder/internal/domain"
)

// Instance builds a node tree from spec. It is the single place that decides
// between a plain block and a component instance.
//
// Missing ids are filled from gen. The spec is validated in full before any
// node is returned: an empty kind, a component without a reference, or an id
// repeated inside the spec, or one already listed in taken, is rejected with
// a *domain.ValidationError. taken may be nil.
func Instance(spec domain.BlockSpec, gen IDGenerator, taken map[string]struct{}) (*Block, error) {
	if gen == nil {
		gen = UUID
	}
	seen := make(map[string]struct{})
	if err := validate(spec, taken, seen); err != nil {
		return nil, err
	}
	return build(spec, gen, taken, seen), nil
}

func validate(spec domain.BlockSpec, taken, seen map[string]struct{}) error {
	if spec.Kind == "" {
		return &domain.ValidationError{BlockID: spec.BlockID, Field: "kind", Message: "required"}
	}
	if spec.IsComponent && spec.ReferencedComponentID == "" {
		return &domain.ValidationError{BlockID: spec.BlockID, Field: "referencedComponentId", Message: "required for components"}
	}
	if spec.BlockID != "" {
		if _, dup := seen[spec.BlockID]; dup {
			return &domain.ValidationError{BlockID: spec.BlockID, Field: "blockId", Message: "duplicate id"}
		}
		if _, dup := taken[spec.BlockID]; dup {
			return &domain.ValidationError{BlockID: spec.BlockID, Field: "blockId", Message: "id already used in tree"}
		}
		seen[spec.BlockID] = struct{}{}
	}
	for _, c := range spec.Children {
		if err := validate(c, taken, seen); err != nil {
			return err
		}
	}
	return nil
}

// build assumes spec has been validated. Generated ids are checked against
// both the spec's own ids and taken so a generator collision cannot slip in.
func build(spec domain.BlockSpec, gen IDGenerator, taken, seen map[string]struct{}) *Block {
	id := spec.BlockID
	if id == "" {
		id = gen()
		for isUsed(id, taken, seen) {
			id = gen()
		}
		seen[id] = struct{}{}
	}
	b := &Block{
		ID:         id,
		Kind:       spec.Kind,
		Attributes: maps.Clone(spec.Attributes),
		Styles:     spec.Styles.Clone(),
	}
	if b.Attributes == nil {
		b.Attributes = map[string]string{}
	}
	if spec.IsComponent {
		b.Component = &ComponentRef{
			ReferencedComponentID: spec.ReferencedComponentID,
			Overrides:             maps.Clone(spec.Overrides),
		}
	}
	if len(spec.Children) > 0 {
		b.Children = make([]*Block, 0, len(spec.Children))
		for _, c := range spec.Children {
			b.Children = append(b.Children, build(c, gen, taken, seen))
		}
	}
	return b
}

func isUsed(id string, taken, seen map[string]struct{}) bool {
	if _, ok := seen[id]; ok {
		return true
	}
	_, ok := taken[id]
	return ok
}

// ValidateSpecs checks a list of top-level specs as one document: every
// spec must be well-formed and ids must be unique across all of them.
func ValidateSpecs(specs []domain.BlockSpec) error {
	seen := make(map[string]struct{})
	for _, s := range specs {
		if err := validate(s, nil, seen); err != nil {
			return err
		}
	}
	return nil
}
