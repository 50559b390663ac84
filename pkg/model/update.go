package model

// FieldUpdate is a partial update merged into a field. Nil members are left
// untouched. The setters return a modified copy so updates compose inline:
//
//	model.FieldUpdate{}.SetName("tags").SetMaxOccurs(5)
type FieldUpdate struct {
	Name          *string
	Type          *FieldType
	Required      *bool
	Description   *string
	IsComplexType *bool
	MinOccurs     *int
	MaxOccurs     *Occurs
}

func (u FieldUpdate) SetName(name string) FieldUpdate {
	u.Name = &name
	return u
}

func (u FieldUpdate) SetType(t FieldType) FieldUpdate {
	u.Type = &t
	return u
}

func (u FieldUpdate) SetRequired(required bool) FieldUpdate {
	u.Required = &required
	return u
}

func (u FieldUpdate) SetDescription(description string) FieldUpdate {
	u.Description = &description
	return u
}

func (u FieldUpdate) SetIsComplexType(complex bool) FieldUpdate {
	u.IsComplexType = &complex
	return u
}

func (u FieldUpdate) SetMinOccurs(min int) FieldUpdate {
	u.MinOccurs = &min
	return u
}

func (u FieldUpdate) SetMaxOccurs(max Occurs) FieldUpdate {
	u.MaxOccurs = &max
	return u
}

// Empty reports whether the update touches nothing.
func (u FieldUpdate) Empty() bool {
	return u.Name == nil && u.Type == nil && u.Required == nil &&
		u.Description == nil && u.IsComplexType == nil &&
		u.MinOccurs == nil && u.MaxOccurs == nil
}

// Merge copies every set member onto f. It does not run type inference; use
// UpdateFieldAtPath for edits coming from a user.
func (u FieldUpdate) Merge(f Field) Field {
	if u.Name != nil {
		f.Name = *u.Name
	}
	if u.Type != nil {
		f.Type = *u.Type
	}
	if u.Required != nil {
		f.Required = *u.Required
	}
	if u.Description != nil {
		f.Description = *u.Description
	}
	if u.IsComplexType != nil {
		f.IsComplexType = *u.IsComplexType
	}
	if u.MinOccurs != nil {
		f.MinOccurs = *u.MinOccurs
	}
	if u.MaxOccurs != nil {
		f.MaxOccurs = *u.MaxOccurs
	}
	return f
}
