package model

// InferType applies the cardinality rule to an update before it is merged
// into current. It only fires when the update sets MaxOccurs:
//
//   - MaxOccurs > 1 or Unbounded forces the array type, overriding any type
//     carried by the same update.
//   - MaxOccurs == 1 on a field whose current type is array resets the type to
//     string, regardless of the type the field had before it was widened.
//   - Otherwise the update is returned unchanged.
//
// The rule is forward-only and never repairs trees that are already
// inconsistent.
func InferType(current Field, update FieldUpdate) FieldUpdate {
	if update.MaxOccurs == nil {
		return update
	}
	max := *update.MaxOccurs
	switch {
	case max.Many():
		return update.SetType(FieldTypeArray)
	case max == 1 && current.Type == FieldTypeArray:
		return update.SetType(FieldTypeString)
	default:
		return update
	}
}

// needsPromotion reports whether adding a child must flag the parent as a
// complex type.
func needsPromotion(parent Field) bool {
	return !parent.IsComplexType && !parent.Type.Composite()
}
