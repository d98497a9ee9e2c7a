package dbref

// IsRef reports whether v has both a $ref and an $id key. It is a syntactic
// check only: the values of those keys are not inspected. Scalars are never
// references.
func IsRef(v any) bool {
	if isScalar(v) {
		return false
	}
	if _, found, _ := lookup(v, KeyRef); !found {
		return false
	}
	_, found, _ := lookup(v, KeyID)
	return found
}
