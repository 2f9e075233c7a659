package directive

import "frontmatter-transform/internal/common"

// Kind identifies one directive kind of the closed catalog.
type Kind int

const (
	_ Kind = iota // skip zero value, it is never a valid kind

	KindFrontmatterPart
	KindExtractFrom
	KindCollectPattern
	KindFlattenArrays
	KindJMESPathFilter
	KindDerivedFrom
	KindDerivedUnique
	KindTemplateFormat
	KindTemplateItems
	KindTemplate

	// KindTotal is the number of valid kinds plus the skipped zero value.
	KindTotal = int(iota)
)

// AllKinds returns every valid kind in catalog order.
func AllKinds() []Kind {
	kinds := make([]Kind, 0, KindTotal-1)
	for k := KindFrontmatterPart; int(k) < KindTotal; k++ {
		kinds = append(kinds, k)
	}

	return kinds
}

// IsValid reports whether k belongs to the catalog.
func (k Kind) IsValid() bool {
	return k > 0 && int(k) < KindTotal
}

// String returns the directive id, e.g. "flatten-arrays".
func (k Kind) String() string {
	switch k {
	case KindFrontmatterPart:
		return "frontmatter-part"
	case KindExtractFrom:
		return "extract-from"
	case KindCollectPattern:
		return "collect-pattern"
	case KindFlattenArrays:
		return "flatten-arrays"
	case KindJMESPathFilter:
		return "jmespath-filter"
	case KindDerivedFrom:
		return "derived-from"
	case KindDerivedUnique:
		return "derived-unique"
	case KindTemplateFormat:
		return "template-format"
	case KindTemplateItems:
		return "template-items"
	case KindTemplate:
		return "template"
	default:
		return common.UnknownStr
	}
}

// ExtensionKey returns the schema extension key declaring the directive,
// e.g. "x-flatten-arrays".
func (k Kind) ExtensionKey() string {
	if !k.IsValid() {
		return ""
	}

	return "x-" + k.String()
}

// ParseKind returns the kind with the given id or extension key.
func ParseKind(s string) (Kind, bool) {
	for _, k := range AllKinds() {
		if s == k.String() || s == k.ExtensionKey() {
			return k, true
		}
	}

	return 0, false
}
