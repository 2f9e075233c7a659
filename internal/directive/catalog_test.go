package directive

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	assert.Equal(t, "flatten-arrays", KindFlattenArrays.String())
	assert.Equal(t, "x-jmespath-filter", KindJMESPathFilter.ExtensionKey())
	assert.Equal(t, "unknown", Kind(0).String())
	assert.Equal(t, "", Kind(99).ExtensionKey())
}

func TestAllKinds(t *testing.T) {
	kinds := AllKinds()
	require.Len(t, kinds, 10)

	seen := map[string]bool{}
	for _, k := range kinds {
		assert.True(t, k.IsValid())
		assert.False(t, seen[k.String()], "duplicate id %s", k)
		seen[k.String()] = true
	}
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("x-derived-unique")
	require.True(t, ok)
	assert.Equal(t, KindDerivedUnique, k)

	k, ok = ParseKind("template-items")
	require.True(t, ok)
	assert.Equal(t, KindTemplateItems, k)

	_, ok = ParseKind("x-unknown")
	assert.False(t, ok)
}

func TestDefaultCatalog_IsValid(t *testing.T) {
	c := DefaultCatalog()
	require.NoError(t, ValidateCatalog(c))

	// Every valid kind has an entry.
	for _, k := range AllKinds() {
		_, ok := c.Lookup(k)
		assert.True(t, ok, "missing entry for %s", k)
	}
}

func TestDefaultCatalog_IsImmutable(t *testing.T) {
	c := DefaultCatalog()
	prereqs := c.Prerequisites(KindDerivedFrom)
	prereqs[0] = KindTemplate

	assert.Equal(t, []Kind{KindFlattenArrays, KindJMESPathFilter}, c.Prerequisites(KindDerivedFrom))
	assert.Equal(t, []Kind{KindFlattenArrays, KindJMESPathFilter}, DefaultCatalog().Prerequisites(KindDerivedFrom))
}

func TestValidateCatalog_MissingPrerequisite(t *testing.T) {
	c := NewCatalog(
		Entry{Kind: KindDerivedFrom, Prerequisites: []Kind{KindFlattenArrays}, Priority: 2},
	)

	err := ValidateCatalog(c)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingDependency)

	var de *Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, KindDerivedFrom, de.Directive)
}

func TestValidateCatalog_PriorityOrder(t *testing.T) {
	c := NewCatalog(
		Entry{Kind: KindFlattenArrays, Priority: 3},
		Entry{Kind: KindDerivedFrom, Prerequisites: []Kind{KindFlattenArrays}, Priority: 3},
	)

	err := ValidateCatalog(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must run after")
}

func TestValidateCatalog_SelfDependency(t *testing.T) {
	c := NewCatalog(Entry{Kind: KindTemplate, Prerequisites: []Kind{KindTemplate}, Priority: 1})

	err := ValidateCatalog(c)
	assert.ErrorIs(t, err, ErrCircularDependency)
}

func TestFindCycle(t *testing.T) {
	deps := map[Kind][]Kind{
		KindTemplate:      {KindTemplateItems},
		KindTemplateItems: {KindTemplateFormat},
		KindTemplateFormat: {
			KindTemplate,
		},
		KindDerivedFrom: {KindTemplate},
	}

	cycle := FindCycle(
		[]Kind{KindDerivedFrom, KindTemplate, KindTemplateItems, KindTemplateFormat},
		func(k Kind) []Kind { return deps[k] },
	)

	assert.Equal(t, []Kind{KindTemplate, KindTemplateItems, KindTemplateFormat}, cycle)
}

func TestFindCycle_Acyclic(t *testing.T) {
	c := DefaultCatalog()
	assert.Nil(t, FindCycle(c.Kinds(), c.Prerequisites))
}

func TestError_Message(t *testing.T) {
	err := &Error{
		Kind:      ErrorCircularDependency,
		Directive: KindTemplate,
		Cycle:     []Kind{KindTemplate, KindTemplateItems},
	}

	assert.Equal(t, "CircularDependency [template]: cycle template -> template-items -> template", err.Error())
	assert.ErrorIs(t, err, ErrCircularDependency)
	assert.NotErrorIs(t, err, ErrProcessingFailed)

	pf := ProcessingFailed(KindJMESPathFilter, "items", errors.New("boom"))
	assert.Equal(t, "ProcessingFailed [jmespath-filter] at items: boom", pf.Error())
	assert.ErrorIs(t, pf, ErrProcessingFailed)
}
