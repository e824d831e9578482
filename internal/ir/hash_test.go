package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExampleIDDeterminism(t *testing.T) {
	example := Object{"amount": Int(10), "currency": String("USD")}

	id1, err := ExampleID("type_a:Money", example)
	require.NoError(t, err)
	id2, err := ExampleID("type_a:Money", Object{"currency": String("USD"), "amount": Int(10)})
	require.NoError(t, err)

	assert.Equal(t, id1, id2, "key order must not change the id")
	assert.Len(t, id1, 64, "SHA-256 hex is 64 characters")
}

func TestExampleIDChangesWithInput(t *testing.T) {
	example := Object{"amount": Int(10)}

	id1 := MustExampleID("type_a:Money", example)
	id2 := MustExampleID("type_b:Money", example)
	id3 := MustExampleID("type_a:Money", Object{"amount": Int(11)})

	assert.NotEqual(t, id1, id2, "different types should produce different ids")
	assert.NotEqual(t, id1, id3, "different payloads should produce different ids")
}

func TestFingerprintStable(t *testing.T) {
	newDoc := func() *IntermediateRepresentation {
		return &IntermediateRepresentation{
			APIName: Name{OriginalName: "acme"},
			Types: map[TypeID]TypeDeclaration{
				"type_a:Money": {ReferencedTypes: []TypeID{}},
				"type_a:Price": {ReferencedTypes: []TypeID{"type_a:Money"}},
			},
		}
	}

	fp1, err := Fingerprint(newDoc())
	require.NoError(t, err)
	fp2, err := Fingerprint(newDoc())
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)

	changed := newDoc()
	changed.APIDocs = "docs"
	fp3, err := Fingerprint(changed)
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp3)
}
