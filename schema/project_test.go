package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProjectPrimitives(t *testing.T) {
	require.Equal(t, "string", Project(Str()))
	require.Equal(t, "number", Project(Num()))
	require.Equal(t, "boolean", Project(Bool()))
	require.Equal(t, "any", Project(Schema{}))
}

func TestProjectArray(t *testing.T) {
	require.Equal(t, "string[]", Project(Arr(Str())))
}

func TestProjectObjectRequiredAndOptionalFields(t *testing.T) {
	s := Obj(map[string]Schema{
		"city":    Str(),
		"country": Str(),
	}, "city")
	got := Project(s)
	require.Contains(t, got, "city: string")
	require.Contains(t, got, "country?: string")
}

func TestProjectEnum(t *testing.T) {
	require.Equal(t, `"a" | "b"`, Project(EnumOf("a", "b")))
}

func TestProjectOptionalAndNullable(t *testing.T) {
	require.Equal(t, "string | null", Project(Str().AsNullable()))
	require.Equal(t, "string | undefined", Project(Str().AsOptional()))
}

func TestProjectUnion(t *testing.T) {
	require.Equal(t, "string | number", Project(Union(Str(), Num())))
}

func TestProjectIsTotalForUnknownKind(t *testing.T) {
	s := Schema{Kind: Kind(999)}
	require.Equal(t, "any", Project(s))
}
