package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/ganttline/internal/models"
)

func TestBuildIndex_ParentsAndChildren(t *testing.T) {
	ix := BuildIndex(plan())
	require.Equal(t, 12, ix.Len())

	parent, ok := ix.Parent("8")
	require.True(t, ok)
	assert.Equal(t, "7", parent)

	_, ok = ix.Parent("1")
	assert.False(t, ok, "root has no parent")
	_, ok = ix.Parent("nope")
	assert.False(t, ok)

	assert.Equal(t, []string{"2", "10"}, ix.Children("1"))
	assert.Equal(t, []string{"3", "6"}, ix.Children("2"))
	assert.Empty(t, ix.Children("8"))
	assert.Equal(t, []string{"1", "12"}, ix.Roots())
}

func TestBuildIndex_Queries(t *testing.T) {
	ix := BuildIndex(plan())

	assert.Equal(t, []string{"7", "6", "2", "1"}, ix.Ancestors("8"))
	assert.Empty(t, ix.Ancestors("1"))
	assert.Equal(t, []string{"3", "4", "5", "6", "7", "8", "9"}, ix.Descendants("2"))
	assert.Equal(t, []string{"7", "9"}, ix.Siblings("9"))
	assert.Equal(t, []string{"1", "12"}, ix.Siblings("12"))
	assert.True(t, ix.HasChildren("6"))
	assert.False(t, ix.HasChildren("5"))
	assert.Nil(t, ix.Siblings("missing"))
}

func TestBuildIndex_AncestorPositionsRootFirst(t *testing.T) {
	ix := BuildIndex(plan())
	pos, ok := ix.Position("8")
	require.True(t, ok)
	assert.Equal(t, []int{0, 1, 5, 6}, ix.AncestorPositions(pos))
}

func TestBuildIndex_DepthGapAcceptedAsIs(t *testing.T) {
	in := []models.TaskRecord{
		rec("1", 0, "Root"),
		rec("2", 2, "Jump"),
		rec("3", 1, "Back"),
		rec("4", 0, "Second root"),
		rec("5", 5, "Deep"),
	}
	ix := BuildIndex(in)

	p, ok := ix.Parent("2")
	require.True(t, ok)
	assert.Equal(t, "1", p)
	p, ok = ix.Parent("3")
	require.True(t, ok)
	assert.Equal(t, "1", p, "a shallower sibling still attaches to the nearest shallower record")
	p, ok = ix.Parent("5")
	require.True(t, ok)
	assert.Equal(t, "4", p)
	assert.Equal(t, []string{"1", "4"}, ix.Roots())
}

func TestBuildIndex_DuplicateIDsResolveToLast(t *testing.T) {
	in := []models.TaskRecord{
		rec("1", 0, "Root"),
		rec("d", 1, "first"),
		rec("2", 2, "under first"),
		rec("d", 1, "second"),
		rec("3", 2, "under second"),
	}
	ix := BuildIndex(in)
	assert.Equal(t, []string{"3"}, ix.Children("d"))
	assert.Equal(t, []string{"d", "d"}, ix.Children("1"))
}

func TestBuildIndex_Empty(t *testing.T) {
	ix := BuildIndex(nil)
	assert.Equal(t, 0, ix.Len())
	assert.Empty(t, ix.Roots())
}
