package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDSetAddKeepsOrderAndUniqueness(t *testing.T) {
	set := NewIDSet(5, 1, 3, 1)
	assert.Equal(t, IDSet{1, 3, 5}, set)

	set = set.Add(3).Add(2)
	assert.Equal(t, IDSet{1, 2, 3, 5}, set)
	assert.True(t, set.Contains(2))
	assert.False(t, set.Contains(4))
}

func TestIDSetRemoveDoesNotMutateReceiver(t *testing.T) {
	set := NewIDSet(1, 2, 3)
	out := set.Remove(2)
	assert.Equal(t, IDSet{1, 3}, out)
	assert.Equal(t, IDSet{1, 2, 3}, set)
	assert.Empty(t, IDSet{}.Remove(9))
}

func TestIDSetValueAndScan(t *testing.T) {
	value, err := NewIDSet(4, 2).Value()
	require.NoError(t, err)
	assert.Equal(t, "[2,4]", value)

	empty, err := IDSet(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)

	var scanned IDSet
	require.NoError(t, scanned.Scan([]byte("[7,3,7]")))
	assert.Equal(t, IDSet{3, 7}, scanned)

	require.NoError(t, scanned.Scan(nil))
	assert.Equal(t, IDSet{}, scanned)

	require.NoError(t, scanned.Scan("[]"))
	assert.NotNil(t, scanned)
	assert.Len(t, scanned, 0)

	assert.Error(t, scanned.Scan(42))
	assert.Error(t, scanned.Scan("{oops"))
}

func TestIDSetMarshalJSONNeverNull(t *testing.T) {
	var set IDSet
	buf, err := json.Marshal(struct {
		IDs IDSet `json:"ids"`
	}{IDs: set})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ids":[]}`, string(buf))
}
