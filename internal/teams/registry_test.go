package teams

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usf-territorio/territorio-backend/pkg/config"
)

func TestRegistryLookupAndOrder(t *testing.T) {
	registry, err := NewRegistry(config.TeamsConfig{Raw: "equipe2:Equipe Dois,equipe1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"equipe2", "equipe1"}, registry.IDs())

	team, ok := registry.Lookup(" equipe2 ")
	require.True(t, ok)
	assert.Equal(t, "Equipe Dois", team.Name)

	team, ok = registry.Lookup("equipe1")
	require.True(t, ok)
	assert.Equal(t, "equipe1", team.Name)

	_, ok = registry.Lookup("equipe9")
	assert.False(t, ok)
}

func TestRegistryListIsACopy(t *testing.T) {
	registry, err := NewRegistry(config.TeamsConfig{Raw: "equipe1:Equipe 1"})
	require.NoError(t, err)

	list := registry.List()
	list[0].Name = "mutated"
	assert.Equal(t, "Equipe 1", registry.List()[0].Name)
}

func TestRegistryRejectsInvalidTable(t *testing.T) {
	_, err := NewRegistry(config.TeamsConfig{Raw: ""})
	assert.Error(t, err)

	_, err = NewRegistry(config.TeamsConfig{Raw: "a,a"})
	assert.Error(t, err)
}
