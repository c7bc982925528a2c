package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/towerbench/pkg/adapters/memory"
	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/aretw0/towerbench/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSessionStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	session := &domain.Session{ID: "iso", Visits: map[string]int{"k": 1}}
	require.NoError(t, store.Save(ctx, "iso", session))
	session.Visits["k"] = 42

	loaded, err := store.Load(ctx, "iso")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Visits["k"])

	loaded.Visits["k"] = 7
	again, err := store.Load(ctx, "iso")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Visits["k"])
}
