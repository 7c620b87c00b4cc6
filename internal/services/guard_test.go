package services_test

import (
	"testing"

	"github.com/estately/estately/internal/services"
	"github.com/estately/estately/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireOwner(t *testing.T) {
	assert.NoError(t, services.RequireOwner("user-1", "user-1"))

	err := services.RequireOwner("user-1", "user-2")
	require.Error(t, err)
	assert.Equal(t, types.CodeNotAuthorized, types.CodeOf(err))

	// An empty actor never owns anything, not even an empty owner field.
	err = services.RequireOwner("", "")
	require.Error(t, err)
	assert.Equal(t, types.CodeNotAuthorized, types.CodeOf(err))

	err = services.RequireOwner("", "user-1")
	require.Error(t, err)
	assert.Equal(t, types.CodeNotAuthorized, types.CodeOf(err))
}

func TestRequireElevated(t *testing.T) {
	db := setupTestDB(t)

	admin := createUser(t, db, "admin", true)
	regular := createUser(t, db, "regular", false)

	assert.NoError(t, services.RequireElevated(db, admin.ID))

	err := services.RequireElevated(db, regular.ID)
	require.Error(t, err)
	assert.Equal(t, types.CodeNotAuthorized, types.CodeOf(err))
}

func TestRequireElevatedMissingActor(t *testing.T) {
	db := setupTestDB(t)

	// A missing record is a denial, not an internal fault.
	err := services.RequireElevated(db, "no-such-user")
	require.Error(t, err)
	assert.Equal(t, types.CodeNotAuthorized, types.CodeOf(err))

	err = services.RequireElevated(db, "")
	require.Error(t, err)
	assert.Equal(t, types.CodeNotAuthorized, types.CodeOf(err))
}
