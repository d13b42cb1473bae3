package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"boltform_back_end/internal/cartsync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAnonymousCartCommands(t *testing.T) {
	t.Setenv("BOLTFORM_SESSION", "")
	db := filepath.Join(t.TempDir(), "cart.db")

	_, err := run(t, "--db", db, "add", "shoe", "--title", "Shoe", "--price", "19.99")
	require.NoError(t, err)
	out, err := run(t, "--db", db, "add", "shoe")
	require.NoError(t, err)
	assert.Contains(t, out, "Shoe")
	assert.Contains(t, out, "39.98")

	out, err = run(t, "--db", db, "qty", "shoe", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "99.95")

	_, err = run(t, "--db", db, "qty", "shoe", "0")
	assert.ErrorIs(t, err, cartsync.ErrInvalidQuantity)

	_, err = run(t, "--db", db, "qty", "shoe", "many")
	assert.Error(t, err)

	out, err = run(t, "--db", db, "remove", "shoe")
	require.NoError(t, err)
	assert.Contains(t, out, "cart is empty")

	_, err = run(t, "--db", db, "add", "hat")
	require.NoError(t, err)
	out, err = run(t, "--db", db, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "cart is empty")

	local, err := cartsync.OpenSQLite(db)
	require.NoError(t, err)
	defer local.Close()
	raw, ok, err := local.Get(cartsync.LocalKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", raw)
}
