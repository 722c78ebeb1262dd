package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordgate/recordgate/pkg/backend"
	"github.com/recordgate/recordgate/pkg/message"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.DefineLayout("people", []backend.FieldMeta{
		{Name: "name", MaxRepeat: 1, ResultType: backend.TypeText},
		{Name: "email", MaxRepeat: 1, ResultType: backend.TypeText},
		{Name: "phone", MaxRepeat: 3, ResultType: backend.TypeText},
	}))
	return s
}

func TestStoreCreateAndFindByID(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "people", message.FieldSet{
		"name":  {0: "Ada"},
		"phone": {0: "555-0100", 2: "555-0102"},
	}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := s.FindByID(ctx, "people", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Fields["name"][0])
	assert.Equal(t, "555-0102", got.Fields["phone"][2])
	assert.Len(t, got.Meta, 3)
}

func TestStoreFindByIDNoMatch(t *testing.T) {
	s := setupStore(t)
	_, err := s.FindByID(context.Background(), "people", "nope")
	assert.True(t, backend.IsNoMatch(err))
}

func TestStoreUnknownLayout(t *testing.T) {
	s := setupStore(t)
	_, err := s.Create(context.Background(), "ghosts", message.FieldSet{"name": {0: "x"}}, nil)
	var be *backend.Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, codeLayoutMissing, be.Code)
}

func TestStoreUnknownField(t *testing.T) {
	s := setupStore(t)
	_, err := s.Create(context.Background(), "people", message.FieldSet{"shoe_size": {0: "44"}}, nil)
	var be *backend.Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, codeFieldMissing, be.Code)
}

func TestStoreFindByUniqueKey(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "people", message.FieldSet{"email": {0: "foo@bar.com"}}, nil)
	require.NoError(t, err)
	_, err = s.Create(ctx, "people", message.FieldSet{"email": {0: "other@bar.com"}}, nil)
	require.NoError(t, err)

	matches, err := s.FindByUniqueKey(ctx, "people", "email", "foo@bar.com")
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	matches, err = s.FindByUniqueKey(ctx, "people", "email", "nobody@bar.com")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestStoreUpdateMergesRepetitions(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "people", message.FieldSet{
		"name":  {0: "Ada"},
		"phone": {0: "555-0100"},
	}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, "people", created.ID, message.FieldSet{"phone": {2: "555-0102"}}, nil))

	got, err := s.FindByID(ctx, "people", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", got.Fields["phone"][0])
	assert.Equal(t, "555-0102", got.Fields["phone"][2])
	assert.Equal(t, "Ada", got.Fields["name"][0])
}

func TestStoreUpdateNoMatch(t *testing.T) {
	s := setupStore(t)
	err := s.Update(context.Background(), "people", "nope", message.FieldSet{"name": {0: "x"}}, nil)
	assert.True(t, backend.IsNoMatch(err))
}

func TestStoreDelete(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "people", message.FieldSet{"name": {0: "Ada"}}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "people", created.ID, nil))

	_, err = s.FindByID(ctx, "people", created.ID)
	assert.True(t, backend.IsNoMatch(err))

	err = s.Delete(ctx, "people", created.ID, nil)
	assert.True(t, backend.IsNoMatch(err))
}

func TestStoreScriptsAndHooks(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	var hookRuns []string
	s.RegisterScript("audit", func(ctx context.Context, s *Store, layout, param string) ([]backend.Record, error) {
		hookRuns = append(hookRuns, param)
		return nil, nil
	})

	hooks := &backend.HookSet{
		Pre:  &backend.Hook{Script: "audit", Param: "pre"},
		Post: &backend.Hook{Script: "audit", Param: "post"},
	}
	_, err := s.Create(ctx, "people", message.FieldSet{"name": {0: "Ada"}}, hooks)
	require.NoError(t, err)
	assert.Equal(t, []string{"pre", "post"}, hookRuns)

	_, err = s.RunScript(ctx, "people", "missing", "")
	var be *backend.Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, codeScriptMissing, be.Code)
}

func TestStoreContainers(t *testing.T) {
	s := setupStore(t)
	require.NoError(t, s.PutContainer("blob-1", "cat.png", []byte("PNG")))

	filename, data, err := s.ReadContainer(context.Background(), "blob-1")
	require.NoError(t, err)
	assert.Equal(t, "cat.png", filename)
	assert.Equal(t, []byte("PNG"), data)

	_, _, err = s.ReadContainer(context.Background(), "missing")
	assert.True(t, backend.IsNoMatch(err))
}
