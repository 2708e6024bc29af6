package preferences

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/richxcame/waste-chat/pkg/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore simulates an unavailable storage backend.
type failingStore struct {
	err  error
	sets int
}

func (f *failingStore) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f *failingStore) Set(context.Context, string, string) error {
	f.sets++
	return f.err
}

// ===== Resolver =====

func TestResolver_Language_DefaultsToEnglish(t *testing.T) {
	r := NewResolver(NewMemoryStore(), "")
	assert.Equal(t, "en", r.Language(context.Background()))
}

func TestResolver_EnsureDefault_WritesOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	r := NewResolver(store, "")

	r.EnsureDefault(ctx)
	v, ok, err := store.Get(ctx, LanguageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "en", v)

	require.NoError(t, r.SetLanguage(ctx, "zh"))
	r.EnsureDefault(ctx)
	assert.Equal(t, "zh", r.Language(ctx), "existing preference must not be overwritten")
}

func TestResolver_EnsureDefaultTo_UnsupportedUsesEnglish(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(NewMemoryStore(), "p1")

	r.EnsureDefaultTo(ctx, "de")
	assert.Equal(t, "en", r.Language(ctx))
}

func TestResolver_SetLanguage(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(NewMemoryStore(), "")

	require.NoError(t, r.SetLanguage(ctx, " FR "))
	assert.Equal(t, "fr", r.Language(ctx))
}

func TestResolver_SetLanguage_Unsupported(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(NewMemoryStore(), "")

	err := r.SetLanguage(ctx, "de")
	assert.True(t, errors.Is(err, ErrUnsupportedLanguage))
	assert.Equal(t, "en", r.Language(ctx))
}

func TestResolver_ScopesAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	alice := NewResolver(store, "alice")
	bob := NewResolver(store, "bob")

	require.NoError(t, alice.SetLanguage(ctx, "es"))
	assert.Equal(t, "es", alice.Language(ctx))
	assert.Equal(t, "en", bob.Language(ctx))

	_, ok, _ := store.Get(ctx, "profile:alice:kw_lang")
	assert.True(t, ok)
}

func TestResolver_StorageFailureIsTolerated(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{err: errors.New("storage unavailable")}
	r := NewResolver(store, "")

	assert.Equal(t, "en", r.Language(ctx))
	assert.NotPanics(t, func() { r.EnsureDefault(ctx) })
	assert.Equal(t, 0, store.sets, "no write when the read failed")
	assert.Error(t, r.SetLanguage(ctx, "fr"))
}

func TestResolver_Bundle_UnrecognizedStoredCode(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, LanguageKey, "de"))
	r := NewResolver(store, "")

	assert.Equal(t, "de", r.Language(ctx))
	assert.Equal(t, i18n.For("en"), r.Bundle(ctx, nil))
	assert.Equal(t, i18n.For("en"), r.Bundle(ctx, i18n.Default()))
}

func TestResolver_Bundle_UsesCatalog(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(NewMemoryStore(), "")
	require.NoError(t, r.SetLanguage(ctx, "es"))

	catalog := i18n.Default()
	require.NoError(t, catalog.Register("es", map[string]string{i18n.KeySend: "Mandar"}))

	assert.Equal(t, "Mandar", r.Bundle(ctx, catalog).Send)
}

// ===== FileStore =====

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "prefs.json")
	store := NewFileStore(path)

	_, ok, err := store.Get(ctx, LanguageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, LanguageKey, "fr"))

	reopened := NewFileStore(path)
	v, ok, err := reopened.Get(ctx, LanguageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fr", v)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := NewFileStore(path).Get(context.Background(), LanguageKey)
	assert.Error(t, err)
}

func TestFileStore_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, ok, err := NewFileStore(path).Get(context.Background(), LanguageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

// ===== RedisStore =====

func TestRedisStore_GetMissing(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, "wastechat")

	mock.ExpectGet("wastechat:kw_lang").RedisNil()

	_, ok, err := store.Get(context.Background(), LanguageKey)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_SetThenGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, "wastechat")
	ctx := context.Background()

	mock.ExpectSet("wastechat:kw_lang", "es", 0).SetVal("OK")
	mock.ExpectGet("wastechat:kw_lang").SetVal("es")

	require.NoError(t, store.Set(ctx, LanguageKey, "es"))
	v, ok, err := store.Get(ctx, LanguageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "es", v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_NoPrefix(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, "")

	mock.ExpectGet("kw_lang").SetVal("zh")

	v, _, err := store.Get(context.Background(), LanguageKey)
	require.NoError(t, err)
	assert.Equal(t, "zh", v)
}

func TestRedisStore_Error(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, "wastechat")

	mock.ExpectGet("wastechat:kw_lang").SetErr(errors.New("connection refused"))
	mock.ExpectSet("wastechat:kw_lang", "fr", 0).SetErr(errors.New("connection refused"))

	_, _, err := store.Get(context.Background(), LanguageKey)
	assert.Error(t, err)
	assert.Error(t, store.Set(context.Background(), LanguageKey, "fr"))
}

func TestRedisStore_WithResolver(t *testing.T) {
	client, mock := redismock.NewClientMock()
	r := NewResolver(NewRedisStore(client, "wastechat"), "abc")
	ctx := context.Background()

	mock.ExpectGet("wastechat:profile:abc:kw_lang").RedisNil()
	mock.ExpectSet("wastechat:profile:abc:kw_lang", "en", 0).SetVal("OK")
	mock.ExpectGet("wastechat:profile:abc:kw_lang").SetVal("en")

	r.EnsureDefault(ctx)
	assert.Equal(t, "en", r.Language(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ===== SQLStore =====

func TestSQLStore_Migrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS language_preferences").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewSQLStore(db).Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_GetFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT pref_value FROM language_preferences WHERE pref_key = $1")).
		WithArgs(LanguageKey).
		WillReturnRows(sqlmock.NewRows([]string{"pref_value"}).AddRow("es"))

	v, ok, err := NewSQLStore(db).Get(context.Background(), LanguageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "es", v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_GetMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT pref_value FROM language_preferences")).
		WithArgs(LanguageKey).
		WillReturnRows(sqlmock.NewRows([]string{"pref_value"}))

	_, ok, err := NewSQLStore(db).Get(context.Background(), LanguageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLStore_Set(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO language_preferences").
		WithArgs(LanguageKey, "fr").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewSQLStore(db).Set(context.Background(), LanguageKey, "fr"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT pref_value").
		WithArgs(LanguageKey).
		WillReturnError(errors.New("connection reset"))

	_, _, err = NewSQLStore(db).Get(context.Background(), LanguageKey)
	assert.Error(t, err)
}
