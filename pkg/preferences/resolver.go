package preferences

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/richxcame/waste-chat/pkg/i18n"
	"github.com/richxcame/waste-chat/pkg/logger"
	"go.uber.org/zap"
)

// LanguageKey is the store key holding the active language code.
const LanguageKey = "kw_lang"

// ErrUnsupportedLanguage is returned by SetLanguage for codes without a bundle.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Resolver reads and writes the language preference of one browser profile.
type Resolver struct {
	store Store
	key   string
}

// NewResolver binds a resolver to store. A non-empty scope (the profile id)
// namespaces the key so profiles sharing a store do not collide.
func NewResolver(store Store, scope string) *Resolver {
	key := LanguageKey
	if scope != "" {
		key = "profile:" + scope + ":" + LanguageKey
	}
	return &Resolver{store: store, key: key}
}

// Language returns the persisted code, or "en" when nothing is stored.
// Storage errors are logged and treated as "nothing stored".
func (r *Resolver) Language(ctx context.Context) string {
	v, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		logger.WithContext(ctx).Warn("language preference unavailable", zap.String("key", r.key), zap.Error(err))
		return i18n.DefaultLang
	}
	if !ok || v == "" {
		return i18n.DefaultLang
	}
	return v
}

// EnsureDefault stores "en" if no preference exists yet.
func (r *Resolver) EnsureDefault(ctx context.Context) {
	r.EnsureDefaultTo(ctx, i18n.DefaultLang)
}

// EnsureDefaultTo stores lang if no preference exists yet.
// Unsupported codes are replaced by "en".
func (r *Resolver) EnsureDefaultTo(ctx context.Context, lang string) {
	_, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		logger.WithContext(ctx).Warn("language preference unavailable", zap.String("key", r.key), zap.Error(err))
		return
	}
	if ok {
		return
	}
	if !i18n.IsSupported(lang) {
		lang = i18n.DefaultLang
	}
	if err := r.store.Set(ctx, r.key, lang); err != nil {
		logger.WithContext(ctx).Warn("failed to store default language", zap.String("key", r.key), zap.Error(err))
	}
}

// SetLanguage persists a supported language code.
func (r *Resolver) SetLanguage(ctx context.Context, lang string) error {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if !i18n.IsSupported(lang) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	if err := r.store.Set(ctx, r.key, lang); err != nil {
		return fmt.Errorf("store language: %w", err)
	}
	return nil
}

// Bundle returns the display strings of the persisted language.
// Unsupported stored codes fall back to English.
func (r *Resolver) Bundle(ctx context.Context, catalog *i18n.Catalog) i18n.Bundle {
	lang := r.Language(ctx)
	if catalog == nil {
		return i18n.For(lang)
	}
	return catalog.For(lang)
}
