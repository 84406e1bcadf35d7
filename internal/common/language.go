package common

import (
	"sync"

	"wallet-core-go/internal/core"

	"go.uber.org/zap"
)

const defaultLanguage = "en"

var availableLanguages = []string{
	"en", "de", "fr", "es", "pt-BR", "ru", "tr", "ko", "ja", "zh-Hans",
}

// LanguageManager keeps the active locale in memory and persists changes
// through LocalStorage so the choice survives restarts.
type LanguageManager struct {
	store core.LocalStorage

	mu      sync.RWMutex
	current string
}

var _ core.LanguageManager = (*LanguageManager)(nil)

func NewLanguageManager(store core.LocalStorage) *LanguageManager {
	current := defaultLanguage
	if store != nil {
		if stored, err := store.CurrentLanguage(); err == nil && stored != "" {
			current = stored
		}
	}
	return &LanguageManager{store: store, current: current}
}

func (m *LanguageManager) CurrentLanguage() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *LanguageManager) SetCurrentLanguage(tag string) {
	m.mu.Lock()
	m.current = tag
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.SetCurrentLanguage(tag); err != nil {
			zap.L().Warn("Failed to persist language", zap.String("tag", tag), zap.Error(err))
		}
	}
}

func (m *LanguageManager) AvailableLanguages() []string {
	languages := make([]string, len(availableLanguages))
	copy(languages, availableLanguages)
	return languages
}
