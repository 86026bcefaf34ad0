package repository

import (
	"context"
	"time"
)

// CacheRepository определяет методы для работы с кешем.
// Промах кеша возвращается как apperrors.ErrNotFound.
//
// У каждого ключа есть счётчик версии: Invalidate увеличивает его,
// а SetJSONIfVersion записывает значение только при совпадении версии.
// Так значение, прочитанное из БД до инвалидации, не попадёт в кеш после неё.
type CacheRepository interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	// Version возвращает текущую версию ключа (0, если ключ ни разу не инвалидировался)
	Version(ctx context.Context, key string) (int64, error)
	// SetJSONIfVersion сохраняет значение, если версия ключа всё ещё равна version.
	// Возвращает false, если версия изменилась и запись не выполнена.
	SetJSONIfVersion(ctx context.Context, key string, value interface{}, expiration time.Duration, version int64) (bool, error)
	// Invalidate удаляет значение и увеличивает версию ключа
	Invalidate(ctx context.Context, key string) error
}
