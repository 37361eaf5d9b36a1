package persist

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"
)

var ErrNotFound = errors.New("key not found")

// Keys under which the engine stores its state.
const (
	KeyTransactions = "ledger.transactions"
	KeyArchive      = "ledger.archive"
	KeyMessages     = "chat.messages"
	KeyStaff        = "staff.directory"
	KeyTheme        = "preferences.theme"
	KeyAuth         = "preferences.auth"
)

//go:generate mockgen -source=persist.go -destination=repository_mock.go -package=persist
type Repository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
}

// LoadJSON decodes the blob stored under key into dst. A missing or
// malformed blob leaves dst untouched and reports false.
func LoadJSON(ctx context.Context, repo Repository, key string, dst any) bool {
	blob, err := repo.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("failed to load persisted state", "key", key, "error", err)
		}

		return false
	}

	fresh := reflect.New(reflect.TypeOf(dst).Elem())
	if err := json.Unmarshal(blob, fresh.Interface()); err != nil {
		slog.Warn("discarding malformed persisted state", "key", key, "error", err)
		return false
	}

	reflect.ValueOf(dst).Elem().Set(fresh.Elem())

	return true
}
