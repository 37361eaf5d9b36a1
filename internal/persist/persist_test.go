package persist_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/billroom/internal/persist"
)

type snapshot struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestLoadJSON(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *persist.MockRepository)
		wantOK    bool
		want      snapshot
	}

	fallback := snapshot{Name: "default"}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *persist.MockRepository) {
				m.EXPECT().Load(gomock.Any(), "k").Return([]byte(`{"name":"stored","count":3}`), nil)
			},
			wantOK: true,
			want:   snapshot{Name: "stored", Count: 3},
		},
		{
			name: "Missing",
			setupMock: func(m *persist.MockRepository) {
				m.EXPECT().Load(gomock.Any(), "k").Return(nil, persist.ErrNotFound)
			},
			want: fallback,
		},
		{
			name: "RepoError",
			setupMock: func(m *persist.MockRepository) {
				m.EXPECT().Load(gomock.Any(), "k").Return(nil, errors.New("db down"))
			},
			want: fallback,
		},
		{
			name: "Malformed",
			setupMock: func(m *persist.MockRepository) {
				m.EXPECT().Load(gomock.Any(), "k").Return([]byte(`{"name":`), nil)
			},
			want: fallback,
		},
		{
			name: "PartiallyDecodable",
			setupMock: func(m *persist.MockRepository) {
				m.EXPECT().Load(gomock.Any(), "k").Return([]byte(`{"name":"half","count":"x"}`), nil)
			},
			want: fallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := persist.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got := fallback
			ok := persist.LoadJSON(context.Background(), repo, "k", &got)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriter_FlushKeepsLatestSnapshot(t *testing.T) {
	mem := persist.NewMemory()
	w := persist.NewWriter(mem, slog.Default())

	w.Put("k", snapshot{Name: "first"})
	w.Put("k", snapshot{Name: "second", Count: 2})

	require.NoError(t, w.Flush(context.Background()))

	var got snapshot
	require.True(t, persist.LoadJSON(context.Background(), mem, "k", &got))
	assert.Equal(t, snapshot{Name: "second", Count: 2}, got)
}

func TestWriter_FlushRetriesFailedKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := persist.NewMockRepository(ctrl)
	w := persist.NewWriter(repo, slog.Default())

	gomock.InOrder(
		repo.EXPECT().Save(gomock.Any(), "k", []byte(`{"name":"a","count":0}`)).Return(errors.New("timeout")),
		repo.EXPECT().Save(gomock.Any(), "k", []byte(`{"name":"a","count":0}`)).Return(nil),
	)

	w.Put("k", snapshot{Name: "a"})

	assert.Error(t, w.Flush(context.Background()))
	assert.NoError(t, w.Flush(context.Background()))
}

func TestWriter_RunFlushesOnCancel(t *testing.T) {
	mem := persist.NewMemory()
	w := persist.NewWriter(mem, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		w.Run(ctx)
		close(done)
	}()

	w.Put("k", snapshot{Name: "late"})
	cancel()
	<-done

	var got snapshot
	require.True(t, persist.LoadJSON(context.Background(), mem, "k", &got))
	assert.Equal(t, "late", got.Name)
}
