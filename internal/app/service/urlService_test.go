package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/skrylnikov/cutly/internal/mocks"
	"github.com/skrylnikov/cutly/internal/storage"
)

func newTestService(t *testing.T) (*LinkService, *storage.MemoryStorage) {
	t.Helper()

	mem, err := storage.CreateMemoryStorage()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return NewLink(ctx, mem, NewShortIDGenerator(), zap.NewNop(), "http://baseurl"), mem
}

func TestCreateOrReuseIdempotent(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	first, err := service.CreateOrReuse(ctx, "example.com", 8, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", first.Original)
	assert.Len(t, first.ShortID, 8)

	second, err := service.CreateOrReuse(ctx, "  example.com ", 8, "user-1")
	require.NoError(t, err)
	assert.Equal(t, first.ShortID, second.ShortID)
	assert.Equal(t, first.ID, second.ID)
}

func TestCreateOrReuseOwnerSeparation(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	anonymous, err := service.CreateOrReuse(ctx, "example.com", 8, "")
	require.NoError(t, err)

	owned, err := service.CreateOrReuse(ctx, "example.com", 8, "user-1")
	require.NoError(t, err)

	// An anonymous record never satisfies a lookup for a real owner.
	assert.NotEqual(t, anonymous.ShortID, owned.ShortID)
}

func TestCreateOrReuseLengthValidation(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		length  int
		wantErr error
	}{
		{name: "below minimum", length: 3, wantErr: ErrInvalidLength},
		{name: "above maximum", length: 21, wantErr: ErrInvalidLength},
		{name: "negative", length: -1, wantErr: ErrInvalidLength},
		{name: "minimum boundary", length: 4},
		{name: "maximum boundary", length: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := service.CreateOrReuse(ctx, "example.com/"+tt.name, tt.length, "")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, record.ShortID, tt.length)
		})
	}
}

func TestCreateOrReuseURLValidation(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		input    string
		wantURL  string
		wantErr  error
	}{
		{name: "bare host gets https", input: "example.com", wantURL: "https://example.com"},
		{name: "http kept", input: "http://example.com", wantURL: "http://example.com"},
		{name: "https kept", input: "https://example.com/path", wantURL: "https://example.com/path"},
		{name: "not a url", input: "not a url", wantErr: ErrInvalidURL},
		{name: "empty", input: "", wantErr: ErrInvalidURL},
		{name: "unsupported scheme", input: "ftp://example.com", wantErr: ErrInvalidURL},
		{name: "custom scheme", input: "mailto://someone@example.com", wantErr: ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := service.CreateOrReuse(ctx, tt.input, 6, "")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, record.Original)
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://example.com", NormalizeURL(" example.com "))
	assert.Equal(t, "http://example.com", NormalizeURL("http://example.com"))
	assert.Equal(t, "ftp://example.com", NormalizeURL("ftp://example.com"))
	assert.Equal(t, "https://", NormalizeURL(""))
}

func TestResolveNotFound(t *testing.T) {
	service, mem := newTestService(t)

	_, err := service.Resolve(context.Background(), "missing1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, mem.Clicks())
}

func TestCreateOrReuseRetriesOnInsertRace(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockStorage(ctrl)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service := NewLink(ctx, repo, NewShortIDGenerator(), zap.NewNop(), "http://baseurl")

	repo.EXPECT().FindByOriginal(gomock.Any(), "https://example.com", "").Return(nil, storage.ErrNotFound)
	// Pre-insert check sees the id as free both times.
	repo.EXPECT().FindByShort(gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound).Times(2)
	// First insert loses the race; second wins.
	gomock.InOrder(
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil, storage.ErrShortIDTaken),
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, r storage.ShortLink) (*storage.ShortLink, error) {
				r.ID = "id-1"
				return &r, nil
			}),
	)

	record, err := service.CreateOrReuse(context.Background(), "example.com", 6, "")
	require.NoError(t, err)
	assert.Equal(t, "id-1", record.ID)
}

func TestCreateOrReuseAllocationExhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockStorage(ctrl)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service := NewLink(ctx, repo, NewShortIDGenerator(), zap.NewNop(), "http://baseurl")

	repo.EXPECT().FindByOriginal(gomock.Any(), "https://example.com", "").Return(nil, storage.ErrNotFound)
	// Every candidate is already taken.
	repo.EXPECT().FindByShort(gomock.Any(), gomock.Any()).Return(&storage.ShortLink{}, nil).Times(maxAllocAttempts)

	_, err := service.CreateOrReuse(context.Background(), "example.com", 6, "")
	assert.ErrorIs(t, err, ErrAllocationExhausted)
}
