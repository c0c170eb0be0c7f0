// internal/store/store_test.go
package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tour-booking-gateway/internal/session"
	errs "github.com/example/tour-booking-gateway/pkg/errors"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, errs.CodeNotFound, errs.CodeOf(err))

	sess := session.New("id-1", "cape-coast", 5, 10000, 0.3)
	require.NoError(t, s.Put(ctx, sess.ID, &Record{Session: sess}))

	rec, err := s.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "cape-coast", rec.Session.TourID)

	require.NoError(t, s.Delete(ctx, "id-1"))
	_, err = s.Get(ctx, "id-1")
	assert.Equal(t, errs.CodeNotFound, errs.CodeOf(err))
}
