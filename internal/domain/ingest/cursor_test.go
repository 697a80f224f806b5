package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCursor(t *testing.T) {
	t.Run("truncates to calendar day", func(t *testing.T) {
		cursor, err := NewCursor("acme.myshopify.com", time.Date(2026, 2, 14, 17, 45, 12, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC), cursor.SinceDate)
		assert.Equal(t, "2026-02-14", cursor.SinceISO())
	})

	t.Run("fails with empty shop", func(t *testing.T) {
		_, err := NewCursor("", time.Now())
		require.Error(t, err)
	})

	t.Run("fails with zero date", func(t *testing.T) {
		_, err := NewCursor("acme.myshopify.com", time.Time{})
		require.Error(t, err)
	})
}

func TestCursorAdvance(t *testing.T) {
	cursor, err := NewCursor("acme.myshopify.com", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	t.Run("moves forward", func(t *testing.T) {
		cursor.Advance(time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC))
		assert.Equal(t, "2026-02-10", cursor.SinceISO())
	})

	t.Run("never moves backwards", func(t *testing.T) {
		cursor.Advance(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, "2026-02-10", cursor.SinceISO())
	})

	t.Run("same day is a no-op for the date", func(t *testing.T) {
		cursor.Advance(time.Date(2026, 2, 10, 23, 59, 0, 0, time.UTC))
		assert.Equal(t, "2026-02-10", cursor.SinceISO())
	})
}
