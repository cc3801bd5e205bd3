package logging_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumarlokesh/sysd/exercises/cow-trie/internal/logging"
)

func TestNew(t *testing.T) {
	t.Run("JSON output respects level", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := logging.New("warn", false, &buf)
		require.NoError(t, err)

		logger.Info().Msg("hidden")
		logger.Warn().Str("key", "value").Msg("shown")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, `"message":"shown"`)
		assert.Contains(t, out, `"key":"value"`)
	})

	t.Run("Pretty output", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := logging.New("debug", true, &buf)
		require.NoError(t, err)

		logger.Debug().Msg("readable")
		assert.Contains(t, buf.String(), "readable")
		assert.NotContains(t, buf.String(), `"message"`)
	})

	t.Run("Invalid level", func(t *testing.T) {
		_, err := logging.New("loud", false, nil)
		assert.Error(t, err)
	})
}
