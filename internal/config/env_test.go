// SPDX-License-Identifier: MIT

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseString(t *testing.T) {
	t.Run("returns default when unset", func(t *testing.T) {
		assert.Equal(t, "fallback", ParseString("SPARKLEDEX_TEST_UNSET", "fallback"))
	})

	t.Run("returns env value when set", func(t *testing.T) {
		t.Setenv("SPARKLEDEX_TEST_STR", "value")
		assert.Equal(t, "value", ParseString("SPARKLEDEX_TEST_STR", "fallback"))
	})

	t.Run("empty env value falls back to default", func(t *testing.T) {
		t.Setenv("SPARKLEDEX_TEST_STR", "")
		assert.Equal(t, "fallback", ParseString("SPARKLEDEX_TEST_STR", "fallback"))
	})
}

func TestParseInt(t *testing.T) {
	t.Run("valid integer", func(t *testing.T) {
		t.Setenv("SPARKLEDEX_TEST_INT", "42")
		assert.Equal(t, 42, ParseInt("SPARKLEDEX_TEST_INT", 7))
	})

	t.Run("invalid integer falls back", func(t *testing.T) {
		t.Setenv("SPARKLEDEX_TEST_INT", "not-a-number")
		assert.Equal(t, 7, ParseInt("SPARKLEDEX_TEST_INT", 7))
	})

	t.Run("unset falls back", func(t *testing.T) {
		assert.Equal(t, 7, ParseInt("SPARKLEDEX_TEST_INT_UNSET", 7))
	})
}

func TestParseInt64(t *testing.T) {
	t.Setenv("SPARKLEDEX_TEST_INT64", "10485760")
	assert.Equal(t, int64(10485760), ParseInt64("SPARKLEDEX_TEST_INT64", 1))
}

func TestParseBool(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"0", false},
		{"false", false},
		{"garbage", true}, // falls back to default true
	}

	for _, tc := range cases {
		t.Run(tc.value, func(t *testing.T) {
			t.Setenv("SPARKLEDEX_TEST_BOOL", tc.value)
			assert.Equal(t, tc.want, ParseBool("SPARKLEDEX_TEST_BOOL", true))
		})
	}
}

func TestParseFloat(t *testing.T) {
	t.Run("valid float", func(t *testing.T) {
		t.Setenv("SPARKLEDEX_TEST_FLOAT", "0.25")
		assert.Equal(t, 0.25, ParseFloat("SPARKLEDEX_TEST_FLOAT", 1.0))
	})

	t.Run("invalid float falls back", func(t *testing.T) {
		t.Setenv("SPARKLEDEX_TEST_FLOAT", "x")
		assert.Equal(t, 1.0, ParseFloat("SPARKLEDEX_TEST_FLOAT", 1.0))
	})
}

func TestParseDuration(t *testing.T) {
	t.Run("valid duration", func(t *testing.T) {
		t.Setenv("SPARKLEDEX_TEST_DUR", "5s")
		assert.Equal(t, 5*time.Second, ParseDuration("SPARKLEDEX_TEST_DUR", time.Minute))
	})

	t.Run("invalid duration falls back", func(t *testing.T) {
		t.Setenv("SPARKLEDEX_TEST_DUR", "soon")
		assert.Equal(t, time.Minute, ParseDuration("SPARKLEDEX_TEST_DUR", time.Minute))
	})
}
