package hours

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1:30:00", "1.5", true},
		{"0:00:00", "0", true},
		{"06:00:01", "6.0002777777777778", true},
		{"12:45:00", "12.75", true},
		{"", "0", false},
		{"   ", "0", false},
		{"1:30", "0", false},
		{"a:b:c", "0", false},
		{"1:-5:00", "0", false},
		{"1:30:00:00", "0", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseDuration(tc.in)
			require.Equal(t, tc.ok, ok)
			if ok {
				assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s want %s", got, tc.want)
			}
		})
	}
}

func TestValidDuration(t *testing.T) {
	assert.True(t, ValidDuration(""))
	assert.True(t, ValidDuration("8:00:00"))
	assert.False(t, ValidDuration("8h"))
}

func TestParseClock(t *testing.T) {
	m, ok := ParseClock("22:00")
	require.True(t, ok)
	assert.Equal(t, 1320, m)

	m, ok = ParseClock(" 5:07 ")
	require.True(t, ok)
	assert.Equal(t, 307, m)

	m, ok = ParseClock("23:59")
	require.True(t, ok)
	assert.Equal(t, 1439, m)

	for _, bad := range []string{"", "22", "22:0", "22:00:00", "xx:yy", "123:00", "24:00", "25:00", "99:99", "23:60"} {
		_, ok := ParseClock(bad)
		assert.False(t, ok, bad)
	}
}

func TestSpan(t *testing.T) {
	cases := []struct {
		start, end string
		want       int
	}{
		{"08:00", "17:00", 540},
		{"22:00", "04:00", 360},
		{"23:30", "00:15", 45},
		{"10:00", "10:00", 0},
	}
	for _, tc := range cases {
		got, ok := Span(tc.start, tc.end)
		require.True(t, ok)
		assert.Equal(t, tc.want, got, "%s-%s", tc.start, tc.end)
	}

	_, ok := Span("8", "17:00")
	assert.False(t, ok)
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "6.00", FormatMinutes(360))
	assert.Equal(t, "7.75", FormatMinutes(465))
	assert.Equal(t, "0.33", FormatMinutes(20))
}
