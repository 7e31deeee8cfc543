package parser

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow(year int, month time.Month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"04 Aug 2025", "2025-08-04"},
		{"4 Aug 2025", "2025-08-04"},
		{"03-sep-2025", "2025-09-03"},
		{"03-SEP-2025", "2025-09-03"},
		{"  31 Dec 2030 ", "2030-12-31"},
		{"29 Feb 2024", "2024-02-29"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDate_Rejects(t *testing.T) {
	for _, in := range []string{"", "garbage", "04 Xyz 2025", "32 Aug 2025", "29 Feb 2025", "2025-08-04", "04/08/2025"} {
		t.Run(in, func(t *testing.T) {
			got, err := NormalizeDate(in)
			assert.ErrorIs(t, err, ErrUnparseableDate)
			assert.Empty(t, got)
		})
	}
}

// Every valid day/month/year written in either dialect survives a round trip back
// through the canonical form.
func TestNormalizeDate_RoundTrip(t *testing.T) {
	for _, year := range []int{1999, 2024, 2025} {
		for month := time.January; month <= time.December; month++ {
			for day := 1; day <= 28; day++ {
				orig := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
				abbr := orig.Format("Jan")

				spaced := fmt.Sprintf("%02d %s %d", day, abbr, year)
				hyphen := fmt.Sprintf("%02d-%s-%d", day, strings.ToLower(abbr), year)

				for _, token := range []string{spaced, hyphen} {
					canonical, err := NormalizeDate(token)
					require.NoError(t, err, token)

					back, err := time.Parse(IsoDateLayout, canonical)
					require.NoError(t, err)
					assert.Equal(t, strings.ToLower(spaced), strings.ToLower(back.Format("02 Jan 2006")))
				}
			}
		}
	}
}

func TestParseISODate_UsesLocation(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	got, err := ParseISODate("2025-08-04", seoul)
	require.NoError(t, err)
	assert.Equal(t, seoul, got.Location())
	assert.Equal(t, 0, got.Hour())

	utc, err := ParseISODate("2025-08-04", nil)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, utc.Location())
}
