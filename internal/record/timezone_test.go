package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveZonePriority(t *testing.T) {
	tests := []struct {
		name        string
		modelZone   string
		text        string
		defaultZone string
		wantName    string
		wantSource  zoneSource
	}{
		{
			name:       "model IANA name wins over cues",
			modelZone:  "Asia/Tokyo",
			text:       "Departure CDG Paris",
			wantName:   "Asia/Tokyo",
			wantSource: zoneExplicit,
		},
		{
			name:       "model offset",
			modelZone:  "+05:30",
			wantName:   "UTC+05:30",
			wantSource: zoneExplicit,
		},
		{
			name:       "model UTC shorthand",
			modelZone:  "utc",
			wantName:   "UTC",
			wantSource: zoneExplicit,
		},
		{
			name:       "offset in source text",
			text:       "All times UTC+2 unless noted",
			wantName:   "UTC+02:00",
			wantSource: zoneExplicit,
		},
		{
			name:       "airport code",
			text:       "AB123 FMM -> STN",
			wantName:   "Europe/Berlin",
			wantSource: zoneAirport,
		},
		{
			name:       "city name",
			text:       "Hotel booking confirmation, Memmingen",
			wantName:   "Europe/Berlin",
			wantSource: zoneCity,
		},
		{
			name:        "configured default",
			text:        "no cues whatever",
			defaultZone: "America/New_York",
			wantName:    "America/New_York",
			wantSource:  zoneDefault,
		},
		{
			name:       "utc last resort",
			text:       "no cues whatever",
			wantName:   "UTC",
			wantSource: zoneUTC,
		},
		{
			name:        "unknown model zone falls through",
			modelZone:   "Mars/Olympus_Mons",
			defaultZone: "Europe/Berlin",
			wantName:    "Europe/Berlin",
			wantSource:  zoneDefault,
		},
		{
			name:        "ordinary three-letter words are not airports",
			text:        "PAY NOW AND GET THE BEST RATE",
			defaultZone: "Europe/Berlin",
			wantName:    "Europe/Berlin",
			wantSource:  zoneDefault,
		},
		{
			name:        "invalid default falls to utc",
			text:        "no cues",
			defaultZone: "Not/A_Zone",
			wantName:    "UTC",
			wantSource:  zoneUTC,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z := resolveZone(tt.modelZone, tt.text, tt.defaultZone)
			require.NotNil(t, z.loc)
			assert.Equal(t, tt.wantName, z.name)
			assert.Equal(t, tt.wantSource, z.source)
		})
	}
}

func TestResolveZoneCityCueIsDeterministic(t *testing.T) {
	// Two cities in different zones; the origin is named first and must
	// win on every run, regardless of map iteration order.
	text := "Bus from Paris to London, departs 14:30"
	for i := 0; i < 100; i++ {
		z := resolveZone("", text, "")
		require.Equal(t, "Europe/Paris", z.name)
		require.Equal(t, zoneCity, z.source)
	}
}

func TestResolveZoneUsesFirstMentionedCity(t *testing.T) {
	z := resolveZone("", "London to Paris, one way", "")
	assert.Equal(t, "Europe/London", z.name)

	z = resolveZone("", "Hotel in New York, booked from Chicago", "")
	assert.Equal(t, "America/New_York", z.name)
}

func TestZoneInferred(t *testing.T) {
	assert.False(t, resolveZone("Europe/Paris", "", "").inferred())
	assert.False(t, resolveZone("", "times in UTC+1", "").inferred())
	assert.True(t, resolveZone("", "CDG", "").inferred())
	assert.True(t, resolveZone("", "", "Europe/Berlin").inferred())
	assert.True(t, resolveZone("", "", "").inferred())
}

func TestOffsetZone(t *testing.T) {
	z, ok := offsetZone("+", "2", "")
	require.True(t, ok)
	assert.Equal(t, "UTC+02:00", z.name)
	ref := time.Date(2025, 3, 12, 12, 0, 0, 0, z.loc)
	_, offset := ref.Zone()
	assert.Equal(t, 2*3600, offset)

	z, ok = offsetZone("-", "05", "30")
	require.True(t, ok)
	assert.Equal(t, "UTC-05:30", z.name)
	ref = time.Date(2025, 3, 12, 12, 0, 0, 0, z.loc)
	_, offset = ref.Zone()
	assert.Equal(t, -(5*3600 + 30*60), offset)

	_, ok = offsetZone("+", "15", "")
	assert.False(t, ok, "offsets beyond UTC+14 do not exist")

	_, ok = offsetZone("+", "02", "75")
	assert.False(t, ok)
}
