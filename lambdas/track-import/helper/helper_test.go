package helper

import (
	"context"
	"strings"
	"testing"
	"time"

	"fieldforce.com/fieldforce/fieldforce/model"
	"fieldforce.com/fieldforce/fieldforce/store"
	"fieldforce.com/fieldforce/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trackCSV = `id,user,timestamp,lat,lng,accuracy
1,ana,2025-10-13T03:30:00Z,23.8103,90.4125,8
2,ana,2025-10-13T03:00:00Z,23.8110,90.4130,
3,ana,2025-10-13T19:00:00Z,23.8200,90.4200,12
4,ghost,2025-10-13T04:00:00Z,23.7940,90.4043,5
`

func TestParseTrackCSV(t *testing.T) {
	samples, err := ParseTrackCSV(strings.NewReader(trackCSV), utils.DhakaTZ)
	require.NoError(t, err)
	require.Len(t, samples, 4)

	assert.Equal(t, "ana", samples[0].UserID)
	assert.Equal(t, "2025-10-13", samples[0].Date)
	require.NotNil(t, samples[0].Accuracy)
	assert.Equal(t, 8.0, *samples[0].Accuracy)
	assert.Nil(t, samples[1].Accuracy)
	// 19:00 UTC is past midnight in Dhaka
	assert.Equal(t, "2025-10-14", samples[2].Date)

	tests := []struct {
		name string
		row  string
	}{
		{"short row", "5,ana,2025-10-13T03:30:00Z,23.8"},
		{"bad timestamp", "5,ana,13/10/2025,23.8,90.4"},
		{"bad lat", "5,ana,2025-10-13T03:30:00Z,north,90.4"},
		{"out of range", "5,ana,2025-10-13T03:30:00Z,95,90.4"},
		{"negative accuracy", "5,ana,2025-10-13T03:30:00Z,23.8,90.4,-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTrackCSV(strings.NewReader("id,user,timestamp,lat,lng,accuracy\n"+tt.row+"\n"), utils.DhakaTZ)
			assert.Error(t, err)
		})
	}
}

func TestGroupSamples(t *testing.T) {
	samples, err := ParseTrackCSV(strings.NewReader(trackCSV), utils.DhakaTZ)
	require.NoError(t, err)

	tracks := GroupSamples(samples)
	require.Len(t, tracks, 3)

	assert.Equal(t, "ana", tracks[0].UserID)
	assert.Equal(t, "2025-10-13", tracks[0].Date)
	assert.Len(t, tracks[0].Samples, 2)
	assert.Equal(t, "2", tracks[0].Samples[0].ID)
	assert.True(t, tracks[0].From.Equal(time.Date(2025, 10, 13, 3, 0, 0, 0, time.UTC)))
	assert.True(t, tracks[0].To.Equal(time.Date(2025, 10, 13, 3, 30, 0, 0, time.UTC)))

	assert.Equal(t, "2025-10-14", tracks[1].Date)
	assert.Equal(t, "ghost", tracks[2].UserID)
}

func TestImport(t *testing.T) {
	mem := store.NewMemory()
	mem.PutProfile(model.Profile{ID: "ana", Name: "Ana", Role: model.RoleOfficer})

	samples, err := ParseTrackCSV(strings.NewReader(trackCSV), utils.DhakaTZ)
	require.NoError(t, err)

	result, err := Import(context.Background(), mem.Locations(), mem.Profiles(), GroupSamples(samples))
	require.NoError(t, err)

	require.Len(t, result.Tracks, 2)
	assert.Equal(t, 2, result.Tracks[0].Count)
	assert.Equal(t, []string{"ghost 2025-10-13: unknown user"}, result.Skipped)

	logs := mem.Movements()
	require.Len(t, logs, 3)
	for _, l := range logs {
		assert.Equal(t, "ana", l.UserID)
		assert.Len(t, l.ID, 26)
	}
}
