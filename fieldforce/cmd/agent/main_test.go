package main

import (
	"strings"
	"testing"
	"time"

	v1 "fieldforce.com/fieldforce/client/v1"
	"fieldforce.com/fieldforce/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/livemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRoute(t *testing.T) {
	route, err := ReadRoute(strings.NewReader("lat,lng,accuracy\n23.7808,90.4070,12\n23.7810,90.4075,\n"))
	require.NoError(t, err)
	require.Len(t, route, 2)

	assert.Equal(t, 23.7808, route[0].Lat)
	require.NotNil(t, route[0].Accuracy)
	assert.Equal(t, 12.0, *route[0].Accuracy)
	assert.Nil(t, route[1].Accuracy)
}

func TestReadRouteErrors(t *testing.T) {
	cases := map[string]string{
		"empty":        "lat,lng\n",
		"short row":    "lat,lng\n23.7\n",
		"bad lat":      "lat,lng\nnorth,90.4\n",
		"out of range": "lat,lng\n123.7,90.4\n",
		"bad accuracy": "lat,lng,accuracy\n23.7,90.4,close\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadRoute(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestSnapshotOf(t *testing.T) {
	at := time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC)
	live := &v1.Live{
		GeneratedAt: at,
		Online:      1,
		Entries: []core.LiveEntry{
			{UserID: "ben", Name: "Ben"},
			{UserID: "ana", Name: "Ana", Online: true},
		},
	}

	snap := snapshotOf(live)
	assert.Equal(t, at, snap.GeneratedAt)
	require.Len(t, snap.Entries, 2)

	markers := livemap.MarkersFromLive(snap)
	require.Len(t, markers, 2)
	assert.Equal(t, "ana", markers[0].ID)
	assert.Equal(t, "ben", markers[1].ID)
}
