package main

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"fieldforce.com/fieldforce/geo"
	"fieldforce.com/fieldforce/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
branches:
  - id: b1
    name: Downtown
    lat: 23.8103
    lng: 90.4125
    radius: 250
vehicles:
  - id: noah
    name: Noah
    type: car
profiles:
  - id: ana
    name: Ana
    email: ana@example.com
    role: officer
    branchId: b1
  - id: sam
    name: Sam
    role: super_admin
`

func TestReadSeed(t *testing.T) {
	seed, err := ReadSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.Len(t, seed.Branches, 1)
	assert.Equal(t, 250.0, seed.Branches[0].Radius)
	require.Len(t, seed.Profiles, 2)
	assert.Equal(t, "b1", seed.Profiles[0].Branch())

	tests := []struct {
		name string
		doc  string
	}{
		{"bad fence", "branches:\n  - id: b1\n    name: X\n    radius: 250\n"},
		{"bad vehicle", "vehicles:\n  - id: v\n    type: bus\n"},
		{"bad role", "profiles:\n  - id: u\n    role: janitor\n"},
		{"unknown branch", "profiles:\n  - id: u\n    role: officer\n    branchId: b9\n"},
		{"not yaml", "branches: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSeed(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestMockTrack(t *testing.T) {
	seed, err := ReadSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)

	date := time.Date(2025, 10, 13, 0, 0, 0, 0, utils.DhakaTZ)
	logs := MockTrack(seed, date, 8, rand.New(rand.NewPCG(1, 2)))
	require.Len(t, logs, 8)

	fence, _ := seed.Branches[0].Fence()
	for _, l := range logs {
		assert.Equal(t, "ana", l.UserID)
		// the corners of the square reach radius*sqrt(2)
		assert.LessOrEqual(t, geo.Distance(fence.Center, l.Coordinate()), fence.Radius*1.5)
		assert.Equal(t, "2025-10-13", utils.LocalDate(l.Timestamp, utils.DhakaTZ))
	}
	assert.True(t, logs[0].Timestamp.Before(logs[7].Timestamp))
}
