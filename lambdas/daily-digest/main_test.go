package main

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"fieldforce.com/fieldforce/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/model"
	"fieldforce.com/fieldforce/fieldforce/store"
	"fieldforce.com/fieldforce/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	info, errs []string
	fail       error
}

func (r *recorder) Info(message string) error {
	if r.fail != nil {
		return r.fail
	}
	r.info = append(r.info, message)
	return nil
}

func (r *recorder) Error(message string) error {
	r.errs = append(r.errs, message)
	return nil
}

func newService(t *testing.T) (*core.Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	mem.PutBranch(model.Branch{ID: "b1", Name: "Downtown", Lat: 23.8103, Lng: 90.4125, Radius: 250})
	mem.PutProfile(model.Profile{ID: "ana", Name: "Ana", Role: model.RoleOfficer, BranchID: utils.Ptr("b1")})
	mem.PutProfile(model.Profile{ID: "ben", Name: "Ben", Role: model.RoleOfficer, BranchID: utils.Ptr("b1")})

	checkIn := time.Date(2025, 10, 13, 9, 0, 0, 0, utils.DhakaTZ)
	require.NoError(t, mem.Attendance().Insert(context.Background(), &model.AttendanceRecord{
		ID: "r1", UserID: "ana", Date: "2025-10-13", CheckIn: &checkIn, Status: model.StatusOnField,
	}))

	svc := core.NewService(core.Dependencies{
		Stores: core.Stores{
			Attendance: mem.Attendance(),
			Locations:  mem.Locations(),
			Profiles:   mem.Profiles(),
			Branches:   mem.Branches(),
			Vehicles:   mem.Vehicles(),
			Expenses:   mem.Expenses(),
		},
		Logger: log.New(io.Discard, "", 0),
		Now:    func() time.Time { return checkIn.Add(9 * time.Hour) },
	}, core.DefaultOptions())
	return svc, mem
}

func TestPostDigest(t *testing.T) {
	ctx := context.Background()

	t.Run("posts today's digest", func(t *testing.T) {
		svc, _ := newService(t)
		slack := &recorder{}
		digest, err := PostDigest(ctx, svc, slack, DigestEvent{})
		require.NoError(t, err)
		assert.Equal(t, "2025-10-13", digest.Date)
		require.Len(t, slack.info, 1)
		assert.Contains(t, slack.info[0], "Downtown: 1/2 in (0 present, 1 on field), 1 absent")
	})

	t.Run("dry run does not post", func(t *testing.T) {
		svc, _ := newService(t)
		slack := &recorder{}
		_, err := PostDigest(ctx, svc, slack, DigestEvent{Date: "2025-10-12", DryRun: true})
		require.NoError(t, err)
		assert.Empty(t, slack.info)
	})

	t.Run("invalid date", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := PostDigest(ctx, svc, &recorder{}, DigestEvent{Date: "yesterday"})
		assert.Error(t, err)
	})

	t.Run("store failure is reported", func(t *testing.T) {
		svc, mem := newService(t)
		mem.Fail("profile.list", errors.New("db down"))
		slack := &recorder{}
		_, err := PostDigest(ctx, svc, slack, DigestEvent{})
		require.Error(t, err)
		require.Len(t, slack.errs, 1)
		assert.Contains(t, slack.errs[0], "db down")
	})

	t.Run("post failure", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := PostDigest(ctx, svc, &recorder{fail: errors.New("channel_not_found")}, DigestEvent{})
		assert.ErrorContains(t, err, "channel_not_found")
	})
}
