package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"fieldforce.com/fieldforce/fieldforce/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceReport(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	checkInDowntown(t, h)
	_, err := h.svc.CheckInUser(ctx, "cara", h.fixAt(uptownCenter))
	require.NoError(t, err)
	h.clock.Advance(24 * time.Hour)
	_, err = h.svc.CheckInUser(ctx, "ana", h.fixAt(downtownCenter))
	require.NoError(t, err)

	cases := []struct {
		name   string
		viewer string
		want   []string
	}{
		{"Super admin", "sam", []string{"2025-10-13 Ana", "2025-10-13 Ben", "2025-10-13 Cara", "2025-10-14 Ana"}},
		{"Branch admin", "bea", []string{"2025-10-13 Ana", "2025-10-13 Ben", "2025-10-14 Ana"}},
		{"Officer", "cara", []string{"2025-10-13 Cara"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := h.svc.AttendanceReport(ctx, ViewerOf(h.profile(tc.viewer)), "2025-10")
			require.NoError(t, err)
			got := make([]string, 0, len(rows))
			for _, r := range rows {
				got = append(got, r.Date+" "+r.StaffName)
			}
			assert.Equal(t, tc.want, got)
		})
	}

	rows, err := h.svc.AttendanceReport(ctx, ViewerOf(h.profile("sam")), "2025-10")
	require.NoError(t, err)
	assert.Equal(t, model.StatusOnField, rows[1].Status)
	assert.Equal(t, "Downtown", rows[1].Branch)

	rows, err = h.svc.AttendanceReport(ctx, ViewerOf(h.profile("sam")), "2025-09")
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = h.svc.AttendanceReport(ctx, ViewerOf(h.profile("sam")), "2025-13")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRemoveUser(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name   string
		viewer string
		target string
		err    error
	}{
		{"Officer may not remove", "ana", "ben", ErrForbidden},
		{"Admin may not remove self", "bea", "bea", ErrForbidden},
		{"Branch admin outside branch", "bea", "cara", ErrForbidden},
		{"Unknown user", "sam", "ghost", ErrUnknownUser},
		{"Branch admin inside branch", "bea", "ben", nil},
		{"Super admin anywhere", "sam", "cara", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.positions.Set(tc.target, downtownCenter)
			_, _ = h.svc.CheckInUser(ctx, tc.target, h.fixAt(downtownCenter))
			require.NoError(t, h.mem.Locations().Append(ctx, newMovementLog(tc.target, Fix{Coordinate: downtownCenter}, h.clock.Now())))

			err := h.svc.RemoveUser(ctx, ViewerOf(h.profile(tc.viewer)), tc.target)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.NotEmpty(t, h.mem.Movements())
				return
			}
			require.NoError(t, err)
			assert.Nil(t, h.profile(tc.target))
			assert.Empty(t, h.mem.Movements())
			for _, r := range h.mem.AttendanceRecords() {
				assert.NotEqual(t, tc.target, r.UserID)
			}
		})
	}

	t.Run("Store failure", func(t *testing.T) {
		h := newHarness(t)
		h.mem.Fail("profile.delete", errors.New("locked"))
		err := h.svc.RemoveUser(ctx, ViewerOf(h.profile("sam")), "ana")
		var perr *PersistenceError
		assert.ErrorAs(t, err, &perr)
	})
}
