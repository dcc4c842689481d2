package reservation

import (
	"testing"
	"time"

	"github.com/sethkline/studio-scheduler-sub004/internal/model"
)

func TestSeatView_EffectiveStatus(t *testing.T) {
	t.Parallel()
	now := testNow
	future := now.Add(time.Minute)
	past := now.Add(-time.Minute)

	cases := []struct {
		name string
		view SeatView
		want string
	}{
		{"available stays available", SeatView{Status: model.SeatAvailable}, model.SeatAvailable},
		{"sold stays sold", SeatView{Status: model.SeatSold}, model.SeatSold},
		{"live hold reads reserved", SeatView{Status: model.SeatReserved, HoldActive: true, HoldExpiresAt: &future}, model.SeatReserved},
		{"lapsed hold reads available", SeatView{Status: model.SeatReserved, HoldActive: true, HoldExpiresAt: &past}, model.SeatAvailable},
		{"deadline boundary counts as lapsed", SeatView{Status: model.SeatReserved, HoldActive: true, HoldExpiresAt: &now}, model.SeatAvailable},
		{"inactive hold reads available", SeatView{Status: model.SeatReserved, HoldActive: false, HoldExpiresAt: &future}, model.SeatAvailable},
		{"orphaned reserve reads available", SeatView{Status: model.SeatReserved}, model.SeatAvailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.view.EffectiveStatus(now); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestDedupeIDs(t *testing.T) {
	t.Parallel()
	got := dedupeIDs([]uint64{3, 0, 1, 3, 1, 2})
	want := []uint64{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
