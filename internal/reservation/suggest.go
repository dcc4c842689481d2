package reservation

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/sethkline/studio-scheduler-sub004/internal/clock"
	"github.com/sethkline/studio-scheduler-sub004/internal/model"
)

// Suggester proposes a good block of seats for a shopper.  It is
// strictly read-only: it never locks or mutates inventory, and it
// applies the same lazy expiration rule as Reserve so it never suggests
// a seat whose stale hold merely has not been swept yet.
type Suggester struct {
	store Store
	clock clock.Clock
}

// NewSuggester constructs a Suggester over the given store.
func NewSuggester(store Store, clk clock.Clock) *Suggester {
	return &Suggester{store: store, clock: clk}
}

// SuggestInput carries the shopper's preferences.
type SuggestInput struct {
	EventID               uint64
	Count                 int
	PreferCenter          bool
	KeepTogether          bool
	RequireHandicapAccess bool
}

// Suggestion is the engine's answer.  IdealMatch is true only when a
// contiguous block in one row satisfied the request exactly as asked;
// the individual-seat fallback always reports false.  When fewer than
// Count seats are available at all, Success is false and AvailableCount
// carries the actual number.
type Suggestion struct {
	Success          bool
	IdealMatch       bool
	AvailableCount   int
	Seats            []SeatView
	TotalAmountCents uint32
}

// Suggest picks the best Count seats for the event.  With KeepTogether
// it scans each row for runs of seat-number-consecutive available seats
// of sufficient length and ranks the runs by section centrality, then
// smallest excess over Count, then row proximity to the front.  Without
// a qualifying run (or with KeepTogether false) it falls back to the
// best individual seats under the same ranking.
func (s *Suggester) Suggest(ctx context.Context, in SuggestInput) (*Suggestion, error) {
	if in.EventID == 0 || in.Count < 1 {
		return nil, ErrInvalidInput
	}
	if _, err := s.store.GetEvent(ctx, in.EventID); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	all, err := s.store.SeatsForEvent(ctx, in.EventID, nil)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	avail := make([]SeatView, 0, len(all))
	for _, sv := range all {
		if sv.EffectiveStatus(now) != model.SeatAvailable {
			continue
		}
		if in.RequireHandicapAccess && !sv.HandicapAccess {
			continue
		}
		avail = append(avail, sv)
	}

	if len(avail) < in.Count {
		return &Suggestion{Success: false, AvailableCount: len(avail)}, nil
	}

	if in.KeepTogether {
		if run := bestRun(avail, in.Count, in.PreferCenter); run != nil {
			return finish(run, true), nil
		}
	}

	// Fallback: best individual seats ignoring adjacency.
	sortSeats(avail, in.PreferCenter)
	return finish(avail[:in.Count], false), nil
}

func finish(seats []SeatView, ideal bool) *Suggestion {
	var total uint32
	for _, sv := range seats {
		total += sv.PriceCents
	}
	return &Suggestion{
		Success:          true,
		IdealMatch:       ideal,
		AvailableCount:   len(seats),
		Seats:            seats,
		TotalAmountCents: total,
	}
}

// bestRun finds the highest-ranked run of at least count consecutive
// seats within a single row, or nil when no row has one.  The returned
// slice holds exactly count seats taken from the start of the run.
func bestRun(avail []SeatView, count int, preferCenter bool) []SeatView {
	byRow := make(map[string][]SeatView)
	for _, sv := range avail {
		key := sv.Section + "\x00" + sv.RowLabel
		byRow[key] = append(byRow[key], sv)
	}

	type candidate struct {
		seats  []SeatView
		excess int
	}
	var candidates []candidate
	for _, row := range byRow {
		sort.Slice(row, func(i, j int) bool { return row[i].SeatNumber < row[j].SeatNumber })
		start := 0
		for i := 1; i <= len(row); i++ {
			if i < len(row) && row[i].SeatNumber == row[i-1].SeatNumber+1 {
				continue
			}
			if run := row[start:i]; len(run) >= count {
				candidates = append(candidates, candidate{seats: run, excess: len(run) - count})
			}
			start = i
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i].seats[0], candidates[j].seats[0]
		if preferCenter {
			if sa, sb := sectionScore(a.Section), sectionScore(b.Section); sa != sb {
				return sa < sb
			}
		}
		if candidates[i].excess != candidates[j].excess {
			return candidates[i].excess < candidates[j].excess
		}
		if ra, rb := rowIndex(a.RowLabel), rowIndex(b.RowLabel); ra != rb {
			return ra < rb
		}
		return a.SeatNumber < b.SeatNumber
	})
	return candidates[0].seats[:count]
}

// sortSeats ranks individual seats by section centrality, row proximity
// to the front, then seat number, keeping the order deterministic.
func sortSeats(seats []SeatView, preferCenter bool) {
	sort.Slice(seats, func(i, j int) bool {
		a, b := seats[i], seats[j]
		if preferCenter {
			if sa, sb := sectionScore(a.Section), sectionScore(b.Section); sa != sb {
				return sa < sb
			}
		}
		if ra, rb := rowIndex(a.RowLabel), rowIndex(b.RowLabel); ra != rb {
			return ra < rb
		}
		if a.Section != b.Section {
			return a.Section < b.Section
		}
		return a.SeatNumber < b.SeatNumber
	})
}

// sectionScore ranks sections by centrality: center beats left/right,
// which beat anything unrecognized.
func sectionScore(section string) int {
	s := strings.ToLower(section)
	switch {
	case strings.Contains(s, "center") || strings.Contains(s, "centre") || strings.Contains(s, "middle"):
		return 0
	case strings.Contains(s, "left") || strings.Contains(s, "right"):
		return 1
	default:
		return 2
	}
}

// rowIndex converts a spreadsheet-style row label to its distance from
// the front (A=1, B=2, ..., Z=26, AA=27).  Labels with non-letter
// characters rank last, matching "row proximity to the front, if known".
func rowIndex(label string) int {
	const unknown = 1 << 20
	if label == "" {
		return unknown
	}
	idx := 0
	for _, r := range strings.ToUpper(label) {
		if r < 'A' || r > 'Z' {
			return unknown
		}
		idx = idx*26 + int(r-'A') + 1
	}
	return idx
}
