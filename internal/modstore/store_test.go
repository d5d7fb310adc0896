package modstore

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"warden/internal/duration"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "moderation.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store
}

func TestAppendSequence(t *testing.T) {
	store := newTestStore(t)

	for i := 1; i <= 5; i++ {
		entry, err := store.Append("g1", ActionWarn, "u1", "m1", "spam", "")
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if entry.CaseID != i {
			t.Fatalf("expected case id %d, got %d", i, entry.CaseID)
		}
	}

	entry, err := store.Append("g2", ActionBan, "u2", "m1", "", "")
	if err != nil {
		t.Fatalf("append other guild: %v", err)
	}
	if entry.CaseID != 1 {
		t.Fatalf("expected per-guild sequence to restart at 1, got %d", entry.CaseID)
	}
}

func TestAppendConcurrent(t *testing.T) {
	store := newTestStore(t)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := store.Append("g1", ActionWarn, "u1", "m1", "", ""); err != nil {
				t.Errorf("append: %v", err)
			}
		}()
	}
	wg.Wait()

	seen := make(map[int]bool, n)
	for _, c := range store.ListByUser("g1", "u1") {
		if seen[c.CaseID] {
			t.Fatalf("duplicate case id %d", c.CaseID)
		}
		seen[c.CaseID] = true
	}
	for i := 1; i <= n; i++ {
		if !seen[i] {
			t.Fatalf("missing case id %d", i)
		}
	}
}

func TestGetAndSetReason(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Get("g1", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	entry, err := store.Append("g1", ActionMute, "u1", "m1", "first", "1h")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.SetReason("g1", entry.CaseID, "updated"); err != nil {
		t.Fatalf("set reason: %v", err)
	}
	got, err := store.Get("g1", entry.CaseID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Reason != "updated" || got.Duration != "1h" || got.Action != ActionMute {
		t.Fatalf("unexpected case after edit: %+v", got)
	}

	if err := store.SetReason("g1", 99, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetDuration(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	entry, err := store.Append("g1", ActionMute, "u1", "m1", "", "1h")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Schedule(TimedAction{Kind: KindMute, GuildID: "g1", UserID: "u1", ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	if err := store.SetDuration("g1", entry.CaseID, "bogus", now); !errors.Is(err, duration.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	got, _ := store.Get("g1", entry.CaseID)
	if got.Duration != "1h" {
		t.Fatalf("invalid token must leave old duration, got %q", got.Duration)
	}

	if err := store.SetDuration("g1", entry.CaseID, "2d", now); err != nil {
		t.Fatalf("set duration: %v", err)
	}
	got, _ = store.Get("g1", entry.CaseID)
	if got.Duration != "2d" {
		t.Fatalf("expected duration 2d, got %q", got.Duration)
	}
	timed := store.ListForUser("g1", "u1")
	if len(timed) != 1 {
		t.Fatalf("expected 1 timed entry, got %d", len(timed))
	}
	if want := now.Add(48 * time.Hour); !timed[0].ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, timed[0].ExpiresAt)
	}

	// A case without a duration was never timed.
	plain, _ := store.Append("g1", ActionKick, "u2", "m1", "", "")
	if err := store.SetDuration("g1", plain.CaseID, "1h", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for untimed case, got %v", err)
	}
}

func TestDrainDue(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	past := TimedAction{Kind: KindBan, GuildID: "g1", UserID: "u1", ExpiresAt: now.Add(-time.Minute)}
	exact := TimedAction{Kind: KindMute, GuildID: "g1", UserID: "u2", ExpiresAt: now}
	future := TimedAction{Kind: KindTempRole, GuildID: "g1", UserID: "u3", RoleID: "r1", ExpiresAt: now.Add(time.Minute)}
	for _, entry := range []TimedAction{past, exact, future} {
		if err := store.Schedule(entry); err != nil {
			t.Fatalf("schedule: %v", err)
		}
	}

	due := store.DrainDue(now)
	if len(due) != 2 {
		t.Fatalf("expected 2 due entries, got %d", len(due))
	}
	for _, entry := range due {
		if entry.ExpiresAt.After(now) {
			t.Fatalf("entry not due returned: %+v", entry)
		}
	}
	if remaining := store.ListForUser("g1", "u3"); len(remaining) != 1 {
		t.Fatalf("expected future entry to remain, got %d", len(remaining))
	}

	if again := store.DrainDue(now); len(again) != 0 {
		t.Fatalf("second drain must be empty, got %d", len(again))
	}
}

func TestCancel(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	_ = store.Schedule(TimedAction{Kind: KindMute, GuildID: "g1", UserID: "u1", ExpiresAt: now.Add(time.Hour)})
	_ = store.Schedule(TimedAction{Kind: KindMute, GuildID: "g1", UserID: "u1", ExpiresAt: now.Add(2 * time.Hour)})
	_ = store.Schedule(TimedAction{Kind: KindBan, GuildID: "g1", UserID: "u1", ExpiresAt: now.Add(time.Hour)})

	removed, err := store.Cancel("g1", KindMute, "u1", "")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	left := store.ListForUser("g1", "u1")
	if len(left) != 1 || left[0].Kind != KindBan {
		t.Fatalf("unexpected remaining entries: %+v", left)
	}
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moderation.json")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	entry, err := store.Append("g1", ActionBan, "u1", "m1", "raid", "1d")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	expiry := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := store.Schedule(TimedAction{Kind: KindBan, GuildID: "g1", UserID: "u1", ExpiresAt: expiry}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := store.AddLockedChannel("c1"); err != nil {
		t.Fatalf("add locked channel: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Get("g1", entry.CaseID)
	if err != nil {
		t.Fatalf("get after reload: %v", err)
	}
	if got.Action != ActionBan || got.Reason != "raid" || got.Duration != "1d" {
		t.Fatalf("case not preserved: %+v", got)
	}
	timed := reopened.ListForUser("g1", "u1")
	if len(timed) != 1 || !timed[0].ExpiresAt.Equal(expiry) {
		t.Fatalf("timed entry not preserved: %+v", timed)
	}
	if !reopened.IsLockedChannel("c1") {
		t.Fatalf("locked channel not preserved")
	}
}

func TestLockdownSet(t *testing.T) {
	store := newTestStore(t)

	if err := store.AddLockedChannel("c1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.AddLockedChannel("c1"); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if got := store.LockedChannels(); len(got) != 1 {
		t.Fatalf("expected set semantics, got %v", got)
	}

	if err := store.BeginLockdown([]string{"c1", "c2", "c3"}); err != nil {
		t.Fatalf("begin lockdown: %v", err)
	}
	if !store.LockdownActive() {
		t.Fatalf("expected lockdown active")
	}
	if got := store.LockedChannels(); len(got) != 3 {
		t.Fatalf("expected 3 locked channels, got %v", got)
	}

	locked, err := store.EndLockdown()
	if err != nil {
		t.Fatalf("end lockdown: %v", err)
	}
	if len(locked) != 3 {
		t.Fatalf("expected 3 returned, got %v", locked)
	}
	if store.LockdownActive() || len(store.LockedChannels()) != 0 {
		t.Fatalf("expected empty set and inactive flag")
	}

	if err := store.RemoveLockedChannel("c9"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
