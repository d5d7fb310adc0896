package moderation

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"warden/internal/duration"
	"warden/internal/modlog"
	"warden/internal/modstore"
	"warden/internal/platform"
	"warden/internal/scheduler"

	"go.uber.org/zap"
)

type fakeActuator struct {
	perms    map[string]bool
	roles    map[string]map[string]bool
	channels []platform.ChannelState
	permErr  map[string]error
}

func newFakeActuator() *fakeActuator {
	return &fakeActuator{
		perms: make(map[string]bool),
		roles: make(map[string]map[string]bool),
	}
}

func (f *fakeActuator) Unban(guildID, userID string) error { return nil }

func (f *fakeActuator) AddRole(guildID, userID, roleID string) error {
	if f.roles[userID] == nil {
		f.roles[userID] = make(map[string]bool)
	}
	f.roles[userID][roleID] = true
	return nil
}

func (f *fakeActuator) RemoveRole(guildID, userID, roleID string) error {
	if f.roles[userID] != nil {
		delete(f.roles[userID], roleID)
	}
	return nil
}

func (f *fakeActuator) SetChannelSendPermission(guildID, channelID string, allowed bool) error {
	if err := f.permErr[channelID]; err != nil {
		return err
	}
	f.perms[channelID] = allowed
	return nil
}

func (f *fakeActuator) SendDirectMessage(userID, text string) error { return nil }

func (f *fakeActuator) GuildTextChannels(guildID string) ([]platform.ChannelState, error) {
	return f.channels, nil
}

func newTestEngine(t *testing.T, lockdown LockdownConfig) (*Engine, *modstore.Store, *fakeActuator) {
	t.Helper()
	store, err := modstore.Open(filepath.Join(t.TempDir(), "moderation.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	actuator := newFakeActuator()
	recorder := modlog.NewRecorder(zap.NewNop())
	return NewEngine(store, actuator, recorder, lockdown, zap.NewNop()), store, actuator
}

func TestApplySanctionRejectsBadDuration(t *testing.T) {
	engine, store, _ := newTestEngine(t, LockdownConfig{})

	_, err := engine.ApplySanction(context.Background(), Sanction{
		GuildID:     "g1",
		ModeratorID: "m1",
		Target:      User("u1"),
		Action:      modstore.ActionMute,
		Duration:    "10x",
	}, time.Now())
	if !errors.Is(err, duration.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if cases := store.ListByUser("g1", "u1"); len(cases) != 0 {
		t.Fatalf("rejected sanction must leave no case, got %d", len(cases))
	}
	if timed := store.ListForUser("g1", "u1"); len(timed) != 0 {
		t.Fatalf("rejected sanction must schedule nothing, got %d", len(timed))
	}
}

func TestApplySanctionSchedulesReversal(t *testing.T) {
	engine, store, _ := newTestEngine(t, LockdownConfig{})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	entry, err := engine.ApplySanction(context.Background(), Sanction{
		GuildID:     "g1",
		ModeratorID: "m1",
		Target:      User("u1"),
		Action:      modstore.ActionBan,
		Reason:      "raid",
		Duration:    "2d",
	}, now)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if entry.CaseID != 1 || entry.Action != modstore.ActionBan {
		t.Fatalf("unexpected case: %+v", entry)
	}

	timed := store.ListForUser("g1", "u1")
	if len(timed) != 1 {
		t.Fatalf("expected 1 timed entry, got %d", len(timed))
	}
	if timed[0].Kind != modstore.KindBan || !timed[0].ExpiresAt.Equal(now.Add(48*time.Hour)) {
		t.Fatalf("unexpected timed entry: %+v", timed[0])
	}
}

func TestApplySanctionPermanentSchedulesNothing(t *testing.T) {
	engine, store, _ := newTestEngine(t, LockdownConfig{})

	if _, err := engine.ApplySanction(context.Background(), Sanction{
		GuildID:     "g1",
		ModeratorID: "m1",
		Target:      User("u1"),
		Action:      modstore.ActionBan,
	}, time.Now()); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if timed := store.ListForUser("g1", "u1"); len(timed) != 0 {
		t.Fatalf("permanent ban must schedule nothing, got %d", len(timed))
	}
}

func TestTimedMuteLifecycle(t *testing.T) {
	engine, store, actuator := newTestEngine(t, LockdownConfig{})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := actuator.AddRole("g1", "u1", "muted"); err != nil {
		t.Fatalf("add role: %v", err)
	}
	if _, err := engine.ApplySanction(context.Background(), Sanction{
		GuildID:     "g1",
		ModeratorID: "m1",
		Target:      User("u1"),
		Action:      modstore.ActionMute,
		Duration:    "1h",
	}, now); err != nil {
		t.Fatalf("apply: %v", err)
	}

	loop := scheduler.New(store, actuator, scheduler.Config{MuteRoleID: "muted"}, zap.NewNop())

	loop.Tick(now.Add(30 * time.Minute))
	if !actuator.roles["u1"]["muted"] {
		t.Fatalf("mute must not be reversed before expiry")
	}

	loop.Tick(now.Add(time.Hour))
	if actuator.roles["u1"]["muted"] {
		t.Fatalf("mute role must be removed at expiry")
	}
	if timed := store.ListForUser("g1", "u1"); len(timed) != 0 {
		t.Fatalf("registry must be empty after reversal, got %d", len(timed))
	}
}

func TestUnlockRequiresBotLock(t *testing.T) {
	engine, _, _ := newTestEngine(t, LockdownConfig{})

	_, err := engine.UnlockChannel(context.Background(), "g1", "c1", "m1", time.Now())
	if !errors.Is(err, modstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for channel the bot never locked, got %v", err)
	}
}

func TestLockAndUnlockChannel(t *testing.T) {
	engine, store, actuator := newTestEngine(t, LockdownConfig{})
	now := time.Now()

	if _, err := engine.LockChannel(context.Background(), "g1", "c1", "m1", "spam wave", "1h", now); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if actuator.perms["c1"] {
		t.Fatalf("lock must deny sending")
	}
	if !store.IsLockedChannel("c1") {
		t.Fatalf("locked channel not tracked")
	}

	if _, err := engine.UnlockChannel(context.Background(), "g1", "c1", "m1", now); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if !actuator.perms["c1"] {
		t.Fatalf("unlock must restore sending")
	}
	if store.IsLockedChannel("c1") {
		t.Fatalf("unlocked channel still tracked")
	}

	// The scheduled unlock was cancelled with the manual unlock.
	loopDue := store.DrainDue(now.Add(2 * time.Hour))
	if len(loopDue) != 0 {
		t.Fatalf("manual unlock must cancel the scheduled one, got %d", len(loopDue))
	}
}

func TestLockdownRoundTrip(t *testing.T) {
	engine, store, actuator := newTestEngine(t, LockdownConfig{
		ExcludeChannels:   []string{"staff"},
		ExcludeCategories: []string{"catX"},
	})
	actuator.channels = []platform.ChannelState{
		{ID: "general", SendAllowed: true},
		{ID: "help", SendAllowed: true},
		{ID: "staff", SendAllowed: true},
		{ID: "announcements", SendAllowed: false},
		{ID: "hidden", CategoryID: "catX", SendAllowed: true},
	}
	now := time.Now()

	_, locked, err := engine.LockdownStart(context.Background(), "g1", "m1", "raid", now)
	if err != nil {
		t.Fatalf("lockdown start: %v", err)
	}
	if locked != 2 {
		t.Fatalf("expected 2 channels locked, got %d", locked)
	}
	if actuator.perms["general"] || actuator.perms["help"] {
		t.Fatalf("lockdown must deny sending in writable channels")
	}
	if _, seen := actuator.perms["staff"]; seen {
		t.Fatalf("exempt channel must not be touched")
	}
	if _, seen := actuator.perms["announcements"]; seen {
		t.Fatalf("already unwritable channel must not be touched")
	}
	if !engine.LockdownActive() {
		t.Fatalf("lockdown flag not set")
	}

	_, restored, err := engine.LockdownEnd(context.Background(), "g1", "m1", now)
	if err != nil {
		t.Fatalf("lockdown end: %v", err)
	}
	if restored != 2 {
		t.Fatalf("expected 2 channels restored, got %d", restored)
	}
	if !actuator.perms["general"] || !actuator.perms["help"] {
		t.Fatalf("lockdown end must restore sending")
	}
	if engine.LockdownActive() || len(store.LockedChannels()) != 0 {
		t.Fatalf("lockdown end must clear the set and the flag")
	}
}

func TestLockdownSkipsFailingChannel(t *testing.T) {
	engine, store, actuator := newTestEngine(t, LockdownConfig{})
	actuator.channels = []platform.ChannelState{
		{ID: "ok", SendAllowed: true},
		{ID: "bad", SendAllowed: true},
	}
	actuator.permErr = map[string]error{"bad": errors.New("missing access")}

	_, locked, err := engine.LockdownStart(context.Background(), "g1", "m1", "", time.Now())
	if err != nil {
		t.Fatalf("lockdown start: %v", err)
	}
	if locked != 1 {
		t.Fatalf("expected 1 channel locked, got %d", locked)
	}
	set := store.LockedChannels()
	if len(set) != 1 || set[0] != "ok" {
		t.Fatalf("failed channel must stay out of the set, got %v", set)
	}
}
