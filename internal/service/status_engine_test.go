package service

import (
	"context"
	"strings"
	"testing"

	"github.com/freeeve/hexmarch/internal/model"
	"github.com/freeeve/hexmarch/internal/sheet"
)

func statusFixture(status model.Status) *memStore {
	store := newMemStore()
	seedUnpaused(store)
	seedMap(store, 3, 3)
	seedArmy(store, &model.Army{
		UID: "army-1", Player: "alice", CurrentHex: "B02",
		Troops: []string{"500 Spearmen"}, Status: status,
	})
	return store
}

func setArmyStatus(store *memStore, uid string, status model.Status) {
	table := store.tables[model.SheetArmies]
	for i, row := range table.Rows {
		a, err := model.ArmyFromRow(table.Header, row)
		if err == nil && a.UID == uid {
			a.Status = status
			table.Rows[i] = model.ArmyToRow(a)
		}
	}
}

func TestStatusEngine_StartsTimerAndAnnounces(t *testing.T) {
	store := statusFixture(model.StatusSiege)
	notifier := &recordingNotifier{}
	e := NewStatusEngine(store, notifier, 0)

	e.Tick(context.Background())

	if len(notifier.announcements) != 1 {
		t.Fatalf("got %d announcements, want 1", len(notifier.announcements))
	}
	text := notifier.announcements[0]
	if !strings.Contains(text, "started to siege") || !strings.Contains(text, "180 minutes") || !strings.Contains(text, "|| army-1 ||") {
		t.Errorf("start announcement = %q", text)
	}
	if len(notifier.dmsFor("alice")) != 1 {
		t.Errorf("owner should get a start notice")
	}

	timer := storedTimer(store, "army-1")
	if timer == nil || timer.Status != model.StatusSiege || timer.Minutes != 179 {
		t.Fatalf("checkpoint = %+v, want Siege at 179", timer)
	}
}

func TestStatusEngine_UntimedStatusesIgnored(t *testing.T) {
	for _, status := range []model.Status{model.StatusStationary, model.StatusMoving, model.StatusDefending, model.StatusBesieging, model.StatusAmbushing} {
		t.Run(string(status), func(t *testing.T) {
			store := statusFixture(status)
			notifier := &recordingNotifier{}
			e := NewStatusEngine(store, notifier, 0)

			e.Tick(context.Background())

			if timer := storedTimer(store, "army-1"); timer != nil {
				t.Errorf("untimed status %s got a timer: %+v", status, timer)
			}
			if len(notifier.announcements) != 0 {
				t.Errorf("untimed status %s announced: %v", status, notifier.announcements)
			}
		})
	}
}

func TestStatusEngine_CompletesAtZero(t *testing.T) {
	store := statusFixture(model.StatusEmbark)
	notifier := &recordingNotifier{}
	e := NewStatusEngine(store, notifier, 0)
	ctx := context.Background()

	for i := 0; i < EmbarkMinutes; i++ {
		e.Tick(ctx)
	}

	a := storedArmy(store, "army-1")
	if a == nil || a.Status != model.StatusStationary {
		t.Fatalf("army = %+v, want Stationary after completion", a)
	}
	if timer := storedTimer(store, "army-1"); timer != nil {
		t.Errorf("timer should be cleared, got %+v", timer)
	}

	last := notifier.announcements[len(notifier.announcements)-1]
	if !strings.Contains(last, "The embark at B02 is complete.") || !strings.Contains(last, "|| army-1 ||") {
		t.Errorf("completion announcement = %q", last)
	}
	// Start notice plus completion notice.
	if got := len(notifier.dmsFor("alice")); got != 2 {
		t.Errorf("owner notices = %d, want 2", got)
	}
}

func TestStatusEngine_ConfigurableRaidDuration(t *testing.T) {
	store := statusFixture(model.StatusRaid)
	notifier := &recordingNotifier{}
	e := NewStatusEngine(store, notifier, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		e.Tick(ctx)
	}

	a := storedArmy(store, "army-1")
	if a == nil || a.Status != model.StatusStationary {
		t.Fatalf("army = %+v, want Stationary after a 5 minute raid", a)
	}
}

func TestStatusEngine_InterruptAnnouncedDistinctly(t *testing.T) {
	store := statusFixture(model.StatusRaid)
	notifier := &recordingNotifier{}
	e := NewStatusEngine(store, notifier, 0)
	ctx := context.Background()

	e.Tick(ctx)
	setArmyStatus(store, "army-1", model.StatusDefending)
	e.Tick(ctx)

	if len(notifier.announcements) != 2 {
		t.Fatalf("announcements = %v", notifier.announcements)
	}
	interrupt := notifier.announcements[1]
	if !strings.Contains(interrupt, "stopped their raid") || !strings.Contains(interrupt, "early") {
		t.Errorf("interrupt announcement = %q", interrupt)
	}
	if timer := storedTimer(store, "army-1"); timer != nil {
		t.Errorf("interrupted timer should be cleared, got %+v", timer)
	}
	// Defending is untimed: the army keeps its declared status.
	if a := storedArmy(store, "army-1"); a.Status != model.StatusDefending {
		t.Errorf("army status = %s", a.Status)
	}
}

func TestStatusEngine_InterruptIntoNewTimedStatus(t *testing.T) {
	store := statusFixture(model.StatusSiege)
	notifier := &recordingNotifier{}
	e := NewStatusEngine(store, notifier, 0)
	ctx := context.Background()

	e.Tick(ctx)
	setArmyStatus(store, "army-1", model.StatusRaid)
	e.Tick(ctx)

	timer := storedTimer(store, "army-1")
	if timer == nil || timer.Status != model.StatusRaid {
		t.Fatalf("timer = %+v, want a fresh Raid timer", timer)
	}
	var stopped, started bool
	for _, text := range notifier.announcements {
		if strings.Contains(text, "stopped their siege") {
			stopped = true
		}
		if strings.Contains(text, "started to raid") {
			started = true
		}
	}
	if !stopped || !started {
		t.Errorf("want both interrupt and fresh start: %v", notifier.announcements)
	}
}

func TestStatusEngine_PauseGateFreezesTimers(t *testing.T) {
	store := statusFixture(model.StatusSiege)
	notifier := &recordingNotifier{}
	e := NewStatusEngine(store, notifier, 0)
	ctx := context.Background()

	e.Tick(ctx)
	before := storedTimer(store, "army-1")

	seedPaused(store)
	for i := 0; i < 10; i++ {
		e.Tick(ctx)
	}

	after := storedTimer(store, "army-1")
	if after == nil || after.Minutes != before.Minutes {
		t.Errorf("paused timer moved: %+v -> %+v", before, after)
	}
}

func TestStatusEngine_ArmiesReadFailureRetainsTimers(t *testing.T) {
	store := statusFixture(model.StatusSiege)
	e := NewStatusEngine(store, &recordingNotifier{}, 0)
	ctx := context.Background()

	e.Tick(ctx)
	store.readErr[model.SheetArmies] = sheet.ErrUnavailable
	e.Tick(ctx)
	store.readErr[model.SheetArmies] = nil

	if timer := storedTimer(store, "army-1"); timer.Minutes != 179 {
		t.Errorf("failed read must not burn timer minutes, got %d", timer.Minutes)
	}
}

func TestStatusEngine_MissingArmiesSheetRetainsTimers(t *testing.T) {
	store := statusFixture(model.StatusSiege)
	e := NewStatusEngine(store, &recordingNotifier{}, 0)
	ctx := context.Background()

	e.Tick(ctx)
	saved := store.tables[model.SheetArmies]
	delete(store.tables, model.SheetArmies)
	e.Tick(ctx)

	if timer := storedTimer(store, "army-1"); timer.Minutes != 179 {
		t.Errorf("missing sheet must not burn timer minutes, got %d", timer.Minutes)
	}

	store.tables[model.SheetArmies] = saved
	e.Tick(ctx)
	if timer := storedTimer(store, "army-1"); timer.Minutes != 178 {
		t.Errorf("after recovery timer = %d, want 178", timer.Minutes)
	}
}

func TestStatusEngine_LoadCheckpoint(t *testing.T) {
	store := statusFixture(model.StatusSiege)
	store.tables[model.SheetStatusTimers] = &sheet.Table{
		Header: append([]string(nil), model.StatusTimerColumns...),
		Rows: [][]string{
			{"army-1", "Siege", "42"},
			{"army-gone", "Raid", "10"},
		},
	}
	e := NewStatusEngine(store, &recordingNotifier{}, 0)

	if err := e.LoadCheckpoint(context.Background()); err != nil {
		t.Fatal(err)
	}

	if timer := storedTimer(store, "army-1"); timer == nil || timer.Minutes != 42 {
		t.Fatalf("restored timer = %+v, want 42 minutes remaining", timer)
	}
	if timer := storedTimer(store, "army-gone"); timer != nil {
		t.Errorf("timer for unknown army survived the prune: %+v", timer)
	}

	// The restored countdown resumes rather than restarting.
	e.Tick(context.Background())
	if timer := storedTimer(store, "army-1"); timer.Minutes != 41 {
		t.Errorf("resumed timer = %d, want 41", timer.Minutes)
	}
}
