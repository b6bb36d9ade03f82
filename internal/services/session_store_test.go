package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cardstack-tools/deckmatcher/internal/models"
)

func sessionFixture(t *testing.T) (*SessionStore, *ResolutionSession) {
	t.Helper()
	catalog := matchCatalog(
		models.CardVariant{NameOriginal: "Brainstorm", SetCode: "EMA", SKU: "SKU-EMA", VariantType: "Regular", PriceCents: 150},
		models.CardVariant{NameOriginal: "Brainstorm", SetCode: "ICE", SKU: "SKU-ICE", VariantType: "Regular", PriceCents: 99},
	)
	config := models.DefaultMatchConfig()
	matches := MatchAll(ParseDecklist("3 Brainstorm"), catalog, config)

	store := NewSessionStore()
	session := store.Create(matches, config, catalog)
	return store, session
}

func TestSessionStoreCreateAndGet(t *testing.T) {
	store, session := sessionFixture(t)

	if session.ID == "" {
		t.Fatal("session must get an ID")
	}
	got, ok := store.Get(session.ID)
	if !ok || got.ID != session.ID {
		t.Errorf("Get(%s) = %v, %v", session.ID, got, ok)
	}
	if _, ok := store.Get("missing"); ok {
		t.Error("Get should miss for unknown session IDs")
	}
}

func TestSessionStoreSelect(t *testing.T) {
	store, session := sessionFixture(t)

	updated, err := store.Select(session.ID, 0, "SKU-ICE", nil)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	m := updated.Matches[0]
	if m.Status != models.StatusManualSelected || m.Selected.SKU != "SKU-ICE" {
		t.Errorf("match = %s/%+v, want manual_selected SKU-ICE", m.Status, m.Selected)
	}
}

func TestSessionStoreSelectErrors(t *testing.T) {
	store, session := sessionFixture(t)

	tests := []struct {
		name  string
		id    string
		index int
		sku   string
	}{
		{"unknown session", "nope", 0, "SKU-ICE"},
		{"index out of range", session.ID, 5, "SKU-ICE"},
		{"sku outside candidates", session.ID, 0, "SKU-WRONG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Select(tt.id, tt.index, tt.sku, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSessionStoreSelectOverride(t *testing.T) {
	store, session := sessionFixture(t)

	override := &models.ManualOverride{CardName: "Brainstorm", SetCode: "MMQ", VariantType: "Foil", SKU: "SKU-X"}
	updated, err := store.Select(session.ID, 0, "", override)
	if err != nil {
		t.Fatalf("Select() with override error = %v", err)
	}
	m := updated.Matches[0]
	if m.Status != models.StatusManualSelected || m.Selected.SKU != "SKU-X" {
		t.Errorf("match = %s/%+v, want forced override applied", m.Status, m.Selected)
	}
}

func TestSessionStoreGetIsDetachedFromSelect(t *testing.T) {
	store, session := sessionFixture(t)

	before, ok := store.Get(session.ID)
	if !ok {
		t.Fatal("session should exist")
	}
	if _, err := store.Select(session.ID, 0, "SKU-ICE", nil); err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	if before.Matches[0].Status != models.StatusAmbiguous {
		t.Errorf("earlier snapshot saw a later selection: %s", before.Matches[0].Status)
	}
	after, _ := store.Get(session.ID)
	if after.Matches[0].Status != models.StatusManualSelected {
		t.Errorf("fresh Get = %s, want manual_selected", after.Matches[0].Status)
	}
}

func TestSessionStoreConcurrentReadAndSelect(t *testing.T) {
	store, session := sessionFixture(t)

	// Serializing a Get result must never observe a Select in progress.
	done := make(chan struct{})
	go func() {
		defer close(done)
		skus := []string{"SKU-ICE", "SKU-EMA"}
		for i := 0; i < 200; i++ {
			if _, err := store.Select(session.ID, 0, skus[i%2], nil); err != nil {
				t.Errorf("Select() error = %v", err)
				return
			}
		}
	}()

	for i := 0; i < 200; i++ {
		got, ok := store.Get(session.ID)
		if !ok {
			t.Fatal("session disappeared mid-run")
		}
		if _, err := json.Marshal(got); err != nil {
			t.Fatalf("marshaling session: %v", err)
		}
	}
	<-done
}

func TestSessionStorePrunesExpired(t *testing.T) {
	store, session := sessionFixture(t)

	// Age the session past the retention window, then trigger a prune via
	// the next Create.
	store.mu.Lock()
	store.sessions[session.ID].CreatedAt = time.Now().Add(-48 * time.Hour)
	store.mu.Unlock()

	store.Create(nil, models.DefaultMatchConfig(), nil)

	if _, ok := store.Get(session.ID); ok {
		t.Error("expired session should have been pruned")
	}
}
