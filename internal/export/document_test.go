package export

import (
	"strings"
	"testing"
)

func sampleDocument() *Document {
	return &Document{
		SchemaVersion: SchemaVersion,
		ExportedAt:    "2025-06-01T12:00:00Z",
		Organizations: []OrganizationJSON{
			{ID: "org-1", Name: "My Workspace", CreatedAt: "2025-01-01T00:00:00Z", UpdatedAt: "2025-01-01T00:00:00Z"},
		},
		Collections: []CollectionJSON{
			{ID: "col-1", OrganizationID: "org-1", Name: "My Collection", Color: "#64748b", IsDefault: true,
				CreatedAt: "2025-01-01T00:00:00Z", UpdatedAt: "2025-01-01T00:00:00Z"},
		},
		Groups: []GroupJSON{
			{ID: "grp-1", CollectionID: "col-1", Name: "group", CreatedAt: "2025-01-01T00:00:00Z", UpdatedAt: "2025-01-01T00:00:00Z"},
		},
		Cards: []CardJSON{
			{ID: "card-1", Title: "Example", URL: "https://example.com/", CollectionID: "col-1", GroupID: "grp-1",
				CreatedAt: "2025-01-02T00:00:00Z", UpdatedAt: "2025-01-02T00:00:00Z"},
		},
		Orders: map[string][]string{"grp-1": {"card-1"}},
	}
}

func TestEncodeDecodeRoundtrip(t *testing.T) {
	doc := sampleDocument()
	data, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.SchemaVersion != SchemaVersion {
		t.Errorf("schema version = %d, want %d", got.SchemaVersion, SchemaVersion)
	}
	if len(got.Cards) != 1 || got.Cards[0].URL != "https://example.com/" {
		t.Errorf("cards = %+v", got.Cards)
	}
	if order := got.Orders["grp-1"]; len(order) != 1 || order[0] != "card-1" {
		t.Errorf("orders = %v", got.Orders)
	}
}

func TestDecodeRejectsNewerSchema(t *testing.T) {
	if _, err := Decode([]byte(`{"schemaVersion": 99}`)); err == nil {
		t.Fatal("expected version error")
	} else if !strings.Contains(err.Error(), "schema version") {
		t.Errorf("error = %v, want schema version complaint", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("not json")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDecodeFillsNilOrders(t *testing.T) {
	doc, err := Decode([]byte(`{"schemaVersion": 1}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if doc.Orders == nil {
		t.Fatal("Orders map not initialized")
	}
}

func TestChecksumIgnoresExportedAt(t *testing.T) {
	a := sampleDocument()
	b := sampleDocument()
	b.ExportedAt = "2030-01-01T00:00:00Z"

	sumA, err := Checksum(a)
	if err != nil {
		t.Fatalf("Checksum failed: %v", err)
	}
	sumB, err := Checksum(b)
	if err != nil {
		t.Fatalf("Checksum failed: %v", err)
	}
	if sumA != sumB {
		t.Error("checksum varies with ExportedAt")
	}
	if len(sumA) != 64 {
		t.Errorf("checksum length = %d, want 64 hex chars", len(sumA))
	}
}

func TestChecksumStableAcrossDecodeRoundtrip(t *testing.T) {
	// Decode initializes a nil Orders map; the checksum must not change
	// because of it.
	doc := sampleDocument()
	doc.Orders = nil
	before, err := Checksum(doc)
	if err != nil {
		t.Fatalf("Checksum failed: %v", err)
	}

	data, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	after, err := Checksum(decoded)
	if err != nil {
		t.Fatalf("Checksum failed: %v", err)
	}
	if before != after {
		t.Error("checksum changed across an encode/decode roundtrip")
	}
}

func TestChecksumTracksContent(t *testing.T) {
	a := sampleDocument()
	b := sampleDocument()
	b.Orders["grp-1"] = []string{"card-1", "card-2"}

	sumA, _ := Checksum(a)
	sumB, _ := Checksum(b)
	if sumA == sumB {
		t.Error("checksum identical for different content")
	}
}
