// Package export defines the versioned backup document produced and
// consumed by the store: a single JSON file holding every live entity plus
// the per-group order lists. Import restores exact per-group order, not
// just membership.
package export

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// SchemaVersion identifies the document layout. Readers reject documents
// with a newer major version.
const SchemaVersion = 1

// Document is the whole-dataset backup. Timestamps are RFC3339 strings,
// matching the store's persisted format.
type Document struct {
	SchemaVersion int                 `json:"schemaVersion"`
	ExportedAt    string              `json:"exportedAt"`
	Organizations []OrganizationJSON  `json:"organizations"`
	Collections   []CollectionJSON    `json:"categories"`
	Groups        []GroupJSON         `json:"subcategories"`
	Cards         []CardJSON          `json:"webpages"`
	Orders        map[string][]string `json:"orders"` // group ID -> ordered card IDs
}

// OrganizationJSON mirrors an organization row.
type OrganizationJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Order     int    `json:"order"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// CollectionJSON mirrors a category row.
type CollectionJSON struct {
	ID                string  `json:"id"`
	OrganizationID    string  `json:"organizationId"`
	Name              string  `json:"name"`
	Color             string  `json:"color"`
	Order             float64 `json:"order"`
	DefaultTemplateID string  `json:"defaultTemplateId,omitempty"`
	IsDefault         bool    `json:"isDefault,omitempty"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

// GroupJSON mirrors a subcategory row.
type GroupJSON struct {
	ID           string `json:"id"`
	CollectionID string `json:"categoryId"`
	Name         string `json:"name"`
	Order        int    `json:"order"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// CardJSON mirrors a webpage row.
type CardJSON struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	URL          string            `json:"url"`
	Favicon      string            `json:"favicon,omitempty"`
	Note         string            `json:"note,omitempty"`
	CollectionID string            `json:"category"`
	GroupID      string            `json:"subcategoryId"`
	Meta         map[string]string `json:"meta,omitempty"`
	CreatedAt    string            `json:"createdAt"`
	UpdatedAt    string            `json:"updatedAt"`
}

// Encode marshals the document.
func Encode(doc *Document) ([]byte, error) {
	return json.Marshal(doc)
}

// Decode unmarshals and version-checks a document.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding backup document: %w", err)
	}
	if doc.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("unsupported backup schema version %d", doc.SchemaVersion)
	}
	if doc.Orders == nil {
		doc.Orders = make(map[string][]string)
	}
	return &doc, nil
}

// Checksum returns the hex SHA-256 of the document's content. ExportedAt is
// excluded so two exports of identical data hash identically. A nil Orders
// map hashes the same as an empty one, so a document checksums identically
// before encoding and after a decode roundtrip.
func Checksum(doc *Document) (string, error) {
	clone := *doc
	clone.ExportedAt = ""
	if clone.Orders == nil {
		clone.Orders = map[string][]string{}
	}
	data, err := json.Marshal(&clone)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
