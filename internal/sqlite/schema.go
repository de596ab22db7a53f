// Package sqlite implements the SQLite storage backend for LinkTrove.
package sqlite

// Schema DDL for all tables. Timestamps are RFC3339 strings; tombstone
// columns exist only on entities that soft-delete (organizations, categories,
// webpages). Subcategories hard-delete and carry no tombstone.
const (
	createOrganizations = `CREATE TABLE organizations (
    organization_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    deleted INTEGER NOT NULL DEFAULT 0,
    deleted_at TEXT
);`

	createCategories = `CREATE TABLE categories (
    category_id TEXT PRIMARY KEY,
    organization_id TEXT NOT NULL,
    name TEXT NOT NULL,
    color TEXT NOT NULL DEFAULT '',
    ordinal REAL NOT NULL,
    default_template_id TEXT NOT NULL DEFAULT '',
    is_default INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    deleted INTEGER NOT NULL DEFAULT 0,
    deleted_at TEXT,
    FOREIGN KEY (organization_id) REFERENCES organizations(organization_id)
);`

	createSubcategories = `CREATE TABLE subcategories (
    subcategory_id TEXT PRIMARY KEY,
    category_id TEXT NOT NULL,
    name TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (category_id) REFERENCES categories(category_id)
);`

	createWebpages = `CREATE TABLE webpages (
    webpage_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    url TEXT NOT NULL,
    favicon TEXT NOT NULL DEFAULT '',
    note TEXT NOT NULL DEFAULT '',
    category_id TEXT NOT NULL,
    subcategory_id TEXT NOT NULL,
    meta TEXT NOT NULL DEFAULT '{}',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    deleted INTEGER NOT NULL DEFAULT 0,
    deleted_at TEXT,
    FOREIGN KEY (category_id) REFERENCES categories(category_id)
);`

	createMeta = `CREATE TABLE meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxCategoriesOrganization = `CREATE INDEX idx_categories_organization ON categories(organization_id);`
	idxSubcategoriesCategory  = `CREATE INDEX idx_subcategories_category ON subcategories(category_id);`
	idxWebpagesCategory       = `CREATE INDEX idx_webpages_category ON webpages(category_id);`
	idxWebpagesSubcategory    = `CREATE INDEX idx_webpages_subcategory ON webpages(subcategory_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createOrganizations,
	createCategories,
	createSubcategories,
	createWebpages,
	createMeta,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxCategoriesOrganization,
	idxSubcategoriesCategory,
	idxWebpagesCategory,
	idxWebpagesSubcategory,
}
