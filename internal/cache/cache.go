// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package cache implements the schema-versioned, persistent cross-unit
// store of resolved reference targets. Grounded on termfx-morfx's db package (same
// gorm+sqlite connect/migrate shape) generalized from that project's
// session/stage rows to two tables: units and references.
package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nml-lang/nmlc/internal/refs"
)

// SchemaVersion identifies the current on-disk row layout. Bumping it adds
// a migration step in Open; migrations are forward-only.
const SchemaVersion = 1

// NormalizeUnitPath fixes cross-unit path normalization. Every unit's
// input path is run through this before it is
// ever used as a cache or resolver key, so "a.nml", "./a.nml" and an
// absolute path to the same file all collide on the same cache row. Uses
// an absolute, cleaned form; case is preserved, since NML projects are not
// expected to run on case-insensitive filesystems for their sources (a
// host that is would need to additionally lower-case here).
func NormalizeUnitPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("normalizing unit path %q: %w", path, err)
	}

	return filepath.Clean(abs), nil
}

// UnitRow is the `units` table: one row per translation unit,
// keyed by its input file path.
type UnitRow struct {
	InputFile    string `gorm:"primaryKey;column:input_file"`
	ReferenceKey string `gorm:"column:reference_key"`
	OutputFile   string `gorm:"column:output_file"`
}

// TableName pins the table name so renaming the Go type never migrates the
// schema.
func (UnitRow) TableName() string { return "units" }

// ReferenceRow is the `references` table: one row per resolved
// reference, keyed by (source_unit, refname).
type ReferenceRow struct {
	SourceUnit string `gorm:"primaryKey;column:source_unit"`
	Refname    string `gorm:"primaryKey;column:refname"`
	Refkey     string `gorm:"column:refkey"`
	Link       string `gorm:"column:link"`
	TokenStart int    `gorm:"column:token_start"`
	TokenEnd   int    `gorm:"column:token_end"`
}

// TableName pins the table name.
func (ReferenceRow) TableName() string { return "references" }

// schemaRow records the schema version stamped into a fresh cache file, so
// a future incompatible release can detect and migrate an older file
// rather than silently misreading it.
type schemaRow struct {
	ID      uint `gorm:"primaryKey"`
	Version int
}

func (schemaRow) TableName() string { return "schema_info" }

// Cache is the persistent cross-unit store. All methods are
// safe for concurrent use by multiple units; gorm's *DB already serializes
// access to the underlying *sql.DB connection pool, matching a single-writer-
// per-unit, many-readers model.
type Cache struct {
	db *gorm.DB
}

// Open connects to (creating if absent) the sqlite-backed cache file at
// path, running forward-only schema migrations.
func Open(path string, debug bool) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	config := &gorm.Config{}
	if debug {
		config.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(path), config)
	if err != nil {
		return nil, fmt.Errorf("opening cache %q: %w", path, err)
	}

	c := &Cache{db}
	if err := c.migrate(); err != nil {
		return nil, fmt.Errorf("migrating cache %q: %w", path, err)
	}

	return c, nil
}

// migrate brings an existing (or fresh) cache file's schema up to
// SchemaVersion. Forward-only: a cache file stamped with a version newer
// than this binary understands is rejected rather than rolled back.
func (c *Cache) migrate() error {
	if err := c.db.AutoMigrate(&schemaRow{}, &UnitRow{}, &ReferenceRow{}); err != nil {
		return err
	}

	var row schemaRow
	if err := c.db.FirstOrCreate(&row, schemaRow{ID: 1, Version: SchemaVersion}).Error; err != nil {
		return err
	}

	if row.Version > SchemaVersion {
		return fmt.Errorf("cache schema version %d is newer than this binary supports (%d)", row.Version, SchemaVersion)
	}
	// No migration steps defined yet between version 1 and itself; future
	// versions add `case` branches here, each moving row.Version forward by
	// exactly one step before re-saving.

	return nil
}

// Close releases the underlying database connection.
func (c *Cache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// UpsertUnit atomically replaces unitPath's cached references with rows,
// and upserts its metadata row: delete,
// insert, upsert metadata, all within one transaction so a concurrent
// reader sees either the old state in full or the new state in full.
func (c *Cache) UpsertUnit(unitPath, referenceKey, outputFile string, rows []ReferenceRow) error {
	return c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("source_unit = ?", unitPath).Delete(&ReferenceRow{}).Error; err != nil {
			return err
		}

		for i := range rows {
			rows[i].SourceUnit = unitPath
		}

		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		unit := UnitRow{InputFile: unitPath, ReferenceKey: referenceKey, OutputFile: outputFile}

		return tx.Save(&unit).Error
	})
}

// LookupReference implements resolve.CacheReader: finds a cached reference
// row for unitPath/refname and converts it back into a live refs.Reference.
func (c *Cache) LookupReference(unitPath string, refname refs.Refname) (refs.Reference, bool) {
	var row ReferenceRow

	err := c.db.Where("source_unit = ? AND refname = ?", unitPath, refname.String()).First(&row).Error
	if err != nil {
		return refs.Reference{}, false
	}

	return rowToReference(row), true
}

// LookupBibliography implements resolve.CacheReader. Bibliography entries
// are stored in the same references table, keyed by a Bibliography-kind
// refname, so this is LookupReference with that refname shape.
func (c *Cache) LookupBibliography(unitPath, id string) (refs.Reference, bool) {
	return c.LookupReference(unitPath, refs.Bibliography(unitPath, id))
}

// UnitMeta returns the stored metadata row for unitPath, if any.
func (c *Cache) UnitMeta(unitPath string) (UnitRow, bool) {
	var row UnitRow

	err := c.db.Where("input_file = ?", unitPath).First(&row).Error
	if err != nil {
		return UnitRow{}, false
	}

	return row, true
}

func rowToReference(row ReferenceRow) refs.Reference {
	refname, err := refs.ParseRefname(row.Refname)
	if err != nil {
		// A row written by this same package always round-trips; a parse
		// failure here means the file was hand-edited or corrupted.
		refname = refs.Internal(row.Refname)
	}

	return refs.Reference{
		Refname:    refname,
		Refkey:     row.Refkey,
		SourceUnit: row.SourceUnit,
		Link:       row.Link,
		Token:      refs.Token{Start: row.TokenStart, End: row.TokenEnd},
	}
}

// ReferenceRowsFromIndex converts references (as returned by
// resolve.Index.References) into cache rows, ready for UpsertUnit. Declared here (rather than in package
// resolve) to avoid a dependency from resolve onto cache.
func ReferenceRowsFromIndex(references []refs.Reference) []ReferenceRow {
	rows := make([]ReferenceRow, len(references))
	for i, r := range references {
		rows[i] = ReferenceRow{
			Refname:    r.Refname.String(),
			Refkey:     r.Refkey,
			Link:       r.Link,
			TokenStart: r.Token.Start,
			TokenEnd:   r.Token.End,
		}
	}

	return rows
}
