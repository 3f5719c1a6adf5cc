package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"headless-cms-backend/pkg/database"
	"headless-cms-backend/pkg/errs"
	"headless-cms-backend/pkg/models"
	"headless-cms-backend/pkg/schema"
	"headless-cms-backend/pkg/utils"
)

const collectionColumns = "id, name, slug, description, fields, created_at, updated_at"

// CollectionStore 集合存储
type CollectionStore struct {
	db database.DatabaseInterface
}

func NewCollectionStore(db database.DatabaseInterface) *CollectionStore {
	return &CollectionStore{db: db}
}

// List returns every collection with its entry count, newest first.
func (s *CollectionStore) List(ctx context.Context) ([]models.Collection, error) {
	rows, err := s.db.QueryRows(ctx, `
		SELECT c.id, c.name, c.slug, c.description, c.fields, c.created_at, c.updated_at, COUNT(e.id)
		FROM collections c
		LEFT JOIN entries e ON e.collection_id = c.id
		GROUP BY c.id, c.name, c.slug, c.description, c.fields, c.created_at, c.updated_at
		ORDER BY c.created_at DESC, c.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	list := []models.Collection{}
	for rows.Next() {
		var count int
		c, err := scanCollection(rows, &count)
		if err != nil {
			return nil, err
		}
		c.EntryCount = &count
		list = append(list, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return list, nil
}

// GetBySlug 根据slug获取集合
func (s *CollectionStore) GetBySlug(ctx context.Context, slug string) (*models.Collection, error) {
	row := s.db.QueryRow(ctx, "SELECT "+collectionColumns+" FROM collections WHERE slug = ?", slug)
	c, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("Collection %q not found", slug)
	}
	return c, err
}

// GetByID 根据ID获取集合
func (s *CollectionStore) GetByID(ctx context.Context, id int64) (*models.Collection, error) {
	row := s.db.QueryRow(ctx, "SELECT "+collectionColumns+" FROM collections WHERE id = ?", id)
	c, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("Collection %d not found", id)
	}
	return c, err
}

// Create 创建集合
func (s *CollectionStore) Create(ctx context.Context, in models.CreateCollectionInput) (*models.Collection, error) {
	name := strings.TrimSpace(in.Name)
	slug, err := slugFor(name)
	if err != nil {
		return nil, err
	}

	fields := []models.FieldDefinition{}
	if !isNullJSON(in.Fields) {
		if fields, err = schema.DecodeFieldDefinitions(in.Fields); err != nil {
			return nil, err
		}
	}

	if err := s.ensureAvailable(ctx, name, slug, 0); err != nil {
		return nil, err
	}

	fieldsJSON, err := marshalJSON(fields)
	if err != nil {
		return nil, err
	}

	ts := now(s.db)
	id, err := s.db.Insert(ctx, `
		INSERT INTO collections (name, slug, description, fields, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		name, slug, in.Description, fieldsJSON, ts, ts)
	if err != nil {
		return nil, conflictOr(err, slug)
	}
	return s.GetByID(ctx, id)
}

// Update applies a partial update to the collection identified by slug.
func (s *CollectionStore) Update(ctx context.Context, slug string, patch models.CollectionPatch) (*models.Collection, error) {
	existing, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	name, newSlug := existing.Name, existing.Slug
	if patch.Name.Set {
		candidate := strings.TrimSpace(patch.Name.Value)
		if candidate != existing.Name {
			if newSlug, err = slugFor(candidate); err != nil {
				return nil, err
			}
			if err := s.ensureAvailable(ctx, candidate, newSlug, existing.ID); err != nil {
				return nil, err
			}
			name = candidate
		}
	}

	description := existing.Description
	if patch.Description.Set {
		description = patch.Description.Value
	}

	fields := existing.Fields
	if patch.Fields.Set {
		raw := patch.Fields.Value
		if patch.Fields.Null {
			raw = json.RawMessage("null")
		}
		if fields, err = schema.DecodeFieldDefinitions(raw); err != nil {
			return nil, err
		}
	}

	fieldsJSON, err := marshalJSON(fields)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.Exec(ctx, `
		UPDATE collections SET name = ?, slug = ?, description = ?, fields = ?, updated_at = ?
		WHERE id = ?`,
		name, newSlug, description, fieldsJSON, now(s.db), existing.ID); err != nil {
		return nil, conflictOr(err, newSlug)
	}
	return s.GetByID(ctx, existing.ID)
}

// Delete 删除集合，条目随外键级联删除
func (s *CollectionStore) Delete(ctx context.Context, slug string) error {
	n, err := s.db.Exec(ctx, "DELETE FROM collections WHERE slug = ?", slug)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	if n == 0 {
		return errs.NotFound("Collection %q not found", slug)
	}
	return nil
}

// ensureAvailable rejects a name or slug already used by another collection.
// The storage unique constraints still catch races between the check and the write.
func (s *CollectionStore) ensureAvailable(ctx context.Context, name, slug string, exceptID int64) error {
	n, err := s.db.Count(ctx,
		"SELECT COUNT(*) FROM collections WHERE (slug = ? OR name = ?) AND id <> ?",
		slug, name, exceptID)
	if err != nil {
		return err
	}
	if n > 0 {
		return errs.Conflict("Collection with slug %q already exists", slug)
	}
	return nil
}

func slugFor(name string) (string, error) {
	if name == "" {
		return "", errs.Validation("Name is required", errs.FieldError{Field: "name", Message: "Name is required"})
	}
	slug := utils.Slugify(name)
	if slug == "" {
		return "", errs.Validation("Invalid collection name",
			errs.FieldError{Field: "name", Message: "Name must contain at least one letter or digit"})
	}
	return slug, nil
}

func conflictOr(err error, slug string) error {
	if errors.Is(err, database.ErrUniqueViolation) {
		return errs.Conflict("Collection with slug %q already exists", slug)
	}
	return fmt.Errorf("failed to save collection: %w", err)
}

func scanCollection(sc scanner, extra ...interface{}) (*models.Collection, error) {
	var (
		c                models.Collection
		fields           []byte
		created, updated string
	)
	dest := append([]interface{}{&c.ID, &c.Name, &c.Slug, &c.Description, &fields, &created, &updated}, extra...)
	if err := sc.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan collection: %w", err)
	}

	c.Fields = []models.FieldDefinition{}
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &c.Fields); err != nil {
			return nil, fmt.Errorf("collection %d has corrupt fields: %w", c.ID, err)
		}
	}

	var err error
	if c.CreatedAt, c.UpdatedAt, err = parseTimes(created, updated); err != nil {
		return nil, fmt.Errorf("collection %d: %w", c.ID, err)
	}
	return &c, nil
}
