package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"headless-cms-backend/pkg/database"
	"headless-cms-backend/pkg/errs"
	"headless-cms-backend/pkg/models"
	"headless-cms-backend/pkg/query"
	"headless-cms-backend/pkg/schema"
)

const entryColumns = "id, collection_id, data, status, created_at, updated_at"

// EntryStore 条目存储
type EntryStore struct {
	db database.DatabaseInterface
}

func NewEntryStore(db database.DatabaseInterface) *EntryStore {
	return &EntryStore{db: db}
}

// List returns one page of the collection's entries. The count and page
// queries share the same predicates and bound values.
func (s *EntryStore) List(ctx context.Context, c *models.Collection, values url.Values) (*models.EntryList, error) {
	q, err := query.Build(s.db.Dialect(), query.FromValues(values))
	if err != nil {
		return nil, err
	}

	where := "collection_id = ?"
	args := []interface{}{c.ID}
	if q.Where != "" {
		where += " AND " + q.Where
		args = append(args, q.Params...)
	}

	total, err := s.db.Count(ctx, "SELECT COUNT(*) FROM entries WHERE "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}

	pageArgs := make([]interface{}, 0, len(args)+2)
	pageArgs = append(pageArgs, args...)
	pageArgs = append(pageArgs, q.Limit, q.Offset)

	rows, err := s.db.QueryRows(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE "+where+" ORDER BY "+q.Order+" LIMIT ? OFFSET ?",
		pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	return &models.EntryList{
		Data: entries,
		Pagination: models.Pagination{
			Page:       q.CurrentPage,
			PerPage:    q.Limit,
			Total:      total,
			TotalPages: query.TotalPages(total, q.Limit),
		},
	}, nil
}

// Get 获取条目，条目必须属于该集合
func (s *EntryStore) Get(ctx context.Context, c *models.Collection, id int64) (*models.Entry, error) {
	row := s.db.QueryRow(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE id = ? AND collection_id = ?", id, c.ID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("Entry %d not found", id)
	}
	return e, err
}

// Create validates the data against the collection's fields and stores it.
func (s *EntryStore) Create(ctx context.Context, c *models.Collection, in models.CreateEntryInput) (*models.Entry, error) {
	cleaned, err := s.clean(c, in.Data, true)
	if err != nil {
		return nil, err
	}
	data, err := marshalJSON(cleaned)
	if err != nil {
		return nil, err
	}

	ts := now(s.db)
	id, err := s.db.Insert(ctx, `
		INSERT INTO entries (collection_id, data, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`,
		c.ID, data, string(models.NormalizeStatus(in.Status)), ts, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}
	return s.Get(ctx, c, id)
}

// Update 部分更新：只覆盖请求中出现的 data / status
func (s *EntryStore) Update(ctx context.Context, c *models.Collection, id int64, patch models.EntryPatch) (*models.Entry, error) {
	existing, err := s.Get(ctx, c, id)
	if err != nil {
		return nil, err
	}

	data := existing.Data
	if patch.Data.Set {
		raw := patch.Data.Value
		if patch.Data.Null {
			raw = json.RawMessage("null")
		}
		if data, err = s.clean(c, raw, false); err != nil {
			return nil, err
		}
	}

	status := existing.Status
	if patch.Status.Set {
		status = models.NormalizeStatus(patch.Status.Value)
	}

	encoded, err := marshalJSON(data)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Exec(ctx, `
		UPDATE entries SET data = ?, status = ?, updated_at = ?
		WHERE id = ? AND collection_id = ?`,
		encoded, string(status), now(s.db), id, c.ID); err != nil {
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}
	return s.Get(ctx, c, id)
}

// Delete 删除条目
func (s *EntryStore) Delete(ctx context.Context, c *models.Collection, id int64) error {
	n, err := s.db.Exec(ctx, "DELETE FROM entries WHERE id = ? AND collection_id = ?", id, c.ID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if n == 0 {
		return errs.NotFound("Entry %d not found", id)
	}
	return nil
}

// clean decodes raw entry data and runs it through the collection's fields.
// A missing body on create validates as an empty object.
func (s *EntryStore) clean(c *models.Collection, raw json.RawMessage, allowMissing bool) (map[string]interface{}, error) {
	data := map[string]interface{}{}
	if isNullJSON(raw) {
		if !allowMissing {
			return nil, errs.Validation("Data must be an object", errs.FieldError{Field: "data", Message: "Data must be an object"})
		}
	} else if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errs.Validation("Data must be an object", errs.FieldError{Field: "data", Message: "Data must be an object"})
	}
	return schema.ValidateEntryData(c.Fields, data)
}

func scanEntry(sc scanner) (*models.Entry, error) {
	var (
		e                models.Entry
		data             []byte
		status           string
		created, updated string
	)
	if err := sc.Scan(&e.ID, &e.CollectionID, &data, &status, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan entry: %w", err)
	}
	e.Status = models.EntryStatus(status)

	e.Data = map[string]interface{}{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &e.Data); err != nil {
			return nil, fmt.Errorf("entry %d has corrupt data: %w", e.ID, err)
		}
	}

	var err error
	if e.CreatedAt, e.UpdatedAt, err = parseTimes(created, updated); err != nil {
		return nil, fmt.Errorf("entry %d: %w", e.ID, err)
	}
	return &e, nil
}
