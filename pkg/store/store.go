// Package store persists collections and entries through a DatabaseInterface.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"headless-cms-backend/pkg/database"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func now(db database.DatabaseInterface) interface{} {
	return db.Dialect().TimeValue(time.Now().UTC())
}

func parseTimes(created, updated string) (time.Time, time.Time, error) {
	c, err := database.ParseTime(created)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	u, err := database.ParseTime(updated)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return c, u, nil
}

func marshalJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode json: %w", err)
	}
	return string(b), nil
}

// isNullJSON reports a missing or literal-null raw JSON value.
func isNullJSON(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
