package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/mayankjhn/omr-systemm/internal/sheet"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SheetResult is one persisted score report.
type SheetResult struct {
	ID           string        `json:"id"`
	Filename     string        `json:"filename"`
	SheetVersion string        `json:"sheet_version"`
	Report       *sheet.Report `json:"report"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Stats summarizes every persisted result.
type Stats struct {
	Sheets  int     `json:"sheets"`
	Keys    int     `json:"keys"`
	Average float64 `json:"average"`
	Lowest  float64 `json:"lowest"`
	Highest float64 `json:"highest"`

	// FirstResult and LastResult bound the stored results in time. Zero
	// when no results exist.
	FirstResult time.Time `json:"first_result"`
	LastResult  time.Time `json:"last_result"`
}

type statsDB struct {
	Sheets      int          `db:"sheets"`
	Average     float64      `db:"average"`
	Lowest      float64      `db:"lowest"`
	Highest     float64      `db:"highest"`
	FirstResult sql.NullTime `db:"first_result"`
	LastResult  sql.NullTime `db:"last_result"`
}

type sheetResultDB struct {
	ID             sql.NullString `db:"id"`
	Filename       sql.NullString `db:"filename"`
	SheetVersion   sql.NullString `db:"sheet_version"`
	TotalQuestions int            `db:"total_questions"`
	Correct        int            `db:"correct"`
	Incorrect      int            `db:"incorrect"`
	NotAttempted   int            `db:"not_attempted"`
	MultipleMarked int            `db:"multiple_marked"`
	Percentage     float64        `db:"percentage"`
	Details        []byte         `db:"details"`
	CreatedAt      time.Time      `db:"created_at"`
}

// SaveResult persists a score report and returns the generated record ID.
// sheetVersion labels the exam variant the sheet was scored against; empty
// is fine when versions are not in use.
func (s *Store) SaveResult(ctx context.Context, filename, sheetVersion string, report *sheet.Report) (string, error) {
	if report == nil {
		return "", fmt.Errorf("nil report for %s", filename)
	}

	details, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to encode report details: %w", err)
	}

	id := uuid.New().String()
	argsKV := map[string]interface{}{
		"id":              id,
		"filename":        filename,
		"sheet_version":   sheetVersion,
		"total_questions": report.TotalQuestions,
		"correct":         report.Correct,
		"incorrect":       report.Incorrect,
		"not_attempted":   report.NotAttempted,
		"multiple_marked": report.MultipleMarked,
		"percentage":      report.Percentage,
		"details":         details,
		"created_at":      time.Now().UTC(),
	}

	query, args, err := sqlx.Named(querySaveResult, argsKV)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("SaveResult named query preparation err")
		return "", err
	}
	query = s.q.Rebind(query)

	if _, err := s.q.ExecContext(ctx, query, args...); err != nil {
		s.log.WithFields(logrus.Fields{
			"filename": filename,
			"error":    err.Error(),
		}).Error("SaveResult execution err")
		return "", err
	}

	return id, nil
}

// GetResult loads one persisted result by ID.
func (s *Store) GetResult(ctx context.Context, id string) (SheetResult, error) {
	var row sheetResultDB

	query, args, err := sqlx.Named(queryGetResult, map[string]interface{}{"id": id})
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("GetResult named query preparation err")
		return SheetResult{}, err
	}
	query = s.q.Rebind(query)

	if err := s.q.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SheetResult{}, ErrNotFound
		}
		s.log.WithFields(logrus.Fields{
			"id":    id,
			"error": err.Error(),
		}).Error("GetResult execution err")
		return SheetResult{}, err
	}

	return makeSheetResult(row)
}

// ListResults returns a page of results ordered newest first, plus the
// total row count.
func (s *Store) ListResults(ctx context.Context, limit, offset int) ([]SheetResult, int, error) {
	var total int
	if err := s.q.QueryRowxContext(ctx, queryCountResults).Scan(&total); err != nil {
		s.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("CountResults execution err")
		return nil, 0, err
	}

	argsKV := map[string]interface{}{
		"limit":  limit,
		"offset": offset,
	}

	query, args, err := sqlx.Named(queryListResults, argsKV)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("ListResults named query preparation err")
		return nil, 0, err
	}
	query = s.q.Rebind(query)

	var rows []sheetResultDB
	if err := s.q.SelectContext(ctx, &rows, query, args...); err != nil {
		s.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("ListResults execution err")
		return nil, 0, err
	}

	results := make([]SheetResult, 0, len(rows))
	for _, row := range rows {
		result, err := makeSheetResult(row)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, result)
	}

	return results, total, nil
}

// ClearResults deletes every persisted result and reports how many rows
// were removed.
func (s *Store) ClearResults(ctx context.Context) (int64, error) {
	result, err := s.q.ExecContext(ctx, queryClearResults)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("ClearResults execution err")
		return 0, err
	}
	return result.RowsAffected()
}

// Stats aggregates score statistics over every persisted result, plus the
// stored answer key count.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var row statsDB
	if err := s.q.QueryRowxContext(ctx, queryStats).StructScan(&row); err != nil {
		s.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Stats execution err")
		return Stats{}, err
	}

	var keys int
	if err := s.q.QueryRowxContext(ctx, queryCountAnswerKeys).Scan(&keys); err != nil {
		s.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("CountAnswerKeys execution err")
		return Stats{}, err
	}

	stats := Stats{
		Sheets:  row.Sheets,
		Keys:    keys,
		Average: row.Average,
		Lowest:  row.Lowest,
		Highest: row.Highest,
	}
	if row.FirstResult.Valid {
		stats.FirstResult = row.FirstResult.Time
	}
	if row.LastResult.Valid {
		stats.LastResult = row.LastResult.Time
	}
	return stats, nil
}

func makeSheetResult(row sheetResultDB) (SheetResult, error) {
	var report sheet.Report
	if err := json.Unmarshal(row.Details, &report); err != nil {
		return SheetResult{}, fmt.Errorf("failed to decode report details: %w", err)
	}

	return SheetResult{
		ID:           row.ID.String,
		Filename:     row.Filename.String,
		SheetVersion: row.SheetVersion.String,
		Report:       &report,
		CreatedAt:    row.CreatedAt,
	}, nil
}
