package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/mayankjhn/omr-systemm/internal/sheet"
)

type answerKeyDB struct {
	Name      sql.NullString `db:"name"`
	Answers   []byte         `db:"answers"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type settingDB struct {
	Key       sql.NullString `db:"key"`
	Value     sql.NullString `db:"value"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// SaveAnswerKey stores a named answer key, replacing any existing key of
// the same name.
func (s *Store) SaveAnswerKey(ctx context.Context, name string, key sheet.AnswerKey) error {
	if len(key) == 0 {
		return fmt.Errorf("answer key %q is empty", name)
	}

	answers, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("failed to encode answer key: %w", err)
	}

	now := time.Now().UTC()
	argsKV := map[string]interface{}{
		"name":       name,
		"answers":    answers,
		"created_at": now,
		"updated_at": now,
	}

	query, args, err := sqlx.Named(querySaveAnswerKey, argsKV)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("SaveAnswerKey named query preparation err")
		return err
	}
	query = s.q.Rebind(query)

	if _, err := s.q.ExecContext(ctx, query, args...); err != nil {
		s.log.WithFields(logrus.Fields{
			"name":  name,
			"error": err.Error(),
		}).Error("SaveAnswerKey execution err")
		return err
	}

	return nil
}

// GetAnswerKey loads a named answer key.
func (s *Store) GetAnswerKey(ctx context.Context, name string) (sheet.AnswerKey, error) {
	var row answerKeyDB

	query, args, err := sqlx.Named(queryGetAnswerKey, map[string]interface{}{"name": name})
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("GetAnswerKey named query preparation err")
		return nil, err
	}
	query = s.q.Rebind(query)

	if err := s.q.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.log.WithFields(logrus.Fields{
			"name":  name,
			"error": err.Error(),
		}).Error("GetAnswerKey execution err")
		return nil, err
	}

	var key sheet.AnswerKey
	if err := json.Unmarshal(row.Answers, &key); err != nil {
		return nil, fmt.Errorf("failed to decode answer key: %w", err)
	}
	return key, nil
}

// SaveSetting stores one key/value setting, replacing any existing value.
func (s *Store) SaveSetting(ctx context.Context, key, value string) error {
	argsKV := map[string]interface{}{
		"key":        key,
		"value":      value,
		"updated_at": time.Now().UTC(),
	}

	query, args, err := sqlx.Named(querySaveSetting, argsKV)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("SaveSetting named query preparation err")
		return err
	}
	query = s.q.Rebind(query)

	if _, err := s.q.ExecContext(ctx, query, args...); err != nil {
		s.log.WithFields(logrus.Fields{
			"key":   key,
			"error": err.Error(),
		}).Error("SaveSetting execution err")
		return err
	}

	return nil
}

// GetSetting loads one setting value.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var row settingDB

	query, args, err := sqlx.Named(queryGetSetting, map[string]interface{}{"key": key})
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("GetSetting named query preparation err")
		return "", err
	}
	query = s.q.Rebind(query)

	if err := s.q.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		s.log.WithFields(logrus.Fields{
			"key":   key,
			"error": err.Error(),
		}).Error("GetSetting execution err")
		return "", err
	}

	return row.Value.String, nil
}
