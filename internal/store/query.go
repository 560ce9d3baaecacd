package store

var migrations = []string{
	`
		CREATE TABLE IF NOT EXISTS sheet_results (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			sheet_version TEXT NOT NULL DEFAULT '',
			total_questions INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			not_attempted INTEGER NOT NULL,
			multiple_marked INTEGER NOT NULL,
			percentage DOUBLE PRECISION NOT NULL,
			details JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)
	`,
	`
		CREATE TABLE IF NOT EXISTS answer_keys (
			name TEXT PRIMARY KEY,
			answers JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`,
	`
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`,
}

const (
	querySaveResult = `
		INSERT INTO sheet_results (
			id,
			filename,
			sheet_version,
			total_questions,
			correct,
			incorrect,
			not_attempted,
			multiple_marked,
			percentage,
			details,
			created_at
		) VALUES (
			:id,
			:filename,
			:sheet_version,
			:total_questions,
			:correct,
			:incorrect,
			:not_attempted,
			:multiple_marked,
			:percentage,
			:details,
			:created_at
		)
	`

	queryGetResult = `
		SELECT
			id,
			filename,
			sheet_version,
			total_questions,
			correct,
			incorrect,
			not_attempted,
			multiple_marked,
			percentage,
			details,
			created_at
		FROM sheet_results
		WHERE id = :id
	`

	queryListResults = `
		SELECT
			id,
			filename,
			sheet_version,
			total_questions,
			correct,
			incorrect,
			not_attempted,
			multiple_marked,
			percentage,
			details,
			created_at
		FROM sheet_results
		ORDER BY created_at DESC
		LIMIT :limit OFFSET :offset
	`

	queryCountResults = `
		SELECT COUNT(*)
		FROM sheet_results
	`

	queryClearResults = `
		DELETE FROM sheet_results
	`

	queryStats = `
		SELECT
			COUNT(*) AS sheets,
			COALESCE(AVG(percentage), 0) AS average,
			COALESCE(MIN(percentage), 0) AS lowest,
			COALESCE(MAX(percentage), 0) AS highest,
			MIN(created_at) AS first_result,
			MAX(created_at) AS last_result
		FROM sheet_results
	`

	queryCountAnswerKeys = `
		SELECT COUNT(*)
		FROM answer_keys
	`

	querySaveAnswerKey = `
		INSERT INTO answer_keys (
			name,
			answers,
			created_at,
			updated_at
		) VALUES (
			:name,
			:answers,
			:created_at,
			:updated_at
		)
		ON CONFLICT (name) DO UPDATE SET
			answers = EXCLUDED.answers,
			updated_at = EXCLUDED.updated_at
	`

	queryGetAnswerKey = `
		SELECT
			name,
			answers,
			created_at,
			updated_at
		FROM answer_keys
		WHERE name = :name
	`

	querySaveSetting = `
		INSERT INTO settings (
			key,
			value,
			updated_at
		) VALUES (
			:key,
			:value,
			:updated_at
		)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`

	queryGetSetting = `
		SELECT
			key,
			value,
			updated_at
		FROM settings
		WHERE key = :key
	`
)
