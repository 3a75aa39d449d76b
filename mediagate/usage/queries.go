package usage

const (
	queryInsert = `
		INSERT INTO usage_logs (user_id, feature_type, feature_name)
		VALUES ($1, $2, $3)
		RETURNING id, used_at
	`

	queryCount = `
		SELECT COUNT(*)
		FROM usage_logs
		WHERE user_id = $1 AND feature_type = $2
	`

	queryCountsByFeature = `
		SELECT feature_type, COUNT(*)
		FROM usage_logs
		WHERE user_id = $1
		GROUP BY feature_type
	`

	queryDailyCounts = `
		SELECT TO_CHAR(DATE(used_at), 'YYYY-MM-DD') AS date, COUNT(*) AS count
		FROM usage_logs
		WHERE user_id = $1
		AND used_at >= CURRENT_DATE - make_interval(days => $2)
		GROUP BY DATE(used_at)
		ORDER BY DATE(used_at) DESC
	`

	queryListEntries = `
		SELECT id, user_id, feature_type, feature_name, used_at
		FROM usage_logs
		WHERE user_id = $1
		ORDER BY used_at DESC
		LIMIT $2 OFFSET $3
	`

	queryCountEntries = `
		SELECT COUNT(*)
		FROM usage_logs
		WHERE user_id = $1
	`
)
