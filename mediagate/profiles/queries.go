package profiles

const (
	queryFindProfile = `
		SELECT id, email, username, avatar_url, is_admin, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	// newest active, unexpired row wins when more than one is active
	queryFindActiveMembership = `
		SELECT id, user_id, tier, started_at, expires_at, is_active, created_at
		FROM memberships
		WHERE user_id = $1 AND is_active = true
			AND (expires_at IS NULL OR expires_at > NOW())
		ORDER BY created_at DESC
		LIMIT 1
	`

	queryUpdateProfile = `
		UPDATE profiles
		SET username = $1, avatar_url = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING id, email, username, avatar_url, is_admin, created_at, updated_at
	`

	queryDeactivateMemberships = `
		UPDATE memberships
		SET is_active = false
		WHERE user_id = $1 AND is_active = true
	`

	queryInsertMembership = `
		INSERT INTO memberships (user_id, tier, started_at, expires_at, is_active)
		VALUES ($1, $2, NOW(), $3, true)
		RETURNING id, user_id, tier, started_at, expires_at, is_active, created_at
	`
)
