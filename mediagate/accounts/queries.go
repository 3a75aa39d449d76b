package accounts

const (
	queryInsertAuthUser = `
		INSERT INTO auth_users (email, password_hash, provider, provider_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	queryInsertProfile = `
		INSERT INTO profiles (id, email, username, avatar_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, username, avatar_url, is_admin, created_at, updated_at
	`

	// replaces the on_profile_created trigger of hosted setups
	queryInsertFreeMembership = `
		INSERT INTO memberships (user_id, tier)
		VALUES ($1, 'free')
	`

	queryFindCredentials = `
		SELECT a.id, a.email, a.password_hash,
		       COALESCE(p.username, ''), p.avatar_url, COALESCE(p.is_admin, false),
		       COALESCE(p.created_at, a.created_at), COALESCE(p.updated_at, a.created_at)
		FROM auth_users a
		LEFT JOIN profiles p ON p.id = a.id
		WHERE LOWER(a.email) = $1 AND a.provider = 'email'
	`

	queryFindByProvider = `
		SELECT p.id, p.email, p.username, p.avatar_url, p.is_admin, p.created_at, p.updated_at
		FROM auth_users a
		JOIN profiles p ON p.id = a.id
		WHERE a.provider = $1 AND a.provider_id = $2
	`
)
