package stores

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/openflows/platformdb/internal/models"
	"github.com/openflows/platformdb/internal/shared"
)

// IdentityStore reads user rows from the external identity (authorizer) store.
// It never writes: the identity store belongs to another system.
type IdentityStore struct {
	db *shared.Database
}

// NewIdentityStore creates an IdentityStore on the given connection.
func NewIdentityStore(db *shared.Database) *IdentityStore {
	return &IdentityStore{db: db}
}

// ListWithEmail returns all identities that have a non-null email, ordered by
// creation time ascending. This is the fetch order the correlation map is
// built in, so for duplicate normalized emails the newest identity wins.
func (s *IdentityStore) ListWithEmail(ctx context.Context) ([]models.ExternalIdentity, error) {
	query := `
		SELECT id, email, given_name, family_name, roles, email_verified_at, created_at
		FROM authorizer_users
		WHERE email IS NOT NULL
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query identities: %w", err)
	}
	defer rows.Close()

	var identities []models.ExternalIdentity
	for rows.Next() {
		var (
			ident      models.ExternalIdentity
			givenName  sql.NullString
			familyName sql.NullString
			roles      sql.NullString
			verifiedAt sql.NullTime
		)
		if err := rows.Scan(&ident.ID, &ident.Email, &givenName, &familyName, &roles, &verifiedAt, &ident.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		ident.GivenName = givenName.String
		ident.FamilyName = familyName.String
		ident.Roles = roles.String
		if verifiedAt.Valid {
			t := verifiedAt.Time
			ident.EmailVerifiedAt = &t
		}
		identities = append(identities, ident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate identities: %w", err)
	}

	return identities, nil
}

// Exists reports whether an identity with the given id is present. Used by
// the post-run validation pass.
func (s *IdentityStore) Exists(ctx context.Context, id string) (bool, error) {
	query := s.db.Rebind("SELECT COUNT(*) FROM authorizer_users WHERE id = ?")

	var count int
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check identity %s: %w", id, err)
	}
	return count > 0, nil
}

// Count returns the total number of identity rows.
func (s *IdentityStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM authorizer_users").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count identities: %w", err)
	}
	return count, nil
}
