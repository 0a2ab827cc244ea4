package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/connectapp/connect-server/internal/domain"
	"github.com/connectapp/connect-server/internal/store"
)

// profileColumns is the ordered list of columns selected in profile queries.
// Must match the scan order in scanProfile.
const profileColumns = `user_id, year_of_study, course, fields_of_interest, updated_at`

// scanProfile scans a sql.Row (or sql.Rows via its Scan method) into a domain.Profile.
func scanProfile(scanner interface{ Scan(dest ...any) error }) (*domain.Profile, error) {
	var (
		p           domain.Profile
		yearOfStudy sql.NullString
		course      sql.NullString
		interests   sql.NullString
		updatedAt   string
	)

	err := scanner.Scan(
		&p.UserID,
		&yearOfStudy,
		&course,
		&interests,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.YearOfStudy = yearOfStudy.String
	p.Course = course.String

	p.FieldsOfInterest, err = decodeTags(interests)
	if err != nil {
		return nil, err
	}

	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// GetProfile retrieves a profile by user ID.
// Returns store.ErrNotFound if the user has no profile.
func (s *Store) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SaveProfile creates or fully replaces a profile.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) SaveProfile(ctx context.Context, profile *domain.Profile) error {
	return upsertProfile(ctx, s.db, profile)
}

func upsertProfile(ctx context.Context, db execer, profile *domain.Profile) error {
	interests, err := encodeTags(profile.FieldsOfInterest)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, year_of_study, course, fields_of_interest, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			year_of_study = excluded.year_of_study,
			course = excluded.course,
			fields_of_interest = excluded.fields_of_interest,
			updated_at = excluded.updated_at`,
		profile.UserID,
		nullString(profile.YearOfStudy),
		nullString(profile.Course),
		interests,
		formatTime(profile.UpdatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrNotFound.WithCause(err)
		}
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
