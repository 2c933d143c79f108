package datastore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// BusinessProfile maps to the business_profiles table. Profile text fields
// arrive pre-sanitized from the upstream sanitizer; this layer only stores
// and retrieves them.
type BusinessProfile struct {
	ID             int       `json:"id"`
	UserID         int       `json:"user_id"`
	BusinessName   string    `json:"business_name"`
	BusinessType   string    `json:"business_type"`
	Description    string    `json:"description"`
	TargetAudience string    `json:"target_audience"`
	Services       string    `json:"services"`
	Location       string    `json:"location"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	Website        string    `json:"website"`
	Tone           string    `json:"tone"`
	Keywords       []string  `json:"keywords"` // stored order is meaningful
	USP            string    `json:"usp"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SaveBusinessProfile upserts the profile for a user and returns the row ID.
func SaveBusinessProfile(bp *BusinessProfile) (int, error) {
	if DB == nil {
		return 0, errors.New("database connection not initialized")
	}

	keywordsJSON, err := json.Marshal(bp.Keywords)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal keywords: %w", err)
	}

	query := `
		INSERT INTO business_profiles (user_id, business_name, business_type, description, target_audience, services, location, phone, email, website, tone, keywords, usp, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		ON CONFLICT (user_id) DO UPDATE
		SET business_name = EXCLUDED.business_name,
		    business_type = EXCLUDED.business_type,
		    description = EXCLUDED.description,
		    target_audience = EXCLUDED.target_audience,
		    services = EXCLUDED.services,
		    location = EXCLUDED.location,
		    phone = EXCLUDED.phone,
		    email = EXCLUDED.email,
		    website = EXCLUDED.website,
		    tone = EXCLUDED.tone,
		    keywords = EXCLUDED.keywords,
		    usp = EXCLUDED.usp,
		    updated_at = EXCLUDED.updated_at
		RETURNING id
	`
	now := time.Now()

	var id int
	err = DB.QueryRow(
		query,
		bp.UserID,
		bp.BusinessName,
		bp.BusinessType,
		bp.Description,
		bp.TargetAudience,
		bp.Services,
		bp.Location,
		bp.Phone,
		bp.Email,
		bp.Website,
		bp.Tone,
		keywordsJSON,
		bp.USP,
		now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save business profile: %w", err)
	}

	bp.ID = id
	bp.UpdatedAt = now
	return id, nil
}

// GetBusinessProfile retrieves the profile for a user. A missing profile is
// not an error: callers get (nil, nil) and generate content without a
// business-context block.
func GetBusinessProfile(userID int) (*BusinessProfile, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}

	query := `
		SELECT id, user_id, business_name, business_type, description, target_audience, services, location, phone, email, website, tone, keywords, usp, created_at, updated_at
		FROM business_profiles
		WHERE user_id = $1
	`
	bp := &BusinessProfile{}
	var keywordsJSON []byte

	err := DB.QueryRow(query, userID).Scan(
		&bp.ID,
		&bp.UserID,
		&bp.BusinessName,
		&bp.BusinessType,
		&bp.Description,
		&bp.TargetAudience,
		&bp.Services,
		&bp.Location,
		&bp.Phone,
		&bp.Email,
		&bp.Website,
		&bp.Tone,
		&keywordsJSON,
		&bp.USP,
		&bp.CreatedAt,
		&bp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get business profile: %w", err)
	}

	if len(keywordsJSON) > 0 {
		if err := json.Unmarshal(keywordsJSON, &bp.Keywords); err != nil {
			return nil, fmt.Errorf("failed to unmarshal profile keywords: %w", err)
		}
	}
	return bp, nil
}
