// Package session joins a household by display name and code and keeps the
// resulting identity in browser cookies.
package session

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dukerupert/chorehub/internal/model"
)

// Session is the identity restored on every request.
type Session struct {
	IdentityID    string `json:"identityId"`
	DisplayName   string `json:"displayName"`
	HouseholdCode string `json:"householdCode"`
}

// Valid reports whether all three fields are present.
func (s Session) Valid() bool {
	return s.IdentityID != "" && s.DisplayName != "" && s.HouseholdCode != ""
}

// NormalizeCode trims and case-folds a household code.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Directory creates households and profiles remotely.
type Directory interface {
	FindHousehold(ctx context.Context, code string) (*model.Household, error)
	CreateHousehold(ctx context.Context, code string) (model.Household, error)
	CreateProfile(ctx context.Context, displayName, code string) (model.Profile, error)
}

type Joiner struct {
	dir    Directory
	logger *slog.Logger
}

func NewJoiner(dir Directory, logger *slog.Logger) *Joiner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Joiner{dir: dir, logger: logger.With("component", "session")}
}

// Join creates the household on first use of its code and always inserts a
// new profile. Remote failures are returned as *model.AuthError.
func (j *Joiner) Join(ctx context.Context, displayName, code string) (Session, error) {
	displayName = strings.TrimSpace(displayName)
	code = NormalizeCode(code)
	if displayName == "" {
		return Session{}, model.Invalid("displayName", "display name is required")
	}
	if code == "" {
		return Session{}, model.Invalid("householdCode", "household code is required")
	}

	if err := j.ensureHousehold(ctx, code); err != nil {
		return Session{}, &model.AuthError{Err: err}
	}

	profile, err := j.dir.CreateProfile(ctx, displayName, code)
	if err != nil {
		return Session{}, &model.AuthError{Err: err}
	}

	j.logger.Info("joined household", "household", code, "profile", profile.ID)
	return Session{IdentityID: profile.ID, DisplayName: displayName, HouseholdCode: code}, nil
}

func (j *Joiner) ensureHousehold(ctx context.Context, code string) error {
	h, err := j.dir.FindHousehold(ctx, code)
	if err != nil {
		return err
	}
	if h != nil {
		return nil
	}
	if _, err := j.dir.CreateHousehold(ctx, code); err != nil {
		// Another first join may have created it in the meantime.
		h, findErr := j.dir.FindHousehold(ctx, code)
		if findErr == nil && h != nil {
			return nil
		}
		return err
	}
	j.logger.Info("created household", "household", code)
	return nil
}
