package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/edu-admin-api/internal/models"
	"github.com/noah-isme/edu-admin-api/internal/policy"
	"github.com/noah-isme/edu-admin-api/internal/repository"
)

const actorCacheKeyPrefix = "eduadmin:actor:"

// AuthService resolves credentials into authenticated actors and manages the
// per-profile session cache. Sessions move Anonymous -> Authenticated on
// success and straight back to Anonymous on failure or logout; no
// intermediate state is persisted anywhere.
type AuthService interface {
	// Authenticate verifies the credential pair and returns the derived
	// actor plus a signed session token. Failures are uniform: the caller
	// cannot tell whether the email exists.
	Authenticate(ctx context.Context, email, password string) (policy.Actor, string, error)
	// CurrentActor resolves a profile id into its actor context, serving
	// from the cache when possible.
	CurrentActor(ctx context.Context, profileID uuid.UUID) (policy.Actor, error)
	// Logout drops the cached actor for the profile.
	Logout(ctx context.Context, profileID uuid.UUID) error
	// InvalidateActor forces the next CurrentActor call to re-derive the
	// context from the store, used after role changes.
	InvalidateActor(ctx context.Context, profileID uuid.UUID)
}

type authService struct {
	profiles  repository.ProfileRepository
	teachers  repository.TeacherRepository
	redis     *redis.Client
	cacheTTL  time.Duration
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

type cachedActor struct {
	ID            uuid.UUID           `json:"id"`
	Role          models.Role         `json:"role"`
	InstitutionID *uuid.UUID          `json:"institution_id,omitempty"`
	Permissions   []models.Permission `json:"permissions,omitempty"`
	TeacherID     *uuid.UUID          `json:"teacher_id,omitempty"`
}

// NewAuthService constructs the identity provider. The redis client may be
// nil; actor derivation then always hits the store.
func NewAuthService(profiles repository.ProfileRepository, teachers repository.TeacherRepository, redisClient *redis.Client, cacheTTL time.Duration, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		profiles:  profiles,
		teachers:  teachers,
		redis:     redisClient,
		cacheTTL:  cacheTTL,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Authenticate(ctx context.Context, email, password string) (policy.Actor, string, error) {
	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return policy.Actor{}, "", ErrInvalidCredentials
		}
		return policy.Actor{}, "", storeErr(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return policy.Actor{}, "", ErrInvalidCredentials
	}

	actor, err := s.deriveActor(ctx, profile)
	if err != nil {
		return policy.Actor{}, "", err
	}

	token, err := s.issueToken(profile)
	if err != nil {
		return policy.Actor{}, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.cacheActor(ctx, actor)
	return actor, token, nil
}

func (s *authService) CurrentActor(ctx context.Context, profileID uuid.UUID) (policy.Actor, error) {
	if actor, ok := s.cachedActor(ctx, profileID); ok {
		return actor, nil
	}

	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return policy.Actor{}, translateNotFound(err, ErrProfileNotFound)
	}

	actor, err := s.deriveActor(ctx, profile)
	if err != nil {
		return policy.Actor{}, err
	}

	s.cacheActor(ctx, actor)
	return actor, nil
}

func (s *authService) Logout(ctx context.Context, profileID uuid.UUID) error {
	s.InvalidateActor(ctx, profileID)
	return nil
}

func (s *authService) InvalidateActor(ctx context.Context, profileID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, actorCacheKey(profileID)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("profile_id", profileID.String()).Msg("failed to drop cached actor")
	}
}

// deriveActor resolves the full authorization context for a profile: the
// explicit permission set for custom roles and the linked teacher record for
// teaching staff.
func (s *authService) deriveActor(ctx context.Context, profile models.Profile) (policy.Actor, error) {
	actor := policy.Actor{
		ID:            profile.ID,
		Role:          profile.Role,
		InstitutionID: profile.InstitutionID,
	}

	if profile.Role == models.RoleCustom {
		actor.Permissions = models.PermissionsFromStrings([]string(profile.Permissions))
	}

	if profile.Role == models.RoleTeacher {
		teacher, err := s.teachers.GetByProfileID(ctx, profile.ID)
		switch {
		case err == nil:
			teacherID := teacher.ID
			actor.TeacherID = &teacherID
		case errors.Is(err, gorm.ErrRecordNotFound):
			// A teacher profile without a staff record can log in but will
			// fail every class/assignment policy check.
		default:
			return policy.Actor{}, storeErr(err)
		}
	}

	return actor, nil
}

func (s *authService) issueToken(profile models.Profile) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  profile.ID.String(),
		"role": string(profile.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *authService) cacheActor(ctx context.Context, actor policy.Actor) {
	if s.redis == nil {
		return
	}

	payload, err := json.Marshal(cachedActor{
		ID:            actor.ID,
		Role:          actor.Role,
		InstitutionID: actor.InstitutionID,
		Permissions:   actor.Permissions,
		TeacherID:     actor.TeacherID,
	})
	if err != nil {
		return
	}

	if err := s.redis.Set(ctx, actorCacheKey(actor.ID), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache actor")
	}
}

func (s *authService) cachedActor(ctx context.Context, profileID uuid.UUID) (policy.Actor, bool) {
	if s.redis == nil {
		return policy.Actor{}, false
	}

	payload, err := s.redis.Get(ctx, actorCacheKey(profileID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("actor cache read failed")
		}
		return policy.Actor{}, false
	}

	var cached cachedActor
	if err := json.Unmarshal(payload, &cached); err != nil {
		return policy.Actor{}, false
	}

	return policy.Actor{
		ID:            cached.ID,
		Role:          cached.Role,
		InstitutionID: cached.InstitutionID,
		Permissions:   cached.Permissions,
		TeacherID:     cached.TeacherID,
	}, true
}

func actorCacheKey(profileID uuid.UUID) string {
	return actorCacheKeyPrefix + profileID.String()
}
