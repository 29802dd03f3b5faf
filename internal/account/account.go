// Package account composes uid generation, record storage and the
// profile cache into the operations a front end calls.
//
// Registration is two separate writes after the uid is drawn: the mapping,
// then the profile. A failure in between leaves the uid unused; uids are
// cheap and are never reclaimed.
package account

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/roach88/awesome/internal/cache"
	"github.com/roach88/awesome/internal/errs"
	"github.com/roach88/awesome/internal/record"
)

// UIDSource issues uids.
type UIDSource interface {
	Generate(ctx context.Context) (uint64, error)
}

// Records is the record store surface the service uses.
type Records interface {
	GetProfile(ctx context.Context, uid uint64) (*record.Profile, error)
	UpsertProfile(ctx context.Context, uid uint64, fields record.ProfileFields) error
	GetMapping(ctx context.Context, externalID string, platform record.Platform) (*record.Mapping, error)
	UpsertMapping(ctx context.Context, uid uint64, externalID string, platform record.Platform) error
}

// ProfileCache caches profiles by uid. Get returns cache.ErrMiss on a miss.
type ProfileCache interface {
	Get(ctx context.Context, uid uint64) (*record.Profile, error)
	Set(ctx context.Context, p *record.Profile) error
	Delete(ctx context.Context, uid uint64) error
}

// Registration is the outcome of Register.
type Registration struct {
	UID     uint64 `json:"uid"`
	Created bool   `json:"created"`
}

// Service implements account operations.
type Service struct {
	uids    UIDSource
	records Records
	cache   ProfileCache
	logger  *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCache puts c in front of profile reads.
func WithCache(c ProfileCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a service.
func New(uids UIDSource, records Records, opts ...Option) *Service {
	s := &Service{uids: uids, records: records, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register returns the uid bound to (externalID, platform), creating the
// uid, its mapping and its profile when none exists.
func (s *Service) Register(ctx context.Context, externalID string, platform record.Platform, fields record.ProfileFields) (Registration, error) {
	m, err := s.records.GetMapping(ctx, externalID, platform)
	if err == nil {
		return Registration{UID: m.UID}, nil
	}
	if !errs.IsNotFound(err) {
		return Registration{}, err
	}

	uid, err := s.uids.Generate(ctx)
	if err != nil {
		return Registration{}, err
	}

	if err := s.records.UpsertMapping(ctx, uid, externalID, platform); err != nil {
		s.logger.Warn("registration abandoned uid",
			zap.Uint64("uid", uid), zap.String("stage", "mapping"), zap.Error(err))
		return Registration{}, err
	}
	if err := s.records.UpsertProfile(ctx, uid, fields); err != nil {
		s.logger.Warn("registration left uid without profile",
			zap.Uint64("uid", uid), zap.String("stage", "profile"), zap.Error(err))
		return Registration{}, err
	}

	s.logger.Info("registered",
		zap.Uint64("uid", uid),
		zap.String("external_id", externalID),
		zap.Uint16("platform", uint16(platform)))
	return Registration{UID: uid, Created: true}, nil
}

// Profile returns the profile of uid, from the cache when present. Cache
// failures fall through to the store.
func (s *Service) Profile(ctx context.Context, uid uint64) (*record.Profile, error) {
	if s.cache != nil {
		p, err := s.cache.Get(ctx, uid)
		switch {
		case err == nil:
			return p, nil
		case !errors.Is(err, cache.ErrMiss):
			s.logger.Warn("profile cache read failed", zap.Uint64("uid", uid), zap.Error(err))
		}
	}

	p, err := s.records.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, p); err != nil {
			s.logger.Warn("profile cache write failed", zap.Uint64("uid", uid), zap.Error(err))
		}
	}
	return p, nil
}

// UpdateProfile overwrites the profile of uid and drops its cache entry.
func (s *Service) UpdateProfile(ctx context.Context, uid uint64, fields record.ProfileFields) error {
	if err := s.records.UpsertProfile(ctx, uid, fields); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, uid); err != nil {
			s.logger.Warn("profile cache invalidation failed", zap.Uint64("uid", uid), zap.Error(err))
		}
	}
	return nil
}
