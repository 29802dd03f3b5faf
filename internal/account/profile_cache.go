package account

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/roach88/awesome/internal/cache"
	"github.com/roach88/awesome/internal/record"
)

// Hash fields of a cached profile.
const (
	fieldUID          = "uid"
	fieldNickname     = "nickname"
	fieldGender       = "gender"
	fieldSignature    = "signature"
	fieldRegion       = "region"
	fieldRegisteredAt = "registered_at"
	fieldLoginCount   = "login_count"
	fieldLastLoginAt  = "last_login_at"
)

// RedisProfiles caches each profile as a hash named "userinfo:<uid>".
type RedisProfiles struct {
	c *cache.Cache
}

// NewRedisProfiles wraps c.
func NewRedisProfiles(c *cache.Cache) *RedisProfiles {
	return &RedisProfiles{c: c}
}

func profileKey(uid uint64) string {
	return "userinfo:" + strconv.FormatUint(uid, 10)
}

// Get implements ProfileCache.
func (r *RedisProfiles) Get(ctx context.Context, uid uint64) (*record.Profile, error) {
	h, err := r.c.HGetAll(ctx, profileKey(uid))
	if err != nil {
		return nil, err
	}
	return decodeProfile(h)
}

// Set implements ProfileCache.
func (r *RedisProfiles) Set(ctx context.Context, p *record.Profile) error {
	return r.c.HSet(ctx, profileKey(p.UID), encodeProfile(p))
}

// Delete implements ProfileCache.
func (r *RedisProfiles) Delete(ctx context.Context, uid uint64) error {
	_, err := r.c.Del(ctx, profileKey(uid))
	return err
}

func encodeProfile(p *record.Profile) map[string]any {
	return map[string]any{
		fieldUID:          strconv.FormatUint(p.UID, 10),
		fieldNickname:     p.Nickname,
		fieldGender:       strconv.FormatUint(uint64(p.Gender), 10),
		fieldSignature:    p.Signature,
		fieldRegion:       p.Region,
		fieldRegisteredAt: strconv.FormatInt(p.RegisteredAt.Unix(), 10),
		fieldLoginCount:   strconv.FormatUint(p.LoginCount, 10),
		fieldLastLoginAt:  strconv.FormatInt(p.LastLoginAt.Unix(), 10),
	}
}

func decodeProfile(h map[string]string) (*record.Profile, error) {
	var (
		p   record.Profile
		err error
	)
	uintField := func(name string, bits int) uint64 {
		if err != nil {
			return 0
		}
		var v uint64
		v, err = strconv.ParseUint(h[name], 10, bits)
		if err != nil {
			err = fmt.Errorf("cached profile field %s: %w", name, err)
		}
		return v
	}
	timeField := func(name string) time.Time {
		if err != nil {
			return time.Time{}
		}
		var v int64
		v, err = strconv.ParseInt(h[name], 10, 64)
		if err != nil {
			err = fmt.Errorf("cached profile field %s: %w", name, err)
		}
		return time.Unix(v, 0).UTC()
	}

	p.UID = uintField(fieldUID, 64)
	p.Gender = record.Gender(uintField(fieldGender, 16))
	p.LoginCount = uintField(fieldLoginCount, 64)
	p.RegisteredAt = timeField(fieldRegisteredAt)
	p.LastLoginAt = timeField(fieldLastLoginAt)
	if err != nil {
		return nil, err
	}
	p.Nickname = h[fieldNickname]
	p.Signature = h[fieldSignature]
	p.Region = h[fieldRegion]
	return &p, nil
}
