package record

import (
	"context"
	"database/sql"
	"time"

	"github.com/roach88/awesome/internal/errs"
	"github.com/roach88/awesome/internal/partition"
	"github.com/roach88/awesome/internal/querysql"
	"github.com/roach88/awesome/internal/schema"
)

// Gender is a caller-defined enumeration. The column defaults to
// GenderUnknown; writes without a gender store 0.
type Gender uint16

// GenderUnknown is the column default.
const GenderUnknown Gender = 2

// Profile is one user's profile row.
type Profile struct {
	UID          uint64    `json:"uid"`
	Nickname     string    `json:"nickname"`
	Gender       Gender    `json:"gender"`
	Signature    string    `json:"signature"`
	Region       string    `json:"region"`
	RegisteredAt time.Time `json:"registered_at"`
	LoginCount   uint64    `json:"login_count"`
	LastLoginAt  time.Time `json:"last_login_at"`
}

// ProfileFields are the caller-supplied profile attributes. Nil fields
// take their defaults: "" nickname, gender 0, "0" signature and region.
type ProfileFields struct {
	Nickname  *string `json:"nickname,omitempty"`
	Gender    *Gender `json:"gender,omitempty"`
	Signature *string `json:"signature,omitempty"`
	Region    *string `json:"region,omitempty"`
}

var profileColumns = []string{
	schema.ColUID,
	schema.ColNickname,
	schema.ColGender,
	schema.ColSignature,
	schema.ColRegion,
	schema.ColRegTime,
	schema.ColEnterCount,
	schema.ColEnterTime,
}

// GetProfile returns the profile of uid.
func (s *Store) GetProfile(ctx context.Context, uid uint64) (*Profile, error) {
	const op = "get profile"
	table, err := s.profiles.table(uid)
	if err != nil {
		return nil, err
	}

	var row profileRow
	err = s.queryRow(ctx, op, s.profiles.database, querysql.Select{
		Table:   table,
		Columns: profileColumns,
		Where:   []querysql.Predicate{querysql.Equals{Column: schema.ColUID, Value: uid}},
		Limit:   1,
	}, row.dest()...)
	if err != nil {
		return nil, err
	}
	p := row.profile()
	return &p, nil
}

// GetProfiles returns the stored profiles among uids, ordered by uid.
// All uids must share one partition; missing uids are left out.
func (s *Store) GetProfiles(ctx context.Context, uids []uint64) ([]Profile, error) {
	const op = "get profiles"
	idx, same, err := partition.Same(uids, s.profiles.Partitions)
	if err != nil {
		return nil, err
	}
	if len(uids) == 0 {
		return []Profile{}, nil
	}
	if !same {
		return nil, errs.Validation(op, "uids span more than one partition; query each partition separately")
	}

	values := make([]any, len(uids))
	for i, uid := range uids {
		values[i] = uid
	}
	query, args, err := querysql.Compile(querysql.Select{
		Table:   partition.Name(s.profiles.Base, idx),
		Columns: profileColumns,
		Where:   []querysql.Predicate{querysql.In{Column: schema.ColUID, Values: values}},
		OrderBy: []string{schema.ColUID},
	})
	if err != nil {
		return nil, errs.Configuration(op, "%v", err)
	}

	profiles := []Profile{}
	err = s.pools.WithConn(ctx, s.profiles.database, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return errs.Storage(op, err)
		}
		defer rows.Close()

		for rows.Next() {
			var row profileRow
			if err := rows.Scan(row.dest()...); err != nil {
				return errs.Storage(op, err)
			}
			profiles = append(profiles, row.profile())
		}
		if err := rows.Err(); err != nil {
			return errs.Storage(op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// UpsertProfile writes a fresh profile row for uid, replacing any
// existing one. Registration and last login are both set to now and the
// login count to 1.
func (s *Store) UpsertProfile(ctx context.Context, uid uint64, fields ProfileFields) error {
	const op = "upsert profile"
	table, err := s.profiles.table(uid)
	if err != nil {
		return err
	}

	nickname, gender, signature, region := "", Gender(0), "0", "0"
	if fields.Nickname != nil {
		nickname = *fields.Nickname
	}
	if fields.Gender != nil {
		gender = *fields.Gender
	}
	if fields.Signature != nil {
		signature = *fields.Signature
	}
	if fields.Region != nil {
		region = *fields.Region
	}

	if nickname, err = text(op, "nickname", nickname, schema.NicknameSize); err != nil {
		return err
	}
	if signature, err = text(op, "signature", signature, schema.SignatureSize); err != nil {
		return err
	}
	if region, err = text(op, "region", region, schema.RegionSize); err != nil {
		return err
	}

	now := s.now().Unix()
	return s.exec(ctx, op, s.profiles.database, querysql.Replace{
		Table:   table,
		Columns: profileColumns,
		Values:  []any{uid, nickname, uint16(gender), signature, region, now, 1, now},
	})
}

// profileRow holds scan targets in profileColumns order.
type profileRow struct {
	uid        uint64
	nickname   string
	gender     uint16
	signature  string
	region     string
	regTime    int64
	enterCount uint64
	enterTime  int64
}

func (r *profileRow) dest() []any {
	return []any{&r.uid, &r.nickname, &r.gender, &r.signature, &r.region, &r.regTime, &r.enterCount, &r.enterTime}
}

func (r *profileRow) profile() Profile {
	return Profile{
		UID:          r.uid,
		Nickname:     r.nickname,
		Gender:       Gender(r.gender),
		Signature:    r.signature,
		Region:       r.region,
		RegisteredAt: unix(r.regTime),
		LoginCount:   r.enterCount,
		LastLoginAt:  unix(r.enterTime),
	}
}
