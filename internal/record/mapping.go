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

// Platform identifies a third-party platform. Values are caller-defined.
type Platform uint16

// Mapping binds a uid to a user of a third-party platform.
type Mapping struct {
	ID         uint64    `json:"id"`
	UID        uint64    `json:"uid"`
	ExternalID string    `json:"external_id"`
	Platform   Platform  `json:"platform"`
	CreatedAt  time.Time `json:"created_at"`
}

var mappingColumns = []string{
	schema.ColID,
	schema.ColUID,
	schema.ColOpenID,
	schema.ColPlat,
	schema.ColCreateTime,
}

// GetMapping returns the mapping of (externalID, platform). The pair does
// not determine a partition, so partitions are searched in index order on
// one connection and the first hit wins.
func (s *Store) GetMapping(ctx context.Context, externalID string, platform Platform) (*Mapping, error) {
	const op = "get mapping"
	if err := checkExternalID(op, externalID); err != nil {
		return nil, err
	}

	queries := make([]string, s.mappings.Partitions)
	var args []any
	for i := range queries {
		query, a, err := querysql.Compile(querysql.Select{
			Table:   partition.Name(s.mappings.Base, i),
			Columns: mappingColumns,
			Where: []querysql.Predicate{
				querysql.Equals{Column: schema.ColOpenID, Value: externalID},
				querysql.Equals{Column: schema.ColPlat, Value: uint16(platform)},
			},
			Limit: 1,
		})
		if err != nil {
			return nil, errs.Configuration(op, "%v", err)
		}
		queries[i], args = query, a
	}

	var found *Mapping
	err := s.pools.WithConn(ctx, s.mappings.database, func(conn *sql.Conn) error {
		for _, query := range queries {
			var row mappingRow
			err := scanRow(conn.QueryRowContext(ctx, query, args...), op, row.dest()...)
			if errs.IsNotFound(err) {
				continue
			}
			if err != nil {
				return err
			}
			m := row.mapping()
			found = &m
			return nil
		}
		return errs.NotFound(op, "no mapping for %q on platform %d", externalID, platform)
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// GetMappingByUID returns the mapping of uid.
func (s *Store) GetMappingByUID(ctx context.Context, uid uint64) (*Mapping, error) {
	const op = "get mapping by uid"
	table, err := s.mappings.table(uid)
	if err != nil {
		return nil, err
	}

	var row mappingRow
	err = s.queryRow(ctx, op, s.mappings.database, querysql.Select{
		Table:   table,
		Columns: mappingColumns,
		Where:   []querysql.Predicate{querysql.Equals{Column: schema.ColUID, Value: uid}},
		Limit:   1,
	}, row.dest()...)
	if err != nil {
		return nil, err
	}
	m := row.mapping()
	return &m, nil
}

// UpsertMapping binds uid to (externalID, platform), replacing the
// previous binding of uid. A pair already bound to another uid is
// rejected; the check and the write are not atomic.
func (s *Store) UpsertMapping(ctx context.Context, uid uint64, externalID string, platform Platform) error {
	const op = "upsert mapping"
	table, err := s.mappings.table(uid)
	if err != nil {
		return err
	}
	if err := checkExternalID(op, externalID); err != nil {
		return err
	}

	existing, err := s.GetMapping(ctx, externalID, platform)
	switch {
	case errs.IsNotFound(err):
	case err != nil:
		return err
	case existing.UID != uid:
		return errs.Validation(op, "%q on platform %d is bound to uid %d", externalID, platform, existing.UID)
	}

	return s.exec(ctx, op, s.mappings.database, querysql.Replace{
		Table:   table,
		Columns: mappingColumns[1:],
		Values:  []any{uid, externalID, uint16(platform), s.now().Unix()},
	})
}

func checkExternalID(op, externalID string) error {
	if externalID == "" {
		return errs.Validation(op, "external id is required")
	}
	if n := len([]rune(externalID)); n > schema.OpenIDSize {
		return errs.Validation(op, "external id is %d characters, at most %d allowed", n, schema.OpenIDSize)
	}
	return nil
}

// mappingRow holds scan targets in mappingColumns order.
type mappingRow struct {
	id         uint64
	uid        uint64
	externalID string
	platform   uint16
	createTime int64
}

func (r *mappingRow) dest() []any {
	return []any{&r.id, &r.uid, &r.externalID, &r.platform, &r.createTime}
}

func (r *mappingRow) mapping() Mapping {
	return Mapping{
		ID:         r.id,
		UID:        r.uid,
		ExternalID: r.externalID,
		Platform:   Platform(r.platform),
		CreatedAt:  unix(r.createTime),
	}
}
