// Package schema declares the tables of the storage layer and multiplies
// partitioned ones.
//
// A Template describes one logical table. Replicate turns it into N
// concrete Definitions named BaseName+index ("app_userinfo0" ...
// "app_userinfo9"), with identical columns and constraints. The Registry
// is the static table of every concrete definition; it is filled once at
// startup and registering a name twice is a configuration error that must
// abort initialization.
//
// # Tables
//
//   - app_global_id: identity counter, unpartitioned
//   - app_userinfo0..N-1: user profiles, partitioned by uid mod N
//   - app_uid_openid0..N-1: uid <-> (openid, plat) mappings, same partitioning
//
// # Migration
//
// The Migrator renders CREATE TABLE statements for the dialect of each
// physical database and applies, per database, the definitions the router
// chain allows there. Each database is migrated in one transaction.
package schema
