// Package partition maps a uid to one of a fixed number of physical tables.
//
// Assignment is uid mod count. The mapping is stateless and needs no
// directory, but it ties every stored row to the count it was written
// with: changing count without rewriting all rows loses them.
package partition

import (
	"strconv"

	"github.com/roach88/awesome/internal/errs"
)

// DefaultCount is the partition count of both profile and mapping tables.
const DefaultCount = 10

// Resolve returns the partition index of uid.
func Resolve(uid uint64, count int) (int, error) {
	if uid == 0 {
		return 0, errs.Validation("resolve partition", "uid must be positive")
	}
	if count <= 0 {
		return 0, errs.Validation("resolve partition", "partition count must be positive, got %d", count)
	}
	return int(uid % uint64(count)), nil
}

// TableName returns the physical table holding uid: base followed by the
// zero-based index, no separator ("app_userinfo" -> "app_userinfo7").
func TableName(base string, uid uint64, count int) (string, error) {
	idx, err := Resolve(uid, count)
	if err != nil {
		return "", err
	}
	return Name(base, idx), nil
}

// Name returns the table name of partition idx.
func Name(base string, idx int) string {
	return base + strconv.Itoa(idx)
}

// Same reports whether every uid resolves to one partition, returning
// that index. An empty list resolves to nothing.
func Same(uids []uint64, count int) (int, bool, error) {
	if len(uids) == 0 {
		return 0, false, nil
	}
	first, err := Resolve(uids[0], count)
	if err != nil {
		return 0, false, err
	}
	for _, uid := range uids[1:] {
		idx, err := Resolve(uid, count)
		if err != nil {
			return 0, false, err
		}
		if idx != first {
			return first, false, nil
		}
	}
	return first, true, nil
}
