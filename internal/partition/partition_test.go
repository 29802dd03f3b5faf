package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/awesome/internal/errs"
)

func TestResolve_IsModulo(t *testing.T) {
	for uid := uint64(1); uid <= 1000; uid++ {
		idx, err := Resolve(uid, DefaultCount)
		require.NoError(t, err)
		assert.Equal(t, int(uid%10), idx, "uid %d", uid)
	}
}

func TestResolve_Stable(t *testing.T) {
	uid := uint64(18446744073709551557)
	first, err := Resolve(uid, DefaultCount)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		idx, err := Resolve(uid, DefaultCount)
		require.NoError(t, err)
		assert.Equal(t, first, idx)
	}
	assert.Equal(t, 7, first)
}

func TestResolve_RejectsZeroUID(t *testing.T) {
	_, err := Resolve(0, DefaultCount)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestResolve_RejectsBadCount(t *testing.T) {
	for _, count := range []int{0, -1} {
		_, err := Resolve(1, count)
		require.Error(t, err)
		assert.True(t, errs.IsValidation(err))
	}
}

func TestTableName(t *testing.T) {
	tests := []struct {
		base string
		uid  uint64
		want string
	}{
		{"app_userinfo", 1, "app_userinfo1"},
		{"app_userinfo", 10, "app_userinfo0"},
		{"app_userinfo", 29, "app_userinfo9"},
		{"app_uid_openid", 123456, "app_uid_openid6"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := TableName(tt.base, tt.uid, DefaultCount)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSame(t *testing.T) {
	idx, ok, err := Same([]uint64{3, 13, 103}, DefaultCount)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, idx)

	_, ok, err = Same([]uint64{3, 4}, DefaultCount)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = Same(nil, DefaultCount)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = Same([]uint64{3, 0}, DefaultCount)
	assert.True(t, errs.IsValidation(err))
}
