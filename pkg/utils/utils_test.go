package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_StableAndSensitive(t *testing.T) {
	type in struct {
		A float64
		B int
	}
	f1, err := Fingerprint(in{A: 0.1, B: 2})
	require.NoError(t, err)
	f2, err := Fingerprint(in{A: 0.1, B: 2})
	require.NoError(t, err)
	f3, err := Fingerprint(in{A: 0.2, B: 2})
	require.NoError(t, err)

	assert.Equal(t, f1, f2)
	assert.NotEqual(t, f1, f3)
	assert.Len(t, f1, 64)

	_, err = Fingerprint(make(chan int))
	assert.Error(t, err)
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name           string
		page, pageSize int
		total          int64
		wantPage       int
		wantSize       int
		wantPages      int64
		wantOffset     int
	}{
		{"defaults", 0, 0, 25, 1, 10, 3, 0},
		{"second page", 2, 10, 25, 2, 10, 3, 10},
		{"capped size", 1, 1000, 5, 1, MaxPageSize, 1, 0},
		{"empty", 1, 10, 0, 1, 10, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.pageSize, tt.total)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantSize, p.Limit())
			assert.Equal(t, tt.wantPages, p.Pages)
			assert.Equal(t, tt.wantOffset, p.Offset())
		})
	}
}
