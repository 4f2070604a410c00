package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyConstruction(t *testing.T) {
	assert.Equal(t, "USER#u1", UserPK("u1"))
	assert.Equal(t, "QR#abc", SortKey(KindQR, "abc"))
	assert.Equal(t, "DOCUMENT#abc", SortKey(KindDocument, "abc"))
	assert.Equal(t, "PROFILE#u1", SortKey(KindProfile, "u1"))
	assert.Equal(t, "QR#", KindPrefix(KindQR))
	assert.Equal(t, "COUNT#QR", SortKey(KindCounter, string(KindQR)))
}

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		name     string
		sk       string
		wantKind Kind
		wantID   string
		wantErr  bool
	}{
		{name: "qr", sk: "QR#abc123", wantKind: KindQR, wantID: "abc123"},
		{name: "document", sk: "DOCUMENT#xyz", wantKind: KindDocument, wantID: "xyz"},
		{name: "id with extra delimiter kept in suffix", sk: "QR#a#b", wantKind: KindQR, wantID: "a#b"},
		{name: "missing delimiter", sk: "QRabc", wantErr: true},
		{name: "empty id", sk: "QR#", wantErr: true},
		{name: "empty prefix", sk: "#abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, id, err := ParseSortKey(tt.sk)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestValidIdentifier(t *testing.T) {
	assert.True(t, ValidIdentifier("abc123"))
	assert.False(t, ValidIdentifier(""))
	assert.False(t, ValidIdentifier("abc#123"))
}
