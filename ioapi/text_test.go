package ioapi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/filestore/errors"
	"github.com/jmgilman/go/filestore/ioapi"
)

func TestReadText(t *testing.T) {
	s := newStore(t)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "hello", "hello"},
		{"bom stripped", "\xEF\xBB\xBFhello", "hello"},
		{"invalid bytes replaced", "a\xffb", "a\uFFFDb"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, ioapi.WriteBytes(s, "t.txt", []byte(tt.raw)))
			got, err := ioapi.ReadText(s, "t.txt")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextEncodings(t *testing.T) {
	s := newStore(t)

	tests := []struct {
		enc   string
		first byte
	}{
		{"cp1251", 0xCF},
		{"windows-1251", 0xCF},
		{"cp866", 0x8F},
	}
	for _, tt := range tests {
		t.Run(tt.enc, func(t *testing.T) {
			require.NoError(t, ioapi.WriteTextEncoding(s, "ru.txt", "Привет", tt.enc))

			raw, err := ioapi.ReadBytes(s, "ru.txt")
			require.NoError(t, err)
			assert.Len(t, raw, 6, "single-byte encoding")
			assert.Equal(t, tt.first, raw[0])

			got, err := ioapi.ReadTextEncoding(s, "ru.txt", tt.enc)
			require.NoError(t, err)
			assert.Equal(t, "Привет", got)
		})
	}

	t.Run("unsupported runes replaced", func(t *testing.T) {
		require.NoError(t, ioapi.WriteTextEncoding(s, "cjk.txt", "a日", "cp1251"))
		raw, err := ioapi.ReadBytes(s, "cjk.txt")
		require.NoError(t, err)
		assert.Len(t, raw, 2)
		assert.Equal(t, byte('a'), raw[0])
	})

	t.Run("utf-8 bom over single-byte", func(t *testing.T) {
		require.NoError(t, ioapi.WriteBytes(s, "bom.txt", []byte("\xEF\xBB\xBFПривет")))
		got, err := ioapi.ReadTextEncoding(s, "bom.txt", "cp1251")
		require.NoError(t, err)
		assert.Equal(t, "Привет", got)
	})

	t.Run("unknown encoding", func(t *testing.T) {
		err := ioapi.WriteTextEncoding(s, "x.txt", "x", "klingon")
		assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

		_, err = ioapi.ReadTextEncoding(s, "ru.txt", "klingon")
		assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
	})
}

func TestLookupEncoding(t *testing.T) {
	enc, err := ioapi.LookupEncoding("")
	require.NoError(t, err)
	utf8, err := ioapi.LookupEncoding("UTF-8")
	require.NoError(t, err)
	assert.Equal(t, utf8, enc)
}
