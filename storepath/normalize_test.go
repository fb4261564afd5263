package storepath

import (
	"strings"
	"testing"

	"github.com/jmgilman/go/filestore/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		share string
		raw   string
		want  string
	}{
		{name: "plain relative", raw: "a/b/c.txt", want: "a/b/c.txt"},
		{name: "backslashes", raw: `reports\2024\q1.xlsx`, want: "reports/2024/q1.xlsx"},
		{name: "redundant separators", raw: "a//b///c", want: "a/b/c"},
		{name: "dot segments", raw: "./a/./b/", want: "a/b"},
		{name: "dotdot inside", raw: "a/b/../c", want: "a/c"},
		{name: "leading slash anchors at root", raw: "/data/x.csv", want: "data/x.csv"},
		{name: "percent encoded space", raw: "My%20Reports/x.csv", want: "My Reports/x.csv"},
		{name: "double encoded", raw: "a%2520b", want: "a b"},
		{name: "encoded backslash", raw: "a%5Cb", want: "a/b"},
		{name: "malformed escape kept", raw: "100%/x%zz", want: "100%/x%zz"},
		{name: "surrounding quotes", raw: `  "C:\data\x.csv"  `, want: "data/x.csv"},
		{name: "drive letter", raw: `D:\work\x.csv`, want: "work/x.csv"},
		{name: "lowercase drive", raw: "c:/x", want: "x"},
		{name: "repeated drives", raw: strings.Repeat("C:/", 11) + "x", want: "x"},
		{name: "nested file schemes", raw: strings.Repeat("file:", 12) + "x", want: "x"},
		{name: "file uri with drive", raw: "file:///C:/data/x.csv", want: "data/x.csv"},
		{name: "file uri with host", raw: "file://fileserver/ABC/x.csv", want: "ABC/x.csv"},
		{name: "file uri upper case scheme", raw: "FILE:///tmp/x", want: "tmp/x"},
		{name: "unc path", raw: `\\fileserver\ABC\Reports\x.xlsx`, want: "ABC/Reports/x.xlsx"},
		{name: "share stripped", share: "ABC", raw: `\\fileserver\ABC\Reports\x.xlsx`, want: "Reports/x.xlsx"},
		{name: "share case insensitive", share: "ABC", raw: "abc/Reports/x.xlsx", want: "Reports/x.xlsx"},
		{name: "share last occurrence", share: "ABC", raw: "ABC/old/ABC/new.txt", want: "new.txt"},
		{name: "share not a substring match", share: "ABC", raw: "ABCD/x", want: "ABCD/x"},
		{name: "share absent", share: "ABC", raw: "Reports/x.xlsx", want: "Reports/x.xlsx"},
		{name: "encoded share path", share: "Team Share", raw: "file://srv/Team%20Share/a.txt", want: "a.txt"},
		{name: "file uri with drive and share", share: "ABC", raw: "file:///C:\\ABC\\Reports\\x.xlsx", want: "Reports/x.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewNormalizer(tt.share).Normalize(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestNormalize_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		share string
		raw   string
	}{
		{name: "empty", raw: ""},
		{name: "whitespace", raw: "   "},
		{name: "empty quotes", raw: `""`},
		{name: "escape root", raw: "../x"},
		{name: "escape after descent", raw: "a/../../x"},
		{name: "escape from anchored", raw: "/../etc/passwd"},
		{name: "escape via encoding", raw: "%2E%2E/x"},
		{name: "nul byte", raw: "a\x00b"},
		{name: "encoded nul", raw: "a%00b"},
		{name: "filesystem root", raw: "/"},
		{name: "dot", raw: "."},
		{name: "drive root", raw: `C:\`},
		{name: "bare share", share: "ABC", raw: `\\srv\ABC\`},
		{name: "ends with share", share: "ABC", raw: "Reports/ABC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNormalizer(tt.share).Normalize(tt.raw)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidPath, errors.GetCode(err))
		})
	}
}

func TestNormalize_ErrorNamesInput(t *testing.T) {
	_, err := Normalize("../secret")
	require.Error(t, err)

	var pe errors.PlatformError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "../secret", pe.Context()["input"])
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"a/b/c",
		`\\srv\ABC\x\ABC\y.txt`,
		"file:///C:/ABC/Reports/x.xlsx",
		"a%252541",
		"ABC/C:/x",
		"/ b /c ",
		`'"quoted"'`,
		"file:file:x",
		"100%",
		"Reports/ABC/x",
		strings.Repeat("C:/", 11) + "x",
		strings.Repeat("file:", 10) + "C:/x",
		`"'file:///D:/"x"'"`,
		"/ b /c ",
	}

	for _, share := range []string{"", "ABC"} {
		n := NewNormalizer(share)
		for _, in := range inputs {
			first, err := n.Normalize(in)
			require.NoError(t, err, in)

			second, err := n.Normalize(first.String())
			require.NoError(t, err, in)
			assert.Equal(t, first, second, "share=%q input=%q", share, in)
		}
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	n := NewNormalizer("ABC")
	a, err := n.Normalize(`\\srv\ABC\Reports\x.xlsx`)
	require.NoError(t, err)
	b, err := n.Normalize(`\\srv\ABC\Reports\x.xlsx`)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMustNormalize(t *testing.T) {
	assert.Equal(t, "a/b", MustNormalize("a\\b").String())
	assert.Panics(t, func() { MustNormalize("..") })
}

func FuzzNormalize(f *testing.F) {
	for _, seed := range []string{
		"a/b/c",
		`\\srv\ABC\x.txt`,
		"file:///C:/ABC/x",
		"C:/C:/C:/x",
		"a%2525%252541",
		` '"x"' `,
	} {
		f.Add(seed, "")
		f.Add(seed, "ABC")
	}

	f.Fuzz(func(t *testing.T, raw, share string) {
		n := NewNormalizer(share)
		first, err := n.Normalize(raw)
		if err != nil {
			return
		}
		second, err := n.Normalize(first.String())
		if err != nil {
			t.Fatalf("Normalize(%q) = %q, renormalizing failed: %v", raw, first, err)
		}
		if first != second {
			t.Fatalf("Normalize(%q) = %q, renormalized to %q", raw, first, second)
		}
	})
}
