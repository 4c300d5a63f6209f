package post

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const validID = "11111111-1111-1111-1111-111111111111"

func TestValidate_DefaultsAuthor(t *testing.T) {
	req := require.New(t)

	p, err := Validate([]byte(`{"id":"` + validID + `","content":"hi","createdAt":100}`))

	req.NoError(err)
	req.Equal(Post{ID: validID, Author: DefaultAuthor, Content: "hi", CreatedAt: 100}, p)
}

func TestValidate_EmptyAuthorBecomesAnonymous(t *testing.T) {
	p, err := Validate([]byte(`{"id":"` + validID + `","author":"","content":"hi","createdAt":1}`))
	require.NoError(t, err)
	require.Equal(t, DefaultAuthor, p.Author)
}

func TestValidate_KeepsAuthorAndDropsUnknownFields(t *testing.T) {
	req := require.New(t)

	p, err := Validate([]byte(`{"id":"ABCDEF01-2345-6789-abcd-ef0123456789","author":"ana","content":"yo","createdAt":7,"likes":3}`))

	req.NoError(err)
	req.Equal("ana", p.Author)
	req.Equal("ABCDEF01-2345-6789-abcd-ef0123456789", p.ID)
	req.JSONEq(`{"id":"ABCDEF01-2345-6789-abcd-ef0123456789","author":"ana","content":"yo","createdAt":7}`, string(p.Encode()))
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		reason string
	}{
		{"missing content", `{"id":"` + validID + `","createdAt":1}`, "missing content"},
		{"empty content", `{"id":"` + validID + `","content":"","createdAt":1}`, "missing content"},
		{"missing createdAt", `{"id":"` + validID + `","content":"x"}`, "missing createdAt"},
		{"null createdAt", `{"id":"` + validID + `","content":"x","createdAt":null}`, "missing createdAt"},
		{"quoted createdAt", `{"id":"` + validID + `","content":"x","createdAt":"100"}`, "malformed createdAt"},
		{"fractional createdAt", `{"id":"` + validID + `","content":"x","createdAt":1.5}`, "malformed createdAt"},
		{"createdAt 2^63", `{"id":"` + validID + `","content":"x","createdAt":9223372036854775808}`, "malformed createdAt"},
		{"createdAt below min int64", `{"id":"` + validID + `","content":"x","createdAt":-9223372036854775809}`, "malformed createdAt"},
		{"createdAt 2^63 as float", `{"id":"` + validID + `","content":"x","createdAt":9.223372036854775808e18}`, "malformed createdAt"},
		{"createdAt exponent overflow", `{"id":"` + validID + `","content":"x","createdAt":1e19}`, "malformed createdAt"},
		{"createdAt tiny fraction", `{"id":"` + validID + `","content":"x","createdAt":1.0000000000000000001}`, "malformed createdAt"},
		{"createdAt negative exponent", `{"id":"` + validID + `","content":"x","createdAt":15e-1}`, "malformed createdAt"},
		{"malformed id", `{"id":"not-a-uuid","content":"x","createdAt":1}`, "malformed id"},
		{"missing id", `{"content":"x","createdAt":1}`, "malformed id"},
		{"id checked first", `{"id":"nope"}`, "malformed id"},
		{"not an object", `[1,2]`, "invalid post"},
		{"empty", ``, "invalid post"},
		{"wrong content type", `{"id":"` + validID + `","content":5,"createdAt":1}`, "invalid post"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Validate([]byte(tc.raw))
			require.Error(t, err)
			require.True(t, IsValidation(err))
			require.EqualError(t, err, tc.reason)
		})
	}
}

func TestValidate_IntegralFloatAccepted(t *testing.T) {
	p, err := Validate([]byte(`{"id":"` + validID + `","content":"x","createdAt":1.7e12}`))
	require.NoError(t, err)
	require.Equal(t, int64(1_700_000_000_000), p.CreatedAt)
}

func TestValidate_CreatedAtBounds(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
	}{
		{"9223372036854775807", 9223372036854775807},
		{"-9223372036854775808", -9223372036854775808},
		{"-9.223372036854775808e18", -9223372036854775808},
		{"9.2e18", 9_200_000_000_000_000_000},
		{"5.0", 5},
		{"1500e-2", 15},
		{"0.5e1", 5},
		{"-0.0", 0},
		{"2E+3", 2000},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			p, err := Validate([]byte(`{"id":"` + validID + `","content":"x","createdAt":` + tc.raw + `}`))
			require.NoError(t, err)
			require.Equal(t, tc.want, p.CreatedAt)
		})
	}
}

func TestDecodeRoundTripsEncode(t *testing.T) {
	in := Post{ID: validID, Author: "bo", Content: "c", CreatedAt: -5}
	out, err := Decode(in.Encode())
	require.NoError(t, err)
	require.Equal(t, in, out)
}
