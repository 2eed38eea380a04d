package token

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func Test_Validate(t *testing.T) {
	tok, err := Generate(testSecret, []byte("hash-1"))
	if !assert.NoError(t, err) {
		return
	}
	forged, err := Generate(testSecret, nil)
	if !assert.NoError(t, err) {
		return
	}

	testCases := []struct {
		name      string
		tok       string
		secret    []byte
		hash      []byte
		expectErr bool
	}{
		{name: "valid", tok: tok, secret: testSecret, hash: []byte("hash-1")},
		{name: "password changed", tok: tok, secret: testSecret, hash: []byte("hash-2"), expectErr: true},
		{name: "other secret", tok: tok, secret: []byte("fedcba9876543210fedcba9876543210"), hash: []byte("hash-1"), expectErr: true},
		{name: "garbage", tok: "not.a.token", secret: testSecret, hash: []byte("hash-1"), expectErr: true},
		{name: "login disabled", tok: forged, secret: testSecret, hash: nil, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			err := Validate(tc.tok, tc.secret, tc.hash)

			if tc.expectErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}

func Test_Get(t *testing.T) {
	testCases := []struct {
		name      string
		header    string
		expect    string
		expectErr bool
	}{
		{name: "bearer", header: "Bearer abc.def", expect: "abc.def"},
		{name: "scheme is case-insensitive", header: "bearer  abc.def ", expect: "abc.def"},
		{name: "missing", header: "", expectErr: true},
		{name: "basic", header: "Basic YWRtaW4=", expectErr: true},
		{name: "no token", header: "Bearer", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			req := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			actual, err := Get(req)

			if tc.expectErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(tc.expect, actual)
		})
	}
}
