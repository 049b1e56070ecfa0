package mux

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindJSON(t *testing.T) {
	type product struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		allow   []bool
		want    product
		wantErr error
		fails   bool
	}{
		{name: "valid", body: `{"id":1001,"name":"Bolt"}`, want: product{ID: 1001, Name: "Bolt"}},
		{name: "malformed", body: `{"id":`, fails: true},
		{name: "unknown field rejected", body: `{"id":1,"color":"red"}`, fails: true},
		{name: "unknown field allowed", body: `{"id":1,"color":"red"}`, allow: []bool{true}, want: product{ID: 1}},
		{name: "trailing value", body: `{"id":1}{"id":2}`, wantErr: ErrTrailingData, fails: true},
		{name: "empty body", body: ``, fails: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(tt.body))

			var got product
			err := BindJSON(r, &got, tt.allow...)

			if tt.fails {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
