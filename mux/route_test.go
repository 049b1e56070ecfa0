package mux

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteName(t *testing.T) {
	t.Run("duplicate name", func(t *testing.T) {
		r := NewRouter()
		r.HandleFunc("/a", respond("a")).Name("dup")
		route := r.HandleFunc("/b", respond("b")).Name("dup")

		assert.ErrorIs(t, route.GetError(), ErrDuplicateName)
		assert.ErrorIs(t, r.Validate(), ErrDuplicateName)
	})

	t.Run("renaming", func(t *testing.T) {
		route := NewRouter().HandleFunc("/a", respond("a")).Name("first").Name("second")

		assert.Error(t, route.GetError())
		assert.Equal(t, "first", route.GetName())
	})
}

func TestRouteMethods(t *testing.T) {
	route := NewRouter().HandleFunc("/a", respond("a")).Methods("get", " post ")

	methods, err := route.GetMethods()
	require.NoError(t, err)
	assert.Equal(t, []string{http.MethodGet, http.MethodPost}, methods)

	route = NewRouter().HandleFunc("/a", respond("a")).Methods("GET", "")
	assert.Error(t, route.GetError())

	_, err = NewRouter().HandleFunc("/a", respond("a")).GetMethods()
	assert.Error(t, err)
}

func TestRoutePath(t *testing.T) {
	route := NewRouter().HandleFunc("/a", respond("a")).Path("/b")
	assert.Error(t, route.GetError())

	route = NewRouter().NewRoute()
	_, err := route.GetPathTemplate()
	assert.ErrorIs(t, err, ErrNoPath)

	_, err = route.URL()
	assert.ErrorIs(t, err, ErrNoPath)

	route = NewRouter().HandleFunc("/products/{id}/orders/{custid}/", respond("a"))
	tpl, err := route.GetPathTemplate()
	require.NoError(t, err)
	assert.Equal(t, "/products/{id}/orders/{custid}", tpl)

	names, err := route.GetVarNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "custid"}, names)
}

func TestRouteSegments(t *testing.T) {
	route := NewRouter().HandleFunc("/files/{id:int:range(1,9)}/{*rest}", respond("a"))

	segs, err := route.GetSegments()
	require.NoError(t, err)
	assert.Equal(t, []Segment{
		{Literal: "files"},
		{Name: "id", Constraints: "int:range(1,9)"},
		{Name: "rest", CatchAll: true},
	}, segs)
	assert.False(t, segs[0].IsVar())
	assert.True(t, segs[1].IsVar())

	segs, err = NewRouter().HandleFunc("/status/{s:alpha?}", respond("a")).GetSegments()
	require.NoError(t, err)
	assert.Equal(t, Segment{Name: "s", Constraints: "alpha", Optional: true}, segs[1])

	_, err = NewRouter().NewRoute().GetSegments()
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestRouteOrder(t *testing.T) {
	route := NewRouter().HandleFunc("/a", respond("a"))
	assert.Equal(t, 0, route.GetOrder())
	assert.Equal(t, 2, route.Order(2).GetOrder())
}

func TestRouteURL(t *testing.T) {
	r := NewRouter()
	route := r.HandleFunc("/products/{prodId:int:range(1000,3000)}", respond("a"))

	u, err := route.URL("prodId", "2000")
	require.NoError(t, err)
	assert.Equal(t, "/products/2000", u.Path)

	_, err = route.URL("prodId")
	assert.Error(t, err)

	_, err = route.URL("prodId", "abc")
	assert.Error(t, err)

	u, err = r.HandleFunc("/files/{*path}", respond("f")).URL("path", "a b/c")
	require.NoError(t, err)
	assert.Equal(t, "/files/a%20b/c", u.String())
}

func TestRouteMatch(t *testing.T) {
	r := NewRouter()
	route := r.HandleFunc("/products/{id:int}", respond("a")).Methods(http.MethodGet)

	var match RouteMatch
	require.True(t, route.Match(httptest.NewRequest(http.MethodGet, "/products/5", nil), &match))
	assert.Same(t, route, match.Route)
	assert.Equal(t, map[string]string{"id": "5"}, match.Vars)

	match = RouteMatch{}
	assert.False(t, route.Match(httptest.NewRequest(http.MethodPost, "/products/5", nil), &match))
	assert.Equal(t, ErrMethodMismatch, match.MatchErr)
	assert.Equal(t, []string{http.MethodGet}, match.Allowed())

	match = RouteMatch{}
	assert.False(t, route.Match(httptest.NewRequest(http.MethodGet, "/products/x", nil), &match))
	assert.Nil(t, match.MatchErr)
}

func TestRouteString(t *testing.T) {
	assert.Equal(t, "* <no path>", NewRouter().NewRoute().String())
	assert.Equal(t, "GET,VIEW /products", NewRouter().Path("/products").Methods("GET", "VIEW").String())
}
