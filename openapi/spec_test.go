package openapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/strela/constraint"
	"github.com/vitalvas/strela/mux"
)

func noop(http.ResponseWriter, *http.Request) {}

func testRouter(t *testing.T) *mux.Router {
	t.Helper()

	reg := constraint.NewRegistry()
	reg.MustRegister("widget", constraint.Enum("Bolt", "Nut"))

	r := mux.NewRouter().WithConstraints(reg)
	r.HandleFunc("/products", noop).Methods(http.MethodGet, "VIEW")
	r.HandleFunc("/products/{id:int:range(1000,3000)}", noop).Methods(http.MethodGet).Name("GetById")
	r.HandleFunc("/products/{id:int:range(1000,3000)}", noop).Methods(http.MethodPut, http.MethodDelete)
	r.HandleFunc("/products/widget/{widget:widget}", noop).Methods(http.MethodGet)
	r.HandleFunc("/products/status/{status:alpha?}", noop).Methods(http.MethodGet).Name("Status").Order(1)
	r.HandleFunc("/files/{*path}", noop).Methods(http.MethodGet)
	r.HandleFunc("/any", noop)

	return r
}

func TestBuild(t *testing.T) {
	doc, err := Build(testRouter(t), Info{Title: "test", Version: "1"})
	require.NoError(t, err)

	assert.Equal(t, Version, doc.OpenAPI)
	assert.Equal(t, "test", doc.Info.Title)

	t.Run("paths", func(t *testing.T) {
		var paths []string
		for p := range doc.Paths {
			paths = append(paths, p)
		}

		assert.ElementsMatch(t, []string{
			"/products",
			"/products/{id}",
			"/products/widget/{widget}",
			"/products/status/{status}",
			"/products/status",
			"/files/{path}",
		}, paths)
	})

	t.Run("custom method", func(t *testing.T) {
		item := doc.Paths["/products"]
		require.NotNil(t, item.Get)
		require.Contains(t, item.AdditionalOperations, "VIEW")
		assert.Equal(t, "GET,VIEW /products", item.AdditionalOperations["VIEW"].Summary)
	})

	t.Run("constrained parameter", func(t *testing.T) {
		item := doc.Paths["/products/{id}"]
		require.NotNil(t, item.Get)
		require.NotNil(t, item.Put)
		require.NotNil(t, item.Delete)

		assert.Equal(t, "GetById", item.Get.OperationID)
		assert.Empty(t, item.Put.OperationID)
		assert.NotNil(t, item.Put.RequestBody)
		assert.Nil(t, item.Get.RequestBody)

		require.Len(t, item.Get.Parameters, 1)
		p := item.Get.Parameters[0]
		assert.Equal(t, "id", p.Name)
		assert.Equal(t, "path", p.In)
		assert.True(t, p.Required)
		assert.Equal(t, "integer", p.Schema.Type)
		assert.Equal(t, int64(1000), *p.Schema.Minimum)
		assert.Equal(t, int64(3000), *p.Schema.Maximum)
	})

	t.Run("named enum", func(t *testing.T) {
		p := doc.Paths["/products/widget/{widget}"].Get.Parameters[0]
		assert.Equal(t, []string{"Bolt", "Nut"}, p.Schema.Enum)
	})

	t.Run("optional variable", func(t *testing.T) {
		full := doc.Paths["/products/status/{status}"].Get
		short := doc.Paths["/products/status"].Get

		assert.Equal(t, "Status", full.OperationID)
		assert.Len(t, full.Parameters, 1)
		assert.Empty(t, short.OperationID)
		assert.Empty(t, short.Parameters)
	})

	t.Run("catch-all", func(t *testing.T) {
		p := doc.Paths["/files/{path}"].Get.Parameters[0]
		assert.Equal(t, "path", p.Name)
		assert.NotEmpty(t, p.Description)
	})

	t.Run("route without methods is skipped", func(t *testing.T) {
		assert.NotContains(t, doc.Paths, "/any")
	})
}

func TestBuildRoot(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/", noop).Methods(http.MethodGet)

	doc, err := Build(r, Info{})
	require.NoError(t, err)
	assert.Contains(t, doc.Paths, "/")
}
