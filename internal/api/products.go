package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/vitalvas/strela/mux"
)

// MethodView lists a collection, like GET. Clients that cannot send it
// tunnel it through POST with the method override header.
const MethodView = "VIEW"

// registerProducts needs explicit orders wherever two GET templates can
// claim the same path: "/products/status" fits both the optional status
// route and the single product route.
func (h *handlers) registerProducts(router *mux.Router, g *mux.Group) {
	router.HandleFunc("/prods", h.listProducts).Methods(http.MethodGet, http.MethodHead, MethodView)

	g.HandleFunc("/", h.listProducts).Methods(http.MethodGet, http.MethodHead, MethodView)
	g.HandleFunc("/", h.createProduct).Methods(http.MethodPost)
	g.HandleFunc("/widget/{widget:widget}", h.productsWithWidget).Methods(http.MethodGet).Order(1)
	g.HandleFunc("/status/{status:alpha?}", h.productsWithStatus).Methods(http.MethodGet).Order(2)
	g.HandleFunc("/{id:int:range(1000,3000)}", h.getProduct).Methods(http.MethodGet).Name(RouteGetByID).Order(3)
	g.HandleFunc("/{id}/orders/{custid}", h.productOrders).Methods(http.MethodGet)
	g.HandleFunc("/{prodId:int:range(1000,3000)}", h.createProductWithID).Methods(http.MethodPost)
	g.HandleFunc("/{id:int:range(1000,3000)}", h.changeProduct).Methods(http.MethodPut, http.MethodDelete)
}

func (h *handlers) listProducts(w http.ResponseWriter, _ *http.Request) {
	mux.ResponseJSON(w, http.StatusOK, []string{"product1", "product2"})
}

func (h *handlers) createProduct(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// productsWithWidget answers with the member spelling of the widget
// constraint, whatever case the path used.
func (h *handlers) productsWithWidget(w http.ResponseWriter, r *http.Request) {
	widget, _ := mux.VarGet(r, "widget")
	for _, member := range h.widgets {
		if strings.EqualFold(member, widget) {
			widget = member
			break
		}
	}

	mux.ResponseJSON(w, http.StatusOK, "widget-"+widget)
}

func (h *handlers) productsWithStatus(w http.ResponseWriter, r *http.Request) {
	status, ok := mux.VarGet(r, "status")
	if !ok || status == "" {
		status = "NULL"
	}

	mux.ResponseJSON(w, http.StatusOK, status)
}

func (h *handlers) getProduct(w http.ResponseWriter, _ *http.Request) {
	mux.ResponseJSON(w, http.StatusOK, "product")
}

func (h *handlers) productOrders(w http.ResponseWriter, r *http.Request) {
	custid, _ := mux.VarGet(r, "custid")
	mux.ResponseJSON(w, http.StatusOK, "product-orders"+custid)
}

func (h *handlers) createProductWithID(w http.ResponseWriter, r *http.Request) {
	prodID, _ := mux.VarGet(r, "prodId")

	u, err := h.router.Get(RouteGetByID).URL("id", prodID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "build product location",
			slog.String("id", prodID),
			slog.String("error", err.Error()),
		)
		mux.ResponseError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	u.Scheme = "http"
	if r.TLS != nil {
		u.Scheme = "https"
	}
	u.Host = r.Host

	w.Header().Set("Location", u.String())
	w.WriteHeader(http.StatusCreated)
}

func (h *handlers) changeProduct(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
