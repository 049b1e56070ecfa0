package api

import (
	"net/http"

	"github.com/vitalvas/strela/mux"
)

// Eight-character order IDs and status names overlap: "complete" is both.
// The status route is ordered first so that it wins.
func (h *handlers) registerOrders(g *mux.Group) {
	g.HandleFunc("/{id:length(8)}", h.getOrder).Methods(http.MethodGet).Order(2)
	g.HandleFunc("/{status:regex(^(?i)(new|complete|pending)$)}", h.ordersWithStatus).Methods(http.MethodGet).Order(1)
}

func (h *handlers) getOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := mux.VarGet(r, "id")
	mux.ResponseJSON(w, http.StatusOK, "order-"+id)
}

func (h *handlers) ordersWithStatus(w http.ResponseWriter, _ *http.Request) {
	mux.ResponseJSON(w, http.StatusOK, []string{"status1", "status2"})
}
