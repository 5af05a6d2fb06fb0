package api

import (
	"curevet/internal/service"
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type AdminHandler struct {
	Service *service.AdminService
}

func NewAdminHandler(svc *service.AdminService) *AdminHandler {
	return &AdminHandler{Service: svc}
}

func (h *AdminHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	serviceKey := r.URL.Query().Get("service")
	reservations, err := h.Service.ListReservations(r.Context(), date, serviceKey)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}
	writeJSON(w, http.StatusOK, reservations)
}

func (h *AdminHandler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid ID"})
		return
	}
	if err := h.Service.DeleteReservation(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Reservation not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Could not delete reservation"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Reservation deleted"})
}
