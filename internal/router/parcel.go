package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/parcelhub/parcel-server/internal/handler"
)

func registerParcelRoutes(r *echo.Echo, h *handler.Handlers) {
	parcels := r.Group("/parcels")

	parcels.GET("", handler.Handle(
		h.Parcel.Handler,
		h.Parcel.ListParcels,
		http.StatusOK,
		&handler.ListParcelsRequest{},
	))

	parcels.POST("", handler.Handle(
		h.Parcel.Handler,
		h.Parcel.CreateParcel,
		http.StatusCreated,
		&handler.CreateParcelRequest{},
	))

	parcels.GET("/:id", handler.Handle(
		h.Parcel.Handler,
		h.Parcel.GetParcel,
		http.StatusOK,
		&handler.ParcelIDRequest{},
	))

	parcels.DELETE("/:id", handler.Handle(
		h.Parcel.Handler,
		h.Parcel.DeleteParcel,
		http.StatusOK,
		&handler.ParcelIDRequest{},
	))

	r.POST("/create-payment-intent", handler.Handle(
		h.Payment.Handler,
		h.Payment.CreatePaymentIntent,
		http.StatusOK,
		&handler.CreatePaymentIntentRequest{},
	))
}
