package handler

import (
	"github.com/parcelhub/parcel-server/internal/server"
	"github.com/parcelhub/parcel-server/internal/service"
)

// Handlers groups every HTTP handler so the router receives one value.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Parcel  *ParcelHandler
	Payment *PaymentHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s, services.Parcel),
		OpenAPI: NewOpenAPIHandler(s),
		Parcel:  NewParcelHandler(s, services.Parcel),
		Payment: NewPaymentHandler(s, services.Payment),
	}
}
