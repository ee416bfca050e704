package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/parcelhub/parcel-server/internal/dberr"
	"github.com/parcelhub/parcel-server/internal/model"
	"github.com/parcelhub/parcel-server/internal/server"
	"github.com/parcelhub/parcel-server/internal/service"
	"github.com/parcelhub/parcel-server/internal/validation"
)

type ParcelHandler struct {
	Handler
	parcelService *service.ParcelService
}

func NewParcelHandler(s *server.Server, parcelService *service.ParcelService) *ParcelHandler {
	return &ParcelHandler{
		Handler:       NewHandler(s),
		parcelService: parcelService,
	}
}

// ListParcelsRequest filters by creator. An empty Email lists every parcel.
type ListParcelsRequest struct {
	Email string `query:"email"`
}

func (r *ListParcelsRequest) Validate() error {
	return nil
}

// ParcelIDRequest carries the :id path parameter. Its format is checked by
// the service so malformed ids get the dedicated PARCEL_INVALID error.
type ParcelIDRequest struct {
	ID string `param:"id" validate:"required"`
}

func (r *ParcelIDRequest) Validate() error {
	return validation.Struct(r)
}

// CreateParcelRequest is the raw JSON object sent by the client. Fields are
// stored without inspection.
type CreateParcelRequest struct {
	Fields model.Document
}

func (r *CreateParcelRequest) UnmarshalJSON(data []byte) error {
	return r.Fields.UnmarshalJSON(data)
}

func (r *CreateParcelRequest) Validate() error {
	return nil
}

func (h *ParcelHandler) ListParcels(c echo.Context, req *ListParcelsRequest) ([]model.Parcel, error) {
	parcels, err := h.parcelService.List(c.Request().Context(), req.Email)
	if err != nil {
		return nil, dberr.HandleError(err, "Failed to fetch parcels")
	}
	return parcels, nil
}

func (h *ParcelHandler) GetParcel(c echo.Context, req *ParcelIDRequest) (*model.Parcel, error) {
	parcel, err := h.parcelService.GetByID(c.Request().Context(), req.ID)
	if err != nil {
		return nil, dberr.HandleError(err, "Failed to fetch parcel")
	}
	return parcel, nil
}

// CreateParcel answers 201. An empty body creates an empty parcel.
func (h *ParcelHandler) CreateParcel(c echo.Context, req *CreateParcelRequest) (*model.InsertResult, error) {
	fields := req.Fields
	if fields == nil {
		fields = model.Document{}
	}

	res, err := h.parcelService.Create(c.Request().Context(), fields)
	if err != nil {
		return nil, dberr.HandleError(err, "Failed to create parcel")
	}
	return res, nil
}

func (h *ParcelHandler) DeleteParcel(c echo.Context, req *ParcelIDRequest) (*model.DeleteResult, error) {
	res, err := h.parcelService.Delete(c.Request().Context(), req.ID)
	if err != nil {
		return nil, dberr.HandleError(err, "Failed to delete parcel")
	}
	return res, nil
}
