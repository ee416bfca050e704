// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data
package service

import (
	"github.com/parcelhub/parcel-server/internal/lib/job"
	"github.com/parcelhub/parcel-server/internal/lib/payment"
	"github.com/parcelhub/parcel-server/internal/repository"
	"github.com/parcelhub/parcel-server/internal/server"
)

type Services struct {
	Parcel  *ParcelService
	Payment *PaymentService
	Job     *job.JobService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	// A nil *job.JobService stored in the interface would not compare equal
	// to nil.
	var notifier ParcelNotifier
	if s.Job != nil {
		notifier = s.Job
	}

	gateway := payment.NewStripeGateway(s.Config.Payment, s.Logger)

	return &Services{
		Parcel:  NewParcelService(s, repos.Parcels, notifier),
		Payment: NewPaymentService(s, gateway),
		Job:     s.Job,
	}, nil
}
