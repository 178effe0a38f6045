package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/funnel"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/logger"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/service/booking"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/service/fleet"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/storage"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/validation"
	"github.com/gin-gonic/gin"
)

// FunnelHandler serves the three booking stages. Every stage after the
// catalog sits behind the guard, and each successful POST advances the
// session one stage.
type FunnelHandler struct {
	guard       *funnel.Guard
	fleet       fleet.FleetUseCase
	bookings    booking.BookingUseCase
	uploader    storage.Uploader
	proofBucket string
	validator   *validation.Validator
	onBooked    func(*domain.Booking)
	log         *logger.Logger
}

type FunnelOption func(*FunnelHandler)

func WithBookedHook(fn func(*domain.Booking)) FunnelOption {
	return func(h *FunnelHandler) {
		h.onBooked = fn
	}
}

func WithFunnelLogger(log *logger.Logger) FunnelOption {
	return func(h *FunnelHandler) {
		h.log = log
	}
}

func NewFunnelHandler(
	guard *funnel.Guard,
	fleetService fleet.FleetUseCase,
	bookingService booking.BookingUseCase,
	uploader storage.Uploader,
	proofBucket string,
	opts ...FunnelOption,
) *FunnelHandler {
	h := &FunnelHandler{
		guard:       guard,
		fleet:       fleetService,
		bookings:    bookingService,
		uploader:    uploader,
		proofBucket: proofBucket,
		validator:   validation.New(),
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *FunnelHandler) Register(router *gin.RouterGroup) {
	flow := router.Group("", h.guard.Sessions())
	flow.POST("/fleet/:id/select", h.selectVehicle)
	flow.GET("/booking", h.guard.Require(funnel.RequireBooking), h.bookingForm)
	flow.POST("/booking", h.guard.Require(funnel.RequireBooking), h.saveDetails)
	flow.GET("/checkout", h.guard.Require(funnel.RequireCheckout), h.checkoutSummary)
	flow.POST("/checkout", h.guard.Require(funnel.RequireCheckout), h.checkout)
	flow.GET("/booking/submitted", h.guard.Require(funnel.RequireSubmitted), h.submitted)
	flow.POST("/booking/reset", h.reset)

	router.GET("/track/:reference", h.track)
}

type sessionView struct {
	Progress  funnel.Step     `json:"progress"`
	Draft     funnel.Draft    `json:"draft"`
	Reference string          `json:"reference,omitempty"`
	Vehicle   *domain.Vehicle `json:"vehicle,omitempty"`
	Quote     *fleet.Quote    `json:"quote,omitempty"`
}

type detailsRequest struct {
	PickupDate     time.Time `json:"pickup_date" validate:"required"`
	ReturnDate     time.Time `json:"return_date" validate:"required"`
	PickupLocation string    `json:"pickup_location" validate:"required,max=200"`
	ReturnLocation string    `json:"return_location" validate:"max=200"`
	CustomerName   string    `json:"customer_name" validate:"required,max=120"`
	CustomerEmail  string    `json:"customer_email" validate:"required,email"`
	CustomerPhone  string    `json:"customer_phone" validate:"required,min=7,max=32"`
	Notes          string    `json:"notes" validate:"max=1000"`
}

// selectVehicle starts or continues a flow. Choosing a vehicle after a
// submitted booking starts over with a clean draft.
func (h *FunnelHandler) selectVehicle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	vehicle, err := h.fleet.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !vehicle.Available {
		fail(c, validation.Fail("vehicle", "is not available for booking"))
		return
	}

	session := funnel.SessionFrom(c)
	if session.Progress == funnel.Submitted {
		session.Reset()
	}
	session.Draft.VehicleID = vehicle.ID
	session.Advance(funnel.AtBooking)
	if !h.save(c, session) {
		return
	}
	public := vehicle.Public()
	respond(c, http.StatusOK, sessionView{Progress: session.Progress, Draft: session.Draft, Vehicle: &public})
}

func (h *FunnelHandler) bookingForm(c *gin.Context) {
	session := funnel.SessionFrom(c)
	view, err := h.view(c.Request.Context(), session)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, view)
}

func (h *FunnelHandler) saveDetails(c *gin.Context) {
	var req detailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.CustomerEmail = strings.ToLower(strings.TrimSpace(req.CustomerEmail))
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	if err := h.validator.Struct(req); err != nil {
		fail(c, err)
		return
	}
	if !req.ReturnDate.After(req.PickupDate) {
		fail(c, validation.Fail("ReturnDate", "must be after the pickup date"))
		return
	}

	session := funnel.SessionFrom(c)
	session.Draft = funnel.Draft{
		VehicleID:      session.Draft.VehicleID,
		PickupDate:     req.PickupDate,
		ReturnDate:     req.ReturnDate,
		PickupLocation: strings.TrimSpace(req.PickupLocation),
		ReturnLocation: strings.TrimSpace(req.ReturnLocation),
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
		Notes:          strings.TrimSpace(req.Notes),
	}
	view, err := h.view(c.Request.Context(), session)
	if err != nil {
		fail(c, err)
		return
	}
	session.Advance(funnel.AtCheckout)
	if !h.save(c, session) {
		return
	}
	view.Progress = session.Progress
	respond(c, http.StatusOK, view)
}

func (h *FunnelHandler) checkoutSummary(c *gin.Context) {
	view, err := h.view(c.Request.Context(), funnel.SessionFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, view)
}

// checkout accepts a multipart form with payment_method and an optional
// payment_proof file, then creates the booking from the session draft.
func (h *FunnelHandler) checkout(c *gin.Context) {
	ctx := c.Request.Context()
	session := funnel.SessionFrom(c)
	if session.Progress >= funnel.Submitted {
		respond(c, http.StatusOK, gin.H{"reference": session.Reference})
		return
	}

	view, err := h.view(ctx, session)
	if err != nil {
		fail(c, err)
		return
	}
	if view.Quote == nil {
		fail(c, validation.Fail("draft", "booking details are incomplete"))
		return
	}

	proofURL, err := h.uploadProof(c, session.ID)
	if err != nil {
		fail(c, err)
		return
	}

	d := session.Draft
	created, err := h.bookings.CreateBooking(ctx, booking.CreateBookingInput{
		VehicleID:       d.VehicleID,
		CustomerName:    d.CustomerName,
		CustomerEmail:   d.CustomerEmail,
		CustomerPhone:   d.CustomerPhone,
		PickupDate:      d.PickupDate,
		ReturnDate:      d.ReturnDate,
		PickupLocation:  d.PickupLocation,
		ReturnLocation:  d.ReturnLocation,
		TotalCents:      view.Quote.TotalCents,
		PaymentMethod:   c.PostForm("payment_method"),
		PaymentProofURL: proofURL,
		Notes:           d.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	if h.onBooked != nil {
		h.onBooked(created)
	}

	session.Reference = created.Reference
	session.Advance(funnel.Submitted)
	if err := h.guard.Save(c, session); err != nil {
		h.log.Warn("funnel session not saved after checkout", "reference", created.Reference, "error", err)
	}
	respond(c, http.StatusCreated, created)
}

func (h *FunnelHandler) uploadProof(c *gin.Context, sessionID string) (string, error) {
	header, err := c.FormFile("payment_proof")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("%w: payment_proof: %v", domain.ErrValidation, err)
	}
	return storage.Put(c.Request.Context(), h.uploader, h.proofBucket, "proofs/"+sessionID, storage.FromMultipart(header))
}

func (h *FunnelHandler) submitted(c *gin.Context) {
	session := funnel.SessionFrom(c)
	respond(c, http.StatusOK, gin.H{"reference": session.Reference})
}

func (h *FunnelHandler) reset(c *gin.Context) {
	session := funnel.SessionFrom(c)
	session.Reset()
	if !h.save(c, session) {
		return
	}
	respond(c, http.StatusOK, sessionView{Progress: session.Progress, Draft: session.Draft})
}

func (h *FunnelHandler) track(c *gin.Context) {
	b, err := h.bookings.TrackBooking(c.Request.Context(), c.Param("reference"), c.Query("token"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, b)
}

// view loads the selected vehicle and, once dates are known, prices the
// rental.
func (h *FunnelHandler) view(ctx context.Context, session *funnel.Session) (sessionView, error) {
	view := sessionView{Progress: session.Progress, Draft: session.Draft, Reference: session.Reference}
	if session.Draft.VehicleID == 0 {
		return view, nil
	}
	vehicle, err := h.fleet.GetByID(ctx, session.Draft.VehicleID)
	if err != nil {
		return view, err
	}
	public := vehicle.Public()
	view.Vehicle = &public
	if session.Draft.HasDates() {
		quote, err := fleet.QuoteRental(vehicle.DailyRateCents, session.Draft.PickupDate, session.Draft.ReturnDate)
		if err != nil {
			return view, err
		}
		view.Quote = &quote
	}
	return view, nil
}

func (h *FunnelHandler) save(c *gin.Context, session *funnel.Session) bool {
	if err := h.guard.Save(c, session); err != nil {
		fail(c, fmt.Errorf("%w: save funnel session: %v", domain.ErrWrite, err))
		return false
	}
	return true
}
