package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"courtside/internal/apperrors"
	"courtside/internal/models"
	"courtside/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes mirroring the conditional-write semantics of the
// MongoDB implementations.

type fakeBookingRepo struct {
	mu         sync.Mutex
	bookings   map[primitive.ObjectID]*models.Booking
	promos     *fakePromoRepo
	failCreate error
}

func newFakeBookingRepo(promos *fakePromoRepo) *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: make(map[primitive.ObjectID]*models.Booking),
		promos:   promos,
	}
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()
	r.bookings[booking.ID] = booking
	return nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, apperrors.NotFound("booking")
	}
	copied := *booking
	return &copied, nil
}

func (r *fakeBookingRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (r *fakeBookingRepo) FindOverlapping(ctx context.Context, venueID primitive.ObjectID, start, end time.Time, excludeID *primitive.ObjectID) ([]*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findOverlappingLocked(venueID, start, end, excludeID), nil
}

func (r *fakeBookingRepo) findOverlappingLocked(venueID primitive.ObjectID, start, end time.Time, excludeID *primitive.ObjectID) []*models.Booking {
	var out []*models.Booking
	for _, b := range r.bookings {
		if b.VenueID != venueID || !b.IsActive() {
			continue
		}
		if excludeID != nil && b.ID == *excludeID {
			continue
		}
		if b.Overlaps(start, end) {
			out = append(out, b)
		}
	}
	return out
}

func (r *fakeBookingRepo) CreateWithNoOverlap(ctx context.Context, booking *models.Booking, promoIDs []primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	if len(r.findOverlappingLocked(booking.VenueID, booking.StartTime, booking.EndTime, nil)) > 0 {
		return apperrors.Conflict("venue is already booked for the requested time")
	}
	for _, promoID := range promoIDs {
		if err := r.promos.consume(promoID); err != nil {
			return err
		}
	}
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()
	stored := *booking
	r.bookings[booking.ID] = &stored
	return nil
}

func (r *fakeBookingRepo) UpdateWindowWithNoOverlap(ctx context.Context, id primitive.ObjectID, start, end time.Time, participants int, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return apperrors.NotFound("booking")
	}
	if len(r.findOverlappingLocked(b.VenueID, start, end, &id)) > 0 {
		return apperrors.Conflict("venue is already booked for the requested time")
	}
	if !b.IsActive() {
		return apperrors.Conflict("booking is no longer active")
	}
	b.StartTime = start
	b.EndTime = end
	b.Participants = participants
	if notes != "" {
		b.Notes = notes
	}
	return nil
}

func (r *fakeBookingRepo) ConfirmPayment(ctx context.Context, id primitive.ObjectID, transactionID, paymentMethod string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != models.BookingStatusPending {
		return apperrors.Conflict("booking is no longer pending")
	}
	b.Status = models.BookingStatusConfirmed
	b.PaymentStatus = models.PaymentStatusPaid
	b.TransactionID = transactionID
	b.PaymentMethod = paymentMethod
	return nil
}

func (r *fakeBookingRepo) CheckIn(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != models.BookingStatusConfirmed {
		return apperrors.Conflict("booking is no longer confirmed")
	}
	b.Status = models.BookingStatusCheckedIn
	b.CheckInTime = &at
	return nil
}

func (r *fakeBookingRepo) CheckOut(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != models.BookingStatusCheckedIn {
		return apperrors.Conflict("booking is not checked in")
	}
	b.Status = models.BookingStatusCompleted
	b.CheckOutTime = &at
	return nil
}

func (r *fakeBookingRepo) Cancel(ctx context.Context, id primitive.ObjectID, reason string, at time.Time, refundAmount float64, paymentStatus models.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || !b.IsActive() {
		return apperrors.Conflict("booking is no longer active")
	}
	b.Status = models.BookingStatusCancelled
	b.CancellationReason = reason
	b.CancelledAt = &at
	b.RefundAmount = refundAmount
	if refundAmount > 0 {
		b.PaymentStatus = paymentStatus
		b.RefundedAt = &at
	}
	return nil
}

func (r *fakeBookingRepo) MarkNoShow(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != models.BookingStatusConfirmed {
		return apperrors.Conflict("booking is no longer confirmed")
	}
	b.Status = models.BookingStatusNoShow
	return nil
}

func (r *fakeBookingRepo) GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) GetByVenue(ctx context.Context, venueID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, b := range r.bookings {
		if b.VenueID == venueID {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) GetByStatus(ctx context.Context, status models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return nil, 0, nil
}

func (r *fakeBookingRepo) GetByDateRange(ctx context.Context, startDate, endDate time.Time, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return nil, 0, nil
}

func (r *fakeBookingRepo) GetVenueCalendar(ctx context.Context, venueID primitive.ObjectID, day time.Time) ([]*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, b := range r.bookings {
		if b.VenueID != venueID || !b.IsActive() {
			continue
		}
		if b.StartTime.After(utils.StartOfDay(day)) && b.StartTime.Before(utils.EndOfDay(day)) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) GetNeedingReminder(ctx context.Context, now time.Time, lead time.Duration) ([]*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, b := range r.bookings {
		if b.Status != models.BookingStatusConfirmed || b.ReminderSentAt != nil {
			continue
		}
		if !b.StartTime.Before(now) && !b.StartTime.After(now.Add(lead)) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) MarkReminderSent(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.bookings[id]; ok {
		b.ReminderSentAt = &at
	}
	return nil
}

func (r *fakeBookingRepo) GetOverdueCheckIns(ctx context.Context, now time.Time) ([]*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, b := range r.bookings {
		if b.Status == models.BookingStatusConfirmed && b.EndTime.Before(now) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) GetVenueAnalytics(ctx context.Context, venueID primitive.ObjectID, startDate, endDate time.Time) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

func (r *fakeBookingRepo) GetDashboardStats(ctx context.Context, startDate, endDate time.Time) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

type fakeVenueRepo struct {
	venues map[primitive.ObjectID]*models.Venue
}

func newFakeVenueRepo(venues ...*models.Venue) *fakeVenueRepo {
	r := &fakeVenueRepo{venues: make(map[primitive.ObjectID]*models.Venue)}
	for _, v := range venues {
		r.venues[v.ID] = v
	}
	return r
}

func (r *fakeVenueRepo) Create(ctx context.Context, venue *models.Venue) error {
	if venue.ID.IsZero() {
		venue.ID = primitive.NewObjectID()
	}
	r.venues[venue.ID] = venue
	return nil
}

func (r *fakeVenueRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Venue, error) {
	venue, ok := r.venues[id]
	if !ok {
		return nil, apperrors.NotFound("venue")
	}
	return venue, nil
}

func (r *fakeVenueRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (r *fakeVenueRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	delete(r.venues, id)
	return nil
}

func (r *fakeVenueRepo) GetActive(ctx context.Context, params *utils.PaginationParams) ([]*models.Venue, int64, error) {
	return nil, 0, nil
}

func (r *fakeVenueRepo) GetByOwner(ctx context.Context, ownerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Venue, int64, error) {
	return nil, 0, nil
}

func (r *fakeVenueRepo) GetByCity(ctx context.Context, city string, params *utils.PaginationParams) ([]*models.Venue, int64, error) {
	return nil, 0, nil
}

type fakePromoRepo struct {
	mu     sync.Mutex
	promos map[primitive.ObjectID]*models.PromoCode
}

func newFakePromoRepo(promos ...*models.PromoCode) *fakePromoRepo {
	r := &fakePromoRepo{promos: make(map[primitive.ObjectID]*models.PromoCode)}
	for _, p := range promos {
		r.promos[p.ID] = p
	}
	return r
}

func (r *fakePromoRepo) consume(id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	promo, ok := r.promos[id]
	if !ok || !promo.IsActive || !promo.HasRemainingUses() {
		return apperrors.Conflict("promo code usage limit reached")
	}
	promo.UsedCount++
	return nil
}

func (r *fakePromoRepo) Create(ctx context.Context, promo *models.PromoCode) error {
	if promo.ID.IsZero() {
		promo.ID = primitive.NewObjectID()
	}
	r.promos[promo.ID] = promo
	return nil
}

func (r *fakePromoRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.PromoCode, error) {
	promo, ok := r.promos[id]
	if !ok {
		return nil, apperrors.NotFound("promo code")
	}
	return promo, nil
}

func (r *fakePromoRepo) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	for _, p := range r.promos {
		if p.Code == strings.ToUpper(code) {
			return p, nil
		}
	}
	return nil, apperrors.NotFound("promo code")
}

func (r *fakePromoRepo) GetByCodes(ctx context.Context, codes []string) ([]*models.PromoCode, error) {
	var out []*models.PromoCode
	for _, code := range codes {
		if p, err := r.GetByCode(ctx, code); err == nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePromoRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (r *fakePromoRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	delete(r.promos, id)
	return nil
}

func (r *fakePromoRepo) GetActive(ctx context.Context, params *utils.PaginationParams) ([]*models.PromoCode, int64, error) {
	return nil, 0, nil
}

func (r *fakePromoRepo) List(ctx context.Context, params *utils.PaginationParams) ([]*models.PromoCode, int64, error) {
	return nil, 0, nil
}

func (r *fakePromoRepo) IncrementUsage(ctx context.Context, id primitive.ObjectID) error {
	return r.consume(id)
}

// fakeCache records advisory-lock and invalidation traffic.
type fakeCache struct {
	mu      sync.Mutex
	held    map[string]bool
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{held: make(map[string]bool)}
}

// hold pre-claims a key so SetNX on it reports not-acquired.
func (c *fakeCache) hold(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.held[key] = true
}

func (c *fakeCache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.held[key] {
		return false, nil
	}
	c.held[key] = true
	return true, nil
}

func (c *fakeCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.held, key)
		c.deleted = append(c.deleted, key)
	}
	return nil
}

func (c *fakeCache) deletedKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.deleted...)
}

// fakeNotifier counts notifications per type instead of recording them.
type fakeNotifier struct {
	mu        sync.Mutex
	created   int
	confirmed int
	cancelled int
	reminders int
	noShows   int
}

func (n *fakeNotifier) NotifyBookingCreated(ctx context.Context, booking *models.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created++
}

func (n *fakeNotifier) NotifyBookingConfirmed(ctx context.Context, booking *models.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed++
}

func (n *fakeNotifier) NotifyBookingCancelled(ctx context.Context, booking *models.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled++
}

func (n *fakeNotifier) NotifyBookingReminder(ctx context.Context, booking *models.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminders++
}

func (n *fakeNotifier) NotifyBookingNoShow(ctx context.Context, booking *models.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.noShows++
}

func (n *fakeNotifier) GetUserNotifications(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Notification, int64, error) {
	return nil, 0, nil
}
