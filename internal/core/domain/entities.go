package domain

import (
	"time"
)

// Role is a user's role in the marketplace.
type Role string

const (
	RoleStudent    Role = "student"
	RoleNonStudent Role = "non_student"
	RoleOwner      Role = "owner"
	RoleAdmin      Role = "admin"
)

// User represents an account: a tenant (student or not), an owner, or an admin.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	University   string    `json:"university,omitempty"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
}

// University is an entry in the static campus catalog used as a reference
// point for proximity search.
type University struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Location GeoPoint `json:"location"`
	Address  string   `json:"address"`
}

// ListingType categorises a rental property.
type ListingType string

const (
	TypeApartment ListingType = "apartment"
	TypeHouse     ListingType = "house"
	TypeStudio    ListingType = "studio"
	TypeRoom      ListingType = "room"
)

// ListingStatus is the moderation/rental state of a listing.
type ListingStatus string

const (
	ListingPending  ListingStatus = "pending"
	ListingApproved ListingStatus = "approved"
	ListingRejected ListingStatus = "rejected"
	ListingRented   ListingStatus = "rented"
)

// Listing is a rental property posted by an owner.
type Listing struct {
	ID            string         `json:"id"`
	OwnerID       string         `json:"owner_id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Address       string         `json:"address"`
	Location      GeoPoint       `json:"location"`
	Price         float64        `json:"price"` // per night
	Surface       int            `json:"surface"`
	Rooms         int            `json:"rooms"`
	Bathrooms     int            `json:"bathrooms"`
	Type          ListingType    `json:"type"`
	IsFurnished   bool           `json:"is_furnished"`
	HasKitchen    bool           `json:"has_kitchen"`
	HasWifi       bool           `json:"has_wifi"`
	HasParking    bool           `json:"has_parking"`
	Status        ListingStatus  `json:"status"`
	AvailableFrom time.Time      `json:"available_from"`
	Photos        []ListingPhoto `json:"photos,omitempty"`
	DistanceKm    *float64       `json:"distance_km,omitempty"` // computed field
	CreatedAt     time.Time      `json:"created_at"`
}

// ListingPhoto is a reference to an uploaded photo; storage is external.
type ListingPhoto struct {
	ID        string `json:"id"`
	ListingID string `json:"listing_id"`
	Path      string `json:"path"`
	IsMain    bool   `json:"is_main"`
}

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
)

// Reservation is a tenant's booking request for a listing.
type Reservation struct {
	ID         string            `json:"id"`
	TenantID   string            `json:"tenant_id"`
	ListingID  string            `json:"listing_id"`
	StartDate  time.Time         `json:"start_date"`
	EndDate    time.Time         `json:"end_date"`
	TotalPrice float64           `json:"total_price"`
	Status     ReservationStatus `json:"status"`
	Message    string            `json:"message,omitempty"`
	Listing    *Listing          `json:"listing,omitempty"`
	Tenant     *User             `json:"tenant,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// ReportStatus is the moderation state of a report.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// Report flags a listing for admin review.
type Report struct {
	ID          string       `json:"id"`
	ReporterID  string       `json:"reporter_id"`
	ListingID   string       `json:"listing_id"`
	Reason      string       `json:"reason"`
	Description string       `json:"description,omitempty"`
	Status      ReportStatus `json:"status"`
	Listing     *Listing     `json:"listing,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Notification is an in-app message for a user.
type Notification struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Type      string         `json:"type"` // "reservation" | "moderation" | "system"
	Data      map[string]any `json:"data,omitempty"`
	IsRead    bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
}

// AdminStats is the moderation dashboard summary.
type AdminStats struct {
	TotalUsers        int `json:"total_users"`
	TotalListings     int `json:"total_listings"`
	PendingListings   int `json:"pending_listings"`
	TotalReservations int `json:"total_reservations"`
	PendingReports    int `json:"pending_reports"`
}
