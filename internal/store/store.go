// Package store provides persistence primitives and driver abstractions.
package store

import (
	"context"
	"errors"
)

// Common errors for store operations.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrClosed        = errors.New("store closed")
)

// Driver defines the interface for a persistence backend.
// Implementations must be safe for concurrent use.
type Driver interface {
	// Init initializes the driver (create tables, load data, etc).
	Init(ctx context.Context) error

	// Close releases resources held by the driver.
	Close() error

	// Name returns the driver name (sqlite).
	Name() string
}

// Quote categories. Comparisons never cross categories.
const (
	QuoteCategoryVenue          = "venue"
	QuoteCategoryCatering       = "catering"
	QuoteCategoryDJ             = "dj"
	QuoteCategoryPhotographer   = "photographer"
	QuoteCategoryHost           = "host"
	QuoteCategoryDecoration     = "decoration"
	QuoteCategoryTransportation = "transportation"
	QuoteCategoryOther          = "other"
)

// QuoteCategories lists all valid quote categories.
var QuoteCategories = []string{
	QuoteCategoryVenue,
	QuoteCategoryCatering,
	QuoteCategoryDJ,
	QuoteCategoryPhotographer,
	QuoteCategoryHost,
	QuoteCategoryDecoration,
	QuoteCategoryTransportation,
	QuoteCategoryOther,
}

// Quote availability states.
const (
	AvailabilityAvailable   = "available"
	AvailabilityTentative   = "tentative"
	AvailabilityUnavailable = "unavailable"
	AvailabilityUnknown     = "unknown"
)

// Task statuses.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// Issue statuses.
const (
	IssueStatusOpen       = "open"
	IssueStatusInProgress = "in_progress"
	IssueStatusResolved   = "resolved"
)

// Ledger entry types.
const (
	ExpenseTypeIncome  = "income"
	ExpenseTypeExpense = "expense"
)

// Event is a scheduled PTA activity.
type Event struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	StartsAt    int64  `json:"starts_at" gorm:"index"`
	EndsAt      int64  `json:"ends_at"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// Task is an assignable unit of committee work.
type Task struct {
	ID           string `json:"id" gorm:"primaryKey"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Status       string `json:"status"` // todo, in_progress, done
	Priority     string `json:"priority"`
	AssigneeName string `json:"assignee_name"`
	EventID      string `json:"event_id,omitempty" gorm:"index"`
	DueAt        int64  `json:"due_at"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

// Issue is a tracked problem raised by parents or staff.
type Issue struct {
	ID           string `json:"id" gorm:"primaryKey"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Status       string `json:"status"` // open, in_progress, resolved
	Priority     string `json:"priority"`
	ReporterName string `json:"reporter_name"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

// Protocol is the minutes of a committee meeting.
type Protocol struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Title       string `json:"title"`
	MeetingDate int64  `json:"meeting_date" gorm:"index"`
	Content     string `json:"content"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// Expense is a ledger entry. Amount is in agorot to avoid float drift;
// Type distinguishes income from expense rows.
type Expense struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Type        string `json:"type"` // income, expense
	Category    string `json:"category"`
	OccurredAt  int64  `json:"occurred_at" gorm:"index"`
	ReceiptURL  string `json:"receipt_url,omitempty"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// Vendor is a service provider in the directory.
type Vendor struct {
	ID        string `json:"id" gorm:"primaryKey"`
	Name      string `json:"name"`
	Category  string `json:"category" gorm:"index"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Notes     string `json:"notes"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// Committee is a working group with a member roster.
type Committee struct {
	ID          string   `json:"id" gorm:"primaryKey"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Members     []string `json:"members" gorm:"serializer:json"`
	CreatedAt   int64    `json:"created_at"`
	UpdatedAt   int64    `json:"updated_at"`
}

// Contact is a directory entry for school and committee contacts.
type Contact struct {
	ID        string `json:"id" gorm:"primaryKey"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// PushSubscription is a registered device endpoint for push delivery.
type PushSubscription struct {
	ID         string `json:"id" gorm:"primaryKey"`
	Endpoint   string `json:"endpoint" gorm:"uniqueIndex"`
	P256dhKey  string `json:"p256dh_key"`
	AuthKey    string `json:"auth_key"`
	DeviceName string `json:"device_name"`
	CreatedAt  int64  `json:"created_at"`
}

// NotificationLog records a dispatched push notification and its fanout counts.
type NotificationLog struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Icon        string `json:"icon,omitempty"`
	URL         string `json:"url,omitempty"`
	SentCount   int    `json:"sent_count"`
	FailedCount int    `json:"failed_count"`
	CreatedAt   int64  `json:"created_at"`
}

// PromQuote is a vendor's priced offer for one service category at a planning event.
type PromQuote struct {
	ID                  string   `json:"id" gorm:"primaryKey"`
	EventID             string   `json:"event_id" gorm:"index"`
	VendorName          string   `json:"vendor_name"`
	VendorPhone         string   `json:"vendor_phone"`
	Category            string   `json:"category" gorm:"index"`
	TotalPrice          float64  `json:"total_price"`
	PricePerParticipant *float64 `json:"price_per_participant,omitempty"`
	Availability        string   `json:"availability"` // available, tentative, unavailable, unknown
	Rating              *float64 `json:"rating,omitempty"`
	Pros                string   `json:"pros"`
	Cons                string   `json:"cons"`
	CreatedAt           int64    `json:"created_at"`
	UpdatedAt           int64    `json:"updated_at"`
}

// EventStore defines operations for event persistence.
type EventStore interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	UpdateEvent(ctx context.Context, event *Event) error
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context) ([]*Event, error)
}

// TaskStore defines operations for task persistence.
type TaskStore interface {
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, id string) (*Task, error)
	UpdateTask(ctx context.Context, task *Task) error
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context) ([]*Task, error)
}

// IssueStore defines operations for issue persistence.
type IssueStore interface {
	CreateIssue(ctx context.Context, issue *Issue) error
	GetIssue(ctx context.Context, id string) (*Issue, error)
	UpdateIssue(ctx context.Context, issue *Issue) error
	DeleteIssue(ctx context.Context, id string) error
	ListIssues(ctx context.Context) ([]*Issue, error)
}

// ProtocolStore defines operations for meeting protocol persistence.
type ProtocolStore interface {
	CreateProtocol(ctx context.Context, protocol *Protocol) error
	GetProtocol(ctx context.Context, id string) (*Protocol, error)
	UpdateProtocol(ctx context.Context, protocol *Protocol) error
	DeleteProtocol(ctx context.Context, id string) error
	ListProtocols(ctx context.Context) ([]*Protocol, error)
}

// ExpenseStore defines operations for ledger persistence.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, expense *Expense) error
	GetExpense(ctx context.Context, id string) (*Expense, error)
	UpdateExpense(ctx context.Context, expense *Expense) error
	DeleteExpense(ctx context.Context, id string) error
	ListExpenses(ctx context.Context) ([]*Expense, error)
}

// VendorStore defines operations for vendor directory persistence.
type VendorStore interface {
	CreateVendor(ctx context.Context, vendor *Vendor) error
	GetVendor(ctx context.Context, id string) (*Vendor, error)
	UpdateVendor(ctx context.Context, vendor *Vendor) error
	DeleteVendor(ctx context.Context, id string) error
	ListVendors(ctx context.Context) ([]*Vendor, error)
}

// CommitteeStore defines operations for committee persistence.
type CommitteeStore interface {
	CreateCommittee(ctx context.Context, committee *Committee) error
	GetCommittee(ctx context.Context, id string) (*Committee, error)
	UpdateCommittee(ctx context.Context, committee *Committee) error
	DeleteCommittee(ctx context.Context, id string) error
	ListCommittees(ctx context.Context) ([]*Committee, error)
}

// ContactStore defines operations for contact directory persistence.
type ContactStore interface {
	CreateContact(ctx context.Context, contact *Contact) error
	GetContact(ctx context.Context, id string) (*Contact, error)
	UpdateContact(ctx context.Context, contact *Contact) error
	DeleteContact(ctx context.Context, id string) error
	ListContacts(ctx context.Context) ([]*Contact, error)
}

// PushStore defines operations for push subscriptions and dispatch logs.
type PushStore interface {
	CreateSubscription(ctx context.Context, sub *PushSubscription) error
	DeleteSubscriptionByEndpoint(ctx context.Context, endpoint string) error
	ListSubscriptions(ctx context.Context) ([]*PushSubscription, error)
	CreateNotificationLog(ctx context.Context, log *NotificationLog) error
	ListNotificationLogs(ctx context.Context) ([]*NotificationLog, error)
}

// QuoteStore defines operations for prom quote persistence.
type QuoteStore interface {
	CreateQuote(ctx context.Context, quote *PromQuote) error
	GetQuote(ctx context.Context, id string) (*PromQuote, error)
	UpdateQuote(ctx context.Context, quote *PromQuote) error
	DeleteQuote(ctx context.Context, id string) error
	ListQuotesByEvent(ctx context.Context, eventID string) ([]*PromQuote, error)
}
