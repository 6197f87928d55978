// Package sqlite implements the store driver on SQLite via GORM.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vaadly/vaadly/internal/store"
)

func init() {
	store.Register("sqlite", func(cfg *store.DriverConfig) (store.Driver, error) {
		return New(cfg)
	})
}

// Driver is the SQLite-backed store driver.
type Driver struct {
	db      *gorm.DB
	dataDir string
}

// New creates a SQLite driver rooted at cfg.DataDir.
func New(cfg *store.DriverConfig) (*Driver, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("sqlite: data_dir is required")
	}
	return &Driver{dataDir: cfg.DataDir}, nil
}

// Init opens the database and migrates the schema.
func (d *Driver) Init(ctx context.Context) error {
	if err := os.MkdirAll(d.dataDir, 0o700); err != nil {
		return fmt.Errorf("sqlite: create data dir: %w", err)
	}

	path := filepath.Join(d.dataDir, "vaadly.db")
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000&_journal_mode=WAL"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	if err := db.WithContext(ctx).AutoMigrate(
		&store.Event{},
		&store.Task{},
		&store.Issue{},
		&store.Protocol{},
		&store.Expense{},
		&store.Vendor{},
		&store.Committee{},
		&store.Contact{},
		&store.PushSubscription{},
		&store.NotificationLog{},
		&store.PromQuote{},
	); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}

	d.db = db
	return nil
}

// Close closes the underlying database connection.
func (d *Driver) Close() error {
	if d.db == nil {
		return nil
	}
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Name returns the driver name.
func (d *Driver) Name() string {
	return "sqlite"
}

// DB exposes the gorm handle for tests.
func (d *Driver) DB() *gorm.DB {
	return d.db
}

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}

// deleteByID deletes one row of model by primary key, mapping a missing
// row to store.ErrNotFound.
func (d *Driver) deleteByID(ctx context.Context, model any, id string) error {
	result := d.db.WithContext(ctx).Delete(model, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// --- Events ---

func (d *Driver) CreateEvent(ctx context.Context, event *store.Event) error {
	return d.db.WithContext(ctx).Create(event).Error
}

func (d *Driver) GetEvent(ctx context.Context, id string) (*store.Event, error) {
	var event store.Event
	if err := d.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &event, nil
}

func (d *Driver) UpdateEvent(ctx context.Context, event *store.Event) error {
	result := d.db.WithContext(ctx).Model(&store.Event{}).Where("id = ?", event.ID).
		Select("*").Omit("id", "created_at").Updates(event)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *Driver) DeleteEvent(ctx context.Context, id string) error {
	return d.deleteByID(ctx, &store.Event{}, id)
}

func (d *Driver) ListEvents(ctx context.Context) ([]*store.Event, error) {
	var events []*store.Event
	if err := d.db.WithContext(ctx).Order("starts_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// --- Tasks ---

func (d *Driver) CreateTask(ctx context.Context, task *store.Task) error {
	return d.db.WithContext(ctx).Create(task).Error
}

func (d *Driver) GetTask(ctx context.Context, id string) (*store.Task, error) {
	var task store.Task
	if err := d.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &task, nil
}

func (d *Driver) UpdateTask(ctx context.Context, task *store.Task) error {
	result := d.db.WithContext(ctx).Model(&store.Task{}).Where("id = ?", task.ID).
		Select("*").Omit("id", "created_at").Updates(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *Driver) DeleteTask(ctx context.Context, id string) error {
	return d.deleteByID(ctx, &store.Task{}, id)
}

func (d *Driver) ListTasks(ctx context.Context) ([]*store.Task, error) {
	var tasks []*store.Task
	if err := d.db.WithContext(ctx).Order("due_at ASC, created_at ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// --- Issues ---

func (d *Driver) CreateIssue(ctx context.Context, issue *store.Issue) error {
	return d.db.WithContext(ctx).Create(issue).Error
}

func (d *Driver) GetIssue(ctx context.Context, id string) (*store.Issue, error) {
	var issue store.Issue
	if err := d.db.WithContext(ctx).First(&issue, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &issue, nil
}

func (d *Driver) UpdateIssue(ctx context.Context, issue *store.Issue) error {
	result := d.db.WithContext(ctx).Model(&store.Issue{}).Where("id = ?", issue.ID).
		Select("*").Omit("id", "created_at").Updates(issue)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *Driver) DeleteIssue(ctx context.Context, id string) error {
	return d.deleteByID(ctx, &store.Issue{}, id)
}

func (d *Driver) ListIssues(ctx context.Context) ([]*store.Issue, error) {
	var issues []*store.Issue
	if err := d.db.WithContext(ctx).Order("created_at DESC").Find(&issues).Error; err != nil {
		return nil, err
	}
	return issues, nil
}

// --- Protocols ---

func (d *Driver) CreateProtocol(ctx context.Context, protocol *store.Protocol) error {
	return d.db.WithContext(ctx).Create(protocol).Error
}

func (d *Driver) GetProtocol(ctx context.Context, id string) (*store.Protocol, error) {
	var protocol store.Protocol
	if err := d.db.WithContext(ctx).First(&protocol, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &protocol, nil
}

func (d *Driver) UpdateProtocol(ctx context.Context, protocol *store.Protocol) error {
	result := d.db.WithContext(ctx).Model(&store.Protocol{}).Where("id = ?", protocol.ID).
		Select("*").Omit("id", "created_at").Updates(protocol)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *Driver) DeleteProtocol(ctx context.Context, id string) error {
	return d.deleteByID(ctx, &store.Protocol{}, id)
}

func (d *Driver) ListProtocols(ctx context.Context) ([]*store.Protocol, error) {
	var protocols []*store.Protocol
	if err := d.db.WithContext(ctx).Order("meeting_date DESC").Find(&protocols).Error; err != nil {
		return nil, err
	}
	return protocols, nil
}

// --- Expenses ---

func (d *Driver) CreateExpense(ctx context.Context, expense *store.Expense) error {
	return d.db.WithContext(ctx).Create(expense).Error
}

func (d *Driver) GetExpense(ctx context.Context, id string) (*store.Expense, error) {
	var expense store.Expense
	if err := d.db.WithContext(ctx).First(&expense, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &expense, nil
}

func (d *Driver) UpdateExpense(ctx context.Context, expense *store.Expense) error {
	result := d.db.WithContext(ctx).Model(&store.Expense{}).Where("id = ?", expense.ID).
		Select("*").Omit("id", "created_at").Updates(expense)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *Driver) DeleteExpense(ctx context.Context, id string) error {
	return d.deleteByID(ctx, &store.Expense{}, id)
}

func (d *Driver) ListExpenses(ctx context.Context) ([]*store.Expense, error) {
	var expenses []*store.Expense
	if err := d.db.WithContext(ctx).Order("occurred_at DESC").Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// --- Vendors ---

func (d *Driver) CreateVendor(ctx context.Context, vendor *store.Vendor) error {
	return d.db.WithContext(ctx).Create(vendor).Error
}

func (d *Driver) GetVendor(ctx context.Context, id string) (*store.Vendor, error) {
	var vendor store.Vendor
	if err := d.db.WithContext(ctx).First(&vendor, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &vendor, nil
}

func (d *Driver) UpdateVendor(ctx context.Context, vendor *store.Vendor) error {
	result := d.db.WithContext(ctx).Model(&store.Vendor{}).Where("id = ?", vendor.ID).
		Select("*").Omit("id", "created_at").Updates(vendor)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *Driver) DeleteVendor(ctx context.Context, id string) error {
	return d.deleteByID(ctx, &store.Vendor{}, id)
}

func (d *Driver) ListVendors(ctx context.Context) ([]*store.Vendor, error) {
	var vendors []*store.Vendor
	if err := d.db.WithContext(ctx).Order("name ASC").Find(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}

// --- Committees ---

func (d *Driver) CreateCommittee(ctx context.Context, committee *store.Committee) error {
	return d.db.WithContext(ctx).Create(committee).Error
}

func (d *Driver) GetCommittee(ctx context.Context, id string) (*store.Committee, error) {
	var committee store.Committee
	if err := d.db.WithContext(ctx).First(&committee, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &committee, nil
}

func (d *Driver) UpdateCommittee(ctx context.Context, committee *store.Committee) error {
	result := d.db.WithContext(ctx).Model(&store.Committee{}).Where("id = ?", committee.ID).
		Select("*").Omit("id", "created_at").Updates(committee)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *Driver) DeleteCommittee(ctx context.Context, id string) error {
	return d.deleteByID(ctx, &store.Committee{}, id)
}

func (d *Driver) ListCommittees(ctx context.Context) ([]*store.Committee, error) {
	var committees []*store.Committee
	if err := d.db.WithContext(ctx).Order("name ASC").Find(&committees).Error; err != nil {
		return nil, err
	}
	return committees, nil
}

// --- Contacts ---

func (d *Driver) CreateContact(ctx context.Context, contact *store.Contact) error {
	return d.db.WithContext(ctx).Create(contact).Error
}

func (d *Driver) GetContact(ctx context.Context, id string) (*store.Contact, error) {
	var contact store.Contact
	if err := d.db.WithContext(ctx).First(&contact, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &contact, nil
}

func (d *Driver) UpdateContact(ctx context.Context, contact *store.Contact) error {
	result := d.db.WithContext(ctx).Model(&store.Contact{}).Where("id = ?", contact.ID).
		Select("*").Omit("id", "created_at").Updates(contact)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *Driver) DeleteContact(ctx context.Context, id string) error {
	return d.deleteByID(ctx, &store.Contact{}, id)
}

func (d *Driver) ListContacts(ctx context.Context) ([]*store.Contact, error) {
	var contacts []*store.Contact
	if err := d.db.WithContext(ctx).Order("name ASC").Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

// --- Push ---

func (d *Driver) CreateSubscription(ctx context.Context, sub *store.PushSubscription) error {
	err := d.db.WithContext(ctx).Create(sub).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return store.ErrAlreadyExists
	}
	return err
}

func (d *Driver) DeleteSubscriptionByEndpoint(ctx context.Context, endpoint string) error {
	result := d.db.WithContext(ctx).Where("endpoint = ?", endpoint).Delete(&store.PushSubscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *Driver) ListSubscriptions(ctx context.Context) ([]*store.PushSubscription, error) {
	var subs []*store.PushSubscription
	if err := d.db.WithContext(ctx).Order("created_at ASC").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (d *Driver) CreateNotificationLog(ctx context.Context, log *store.NotificationLog) error {
	return d.db.WithContext(ctx).Create(log).Error
}

func (d *Driver) ListNotificationLogs(ctx context.Context) ([]*store.NotificationLog, error) {
	var logs []*store.NotificationLog
	if err := d.db.WithContext(ctx).Order("created_at DESC").Limit(100).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// --- Quotes ---

func (d *Driver) CreateQuote(ctx context.Context, quote *store.PromQuote) error {
	return d.db.WithContext(ctx).Create(quote).Error
}

func (d *Driver) GetQuote(ctx context.Context, id string) (*store.PromQuote, error) {
	var quote store.PromQuote
	if err := d.db.WithContext(ctx).First(&quote, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &quote, nil
}

func (d *Driver) UpdateQuote(ctx context.Context, quote *store.PromQuote) error {
	result := d.db.WithContext(ctx).Model(&store.PromQuote{}).Where("id = ?", quote.ID).
		Select("*").Omit("id", "created_at").Updates(quote)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *Driver) DeleteQuote(ctx context.Context, id string) error {
	return d.deleteByID(ctx, &store.PromQuote{}, id)
}

func (d *Driver) ListQuotesByEvent(ctx context.Context, eventID string) ([]*store.PromQuote, error) {
	var quotes []*store.PromQuote
	if err := d.db.WithContext(ctx).Where("event_id = ?", eventID).
		Order("category ASC, created_at ASC").Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}
