package repository

import (
	"time"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account represents an account record in the database.
type Account struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Number       string          `gorm:"size:32;uniqueIndex;not null"`
	CustomerName string          `gorm:"size:100;not null"`
	Email        string          `gorm:"size:255"`
	Mobile       string          `gorm:"size:20"`
	Balance      decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Status       string          `gorm:"size:20;not null;index"`
	Version      int64           `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string { return "accounts" }

// Transaction represents a persisted transaction and its outcome.
type Transaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Reference     string          `gorm:"size:64;uniqueIndex;not null"`
	FromAccountID *uuid.UUID      `gorm:"type:uuid;index:idx_transactions_from_created,priority:1"`
	ToAccountID   *uuid.UUID      `gorm:"type:uuid;index:idx_transactions_to_created,priority:1"`
	Amount        decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Kind          string          `gorm:"size:20;not null"`
	Status        string          `gorm:"size:20;not null"`
	Description   string          `gorm:"size:500"`
	ErrorMessage  string          `gorm:"size:500"`
	CreatedAt     time.Time       `gorm:"index:idx_transactions_from_created,priority:2;index:idx_transactions_to_created,priority:2"`
}

func (Transaction) TableName() string { return "transactions" }

// DailyLimit is the per account, per day debit counter.
type DailyLimit struct {
	AccountID uuid.UUID       `gorm:"type:uuid;primaryKey"`
	LimitDate time.Time       `gorm:"type:date;primaryKey"`
	Total     decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	UpdatedAt time.Time
}

func (DailyLimit) TableName() string { return "daily_transaction_limits" }

// Notification represents a notification record in the database.
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Recipient string    `gorm:"size:255"`
	Channel   string    `gorm:"size:20;not null"`
	Message   string    `gorm:"type:text;not null"`
	Status    string    `gorm:"size:20;not null;index"`
	Retries   int       `gorm:"not null"`
	Error     string    `gorm:"size:500"`
	CreatedAt time.Time
	SentAt    *time.Time
}

func (Notification) TableName() string { return "notifications" }

// AutoMigrate creates or updates every table the ledger uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Account{}, &Transaction{}, &DailyLimit{}, &Notification{})
}

func accountToModel(a *domain.Account) *Account {
	return &Account{
		ID:           a.ID,
		Number:       a.Number,
		CustomerName: a.CustomerName,
		Email:        a.Email,
		Mobile:       a.Mobile,
		Balance:      a.Balance,
		Status:       string(a.Status),
		Version:      a.Version,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func accountFromModel(m *Account) *domain.Account {
	return &domain.Account{
		ID:           m.ID,
		Number:       m.Number,
		CustomerName: m.CustomerName,
		Email:        m.Email,
		Mobile:       m.Mobile,
		Balance:      m.Balance,
		Status:       domain.AccountStatus(m.Status),
		Version:      m.Version,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func transactionToModel(t *domain.Transaction) *Transaction {
	return &Transaction{
		ID:            t.ID,
		Reference:     t.Reference,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Amount:        t.Amount,
		Kind:          string(t.Kind),
		Status:        string(t.Status),
		Description:   t.Description,
		ErrorMessage:  t.ErrorMessage,
		CreatedAt:     t.CreatedAt,
	}
}

func transactionFromModel(m *Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:            m.ID,
		Reference:     m.Reference,
		FromAccountID: m.FromAccountID,
		ToAccountID:   m.ToAccountID,
		Amount:        m.Amount,
		Kind:          domain.TransactionKind(m.Kind),
		Status:        domain.TransactionStatus(m.Status),
		Description:   m.Description,
		ErrorMessage:  m.ErrorMessage,
		CreatedAt:     m.CreatedAt,
	}
}

func notificationToModel(n *domain.Notification) *Notification {
	return &Notification{
		ID:        n.ID,
		Recipient: n.Recipient,
		Channel:   n.Channel,
		Message:   n.Message,
		Status:    string(n.Status),
		Retries:   n.Retries,
		Error:     n.Error,
		CreatedAt: n.CreatedAt,
		SentAt:    n.SentAt,
	}
}

func notificationFromModel(m *Notification) *domain.Notification {
	return &domain.Notification{
		ID:        m.ID,
		Recipient: m.Recipient,
		Channel:   m.Channel,
		Message:   m.Message,
		Status:    domain.NotificationStatus(m.Status),
		Retries:   m.Retries,
		Error:     m.Error,
		CreatedAt: m.CreatedAt,
		SentAt:    m.SentAt,
	}
}
