package core

import (
	"regexp"
	"strings"
	"time"
)

const (
	AccountCash   AccountType = "cash"
	AccountDebit  AccountType = "debit"
	AccountCredit AccountType = "credit"

	KindIncome   TransactionKind = "income"
	KindExpense  TransactionKind = "expense"
	KindTransfer TransactionKind = "transfer"
)

type (
	AccountType     string
	TransactionKind string

	// Account is a named balance bucket owned by a single user. Credit
	// accounts conventionally hold a negative balance (debt); cash and
	// debit accounts start non-negative but may float below zero after
	// overspending.
	Account struct {
		ID      string
		Name    string
		Icon    string
		Type    AccountType
		Subtype string
		Balance Money
		OwnerID string
	}

	// Transaction is a dated event affecting one account, or two for
	// transfers. Amount is always positive; the kind decides the sign
	// of the balance effect.
	Transaction struct {
		ID            string
		Date          Date
		Description   string
		CategoryID    string
		AccountID     string
		DestinationID string // transfers only
		Amount        Money
		Kind          TransactionKind
		CreatedAt     time.Time
		OwnerID       string
	}

	// Budget is a per-category spending cap for one calendar month.
	Budget struct {
		CategoryID string
		Month      string // YYYY-MM
		Target     Money
		OwnerID    string
	}

	// Goal is a savings target tracked toward a current saved amount.
	Goal struct {
		ID         string
		Name       string
		Target     Money
		Saved      Money
		TargetDate Date
		Category   string
		OwnerID    string
	}

	// Category is a display taxonomy entry, seeded by migration.
	Category struct {
		ID   string
		Name string
		Icon string
	}

	ShoppingList struct {
		ID      string
		Name    string
		OwnerID string
	}

	ShoppingItem struct {
		ID       string
		ListID   string
		Name     string
		Quantity int
		Done     bool
		OwnerID  string
	}

	// CalendarEvent is a dated entry; when ReminderAt is set the worker
	// publishes a notification once it comes due.
	CalendarEvent struct {
		ID         string
		Title      string
		Date       Date
		ReminderAt time.Time
		Notified   bool
		OwnerID    string
	}
)

// Date is a calendar day without time-of-day significance.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MonthKey returns the YYYY-MM bucket the date falls into.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

var monthKeyRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidMonthKey reports whether s is a YYYY-MM month key.
func ValidMonthKey(s string) bool {
	return monthKeyRe.MatchString(s)
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	switch a.Type {
	case AccountCash, AccountDebit, AccountCredit:
	default:
		return ErrUnknownAccountType
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return &ValidationError{Reason: "description too long (max 200 characters)"}
	}
	if t.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	switch t.Kind {
	case KindTransfer:
		if strings.TrimSpace(t.DestinationID) == "" {
			return ErrMissingDestination
		}
		if t.DestinationID == t.AccountID {
			return ErrSameAccountTransfer
		}
	case KindIncome, KindExpense:
		if t.DestinationID != "" {
			return ErrUnexpectedDestination
		}
	default:
		return ErrUnknownKind
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return &ValidationError{Reason: "missing source account"}
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.CategoryID) == "" {
		return &ValidationError{Reason: "missing budget category"}
	}
	if !ValidMonthKey(b.Month) {
		return ErrInvalidMonthKey
	}
	if b.Target.Cents <= 0 {
		return ErrInvalidTarget
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.Target.Cents <= 0 {
		return ErrInvalidTarget
	}
	if g.Saved.Cents < 0 {
		return &ValidationError{Reason: "saved amount cannot be negative"}
	}
	return nil
}

// Progress returns the goal completion percentage clamped to [0, 100].
func (g Goal) Progress() int {
	if g.Target.Cents <= 0 {
		return 0
	}
	p := g.Saved.Cents * 100 / g.Target.Cents
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return int(p)
}

func (l ShoppingList) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (i ShoppingItem) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyName
	}
	if i.Quantity < 1 {
		return &ValidationError{Reason: "quantity must be at least 1"}
	}
	return nil
}

func (e CalendarEvent) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyName
	}
	return e.Date.Validate()
}
