package core

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxTitleLength       = 100
	MaxExpenseNoteLength = 500
	MaxIncomeNoteLength  = 200
	MaxNameLength        = 50
	MaxIconLength        = 50

	MaxExpenseCents int64 = 999_999    // 9999.99
	MaxIncomeCents  int64 = 99_999_999 // 999999.99
	MaxBudgetCents  int64 = 99_999_999 // 999999.99
)

type (
	// ID identifies a persisted record. Records created by this module use
	// canonical UUID strings; user IDs come from the auth provider as-is.
	ID string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Category struct {
		ID        ID        `json:"id"`
		UserID    ID        `json:"userId"`
		Name      string    `json:"name"`
		Icon      string    `json:"icon,omitempty"`
		Color     string    `json:"color,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	SubCategory struct {
		ID         ID        `json:"id"`
		UserID     ID        `json:"userId"`
		CategoryID ID        `json:"categoryId"`
		Name       string    `json:"name"`
		CreatedAt  time.Time `json:"createdAt"`
		UpdatedAt  time.Time `json:"updatedAt"`
	}

	IncomeSource struct {
		ID        ID        `json:"id"`
		UserID    ID        `json:"userId"`
		Name      string    `json:"name"`
		Icon      string    `json:"icon,omitempty"`
		Color     string    `json:"color,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	Expense struct {
		ID            ID        `json:"id"`
		UserID        ID        `json:"userId"`
		Title         string    `json:"title"`
		Amount        Money     `json:"amount"`
		Date          Date      `json:"date"`
		CategoryID    ID        `json:"categoryId"`
		SubCategoryID ID        `json:"subCategoryId,omitempty"` // empty when the expense has no sub-category
		Note          string    `json:"note,omitempty"`
		CreatedAt     time.Time `json:"createdAt"`
		UpdatedAt     time.Time `json:"updatedAt"`
	}

	Income struct {
		ID        ID        `json:"id"`
		UserID    ID        `json:"userId"`
		SourceID  ID        `json:"incomeSourceId"`
		Amount    Money     `json:"amount"`
		Date      Date      `json:"date"`
		Note      string    `json:"note,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// Budget is a spending limit for one category (SubCategoryID empty) or
	// one sub-category within one month.
	Budget struct {
		ID            ID        `json:"id"`
		UserID        ID        `json:"userId"`
		CategoryID    ID        `json:"categoryId"`
		SubCategoryID ID        `json:"subCategoryId,omitempty"`
		Limit         Money     `json:"limit"`
		Month         MonthKey  `json:"month"`
		CreatedAt     time.Time `json:"createdAt"`
		UpdatedAt     time.Time `json:"updatedAt"`
	}
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// NewID returns a fresh random identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// ParseID accepts any UUID representation and returns its canonical form.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", ErrInvalidID
	}
	return ID(u.String()), nil
}

func (id ID) String() string { return string(id) }

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

// IsCategoryLevel reports whether the budget covers a whole category.
func (b Budget) IsCategoryLevel() bool { return b.SubCategoryID.IsZero() }

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// NewDate creates a new Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf wraps t normalised to UTC.
func DateOf(t time.Time) Date {
	return Date{Time: t.UTC()}
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

// Month returns the month key containing the date.
func (d Date) Month() MonthKey {
	return MonthOf(d.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.Equal(d.Truncate(24 * time.Hour)) {
		return json.Marshal(d.UTC().Format(time.DateOnly))
	}
	return json.Marshal(d.UTC().Format(time.RFC3339Nano))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (e Expense) Validate() error {
	title := strings.TrimSpace(e.Title)
	if title == "" {
		return Invalid("title", ErrEmptyTitle)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return Invalid("title", ErrTitleTooLong)
	}
	if err := e.Amount.ValidateRange(MaxExpenseCents); err != nil {
		return Invalid("amount", err)
	}
	if err := e.Date.Validate(); err != nil {
		return Invalid("date", ErrInvalidDate)
	}
	if e.CategoryID.IsZero() {
		return Invalid("categoryId", ErrMissingCategory)
	}
	if utf8.RuneCountInString(e.Note) > MaxExpenseNoteLength {
		return Invalid("note", ErrNoteTooLong)
	}
	return nil
}

func (i Income) Validate() error {
	if i.SourceID.IsZero() {
		return Invalid("incomeSourceId", ErrMissingSource)
	}
	if err := i.Amount.ValidateRange(MaxIncomeCents); err != nil {
		return Invalid("amount", err)
	}
	if err := i.Date.Validate(); err != nil {
		return Invalid("date", ErrInvalidDate)
	}
	if utf8.RuneCountInString(i.Note) > MaxIncomeNoteLength {
		return Invalid("note", ErrNoteTooLong)
	}
	return nil
}

func (b Budget) Validate() error {
	if b.CategoryID.IsZero() {
		return Invalid("categoryId", ErrMissingCategory)
	}
	if err := b.Limit.ValidateRange(MaxBudgetCents); err != nil {
		return Invalid("limit", ErrLimitOutOfRange)
	}
	if b.Month.IsZero() {
		return Invalid("month", ErrInvalidMonth)
	}
	return nil
}

func (c Category) Validate() error {
	return validateLabel(c.Name, c.Icon, c.Color)
}

func (s IncomeSource) Validate() error {
	return validateLabel(s.Name, s.Icon, s.Color)
}

func (s SubCategory) Validate() error {
	if s.CategoryID.IsZero() {
		return Invalid("categoryId", ErrMissingCategory)
	}
	return validateName(s.Name)
}

func validateLabel(name, icon, color string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if utf8.RuneCountInString(icon) > MaxIconLength {
		return Invalid("icon", ErrIconTooLong)
	}
	if color != "" && !colorPattern.MatchString(color) {
		return Invalid("color", ErrInvalidColor)
	}
	return nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return Invalid("name", ErrEmptyName)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return Invalid("name", ErrNameTooLong)
	}
	return nil
}

// ExpenseView is an expense with the names of the category and
// sub-category it points at. Names are empty when the target is gone.
type ExpenseView struct {
	Expense
	CategoryName    string `json:"categoryName"`
	CategoryIcon    string `json:"categoryIcon,omitempty"`
	CategoryColor   string `json:"categoryColor,omitempty"`
	SubCategoryName string `json:"subCategoryName,omitempty"`
}

// IncomeView is an income with its source's display fields.
type IncomeView struct {
	Income
	SourceName  string `json:"sourceName"`
	SourceIcon  string `json:"sourceIcon,omitempty"`
	SourceColor string `json:"sourceColor,omitempty"`
}

// CategoryWithSubs is a category and its sub-categories, sorted by name.
type CategoryWithSubs struct {
	Category
	SubCategories []SubCategory `json:"subCategories"`
}

func (v ExpenseView) Transaction() Transaction {
	name := v.CategoryName
	if name == "" {
		name = UnknownCategoryName
	}
	return Transaction{
		ID:        v.ID,
		Kind:      KindExpense,
		Title:     v.Title,
		Amount:    v.Amount,
		Date:      v.Date,
		GroupID:   v.CategoryID,
		GroupName: name,
		Note:      v.Note,
		CreatedAt: v.CreatedAt,
	}
}

func (v IncomeView) Transaction() Transaction {
	name := v.SourceName
	if name == "" {
		name = UnknownCategoryName
	}
	return Transaction{
		ID:        v.ID,
		Kind:      KindIncome,
		Title:     name,
		Amount:    v.Amount,
		Date:      v.Date,
		GroupID:   v.SourceID,
		GroupName: name,
		Note:      v.Note,
		CreatedAt: v.CreatedAt,
	}
}
