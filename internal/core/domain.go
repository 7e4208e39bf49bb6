package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// RunningPeriodKey is the single bucket used when the ledger is configured
// as an unbounded running total instead of monthly partitions.
const RunningPeriodKey = "geral"

// DefaultCategory is used when a record command carries no category.
const DefaultCategory = "outros"

const (
	Monthly PeriodMode = "monthly"
	Running PeriodMode = "running"
)

type (
	// Kind tells whether an entry adds to or subtracts from the balance.
	// The sign lives here; amounts are always positive.
	Kind string

	// PeriodMode selects how entries are bucketed for reporting and reset.
	PeriodMode string

	// Entry is one recorded income or expense transaction.
	Entry struct {
		ID         string
		Kind       Kind
		Amount     Money
		Category   string
		RecordedAt time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrUnknownKind   = errors.New("unknown entry kind")
	ErrEmptyCategory = errors.New("empty category")
)

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

// ParseKind maps a record word to an entry kind. It accepts the Portuguese
// command words used on the chat surface as well as the stored identifiers,
// so snapshots written with either vocabulary load cleanly.
func ParseKind(word string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(word)) {
	case "entrada", "income":
		return Income, nil
	case "gasto", "saida", "saída", "fatura", "expense":
		return Expense, nil
	default:
		return "", ErrUnknownKind
	}
}

func (pm PeriodMode) Valid() bool {
	return pm == Monthly || pm == Running
}

// PeriodKeyAt derives the period bucket for a point in time. Monthly mode
// yields sortable "YYYY-MM" keys; running mode collapses everything into one.
func PeriodKeyAt(t time.Time, mode PeriodMode) string {
	if mode == Running {
		return RunningPeriodKey
	}
	return t.Format("2006-01")
}

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// PeriodLabel renders a period key for humans ("agosto de 2025", "geral").
func PeriodLabel(key string) string {
	if key == RunningPeriodKey {
		return RunningPeriodKey
	}
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return monthNames[int(t.Month())-1] + " de " + t.Format("2006")
}

// ValidPeriodKey reports whether key is an accepted report argument.
func ValidPeriodKey(key string) bool {
	if key == RunningPeriodKey {
		return true
	}
	_, err := time.Parse("2006-01", key)
	return err == nil
}

func (e Entry) Validate() error {
	if !e.Kind.Valid() {
		return ErrUnknownKind
	}
	if e.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if e.RecordedAt.IsZero() {
		return errors.New("entry timestamp cannot be zero")
	}
	return nil
}
