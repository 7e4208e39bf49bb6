package command

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"caixa/internal/core"
	"caixa/internal/ledger"
	"caixa/internal/log"
	"caixa/internal/storage"
	"caixa/internal/storage/memory"
)

var testTime = time.Date(2025, 8, 31, 10, 0, 0, 0, time.UTC)

func testLogger() *log.Logger {
	return log.New(log.Config{Level: slog.LevelError})
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	store := ledger.New(memory.New(), core.Monthly, testLogger(),
		ledger.WithClock(func() time.Time { return testTime }))
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return NewRouter(store, testLogger())
}

func TestRecordIncomeReply(t *testing.T) {
	r := newTestRouter(t)
	got := r.Handle(context.Background(), "entrada 1500 Salario")
	want := "✅ Entrada de R$ 1.500,00 registrada em 'salario'"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRecordExpenseReply(t *testing.T) {
	r := newTestRouter(t)
	got := r.Handle(context.Background(), "gasto 300,50 aluguel")
	want := "❌ Saída de R$ 300,50 registrada em 'aluguel'"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRecordDefaultsCategory(t *testing.T) {
	r := newTestRouter(t)
	got := r.Handle(context.Background(), "gasto 10")
	if !strings.Contains(got, "'outros'") {
		t.Fatalf("expected default category in reply, got %q", got)
	}
}

func TestRecordMultiWordCategory(t *testing.T) {
	r := newTestRouter(t)
	got := r.Handle(context.Background(), "gasto 25 cartao de credito")
	if !strings.Contains(got, "'cartao de credito'") {
		t.Fatalf("got %q", got)
	}
}

func TestRecordUsageErrors(t *testing.T) {
	r := newTestRouter(t)
	ctx := context.Background()
	cases := []struct {
		in   string
		want string
	}{
		{"", replyUsage},
		{"entrada", replyUsage},
		{"transferencia 100 banco", replyUnknownKind},
		{"entrada abc salario", replyInvalidAmount},
		{"entrada -10 salario", replyInvalidAmount},
		{"entrada 0 salario", replyInvalidAmount},
	}
	for _, tc := range cases {
		if got := r.Handle(ctx, tc.in); got != tc.want {
			t.Fatalf("Handle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	// None of the rejected messages mutated the ledger.
	if got := r.Handle(ctx, "/listar"); !strings.Contains(got, "Nenhum dado") {
		t.Fatalf("ledger should still be empty, got %q", got)
	}
}

func TestBalanceCommand(t *testing.T) {
	r := newTestRouter(t)
	ctx := context.Background()
	r.Handle(ctx, "entrada 1500 salario")
	r.Handle(ctx, "gasto 300,50 aluguel")

	got := r.Handle(ctx, "/saldo")
	for _, want := range []string{
		"💼 Saldo de agosto de 2025: R$ 1.199,50",
		"💰 Entradas: R$ 1.500,00",
		"💸 Gastos: R$ 300,50",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("balance missing %q:\n%s", want, got)
		}
	}
}

func TestListCommandKeepsOrder(t *testing.T) {
	r := newTestRouter(t)
	ctx := context.Background()
	r.Handle(ctx, "entrada 100 a")
	r.Handle(ctx, "gasto 50 b")
	r.Handle(ctx, "gasto 25 c")

	got := r.Handle(ctx, "/listar")
	lines := strings.Split(got, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 lines, got %q", got)
	}
	if lines[1] != "1. ✅ a: R$ 100,00" || lines[2] != "2. ❌ b: R$ 50,00" || lines[3] != "3. ❌ c: R$ 25,00" {
		t.Fatalf("unexpected listing:\n%s", got)
	}
}

func TestReportCommand(t *testing.T) {
	r := newTestRouter(t)
	ctx := context.Background()
	r.Handle(ctx, "entrada 1500 salario")
	r.Handle(ctx, "gasto 300,50 aluguel")
	r.Handle(ctx, "gasto 49,99 contas")

	got := r.Handle(ctx, "/relatorio")
	for _, want := range []string{
		"📆 Período: agosto de 2025",
		"- aluguel: R$ 300,50 (85.74%)",
		"- contas: R$ 49,99 (14.26%)",
		"💼 Saldo final: R$ 1.149,51",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("report missing %q:\n%s", want, got)
		}
	}
}

func TestReportExplicitAndInvalidPeriod(t *testing.T) {
	r := newTestRouter(t)
	ctx := context.Background()

	if got := r.Handle(ctx, "/relatorio 2025-07"); got != "📅 Nenhum dado encontrado para julho de 2025." {
		t.Fatalf("got %q", got)
	}
	if got := r.Handle(ctx, "/relatorio 2025/07"); got != replyInvalidPeriod {
		t.Fatalf("got %q", got)
	}
}

func TestResetRequiresConfirmation(t *testing.T) {
	r := newTestRouter(t)
	ctx := context.Background()
	r.Handle(ctx, "entrada 100 a")

	if got := r.Handle(ctx, "/limpar"); got != replyResetPrompt {
		t.Fatalf("got %q", got)
	}
	if got := r.Handle(ctx, "/saldo"); strings.Contains(got, "Nenhum dado") {
		t.Fatalf("unconfirmed reset must not mutate: %q", got)
	}

	if got := r.Handle(ctx, "/limpar confirmar"); got != replyResetDone {
		t.Fatalf("got %q", got)
	}
	if got := r.Handle(ctx, "/listar"); !strings.Contains(got, "Nenhum dado") {
		t.Fatalf("expected empty ledger after reset, got %q", got)
	}
	// Idempotent: clearing again succeeds with the same reply.
	if got := r.Handle(ctx, "/limpar confirmar"); got != replyResetDone {
		t.Fatalf("second reset got %q", got)
	}
}

func TestUnknownAndAliasedCommands(t *testing.T) {
	r := newTestRouter(t)
	ctx := context.Background()

	if got := r.Handle(ctx, "/qualquer"); got != replyUnknownCommand {
		t.Fatalf("got %q", got)
	}
	if got := r.Handle(ctx, "/ajuda"); got != replyHelp {
		t.Fatalf("got %q", got)
	}
	if !strings.Contains(replyHelp, "/saldo: saldo do período atual") {
		t.Fatalf("help text format changed: %q", replyHelp)
	}
	if got := r.Handle(ctx, "/start"); got != replyHelp {
		t.Fatalf("got %q", got)
	}
	if got := r.Handle(ctx, "/ajuda@caixa_bot"); got != replyHelp {
		t.Fatalf("bot-suffixed command got %q", got)
	}
}

type brokenSaver struct{}

func (brokenSaver) Load(context.Context) (storage.Snapshot, bool, error) {
	return storage.Snapshot{}, false, nil
}

func (brokenSaver) Save(context.Context, storage.Snapshot) error {
	return errors.New("disk full")
}

func TestPersistenceFailureReply(t *testing.T) {
	store := ledger.New(brokenSaver{}, core.Monthly, testLogger(),
		ledger.WithClock(func() time.Time { return testTime }))
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	r := NewRouter(store, testLogger())

	if got := r.Handle(context.Background(), "entrada 100 a"); got != replyPersistFailed {
		t.Fatalf("got %q", got)
	}
}
