// Package command maps chat text to ledger operations and renders the reply.
// Every failure becomes a user-facing message; no error crosses this boundary.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"caixa/internal/core"
	"caixa/internal/ledger"
	"caixa/internal/log"
	"caixa/internal/services"
)

const (
	replyUsage            = "⚠️ Use: entrada/gasto valor categoria"
	replyUnknownKind      = "⚠️ Use 'entrada', 'gasto' ou 'fatura'."
	replyInvalidAmount    = "❌ Valor inválido."
	replyPersistFailed    = "❌ Não foi possível salvar. Tente novamente."
	replyResetDone        = "🔄 Dados de todos os meses foram apagados."
	replyResetPrompt      = "⚠️ Isso apaga todos os lançamentos. Envie /limpar confirmar para prosseguir."
	replyInvalidPeriod    = "⚠️ Período inválido. Use o formato YYYY-MM, por exemplo /relatorio 2025-08."
	replyUnknownCommand   = "🤔 Comando desconhecido. Envie /ajuda para ver as opções."
	replyHelp             = "📒 Comandos disponíveis:\n" +
		"entrada/gasto valor categoria: registra um lançamento\n" +
		"/saldo: saldo do período atual\n" +
		"/listar: lançamentos do período atual\n" +
		"/relatorio [YYYY-MM]: relatório por categoria\n" +
		"/limpar confirmar: apaga todos os dados\n" +
		"/ajuda: esta mensagem"
	confirmToken = "confirmar"
)

// Router is stateless beyond its collaborators; a single instance serves the
// poller for the life of the process.
type Router struct {
	store  *ledger.Store
	logger *log.Logger
}

func NewRouter(store *ledger.Store, logger *log.Logger) *Router {
	return &Router{store: store, logger: logger.WithComponent(log.ComponentCommand)}
}

// Handle processes one incoming message and returns the reply text.
func (r *Router) Handle(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return replyUsage
	}
	if strings.HasPrefix(text, "/") {
		return r.handleCommand(ctx, text)
	}
	return r.record(ctx, text)
}

func (r *Router) handleCommand(ctx context.Context, text string) string {
	fields := strings.Fields(text)
	cmd := strings.ToLower(fields[0])
	// "/relatorio@caixa_bot" arrives in group chats.
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		cmd = cmd[:at]
	}
	args := fields[1:]

	switch cmd {
	case "/start", "/ajuda":
		return replyHelp
	case "/saldo":
		return r.balance()
	case "/listar":
		return r.list()
	case "/relatorio":
		return r.report(args)
	case "/limpar":
		return r.reset(ctx, args)
	default:
		return replyUnknownCommand
	}
}

// record handles free text: "<tipo> <valor> [categoria...]", lower-cased as a
// whole so kind, amount separators and category normalize together.
func (r *Router) record(ctx context.Context, text string) string {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) < 2 {
		return replyUsage
	}
	kind, err := core.ParseKind(fields[0])
	if err != nil {
		return replyUnknownKind
	}
	category := strings.Join(fields[2:], " ")

	e, err := r.store.Record(ctx, kind, fields[1], category)
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return replyInvalidAmount
	case errors.Is(err, ledger.ErrPersistence):
		r.logger.ErrorContext(ctx, "record not persisted", log.FieldError, err)
		return replyPersistFailed
	case err != nil:
		r.logger.ErrorContext(ctx, "record rejected", log.FieldError, err)
		return replyInvalidAmount
	}

	if e.Kind == core.Income {
		return fmt.Sprintf("✅ Entrada de %s registrada em '%s'", e.Amount.BRL(), e.Category)
	}
	return fmt.Sprintf("❌ Saída de %s registrada em '%s'", e.Amount.BRL(), e.Category)
}

func (r *Router) balance() string {
	period := r.store.CurrentPeriod()
	entries := r.store.Query(period)
	label := core.PeriodLabel(period)
	if len(entries) == 0 {
		return core.RenderNoData(label)
	}
	s := core.Summarize(entries)
	return fmt.Sprintf("💼 Saldo de %s: %s\n💰 Entradas: %s\n💸 Gastos: %s",
		label, s.Balance.BRL(), s.IncomeTotal.BRL(), s.ExpenseTotal.BRL())
}

func (r *Router) list() string {
	period := r.store.CurrentPeriod()
	entries := r.store.Query(period)
	label := core.PeriodLabel(period)
	if len(entries) == 0 {
		return core.RenderNoData(label)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🧾 Lançamentos de %s:\n", label)
	for i, e := range entries {
		marker := "✅"
		if e.Kind == core.Expense {
			marker = "❌"
		}
		fmt.Fprintf(&b, "%d. %s %s: %s\n", i+1, marker, e.Category, e.Amount.BRL())
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Router) report(args []string) string {
	period := r.store.CurrentPeriod()
	if len(args) > 0 {
		period = args[0]
		if !core.ValidPeriodKey(period) {
			return replyInvalidPeriod
		}
	}
	return services.BuildReport(r.store, period)
}

func (r *Router) reset(ctx context.Context, args []string) string {
	if len(args) == 0 || strings.ToLower(args[0]) != confirmToken {
		return replyResetPrompt
	}
	if err := r.store.Reset(ctx); err != nil {
		r.logger.ErrorContext(ctx, "reset not persisted", log.FieldError, err)
		return replyPersistFailed
	}
	return replyResetDone
}
