// Package assistant implements the server-side banking assistant: a Gemini
// chat with function tools that can inspect the mirrored client state and
// queue deposit commands for the dashboard's poller to replay.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/finch-bank/finch/internal/domain"
	"github.com/finch-bank/finch/internal/infra/catalog"
	"github.com/finch-bank/finch/internal/infra/knowledge"
)

// ActionQueue receives the commands the assistant decides to execute.
// They reach the ledger only when the client polls them.
type ActionQueue interface {
	Enqueue(cmd domain.Command)
}

// StateMirror exposes the last ledger snapshot the client pushed.
// ok is false until the first sync arrives.
type StateMirror interface {
	Snapshot() (l domain.Ledger, ok bool)
}

// Toolbox implements the assistant's function tools against the queue and
// the mirror. Every method returns the user-facing text handed back to the
// model as the function result.
type Toolbox struct {
	queue  ActionQueue
	mirror StateMirror
}

// NewToolbox wires the tools to the action queue and state mirror.
func NewToolbox(queue ActionQueue, mirror StateMirror) *Toolbox {
	return &Toolbox{queue: queue, mirror: mirror}
}

// ─── Tools ──────────────────────────────────────────────────────────────────

// OpenDeposit validates the parameters and queues an open_deposit command.
// Validation here only guards the queue; the ledger store re-validates with
// the real balance when the command lands.
func (t *Toolbox) OpenDeposit(name string, amount float64, days int) string {
	log.Printf("[assistant] open_deposit tool: name=%q amount=%v days=%d", name, amount, days)

	if strings.TrimSpace(name) == "" {
		return "❌ Некорректное название вклада."
	}
	if amount <= 0 {
		return "❌ Сумма должна быть положительным числом."
	}
	if days <= 0 {
		return "❌ Количество дней должно быть положительным числом."
	}

	payload, _ := json.Marshal(domain.OpenDepositPayload{Name: name, Amount: amount, Days: days})
	t.queue.Enqueue(domain.Command{Type: domain.CmdOpenDeposit, Payload: payload})

	if p := catalog.Lookup(name); p != nil {
		return fmt.Sprintf("✅ Вклад %q (ставка %v%%) на сумму %s успешно открыт на срок %d дней.",
			p.Name, p.Rate, domain.FormatMoney(amount), days)
	}
	return fmt.Sprintf("✅ Вклад %q на сумму %s успешно открыт на срок %d дней.",
		name, domain.FormatMoney(amount), days)
}

// CloseDeposit queues a close_deposit command after checking the mirror, so
// the model gets told about an unknown id instead of queuing a dead command.
func (t *Toolbox) CloseDeposit(id string) string {
	if id == "" {
		return "❌ Не указан ID вклада для закрытия."
	}
	log.Printf("[assistant] close_deposit tool: id=%s", id)

	state, ok := t.mirror.Snapshot()
	if ok {
		if _, found := state.FindDeposit(id); !found {
			return fmt.Sprintf("Вклада с id %s не существует!", id)
		}
	}

	payload, _ := json.Marshal(domain.CloseDepositPayload{ID: id})
	t.queue.Enqueue(domain.Command{Type: domain.CmdCloseDeposit, Payload: payload})

	return fmt.Sprintf("💸 Вклад с id=%s успешно закрыт и средства возвращены на основной счёт.", id)
}

// UserInfo reports the mirrored balance, deposits and operation history.
func (t *Toolbox) UserInfo() string {
	state, ok := t.mirror.Snapshot()
	if !ok {
		return "Нет информации о клиенте."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Клиент: %s, карта %s, баланс %s.\n",
		state.User.Name, state.User.Card, domain.FormatMoney(state.User.Balance))

	if len(state.Deposits) == 0 {
		b.WriteString("Активных вкладов нет.\n")
	} else {
		b.WriteString("Активные вклады:\n")
		for _, d := range state.Deposits {
			fmt.Fprintf(&b, "- %q, сумма %s, id=%s, закрытие %s\n",
				d.Name, domain.FormatMoney(d.Amount), d.ID, d.EndsAt.Format("02.01.2006"))
		}
	}

	if len(state.Tx) > 0 {
		b.WriteString("История операций (последние сверху):\n")
		for i := len(state.Tx) - 1; i >= 0; i-- {
			fmt.Fprintf(&b, "- %s\n", state.Tx[i].Text)
		}
	}
	return b.String()
}

// Rates lists the deposit product catalog.
func (t *Toolbox) Rates() string {
	var b strings.Builder
	b.WriteString("Доступные вклады:\n")
	for _, p := range catalog.Catalog {
		fmt.Fprintf(&b, "- %q — ставка %v%%\n", p.Name, p.Rate)
	}
	return b.String()
}

// ManageDeposits acknowledges the autopilot request. The demo only confirms
// enrollment; no background rebalancing is simulated.
func (t *Toolbox) ManageDeposits() string {
	log.Printf("[assistant] manage_deposits tool")
	best := catalog.BestRate()
	return fmt.Sprintf("🔁 Операция выполнена успешно. Теперь агент управляет вкладами клиента: "+
		"после окончания срока вклад переоткрывается в более выгодный продукт, если он есть "+
		"(сейчас лучший вклад %q со ставкой %v%%).", best.Name, best.Rate)
}

// Context retrieves knowledge-base sections for a general banking question,
// so the model answers from the corpus instead of improvising. Deposit
// questions never come here; they go through the deposit tools.
func (t *Toolbox) Context(query string) string {
	if strings.TrimSpace(query) == "" {
		return "❌ Не указан параметр 'query'."
	}
	log.Printf("[assistant] get_context tool: query=%q", query)

	results := knowledge.Search(query)
	if len(results) == 0 {
		return "Контекст: по этому вопросу в базе знаний ничего не найдено."
	}
	raw, _ := json.Marshal(results)
	return "Контекст: " + string(raw)
}

// ─── Dispatch ───────────────────────────────────────────────────────────────

// Dispatch routes a function call by name. Argument coercion is permissive:
// models send numbers for everything, so int arguments accept float64.
func (t *Toolbox) Dispatch(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case "open_deposit":
		return t.OpenDeposit(stringArg(args, "deposit_name"), floatArg(args, "amount"), int(floatArg(args, "days"))), nil
	case "close_deposit":
		return t.CloseDeposit(stringArg(args, "id")), nil
	case "get_user_info":
		return t.UserInfo(), nil
	case "get_rates":
		return t.Rates(), nil
	case "manage_deposits":
		return t.ManageDeposits(), nil
	case "get_context":
		return t.Context(stringArg(args, "query")), nil
	default:
		return "", fmt.Errorf("unknown tool %q", name)
	}
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func floatArg(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	default:
		return 0
	}
}
