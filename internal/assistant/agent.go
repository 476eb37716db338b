package assistant

import (
	"context"
	"fmt"
	"log"
	"sync"

	"google.golang.org/genai"
)

// maxHistory caps the conversation context sent to the model. Older turns
// fall off; the dashboard keeps its own longer transcript in sqlite.
const maxHistory = 15

// maxToolRounds bounds the function-call loop so a confused model cannot
// spin tool calls forever.
const maxToolRounds = 8

const persona = `Ты — ассистент персонального банковского кабинета.
Отвечай кратко, вежливо и по-русски.
Ты можешь открывать и закрывать вклады клиента с помощью инструментов.
Перед любым открытием или закрытием вклада сначала назови клиенту параметры
операции и дождись явного подтверждения, и только потом вызывай инструмент.
Суммы называй в рублях. Не выдумывай вклады и ставки — узнавай их через
get_user_info и get_rates.
Если вопрос не про вклады, но про банковские продукты или финансы, сначала
получи контекст инструментом get_context и отвечай строго по нему. На
вопросы, не связанные с банком и финансами, вежливо отвечай, что не можешь
помочь.`

// Agent is a stateful Gemini conversation with banking tools attached.
// Safe for concurrent use; turns are serialized.
type Agent struct {
	client *genai.Client
	model  string
	tools  *Toolbox

	mu      sync.Mutex
	history []*genai.Content
}

// New dials the Gemini API. apiKey may be empty, in which case the client
// resolves credentials from the environment.
func New(ctx context.Context, apiKey, model string, tools *Toolbox) (*Agent, error) {
	var cfg *genai.ClientConfig
	if apiKey != "" {
		cfg = &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Agent{client: client, model: model, tools: tools}, nil
}

// Reply runs one conversation turn: send the message, satisfy any function
// calls the model makes, and return the final text stripped of markdown.
func (a *Agent) Reply(ctx context.Context, message string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	chat, err := a.client.Chats.Create(ctx, a.model, a.config(), a.history)
	if err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}

	content, err := a.ask(ctx, chat, &genai.Part{Text: message}, maxToolRounds)
	if err != nil {
		return "", err
	}

	a.history = trimHistory(chat.History(true))
	return StripMarkdown(content.Parts[0].Text), nil
}

// ask sends parts and follows function calls until the model produces text.
func (a *Agent) ask(ctx context.Context, chat *genai.Chat, part *genai.Part, rounds int) (*genai.Content, error) {
	if rounds == 0 {
		return nil, fmt.Errorf("function call loop exceeded %d rounds", maxToolRounds)
	}

	resp, err := chat.Send(ctx, part)
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty candidate from model %s", a.model)
	}

	part0 := resp.Candidates[0].Content.Parts[0]
	if call := part0.FunctionCall; call != nil {
		return a.ask(ctx, chat, &genai.Part{FunctionResponse: a.callTool(ctx, call)}, rounds-1)
	}
	return resp.Candidates[0].Content, nil
}

func (a *Agent) callTool(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
	out, err := a.tools.Dispatch(ctx, call.Name, call.Args)
	if err != nil {
		log.Printf("[assistant] tool %s failed: %v", call.Name, err)
		return &genai.FunctionResponse{
			ID:       call.ID,
			Name:     call.Name,
			Response: map[string]any{"error": err.Error()},
		}
	}
	return &genai.FunctionResponse{
		ID:       call.ID,
		Name:     call.Name,
		Response: map[string]any{"output": out},
	}
}

func (a *Agent) config() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: persona}}},
		Tools: []*genai.Tool{
			{FunctionDeclarations: toolDeclarations()},
		},
	}
}

func trimHistory(h []*genai.Content) []*genai.Content {
	if len(h) <= maxHistory {
		return h
	}
	return h[len(h)-maxHistory:]
}

// ─── Declarations ───────────────────────────────────────────────────────────

func toolDeclarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        "open_deposit",
			Description: "Открыть вклад клиенту: списать сумму с основного счёта и создать вклад на заданный срок.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"deposit_name": {
						Type:        genai.TypeString,
						Description: "Название вклада из каталога.",
					},
					"amount": {
						Type:        genai.TypeNumber,
						Description: "Сумма вклада в рублях.",
					},
					"days": {
						Type:        genai.TypeInteger,
						Description: "Срок вклада в днях.",
					},
				},
				Required: []string{"deposit_name", "amount", "days"},
			},
		},
		{
			Name:        "close_deposit",
			Description: "Закрыть вклад по его id и вернуть средства на основной счёт.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"id": {
						Type:        genai.TypeString,
						Description: "Идентификатор вклада.",
					},
				},
				Required: []string{"id"},
			},
		},
		{
			Name:        "get_user_info",
			Description: "Получить сведения о клиенте: баланс, активные вклады с id и историю операций.",
		},
		{
			Name:        "get_rates",
			Description: "Получить каталог доступных вкладов и их ставки.",
		},
		{
			Name:        "manage_deposits",
			Description: "Включить автоматическое управление вкладами клиента агентом.",
		},
		{
			Name:        "get_context",
			Description: "Получить контекст из базы знаний банка для ответа на общий банковский вопрос, не связанный с вкладами.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query": {
						Type:        genai.TypeString,
						Description: "Вопрос пользователя своими словами.",
					},
				},
				Required: []string{"query"},
			},
		},
	}
}
