package services

import (
	gocontext "context"
	"os"
	"strings"
	"sync"

	"github.com/requiem-ai/bessie/backend"
	"github.com/requiem-ai/bessie/context"
	"github.com/requiem-ai/bessie/wrapper"
)

// ChatService owns one conversation wrapper per session and routes
// turns through the configured backend. Sessions are keyed by the
// surface's chat id.
type ChatService struct {
	context.DefaultService

	backend backend.ChatBackend
	system  string

	mu       sync.Mutex
	sessions map[int64]*wrapper.ChatWrapper
}

const CHAT_SVC = "chat_svc"

const defaultSystemMessage = "You are a helpful programming assistant."

func (svc *ChatService) Id() string {
	return CHAT_SVC
}

func (svc *ChatService) Configure(ctx *context.Context) error {
	if err := svc.DefaultService.Configure(ctx); err != nil {
		return err
	}

	model := strings.TrimSpace(os.Getenv("BESSIE_MODEL"))
	if model == "" {
		model = "gpt-4"
	}
	b, err := backend.FromModel(model, 0, 1024)
	if err != nil {
		return err
	}
	svc.backend = b

	svc.system = strings.TrimSpace(os.Getenv("BESSIE_SYSTEM_MESSAGE"))
	if svc.system == "" {
		svc.system = defaultSystemMessage
	}

	svc.sessions = make(map[int64]*wrapper.ChatWrapper)
	return nil
}

// Run executes one conversation turn for the given session. The
// retrying request variant is preferred when the backend offers one,
// since this service fronts a long-lived surface.
func (svc *ChatService) Run(ctx gocontext.Context, sessionID int64, observation string) (string, error) {
	w := svc.session(sessionID)

	run := svc.backend.Run
	if r, ok := svc.backend.(backend.Retryer); ok {
		run = r.RunWithRetry
	}

	prompt := w.Prompt(observation)
	response, err := run(ctx, backend.Request[[]backend.Message]{Prompt: prompt})
	if err != nil {
		return "", err
	}
	return w.Parse(response), nil
}

// Clear resets the session's conversation back to the system message.
func (svc *ChatService) Clear(sessionID int64) {
	svc.session(sessionID).Reset()
}

func (svc *ChatService) session(sessionID int64) *wrapper.ChatWrapper {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	w, ok := svc.sessions[sessionID]
	if !ok {
		w = wrapper.NewChatWrapper(svc.system)
		svc.sessions[sessionID] = w
	}
	return w
}
