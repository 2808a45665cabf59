// Package context is a small service wrapper that handles the
// startup/shutdown of long-running services while providing
// cross-service access with separation of concerns intact.
package context

import (
	gocontext "context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

// Service is the lifecycle contract every registered service fulfils.
type Service interface {
	Id() string
	Configure(ctx *Context) error
	Start() error
	Shutdown()
}

// DefaultService supplies no-op lifecycle methods and cross-service
// lookup; concrete services embed it and override what they need.
type DefaultService struct {
	ctx *Context
}

func (s *DefaultService) Configure(ctx *Context) error {
	s.ctx = ctx
	return nil
}

func (s *DefaultService) Start() error {
	return nil
}

func (s *DefaultService) Shutdown() {}

// Service returns another registered service by id. The caller must
// cast to the concrete type, e.g. ctx.Service(CHAT_SVC).(*ChatService).
func (s *DefaultService) Service(id string) Service {
	if s.ctx == nil {
		return nil
	}
	return s.ctx.Service(id)
}

// Context holds the registered services in start order.
type Context struct {
	order      []string
	serviceMap map[string]Service
}

// NewCtx creates a context containing the given services, preserving
// registration order.
func NewCtx(svcs ...Service) (*Context, error) {
	ctx := Context{
		order:      make([]string, 0, len(svcs)),
		serviceMap: make(map[string]Service, len(svcs)),
	}
	for _, s := range svcs {
		if err := ctx.Register(s); err != nil {
			return nil, err
		}
	}
	return &ctx, nil
}

// Register adds a service; duplicate ids are rejected.
func (ctx *Context) Register(service Service) error {
	if _, ok := ctx.serviceMap[service.Id()]; ok {
		return fmt.Errorf("service %s already registered", service.Id())
	}
	ctx.order = append(ctx.order, service.Id())
	ctx.serviceMap[service.Id()] = service
	return nil
}

// Service returns the service registered under id, or nil.
func (ctx *Context) Service(id string) Service {
	return ctx.serviceMap[id]
}

// Run configures then starts every service in registration order,
// bailing out on the first failure. SIGINT/SIGTERM shut services down
// in reverse order.
func (ctx *Context) Run() error {
	_, cancel := gocontext.WithCancel(gocontext.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received signal. Shutting down")
		for i := len(ctx.order) - 1; i >= 0; i-- {
			log.Info().Str("service", ctx.order[i]).Msg("Shutting down")
			ctx.serviceMap[ctx.order[i]].Shutdown()
		}
		cancel()
	}()

	for _, id := range ctx.order {
		log.Info().Str("service", id).Msg("Context Configure")
		if err := ctx.serviceMap[id].Configure(ctx); err != nil {
			log.Error().Err(err).Str("service", id).Msg("Context Configure Error")
			return err
		}
	}

	for _, id := range ctx.order {
		log.Info().Str("service", id).Msg("Context Start")
		if err := ctx.serviceMap[id].Start(); err != nil {
			log.Error().Err(err).Str("service", id).Msg("Context Start Error")
			return err
		}
	}

	return nil
}

// Services returns the ids of all registered services in start order.
func (ctx *Context) Services() []string {
	out := make([]string, len(ctx.order))
	copy(out, ctx.order)
	return out
}
