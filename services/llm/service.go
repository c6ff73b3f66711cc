package llm

import (
	"fmt"
	"log"
	"strings"
)

type Options struct {
	DefaultProvider string
	OpenAIAPIKey    string
	OpenAIModel     string
	AnthropicAPIKey string
	AnthropicModel  string
}

// Service holds the configured generation clients, keyed by provider name.
type Service struct {
	clients         map[string]Client
	defaultProvider string
}

func NewService(opts Options) (*Service, error) {
	service := &Service{clients: make(map[string]Client)}

	if opts.OpenAIAPIKey != "" {
		client, err := NewOpenAIClient(opts.OpenAIAPIKey, opts.OpenAIModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		service.clients[ProviderOpenAI] = client
		log.Printf("[INFO] Registered OpenAI generation provider (model %s)", opts.OpenAIModel)
	}
	if opts.AnthropicAPIKey != "" {
		client, err := NewAnthropicClient(opts.AnthropicAPIKey, opts.AnthropicModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create Anthropic client: %w", err)
		}
		service.clients[ProviderAnthropic] = client
		log.Printf("[INFO] Registered Anthropic generation provider")
	}

	if len(service.clients) == 0 {
		return nil, fmt.Errorf("no generation providers configured")
	}

	service.defaultProvider = strings.ToLower(opts.DefaultProvider)
	if service.defaultProvider == "" {
		if _, ok := service.clients[ProviderOpenAI]; ok {
			service.defaultProvider = ProviderOpenAI
		} else {
			service.defaultProvider = ProviderAnthropic
		}
	}
	if _, ok := service.clients[service.defaultProvider]; !ok {
		return nil, fmt.Errorf("default provider %q is not configured", service.defaultProvider)
	}

	return service, nil
}

// ClientFor resolves a provider name to its client. An empty name selects
// the default provider.
func (s *Service) ClientFor(provider string) (Client, error) {
	name := strings.ToLower(strings.TrimSpace(provider))
	if name == "" {
		name = s.defaultProvider
	}

	client, ok := s.clients[name]
	if !ok {
		return nil, fmt.Errorf("unknown generation provider: %s", provider)
	}
	return client, nil
}
