package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cloo-solutions/concierge/internal/api/handlers"
	"github.com/cloo-solutions/concierge/internal/config"
	"github.com/cloo-solutions/concierge/internal/knowledge"
	"github.com/cloo-solutions/concierge/internal/llm"
	"github.com/cloo-solutions/concierge/internal/metrics"
	"github.com/cloo-solutions/concierge/internal/retrieval"
	"github.com/cloo-solutions/concierge/internal/service"
	"github.com/cloo-solutions/concierge/internal/websearch"
	log "github.com/sirupsen/logrus"
)

// Deps are the collaborators an App is assembled from.
type Deps struct {
	Store          *knowledge.Store
	Completer      llm.Completer
	Gateway        *websearch.Gateway
	Classifier     *websearch.Classifier
	Contact        service.Contact
	Chat           service.ChatConfig
	MetricsEnabled bool
}

// App is the fully wired chat pipeline and its HTTP surface.
type App struct {
	Store      *knowledge.Store
	Retriever  *retrieval.Retriever
	Classifier *websearch.Classifier
	Gateway    *websearch.Gateway
	Completer  llm.Completer
	Chat       *service.ChatService
	Knowledge  *service.KnowledgeService
	Handler    http.Handler
}

// Build wires deps into an App. A nil Classifier uses the wall clock.
func Build(deps Deps) *App {
	classifier := deps.Classifier
	if classifier == nil {
		classifier = websearch.NewClassifier(time.Now())
	}
	gateway := deps.Gateway
	if gateway == nil {
		gateway = websearch.NewGateway()
	}

	// An unconfigured gateway would only ever fail, so turns skip search.
	var searcher service.SearchGatewayInterface
	if gateway.Configured() {
		searcher = gateway
	}

	retriever := retrieval.NewRetriever(deps.Store.Items())
	chatSvc := service.NewChatService(retriever, classifier, searcher, deps.Completer, deps.Chat)
	knowledgeSvc := service.NewKnowledgeService(deps.Store, retriever)

	router := NewRouter(RouterConfig{
		ChatHandler:      handlers.NewChatHandler(chatSvc, deps.Contact.Apology()),
		KnowledgeHandler: handlers.NewKnowledgeHandler(knowledgeSvc),
		MetricsEnabled:   deps.MetricsEnabled,
	})

	return &App{
		Store:      deps.Store,
		Retriever:  retriever,
		Classifier: classifier,
		Gateway:    gateway,
		Completer:  deps.Completer,
		Chat:       chatSvc,
		Knowledge:  knowledgeSvc,
		Handler:    router,
	}
}

// LoadStore loads the knowledge corpus named by cfg, or the built-in one.
func LoadStore(cfg *config.Config) (*knowledge.Store, error) {
	store, err := knowledge.Load(cfg.KnowledgeFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge corpus: %w", err)
	}
	return store, nil
}

// NewApp builds the production App from configuration.
func NewApp(cfg *config.Config) (*App, error) {
	store, err := LoadStore(cfg)
	if err != nil {
		return nil, err
	}

	completer, err := llm.New(llm.Options{
		Provider:         cfg.LLMProvider,
		AnthropicAPIKey:  cfg.AnthropicAPIKey,
		AnthropicBaseURL: cfg.AnthropicBaseURL,
		AnthropicModel:   cfg.AnthropicModel,
		OpenAIAPIKey:     cfg.OpenAIAPIKey,
		OpenAIBaseURL:    cfg.OpenAIBaseURL,
		OpenAIModel:      cfg.OpenAIModel,
		Timeout:          cfg.ModelTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	var gateway *websearch.Gateway
	if cfg.HasWebSearch() {
		gateway = websearch.NewGatewayFromOptions(websearch.Options{
			TavilyAPIKey:  cfg.TavilyAPIKey,
			TavilyBaseURL: cfg.TavilyBaseURL,
			BraveAPIKey:   cfg.BraveAPIKey,
			BraveBaseURL:  cfg.BraveBaseURL,
			Timeout:       cfg.SearchTimeout,
		})
	} else {
		log.Warn("no TAVILY_API_KEY or BRAVE_API_KEY set, chat answers from the knowledge base only")
	}

	metrics.SetEnabled(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		metrics.Register()
	}

	log.WithFields(log.Fields{
		"knowledge_items":  store.Len(),
		"model_provider":   completer.Provider(),
		"model":            completer.Model(),
		"search_providers": gateway.Providers(),
	}).Info("chat pipeline configured")

	return Build(Deps{
		Store:      store,
		Completer:  completer,
		Gateway:    gateway,
		Classifier: websearch.NewClassifier(time.Now()),
		Contact:    service.Contact{Email: cfg.ContactEmail, Phone: cfg.ContactPhone},
		Chat: service.ChatConfig{
			MaxTokens:    cfg.MaxOutputTokens,
			ModelTimeout: cfg.ModelTimeout,
		},
		MetricsEnabled: cfg.MetricsEnabled,
	}), nil
}
