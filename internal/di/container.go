// Package di provides dependency injection configuration for the bookshelf server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/bookshelf/internal/bookapi"
	"github.com/listenupapp/bookshelf/internal/config"
	"github.com/listenupapp/bookshelf/internal/di/providers"
	"github.com/listenupapp/bookshelf/internal/logger"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()
	do.Provide(injector, providers.ProvideConfig)
	registerServices(injector)
	return injector
}

// registerServices provides everything except the configuration.
func registerServices(injector do.Injector) {
	// Core infrastructure
	do.Provide(injector, providers.ProvideLogger)

	// Book data
	do.Provide(injector, providers.ProvideBooksClient)
	do.Provide(injector, providers.ProvideBookStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Live updates
	do.Provide(injector, providers.ProvideSSEManager)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
}

// Bootstrap initializes all services. This triggers lazy initialization,
// which starts the store warm-up, the event bridge and the HTTP listener.
func Bootstrap(injector do.Injector) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*bookapi.Client](injector)
	_ = do.MustInvoke[*providers.BookStoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)
	return nil
}
