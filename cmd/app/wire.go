//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/billing-dashboard/internal/bootstrap"
	"github.com/yanqian/billing-dashboard/internal/domain/auth"
	"github.com/yanqian/billing-dashboard/internal/domain/billing"
	"github.com/yanqian/billing-dashboard/internal/infra/config"
	"github.com/yanqian/billing-dashboard/internal/infra/llm/chatgpt"
	httpiface "github.com/yanqian/billing-dashboard/internal/interface/http"
	"github.com/yanqian/billing-dashboard/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideBillingConfig,
		provideAuthConfig,
		provideChatGPTClient,
		provideSupabaseClient,
		provideRemoteLookup,
		provideBillingRepository,
		provideViewTracker,
		auth.NewService,
		billing.NewExplainer,
		billing.NewService,
		wire.Bind(new(billing.ChatClient), new(*chatgpt.Client)),
		wire.Bind(new(billing.IdentityResolver), new(auth.Service)),
		wire.Bind(new(billing.Analyst), new(*billing.Explainer)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
