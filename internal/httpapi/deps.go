package httpapi

import (
	"sync/atomic"

	"jobscout-engine/internal/events"
	"jobscout-engine/internal/search"
	"jobscout-engine/internal/store"
)

type Deps struct {
	DB  *store.DB
	Hub *events.Hub

	Searcher *search.Service

	// Atomic stores
	CfgVal    *atomic.Value // stores config.Config
	RunStatus *atomic.Value // stores httpapi.RunStatus

	UserCfgPath string
}
