package notify

import "go.uber.org/fx"

// Module provides the in-process order event hub.
var Module = fx.Provide(NewHub)
