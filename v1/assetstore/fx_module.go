package assetstore

import "go.uber.org/fx"

// FXModule provides the configured Source to the Fx container.
//
// Dependencies required by this module:
//   - an assetstore.Config
//   - an assetstore.Logger
//
// Usage:
//
//	app := fx.New(
//	    assetstore.FXModule,
//	    fx.Supply(assetstore.Config{Kind: "dir", Dir: "/models"}),
//	    // other modules...
//	)
var FXModule = fx.Module("assetstore",
	fx.Provide(New),
)
