// Package bootstrap runs a multimongo application: it installs the MongoDB
// auto-configuration into an engine, refreshes it, starts one lifecycle
// component per active connection and shuts everything down on a signal.
//
//	props, _ := config.LoadProperties("orders")
//	var cfg AppConfig
//	_ = props.UnmarshalAll(&cfg)
//
//	app, err := bootstrap.NewApp(&cfg,
//	    bootstrap.WithProperties(props),
//	    bootstrap.WithMultiMongo(multimongo.WithEntities(multimongo.Primary, reflect.TypeOf(Order{}))),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*AppConfig]) error {
//	    orders, err := multimongo.Template(a.Container, multimongo.Primary)
//	    ...
//	})
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package bootstrap
