// Package multimongo wires up to three independent MongoDB connections,
// named primary, secondary and tertiary, into a di container.
//
// Each slot reads its properties from multimongo.<slot>.* and contributes a
// blocking configuration, a reactive configuration and a repository
// configuration to an autoconfig.Engine:
//
//	engine := autoconfig.NewEngine(di.NewContainer(), props)
//	if err := multimongo.Install(engine,
//		multimongo.WithRepository(multimongo.Secondary, multimongo.Repository[Order]("order_repository")),
//	); err != nil {
//		return err
//	}
//	if err := engine.Refresh(ctx); err != nil {
//		return err
//	}
//	client, err := multimongo.Client(engine.Container(), multimongo.Secondary)
//
// Beans are named <slot>_mongo_<role> and <slot>_reactive_mongo_<role>.
// When no slot is configured and mongodb.uri or mongodb.host is set, the
// mongo-default configuration registers a single connection under
// mongo_<role>.
package multimongo
