// Package di provides the named-singleton container multimongo registers
// its beans in.
//
// Components are registered under a unique key as lazy constructors, eager
// constructors or ready instances. The container records each component's
// type and whether it is the primary candidate for that type, so callers
// can look beans up by name or by type:
//
//	c := di.NewContainer()
//	_ = c.RegisterLazy("primary_mongo_client", newClient, di.AsPrimary())
//	client, err := di.ResolveType[*mongo.Client](c)
//
// Close destroys constructed components in reverse construction order.
package di
