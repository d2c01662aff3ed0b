package multimongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kbukum/multimongo/autoconfig"
	"github.com/kbukum/multimongo/component"
	"github.com/kbukum/multimongo/di"
	"github.com/kbukum/multimongo/mongodb"
)

// Components returns one lifecycle component per active blocking slot and
// for the default connection when it is active. Clients are disconnected by
// the engine, not by the components.
func Components(ctx context.Context, engine *autoconfig.Engine, opts ...mongodb.ComponentOption) ([]component.Component, error) {
	var out []component.Component
	for _, s := range append(Slots(), Default) {
		if !engine.Active(ConfigurationName(s)) {
			continue
		}
		c, err := slotComponent(ctx, engine.Container(), s, opts)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func slotComponent(ctx context.Context, c di.Container, s Slot, opts []mongodb.ComponentOption) (*mongodb.Component, error) {
	n := NamesFor(s)
	if !c.Has(n.Client) || !c.Has(n.Properties) {
		return nil, nil
	}
	client, err := di.ResolveContext[*mongo.Client](ctx, c, n.Client)
	if err != nil {
		return nil, err
	}
	props, err := di.ResolveContext[*mongodb.Properties](ctx, c, n.Properties)
	if err != nil {
		return nil, err
	}

	var compOpts []mongodb.ComponentOption
	if c.Has(n.ConnectionDetails) {
		details, err := di.ResolveContext[mongodb.ConnectionDetails](ctx, c, n.ConnectionDetails)
		if err != nil {
			return nil, err
		}
		compOpts = append(compOpts, mongodb.WithConnectionDetails(details))
	}
	if c.Has(n.Template) {
		template, err := di.ResolveContext[*mongodb.Template](ctx, c, n.Template)
		if err != nil {
			return nil, err
		}
		compOpts = append(compOpts, mongodb.WithTemplate(template))
	}
	return mongodb.NewComponent(ConfigurationName(s), client, props, append(compOpts, opts...)...), nil
}
