package multimongo

import (
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kbukum/multimongo/autoconfig"
	"github.com/kbukum/multimongo/condition"
	"github.com/kbukum/multimongo/logger"
	"github.com/kbukum/multimongo/mongodb"
)

// reactiveConfiguration adds a second client for streaming work. It shares
// the client settings, the mapping converter and the properties of the
// blocking configuration of the same slot.
func reactiveConfiguration(s Slot, o *installOptions) *autoconfig.Configuration {
	n := NamesFor(s)
	rn := ReactiveNamesFor(s)
	primary := s == Primary

	return &autoconfig.Configuration{
		Name:        ReactiveConfigurationName(s),
		Description: fmt.Sprintf("streaming MongoDB connection from %s.uri", s.Prefix()),
		Conditions: []condition.Condition{
			enabled(),
			condition.OnProperty(s.Prefix(), "uri"),
			condition.OnCapability(CapabilityReactive),
		},
		After: []string{ConfigurationName(s), PreConfiguration},
		Beans: []*autoconfig.BeanDefinition{
			autoconfig.Bean(rn.ClientFactory, func(*autoconfig.Beans) (*mongodb.ClientFactory, error) {
				return mongodb.NewClientFactory(o.connect), nil
			}).When(condition.OnBean(n.SettingsCustomizer)),

			autoconfig.Bean(rn.Client, func(b *autoconfig.Beans) (*mongo.Client, error) {
				factory, err := autoconfig.Get[*mongodb.ClientFactory](b, rn.ClientFactory)
				if err != nil {
					return nil, err
				}
				settings, err := autoconfig.Get[*mongodb.ClientSettings](b, n.ClientSettings)
				if err != nil {
					return nil, err
				}
				client, err := factory.Create(b.Context(), settings)
				if err != nil {
					return nil, err
				}
				logger.Get("multimongo").Info("reactive client created", logger.SlotFields(string(s), rn.Client))
				return client, nil
			}).When(condition.OnBean(rn.ClientFactory, n.ClientSettings)).
				OnDestroy(mongodb.Disconnect),

			autoconfig.Bean(rn.DatabaseFactory, func(b *autoconfig.Beans) (*mongodb.DatabaseFactory, error) {
				client, err := autoconfig.Get[*mongo.Client](b, rn.Client)
				if err != nil {
					return nil, err
				}
				details, err := connectionDetails(b, n)
				if err != nil {
					return nil, err
				}
				return mongodb.NewDatabaseFactory(client, details.Database()), nil
			}).When(condition.OnBean(rn.Client, n.Properties)),

			autoconfig.Bean(rn.Template, func(b *autoconfig.Beans) (*mongodb.ReactiveTemplate, error) {
				factory, err := autoconfig.Get[*mongodb.DatabaseFactory](b, rn.DatabaseFactory)
				if err != nil {
					return nil, err
				}
				converter, err := autoconfig.Get[*mongodb.MappingConverter](b, n.MappingConverter)
				if err != nil {
					return nil, err
				}
				return mongodb.NewReactiveTemplate(factory, converter), nil
			}).When(condition.OnBean(rn.DatabaseFactory, n.MappingConverter)).PrimaryIf(primary),

			autoconfig.Bean(rn.GridFsTemplate, func(b *autoconfig.Beans) (*mongodb.ReactiveGridFsTemplate, error) {
				factory, err := autoconfig.Get[*mongodb.DatabaseFactory](b, rn.DatabaseFactory)
				if err != nil {
					return nil, err
				}
				converter, err := autoconfig.Get[*mongodb.MappingConverter](b, n.MappingConverter)
				if err != nil {
					return nil, err
				}
				buffers, err := autoconfig.Get[*mongodb.BufferFactory](b, BufferFactoryBean)
				if err != nil {
					return nil, err
				}
				details, err := connectionDetails(b, n)
				if err != nil {
					return nil, err
				}
				return mongodb.NewReactiveGridFsTemplate(factory, converter, buffers, details.GridFs()), nil
			}).When(condition.OnBean(rn.DatabaseFactory, n.MappingConverter, BufferFactoryBean, n.Properties)).
				PrimaryIf(primary),
		},
	}
}
