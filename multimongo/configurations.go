package multimongo

import (
	"fmt"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kbukum/multimongo/autoconfig"
	"github.com/kbukum/multimongo/condition"
	"github.com/kbukum/multimongo/logger"
	"github.com/kbukum/multimongo/mongodb"
)

// Install provides the driver capabilities to engine and registers every
// configuration of the module.
func Install(engine *autoconfig.Engine, opts ...Option) error {
	o := newOptions(opts)
	for _, c := range []string{CapabilityDriver, CapabilityReactive} {
		if o.disabled[c] {
			engine.RemoveCapability(c)
			continue
		}
		engine.AddCapability(c)
	}
	return engine.Register(configurations(o)...)
}

// Configurations returns the configurations Install registers.
func Configurations(opts ...Option) []*autoconfig.Configuration {
	return configurations(newOptions(opts))
}

func configurations(o *installOptions) []*autoconfig.Configuration {
	cfgs := []*autoconfig.Configuration{preConfiguration()}
	for _, s := range Slots() {
		cfgs = append(cfgs, slotConfiguration(s, o))
	}
	for _, s := range Slots() {
		cfgs = append(cfgs, reactiveConfiguration(s, o))
	}
	for _, s := range Slots() {
		cfgs = append(cfgs, repositoriesConfiguration(s, o))
	}
	return append(cfgs, defaultConfiguration(o), repositoriesConfiguration(Default, o))
}

func enabled() condition.Condition {
	return condition.OnProperty(PropertyPrefix, "enabled", condition.HavingValue("true"), condition.MatchIfMissing())
}

func configured(s Slot) condition.Condition {
	return condition.AnyOf(
		condition.OnProperty(s.Prefix(), "uri"),
		condition.OnProperty(s.Prefix(), "host"),
	)
}

func preConfiguration() *autoconfig.Configuration {
	before := []string{DefaultConfiguration}
	for _, s := range Slots() {
		before = append(before, ConfigurationName(s))
	}
	return &autoconfig.Configuration{
		Name:        PreConfiguration,
		Description: "data buffer factory shared by the reactive slots",
		Conditions:  []condition.Condition{condition.OnCapability(CapabilityReactive)},
		Before:      before,
		Beans: []*autoconfig.BeanDefinition{
			autoconfig.Bean(BufferFactoryBean, func(*autoconfig.Beans) (*mongodb.BufferFactory, error) {
				return mongodb.NewBufferFactory(0), nil
			}).AsPrimary(),
		},
	}
}

func slotConfiguration(s Slot, o *installOptions) *autoconfig.Configuration {
	var after []string
	switch s {
	case Primary:
		after = []string{PreConfiguration}
	case Secondary:
		after = []string{ConfigurationName(Primary)}
	case Tertiary:
		after = []string{ConfigurationName(Secondary)}
	}
	before := []string{DefaultConfiguration}
	for _, other := range Slots() {
		before = append(before, ReactiveConfigurationName(other))
	}

	return &autoconfig.Configuration{
		Name:        ConfigurationName(s),
		Description: fmt.Sprintf("blocking MongoDB connection from %s.*", s.Prefix()),
		Conditions: []condition.Condition{
			enabled(),
			configured(s),
			condition.OnCapability(CapabilityDriver),
		},
		After:  after,
		Before: before,
		Beans:  blockingBeans(s, o),
	}
}

func defaultConfiguration(o *installOptions) *autoconfig.Configuration {
	var after []string
	for _, s := range Slots() {
		after = append(after, ConfigurationName(s), ReactiveConfigurationName(s), RepositoriesConfigurationName(s))
	}
	return &autoconfig.Configuration{
		Name:        DefaultConfiguration,
		Description: "single MongoDB connection from mongodb.* when no slot client exists",
		Conditions: []condition.Condition{
			condition.OnCapability(CapabilityDriver),
			condition.OnMissingBeanOfType[*mongo.Client](),
			configured(Default),
		},
		After: after,
		Beans: blockingBeans(Default, o),
	}
}

// connectionDetails returns the details bean of the slot, or details
// derived from the properties when an application removed it.
func connectionDetails(b *autoconfig.Beans, n Names) (mongodb.ConnectionDetails, error) {
	details, ok, err := autoconfig.Optional[mongodb.ConnectionDetails](b, n.ConnectionDetails)
	if err != nil || ok {
		return details, err
	}
	props, err := autoconfig.Get[*mongodb.Properties](b, n.Properties)
	if err != nil {
		return nil, err
	}
	return mongodb.NewPropertiesConnectionDetails(props), nil
}

func blockingBeans(s Slot, o *installOptions) []*autoconfig.BeanDefinition {
	n := NamesFor(s)
	so := o.slot(s)
	primary := s == Primary || s == Default
	log := logger.Get("multimongo")

	return []*autoconfig.BeanDefinition{
		autoconfig.Bean(n.Properties, func(b *autoconfig.Beans) (*mongodb.Properties, error) {
			return mongodb.LoadProperties(b.Properties(), s.Prefix())
		}).PrimaryIf(primary),

		autoconfig.Bean(n.ConnectionDetails, func(b *autoconfig.Beans) (mongodb.ConnectionDetails, error) {
			props, err := autoconfig.Get[*mongodb.Properties](b, n.Properties)
			if err != nil {
				return nil, err
			}
			return mongodb.NewPropertiesConnectionDetails(props), nil
		}).When(condition.OnBean(n.Properties)).PrimaryIf(primary),

		autoconfig.Bean(n.SettingsCustomizer, func(b *autoconfig.Beans) (mongodb.SettingsCustomizer, error) {
			props, err := autoconfig.Get[*mongodb.Properties](b, n.Properties)
			if err != nil {
				return nil, err
			}
			details, _, err := autoconfig.Optional[mongodb.ConnectionDetails](b, n.ConnectionDetails)
			if err != nil {
				return nil, err
			}
			return mongodb.StandardSettingsCustomizer(props, details, mongodb.CommandMonitor(string(s), o.metrics)), nil
		}).When(condition.OnBean(n.Properties)).PrimaryIf(primary),

		autoconfig.Bean(n.ClientFactory, func(*autoconfig.Beans) (*mongodb.ClientFactory, error) {
			return mongodb.NewClientFactory(o.connect), nil
		}).When(condition.OnBean(n.SettingsCustomizer)).PrimaryIf(primary),

		autoconfig.Bean(n.ClientSettings, func(b *autoconfig.Beans) (*mongodb.ClientSettings, error) {
			customizer, err := autoconfig.Get[mongodb.SettingsCustomizer](b, n.SettingsCustomizer)
			if err != nil {
				return nil, err
			}
			return mongodb.NewClientSettings(append([]mongodb.SettingsCustomizer{customizer}, so.customizers...)...), nil
		}).When(condition.OnBean(n.SettingsCustomizer)).PrimaryIf(primary),

		autoconfig.Bean(n.Client, func(b *autoconfig.Beans) (*mongo.Client, error) {
			factory, err := autoconfig.Get[*mongodb.ClientFactory](b, n.ClientFactory)
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
			details, err := connectionDetails(b, n)
			if err != nil {
				_ = client.Disconnect(b.Context())
				return nil, err
			}
			log.Info("client created", logger.MergeFields(
				logger.SlotFields(string(s), n.Client),
				logger.Fields(logger.FieldHosts, strings.Join(mongodb.Hosts(details.ConnectionString()), ",")),
			))
			return client, nil
		}).When(condition.OnBean(n.ClientFactory, n.ClientSettings)).
			PrimaryIf(primary).
			OnDestroy(mongodb.Disconnect),

		autoconfig.Bean(n.DatabaseFactory, func(b *autoconfig.Beans) (*mongodb.DatabaseFactory, error) {
			client, err := autoconfig.Get[*mongo.Client](b, n.Client)
			if err != nil {
				return nil, err
			}
			details, err := connectionDetails(b, n)
			if err != nil {
				return nil, err
			}
			return mongodb.NewDatabaseFactory(client, details.Database()), nil
		}).When(condition.OnBean(n.Client, n.Properties)).PrimaryIf(primary),

		autoconfig.Bean(n.TransactionManager, func(b *autoconfig.Beans) (*mongodb.TransactionManager, error) {
			factory, err := autoconfig.Get[*mongodb.DatabaseFactory](b, n.DatabaseFactory)
			if err != nil {
				return nil, err
			}
			txOpts, _, err := autoconfig.Optional[*options.TransactionOptions](b, n.TransactionOptions)
			if err != nil {
				return nil, err
			}
			return mongodb.NewTransactionManager(factory, txOpts), nil
		}).When(condition.OnBean(n.DatabaseFactory)).PrimaryIf(primary),

		autoconfig.Bean(n.CustomConversions, func(b *autoconfig.Beans) (*mongodb.CustomConversions, error) {
			props, err := autoconfig.Get[*mongodb.Properties](b, n.Properties)
			if err != nil {
				return nil, err
			}
			return mongodb.NewCustomConversions(props.UUIDRepresentation, so.conversions...)
		}).PrimaryIf(primary),

		autoconfig.Bean(n.ManagedTypes, func(*autoconfig.Beans) (*mongodb.ManagedTypes, error) {
			types := append([]reflect.Type(nil), so.entities...)
			for _, r := range so.repositories {
				types = append(types, r.Entity)
			}
			return mongodb.NewManagedTypes(types...), nil
		}).PrimaryIf(primary),

		autoconfig.Bean(n.MappingContext, func(b *autoconfig.Beans) (*mongodb.MappingContext, error) {
			props, err := autoconfig.Get[*mongodb.Properties](b, n.Properties)
			if err != nil {
				return nil, err
			}
			conversions, err := autoconfig.Get[*mongodb.CustomConversions](b, n.CustomConversions)
			if err != nil {
				return nil, err
			}
			managed, _, err := autoconfig.Optional[*mongodb.ManagedTypes](b, n.ManagedTypes)
			if err != nil {
				return nil, err
			}
			return mongodb.NewMappingContext(managed, conversions,
				mongodb.NamingStrategy(props.FieldNamingStrategy), props.AutoIndexCreation)
		}).When(condition.OnBean(n.CustomConversions, n.Properties)).PrimaryIf(primary),

		autoconfig.Bean(n.MappingConverter, func(b *autoconfig.Beans) (*mongodb.MappingConverter, error) {
			props, err := autoconfig.Get[*mongodb.Properties](b, n.Properties)
			if err != nil {
				return nil, err
			}
			mapping, err := autoconfig.Get[*mongodb.MappingContext](b, n.MappingContext)
			if err != nil {
				return nil, err
			}
			conversions, err := autoconfig.Get[*mongodb.CustomConversions](b, n.CustomConversions)
			if err != nil {
				return nil, err
			}
			return mongodb.NewMappingConverter(mapping, conversions, props.NullTypeKey)
		}).When(condition.OnBean(n.DatabaseFactory, n.MappingContext, n.CustomConversions, n.Properties)).PrimaryIf(primary),

		autoconfig.Bean(n.Template, func(b *autoconfig.Beans) (*mongodb.Template, error) {
			factory, err := autoconfig.Get[*mongodb.DatabaseFactory](b, n.DatabaseFactory)
			if err != nil {
				return nil, err
			}
			converter, err := autoconfig.Get[*mongodb.MappingConverter](b, n.MappingConverter)
			if err != nil {
				return nil, err
			}
			return mongodb.NewTemplate(factory, converter), nil
		}).When(condition.OnBean(n.DatabaseFactory, n.MappingConverter)).PrimaryIf(primary),

		autoconfig.Bean(n.GridFsTemplate, func(b *autoconfig.Beans) (*mongodb.GridFsTemplate, error) {
			factory, err := autoconfig.Get[*mongodb.DatabaseFactory](b, n.DatabaseFactory)
			if err != nil {
				return nil, err
			}
			converter, err := autoconfig.Get[*mongodb.MappingConverter](b, n.MappingConverter)
			if err != nil {
				return nil, err
			}
			details, err := connectionDetails(b, n)
			if err != nil {
				return nil, err
			}
			return mongodb.NewGridFsTemplate(factory, converter, details.GridFs()), nil
		}).When(condition.OnBean(n.DatabaseFactory, n.Template, n.Properties)).PrimaryIf(primary),
	}
}
