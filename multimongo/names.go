package multimongo

import (
	"fmt"
	"strings"

	"github.com/kbukum/multimongo/errors"
)

// Slot identifies one connection.
type Slot string

const (
	Primary   Slot = "primary"
	Secondary Slot = "secondary"
	Tertiary  Slot = "tertiary"
	// Default is the single-connection fallback read from mongodb.*.
	Default Slot = "default"
)

// Capabilities provided by Install.
const (
	CapabilityDriver   = "mongo-driver"
	CapabilityReactive = "mongo-reactive"
)

const (
	// PropertyPrefix is the root of the slot property bags.
	PropertyPrefix = "multimongo"
	// DefaultPropertyPrefix is the property bag of the Default slot.
	DefaultPropertyPrefix = "mongodb"

	// PreConfiguration registers beans shared by the reactive slots.
	PreConfiguration = "mongo-reactive-pre"
	// DefaultConfiguration is the single-connection fallback.
	DefaultConfiguration = "mongo-default"

	// BufferFactoryBean is the data buffer factory shared by every reactive slot.
	BufferFactoryBean = "mongo_data_buffer_factory"
)

// Slots returns the configurable slots in order.
func Slots() []Slot { return []Slot{Primary, Secondary, Tertiary} }

// ParseSlot converts a name to a Slot.
func ParseSlot(name string) (Slot, error) {
	s := Slot(strings.ToLower(strings.TrimSpace(name)))
	switch s {
	case Primary, Secondary, Tertiary, Default:
		return s, nil
	}
	return "", errors.InvalidInput("slot", fmt.Sprintf("unknown slot %q", name))
}

func (s Slot) String() string { return string(s) }

// Prefix is the property prefix of the slot.
func (s Slot) Prefix() string {
	if s == Default {
		return DefaultPropertyPrefix
	}
	return PropertyPrefix + "." + string(s)
}

// ConfigurationName is the name of the blocking configuration of the slot.
func ConfigurationName(s Slot) string {
	if s == Default {
		return DefaultConfiguration
	}
	return string(s) + "-mongo"
}

// ReactiveConfigurationName is the name of the reactive configuration.
func ReactiveConfigurationName(s Slot) string { return ConfigurationName(s) + "-reactive" }

// RepositoriesConfigurationName is the name of the repository configuration.
func RepositoriesConfigurationName(s Slot) string { return ConfigurationName(s) + "-repositories" }

// Names are the bean names of a blocking slot.
type Names struct {
	Properties         string
	ConnectionDetails  string
	SettingsCustomizer string
	ClientFactory      string
	ClientSettings     string
	Client             string
	DatabaseFactory    string
	TransactionManager string
	// TransactionOptions is never registered by the slot. An application
	// bean under this name configures the transaction manager.
	TransactionOptions string
	CustomConversions  string
	ManagedTypes       string
	MappingContext     string
	MappingConverter   string
	Template           string
	GridFsTemplate     string
}

// ReactiveNames are the bean names of a reactive slot.
type ReactiveNames struct {
	ClientFactory   string
	Client          string
	DatabaseFactory string
	Template        string
	GridFsTemplate  string
}

func beanPrefix(s Slot) string {
	if s == Default {
		return "mongo_"
	}
	return string(s) + "_mongo_"
}

// NamesFor returns the blocking bean names of s.
func NamesFor(s Slot) Names {
	p := beanPrefix(s)
	return Names{
		Properties:         p + "properties",
		ConnectionDetails:  p + "connection_details",
		SettingsCustomizer: p + "client_settings_builder_customizer",
		ClientFactory:      p + "client_factory",
		ClientSettings:     p + "client_settings",
		Client:             p + "client",
		DatabaseFactory:    p + "database_factory",
		TransactionManager: p + "transaction_manager",
		TransactionOptions: p + "transaction_options",
		CustomConversions:  p + "custom_conversions",
		ManagedTypes:       p + "managed_types",
		MappingContext:     p + "mapping_context",
		MappingConverter:   p + "mapping_converter",
		Template:           p + "template",
		GridFsTemplate:     p + "grid_fs_template",
	}
}

// ReactiveNamesFor returns the reactive bean names of s.
func ReactiveNamesFor(s Slot) ReactiveNames {
	p := string(s) + "_reactive_mongo_"
	if s == Default {
		p = "reactive_mongo_"
	}
	return ReactiveNames{
		ClientFactory:   p + "client_factory",
		Client:          p + "client",
		DatabaseFactory: p + "database_factory",
		Template:        p + "template",
		GridFsTemplate:  p + "grid_fs_template",
	}
}
