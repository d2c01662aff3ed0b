package mongodb

import (
	"strings"
	"time"

	"github.com/kbukum/multimongo/config"
	"github.com/kbukum/multimongo/errors"
	"github.com/kbukum/multimongo/security"
	"github.com/kbukum/multimongo/validation"
)

const (
	DefaultHost     = "localhost"
	DefaultPort     = 27017
	DefaultDatabase = "test"
	DefaultBucket   = "fs"
)

// UUID representations.
const (
	UUIDStandard   = "standard"
	UUIDJavaLegacy = "java_legacy"
)

// Properties is the configuration of one MongoDB connection.
type Properties struct {
	// URI wins over the host, port and credential fields when set.
	URI                    string   `mapstructure:"uri" validate:"omitempty,mongouri"`
	Host                   string   `mapstructure:"host"`
	Port                   int      `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	AdditionalHosts        []string `mapstructure:"additional_hosts" validate:"omitempty,dive,hostport"`
	Database               string   `mapstructure:"database"`
	AuthenticationDatabase string   `mapstructure:"authentication_database"`
	Username               string   `mapstructure:"username"`
	Password               string   `mapstructure:"password"`
	ReplicaSetName         string   `mapstructure:"replica_set_name"`
	AppName                string   `mapstructure:"app_name"`

	GridFs GridFsProperties `mapstructure:"gridfs"`

	UUIDRepresentation  string `mapstructure:"uuid_representation" validate:"omitempty,oneof=standard java_legacy"`
	AutoIndexCreation   bool   `mapstructure:"auto_index_creation"`
	FieldNamingStrategy string `mapstructure:"field_naming_strategy" validate:"omitempty,oneof=lower_case snake_case camel_case"`
	// NullTypeKey suppresses the type discriminator written by the converter.
	NullTypeKey       bool `mapstructure:"null_type_key"`
	RepositoryEnabled bool `mapstructure:"repository_enabled"`

	MaxPoolSize            uint64        `mapstructure:"max_pool_size"`
	MinPoolSize            uint64        `mapstructure:"min_pool_size"`
	ConnectTimeout         time.Duration `mapstructure:"connect_timeout"`
	ServerSelectionTimeout time.Duration `mapstructure:"server_selection_timeout"`
	PingOnStart            bool          `mapstructure:"ping_on_start"`

	TLS security.TLSConfig `mapstructure:"tls"`
}

// GridFsProperties configures the GridFS bucket of a connection.
type GridFsProperties struct {
	Database string `mapstructure:"database"`
	Bucket   string `mapstructure:"bucket"`
}

// NewProperties returns properties with the defaults that cannot be told
// apart from an explicit false after decoding.
func NewProperties() *Properties {
	return &Properties{
		RepositoryEnabled: true,
		PingOnStart:       true,
	}
}

// LoadProperties binds the bag under prefix, applies defaults and validates.
func LoadProperties(props config.Properties, prefix string) (*Properties, error) {
	p := NewProperties()
	if err := props.Unmarshal(prefix, p); err != nil {
		return nil, errors.InvalidConfig(prefix, "cannot bind properties").WithCause(err)
	}
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return nil, appErr.WithDetail("prefix", prefix)
		}
		return nil, errors.InvalidConfig(prefix, err.Error()).WithCause(err)
	}
	return p, nil
}

// ApplyDefaults sets defaults for zero-valued fields. The port stays unset
// next to a uri.
func (p *Properties) ApplyDefaults() {
	if p.Port == 0 && p.URI == "" {
		p.Port = DefaultPort
	}
	if p.GridFs.Bucket == "" {
		p.GridFs.Bucket = DefaultBucket
	}
	if p.UUIDRepresentation == "" {
		p.UUIDRepresentation = UUIDStandard
	}
	if p.FieldNamingStrategy == "" {
		p.FieldNamingStrategy = string(LowerCase)
	}
}

// Validate checks field formats and cross-field constraints.
func (p *Properties) Validate() error {
	c := validation.NewCollector()
	if err := validation.Validate(p); err != nil {
		c.Merge("", err)
	}
	c.Check(p.MaxPoolSize == 0 || p.MinPoolSize <= p.MaxPoolSize,
		"min_pool_size", "must not exceed max_pool_size")
	c.Check(p.ConnectTimeout >= 0, "connect_timeout", "must not be negative")
	c.Check(p.ServerSelectionTimeout >= 0, "server_selection_timeout", "must not be negative")
	if p.URI != "" {
		const withURI = "cannot be combined with uri, either uri or host/port/credentials/replica_set_name must be specified"
		c.Check(p.Host == "", "host", withURI)
		c.Check(p.Port == 0, "port", withURI)
		c.Check(len(p.AdditionalHosts) == 0, "additional_hosts", withURI)
		c.Check(p.Username == "" && p.Password == "", "username", withURI)
		c.Check(p.ReplicaSetName == "", "replica_set_name", withURI)
	}
	if err := p.TLS.Validate(); err != nil {
		c.Add("tls", err.Error())
	}
	return c.Err()
}

// IsConfigured reports whether a uri or host is set.
func (p *Properties) IsConfigured() bool {
	return p.URI != "" || p.Host != ""
}

// GetDatabase returns the database name: the database property, then the
// database in the uri path, then "test".
func (p *Properties) GetDatabase() string {
	if p.Database != "" {
		return p.Database
	}
	if db := uriDatabase(p.URI); db != "" {
		return db
	}
	return DefaultDatabase
}

// uriDatabase extracts the path database of a connection string without
// parsing hosts, so SRV strings are never resolved.
func uriDatabase(uri string) string {
	_, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return ""
	}
	_, path, ok := strings.Cut(rest, "/")
	if !ok {
		return ""
	}
	db, _, _ := strings.Cut(path, "?")
	return db
}
