package mongodb

import (
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ConnectionDetails tells a client where and how to connect.
type ConnectionDetails interface {
	ConnectionString() string
	Database() string
	GridFs() GridFsDetails
}

// GridFsDetails locates a GridFS bucket.
type GridFsDetails struct {
	Database string
	Bucket   string
}

// PropertiesConnectionDetails derives connection details from Properties.
type PropertiesConnectionDetails struct {
	props *Properties
}

var _ ConnectionDetails = (*PropertiesConnectionDetails)(nil)

func NewPropertiesConnectionDetails(props *Properties) *PropertiesConnectionDetails {
	return &PropertiesConnectionDetails{props: props}
}

// ConnectionString returns the uri when set, otherwise one built from the
// host, port, credential and replica set fields. A port already present in
// host wins over the port field.
func (d *PropertiesConnectionDetails) ConnectionString() string {
	p := d.props
	if p.URI != "" {
		return p.URI
	}

	hosts := []string{seedHost(p.Host, p.Port)}
	hosts = append(hosts, p.AdditionalHosts...)

	u := url.URL{
		Scheme: "mongodb",
		Host:   strings.Join(hosts, ","),
		Path:   "/" + p.Database,
	}
	if p.Username != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	}
	q := url.Values{}
	if p.AuthenticationDatabase != "" {
		q.Set("authSource", p.AuthenticationDatabase)
	}
	if p.ReplicaSetName != "" {
		q.Set("replicaSet", p.ReplicaSetName)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func seedHost(host string, port int) string {
	if host == "" {
		host = DefaultHost
	}
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func (d *PropertiesConnectionDetails) Database() string {
	return d.props.GetDatabase()
}

// GridFs defaults the database to the connection database and the bucket
// to "fs".
func (d *PropertiesConnectionDetails) GridFs() GridFsDetails {
	g := GridFsDetails{Database: d.props.GridFs.Database, Bucket: d.props.GridFs.Bucket}
	if g.Database == "" {
		g.Database = d.props.GetDatabase()
	}
	if g.Bucket == "" {
		g.Bucket = DefaultBucket
	}
	return g
}

// Hosts returns the seed list of a connection string without resolving it.
func Hosts(connectionString string) []string {
	_, rest, ok := strings.Cut(connectionString, "://")
	if !ok {
		return nil
	}
	authority, _, _ := strings.Cut(rest, "/")
	authority, _, _ = strings.Cut(authority, "?")
	if i := strings.LastIndex(authority, "@"); i >= 0 {
		authority = authority[i+1:]
	}
	if authority == "" {
		return nil
	}
	return strings.Split(authority, ",")
}
