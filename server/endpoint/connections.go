package endpoint

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/multimongo/di"
	"github.com/kbukum/multimongo/mongodb"
	"github.com/kbukum/multimongo/multimongo"
)

// Connection describes one configured MongoDB connection. Connection
// strings are never exposed since they may carry credentials.
type Connection struct {
	Slot          string   `json:"slot"`
	Configuration string   `json:"configuration"`
	Hosts         []string `json:"hosts"`
	Database      string   `json:"database"`
	GridFsBucket  string   `json:"gridfs_bucket"`
	Primary       bool     `json:"primary"`
	Reactive      bool     `json:"reactive"`
}

// Connections lists the connections whose configuration is active.
func Connections(container di.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		out := make([]Connection, 0, 4)
		for _, s := range append(multimongo.Slots(), multimongo.Default) {
			n := multimongo.NamesFor(s)
			if !container.Has(n.Properties) {
				continue
			}

			var details mongodb.ConnectionDetails
			if container.Has(n.ConnectionDetails) {
				d, err := di.ResolveContext[mongodb.ConnectionDetails](ctx, container, n.ConnectionDetails)
				if err != nil {
					RespondWithError(c, err)
					return
				}
				details = d
			} else {
				props, err := di.ResolveContext[*mongodb.Properties](ctx, container, n.Properties)
				if err != nil {
					RespondWithError(c, err)
					return
				}
				details = mongodb.NewPropertiesConnectionDetails(props)
			}

			out = append(out, Connection{
				Slot:          s.String(),
				Configuration: multimongo.ConfigurationName(s),
				Hosts:         mongodb.Hosts(details.ConnectionString()),
				Database:      details.Database(),
				GridFsBucket:  details.GridFs().Bucket,
				Primary:       container.IsPrimary(n.Client),
				Reactive:      container.Has(multimongo.ReactiveNamesFor(s).Client),
			})
		}
		RespondOK(c, out)
	}
}
