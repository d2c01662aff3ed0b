package endpoint

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/multimongo/di"
)

// Bean describes one container registration.
type Bean struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Mode        string `json:"mode"`
	Primary     bool   `json:"primary"`
	Source      string `json:"source,omitempty"`
	Initialized bool   `json:"initialized"`
}

// Beans lists container registrations in registration order. The source
// query parameter keeps the beans of one configuration.
func Beans(container di.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		source := c.Query("source")
		infos := container.Registrations()
		out := make([]Bean, 0, len(infos))
		for _, info := range infos {
			if source != "" && info.Source != source {
				continue
			}
			out = append(out, Bean{
				Name:        info.Key,
				Type:        info.Type,
				Mode:        info.Mode.String(),
				Primary:     info.Primary,
				Source:      info.Source,
				Initialized: info.Initialized,
			})
		}
		RespondOK(c, out)
	}
}
