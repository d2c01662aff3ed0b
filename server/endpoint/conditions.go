package endpoint

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/multimongo/condition"
	apperrors "github.com/kbukum/multimongo/errors"
)

// ConditionsResponse is the body of the conditions endpoint.
type ConditionsResponse struct {
	Created time.Time         `json:"created"`
	Entries []condition.Entry `json:"entries"`
}

// Conditions lists condition evaluation entries. Query parameters:
// match=true|false keeps only positive or negative entries, configuration
// keeps one configuration and kind=configuration|bean keeps one kind.
func Conditions(report func() *condition.Report) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := report()
		if r == nil {
			RespondWithError(c, apperrors.ServiceUnavailable("auto-configuration"))
			return
		}

		entries := r.Entries()
		if raw, ok := c.GetQuery("match"); ok {
			want, err := strconv.ParseBool(raw)
			if err != nil {
				RespondWithError(c, apperrors.InvalidInput("match", "must be true or false"))
				return
			}
			if want {
				entries = r.Positive()
			} else {
				entries = r.Negative()
			}
		}
		kind := condition.Kind(c.Query("kind"))
		switch kind {
		case "", condition.KindConfiguration, condition.KindBean:
		default:
			RespondWithError(c, apperrors.InvalidInput("kind", "must be configuration or bean"))
			return
		}
		cfg := c.Query("configuration")

		out := make([]condition.Entry, 0, len(entries))
		for _, e := range entries {
			if kind != "" && e.Kind != kind {
				continue
			}
			if cfg != "" && e.Configuration != cfg {
				continue
			}
			out = append(out, e)
		}
		RespondOK(c, ConditionsResponse{Created: r.Created(), Entries: out})
	}
}
