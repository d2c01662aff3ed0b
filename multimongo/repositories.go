package multimongo

import (
	"fmt"

	"github.com/kbukum/multimongo/autoconfig"
	"github.com/kbukum/multimongo/condition"
	"github.com/kbukum/multimongo/mongodb"
)

func repositoriesConfiguration(s Slot, o *installOptions) *autoconfig.Configuration {
	n := NamesFor(s)
	repos := o.slot(s).repositories

	declared := condition.Func(fmt.Sprintf("RepositoriesDeclared(%s)", s), func(condition.Context) condition.Outcome {
		if len(repos) == 0 {
			return condition.Outcome{Message: fmt.Sprintf("no repositories declared for %s", s)}
		}
		return condition.Outcome{Match: true, Message: fmt.Sprintf("%d repositories declared for %s", len(repos), s)}
	})

	var conds []condition.Condition
	if s != Default {
		conds = append(conds, enabled())
	}
	conds = append(conds,
		condition.OnProperty(s.Prefix(), "repository_enabled", condition.HavingValue("true"), condition.MatchIfMissing()),
		condition.OnCapability(CapabilityDriver),
		condition.OnBean(n.Client),
		declared,
	)

	beans := make([]*autoconfig.BeanDefinition, 0, len(repos))
	for _, r := range repos {
		create := r.create
		beans = append(beans, &autoconfig.BeanDefinition{
			Name:        r.Name,
			Type:        r.Type,
			Description: fmt.Sprintf("repository of %s on %s", r.Entity, s),
			Conditions:  []condition.Condition{condition.OnBean(n.Template)},
			Factory: func(b *autoconfig.Beans) (any, error) {
				template, err := autoconfig.Get[*mongodb.Template](b, n.Template)
				if err != nil {
					return nil, err
				}
				return create(template)
			},
		})
	}

	return &autoconfig.Configuration{
		Name:        RepositoriesConfigurationName(s),
		Description: fmt.Sprintf("repositories bound to the %s template", s),
		Conditions:  conds,
		After:       []string{ConfigurationName(s)},
		Beans:       beans,
	}
}
